// Package constants содержит константы, используемые в проекте apk-metrics.
// Константы сгруппированы по функциональному назначению.
package constants

// Константы сообщений приложения
const (
	// MsgAppExit - сообщение о завершении работы программы
	MsgAppExit = "Завершение работы программы"
	// MsgErrProcessing - сообщение об обработке ошибки
	MsgErrProcessing = "Обработка ошибки"
)

// Информация о сборке. Значения подставляются через -ldflags "-X".
var (
	// Version - версия приложения
	Version = "dev"
	// PreCommitHash - хеш коммита, из которого собран бинарник
	PreCommitHash = "unknown"
)

// Константы команд
const (
	// ActNRMetrics - генерация метрик исходного кода через SourceMonitor
	ActNRMetrics = "nr-metrics"
	// ActMetrics - deprecated имя команды nr-metrics
	ActMetrics = "metrics"
	// ActNRVersion - вывод информации о версии
	ActNRVersion = "nr-version"
	// ActHelp - вывод списка команд
	ActHelp = "help"
)

// APIVersion - версия формата JSON-вывода
const APIVersion = "v1"

// Переменные окружения режимов выполнения
const (
	// EnvOutputFormat - формат вывода результата (json, text)
	EnvOutputFormat = "BR_OUTPUT_FORMAT"
	// EnvDryRun - режим dry-run (план без выполнения)
	EnvDryRun = "BR_DRY_RUN"
)

// Значения по умолчанию для SourceMonitor.
const (
	// SourceMonitorExecutable - имя исполняемого файла SourceMonitor
	SourceMonitorExecutable = "SourceMonitor.exe"
	// SourceMonitorResourceDir - каталог ресурсов, содержащий поставляемый SourceMonitor
	SourceMonitorResourceDir = "metrics"
	// SourceMonitorExportPath - каталог, в который извлекается SourceMonitor
	SourceMonitorExportPath = "sourcemonitor-runtime"
	// SourceMonitorFolder - подкаталог с исполняемым файлом внутри каталога извлечения
	SourceMonitorFolder = "SourceMonitor"
	// MetricsReportFileName - имя отчёта о метриках
	MetricsReportFileName = "metrics-report.xml"
	// ProjectStateSuffix - суффикс файла состояния проекта SourceMonitor
	ProjectStateSuffix = ".smp"
	// CommandScriptFileName - имя генерируемого командного файла
	CommandScriptFileName = "sourcemonitor-command.xml"
	// DefaultExcludedExtension - маска сгенерированных дизайнером файлов
	DefaultExcludedExtension = "*.Designer.cs"
	// DefaultLanguage - язык проекта SourceMonitor
	DefaultLanguage = "C#"
	// DefaultTestProjectPattern - маска имён тестовых проектов
	DefaultTestProjectPattern = "*.Tests"
	// DefaultReportSubDir - каталог отчётов относительно корня workspace
	DefaultReportSubDir = "target/metrics"
	// MetricsLabel - метка запуска внешнего процесса в логах
	MetricsLabel = "Metrics"
	// DefaultAttempts - бюджет запуска по умолчанию
	DefaultAttempts = 1
)

// Режимы анализа
const (
	// TargetSolution - анализ всего решения с исключениями
	TargetSolution = "solution"
	// TargetProject - анализ проектов по отдельности
	TargetProject = "project"
)
