package srcmon

import "time"

// Options: неизменяемые параметры анализа. Создаются один раз из
// конфигурации и передаются по значению.
type Options struct {
	// ExecutableDir: каталог SourceMonitor. Пусто → распаковка поставки.
	ExecutableDir string
	Executable    string
	// SourceDir: корень анализа решения.
	SourceDir      string
	ReportDir      string
	ReportFileName string
	Checkpoint     string
	Language       string
	// excludedExtensions доступен только через ExcludedExtensions().
	excludedExtensions []string
	Attempts           int
	AttemptTimeout     time.Duration
	ConsoleEncoding    string
}

// WithExcludedExtensions возвращает копию opts с заданными масками исключения.
func (o Options) WithExcludedExtensions(globs ...string) Options {
	o.excludedExtensions = append([]string(nil), globs...)
	return o
}

// ExcludedExtensions возвращает копию масок исключаемых файлов.
func (o Options) ExcludedExtensions() []string {
	return append([]string(nil), o.excludedExtensions...)
}
