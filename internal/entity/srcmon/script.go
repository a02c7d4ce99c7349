package srcmon

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kargones/apk-metrics/internal/constants"
)

// exportTypeXML: экспорт отчёта в XML.
const exportTypeXML = 2

// languageGlobs сопоставляет язык проекта SourceMonitor с маской исходников.
var languageGlobs = map[string]string{
	"C#":     "*.cs",
	"C":      "*.c",
	"C++":    "*.cpp",
	"Java":   "*.java",
	"VB.NET": "*.vb",
	"Delphi": "*.pas",
	"HTML":   "*.htm*",
}

// LanguageGlob возвращает маску исходников языка или "" для неизвестного языка.
func LanguageGlob(language string) string {
	return languageGlobs[language]
}

// CommandScript: содержимое командного файла SourceMonitor для одного запуска.
// Создаётся заново на каждый запуск и не изменяется после записи.
type CommandScript struct {
	SourcePath     string
	WorkDirectory  string
	ReportFile     string
	ProjectFile    string
	CheckpointName string
	// Language: язык проекта SourceMonitor. Пусто → C#.
	Language            string
	ExcludedExtensions  []string
	ExcludedDirectories []string
}

type xmlCommands struct {
	XMLName  xml.Name   `xml:"sourcemonitor_commands"`
	WriteLog bool       `xml:"write_log"`
	Command  xmlCommand `xml:"command"`
}

type xmlCommand struct {
	ProjectFile           string         `xml:"project_file"`
	ProjectLanguage       string         `xml:"project_language"`
	SourceDirectory       string         `xml:"source_directory"`
	WorkingDirectory      string         `xml:"working_directory,omitempty"`
	IncludeSubdirectories bool           `xml:"include_subdirectories"`
	CheckpointName        string         `xml:"checkpoint_name"`
	FileExtensions        string         `xml:"file_extensions,omitempty"`
	Subdirectories        *xmlSubdirList `xml:"source_subdirectory_list,omitempty"`
	Export                xmlExport      `xml:"export"`
}

type xmlSubdirList struct {
	ExcludeSubdirectories bool     `xml:"exclude_subdirectories"`
	Subtrees              []string `xml:"source_subtree"`
}

type xmlExport struct {
	File string `xml:"export_file"`
	Type int    `xml:"export_type"`
}

// Validate проверяет обязательные поля.
func (s CommandScript) Validate() error {
	var missing []string
	if strings.TrimSpace(s.SourcePath) == "" {
		missing = append(missing, "source_directory")
	}
	if strings.TrimSpace(s.ReportFile) == "" {
		missing = append(missing, "export_file")
	}
	if strings.TrimSpace(s.ProjectFile) == "" {
		missing = append(missing, "project_file")
	}
	if strings.TrimSpace(s.CheckpointName) == "" {
		missing = append(missing, "checkpoint_name")
	}
	if len(missing) > 0 {
		return &MalformedScriptError{Missing: missing}
	}
	return nil
}

func (s CommandScript) language() string {
	if s.Language == "" {
		return constants.DefaultLanguage
	}
	return s.Language
}

// FileExtensions возвращает значение file_extensions: маска языка,
// затем исключаемые маски через "|".
func (s CommandScript) FileExtensions() string {
	parts := make([]string, 0, len(s.ExcludedExtensions)+1)
	if glob := LanguageGlob(s.language()); glob != "" {
		parts = append(parts, glob)
	}
	parts = append(parts, s.ExcludedExtensions...)
	return strings.Join(parts, "|")
}

// Marshal сериализует командный файл. Одинаковые значения полей
// всегда дают побайтно одинаковый результат.
func (s CommandScript) Marshal() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cmd := xmlCommand{
		ProjectFile:           s.ProjectFile,
		ProjectLanguage:       s.language(),
		SourceDirectory:       s.SourcePath,
		WorkingDirectory:      s.WorkDirectory,
		IncludeSubdirectories: true,
		CheckpointName:        s.CheckpointName,
		FileExtensions:        s.FileExtensions(),
		Export:                xmlExport{File: s.ReportFile, Type: exportTypeXML},
	}
	if len(s.ExcludedDirectories) > 0 {
		cmd.Subdirectories = &xmlSubdirList{
			ExcludeSubdirectories: true,
			Subtrees:              append([]string(nil), s.ExcludedDirectories...),
		}
	}

	body, err := xml.MarshalIndent(xmlCommands{WriteLog: true, Command: cmd}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("сериализация командного файла: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile записывает командный файл в path. Содержимое пишется во
// временный файл того же каталога и переименовывается, поэтому частично
// записанный файл не виден. При ошибке валидации файл не создаётся.
func (s CommandScript) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermStandard); err != nil {
		return fmt.Errorf("не удалось создать каталог %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName) //nolint:errcheck // временный файл
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // уже есть ошибка записи
		return fmt.Errorf("не удалось записать командный файл: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("не удалось записать командный файл: %w", err)
	}
	if err := os.Chmod(tmpName, constants.FilePermReadWrite); err != nil {
		return fmt.Errorf("не удалось выставить права командного файла: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("не удалось сохранить командный файл %s: %w", path, err)
	}
	committed = true
	return nil
}
