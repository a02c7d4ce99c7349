// Package workspace описывает решение (solution) и его проекты.
//
// Описание читается из YAML-файла:
//
//	name: Billing
//	version: 1.2.0
//	baseDir: ..
//	projects:
//	  - name: Billing.Core
//	    directory: src/Billing.Core
//	  - name: Billing.Core.Tests
//	    directory: tests/Billing.Core.Tests
//	  - name: Billing.Fixtures
//	    directory: tests/Fixtures
//	    test: true
//
// Относительный baseDir отсчитывается от каталога YAML-файла,
// относительные каталоги проектов: от baseDir.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
)

// Project: один проект решения. Не изменяется после загрузки.
type Project struct {
	Name string
	// Dir: абсолютный путь к каталогу проекта.
	Dir string
	// Test: проект тестовый и исключается из анализа решения.
	Test bool
}

// Workspace: решение с упорядоченным списком проектов.
type Workspace struct {
	Name    string
	Version string
	// BaseDir: абсолютный каталог решения, корень анализа по умолчанию.
	BaseDir  string
	Projects []Project
}

// TestProjects возвращает тестовые проекты в порядке описания.
func (w *Workspace) TestProjects() []Project {
	out := make([]Project, 0, len(w.Projects))
	for _, p := range w.Projects {
		if p.Test {
			out = append(out, p)
		}
	}
	return out
}

// Project ищет проект по имени.
func (w *Workspace) Project(name string) (Project, bool) {
	for _, p := range w.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

type fileProject struct {
	Name      string `yaml:"name"`
	Directory string `yaml:"directory"`
	Test      *bool  `yaml:"test"`
}

type fileWorkspace struct {
	Name     string        `yaml:"name"`
	Version  string        `yaml:"version"`
	BaseDir  string        `yaml:"baseDir"`
	Projects []fileProject `yaml:"projects"`
}

// Load читает описание решения из YAML-файла.
// Проекты без явного признака test классифицируются по testPattern
// (doublestar-маска имени, пустая маска отключает классификацию).
func Load(path, testPattern string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrWorkspaceLoad,
			fmt.Sprintf("не удалось прочитать описание решения %s", path), err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrWorkspaceLoad,
			fmt.Sprintf("не удалось получить абсолютный путь %s", path), err)
	}
	return Parse(data, filepath.Dir(absPath), testPattern)
}

// Parse разбирает описание решения. dir: каталог, от которого
// отсчитывается относительный baseDir.
func Parse(data []byte, dir, testPattern string) (*Workspace, error) {
	var raw fileWorkspace
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrWorkspaceLoad, "некорректный YAML описания решения", err)
	}
	if testPattern != "" && !doublestar.ValidatePattern(testPattern) {
		return nil, apperrors.NewAppError(apperrors.ErrWorkspaceInvalid,
			fmt.Sprintf("невалидная маска тестовых проектов %q", testPattern), nil)
	}

	base := raw.BaseDir
	if base == "" {
		base = "."
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(dir, base)
	}

	ws := &Workspace{
		Name:     raw.Name,
		Version:  raw.Version,
		BaseDir:  filepath.Clean(base),
		Projects: make([]Project, 0, len(raw.Projects)),
	}

	seen := make(map[string]struct{}, len(raw.Projects))
	for i, fp := range raw.Projects {
		if fp.Name == "" {
			return nil, apperrors.NewAppError(apperrors.ErrWorkspaceInvalid,
				fmt.Sprintf("проект #%d: не задано имя", i+1), nil)
		}
		if _, dup := seen[fp.Name]; dup {
			return nil, apperrors.NewAppError(apperrors.ErrWorkspaceInvalid,
				fmt.Sprintf("проект %q описан повторно", fp.Name), nil)
		}
		seen[fp.Name] = struct{}{}

		projectDir := fp.Directory
		if projectDir == "" {
			projectDir = fp.Name
		}
		if !filepath.IsAbs(projectDir) {
			projectDir = filepath.Join(ws.BaseDir, projectDir)
		}

		isTest := false
		if fp.Test != nil {
			isTest = *fp.Test
		} else if testPattern != "" {
			// Маска валидна, ошибка невозможна.
			isTest, _ = doublestar.Match(testPattern, fp.Name)
		}

		ws.Projects = append(ws.Projects, Project{
			Name: fp.Name,
			Dir:  filepath.Clean(projectDir),
			Test: isTest,
		})
	}
	return ws, nil
}
