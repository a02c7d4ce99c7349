package srcmon

import (
	"path/filepath"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// AnalysisTarget описывает единицу анализа, решение целиком или отдельный проект.
type AnalysisTarget interface {
	Name() string
	// Kind возвращает constants.TargetSolution или constants.TargetProject.
	Kind() string
	ResolveExclusions(opts Options, log logging.Logger) []string
	BuildScript(opts Options, files ReportFiles, excluded []string) CommandScript
	// ReportDir: каталог артефактов и командного файла цели.
	ReportDir(opts Options) string
}

// SolutionTarget анализирует корень решения, исключая тестовые
// и пропущенные проекты.
type SolutionTarget struct {
	Workspace *workspace.Workspace
	Skip      workspace.SkipList
}

func (t SolutionTarget) Name() string {
	if t.Workspace == nil {
		return ""
	}
	return t.Workspace.Name
}

func (t SolutionTarget) Kind() string { return constants.TargetSolution }

func (t SolutionTarget) ResolveExclusions(opts Options, log logging.Logger) []string {
	return BuildExclusions(t.Workspace, t.Skip, opts.SourceDir, log)
}

func (t SolutionTarget) BuildScript(opts Options, files ReportFiles, excluded []string) CommandScript {
	return CommandScript{
		SourcePath:          opts.SourceDir,
		WorkDirectory:       t.ReportDir(opts),
		ReportFile:          files.Report,
		ProjectFile:         files.ProjectState,
		CheckpointName:      opts.Checkpoint,
		Language:            opts.Language,
		ExcludedExtensions:  opts.ExcludedExtensions(),
		ExcludedDirectories: excluded,
	}
}

func (t SolutionTarget) ReportDir(opts Options) string { return opts.ReportDir }

// ProjectTarget анализирует каталог одного проекта без исключения подкаталогов.
// Артефакты пишутся в <ReportDir>/<имя проекта>, чтобы последовательные
// запуски по проектам не делили выходные файлы.
type ProjectTarget struct {
	Project workspace.Project
}

func (t ProjectTarget) Name() string { return t.Project.Name }

func (t ProjectTarget) Kind() string { return constants.TargetProject }

func (t ProjectTarget) ResolveExclusions(Options, logging.Logger) []string { return []string{} }

func (t ProjectTarget) BuildScript(opts Options, files ReportFiles, _ []string) CommandScript {
	return CommandScript{
		SourcePath:         t.Project.Dir,
		ReportFile:         files.Report,
		ProjectFile:        files.ProjectState,
		CheckpointName:     opts.Checkpoint,
		Language:           opts.Language,
		ExcludedExtensions: opts.ExcludedExtensions(),
	}
}

func (t ProjectTarget) ReportDir(opts Options) string {
	return filepath.Join(opts.ReportDir, t.Project.Name)
}
