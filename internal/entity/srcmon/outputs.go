package srcmon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// ReportFiles: артефакты одного запуска SourceMonitor.
type ReportFiles struct {
	// Report: экспортированный XML-отчёт.
	Report string
	// ProjectState: файл проекта SourceMonitor (.smp) с checkpoint-ами.
	ProjectState string
}

// ReportPaths вычисляет пути артефактов. Функция чистая.
func ReportPaths(reportDir, reportName string) ReportFiles {
	report := filepath.Join(reportDir, reportName)
	return ReportFiles{
		Report:       report,
		ProjectState: report + constants.ProjectStateSuffix,
	}
}

// All возвращает пути всех артефактов.
func (f ReportFiles) All() []string {
	return []string{f.Report, f.ProjectState}
}

// Reconcile удаляет артефакты предыдущего запуска. Отсутствующий файл
// не ошибка. Если после попыток удаления хоть один путь существует,
// возвращается *OutputCleanupError.
func Reconcile(log logging.Logger, paths ...string) error {
	var causes []error
	for _, p := range paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			log.Debug("Удалён артефакт предыдущего запуска", "path", p)
		case errors.Is(err, os.ErrNotExist):
		default:
			log.Warn("Не удалось удалить артефакт предыдущего запуска", "path", p, "error", err.Error())
			causes = append(causes, err)
		}
	}

	var leftover []string
	for _, p := range paths {
		_, err := os.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			causes = append(causes, fmt.Errorf("проверка %s: %w", p, err))
		}
		leftover = append(leftover, p)
	}
	if len(leftover) > 0 {
		return &OutputCleanupError{Paths: leftover, Cause: errors.Join(causes...)}
	}
	return nil
}
