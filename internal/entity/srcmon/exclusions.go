package srcmon

import (
	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// BuildExclusions вычисляет каталоги, исключаемые из анализа решения.
//
// Сначала берутся тестовые проекты, затем проекты из skip, оба в порядке
// описания решения. Каждый каталог выражается относительно root; проект,
// путь которого вычислить не удалось, пропускается с предупреждением.
// Совпадающие пути схлопываются, порядок первого появления сохраняется.
// Результат никогда не nil.
func BuildExclusions(ws *workspace.Workspace, skip workspace.SkipList, root string, log logging.Logger) []string {
	if log == nil {
		log = logging.NewNopLogger()
	}
	excluded := []string{}
	if ws == nil {
		return excluded
	}

	candidates := make([]workspace.Project, 0, len(ws.Projects))
	picked := make(map[string]struct{}, len(ws.Projects))
	for _, p := range ws.Projects {
		if p.Test {
			candidates = append(candidates, p)
			picked[p.Name] = struct{}{}
		}
	}
	for _, p := range ws.Projects {
		if _, done := picked[p.Name]; done || !skip.Contains(p.Name) {
			continue
		}
		candidates = append(candidates, p)
		picked[p.Name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		rel, err := RelativePath(root, p.Dir)
		if err != nil {
			log.Warn("Каталог проекта пропущен при построении исключений",
				"project", p.Name,
				"dir", p.Dir,
				"error", err.Error(),
			)
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		excluded = append(excluded, rel)
	}

	log.Debug("Исключения вычислены",
		"candidates", len(candidates),
		"excluded", len(excluded),
	)
	return excluded
}
