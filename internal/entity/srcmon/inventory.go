package srcmon

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Kargones/apk-metrics/internal/constants"
)

// Inventory: исходники, которые увидит SourceMonitor.
type Inventory struct {
	// Included: файлы языка, попадающие в анализ.
	Included int `json:"included"`
	// ExcludedByDir: файлы внутри исключённых каталогов.
	ExcludedByDir int `json:"excluded_by_dir"`
	// ExcludedByGlob: файлы, совпавшие с масками исключения.
	ExcludedByGlob int `json:"excluded_by_glob"`
}

// SourceInventory подсчитывает исходники под root по маске языка
// с учётом исключённых каталогов и масок.
func SourceInventory(ctx context.Context, root, language string, excludedExt, excludedDirs []string) (Inventory, error) {
	var inv Inventory

	if language == "" {
		language = constants.DefaultLanguage
	}
	pattern := "**"
	if glob := LanguageGlob(language); glob != "" {
		pattern = "**/" + glob
	}
	opts := []doublestar.GlobOption{doublestar.WithFilesOnly()}
	if caseInsensitiveFS {
		opts = append(opts, doublestar.WithCaseInsensitive())
	}

	err := doublestar.GlobWalk(os.DirFS(root), pattern, func(p string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case underAny(p, excludedDirs):
			inv.ExcludedByDir++
		case matchesAny(path.Base(p), excludedExt):
			inv.ExcludedByGlob++
		default:
			inv.Included++
		}
		return nil
	}, opts...)
	return inv, err
}

func underAny(p string, dirs []string) bool {
	for _, d := range dirs {
		if caseInsensitiveFS {
			p, d = strings.ToLower(p), strings.ToLower(d)
		}
		if strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

func matchesAny(name string, globs []string) bool {
	for _, g := range globs {
		if caseInsensitiveFS {
			name, g = strings.ToLower(name), strings.ToLower(g)
		}
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
	}
	return false
}
