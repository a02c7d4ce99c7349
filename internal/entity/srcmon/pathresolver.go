package srcmon

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// caseInsensitiveFS: файловая система хоста не различает регистр имён.
var caseInsensitiveFS = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// RelativePath выражает candidate относительно root.
//
// Оба пути приводятся к абсолютному каноническому виду с раскрытием
// символических ссылок. Несуществующий candidate допустим, если
// существует один из его родителей. Результат записан через "/" без
// ведущего и завершающего разделителя. Если candidate совпадает с root
// или лежит вне его, возвращается *PathResolutionError.
func RelativePath(root, candidate string) (string, error) {
	canonRoot, err := canonicalize(root, false)
	if err != nil {
		return "", &PathResolutionError{Root: root, Candidate: candidate, Cause: err}
	}
	canonCandidate, err := canonicalize(candidate, true)
	if err != nil {
		return "", &PathResolutionError{Root: root, Candidate: candidate, Cause: err}
	}
	rel, ok := trimRoot(canonRoot, canonCandidate, caseInsensitiveFS)
	if !ok {
		return "", &PathResolutionError{Root: root, Candidate: candidate}
	}
	return filepath.ToSlash(rel), nil
}

// canonicalize возвращает абсолютный путь без символических ссылок.
// При allowMissing отсутствующие конечные элементы пути сохраняются
// как есть поверх канонического существующего родителя.
func canonicalize(path string, allowMissing bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !allowMissing || !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return "", err
	}
	canonParent, perr := canonicalize(parent, true)
	if perr != nil {
		return "", perr
	}
	return filepath.Join(canonParent, filepath.Base(abs)), nil
}

// trimRoot отрезает префикс root от candidate. Оба пути канонические.
// Возвращает false, если candidate не лежит строго внутри root.
func trimRoot(root, candidate string, fold bool) (string, bool) {
	prefix := root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	if len(candidate) <= len(prefix) {
		return "", false
	}
	head := candidate[:len(prefix)]
	if head != prefix && !(fold && strings.EqualFold(head, prefix)) {
		return "", false
	}
	return strings.TrimSuffix(candidate[len(prefix):], string(os.PathSeparator)), true
}
