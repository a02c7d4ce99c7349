package workspace

import "strings"

// SkipList: имена проектов, исключаемых из анализа независимо от признака test.
// Сравнение точное и регистрозависимое.
type SkipList map[string]struct{}

// ParseSkipList разбирает список через запятую. Пробелы вокруг имён
// отбрасываются, пустые элементы игнорируются.
func ParseSkipList(raw string) SkipList {
	skip := SkipList{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			skip[name] = struct{}{}
		}
	}
	return skip
}

// Contains сообщает, входит ли проект в список.
func (s SkipList) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len возвращает число имён в списке.
func (s SkipList) Len() int {
	return len(s)
}
