package command

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Handler)
	mu       sync.RWMutex
	// Имя команды: kebab-case, начинается с буквы, без двойных и завершающих дефисов.
	commandNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Ошибки регистрации.
var (
	ErrNilHandler      = errors.New("command: nil handler")
	ErrInvalidName     = errors.New("command: имя команды должно быть в kebab-case")
	ErrDuplicateName   = errors.New("command: команда уже зарегистрирована")
	ErrAliasIsSameName = errors.New("command: deprecated имя совпадает с основным")
)

// Register добавляет обработчик в реестр под h.Name().
func Register(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	name := h.Name()
	if !commandNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	mu.Lock()
	defer mu.Unlock()
	return put(name, h)
}

// RegisterWithAlias регистрирует h под основным именем и, если deprecated
// не пуст, под старым именем через DeprecatedBridge. Старое имя не
// проверяется на kebab-case.
func RegisterWithAlias(h Handler, deprecated string) error {
	if h == nil {
		return ErrNilHandler
	}
	if deprecated == h.Name() {
		return fmt.Errorf("%w: %q", ErrAliasIsSameName, deprecated)
	}
	if err := Register(h); err != nil {
		return err
	}
	if deprecated == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	return put(deprecated, &DeprecatedBridge{actual: h, deprecated: deprecated, newName: h.Name()})
}

// put вызывается под mu.
func put(name string, h Handler) error {
	if _, exists := registry[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	registry[name] = h
	return nil
}

// Get возвращает обработчик по имени, в том числе по deprecated имени.
func Get(name string) (Handler, bool) {
	mu.RLock()
	defer mu.RUnlock()
	h, ok := registry[name]
	return h, ok
}

// Names возвращает отсортированные имена всех записей реестра, включая
// deprecated имена.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info описывает команду для help и nr-version.
type Info struct {
	Name        string
	Description string
	// DeprecatedAlias: старое имя команды или "".
	DeprecatedAlias string
}

// ListAllWithAliases возвращает основные команды, отсортированные по имени.
// Bridge-записи не попадают в список отдельно: их имена указываются в
// DeprecatedAlias основной команды.
func ListAllWithAliases() []Info {
	mu.RLock()
	defer mu.RUnlock()

	aliases := make(map[string]string)
	for _, h := range registry {
		if bridge, ok := h.(*DeprecatedBridge); ok {
			aliases[bridge.newName] = bridge.deprecated
		}
	}

	result := make([]Info, 0, len(registry)-len(aliases))
	for name, h := range registry {
		if _, isBridge := h.(*DeprecatedBridge); isBridge {
			continue
		}
		result = append(result, Info{
			Name:            name,
			Description:     h.Description(),
			DeprecatedAlias: aliases[name],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// clearRegistry используется тестами.
func clearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Handler)
}
