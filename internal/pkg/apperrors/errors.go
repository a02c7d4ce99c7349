// Package apperrors предоставляет структурированные ошибки приложения.
// Назван apperrors, чтобы не конфликтовать со стандартным пакетом errors.
package apperrors

import (
	"errors"
	"fmt"
)

// Коды ошибок в формате CATEGORY.SPECIFIC_ERROR.
// Категория позволяет фильтровать логи: `grep "METRICS\."`.
const (
	// Category CONFIG: загрузка и валидация конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Category COMMAND: диспетчеризация и выполнение команд.
	ErrCommandNotFound = "COMMAND.NOT_FOUND"
	ErrCommandExec     = "COMMAND.EXEC_FAILED"

	// Category WORKSPACE: описание решения и его проектов.
	ErrWorkspaceLoad    = "WORKSPACE.LOAD_FAILED"
	ErrWorkspaceInvalid = "WORKSPACE.INVALID"

	// Category METRICS: генерация командного файла и запуск SourceMonitor.
	ErrPathResolution  = "METRICS.PATH_RESOLUTION_FAILED"
	ErrScriptMalformed = "METRICS.SCRIPT_MALFORMED"
	ErrToolNotFound    = "METRICS.TOOL_NOT_FOUND"
	ErrToolExecution   = "METRICS.TOOL_EXECUTION_FAILED"
	ErrOutputCleanup   = "METRICS.OUTPUT_CLEANUP_FAILED"

	// Category HISTORY: журнал запусков.
	ErrHistoryWrite = "HISTORY.WRITE_FAILED"
)

// Coded реализуют ошибки, которые умеют сообщать машиночитаемый код.
type Coded interface {
	ErrorCode() string
}

// AppError представляет структурированную ошибку приложения.
// Поддерживает wrapping через Unwrap().
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (пароли, токены, строки подключения).
type AppError struct {
	// Code: машиночитаемый код в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`
	// Message: человекочитаемое описание.
	Message string `json:"message"`
	// Cause: исходная ошибка. В JSON не сериализуется.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт AppError с заданным кодом, сообщением и причиной.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf возвращает код ошибки из цепочки err.
// Если ни одна ошибка в цепочке не несёт кода, возвращается fallback.
func CodeOf(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}
