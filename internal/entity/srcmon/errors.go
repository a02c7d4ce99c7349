package srcmon

import (
	"fmt"
	"strings"

	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
)

// PathResolutionError: каталог проекта не удалось выразить относительно
// корня анализа. Проект пропускается, анализ продолжается.
type PathResolutionError struct {
	Root      string
	Candidate string
	Cause     error
}

func (e *PathResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("не удалось вычислить путь %s относительно %s: %v", e.Candidate, e.Root, e.Cause)
	}
	return fmt.Sprintf("каталог %s не является подкаталогом %s", e.Candidate, e.Root)
}

// ErrorCode реализует apperrors.Coded.
func (e *PathResolutionError) ErrorCode() string {
	return apperrors.ErrPathResolution
}

// Unwrap возвращает причину.
func (e *PathResolutionError) Unwrap() error {
	return e.Cause
}

// As поддерживает преобразование в apperrors.AppError через errors.As.
func (e *PathResolutionError) As(target interface{}) bool {
	return asAppError(target, e.ErrorCode(), e.Error(), e.Cause)
}

// MalformedScriptError: в командном файле не заполнены обязательные поля.
type MalformedScriptError struct {
	// Missing: XML-имена незаполненных элементов.
	Missing []string
}

func (e *MalformedScriptError) Error() string {
	return "командный файл SourceMonitor не заполнен: " + strings.Join(e.Missing, ", ")
}

// ErrorCode реализует apperrors.Coded.
func (e *MalformedScriptError) ErrorCode() string {
	return apperrors.ErrScriptMalformed
}

// Unwrap returns nil (MalformedScriptError does not wrap another error).
func (e *MalformedScriptError) Unwrap() error {
	return nil
}

// As поддерживает преобразование в apperrors.AppError через errors.As.
func (e *MalformedScriptError) As(target interface{}) bool {
	return asAppError(target, e.ErrorCode(), e.Error(), nil)
}

// ToolNotFoundError: исполняемый файл SourceMonitor отсутствует или не запускается.
type ToolNotFoundError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *ToolNotFoundError) Error() string {
	msg := fmt.Sprintf("SourceMonitor не найден: %s", e.Path)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// ErrorCode реализует apperrors.Coded.
func (e *ToolNotFoundError) ErrorCode() string {
	return apperrors.ErrToolNotFound
}

// Unwrap возвращает причину.
func (e *ToolNotFoundError) Unwrap() error {
	return e.Cause
}

// As поддерживает преобразование в apperrors.AppError через errors.As.
func (e *ToolNotFoundError) As(target interface{}) bool {
	return asAppError(target, e.ErrorCode(), e.Error(), e.Cause)
}

// ExternalToolExecutionError: процесс завершился неуспешно, не запустился
// или был остановлен по таймауту.
type ExternalToolExecutionError struct {
	Label string
	// ExitCode: код завершения, -1 если процесс не завершился сам.
	ExitCode int
	// Output: усечённый консольный вывод.
	Output string
	Cause  error
}

func (e *ExternalToolExecutionError) Error() string {
	return fmt.Sprintf("%s: внешний процесс завершился с ошибкой (код %d): %v", e.Label, e.ExitCode, e.Cause)
}

// ErrorCode реализует apperrors.Coded.
func (e *ExternalToolExecutionError) ErrorCode() string {
	return apperrors.ErrToolExecution
}

// Unwrap возвращает причину.
func (e *ExternalToolExecutionError) Unwrap() error {
	return e.Cause
}

// As поддерживает преобразование в apperrors.AppError через errors.As.
func (e *ExternalToolExecutionError) As(target interface{}) bool {
	return asAppError(target, e.ErrorCode(), e.Error(), e.Cause)
}

// OutputCleanupError: устаревшие артефакты остались после попытки удаления.
type OutputCleanupError struct {
	Paths []string
	Cause error
}

func (e *OutputCleanupError) Error() string {
	msg := "не удалось удалить устаревшие артефакты: " + strings.Join(e.Paths, ", ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// ErrorCode реализует apperrors.Coded.
func (e *OutputCleanupError) ErrorCode() string {
	return apperrors.ErrOutputCleanup
}

// Unwrap возвращает причину.
func (e *OutputCleanupError) Unwrap() error {
	return e.Cause
}

// As поддерживает преобразование в apperrors.AppError через errors.As.
func (e *OutputCleanupError) As(target interface{}) bool {
	return asAppError(target, e.ErrorCode(), e.Error(), e.Cause)
}

func asAppError(target interface{}, code, message string, cause error) bool {
	t, ok := target.(**apperrors.AppError)
	if !ok {
		return false
	}
	*t = &apperrors.AppError{Code: code, Message: message, Cause: cause}
	return true
}
