package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedErr struct{}

func (codedErr) Error() string     { return "coded" }
func (codedErr) ErrorCode() string { return ErrToolNotFound }

func TestAppError_Error(t *testing.T) {
	cause := errors.New("исходная ошибка")

	withCause := NewAppError(ErrConfigLoad, "не удалось загрузить конфигурацию", cause)
	assert.Equal(t, "CONFIG.LOAD_FAILED: не удалось загрузить конфигурацию (исходная ошибка)", withCause.Error())

	noCause := NewAppError(ErrConfigLoad, "не удалось загрузить конфигурацию", nil)
	assert.Equal(t, "CONFIG.LOAD_FAILED: не удалось загрузить конфигурацию", noCause.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("исходная ошибка")
	appErr := NewAppError(ErrWorkspaceLoad, "workspace недоступен", cause)

	assert.True(t, errors.Is(appErr, cause))
	wrapped := fmt.Errorf("контекст: %w", appErr)

	var target *AppError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, ErrWorkspaceLoad, target.Code)
}

func TestAppError_JSONHidesCause(t *testing.T) {
	appErr := NewAppError(ErrHistoryWrite, "запись не удалась", errors.New("password=secret"))

	data, err := json.Marshal(appErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"HISTORY.WRITE_FAILED","message":"запись не удалась"}`, string(data))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coded", fmt.Errorf("wrap: %w", codedErr{}), ErrToolNotFound},
		{"app error", NewAppError(ErrScriptMalformed, "x", nil), ErrScriptMalformed},
		{"plain", errors.New("plain"), ErrCommandExec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err, ErrCommandExec))
		})
	}
}
