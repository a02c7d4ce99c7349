// Package mssqltest предоставляет тестовые утилиты для пакета mssql:
// мок-реализацию Client.
package mssqltest

import (
	"context"
	"sync"

	"github.com/Kargones/apk-metrics/internal/adapter/mssql"
)

// Compile-time проверки реализации интерфейсов
var (
	_ mssql.Client            = (*MockMSSQLClient)(nil)
	_ mssql.DatabaseConnector = (*MockMSSQLClient)(nil)
	_ mssql.HistoryWriter     = (*MockMSSQLClient)(nil)
	_ mssql.HistoryReader     = (*MockMSSQLClient)(nil)
)

// MockMSSQLClient: мок-реализация mssql.Client для тестирования.
// Без пользовательской SaveRunFunc записи накапливаются в Saved.
type MockMSSQLClient struct {
	// ConnectFunc: пользовательская реализация Connect
	ConnectFunc func(ctx context.Context) error
	// CloseFunc: пользовательская реализация Close
	CloseFunc func() error
	// PingFunc: пользовательская реализация Ping
	PingFunc func(ctx context.Context) error
	// SaveRunFunc: пользовательская реализация SaveRun
	SaveRunFunc func(ctx context.Context, rec mssql.RunRecord) error
	// LastCompletedFunc: пользовательская реализация LastCompleted
	LastCompletedFunc func(ctx context.Context, workspace, target string) (*mssql.RunRecord, error)

	mu     sync.Mutex
	Saved  []mssql.RunRecord
	Closed bool
}

// Connect при отсутствии пользовательской функции возвращает nil.
func (m *MockMSSQLClient) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx)
	}
	return nil
}

// Close отмечает клиент закрытым.
func (m *MockMSSQLClient) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Ping при отсутствии пользовательской функции возвращает nil.
func (m *MockMSSQLClient) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// SaveRun сохраняет запись в Saved или вызывает SaveRunFunc.
func (m *MockMSSQLClient) SaveRun(ctx context.Context, rec mssql.RunRecord) error {
	if m.SaveRunFunc != nil {
		return m.SaveRunFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, rec)
	return nil
}

// LastCompleted при отсутствии пользовательской функции возвращает nil.
func (m *MockMSSQLClient) LastCompleted(ctx context.Context, workspace, target string) (*mssql.RunRecord, error) {
	if m.LastCompletedFunc != nil {
		return m.LastCompletedFunc(ctx, workspace, target)
	}
	return nil, nil
}
