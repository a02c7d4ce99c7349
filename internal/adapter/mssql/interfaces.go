// Package mssql хранит историю запусков анализа в Microsoft SQL Server.
// Интерфейсы разделены по операциям: DatabaseConnector, HistoryWriter,
// HistoryReader. Композитный интерфейс Client объединяет их.
package mssql

import (
	"context"
	"time"
)

// Коды ошибок для MSSQL операций.
const (
	// ErrMSSQLConnect: ошибка подключения к серверу MSSQL
	ErrMSSQLConnect = "MSSQL.CONNECT_FAILED"
	// ErrMSSQLQuery: ошибка выполнения SQL запроса
	ErrMSSQLQuery = "MSSQL.QUERY_FAILED"
	// ErrMSSQLTimeout: превышено время ожидания операции
	ErrMSSQLTimeout = "MSSQL.TIMEOUT"
)

// RunRecord описывает одну запись истории, завершённый анализ одной цели.
type RunRecord struct {
	// Workspace: имя решения
	Workspace string
	// Target: имя цели (решение или проект)
	Target string
	// Kind: solution или project
	Kind string
	// Checkpoint: имя checkpoint SourceMonitor
	Checkpoint string
	// Status: COMPLETED или FAILED
	Status string
	// ErrorCode: код ошибки для FAILED, иначе пусто
	ErrorCode string
	// ExcludedCount: число исключённых каталогов
	ExcludedCount int
	// ExitCode: код выхода SourceMonitor, -1 если процесс не завершился сам
	ExitCode int
	// Actor: инициатор запуска
	Actor     string
	StartedAt time.Time
	Duration  time.Duration
}

// DatabaseConnector предоставляет операции для подключения к серверу MSSQL.
type DatabaseConnector interface {
	// Connect устанавливает соединение с сервером MSSQL.
	Connect(ctx context.Context) error
	// Close закрывает соединение с сервером.
	Close() error
	// Ping проверяет доступность сервера.
	Ping(ctx context.Context) error
}

// HistoryWriter сохраняет записи истории.
type HistoryWriter interface {
	SaveRun(ctx context.Context, rec RunRecord) error
}

// HistoryReader читает историю.
type HistoryReader interface {
	// LastCompleted возвращает последний успешный запуск цели или nil.
	LastCompleted(ctx context.Context, workspace, target string) (*RunRecord, error)
}

// Client: композитный интерфейс, объединяющий все операции MSSQL.
type Client interface {
	DatabaseConnector
	HistoryWriter
	HistoryReader
}
