package mssql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		opts        ClientOptions
		wantErr     string
		wantTable   string
		wantTimeout time.Duration
	}{
		{
			name:        "значения по умолчанию",
			opts:        ClientOptions{DSN: "sqlserver://u:p@db:1433?database=Metrics"},
			wantTable:   "[dbo].[MetricsRuns]",
			wantTimeout: 30 * time.Second,
		},
		{
			name:        "таблица без схемы",
			opts:        ClientOptions{DSN: "sqlserver://db", Table: "Runs", Timeout: time.Second},
			wantTable:   "[Runs]",
			wantTimeout: time.Second,
		},
		{name: "пустой DSN", opts: ClientOptions{}, wantErr: ErrMSSQLConnect},
		{name: "инъекция в имени таблицы", opts: ClientOptions{DSN: "sqlserver://db", Table: "Runs; DROP TABLE x"}, wantErr: ErrMSSQLQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, strings.HasPrefix(err.Error(), tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			cli, ok := c.(*client)
			require.True(t, ok)
			assert.Equal(t, tt.wantTable, cli.table)
			assert.Equal(t, tt.wantTimeout, cli.opts.Timeout)
		})
	}
}

func TestClient_NotConnected(t *testing.T) {
	c, err := NewClient(ClientOptions{DSN: "sqlserver://db"})
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorContains(t, c.Ping(ctx), "connection not established")
	assert.ErrorContains(t, c.SaveRun(ctx, RunRecord{}), "connection not established")
	_, err = c.LastCompleted(ctx, "W", "W")
	assert.ErrorContains(t, err, "connection not established")
	assert.NoError(t, c.Close())
}

func newMockClient(t *testing.T) (*client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newClientWithDB(db, ClientOptions{Timeout: 5 * time.Second}), mock
}

func TestClient_SaveRun(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := RunRecord{
		Workspace:     "Billing",
		Target:        "Billing",
		Kind:          "solution",
		Checkpoint:    "1.2.0",
		Status:        "COMPLETED",
		ExcludedCount: 2,
		ExitCode:      0,
		Actor:         "ci-bot",
		StartedAt:     started,
		Duration:      1500 * time.Millisecond,
	}

	t.Run("успешная вставка", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectExec(`INSERT INTO \[dbo\]\.\[MetricsRuns\]`).
			WithArgs("Billing", "Billing", "solution", "1.2.0", "COMPLETED", "", 2, 0, "ci-bot", started, int64(1500)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, c.SaveRun(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка сервера", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New("permission denied"))

		err := c.SaveRun(context.Background(), rec)

		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), ErrMSSQLQuery))
		assert.ErrorContains(t, err, "permission denied")
	})
}

func TestClient_LastCompleted(t *testing.T) {
	columns := []string{"Kind", "Checkpoint", "ExcludedCount", "ExitCode", "Actor", "StartedAt", "DurationMs"}
	started := time.Date(2026, 2, 27, 8, 30, 0, 0, time.UTC)

	t.Run("найден запуск", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectQuery(`SELECT TOP 1 .* FROM \[dbo\]\.\[MetricsRuns\]`).
			WithArgs("Billing", "Billing").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("solution", "1.1.0", 3, 0, "ci-bot", started, int64(42000)))

		rec, err := c.LastCompleted(context.Background(), "Billing", "Billing")

		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "1.1.0", rec.Checkpoint)
		assert.Equal(t, 3, rec.ExcludedCount)
		assert.Equal(t, "ci-bot", rec.Actor)
		assert.Equal(t, started, rec.StartedAt)
		assert.Equal(t, 42*time.Second, rec.Duration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("истории нет", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectQuery(`SELECT TOP 1`).WillReturnError(sql.ErrNoRows)

		rec, err := c.LastCompleted(context.Background(), "Billing", "Billing")

		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("ошибка запроса", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectQuery(`SELECT TOP 1`).WillReturnError(errors.New("invalid object name"))

		_, err := c.LastCompleted(context.Background(), "Billing", "Billing")

		assert.ErrorContains(t, err, ErrMSSQLQuery)
	})
}

func TestClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	c := newClientWithDB(db, ClientOptions{})

	mock.ExpectPing()
	require.NoError(t, c.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	assert.ErrorContains(t, c.Ping(context.Background()), ErrMSSQLConnect)

	mock.ExpectClose()
	require.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, "[dbo].[MetricsRuns]", quoteTable("dbo.MetricsRuns"))
	assert.Equal(t, "[Runs]", quoteTable("Runs"))
}
