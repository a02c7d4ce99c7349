package metricshandler

import (
	"context"

	"github.com/Kargones/apk-metrics/internal/adapter/mssql"
	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/entity/srcmon"
	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// openHistory подключает историю запусков. Выключенная или недоступная
// история возвращает nil: анализ выполняется без неё.
func (h *MetricsHandler) openHistory(ctx context.Context, hc *config.HistoryConfig, log logging.Logger) mssql.Client {
	if hc == nil || !hc.Enabled {
		return nil
	}

	client := h.history
	if client == nil {
		var err error
		client, err = mssql.NewClient(mssql.ClientOptions{DSN: hc.DSN, Table: hc.Table, Timeout: hc.Timeout})
		if err != nil {
			log.Warn("История запусков недоступна", "error", err.Error())
			return nil
		}
	}
	if err := client.Connect(ctx); err != nil {
		log.Warn("Не удалось подключиться к истории запусков", "error", err.Error())
		return nil
	}
	return client
}

func closeHistory(client mssql.Client, log logging.Logger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Warn("Ошибка закрытия соединения с историей", "error", err.Error())
	}
}

// runRecord переводит итог запуска в запись истории.
func runRecord(wsName, checkpoint, actor string, report *srcmon.RunReport, runErr error) mssql.RunRecord {
	rec := mssql.RunRecord{
		Workspace:     wsName,
		Target:        report.Target,
		Kind:          report.Kind,
		Checkpoint:    checkpoint,
		Status:        string(report.State()),
		ExcludedCount: len(report.Excluded),
		ExitCode:      report.ExitCode,
		Actor:         actor,
		StartedAt:     report.StartedAt,
		Duration:      report.Duration,
	}
	if runErr != nil {
		rec.ErrorCode = apperrors.CodeOf(runErr, apperrors.ErrCommandExec)
	}
	return rec
}

// saveRun пишет запись. Ошибка записи истории не делает запуск неуспешным.
func saveRun(ctx context.Context, client mssql.Client, rec mssql.RunRecord, log logging.Logger) {
	if client == nil {
		return
	}
	if err := client.SaveRun(ctx, rec); err != nil {
		log.Warn("Не удалось сохранить запуск в историю",
			"target", rec.Target,
			"code", apperrors.ErrHistoryWrite,
			"error", err.Error(),
		)
	}
}

// previousCheckpoint возвращает checkpoint последнего успешного запуска цели или "".
func previousCheckpoint(ctx context.Context, client mssql.Client, wsName, target string, log logging.Logger) string {
	if client == nil {
		return ""
	}
	rec, err := client.LastCompleted(ctx, wsName, target)
	if err != nil {
		log.Warn("Не удалось прочитать историю запусков", "target", target, "error", err.Error())
		return ""
	}
	if rec == nil {
		return ""
	}
	return rec.Checkpoint
}
