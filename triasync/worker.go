package triasync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/smartpharmacy/crm_backend/utils"
)

const defaultMaxReportBytes = 10 << 20

// ProcessRun downloads the uploaded report and runs the classifier for its
// report type. A Redis lock keeps concurrent deliveries of the same run from
// double processing; runs already finished are skipped.
func ProcessRun(ctx context.Context, runId uint) error {
	logger := config.GetLogger()

	run, err := models.GetIngestionRun(ctx, runId)
	if err != nil {
		return err
	}
	if run.Status == models.RunStatusCompleted || run.Status == models.RunStatusFailed {
		return nil
	}

	lock, err := utils.IngestionRunLock(ctx, config.GetRedisLock(), runId, 10*time.Minute)
	if err != nil {
		if errors.Is(err, utils.ErrLockNotObtained) {
			return nil
		}
		return err
	}
	if lock != nil {
		defer lock.Release(context.Background())
	}

	if err := run.MarkProcessing(ctx); err != nil {
		return err
	}

	summary, err := executeRun(ctx, run)
	if err != nil {
		config.LogError(logger, "triasync", "ProcessRun", "run failed", map[string]interface{}{
			"runId":      run.ID,
			"reportType": run.ReportType,
		}, err)
		counts := models.RunCounts{}
		if summary != nil {
			counts = runCounts(summary)
		}
		if markErr := run.MarkFailed(ctx, counts, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	logger.WithFields(map[string]interface{}{
		"runId":         run.ID,
		"reportType":    run.ReportType,
		"rowsProcessed": summary.RowsProcessed,
		"rowsFailed":    summary.RowsFailed,
		"rowsCreated":   summary.Created,
		"rowsUpdated":   summary.Updated,
	}).Info("Ingestion run completed")
	return run.MarkCompleted(ctx, runCounts(summary))
}

func runCounts(summary *Summary) models.RunCounts {
	return models.RunCounts{
		Processed: summary.RowsProcessed,
		Failed:    summary.RowsFailed,
		Created:   summary.Created,
		Updated:   summary.Updated,
	}
}

func executeRun(ctx context.Context, run *models.IngestionRun) (*Summary, error) {
	if !run.ReportType.IsValid() {
		return nil, fmt.Errorf("unknown report type: %s", run.ReportType)
	}
	if run.ObjectKey == "" {
		return nil, errors.New("ingestion run has no object key")
	}

	data, err := utils.DownloadBytesFromGCS(ctx, run.ObjectKey, maxReportBytes())
	if err != nil {
		return nil, fmt.Errorf("download report: %w", err)
	}

	workbook, err := OpenWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}

	store := models.NewDataStore()
	switch run.ReportType {
	case models.ReportTypeCustomerPoints:
		return ProcessCustomerPoints(ctx, store, workbook, run.ID)
	case models.ReportTypeProductSales:
		return ProcessProductSales(ctx, store, workbook, run.ID)
	case models.ReportTypeCustomerSales:
		return ProcessCustomerSales(ctx, store, workbook, run.ID)
	}
	return nil, fmt.Errorf("unhandled report type: %s", run.ReportType)
}

func maxReportBytes() int64 {
	raw := os.Getenv("MAX_REPORT_BYTES")
	if raw == "" {
		return defaultMaxReportBytes
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || size <= 0 {
		return defaultMaxReportBytes
	}
	return size
}
