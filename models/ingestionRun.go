package models

import (
	"context"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
)

// IngestionRun tracks one uploaded POS report through the pipeline.
type IngestionRun struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	ReportType    ReportType `gorm:"type:enum('CUSTOMER_POINTS','PRODUCT_SALES','CUSTOMER_SALES');not null" json:"report_type"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	FileName      string     `gorm:"size:255" json:"file_name"`
	ObjectKey     string     `gorm:"size:512" json:"object_key"`
	RowsProcessed int        `gorm:"default:0" json:"rows_processed"`
	RowsFailed    int        `gorm:"default:0" json:"rows_failed"`
	RowsCreated   int        `gorm:"default:0" json:"rows_created"`
	RowsUpdated   int        `gorm:"default:0" json:"rows_updated"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `gorm:"default:0" json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateIngestionRun(ctx context.Context, reportType ReportType, fileName string, objectKey string, triggeredBy string) (*IngestionRun, error) {
	run := IngestionRun{
		ReportType:  reportType,
		Status:      RunStatusPending,
		FileName:    fileName,
		ObjectKey:   objectKey,
		TriggeredBy: triggeredBy,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func GetIngestionRun(ctx context.Context, id uint) (*IngestionRun, error) {
	db := config.GetDB()
	var run IngestionRun
	if err := db.WithContext(ctx).Take(&run, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &run, nil
}

func ListIngestionRuns(ctx context.Context, status string, limit int) ([]*IngestionRun, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&IngestionRun{})
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}

	var runs []*IngestionRun
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (run *IngestionRun) MarkProcessing(ctx context.Context) error {
	now := time.Now()
	db := config.GetDB()
	err := db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"status":     RunStatusProcessing,
		"started_at": &now,
	}).Error
	if err != nil {
		return err
	}
	run.Status = RunStatusProcessing
	run.StartedAt = &now
	return nil
}

// RunCounts carries the row tallies a classifier produced for one run.
type RunCounts struct {
	Processed int
	Failed    int
	Created   int
	Updated   int
}

func (run *IngestionRun) MarkCompleted(ctx context.Context, counts RunCounts) error {
	return run.finish(ctx, RunStatusCompleted, counts, "")
}

func (run *IngestionRun) MarkFailed(ctx context.Context, counts RunCounts, errMessage string) error {
	if len(errMessage) > 4000 {
		errMessage = errMessage[:4000]
	}
	return run.finish(ctx, RunStatusFailed, counts, errMessage)
}

func (run *IngestionRun) finish(ctx context.Context, status string, counts RunCounts, errMessage string) error {
	now := time.Now()
	var durationMs int64
	if run.StartedAt != nil {
		durationMs = now.Sub(*run.StartedAt).Milliseconds()
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Model(run).Updates(map[string]interface{}{
		"status":         status,
		"rows_processed": counts.Processed,
		"rows_failed":    counts.Failed,
		"rows_created":   counts.Created,
		"rows_updated":   counts.Updated,
		"error_message":  errMessage,
		"finished_at":    &now,
		"duration_ms":    durationMs,
	}).Error
	if err != nil {
		return err
	}
	run.Status = status
	run.RowsProcessed = counts.Processed
	run.RowsFailed = counts.Failed
	run.RowsCreated = counts.Created
	run.RowsUpdated = counts.Updated
	run.ErrorMessage = errMessage
	run.FinishedAt = &now
	run.DurationMs = durationMs
	return nil
}
