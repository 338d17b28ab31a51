package triasync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartpharmacy/crm_backend/models"
)

func ListRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		runs, err := models.ListIngestionRuns(c.Request.Context(), c.Query("status"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, toRunResponse(run))
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func GetRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		run, err := models.GetIngestionRun(c.Request.Context(), uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusOK, toRunResponse(run))
	}
}

// RetryRunHandler re-publishes a failed run for processing.
func RetryRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := c.Request.Context()
		run, err := models.GetIngestionRun(ctx, uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		if run.Status != models.RunStatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only failed runs can be retried"})
			return
		}

		retry, err := models.CreateIngestionRun(ctx, run.ReportType, run.FileName, run.ObjectKey, models.RunTriggeredRetry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := PublishIngestionRun(ctx, retry.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, toRunResponse(retry))
	}
}

func toRunResponse(run *models.IngestionRun) RunResponse {
	return RunResponse{
		ID:            run.ID,
		ReportType:    string(run.ReportType),
		Status:        run.Status,
		FileName:      run.FileName,
		RowsProcessed: run.RowsProcessed,
		RowsFailed:    run.RowsFailed,
		RowsCreated:   run.RowsCreated,
		RowsUpdated:   run.RowsUpdated,
		ErrorMessage:  run.ErrorMessage,
		TriggeredBy:   run.TriggeredBy,
		StartedAt:     formatTime(run.StartedAt),
		FinishedAt:    formatTime(run.FinishedAt),
		DurationMs:    run.DurationMs,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
