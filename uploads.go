package main

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/smartpharmacy/crm_backend/triasync"
	"github.com/smartpharmacy/crm_backend/utils"
)

type uploadSignRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	Size       int64  `json:"size"`
	ReportType string `json:"reportType"`
}

type uploadCompleteRequest struct {
	ObjectKey  string `json:"objectKey"`
	FileName   string `json:"fileName"`
	ReportType string `json:"reportType"`
}

type uploadSignResponse struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ObjectKey string            `json:"objectKey"`
	AccessURL string            `json:"accessUrl"`
	ExpiresAt string            `json:"expiresAt"`
}

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

func signUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		if !requireSession(c) {
			return
		}

		var req uploadSignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		if req.FileName == "" || req.MimeType == "" || req.Size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fileName, mimeType and size are required"})
			return
		}
		if req.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}

		reportType := models.ReportType(strings.ToUpper(strings.TrimSpace(req.ReportType)))
		if !reportType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report type"})
			return
		}
		if !utils.IsSpreadsheetContentType(req.MimeType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only xlsx and xls reports are supported"})
			return
		}

		ext := strings.ToLower(filepath.Ext(req.FileName))
		if ext != ".xlsx" && ext != ".xls" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only xlsx and xls reports are supported"})
			return
		}

		objectKey := path.Join("reports", strings.ToLower(string(reportType)), uuid.New().String()+ext)
		if utils.GetStorageProvider() != utils.StorageProviderGCS {
			c.JSON(http.StatusBadRequest, gin.H{"error": "storage provider not supported"})
			return
		}

		signed, err := utils.SignReportUpload(c.Request.Context(), objectKey, req.MimeType)
		if err != nil {
			config.LogError(logger, "uploads.go", "signUploadHandler", "SignReportUpload", objectKey, err)
			message := "failed to sign upload"
			if !strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
				message = fmt.Sprintf("failed to sign upload: %v", err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": message})
			return
		}

		logger.WithFields(logrus.Fields{
			"report_type": reportType,
			"mime_type":   req.MimeType,
			"size":        req.Size,
			"object_key":  objectKey,
		}).Info("[upload.sign]")

		c.JSON(http.StatusOK, gin.H{
			"data": uploadSignResponse{
				UploadURL: signed.UploadURL,
				Method:    signed.Method,
				Headers:   signed.Headers,
				ObjectKey: signed.ObjectKey,
				AccessURL: signed.AccessURL,
				ExpiresAt: signed.ExpiresAt.UTC().Format(time.RFC3339),
			},
		})
	}
}

// completeUploadHandler registers the uploaded report and queues it for
// processing. When Pub/Sub is unavailable the run is processed inline so a
// local setup still works.
func completeUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		if !requireSession(c) {
			return
		}

		var req uploadCompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.ObjectKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey is required"})
			return
		}
		if !strings.HasPrefix(req.ObjectKey, "reports/") || strings.Contains(req.ObjectKey, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid object key"})
			return
		}

		reportType := models.ReportType(strings.ToUpper(strings.TrimSpace(req.ReportType)))
		if !reportType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report type"})
			return
		}

		ctx := c.Request.Context()
		exists, err := utils.ObjectExistsInGCS(ctx, req.ObjectKey)
		if err != nil {
			config.LogError(logger, "uploads.go", "completeUploadHandler", "ObjectExistsInGCS", req.ObjectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage check failed"})
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "object was not uploaded"})
			return
		}

		run, err := models.CreateIngestionRun(ctx, reportType, req.FileName, req.ObjectKey, models.RunTriggeredUpload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := triasync.PublishIngestionRun(ctx, run.ID); err != nil {
			config.LogError(logger, "uploads.go", "completeUploadHandler", "PublishIngestionRun", run.ID, err)
			go func(runId uint) {
				_ = triasync.ProcessRun(config.GetRedisContext(), runId)
			}(run.ID)
		}

		logger.WithFields(logrus.Fields{
			"run_id":      run.ID,
			"report_type": reportType,
			"object_key":  req.ObjectKey,
		}).Info("[upload.complete]")

		c.JSON(http.StatusAccepted, gin.H{
			"data": gin.H{
				"runId":      run.ID,
				"status":     run.Status,
				"reportType": run.ReportType,
			},
		})
	}
}
