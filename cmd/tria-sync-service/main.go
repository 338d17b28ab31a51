// tria-sync-service runs report ingestion on its own deployment. It serves
// the Pub/Sub push endpoint and, when TRIA_SYNC_SUBSCRIPTION is set, also
// pulls from the subscription directly.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/smartpharmacy/crm_backend/triasync"
	"github.com/smartpharmacy/crm_backend/utils"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("TRIA_SYNC_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/pubsub/tria-sync", triasync.PubSubPushHandler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateModels()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	pullCtx, cancelPull := context.WithCancel(context.Background())
	defer cancelPull()
	if sub := strings.TrimSpace(os.Getenv("TRIA_SYNC_SUBSCRIPTION")); sub != "" {
		go runPullWorker(pullCtx, logger, sub)
	}

	select {
	case <-sigCtx.Done():
		cancelPull()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}
}

// runPullWorker consumes ingestion run messages from the subscription.
// Processing errors are recorded on the run, so the message is always acked.
func runPullWorker(ctx context.Context, logger *logrus.Logger, subscriptionName string) {
	client, err := config.GetClient(ctx)
	if err != nil {
		config.LogError(logger, "tria-sync-service", "runPullWorker", "GetClient", subscriptionName, err)
		return
	}

	sub := client.Subscription(subscriptionName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var payload triasync.RunPubSubPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.RunId == 0 {
			msg.Ack()
			return
		}
		if err := triasync.ProcessRun(ctx, payload.RunId); err != nil {
			config.LogError(logger, "tria-sync-service", "runPullWorker", "ProcessRun", payload.RunId, err)
		}
		msg.Ack()
	})
	if err != nil && ctx.Err() == nil {
		config.LogError(logger, "tria-sync-service", "runPullWorker", "Receive", subscriptionName, err)
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"status":         c.Writer.Status(),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"latency":        latency.String(),
			"correlation_id": cid,
		}).Info("request")
	}
}
