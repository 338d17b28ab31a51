package triasync

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartpharmacy/crm_backend/config"
)

func TopicName() string {
	topicName := strings.TrimSpace(os.Getenv("TRIA_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "tria-sync"
	}
	return topicName
}

func PublishIngestionRun(ctx context.Context, runId uint) error {
	topicName := TopicName()

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}
	if envBoolDefault("TRIA_SYNC_CREATE_TOPIC", false) {
		if _, err := config.CreateTopicIfNotExists(client, topicName); err != nil {
			return err
		}
	}

	_, err = config.PublishJSON(ctx, topicName, RunPubSubPayload{RunId: runId})
	return err
}

// PubSubPushHandler handles Pub/Sub push deliveries. It always acks: a bad
// message is dropped rather than redelivered forever, and processing errors
// are recorded on the run itself.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_TRIA_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload RunPubSubPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.RunId == 0 {
			c.Status(204)
			return
		}

		_ = ProcessRun(c.Request.Context(), payload.RunId)
		c.Status(204)
	}
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
