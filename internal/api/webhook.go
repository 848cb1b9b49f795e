package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/validation"
)

const EventRunSucceeded = "ACTOR.RUN.SUCCEEDED"

// MessageJobsSynced is published after a webhook sync, correlated by
// dataset id.
const MessageJobsSynced = "jobs-synced"

type apifyWebhook struct {
	EventType string `json:"eventType"`
	Resource  *struct {
		ID               string `json:"id"`
		ActID            string `json:"actId"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"resource"`
}

func (w apifyWebhook) datasetID() string {
	if w.Resource == nil {
		return ""
	}
	return w.Resource.DefaultDatasetID
}

// ApifyWebhook ingests the dataset of a finished actor run. Only successful
// runs are synced; every other event is acknowledged and ignored.
func (h *Handler) ApifyWebhook(c *gin.Context) {
	if !h.authorizedWebhook(c.GetHeader("Authorization")) {
		writeError(c, apperrors.NewWebhookUnauthorizedError())
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	if result := validation.ApifyWebhook.ValidateBytes(body); !result.Valid {
		writeError(c, apperrors.NewWebhookPayloadInvalidError(result.Summary()))
		return
	}
	var payload apifyWebhook
	if err := bindJSON(body, &payload); err != nil {
		writeError(c, apperrors.NewWebhookPayloadInvalidError(err.Error()))
		return
	}

	log := h.logger.WithFields(map[string]interface{}{"eventType": payload.EventType})
	if payload.Resource != nil {
		log = log.WithFields(map[string]interface{}{"actorId": payload.Resource.ActID, "runId": payload.Resource.ID})
	}
	log.Info("apify webhook received", nil)

	if payload.EventType != EventRunSucceeded {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Ignoring event type: " + payload.EventType,
		})
		return
	}

	datasetID := payload.datasetID()
	if datasetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No datasetId in webhook payload",
		})
		return
	}
	if h.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Job sync is not configured"})
		return
	}

	stats, err := h.syncer.SyncDataset(c.Request.Context(), datasetID)
	if err != nil {
		log.Error("apify webhook sync failed", map[string]interface{}{"datasetId": datasetID, "error": err.Error()})
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Webhook processing failed",
			"details": err.Error(),
		})
		return
	}

	message := fmt.Sprintf("Synced %d new jobs, updated %d", stats.Inserted, stats.Updated)
	if stats.Fetched == 0 {
		message = "No jobs in dataset"
	}
	log.Info("apify webhook sync complete", map[string]interface{}{
		"datasetId": datasetID,
		"fetched":   stats.Fetched,
		"inserted":  stats.Inserted,
		"updated":   stats.Updated,
		"skipped":   stats.Skipped,
	})
	if h.events != nil {
		if err := h.events.PublishMessage(c.Request.Context(), MessageJobsSynced, datasetID, stats); err != nil {
			log.Warn("jobs-synced message not published", map[string]interface{}{"datasetId": datasetID, "error": err.Error()})
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"stats":   stats,
	})
}

// authorizedWebhook accepts any request when no secret is configured.
func (h *Handler) authorizedWebhook(header string) bool {
	secret := h.cfg.Apify.WebhookSecret
	if secret == "" {
		return true
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func validateFilterState(body []byte) *validation.ValidationResult {
	return validation.JobFilterState.ValidateBytes(body)
}

func bindJSON(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
