package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/payout"
	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/cezarfuhr/pix-payout-api/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handlers struct {
	Log          *zap.Logger
	Ledger       storage.PayoutRepo
	Processor    *payout.Processor
	V            *validator.Validate
	DBPing       func(ctx context.Context) error
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Publisher hook (send settled items to the event worker)
	Publish func(report payout.Report)
}

// health handler
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	db := "ok"
	if h.DBPing != nil {
		if err := h.DBPing(ctx); err != nil {
			db = "down"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"db":            db,
		"kafka_enabled": h.KafkaEnabled,
	})
}

// payouts handler

// ProcessBatch godoc
// @Summary      Submit a batch of PIX payouts
// @Description  Processes every item of the batch and returns a per-item report. Retrying a batch never double-pays: items already paid come back as "duplicate".
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        X-API-Key  header    string              true  "Pre-shared API key"
// @Param        payload    body      PayoutBatchRequest  true  "Payout batch"
// @Success      200        {object}  PayoutReportResponse
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Failure      422        {object}  map[string]string
// @Failure      429        {object}  map[string]string
// @Router       /payouts/batch [post]
func (h *Handlers) ProcessBatch(c *gin.Context) {
	var req PayoutBatchRequest
	if err := c.BindJSON(&req); err != nil {
		telemetry.IncPayoutBatchesFailed("validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	req.Trim()
	if err := h.V.Struct(req); err != nil {
		telemetry.IncPayoutBatchesFailed("validation")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	items := make([]payout.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, payout.Item{
			ExternalID:  it.ExternalID,
			UserID:      it.UserID,
			AmountCents: it.AmountCents,
			PixKey:      it.PixKey,
		})
	}

	start := time.Now()
	report, err := h.Processor.ProcessBatch(c.Request.Context(), payout.Batch{
		BatchID: req.BatchID,
		Items:   items,
	})
	if err != nil {
		telemetry.IncPayoutBatchesFailed("storage")
		h.Log.Error("batch aborted", zap.String("batch_id", req.BatchID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process batch"})
		return
	}
	telemetry.ObserveBatchDuration(time.Since(start))
	telemetry.IncPayoutBatches()
	telemetry.IncPayoutItems(storage.StatusPaid, report.Successful)
	telemetry.IncPayoutItems(storage.StatusFailed, report.Failed)
	telemetry.IncPayoutItems(storage.StatusDuplicate, report.Duplicates)

	if h.Publish != nil {
		h.Publish(report)
	}

	details := make([]PayoutDetailResponse, 0, len(report.Details))
	for _, d := range report.Details {
		details = append(details, PayoutDetailResponse{
			ExternalID:  d.ExternalID,
			Status:      d.Status,
			AmountCents: d.AmountCents,
		})
	}
	c.JSON(http.StatusOK, PayoutReportResponse{
		BatchID:    report.BatchID,
		Processed:  report.Processed,
		Successful: report.Successful,
		Failed:     report.Failed,
		Duplicates: report.Duplicates,
		Details:    details,
	})
}

// GetPayout godoc
// @Summary      Look up a persisted payout record
// @Tags         payouts
// @Produce      json
// @Param        external_id  path      string  true  "External ID"
// @Success      200          {object}  PayoutRecordResponse
// @Failure      404          {object}  map[string]string
// @Security     BearerAuth
// @Router       /payouts/{external_id} [get]
func (h *Handlers) GetPayout(c *gin.Context) {
	externalID := c.Param("external_id")

	rec, err := h.Ledger.GetPayout(c.Request.Context(), externalID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrPayoutNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, PayoutRecordResponse{
		ExternalID:  rec.ExternalID,
		Status:      rec.Status,
		AmountCents: rec.AmountCents,
		CreatedAt:   rec.CreatedAt,
	})
}
