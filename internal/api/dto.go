package api

import (
	"strings"
	"time"
)

// One payout entry. external_id is the caller's idempotency key; pix_key is
// sensitive and never comes back in any response.
type PayoutItemRequest struct {
	ExternalID  string `json:"external_id"  validate:"required"`
	UserID      string `json:"user_id"      validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gte=1,lte=100000000"`
	PixKey      string `json:"pix_key"      validate:"required"`
}

// Entrada para processar um lote de payouts
type PayoutBatchRequest struct {
	BatchID string              `json:"batch_id" validate:"required"`
	Items   []PayoutItemRequest `json:"items"    validate:"required,min=1,dive"`
}

// Trim strips surrounding whitespace from every string field before
// validation, so "  " fails required and " x " keys match "x".
func (r *PayoutBatchRequest) Trim() {
	r.BatchID = strings.TrimSpace(r.BatchID)
	for i := range r.Items {
		r.Items[i].ExternalID = strings.TrimSpace(r.Items[i].ExternalID)
		r.Items[i].UserID = strings.TrimSpace(r.Items[i].UserID)
		r.Items[i].PixKey = strings.TrimSpace(r.Items[i].PixKey)
	}
}

type PayoutDetailResponse struct {
	ExternalID  string `json:"external_id"`
	Status      string `json:"status"` // paid | failed | duplicate
	AmountCents int64  `json:"amount_cents"`
}

type PayoutReportResponse struct {
	BatchID    string                 `json:"batch_id"`
	Processed  int                    `json:"processed"`
	Successful int                    `json:"successful"`
	Failed     int                    `json:"failed"`
	Duplicates int                    `json:"duplicates"`
	Details    []PayoutDetailResponse `json:"details"`
}

// Read-side view of a persisted payout record.
type PayoutRecordResponse struct {
	ExternalID  string    `json:"external_id"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// Operator registration
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=4,max=80"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
