package payout

// Item is one payout request inside a batch. ExternalID is the caller's
// idempotency key, unique across all time. PixKey is the destination account
// and must never be logged or echoed back.
type Item struct {
	ExternalID  string
	UserID      string
	AmountCents int64
	PixKey      string
}

// Batch is one submission. BatchID is correlation only, not a uniqueness
// domain.
type Batch struct {
	BatchID string
	Items   []Item
}

// Detail is the per-item outcome: paid, failed or duplicate.
type Detail struct {
	ExternalID  string
	Status      string
	AmountCents int64
}

// Report aggregates one batch. Processed counts items that reached a payment
// attempt (successful + failed); duplicates were never attempted.
type Report struct {
	BatchID    string
	Processed  int
	Successful int
	Failed     int
	Duplicates int
	Details    []Detail
}
