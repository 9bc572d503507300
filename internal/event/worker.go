package event

import (
	"context"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/payout"
	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/cezarfuhr/pix-payout-api/telemetry"
	"go.uber.org/zap"
)

// Settled is the payout.settled.v1 payload. No pix_key here: the event only
// carries what consumers need to reconcile.
type Settled struct {
	ExternalID  string    `json:"external_id"`
	BatchID     string    `json:"batch_id"`
	AmountCents int64     `json:"amount_cents"`
	SettledAt   time.Time `json:"settled_at"`
}

// Publisher is the Kafka producer surface the worker needs.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// SchemaValidator rejects malformed events before publishing.
type SchemaValidator interface {
	Validate(doc any) error
}

// Worker drains settlement events to Kafka off the request path. Publishing
// is best effort: the ledger, not the topic, is the source of truth, so a
// full queue drops the event with a warn instead of blocking the batch call.
type Worker struct {
	log      *zap.Logger
	pub      Publisher
	validate SchemaValidator
	ch       chan Settled
}

func NewWorker(log *zap.Logger, pub Publisher, validate SchemaValidator, queueSize int) *Worker {
	return &Worker{
		log:      log,
		pub:      pub,
		validate: validate,
		ch:       make(chan Settled, queueSize),
	}
}

// EnqueueReport queues one event per paid detail of the report.
func (w *Worker) EnqueueReport(r payout.Report) {
	now := time.Now()
	for _, d := range r.Details {
		if d.Status != storage.StatusPaid {
			continue
		}
		w.Enqueue(Settled{
			ExternalID:  d.ExternalID,
			BatchID:     r.BatchID,
			AmountCents: d.AmountCents,
			SettledAt:   now,
		})
	}
}

func (w *Worker) Enqueue(e Settled) {
	select {
	case w.ch <- e:
		telemetry.SetEventQueueCurrent(len(w.ch))
	default:
		// queue full
		telemetry.IncEventsDropped()
		w.log.Warn("event queue full; dropping settled event", zap.String("external_id", e.ExternalID))
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.log.Info("event worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("event worker stopped")
			return
		case e := <-w.ch:
			telemetry.SetEventQueueCurrent(len(w.ch))
			if w.validate != nil {
				if err := w.validate.Validate(e); err != nil {
					w.log.Error("settled event failed schema validation",
						zap.String("external_id", e.ExternalID), zap.Error(err))
					continue
				}
			}
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := w.pub.Publish(pubCtx, e.ExternalID, e)
			cancel()
			if err != nil {
				w.log.Error("failed to publish settled event",
					zap.String("external_id", e.ExternalID), zap.Error(err))
				continue
			}
			telemetry.IncEventsPublished()
		}
	}
}
