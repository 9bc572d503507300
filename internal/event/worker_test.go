package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/event"
	"github.com/cezarfuhr/pix-payout-api/internal/kafka"
	"github.com/cezarfuhr/pix-payout-api/internal/payout"
	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	mu        sync.Mutex
	published []event.Settled
	done      chan struct{}
	want      int
}

func newCapturePublisher(want int) *capturePublisher {
	return &capturePublisher{done: make(chan struct{}), want: want}
}

func (p *capturePublisher) Publish(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, v.(event.Settled))
	if len(p.published) == p.want {
		close(p.done)
	}
	return nil
}

func TestWorkerPublishesPaidDetailsOnly(t *testing.T) {
	pub := newCapturePublisher(2)
	schema, err := kafka.NewValidator()
	require.NoError(t, err)

	w := event.NewWorker(zap.NewNop(), pub, schema, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.EnqueueReport(payout.Report{
		BatchID: "B1",
		Details: []payout.Detail{
			{ExternalID: "x1", Status: storage.StatusPaid, AmountCents: 100},
			{ExternalID: "x2", Status: storage.StatusFailed, AmountCents: 200},
			{ExternalID: "x3", Status: storage.StatusDuplicate, AmountCents: 300},
			{ExternalID: "x4", Status: storage.StatusPaid, AmountCents: 400},
		},
	})

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.published, 2)
	assert.Equal(t, "x1", pub.published[0].ExternalID)
	assert.Equal(t, "B1", pub.published[0].BatchID)
	assert.Equal(t, "x4", pub.published[1].ExternalID)
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	// no consumer running, queue of one
	w := event.NewWorker(zap.NewNop(), newCapturePublisher(0), nil, 1)

	w.Enqueue(event.Settled{ExternalID: "x1", BatchID: "B1", AmountCents: 1, SettledAt: time.Now()})
	w.Enqueue(event.Settled{ExternalID: "x2", BatchID: "B1", AmountCents: 2, SettledAt: time.Now()})
	// second enqueue must not block or panic; it is dropped with a warn
}
