package payout

import (
	"context"
	"math/rand"
)

// PaymentExecutor is the call out to the settlement rail. It holds no mutable
// state and knows nothing about idempotency; that is entirely the Processor's
// job. It only answers whether this one attempt went through.
type PaymentExecutor interface {
	Execute(ctx context.Context, item Item) bool
}

// SimulatedExecutor stands in for a real PIX settlement integration: each
// attempt succeeds with the configured probability.
type SimulatedExecutor struct {
	successRate float64
}

func NewSimulatedExecutor(successRate float64) *SimulatedExecutor {
	return &SimulatedExecutor{successRate: successRate}
}

func (e *SimulatedExecutor) Execute(_ context.Context, _ Item) bool {
	return rand.Float64() < e.successRate
}
