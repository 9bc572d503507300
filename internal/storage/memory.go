package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPayoutNotFound   = errors.New("payout not found")
	ErrOperatorExists   = errors.New("operator already exists")
	ErrOperatorNotFound = errors.New("operator not found")
)

// Payout statuses. Only StatusPaid is ever persisted; the other two exist
// solely in reports.
const (
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusDuplicate = "duplicate"
)

// PayoutRecord is the durable trace of one successful payout, keyed by the
// caller-supplied external_id.
type PayoutRecord struct {
	ExternalID  string
	Status      string
	AmountCents int64
	CreatedAt   time.Time
}

// Operator is a dashboard account for the read-side endpoints.
type Operator struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
}

// PayoutRepo is the ledger abstraction the batch processor runs against.
//
// SavePayout is the arbiter under concurrent submissions: when two writers
// race on the same external_id, exactly one insert lands and the loser gets
// its record back re-labeled StatusDuplicate with a nil error. Any other
// storage fault is returned as an error.
type PayoutRepo interface {
	WasProcessed(ctx context.Context, externalID string) (bool, error)
	SavePayout(ctx context.Context, rec PayoutRecord) (PayoutRecord, error)
	GetPayout(ctx context.Context, externalID string) (PayoutRecord, error)
}

type OperatorRepo interface {
	CreateOperator(ctx context.Context, op Operator) error
	GetOperatorByEmail(ctx context.Context, email string) (Operator, error)
}

// MemoryStore implements PayoutRepo and OperatorRepo. The mutex gives the
// same insert-if-absent guarantee the postgres unique constraint does.
type MemoryStore struct {
	mu        sync.RWMutex
	payouts   map[string]PayoutRecord
	operators map[string]Operator // keyed by email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		payouts:   make(map[string]PayoutRecord),
		operators: make(map[string]Operator),
	}
}

func (s *MemoryStore) WasProcessed(_ context.Context, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.payouts[externalID]
	return ok, nil
}

func (s *MemoryStore) SavePayout(_ context.Context, rec PayoutRecord) (PayoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[rec.ExternalID]; ok {
		rec.Status = StatusDuplicate
		return rec, nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.payouts[rec.ExternalID] = rec
	return rec, nil
}

func (s *MemoryStore) GetPayout(_ context.Context, externalID string) (PayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payouts[externalID]
	if !ok {
		return PayoutRecord{}, ErrPayoutNotFound
	}
	return rec, nil
}

func (s *MemoryStore) CreateOperator(_ context.Context, op Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.operators[op.Email]; ok {
		return ErrOperatorExists
	}
	s.operators[op.Email] = op
	return nil
}

func (s *MemoryStore) GetOperatorByEmail(_ context.Context, email string) (Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.operators[email]
	if !ok {
		return Operator{}, ErrOperatorNotFound
	}
	return op, nil
}
