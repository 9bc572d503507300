package payout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cezarfuhr/pix-payout-api/internal/payout"
	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// execFunc adapts a function to payout.PaymentExecutor so tests can force
// deterministic settlement outcomes.
type execFunc func(ctx context.Context, item payout.Item) bool

func (f execFunc) Execute(ctx context.Context, item payout.Item) bool { return f(ctx, item) }

var (
	alwaysSucceed = execFunc(func(context.Context, payout.Item) bool { return true })
	alwaysFail    = execFunc(func(context.Context, payout.Item) bool { return false })
)

// scripted returns an executor that replays the given outcomes in call order.
func scripted(outcomes ...bool) payout.PaymentExecutor {
	i := 0
	return execFunc(func(context.Context, payout.Item) bool {
		out := outcomes[i]
		i++
		return out
	})
}

func newProcessor(ledger storage.PayoutRepo, exec payout.PaymentExecutor) *payout.Processor {
	return payout.NewProcessor(zap.NewNop(), ledger, exec)
}

func batchOf(items ...payout.Item) payout.Batch {
	return payout.Batch{BatchID: "B1", Items: items}
}

func item(externalID, userID string, cents int64) payout.Item {
	return payout.Item{ExternalID: externalID, UserID: userID, AmountCents: cents, PixKey: userID + "@bank.example"}
}

func TestProcessBatchAllPaid(t *testing.T) {
	store := storage.NewMemoryStore()
	p := newProcessor(store, alwaysSucceed)

	report, err := p.ProcessBatch(context.Background(), batchOf(
		item("x1", "u1", 35000),
		item("x2", "u2", 120000),
	))
	require.NoError(t, err)

	assert.Equal(t, "B1", report.BatchID)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Duplicates)
	require.Len(t, report.Details, 2)
	for _, d := range report.Details {
		assert.Equal(t, storage.StatusPaid, d.Status)
	}

	rec, err := store.GetPayout(context.Background(), "x1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPaid, rec.Status)
	assert.Equal(t, int64(35000), rec.AmountCents)
}

func TestResubmitReportsDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	p := newProcessor(store, alwaysSucceed)
	b := batchOf(item("x1", "u1", 35000), item("x2", "u2", 120000))

	first, err := p.ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Successful)
	assert.Equal(t, 0, first.Duplicates)

	second, err := p.ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Successful)
	assert.Equal(t, 2, second.Duplicates)
	assert.Equal(t, 0, second.Processed) // duplicates were never attempted

	// and again: duplicates are duplicates forever
	third, err := p.ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Duplicates)
}

func TestFailedItemLeavesNoRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	b := batchOf(item("x1", "u1", 5000))

	report, err := newProcessor(store, alwaysFail).ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Processed)

	done, err := store.WasProcessed(context.Background(), "x1")
	require.NoError(t, err)
	assert.False(t, done, "failed attempt must not persist anything")

	// resubmission behaves like a first-time submission
	retry, err := newProcessor(store, alwaysSucceed).ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Successful)
	assert.Equal(t, 0, retry.Duplicates)
}

func TestMixedBatch(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := store.SavePayout(context.Background(), storage.PayoutRecord{
		ExternalID: "seen", Status: storage.StatusPaid, AmountCents: 100,
	})
	require.NoError(t, err)

	report, err := newProcessor(store, alwaysSucceed).ProcessBatch(context.Background(), batchOf(
		item("seen", "u1", 100),
		item("fresh", "u2", 200),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Processed)
}

func TestDetailsPreserveInputOrder(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := store.SavePayout(context.Background(), storage.PayoutRecord{
		ExternalID: "b", Status: storage.StatusPaid, AmountCents: 2,
	})
	require.NoError(t, err)

	// a fails, b is a duplicate, c pays
	report, err := newProcessor(store, scripted(false, true)).ProcessBatch(context.Background(), batchOf(
		item("a", "u1", 1),
		item("b", "u2", 2),
		item("c", "u3", 3),
	))
	require.NoError(t, err)
	require.Len(t, report.Details, 3)
	assert.Equal(t, "a", report.Details[0].ExternalID)
	assert.Equal(t, storage.StatusFailed, report.Details[0].Status)
	assert.Equal(t, "b", report.Details[1].ExternalID)
	assert.Equal(t, storage.StatusDuplicate, report.Details[1].Status)
	assert.Equal(t, "c", report.Details[2].ExternalID)
	assert.Equal(t, storage.StatusPaid, report.Details[2].Status)

	assert.Equal(t, report.Successful+report.Failed, report.Processed)
	assert.Equal(t, len(report.Details), report.Successful+report.Failed+report.Duplicates)
}

func TestEmptyBatchDegeneratesToZeroReport(t *testing.T) {
	// validation rejects empty batches upstream; the processor itself just
	// produces an all-zero report
	report, err := newProcessor(storage.NewMemoryStore(), alwaysSucceed).
		ProcessBatch(context.Background(), payout.Batch{BatchID: "B0"})
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Zero(t, report.Successful)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Duplicates)
	assert.Empty(t, report.Details)
}

// raceLedger simulates losing the insert race: the check says not processed,
// but the save lands as duplicate.
type raceLedger struct{ storage.PayoutRepo }

func (raceLedger) WasProcessed(context.Context, string) (bool, error) { return false, nil }

func (raceLedger) SavePayout(_ context.Context, rec storage.PayoutRecord) (storage.PayoutRecord, error) {
	rec.Status = storage.StatusDuplicate
	return rec, nil
}

func TestLostSaveRaceRecountsAsDuplicate(t *testing.T) {
	report, err := newProcessor(raceLedger{}, alwaysSucceed).
		ProcessBatch(context.Background(), batchOf(item("x1", "u1", 100)))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.Successful)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, storage.StatusDuplicate, report.Details[0].Status)
}

// errLedger fails with the given errors on each operation.
type errLedger struct {
	storage.PayoutRepo
	checkErr error
	saveErr  error
}

func (l errLedger) WasProcessed(context.Context, string) (bool, error) { return false, l.checkErr }

func (l errLedger) SavePayout(_ context.Context, rec storage.PayoutRecord) (storage.PayoutRecord, error) {
	return rec, l.saveErr
}

func TestStorageFaultAbortsWholeBatch(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := newProcessor(errLedger{checkErr: boom}, alwaysSucceed).
		ProcessBatch(context.Background(), batchOf(item("x1", "u1", 100)))
	require.ErrorIs(t, err, boom)

	report, err := newProcessor(errLedger{saveErr: boom}, alwaysSucceed).
		ProcessBatch(context.Background(), batchOf(item("x1", "u1", 100)))
	require.ErrorIs(t, err, boom)
	assert.Zero(t, report, "no partial report on a fatal storage error")
}

func TestFailedExecutionSkipsSave(t *testing.T) {
	saves := 0
	ledger := &countingLedger{inner: storage.NewMemoryStore(), saves: &saves}

	_, err := newProcessor(ledger, scripted(false, true)).ProcessBatch(context.Background(), batchOf(
		item("fail-1", "u1", 100),
		item("ok-1", "u2", 200),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, saves, "only the successful settlement is persisted")
}

type countingLedger struct {
	inner *storage.MemoryStore
	saves *int
}

func (l *countingLedger) WasProcessed(ctx context.Context, id string) (bool, error) {
	return l.inner.WasProcessed(ctx, id)
}

func (l *countingLedger) SavePayout(ctx context.Context, rec storage.PayoutRecord) (storage.PayoutRecord, error) {
	*l.saves++
	return l.inner.SavePayout(ctx, rec)
}

func (l *countingLedger) GetPayout(ctx context.Context, id string) (storage.PayoutRecord, error) {
	return l.inner.GetPayout(ctx, id)
}
