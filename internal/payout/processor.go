package payout

import (
	"context"
	"fmt"

	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"go.uber.org/zap"
)

// Processor classifies and settles every item of a batch, in input order.
// It holds no state across batches; the ledger is the only shared resource,
// and its insert is what arbitrates concurrent submissions of the same
// external_id.
type Processor struct {
	log    *zap.Logger
	ledger storage.PayoutRepo
	exec   PaymentExecutor
}

func NewProcessor(log *zap.Logger, ledger storage.PayoutRepo, exec PaymentExecutor) *Processor {
	return &Processor{log: log, ledger: ledger, exec: exec}
}

// ProcessBatch runs the per-item algorithm sequentially and returns a
// complete order-preserving report. A storage fault aborts the whole call
// with no partial report; items already persisted stay persisted, so a full
// retry of the batch is safe and reports them as duplicates.
func (p *Processor) ProcessBatch(ctx context.Context, b Batch) (Report, error) {
	report := Report{
		BatchID: b.BatchID,
		Details: make([]Detail, 0, len(b.Items)),
	}

	for _, item := range b.Items {
		status, err := p.processItem(ctx, item)
		if err != nil {
			return Report{}, err
		}
		switch status {
		case storage.StatusPaid:
			report.Successful++
		case storage.StatusFailed:
			report.Failed++
		case storage.StatusDuplicate:
			report.Duplicates++
		}
		report.Details = append(report.Details, Detail{
			ExternalID:  item.ExternalID,
			Status:      status,
			AmountCents: item.AmountCents,
		})
	}
	report.Processed = report.Successful + report.Failed

	p.log.Info("batch processed",
		zap.String("batch_id", b.BatchID),
		zap.Int("processed", report.Processed),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int("duplicates", report.Duplicates),
	)
	return report, nil
}

func (p *Processor) processItem(ctx context.Context, item Item) (string, error) {
	done, err := p.ledger.WasProcessed(ctx, item.ExternalID)
	if err != nil {
		return "", fmt.Errorf("ledger check %s: %w", item.ExternalID, err)
	}
	if done {
		return storage.StatusDuplicate, nil
	}

	if !p.exec.Execute(ctx, item) {
		// No record is written for failures, so a resubmission of this
		// external_id starts from scratch.
		return storage.StatusFailed, nil
	}

	rec, err := p.ledger.SavePayout(ctx, storage.PayoutRecord{
		ExternalID:  item.ExternalID,
		Status:      storage.StatusPaid,
		AmountCents: item.AmountCents,
	})
	if err != nil {
		return "", fmt.Errorf("ledger save %s: %w", item.ExternalID, err)
	}
	if rec.Status == storage.StatusDuplicate {
		// A concurrent submission won the insert race after our check.
		// The settlement call above did run; only the winner's record
		// survives. Reserving the key before executing would close that
		// gap, at the cost of a reservation protocol.
		p.log.Warn("lost save race, recounting as duplicate",
			zap.String("external_id", item.ExternalID))
	}
	return rec.Status, nil
}
