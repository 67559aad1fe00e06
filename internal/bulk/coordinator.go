package bulk

import (
	"context"
	"fmt"

	"github.com/contactbook/internal/sheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchResult summarizes one committed import run.
type BatchResult struct {
	RunID          string
	ProcessedCount int
	TotalRowCount  int
	SkippedCount   int
	FailedCount    int
	Outcomes       []RowResult
}

// Failures returns the failed rows in file order.
func (b *BatchResult) Failures() []RowResult {
	out := make([]RowResult, 0, b.FailedCount)
	for _, outcome := range b.Outcomes {
		if outcome.Outcome == OutcomeFailed {
			out = append(out, outcome)
		}
	}
	return out
}

func (b *BatchResult) add(outcome RowResult) {
	b.Outcomes = append(b.Outcomes, outcome)
	switch outcome.Outcome {
	case OutcomeCreated, OutcomeMerged:
		b.ProcessedCount++
	case OutcomeFailed:
		b.FailedCount++
	default:
		b.SkippedCount++
	}
}

// Coordinator runs a whole import inside one transaction.
type Coordinator struct {
	store      Transactor
	reconciler *Reconciler
	log        *zap.Logger
}

// NewCoordinator wires a Coordinator. A nil logger disables logging.
func NewCoordinator(store Transactor, reconciler *Reconciler, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{store: store, reconciler: reconciler, log: log}
}

// RunImport reconciles rows strictly in order. Failed rows are rolled back to
// their savepoint and the run continues; anything else that goes wrong rolls
// back the entire batch and is returned as *TransactionError.
func (c *Coordinator) RunImport(ctx context.Context, rows []sheet.RawRow) (*BatchResult, error) {
	result := &BatchResult{
		RunID:         uuid.NewString(),
		TotalRowCount: len(rows),
		Outcomes:      make([]RowResult, 0, len(rows)),
	}
	log := c.log.With(zap.String("run_id", result.RunID))
	log.Info("import started", zap.Int("rows", len(rows)))

	tx, err := c.store.Begin(ctx)
	if err != nil {
		log.Error("import could not begin transaction", zap.Error(err))
		return nil, &TransactionError{RunID: result.RunID, Op: "begin", Err: err}
	}

	for _, row := range rows {
		outcome, err := c.applyRow(ctx, tx, row)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("import rollback failed", zap.Error(rbErr))
			}
			log.Error("import aborted", zap.Int("row", row.Number), zap.Error(err))
			return nil, &TransactionError{RunID: result.RunID, Row: row.Number, Op: "reconcile row", Err: err}
		}

		if outcome.Outcome == OutcomeFailed {
			log.Warn("import row failed", zap.Int("row", row.Number), zap.String("reason", outcome.Reason()))
		}
		result.add(outcome)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		log.Error("import commit failed", zap.Error(err))
		return nil, &TransactionError{RunID: result.RunID, Op: "commit", Err: err}
	}

	log.Info("import finished",
		zap.Int("total", result.TotalRowCount),
		zap.Int("processed", result.ProcessedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}

func (c *Coordinator) applyRow(ctx context.Context, tx Tx, row sheet.RawRow) (RowResult, error) {
	savepoint := fmt.Sprintf("import_row_%d", row.Number)
	if err := tx.Savepoint(ctx, savepoint); err != nil {
		return RowResult{}, fmt.Errorf("create savepoint: %w", err)
	}

	outcome, err := c.reconciler.Apply(ctx, tx, row)
	if err != nil {
		return outcome, err
	}

	if outcome.Outcome == OutcomeFailed {
		if err := tx.RollbackTo(ctx, savepoint); err != nil {
			return outcome, fmt.Errorf("rollback to savepoint: %w", err)
		}
	}
	return outcome, nil
}
