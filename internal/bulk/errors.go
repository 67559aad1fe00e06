package bulk

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

// RowError describes why a single import row could not be reconciled.
type RowError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// TransactionError reports a batch that was rolled back as a whole.
type TransactionError struct {
	RunID string
	Row   int
	Op    string
	Err   error
}

func (e *TransactionError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import %s rolled back at row %d: %s: %v", e.RunID, e.Row, e.Op, e.Err)
	}
	return fmt.Sprintf("import %s rolled back: %s: %v", e.RunID, e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// isFatal reports whether err leaves the transaction unusable, as opposed to
// a fault confined to the current row.
func isFatal(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
