// Package bulk merges spreadsheet rows into the contact store and flattens the
// store back into rows.
//
// Import runs row by row in file order inside one transaction: the Reconciler
// decides what a single row does, and the Coordinator owns the transaction,
// isolates failing rows behind savepoints and aggregates the outcomes. The
// Flattener is the export direction.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/sheet"
)

// Outcome classifies what reconciling one row did.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCreated
	OutcomeMerged
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeMerged:
		return "merged"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// RowResult is the outcome of one row. Err is set only for OutcomeFailed.
type RowResult struct {
	Row       int
	Outcome   Outcome
	ContactID uint
	Err       *RowError
}

// Reason returns the failure reason, or "" when the row did not fail.
func (r RowResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	if r.Err.Err != nil {
		return fmt.Sprintf("%s: %v", r.Err.Reason, r.Err.Err)
	}
	return r.Err.Reason
}

// Reconciler applies one row at a time: find-or-create the contact by exact
// name, overwrite its bookmark flag, and attach the detail unless an identical
// (type, value) pair already exists on that contact.
type Reconciler struct {
	format sheet.Format
}

// NewReconciler creates a Reconciler interpreting tokens with format.
func NewReconciler(format sheet.Format) *Reconciler {
	return &Reconciler{format: format}
}

// Apply reconciles row against store. Row-level faults come back as an
// OutcomeFailed result with a nil error; a non-nil error means the store can
// no longer be used and the batch must be abandoned.
func (r *Reconciler) Apply(ctx context.Context, store Store, row sheet.RawRow) (result RowResult, err error) {
	result = RowResult{Row: row.Number}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = failed(row.Number, fmt.Sprintf("unexpected fault: %v", rec), nil)
			err = nil
		}
	}()

	name := row.Cell(sheet.ColumnName)
	if name == "" {
		result.Outcome = OutcomeSkipped
		return result, nil
	}

	bookmarked := r.format.IsAffirmative(row.Cells[sheet.ColumnBookmarked])
	detailType := row.Cell(sheet.ColumnDetailType)
	detailValue := row.Cell(sheet.ColumnDetailValue)
	attach := detailType != "" && !r.format.IsNone(detailType) && detailValue != ""

	if reason := validateRow(name, detailType, detailValue, attach); reason != "" {
		return failed(row.Number, reason, nil), nil
	}

	created := false
	contact, err := store.FindContactByName(ctx, name)
	switch {
	case err == nil:
		contact.IsBookmarked = bookmarked
		if err := store.UpdateContact(ctx, contact); err != nil {
			return storeFault(row.Number, "update contact", err)
		}
	case errors.Is(err, ErrNotFound):
		contact = &db.Contact{Name: name, IsBookmarked: bookmarked}
		if err := store.CreateContact(ctx, contact); err != nil {
			return storeFault(row.Number, "create contact", err)
		}
		created = true
	default:
		return storeFault(row.Number, "find contact", err)
	}
	result.ContactID = contact.ID

	if attach {
		_, err := store.FindDetail(ctx, contact.ID, detailType, detailValue)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			detail := &db.ContactDetail{ContactID: contact.ID, Type: detailType, Value: detailValue}
			if err := store.CreateDetail(ctx, detail); err != nil {
				return storeFault(row.Number, "create detail", err)
			}
			created = true
		default:
			return storeFault(row.Number, "find detail", err)
		}
	}

	if created {
		result.Outcome = OutcomeCreated
	} else {
		result.Outcome = OutcomeMerged
	}
	return result, nil
}

func validateRow(name, detailType, detailValue string, attach bool) string {
	if n := utf8.RuneCountInString(name); n > db.MaxContactNameLength {
		return fmt.Sprintf("name exceeds %d characters", db.MaxContactNameLength)
	}
	if !attach {
		return ""
	}
	if utf8.RuneCountInString(detailType) > db.MaxDetailTypeLength {
		return fmt.Sprintf("detail type exceeds %d characters", db.MaxDetailTypeLength)
	}
	if utf8.RuneCountInString(detailValue) > db.MaxDetailValueLength {
		return fmt.Sprintf("detail value exceeds %d characters", db.MaxDetailValueLength)
	}
	return ""
}

func failed(row int, reason string, err error) RowResult {
	return RowResult{
		Row:     row,
		Outcome: OutcomeFailed,
		Err:     &RowError{Row: row, Reason: reason, Err: err},
	}
}

func storeFault(row int, op string, err error) (RowResult, error) {
	if isFatal(err) {
		return RowResult{Row: row}, fmt.Errorf("%s: %w", op, err)
	}
	return failed(row, op+" failed", err), nil
}
