package bulk

import (
	"context"
	"fmt"

	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/sheet"
)

// Flattener projects contacts into one row per detail, or a single sentinel
// row for a contact without details.
type Flattener struct {
	format sheet.Format
}

// NewFlattener creates a Flattener rendering tokens with format.
func NewFlattener(format sheet.Format) *Flattener {
	return &Flattener{format: format}
}

// Export reads every contact from reader and flattens them in listing order.
func (f *Flattener) Export(ctx context.Context, reader ContactReader) ([]sheet.OutputRow, error) {
	contacts, err := reader.ListContactsWithDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts for export: %w", err)
	}
	return f.Project(contacts), nil
}

// Project flattens contacts without touching the store.
func (f *Flattener) Project(contacts []db.Contact) []sheet.OutputRow {
	rows := make([]sheet.OutputRow, 0, len(contacts))
	for _, contact := range contacts {
		token := f.format.BookmarkToken(contact.IsBookmarked)

		if len(contact.Details) == 0 {
			rows = append(rows, sheet.OutputRow{
				ID:          contact.ID,
				Name:        contact.Name,
				Bookmarked:  token,
				DetailType:  f.format.None,
				DetailValue: f.format.None,
			})
			continue
		}

		for _, detail := range contact.Details {
			rows = append(rows, sheet.OutputRow{
				ID:          contact.ID,
				Name:        contact.Name,
				Bookmarked:  token,
				DetailType:  detail.Type,
				DetailValue: detail.Value,
			})
		}
	}
	return rows
}
