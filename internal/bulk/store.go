package bulk

import (
	"context"
	"errors"

	"github.com/contactbook/internal/db"
)

var (
	// ErrNotFound is returned by store lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable marks a store or transaction that can no longer be used.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ContactStore is the contact half of the persistence collaborator.
type ContactStore interface {
	FindContactByName(ctx context.Context, name string) (*db.Contact, error)
	CreateContact(ctx context.Context, contact *db.Contact) error
	UpdateContact(ctx context.Context, contact *db.Contact) error
}

// DetailStore is the detail half of the persistence collaborator.
type DetailStore interface {
	FindDetail(ctx context.Context, contactID uint, detailType, value string) (*db.ContactDetail, error)
	CreateDetail(ctx context.Context, detail *db.ContactDetail) error
}

// Store is everything the Reconciler needs for one row.
type Store interface {
	ContactStore
	DetailStore
}

// Tx is a Store scoped to one open transaction.
type Tx interface {
	Store
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Commit() error
	Rollback() error
}

// Transactor opens batch transactions.
type Transactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// ContactReader lists every contact with its details preloaded, in listing order.
type ContactReader interface {
	ListContactsWithDetails(ctx context.Context) ([]db.Contact, error)
}
