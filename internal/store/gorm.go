package store

import (
	"context"
	"fmt"

	"github.com/contactbook/internal/bulk"
	"github.com/contactbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the gorm-backed persistence collaborator for import and export.
type Gorm struct {
	repo
}

// NewGorm creates a Gorm store over gdb.
func NewGorm(gdb *gorm.DB) *Gorm {
	return &Gorm{repo: repo{db: gdb}}
}

// Begin opens the batch transaction.
func (s *Gorm) Begin(ctx context.Context) (bulk.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormTx{repo: repo{db: tx}}, nil
}

// ListContactsWithDetails returns contacts by id with details preloaded by id.
func (s *Gorm) ListContactsWithDetails(ctx context.Context) ([]db.Contact, error) {
	var contacts []db.Contact
	if err := s.db.WithContext(ctx).
		Preload("Details", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("contact_details.id ASC")
		}).
		Order("contacts.id ASC").
		Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

type gormTx struct {
	repo
}

func (t *gormTx) Savepoint(ctx context.Context, name string) error {
	if err := t.db.WithContext(ctx).SavePoint(name).Error; err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	return nil
}

func (t *gormTx) RollbackTo(ctx context.Context, name string) error {
	if err := t.db.WithContext(ctx).RollbackTo(name).Error; err != nil {
		return fmt.Errorf("rollback to %s: %w", name, err)
	}
	return nil
}

func (t *gormTx) Commit() error {
	return t.db.Commit().Error
}

func (t *gormTx) Rollback() error {
	return t.db.Rollback().Error
}

// repo implements bulk.Store over either the root handle or a transaction.
type repo struct {
	db *gorm.DB
}

// FindContactByName matches the name exactly. Candidates are re-checked in Go
// because MySQL's default collation compares case-insensitively.
func (r repo) FindContactByName(ctx context.Context, name string) (*db.Contact, error) {
	var candidates []db.Contact
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("find contact by name: %w", err)
	}
	for i := range candidates {
		if candidates[i].Name == name {
			return &candidates[i], nil
		}
	}
	return nil, bulk.ErrNotFound
}

func (r repo) CreateContact(ctx context.Context, contact *db.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r repo) UpdateContact(ctx context.Context, contact *db.Contact) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(contact).Error; err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (r repo) FindDetail(ctx context.Context, contactID uint, detailType, value string) (*db.ContactDetail, error) {
	var candidates []db.ContactDetail
	if err := r.db.WithContext(ctx).
		Where("contact_id = ? AND type = ? AND value = ?", contactID, detailType, value).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("find contact detail: %w", err)
	}
	for i := range candidates {
		if candidates[i].Type == detailType && candidates[i].Value == value {
			return &candidates[i], nil
		}
	}
	return nil, bulk.ErrNotFound
}

func (r repo) CreateDetail(ctx context.Context, detail *db.ContactDetail) error {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return fmt.Errorf("create contact detail: %w", err)
	}
	return nil
}
