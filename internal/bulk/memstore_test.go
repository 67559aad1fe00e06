package bulk

import (
	"context"
	"errors"
	"sort"

	"github.com/contactbook/internal/db"
)

// memState is a copy-on-write snapshot of the fake store.
type memState struct {
	contacts      []db.Contact
	details       []db.ContactDetail
	nextContactID uint
	nextDetailID  uint
}

func (s memState) clone() memState {
	out := s
	out.contacts = append([]db.Contact(nil), s.contacts...)
	out.details = append([]db.ContactDetail(nil), s.details...)
	return out
}

// memStore is an in-memory Transactor with hooks for injecting faults.
type memStore struct {
	committed memState

	beginErr        error
	commitErr       error
	failDetailValue string
	fatalOnName     string
	panicOnName     string

	commits   int
	rollbacks int
}

var (
	_ Transactor    = (*memStore)(nil)
	_ ContactReader = (*memStore)(nil)
	_ Tx            = (*memTx)(nil)
)

func newMemStore() *memStore {
	return &memStore{committed: memState{nextContactID: 1, nextDetailID: 1}}
}

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memTx{store: m, state: m.committed.clone(), savepoints: map[string]memState{}}, nil
}

func (m *memStore) ListContactsWithDetails(ctx context.Context) ([]db.Contact, error) {
	return assemble(m.committed), nil
}

func (m *memStore) contactNamed(name string) *db.Contact {
	for _, contact := range assemble(m.committed) {
		if contact.Name == name {
			c := contact
			return &c
		}
	}
	return nil
}

func assemble(state memState) []db.Contact {
	out := make([]db.Contact, 0, len(state.contacts))
	for _, contact := range state.contacts {
		c := contact
		c.Details = nil
		for _, detail := range state.details {
			if detail.ContactID == c.ID {
				c.Details = append(c.Details, detail)
			}
		}
		sort.Slice(c.Details, func(i, j int) bool { return c.Details[i].ID < c.Details[j].ID })
		out = append(out, c)
	}
	return out
}

type memTx struct {
	store      *memStore
	state      memState
	savepoints map[string]memState
	done       bool
}

func (t *memTx) check() error {
	if t.done {
		return ErrStoreUnavailable
	}
	return nil
}

func (t *memTx) FindContactByName(ctx context.Context, name string) (*db.Contact, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if name == t.store.fatalOnName {
		return nil, ErrStoreUnavailable
	}
	if name == t.store.panicOnName {
		panic("lookup exploded")
	}
	for _, contact := range t.state.contacts {
		if contact.Name == name {
			c := contact
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) CreateContact(ctx context.Context, contact *db.Contact) error {
	if err := t.check(); err != nil {
		return err
	}
	contact.ID = t.state.nextContactID
	t.state.nextContactID++
	t.state.contacts = append(t.state.contacts, *contact)
	return nil
}

func (t *memTx) UpdateContact(ctx context.Context, contact *db.Contact) error {
	if err := t.check(); err != nil {
		return err
	}
	for i := range t.state.contacts {
		if t.state.contacts[i].ID == contact.ID {
			t.state.contacts[i] = *contact
			return nil
		}
	}
	return ErrNotFound
}

func (t *memTx) FindDetail(ctx context.Context, contactID uint, detailType, value string) (*db.ContactDetail, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	for _, detail := range t.state.details {
		if detail.ContactID == contactID && detail.Type == detailType && detail.Value == value {
			d := detail
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) CreateDetail(ctx context.Context, detail *db.ContactDetail) error {
	if err := t.check(); err != nil {
		return err
	}
	if t.store.failDetailValue != "" && detail.Value == t.store.failDetailValue {
		return errors.New("constraint violation")
	}
	detail.ID = t.state.nextDetailID
	t.state.nextDetailID++
	t.state.details = append(t.state.details, *detail)
	return nil
}

func (t *memTx) Savepoint(ctx context.Context, name string) error {
	if err := t.check(); err != nil {
		return err
	}
	t.savepoints[name] = t.state.clone()
	return nil
}

func (t *memTx) RollbackTo(ctx context.Context, name string) error {
	if err := t.check(); err != nil {
		return err
	}
	snapshot, ok := t.savepoints[name]
	if !ok {
		return errors.New("no such savepoint")
	}
	t.state = snapshot.clone()
	return nil
}

func (t *memTx) Commit() error {
	if err := t.check(); err != nil {
		return err
	}
	t.done = true
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.committed = t.state
	t.store.commits++
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return ErrStoreUnavailable
	}
	t.done = true
	t.store.rollbacks++
	return nil
}
