// Package memory is an in-process store backend. It is the default backend
// of the billpay service; contents do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/billpay"
	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Invoices in insertion order.
	invoices []*invoice.Invoice
	byKey    map[invoice.Key]int
	byID     map[string]int

	closed bool
}

func New() *Store {
	return &Store{
		invoices: make([]*invoice.Invoice, 0),
		byKey:    make(map[invoice.Key]int),
		byID:     make(map[string]int),
	}
}

// Invoice Store implementation
func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billpay.ErrStoreClosed
	}
	if _, exists := s.byKey[inv.Key()]; exists {
		return billpay.ErrDuplicateInvoice
	}

	s.byKey[inv.Key()] = len(s.invoices)
	s.byID[inv.ID.String()] = len(s.invoices)
	s.invoices = append(s.invoices, inv.Clone())
	return nil
}

func (s *Store) GetInvoiceByKey(_ context.Context, subscriberNo, month string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, billpay.ErrStoreClosed
	}
	if i, ok := s.byKey[invoice.Key{SubscriberNo: subscriberNo, Month: month}]; ok {
		return s.invoices[i].Clone(), nil
	}
	return nil, billpay.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, billpay.ErrStoreClosed
	}

	result := make([]*invoice.Invoice, 0)
	skipped := 0
	for _, inv := range s.invoices {
		if inv.SubscriberNo != opts.SubscriberNo {
			continue
		}
		if opts.Month != "" && inv.Month != opts.Month {
			continue
		}
		if opts.Unpaid && inv.Status.IsPaid() {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, inv.Clone())
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billpay.ErrStoreClosed
	}
	i, ok := s.byID[inv.ID.String()]
	if !ok {
		return billpay.ErrInvoiceNotFound
	}
	if s.invoices[i].Key() != inv.Key() {
		return billpay.ValidationError{Field: "month", Message: "invoice key cannot change"}
	}
	s.invoices[i] = inv.Clone()
	return nil
}

// Len reports how many invoices are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return billpay.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
