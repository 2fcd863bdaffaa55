// ABOUTME: Transaction synchronizer for the customer's order history.
// ABOUTME: Replaces the cache wholesale on load; status patches are local-only edits.
package shop

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

const txRefreshKey = "refresh"

// Transactions mediates the customer's order list. Load and Refresh
// are identical fetches tracked under separate flags so initial-load
// and pull-to-refresh UI can present distinct indicators.
type Transactions struct {
	client *Client
	log    *slog.Logger
	group  singleflight.Group

	mu         sync.Mutex
	list       []Transaction
	loading    bool
	refreshing bool
	seq        uint64
	applied    uint64
}

// NewTransactions returns a transaction synchronizer with an empty
// cache. The loading flag stays set until the first Load completes;
// Shop.Start issues that load when the synchronizer is activated.
func NewTransactions(client *Client) *Transactions {
	return &Transactions{
		client:  client,
		log:     client.cfg.logger(),
		loading: true,
	}
}

// All returns a copy of the cached transactions in server order.
func (s *Transactions) All() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.list))
	copy(out, s.list)
	return out
}

// ByID looks up a cached transaction. Callers seeing ok=false are
// expected to trigger Refresh; the record may simply not be loaded yet.
func (s *Transactions) ByID(id int) (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.list {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// Loading reports whether the initial load is still outstanding.
func (s *Transactions) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Refreshing reports whether a Refresh is in flight.
func (s *Transactions) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// Load fetches the order list and replaces the cache wholesale.
// Failures are logged and the cache keeps its prior value.
func (s *Transactions) Load(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()
	s.fetch(ctx)
}

// Refresh is Load tracked under the refreshing flag.
func (s *Transactions) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.refreshing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()
	s.fetch(ctx)
}

func (s *Transactions) fetch(ctx context.Context) {
	_, err, _ := s.group.Do(txRefreshKey, func() (any, error) {
		s.mu.Lock()
		s.seq++
		ticket := s.seq
		s.mu.Unlock()

		list, err := s.client.Transactions(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if ticket > s.applied {
			s.applied = ticket
			s.list = list
		}
		return nil, nil
	})
	if err != nil && !errors.Is(err, ErrNoToken) {
		s.log.Warn("transactions load failed", "err", err)
	}
}

// PatchStatus locally overwrites the payment status of the cached
// transaction with the given id. It performs no network call: the
// caller has already confirmed the transition server-side and is
// informing the cache to avoid a full reload. Unknown ids are a no-op.
func (s *Transactions) PatchStatus(id int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].Status = status
			return
		}
	}
}

// PatchDeliveryStatus locally overwrites the delivery status of the
// cached transaction with the given id, leaving every other field
// untouched. Unknown ids are a no-op.
func (s *Transactions) PatchDeliveryStatus(id int, status DeliveryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].DeliveryStatus = status
			return
		}
	}
}

// reset drops the cache on logout.
func (s *Transactions) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
	s.applied = s.seq
}
