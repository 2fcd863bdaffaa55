// ABOUTME: Cart synchronizer owning the locally cached view of the server cart.
// ABOUTME: Every mutation ends with a wholesale refresh; the server stays the source of truth.
package shop

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

const cartRefreshKey = "refresh"

// Cart mediates add/remove/refresh of the shopping cart. The cache is
// replaced wholesale on every refresh; price and stock snapshots
// embedded in line items are never patched locally.
type Cart struct {
	client *Client
	log    *slog.Logger
	group  singleflight.Group

	mu       sync.Mutex
	items    []CartItem
	updating map[int]struct{} // product ids with an in-flight add
	seq      uint64           // ticket handed to each fetch
	applied  uint64           // ticket of the last applied response
}

// NewCart returns a cart synchronizer with an empty cache.
func NewCart(client *Client) *Cart {
	return &Cart{
		client:   client,
		log:      client.cfg.logger(),
		updating: make(map[int]struct{}),
	}
}

// Items returns a copy of the cached line items.
func (s *Cart) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the number of cached line items.
func (s *Cart) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ItemFor returns the cached line item for a product, if any.
func (s *Cart) ItemFor(productID int) (CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Updating reports whether an add for the product is in flight, so UI
// can disable controls for that product only.
func (s *Cart) Updating(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.updating[productID]
	return ok
}

// Refresh resynchronizes the cache from the server. Failures are
// logged and the cache keeps its previous value; no error reaches the
// caller. With no token stored this is a no-op.
func (s *Cart) Refresh(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		s.log.Warn("cart refresh failed", "err", err)
	}
}

func (s *Cart) refresh(ctx context.Context) error {
	token, err := s.client.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	// Concurrent refreshes share one fetch. Each fetch takes a ticket
	// before hitting the wire so a response older than the last
	// applied one can never overwrite newer data.
	_, err, _ = s.group.Do(cartRefreshKey, func() (any, error) {
		s.mu.Lock()
		s.seq++
		ticket := s.seq
		s.mu.Unlock()

		items, err := s.client.Cart(ctx)
		if err != nil {
			return nil, err
		}
		s.apply(items, ticket)
		return nil, nil
	})
	return err
}

func (s *Cart) apply(items []CartItem, ticket uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.applied {
		return
	}
	s.applied = ticket
	s.items = items
}

// resync forces a fresh fetch after a mutation, bypassing any refresh
// already in flight (which may carry pre-mutation data).
func (s *Cart) resync(ctx context.Context) {
	s.group.Forget(cartRefreshKey)
	s.Refresh(ctx)
}

// Add puts one unit of the product in the cart, then resynchronizes.
// Errors propagate so callers can surface feedback; the updating
// marker is cleared on every path.
func (s *Cart) Add(ctx context.Context, productID int) error {
	s.mu.Lock()
	s.updating[productID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.updating, productID)
		s.mu.Unlock()
	}()

	if err := s.client.AddToCart(ctx, productID); err != nil {
		return &OpError{Op: "cart.add", Err: err}
	}
	s.resync(ctx)
	return nil
}

// Remove deletes the product's line from the cart, then
// resynchronizes. The target line id is resolved against a fresh
// server read so removal never targets a stale record. A missing
// token or a product not in the server cart is a no-op.
func (s *Cart) Remove(ctx context.Context, productID int) error {
	token, err := s.client.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	items, err := s.client.Cart(ctx)
	if err != nil {
		return err
	}

	var line *CartItem
	for i := range items {
		if items[i].ProductID == productID {
			line = &items[i]
			break
		}
	}
	if line == nil {
		return nil
	}

	if err := s.client.RemoveFromCart(ctx, line.ID); err != nil {
		return &OpError{Op: "cart.remove", Err: err}
	}
	s.resync(ctx)
	return nil
}

// SetQuantity sets the product's quantity by decomposing into a remove
// followed by qty sequential single-unit adds; the backend has no
// direct quantity-update call. Zero removes the line.
func (s *Cart) SetQuantity(ctx context.Context, productID, qty int) error {
	if qty < 0 {
		return &OpError{Op: "cart.setqty", Err: errors.New("negative quantity")}
	}
	if err := s.Remove(ctx, productID); err != nil {
		return err
	}
	for i := 0; i < qty; i++ {
		if err := s.Add(ctx, productID); err != nil {
			return err
		}
	}
	return nil
}

// reset drops the cache on logout.
func (s *Cart) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.applied = s.seq
}
