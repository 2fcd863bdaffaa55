// ABOUTME: Favorites synchronizer with optimistic toggle and rollback.
// ABOUTME: Per-product pending state collapses overlapping toggles onto the latest desired state.
package shop

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// pendingToggle tracks one product's in-flight optimistic state.
// base is the membership confirmed (or assumed) server-side before the
// current request chain began; want is the latest desired membership.
type pendingToggle struct {
	base bool
	want bool
}

// Favorites mediates the favorited-product set. Toggles apply locally
// first and roll back on failure, bounding inconsistency to one round
// trip. Membership reflects server state modulo in-flight toggles.
type Favorites struct {
	client *Client
	log    *slog.Logger

	mu      sync.Mutex
	ids     map[int]struct{}
	pending map[int]*pendingToggle
	loading bool
}

// NewFavorites returns a favorites synchronizer with an empty set.
// The loading flag stays set until the first Load completes.
func NewFavorites(client *Client) *Favorites {
	return &Favorites{
		client:  client,
		log:     client.cfg.logger(),
		ids:     make(map[int]struct{}),
		pending: make(map[int]*pendingToggle),
		loading: true,
	}
}

// Contains reports current (optimistic) membership.
func (s *Favorites) Contains(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[productID]
	return ok
}

// IDs returns the favorited product ids in ascending order.
func (s *Favorites) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Loading reports whether the initial load is still outstanding.
func (s *Favorites) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Load fetches the favorited products and replaces the set with their
// ids. With no token stored it resolves immediately with the loading
// flag cleared. Failures are logged; the set keeps its prior value.
func (s *Favorites) Load(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, err := s.client.creds.Token(ctx)
	if err != nil || token == "" {
		if err != nil {
			s.log.Warn("favorites load failed", "err", err)
		}
		return
	}

	products, err := s.client.Favorites(ctx)
	if err != nil {
		s.log.Warn("favorites load failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int]struct{}, len(products))
	for _, p := range products {
		s.ids[p.ID] = struct{}{}
	}
	// Re-apply in-flight optimistic toggles on top of server state.
	for id, t := range s.pending {
		s.setLocked(id, t.want)
	}
}

// Toggle flips membership of the product: locally first, synchronously,
// then against the server. On failure the set reverts to the state
// observed before the current pending request began. Nothing is
// returned; callers must not assume the toggle stuck. With no token
// stored this is a no-op.
func (s *Favorites) Toggle(ctx context.Context, productID int) {
	token, err := s.client.creds.Token(ctx)
	if err != nil || token == "" {
		if err != nil {
			s.log.Warn("favorite toggle skipped", "err", err)
		}
		return
	}

	s.mu.Lock()
	_, cur := s.ids[productID]
	want := !cur
	s.setLocked(productID, want)

	if t, ok := s.pending[productID]; ok {
		// A request chain is already in flight; fold the new desired
		// state into it and let that chain settle the difference.
		t.want = want
		s.mu.Unlock()
		return
	}
	s.pending[productID] = &pendingToggle{base: cur, want: want}
	s.mu.Unlock()

	s.settle(ctx, productID)
}

// settle issues server toggles until the assumed server state matches
// the desired state, or rolls back on the first failure.
func (s *Favorites) settle(ctx context.Context, productID int) {
	for {
		s.mu.Lock()
		t := s.pending[productID]
		if t == nil {
			s.mu.Unlock()
			return
		}
		if t.want == t.base {
			// Collapsed back to where the server already is.
			delete(s.pending, productID)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		err := s.client.ToggleFavorite(ctx, productID)

		s.mu.Lock()
		if err != nil {
			s.setLocked(productID, t.base)
			delete(s.pending, productID)
			s.mu.Unlock()
			s.log.Warn("favorite toggle failed", "product_id", productID, "err", err)
			return
		}
		t.base = !t.base // server flipped once
		if t.base == t.want {
			delete(s.pending, productID)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

func (s *Favorites) setLocked(productID int, member bool) {
	if member {
		s.ids[productID] = struct{}{}
	} else {
		delete(s.ids, productID)
	}
}

// reset drops the set on logout.
func (s *Favorites) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[int]struct{})
	s.pending = make(map[int]*pendingToggle)
}
