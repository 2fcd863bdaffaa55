// ABOUTME: Shop glues credentials, API client, invalidation bus, and the
// ABOUTME: three synchronizers, and owns the session and order flows.
package shop

import (
	"context"
	"log/slog"
)

// Shop is the top-level handle an app holds. It wires each
// synchronizer's refresh onto the invalidation bus so server-side
// mutations performed by one flow keep the other caches consistent.
type Shop struct {
	cfg    Config
	creds  *Credentials
	client *Client
	bus    *Bus
	log    *slog.Logger

	cart         *Cart
	favorites    *Favorites
	transactions *Transactions
}

// New builds a shop over the given credential store.
func New(cfg Config, creds *Credentials) *Shop {
	client := NewClient(cfg, creds)
	s := &Shop{
		cfg:          cfg,
		creds:        creds,
		client:       client,
		bus:          NewBus(),
		log:          cfg.logger(),
		cart:         NewCart(client),
		favorites:    NewFavorites(client),
		transactions: NewTransactions(client),
	}
	s.bus.Subscribe(TopicCart, s.cart.Refresh)
	s.bus.Subscribe(TopicFavorites, s.favorites.Load)
	s.bus.Subscribe(TopicTransactions, s.transactions.Refresh)
	return s
}

// Start kicks the initial background loads, the way the app shell
// populates every provider once at startup. Consumers must still
// handle the window before they complete (loading flags set, caches
// empty).
func (s *Shop) Start(ctx context.Context) {
	go s.cart.Refresh(ctx)
	go s.favorites.Load(ctx)
	go s.transactions.Load(ctx)
}

// Cart returns the cart synchronizer.
func (s *Shop) Cart() *Cart { return s.cart }

// Favorites returns the favorites synchronizer.
func (s *Shop) Favorites() *Favorites { return s.favorites }

// Transactions returns the transaction synchronizer.
func (s *Shop) Transactions() *Transactions { return s.transactions }

// Client returns the underlying API client for reads the
// synchronizers do not cache (catalog, branches, single orders).
func (s *Shop) Client() *Client { return s.client }

// Bus returns the invalidation bus. External code performing a
// server-side mutation that affects a cache publishes its topic here.
func (s *Shop) Bus() *Bus { return s.bus }

// Login authenticates, persists the session, and reloads every cache
// for the new account.
func (s *Shop) Login(ctx context.Context, email, password string) (User, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, &OpError{Op: "session.login", Err: err}
	}
	if err := s.creds.SetSession(ctx, res.Token, res.User); err != nil {
		return User{}, err
	}
	s.bus.Publish(ctx, TopicCart, TopicFavorites, TopicTransactions)
	return res.User, nil
}

// Register creates an account. The caller logs in separately.
func (s *Shop) Register(ctx context.Context, name, email, password string) error {
	if err := s.client.Register(ctx, name, email, password); err != nil {
		return &OpError{Op: "session.register", Err: err}
	}
	return nil
}

// Logout clears the stored session and drops every cache.
func (s *Shop) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		return err
	}
	s.cart.reset()
	s.favorites.reset()
	s.transactions.reset()
	return nil
}

// Checkout converts the cart into a transaction with the chosen
// payment method. The backend empties the cart, so the cart and
// transaction caches are invalidated before returning.
func (s *Shop) Checkout(ctx context.Context, paymentMethod string) (Transaction, error) {
	tx, err := s.client.Checkout(ctx, paymentMethod)
	if err != nil {
		return Transaction{}, &OpError{Op: "checkout", Err: err}
	}
	s.bus.Publish(ctx, TopicCart, TopicTransactions)
	return tx, nil
}

// Pay simulates payment by transitioning the transaction to paid,
// then patches the cached record.
func (s *Shop) Pay(ctx context.Context, id int) error {
	if err := s.client.UpdateTransactionStatus(ctx, id, StatusPaid); err != nil {
		return &OpError{Op: "payment", Err: err}
	}
	s.transactions.PatchStatus(id, StatusPaid)
	return nil
}

// Cancel transitions the transaction to cancelled, then patches the
// cached record.
func (s *Shop) Cancel(ctx context.Context, id int) error {
	if err := s.client.UpdateTransactionStatus(ctx, id, StatusCancelled); err != nil {
		return &OpError{Op: "cancel", Err: err}
	}
	s.transactions.PatchStatus(id, StatusCancelled)
	return nil
}

// CompleteOrder marks a delivered order as finished, then patches the
// cached record.
func (s *Shop) CompleteOrder(ctx context.Context, id int) error {
	if err := s.client.CompleteTransaction(ctx, id); err != nil {
		return &OpError{Op: "complete", Err: err}
	}
	s.transactions.PatchStatus(id, StatusCompleted)
	return nil
}

// Profile fetches the account profile, falling back to the cached
// user record when the server is unreachable.
func (s *Shop) Profile(ctx context.Context) (Profile, error) {
	p, err := s.client.Profile(ctx)
	if err != nil {
		if cached, cerr := s.creds.User(ctx); cerr == nil && cached != nil {
			s.log.Warn("profile fetch failed, using cached user", "err", err)
			return Profile{User: *cached, Customer: cached.Customer}, nil
		}
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile changes one profile field server-side and refreshes
// the cached user record.
func (s *Shop) UpdateProfile(ctx context.Context, field, value string) (Profile, error) {
	p, err := s.client.UpdateProfile(ctx, field, value)
	if err != nil {
		return Profile{}, &OpError{Op: "profile.update", Err: err}
	}
	u := p.User
	u.Customer = p.Customer
	if err := s.creds.SetUser(ctx, u); err != nil {
		return Profile{}, err
	}
	return p, nil
}
