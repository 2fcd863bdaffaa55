// ABOUTME: Authenticated JSON client for the Daily Mart commerce backend.
// ABOUTME: Attaches bearer tokens from Credentials and classifies HTTP failures.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

// Client performs authenticated requests against the storefront backend.
type Client struct {
	cfg     Config
	creds   *Credentials
	hc      *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client with optional timeout override.
func NewClient(cfg Config, creds *Credentials) *Client {
	to := cfg.Timeout
	if to == 0 {
		to = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		creds:   creds,
		hc:      &http.Client{Timeout: to},
		limiter: cfg.mutationLimiter(),
	}
}

// call issues one JSON request and decodes the response into out (nil
// discards the body). When auth is set the stored bearer token is
// attached; an empty token yields ErrNoToken without touching the wire.
func (c *Client) call(ctx context.Context, method, path string, body, out any, auth bool) error {
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if auth {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		if token == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: decodeErrorBody(resp)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getRetry wraps an authenticated GET in the configured retry policy.
// Only reads go through here; mutations are never replayed.
func getRetry[T any](ctx context.Context, c *Client, op, path string) (T, error) {
	return WithRetry(ctx, c.cfg.GetRetryConfig(), op, func() (T, error) {
		var out T
		err := c.call(ctx, http.MethodGet, path, nil, &out, true)
		return out, err
	})
}

// mutate waits on the mutation limiter then issues the request.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, method, path, body, out, true)
}

// LoginResult contains the session returned by a successful login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Login authenticates with email/password. It does not persist the
// session; Shop.Login does that.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var out LoginResult
	err := c.call(ctx, http.MethodPost, "/login", req, &out, false)
	return out, err
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	req := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{name, email, password}

	return c.call(ctx, http.MethodPost, "/register", req, nil, false)
}

// Cart fetches the current server-side cart.
func (c *Client) Cart(ctx context.Context) ([]CartItem, error) {
	resp, err := getRetry[struct {
		Items []CartItem `json:"items"`
	}](ctx, c, "cart.fetch", "/cart")
	return resp.Items, err
}

// AddToCart adds one unit of the product. The backend merges repeated
// adds into a single line per product.
func (c *Client) AddToCart(ctx context.Context, productID int) error {
	req := struct {
		ProductID int `json:"product_id"`
		Qty       int `json:"qty"`
	}{productID, 1}

	return c.mutate(ctx, http.MethodPost, "/cart/add", req, nil)
}

// RemoveFromCart deletes a cart line by its server-assigned id.
func (c *Client) RemoveFromCart(ctx context.Context, cartItemID int) error {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/cart/remove/%d", cartItemID), nil, nil)
}

// Favorites fetches the favorited products.
func (c *Client) Favorites(ctx context.Context) ([]Product, error) {
	return getRetry[[]Product](ctx, c, "favorites.fetch", "/favorites")
}

// ToggleFavorite flips server-side membership for the product.
func (c *Client) ToggleFavorite(ctx context.Context, productID int) error {
	return c.mutate(ctx, http.MethodPost, fmt.Sprintf("/favorites/%d/toggle", productID), struct{}{}, nil)
}

// Transactions fetches the customer's online order list.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	return getRetry[[]Transaction](ctx, c, "transactions.fetch", "/transactions/online")
}

// Transaction fetches a single order with full detail.
func (c *Client) Transaction(ctx context.Context, id int) (Transaction, error) {
	return getRetry[Transaction](ctx, c, "transaction.fetch", fmt.Sprintf("/transactions/%d", id))
}

// Checkout converts the server-side cart into a new transaction. The
// backend empties the cart as part of this call.
func (c *Client) Checkout(ctx context.Context, paymentMethod string) (Transaction, error) {
	req := struct {
		PaymentMethod string `json:"payment_method"`
	}{paymentMethod}

	var resp struct {
		Data Transaction `json:"data"`
	}
	err := c.mutate(ctx, http.MethodPost, "/transactions/online/checkout", req, &resp)
	return resp.Data, err
}

// UpdateTransactionStatus transitions a transaction's payment status.
func (c *Client) UpdateTransactionStatus(ctx context.Context, id int, status Status) error {
	req := struct {
		Status Status `json:"status"`
	}{status}

	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d/status", id), req, nil)
}

// CompleteTransaction marks a delivered order as completed.
func (c *Client) CompleteTransaction(ctx context.Context, id int) error {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d/complete", id), struct{}{}, nil)
}

// Products fetches the customer-facing catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	resp, err := getRetry[struct {
		Products []Product `json:"products"`
	}](ctx, c, "products.fetch", "/pelanggan/products")
	return resp.Products, err
}

// Categories fetches the catalog categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return getRetry[[]Category](ctx, c, "categories.fetch", "/categories")
}

// Branch fetches one store outlet.
func (c *Client) Branch(ctx context.Context, id int) (Branch, error) {
	return getRetry[Branch](ctx, c, "branch.fetch", fmt.Sprintf("/branches/%d", id))
}

// Profile fetches the account profile, creating the customer record
// server-side on first access.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	resp, err := getRetry[struct {
		Data Profile `json:"data"`
	}](ctx, c, "profile.fetch", "/pelanggan/profile")
	return resp.Data, err
}

// UpdateProfile changes a single profile field and returns the updated
// account view.
func (c *Client) UpdateProfile(ctx context.Context, field, value string) (Profile, error) {
	var resp struct {
		Data Profile `json:"data"`
	}
	err := c.mutate(ctx, http.MethodPut, "/pelanggan/profile", map[string]string{field: value}, &resp)
	return resp.Data, err
}

func decodeErrorBody(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return resp.Status
	}
	return body.Message
}
