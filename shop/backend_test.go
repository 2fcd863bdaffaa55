// ABOUTME: In-memory fake of the commerce backend for synchronizer tests.
// ABOUTME: Tracks per-endpoint call counts and supports failure injection.
package shop

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type fakeMart struct {
	mu           sync.Mutex
	items        []CartItem
	favorites    map[int]bool
	products     map[int]Product
	transactions []Transaction
	profile      Profile
	nextLineID   int
	nextTxID     int

	calls map[string]int // "METHOD /path" -> hits
	fail  map[string]int // "METHOD /path" -> status to force
	gate  chan struct{}  // when set, handlers for gated paths block on it
	gated string         // "METHOD /path" to block
}

func newFakeMart() *fakeMart {
	return &fakeMart{
		favorites:  make(map[int]bool),
		products:   make(map[int]Product),
		calls:      make(map[string]int),
		fail:       make(map[string]int),
		nextLineID: 1,
		nextTxID:   1,
	}
}

func (m *fakeMart) hits(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

func (m *fakeMart) failWith(key string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[key] = status
}

func (m *fakeMart) clearFail(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fail, key)
}

// block makes every handler for key wait until the returned channel is
// closed.
func (m *fakeMart) block(key string) chan struct{} {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gate = ch
	m.gated = key
	m.mu.Unlock()
	return ch
}

func (m *fakeMart) putProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *fakeMart) putCartLine(productID, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(productID, qty)
}

func (m *fakeMart) addLocked(productID, qty int) {
	for i := range m.items {
		if m.items[i].ProductID == productID {
			m.items[i].Qty += qty
			return
		}
	}
	m.items = append(m.items, CartItem{
		ID:        m.nextLineID,
		ProductID: productID,
		Qty:       qty,
		Product:   m.products[productID],
	})
	m.nextLineID++
}

func (m *fakeMart) putTransaction(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
}

// track records the call, applies failure injection and gating.
// Returns false if the response has already been written.
func (m *fakeMart) track(w http.ResponseWriter, r *http.Request, key string) bool {
	m.mu.Lock()
	m.calls[key]++
	status := m.fail[key]
	gate := m.gate
	gated := m.gated
	m.mu.Unlock()

	if gate != nil && gated == key {
		<-gate
	}
	if status != 0 {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "dipaksa gagal"})
		return false
	}
	return true
}

func (m *fakeMart) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	authed := func(key string, fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				t.Errorf("%s: missing bearer token", key)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if !m.track(w, r, key) {
				return
			}
			fn(w, r)
		}
	}

	mux.HandleFunc("GET /cart", authed("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		items := make([]CartItem, len(m.items))
		copy(items, m.items)
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))

	mux.HandleFunc("POST /cart/add", authed("POST /cart/add", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ProductID int `json:"product_id"`
			Qty       int `json:"qty"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		m.addLocked(body.ProductID, body.Qty)
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	mux.HandleFunc("DELETE /cart/remove/{id}", authed("DELETE /cart/remove", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		m.mu.Lock()
		for i := range m.items {
			if m.items[i].ID == id {
				m.items = append(m.items[:i], m.items[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	mux.HandleFunc("GET /favorites", authed("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		var list []Product
		for id, fav := range m.favorites {
			if fav {
				list = append(list, m.products[id])
			}
		}
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(list)
	}))

	mux.HandleFunc("POST /favorites/{id}/toggle", authed("POST /favorites/toggle", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		m.mu.Lock()
		m.favorites[id] = !m.favorites[id]
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	mux.HandleFunc("GET /transactions/online", authed("GET /transactions/online", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		list := make([]Transaction, len(m.transactions))
		copy(list, m.transactions)
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(list)
	}))

	mux.HandleFunc("POST /transactions/online/checkout", authed("POST /checkout", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PaymentMethod string `json:"payment_method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		tx := Transaction{
			ID:             m.nextTxID,
			Status:         StatusPending,
			DeliveryStatus: DeliveryPending,
			PaymentMethod:  body.PaymentMethod,
		}
		for _, it := range m.items {
			sub := float64(it.Qty) * it.Product.Price
			tx.Total += sub
			tx.Details = append(tx.Details, TransactionDetail{
				ID: it.ID, Qty: it.Qty, Subtotal: sub, Product: it.Product,
			})
		}
		m.nextTxID++
		m.items = nil // checkout empties the cart server-side
		m.transactions = append([]Transaction{tx}, m.transactions...)
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tx})
	}))

	mux.HandleFunc("PUT /transactions/{id}/status", authed("PUT /transactions/status", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		var body struct {
			Status Status `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		for i := range m.transactions {
			if m.transactions[i].ID == id {
				m.transactions[i].Status = body.Status
			}
		}
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	mux.HandleFunc("PUT /transactions/{id}/complete", authed("PUT /transactions/complete", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		m.mu.Lock()
		for i := range m.transactions {
			if m.transactions[i].ID == id {
				m.transactions[i].Status = StatusCompleted
			}
		}
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	mux.HandleFunc("GET /pelanggan/products", authed("GET /pelanggan/products", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		var list []Product
		for _, p := range m.products {
			list = append(list, p)
		}
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"products": list})
	}))

	mux.HandleFunc("GET /categories", authed("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Category{{ID: 1, Name: "Makanan"}, {ID: 2, Name: "Minuman"}})
	}))

	mux.HandleFunc("GET /branches/{id}", authed("GET /branches", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		_ = json.NewEncoder(w).Encode(Branch{ID: id, Name: "Cabang Pusat", Address: "Jl. Sudirman 10"})
	}))

	mux.HandleFunc("GET /pelanggan/profile", authed("GET /pelanggan/profile", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		p := m.profile
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": p})
	}))

	mux.HandleFunc("PUT /pelanggan/profile", authed("PUT /pelanggan/profile", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		if name, ok := body["name"]; ok {
			m.profile.User.Name = name
		}
		if addr, ok := body["alamat"]; ok {
			if m.profile.Customer == nil {
				m.profile.Customer = &Customer{}
			}
			m.profile.Customer.Address = addr
		}
		p := m.profile
		m.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": p})
	}))

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		if !m.track(w, r, "POST /login") {
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResult{
			User:  User{ID: 1, Name: "Budi", Email: "budi@example.com", Role: "user"},
			Token: "tok-login",
		})
	})

	return mux
}

// newTestShop wires a Shop against the fake backend with retries and
// rate limiting effectively disabled.
func newTestShop(t *testing.T, m *fakeMart, token string) *Shop {
	t.Helper()
	srv := httptest.NewServer(m.handler(t))
	t.Cleanup(srv.Close)
	creds := newTestCreds(t, token)
	return New(Config{
		BaseURL: srv.URL,
		Retry:   RetryConfig{MaxAttempts: 1},
		Logger:  quietLogger(),
	}, creds)
}
