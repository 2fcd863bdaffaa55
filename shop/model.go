package shop

// Status is the payment lifecycle state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// DeliveryStatus tracks the courier lifecycle. It is independent of
// Status: a transaction can be paid while delivery is still pending.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryAssigned   DeliveryStatus = "assigned"
	DeliveryPickedUp   DeliveryStatus = "picked_up"
	DeliveryOnDelivery DeliveryStatus = "on_delivery"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryCompleted  DeliveryStatus = "completed"
)

// Product is the catalog snapshot embedded in cart lines and order
// details. Field names follow the backend's wire format.
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"nama_produk"`
	Price float64 `json:"harga"`
	Image string  `json:"gambar"`
	Stock int     `json:"stok"`
}

// CartItem is one server-assigned cart line. At most one line exists
// per product, enforced server-side.
type CartItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Qty       int     `json:"qty"`
	Product   Product `json:"product"`
}

// Category groups catalog products.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nama_kategori"`
}

// Branch is the store outlet fulfilling an order.
type Branch struct {
	ID      int    `json:"id"`
	Name    string `json:"nama_cabang"`
	Address string `json:"alamat"`
}

// Customer is the per-user shopping profile attached to a User.
type Customer struct {
	Name     string `json:"nama"`
	Address  string `json:"alamat"`
	Phone    string `json:"no_hp,omitempty"`
	BranchID int    `json:"branch_id,omitempty"`
}

// User is the authenticated account record cached in Credentials.
type User struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Customer *Customer `json:"pelanggan,omitempty"`
}

// Courier carries the delivering courier's display name.
type Courier struct {
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// TransactionDetail is one ordered line with its product snapshot.
type TransactionDetail struct {
	ID       int     `json:"id"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
	Product  Product `json:"product"`
}

// DeliveryUpdate is one courier status-change event.
type DeliveryUpdate struct {
	ID            int      `json:"id"`
	StatusMessage string   `json:"status_message"`
	CreatedAt     string   `json:"created_at"`
	Courier       *Courier `json:"kurir,omitempty"`
}

// Transaction is a server-created order. This client never constructs
// one; it only fetches and locally patches status fields after
// confirmed server transitions.
type Transaction struct {
	ID              int                 `json:"id"`
	Total           float64             `json:"total"`
	Status          Status              `json:"status"`
	DeliveryStatus  DeliveryStatus      `json:"delivery_status"`
	PaymentMethod   string              `json:"payment_method"`
	CreatedAt       string              `json:"created_at"`
	Branch          *Branch             `json:"branch,omitempty"`
	Customer        *Customer           `json:"pelanggan,omitempty"`
	Courier         *Courier            `json:"kurir,omitempty"`
	Details         []TransactionDetail `json:"details"`
	DeliveryUpdates []DeliveryUpdate    `json:"delivery_updates,omitempty"`
}

// Profile is the account view returned by the profile endpoint.
type Profile struct {
	User     User      `json:"user"`
	Customer *Customer `json:"pelanggan"`
}
