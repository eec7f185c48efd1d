package readmodel

import "time"

// ProductReadModel is the read model for catalog products. Status mirrors the
// approval workflow (pending_approval/approved/rejected).
type ProductReadModel struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Industry    string    `json:"industry"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderReadModel is the read model for orders. SellerID and Industry are
// denormalized from the product at placement time so role visibility checks
// need no catalog join.
type OrderReadModel struct {
	ID                 string            `json:"id"`
	BuyerID            string            `json:"buyer_id"`
	ProductID          string            `json:"product_id"`
	SellerID           string            `json:"seller_id"`
	Industry           string            `json:"industry"`
	Quantity           int               `json:"quantity"`
	ShippingAddress    string            `json:"shipping_address"`
	Status             string            `json:"status"`
	FulfillmentDetails map[string]string `json:"fulfillment_details,omitempty"`
	AdminNotes         string            `json:"admin_notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// CartItemReadModel represents a line in a buyer's cart
type CartItemReadModel struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartReadModel is the read model for buyer carts
type CartReadModel struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Items     []CartItemReadModel `json:"items"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// UserReadModel is the read model for directory users. Industry is set only
// for sellers and sub-admins.
type UserReadModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Industry     string    `json:"industry,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
