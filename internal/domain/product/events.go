package product

import "time"

const (
	EventProductCreated       = "ProductCreated"
	EventProductUpdated       = "ProductUpdated"
	EventProductStatusChanged = "ProductStatusChanged"
	EventProductDeleted       = "ProductDeleted"
)

type ProductCreated struct {
	ProductID   string    `json:"product_id"`
	SellerID    string    `json:"seller_id"`
	Industry    string    `json:"industry"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductStatusChanged is emitted when a moderator approves or rejects a listing
type ProductStatusChanged struct {
	ProductID string    `json:"product_id"`
	Status    Status    `json:"status"`
	ActorID   string    `json:"actor_id"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type ProductDeleted struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
