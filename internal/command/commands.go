package command

import (
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/user"
)

// User Commands
type RegisterUser struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Name     string    `json:"name"`
	Role     user.Role `json:"role"`
	Industry string    `json:"industry,omitempty"`
}

type UpdateUserProfile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type ChangeUserPassword struct {
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password"`
}

type DeactivateUser struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// Product Commands
type CreateProduct struct {
	SellerID    string `json:"seller_id"`
	Industry    string `json:"industry"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

type UpdateProduct struct {
	ProductID   string    `json:"product_id"`
	ActorID     string    `json:"actor_id"`
	ActorRole   user.Role `json:"actor_role"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
}

type ModerateProduct struct {
	ProductID     string    `json:"product_id"`
	Approve       bool      `json:"approve"`
	ActorID       string    `json:"actor_id"`
	ActorRole     user.Role `json:"actor_role"`
	ActorIndustry string    `json:"actor_industry,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type DeleteProduct struct {
	ProductID string    `json:"product_id"`
	ActorID   string    `json:"actor_id"`
	ActorRole user.Role `json:"actor_role"`
}

// Cart Commands
type AddToCart struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartQuantity struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

// Order Commands
type CreateOrder struct {
	BuyerID         string `json:"buyer_id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	ShippingAddress string `json:"shipping_address"`
}

type Checkout struct {
	BuyerID         string `json:"buyer_id"`
	ShippingAddress string `json:"shipping_address"`
}

type TransitionOrder struct {
	OrderID            string            `json:"order_id"`
	Target             order.Status      `json:"target"`
	Actor              order.Actor       `json:"-"`
	FulfillmentDetails map[string]string `json:"fulfillment_details,omitempty"`
	Reason             string            `json:"reason,omitempty"`
}

type ApproveRejectOrder struct {
	OrderID string      `json:"order_id"`
	Approve bool        `json:"approve"`
	Actor   order.Actor `json:"-"`
	Notes   string      `json:"notes,omitempty"`
}

type ConfirmOrder struct {
	OrderID            string            `json:"order_id"`
	Actor              order.Actor       `json:"-"`
	FulfillmentDetails map[string]string `json:"fulfillment_details"`
}
