package order

import "time"

const (
	EventOrderPlaced            = "OrderPlaced"
	EventOrderApproved          = "OrderApproved"
	EventOrderRejected          = "OrderRejected"
	EventOrderConfirmed         = "OrderConfirmed"
	EventOrderProcessingStarted = "OrderProcessingStarted"
	EventOrderDispatched        = "OrderDispatched"
	EventOrderDelivered         = "OrderDelivered"
	EventOrderCancelled         = "OrderCancelled"
)

// OrderPlaced carries the full order snapshot at placement. SellerID and
// Industry are denormalized from the product so downstream authorization
// and visibility checks never need a catalog lookup.
type OrderPlaced struct {
	OrderID         string    `json:"order_id"`
	BuyerID         string    `json:"buyer_id"`
	ProductID       string    `json:"product_id"`
	SellerID        string    `json:"seller_id"`
	Industry        string    `json:"industry"`
	Quantity        int       `json:"quantity"`
	ShippingAddress string    `json:"shipping_address"`
	PlacedAt        time.Time `json:"placed_at"`
}

type OrderApproved struct {
	OrderID    string    `json:"order_id"`
	ActorID    string    `json:"actor_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

type OrderRejected struct {
	OrderID    string    `json:"order_id"`
	ActorID    string    `json:"actor_id"`
	Notes      string    `json:"notes,omitempty"`
	RejectedAt time.Time `json:"rejected_at"`
}

type OrderConfirmed struct {
	OrderID            string            `json:"order_id"`
	ActorID            string            `json:"actor_id"`
	FulfillmentDetails map[string]string `json:"fulfillment_details"`
	ConfirmedAt        time.Time         `json:"confirmed_at"`
}

type OrderProcessingStarted struct {
	OrderID            string            `json:"order_id"`
	ActorID            string            `json:"actor_id"`
	FulfillmentDetails map[string]string `json:"fulfillment_details,omitempty"`
	StartedAt          time.Time         `json:"started_at"`
}

type OrderDispatched struct {
	OrderID      string    `json:"order_id"`
	ActorID      string    `json:"actor_id"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

type OrderDelivered struct {
	OrderID     string    `json:"order_id"`
	ActorID     string    `json:"actor_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	ActorID     string    `json:"actor_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}
