package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/aggregate"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Order"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrForbidden              = errors.New("actor is not allowed to act on this order")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrInvalidStatus          = errors.New("unknown order status")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrMissingFulfillment     = errors.New("fulfillment details are required")
)

// Actor identifies who is requesting an operation. Industry is only set
// for sellers and sub-admins.
type Actor struct {
	ID       string
	Role     user.Role
	Industry string
}

// Placement carries the input for placing an order. SellerID and Industry
// come from the approved product the order references.
type Placement struct {
	ProductID       string
	SellerID        string
	Industry        string
	Quantity        int
	ShippingAddress string
}

type Order struct {
	ID                 string            `json:"id"`
	BuyerID            string            `json:"buyer_id"`
	ProductID          string            `json:"product_id"`
	SellerID           string            `json:"seller_id"`
	Industry           string            `json:"industry"`
	Quantity           int               `json:"quantity"`
	ShippingAddress    string            `json:"shipping_address"`
	Status             Status            `json:"status"`
	FulfillmentDetails map[string]string `json:"fulfillment_details,omitempty"`
	AdminNotes         string            `json:"admin_notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Version            int               `json:"version"` // Current event version
}

func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

// authorize checks the actor's relationship to this order: buyers act on
// their own orders, sellers on orders for their products, sub-admins on
// orders within their industry, admins on anything.
func (o *Order) authorize(actor Actor) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleSubAdmin:
		if actor.Industry != o.Industry {
			return fmt.Errorf("%w: sub-admin industry %q does not match order industry %q", ErrForbidden, actor.Industry, o.Industry)
		}
		return nil
	case user.RoleSeller:
		if actor.ID != o.SellerID {
			return fmt.Errorf("%w: seller does not own the order's product", ErrForbidden)
		}
		return nil
	case user.RoleBuyer:
		if actor.ID != o.BuyerID {
			return fmt.Errorf("%w: buyer does not own this order", ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}
}

// transitionError names current status, target, and role so clients can
// explain the rejection
func (o *Order) transitionError(target Status, role user.Role) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	return fmt.Errorf("%w: cannot transition from %s to %s as %s", ErrInvalidTransition, o.Status, target, role)
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.BuyerID = data.BuyerID
		o.ProductID = data.ProductID
		o.SellerID = data.SellerID
		o.Industry = data.Industry
		o.Quantity = data.Quantity
		o.ShippingAddress = data.ShippingAddress
		o.Status = StatusPendingApproval
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderApproved:
		var data OrderApproved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusApproved
		o.UpdatedAt = data.ApprovedAt
	case EventOrderRejected:
		var data OrderRejected
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusRejected
		o.AdminNotes = data.Notes
		o.UpdatedAt = data.RejectedAt
	case EventOrderConfirmed:
		var data OrderConfirmed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusConfirmed
		o.FulfillmentDetails = data.FulfillmentDetails
		o.UpdatedAt = data.ConfirmedAt
	case EventOrderProcessingStarted:
		var data OrderProcessingStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusInProgress
		if len(data.FulfillmentDetails) > 0 {
			o.FulfillmentDetails = data.FulfillmentDetails
		}
		o.UpdatedAt = data.StartedAt
	case EventOrderDispatched:
		var data OrderDispatched
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusDispatched
		o.UpdatedAt = data.DispatchedAt
	case EventOrderDelivered:
		var data OrderDelivered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusDelivered
		o.UpdatedAt = data.DeliveredAt
	case EventOrderCancelled:
		var data OrderCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.AdminNotes = data.Reason
		o.UpdatedAt = data.CancelledAt
	}
	o.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadOrder loads an order by replaying events, using snapshot if available
func (s *Service) loadOrder(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Place creates a new order in pending approval. The caller is expected to
// have resolved the product and checked it is approved.
func (s *Service) Place(ctx context.Context, buyerID string, p Placement) (*Order, error) {
	if p.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if p.ShippingAddress == "" {
		return nil, ErrMissingShippingAddress
	}

	orderID := uuid.New().String()
	now := time.Now()

	event := OrderPlaced{
		OrderID:         orderID,
		BuyerID:         buyerID,
		ProductID:       p.ProductID,
		SellerID:        p.SellerID,
		Industry:        p.Industry,
		Quantity:        p.Quantity,
		ShippingAddress: p.ShippingAddress,
		PlacedAt:        now,
	}

	if _, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPlaced, 0, event); err != nil {
		return nil, err
	}

	order := &Order{
		ID:              orderID,
		BuyerID:         buyerID,
		ProductID:       p.ProductID,
		SellerID:        p.SellerID,
		Industry:        p.Industry,
		Quantity:        p.Quantity,
		ShippingAddress: p.ShippingAddress,
		Status:          StatusPendingApproval,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}

// Transition moves an order to a target status on behalf of an actor. The
// append is conditioned on the version the order was read at, so a
// concurrent conflicting transition loses with ErrVersionConflict instead
// of silently overwriting.
func (s *Service) Transition(ctx context.Context, orderID string, target Status, actor Actor, fulfillment map[string]string, reason string) (*Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transitionLoaded(ctx, order, target, actor, fulfillment, reason)
}

// ApproveReject is the moderation specialization of Transition: only
// admins and sub-admins, only from pending approval.
func (s *Service) ApproveReject(ctx context.Context, orderID string, approve bool, actor Actor, notes string) (*Order, error) {
	if actor.Role != user.RoleAdmin && actor.Role != user.RoleSubAdmin {
		return nil, fmt.Errorf("%w: only admins and sub-admins may approve or reject orders", ErrForbidden)
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusPendingApproval {
		target := StatusApproved
		if !approve {
			target = StatusRejected
		}
		return nil, order.transitionError(target, actor.Role)
	}

	target := StatusApproved
	if !approve {
		target = StatusRejected
	}
	return s.transitionLoaded(ctx, order, target, actor, nil, notes)
}

// Confirm is the seller commitment specialization of Transition: seller
// only, from approved, with non-empty fulfillment details.
func (s *Service) Confirm(ctx context.Context, orderID string, actor Actor, fulfillment map[string]string) (*Order, error) {
	if actor.Role != user.RoleSeller {
		return nil, fmt.Errorf("%w: only sellers may confirm orders", ErrForbidden)
	}
	if len(fulfillment) == 0 {
		return nil, ErrMissingFulfillment
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusApproved {
		return nil, order.transitionError(StatusConfirmed, actor.Role)
	}
	return s.transitionLoaded(ctx, order, StatusConfirmed, actor, fulfillment, "")
}

// transitionLoaded runs the shared authorization, legality, and append
// steps against an already loaded order.
func (s *Service) transitionLoaded(ctx context.Context, order *Order, target Status, actor Actor, fulfillment map[string]string, reason string) (*Order, error) {
	if err := order.authorize(actor); err != nil {
		return nil, err
	}
	if !CanTransition(actor.Role, order.Status, target) {
		return nil, order.transitionError(target, actor.Role)
	}

	now := time.Now()
	var eventType string
	var event any

	switch target {
	case StatusApproved:
		eventType = EventOrderApproved
		event = OrderApproved{OrderID: order.ID, ActorID: actor.ID, ApprovedAt: now}
	case StatusRejected:
		eventType = EventOrderRejected
		event = OrderRejected{OrderID: order.ID, ActorID: actor.ID, Notes: reason, RejectedAt: now}
	case StatusConfirmed:
		eventType = EventOrderConfirmed
		event = OrderConfirmed{OrderID: order.ID, ActorID: actor.ID, FulfillmentDetails: fulfillment, ConfirmedAt: now}
	case StatusInProgress:
		eventType = EventOrderProcessingStarted
		event = OrderProcessingStarted{OrderID: order.ID, ActorID: actor.ID, FulfillmentDetails: fulfillment, StartedAt: now}
	case StatusDispatched:
		eventType = EventOrderDispatched
		event = OrderDispatched{OrderID: order.ID, ActorID: actor.ID, DispatchedAt: now}
	case StatusDelivered:
		eventType = EventOrderDelivered
		event = OrderDelivered{OrderID: order.ID, ActorID: actor.ID, DeliveredAt: now}
	case StatusCancelled:
		eventType = EventOrderCancelled
		event = OrderCancelled{OrderID: order.ID, ActorID: actor.ID, Reason: reason, CancelledAt: now}
	default:
		return nil, order.transitionError(target, actor.Role)
	}

	storedEvent, err := s.eventStore.Append(ctx, order.ID, AggregateType, eventType, order.Version, event)
	if err != nil {
		return nil, err
	}

	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}
