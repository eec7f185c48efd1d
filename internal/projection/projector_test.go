package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProjector() (*Projector, *store.ReadStore) {
	readStore := store.NewReadStore()
	return NewProjector(readStore), readStore
}

// dispatch serializes a domain event the way the event stores publish it
// and feeds it to the projector
func dispatch(t *testing.T, p *Projector, aggregateID, aggregateType, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	event := store.Event{
		ID:            "evt-1",
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, p.HandleEvent(context.Background(), []byte(aggregateID), value))
}

func getOrder(t *testing.T, rs *store.ReadStore, id string) *readmodel.OrderReadModel {
	t.Helper()
	data, ok, err := rs.Get(store.CollectionOrders, id)
	require.NoError(t, err)
	require.True(t, ok)
	return data.(*readmodel.OrderReadModel)
}

func TestProjector_OrderPlaced(t *testing.T) {
	p, rs := newTestProjector()

	placedAt := time.Now()
	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID:         "order-1",
		BuyerID:         "buyer-1",
		ProductID:       "prod-1",
		SellerID:        "seller-1",
		Industry:        "electronics",
		Quantity:        3,
		ShippingAddress: "1 Main St",
		PlacedAt:        placedAt,
	})

	o := getOrder(t, rs, "order-1")
	assert.Equal(t, "buyer-1", o.BuyerID)
	assert.Equal(t, "seller-1", o.SellerID)
	assert.Equal(t, "electronics", o.Industry)
	assert.Equal(t, 3, o.Quantity)
	assert.Equal(t, "pending_approval", o.Status)
}

func TestProjector_OrderLifecycle(t *testing.T) {
	p, rs := newTestProjector()

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID: "order-1", BuyerID: "buyer-1", ProductID: "prod-1",
		SellerID: "seller-1", Industry: "electronics", Quantity: 1,
		ShippingAddress: "1 Main St",
	})

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderApproved, order.OrderApproved{
		OrderID: "order-1", ActorID: "subadmin-1",
	})
	assert.Equal(t, "approved", getOrder(t, rs, "order-1").Status)

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderConfirmed, order.OrderConfirmed{
		OrderID: "order-1", ActorID: "seller-1",
		FulfillmentDetails: map[string]string{"carrier": "DHL", "tracking": "JD0001"},
	})
	o := getOrder(t, rs, "order-1")
	assert.Equal(t, "confirmed", o.Status)
	assert.Equal(t, "DHL", o.FulfillmentDetails["carrier"])

	// Processing without new details keeps the seller's fulfillment info
	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderProcessingStarted, order.OrderProcessingStarted{
		OrderID: "order-1", ActorID: "seller-1",
	})
	o = getOrder(t, rs, "order-1")
	assert.Equal(t, "in_progress", o.Status)
	assert.Equal(t, "JD0001", o.FulfillmentDetails["tracking"])

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderDispatched, order.OrderDispatched{
		OrderID: "order-1", ActorID: "seller-1",
	})
	assert.Equal(t, "dispatched", getOrder(t, rs, "order-1").Status)

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderDelivered, order.OrderDelivered{
		OrderID: "order-1", ActorID: "buyer-1",
	})
	assert.Equal(t, "delivered", getOrder(t, rs, "order-1").Status)
}

func TestProjector_OrderRejectedKeepsNotes(t *testing.T) {
	p, rs := newTestProjector()

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID: "order-1", BuyerID: "buyer-1", ProductID: "prod-1",
		SellerID: "seller-1", Industry: "electronics", Quantity: 1,
		ShippingAddress: "1 Main St",
	})
	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderRejected, order.OrderRejected{
		OrderID: "order-1", ActorID: "subadmin-1", Notes: "pricing mismatch",
	})

	o := getOrder(t, rs, "order-1")
	assert.Equal(t, "rejected", o.Status)
	assert.Equal(t, "pricing mismatch", o.AdminNotes)
}

func TestProjector_OrderCancelledKeepsReason(t *testing.T) {
	p, rs := newTestProjector()

	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderPlaced, order.OrderPlaced{
		OrderID: "order-1", BuyerID: "buyer-1", ProductID: "prod-1",
		SellerID: "seller-1", Industry: "electronics", Quantity: 1,
		ShippingAddress: "1 Main St",
	})
	dispatch(t, p, "order-1", order.AggregateType, order.EventOrderCancelled, order.OrderCancelled{
		OrderID: "order-1", ActorID: "buyer-1", Reason: "ordered by mistake",
	})

	o := getOrder(t, rs, "order-1")
	assert.Equal(t, "cancelled", o.Status)
	assert.Equal(t, "ordered by mistake", o.AdminNotes)
}

func TestProjector_ProductEvents(t *testing.T) {
	p, rs := newTestProjector()

	dispatch(t, p, "prod-1", product.AggregateType, product.EventProductCreated, product.ProductCreated{
		ProductID: "prod-1", SellerID: "seller-1", Industry: "electronics",
		Name: "Widget", Description: "A fine widget", Price: 2500,
	})

	data, ok, err := rs.Get(store.CollectionProducts, "prod-1")
	require.NoError(t, err)
	require.True(t, ok)
	prod := data.(*readmodel.ProductReadModel)
	assert.Equal(t, "pending_approval", prod.Status)
	assert.Equal(t, 2500, prod.Price)

	dispatch(t, p, "prod-1", product.AggregateType, product.EventProductStatusChanged, product.ProductStatusChanged{
		ProductID: "prod-1", Status: product.StatusApproved, ActorID: "admin-1",
	})
	data, _, _ = rs.Get(store.CollectionProducts, "prod-1")
	assert.Equal(t, "approved", data.(*readmodel.ProductReadModel).Status)

	dispatch(t, p, "prod-1", product.AggregateType, product.EventProductDeleted, product.ProductDeleted{
		ProductID: "prod-1",
	})
	_, ok, err = rs.Get(store.CollectionProducts, "prod-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjector_CartEvents(t *testing.T) {
	p, rs := newTestProjector()
	cartID := cart.GetCartID("buyer-1")

	dispatch(t, p, cartID, cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
		CartID: cartID, UserID: "buyer-1", ProductID: "prod-1", Quantity: 2,
	})
	dispatch(t, p, cartID, cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
		CartID: cartID, UserID: "buyer-1", ProductID: "prod-1", Quantity: 3,
	})

	data, ok, err := rs.Get(store.CollectionCarts, cartID)
	require.NoError(t, err)
	require.True(t, ok)
	c := data.(*readmodel.CartReadModel)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)

	dispatch(t, p, cartID, cart.AggregateType, cart.EventItemQuantityUpdated, cart.CartItemQuantityUpdated{
		CartID: cartID, UserID: "buyer-1", ProductID: "prod-1", Quantity: 1,
	})
	data, _, _ = rs.Get(store.CollectionCarts, cartID)
	assert.Equal(t, 1, data.(*readmodel.CartReadModel).Items[0].Quantity)

	dispatch(t, p, cartID, cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
		CartID: cartID, UserID: "buyer-1",
	})
	data, _, _ = rs.Get(store.CollectionCarts, cartID)
	assert.Empty(t, data.(*readmodel.CartReadModel).Items)
}

func TestProjector_UserEvents(t *testing.T) {
	p, rs := newTestProjector()

	dispatch(t, p, "user-1", user.AggregateType, user.EventUserCreated, user.UserCreated{
		UserID: "user-1", Email: "alice@example.com", PasswordHash: "hash",
		Name: "Alice", Role: user.RoleSeller, Industry: "electronics",
	})

	data, ok, err := rs.Get(store.CollectionUsers, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	u := data.(*readmodel.UserReadModel)
	assert.Equal(t, "seller", u.Role)
	assert.Equal(t, "electronics", u.Industry)
	assert.True(t, u.IsActive)

	dispatch(t, p, "user-1", user.AggregateType, user.EventUserDeactivated, user.UserDeactivated{
		UserID: "user-1", Reason: "terms violation",
	})
	data, _, _ = rs.Get(store.CollectionUsers, "user-1")
	assert.False(t, data.(*readmodel.UserReadModel).IsActive)

	// Email index serves login lookups
	byEmail, ok, err := rs.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-1", byEmail.ID)
}

func TestProjector_UnknownAggregateIgnored(t *testing.T) {
	p, _ := newTestProjector()

	event := store.Event{
		AggregateID:   "x-1",
		AggregateType: "Unknown",
		EventType:     "SomethingHappened",
		Data:          []byte(`{}`),
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NoError(t, p.HandleEvent(context.Background(), []byte("x-1"), value))
}
