package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

var (
	buyerActor    = Actor{ID: "buyer-1", Role: user.RoleBuyer}
	sellerActor   = Actor{ID: "seller-1", Role: user.RoleSeller, Industry: "electronics"}
	subAdminActor = Actor{ID: "subadmin-1", Role: user.RoleSubAdmin, Industry: "electronics"}
	adminActor    = Actor{ID: "admin-1", Role: user.RoleAdmin}
)

// seedOrder places an order and walks it to the requested status with the
// minimal legal event sequence
func seedOrder(t *testing.T, eventStore *mocks.MockEventStore, orderID string, status Status) {
	t.Helper()
	now := time.Now()

	require.NoError(t, eventStore.AddEvent(orderID, AggregateType, EventOrderPlaced, OrderPlaced{
		OrderID:         orderID,
		BuyerID:         "buyer-1",
		ProductID:       "prod-1",
		SellerID:        "seller-1",
		Industry:        "electronics",
		Quantity:        3,
		ShippingAddress: "1 Market St",
		PlacedAt:        now,
	}))

	steps := []struct {
		status    Status
		eventType string
		data      any
	}{
		{StatusApproved, EventOrderApproved, OrderApproved{OrderID: orderID, ActorID: "subadmin-1", ApprovedAt: now}},
		{StatusConfirmed, EventOrderConfirmed, OrderConfirmed{OrderID: orderID, ActorID: "seller-1", FulfillmentDetails: map[string]string{"carrier": "DHL"}, ConfirmedAt: now}},
		{StatusInProgress, EventOrderProcessingStarted, OrderProcessingStarted{OrderID: orderID, ActorID: "seller-1", StartedAt: now}},
		{StatusDispatched, EventOrderDispatched, OrderDispatched{OrderID: orderID, ActorID: "seller-1", DispatchedAt: now}},
		{StatusDelivered, EventOrderDelivered, OrderDelivered{OrderID: orderID, ActorID: "buyer-1", DeliveredAt: now}},
	}

	switch status {
	case StatusPendingApproval:
		return
	case StatusRejected:
		require.NoError(t, eventStore.AddEvent(orderID, AggregateType, EventOrderRejected, OrderRejected{OrderID: orderID, ActorID: "subadmin-1", RejectedAt: now}))
		return
	case StatusCancelled:
		require.NoError(t, eventStore.AddEvent(orderID, AggregateType, EventOrderApproved, steps[0].data))
		require.NoError(t, eventStore.AddEvent(orderID, AggregateType, EventOrderConfirmed, steps[1].data))
		require.NoError(t, eventStore.AddEvent(orderID, AggregateType, EventOrderCancelled, OrderCancelled{OrderID: orderID, ActorID: "buyer-1", CancelledAt: now}))
		return
	}

	for _, step := range steps {
		require.NoError(t, eventStore.AddEvent(orderID, AggregateType, step.eventType, step.data))
		if step.status == status {
			return
		}
	}
	t.Fatalf("cannot seed order to status %s", status)
}

// Place

func TestService_Place_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "buyer-1", Placement{
		ProductID:       "prod-1",
		SellerID:        "seller-1",
		Industry:        "electronics",
		Quantity:        3,
		ShippingAddress: "1 Market St",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "buyer-1", order.BuyerID)
	assert.Equal(t, "seller-1", order.SellerID)
	assert.Equal(t, "electronics", order.Industry)
	assert.Equal(t, 3, order.Quantity)
	assert.Equal(t, StatusPendingApproval, order.Status)
	assert.Equal(t, 1, order.Version)

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderPlaced, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, AggregateType, eventStore.AppendCalls[0].AggregateType)
	assert.Equal(t, 0, eventStore.AppendCalls[0].ExpectedVersion)
}

func TestService_Place_InvalidQuantity(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	for _, quantity := range []int{0, -1} {
		order, err := service.Place(ctx, "buyer-1", Placement{
			ProductID:       "prod-1",
			SellerID:        "seller-1",
			Quantity:        quantity,
			ShippingAddress: "1 Market St",
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Nil(t, order)
	}
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Place_MissingShippingAddress(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "buyer-1", Placement{
		ProductID: "prod-1",
		SellerID:  "seller-1",
		Quantity:  1,
	})

	assert.ErrorIs(t, err, ErrMissingShippingAddress)
	assert.Nil(t, order)
}

// Transition

func TestService_Transition_OrderNotFound(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	_, err := service.Transition(ctx, "missing", StatusApproved, adminActor, nil, "")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_Transition_SellerHappyPath(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	o, err := service.Transition(ctx, "order-1", StatusConfirmed, sellerActor, map[string]string{"carrier": "DHL"}, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, map[string]string{"carrier": "DHL"}, o.FulfillmentDetails)

	o, err = service.Transition(ctx, "order-1", StatusInProgress, sellerActor, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, o.Status)

	o, err = service.Transition(ctx, "order-1", StatusDispatched, sellerActor, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, o.Status)
}

func TestService_Transition_IllegalForRole(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	// A seller may not approve their own orders
	_, err := service.Transition(ctx, "order-1", StatusApproved, sellerActor, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "pending_approval")
	assert.Contains(t, err.Error(), "approved")
	assert.Contains(t, err.Error(), "seller")
}

func TestService_Transition_UnknownTargetStatus(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	_, err := service.Transition(ctx, "order-1", Status("shipped"), adminActor, nil, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_Transition_TerminalStatusRejectsAll(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	terminalSeeds := []Status{StatusRejected, StatusDelivered, StatusCancelled}
	for i, seed := range terminalSeeds {
		orderID := "order-terminal-" + string(seed)
		seedOrder(t, eventStore, orderID, seed)

		_, err := service.Transition(ctx, orderID, StatusCancelled, adminActor, nil, "give up")
		assert.ErrorIs(t, err, ErrInvalidTransition, "case %d: %s", i, seed)
	}
}

func TestService_Transition_SellerDoesNotOwnProduct(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	otherSeller := Actor{ID: "seller-2", Role: user.RoleSeller, Industry: "electronics"}
	_, err := service.Transition(ctx, "order-1", StatusConfirmed, otherSeller, map[string]string{"carrier": "DHL"}, "")

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Transition_BuyerDoesNotOwnOrder(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusDispatched)

	otherBuyer := Actor{ID: "buyer-2", Role: user.RoleBuyer}
	_, err := service.Transition(ctx, "order-1", StatusDelivered, otherBuyer, nil, "")

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Transition_SubAdminIndustryMismatch(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	// Order is for an electronics product; a beauty sub-admin may not act
	beautySubAdmin := Actor{ID: "subadmin-2", Role: user.RoleSubAdmin, Industry: "beauty"}
	_, err := service.Transition(ctx, "order-1", StatusApproved, beautySubAdmin, nil, "")

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Transition_BuyerCancel(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusConfirmed)

	o, err := service.Transition(ctx, "order-1", StatusCancelled, buyerActor, nil, "changed my mind")

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "changed my mind", o.AdminNotes)
}

func TestService_Transition_AdminOverride(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	// Admins are not bound by the per-role edges
	o, err := service.Transition(ctx, "order-1", StatusCancelled, adminActor, nil, "fraud")

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "fraud", o.AdminNotes)
}

func TestService_Transition_AppendsWithReadVersion(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved) // versions 1..2

	_, err := service.Transition(ctx, "order-1", StatusConfirmed, sellerActor, map[string]string{"carrier": "DHL"}, "")
	require.NoError(t, err)

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, 2, eventStore.AppendCalls[0].ExpectedVersion)
}

// TestService_Transition_ConcurrentConflict runs two conflicting
// transitions against the same order. Exactly one must win; the loser
// fails with a version conflict or a stale-state transition error.
func TestService_Transition_ConcurrentConflict(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusDispatched)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = service.Transition(ctx, "order-1", StatusDelivered, buyerActor, nil, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = service.Transition(ctx, "order-1", StatusCancelled, adminActor, nil, "dispute")
	}()
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		losses++
		assert.True(t,
			errors.Is(err, store.ErrVersionConflict) || errors.Is(err, ErrInvalidTransition),
			"loser error should be a conflict or stale-state error, got: %v", err)
	}
	assert.Equal(t, 1, wins, "exactly one transition must win")
	assert.Equal(t, 1, losses)
}

// ApproveReject

func TestService_ApproveReject_SubAdminApprove(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	o, err := service.ApproveReject(ctx, "order-1", true, subAdminActor, "")

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, o.Status)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderApproved, eventStore.AppendCalls[0].EventType)
}

func TestService_ApproveReject_SubAdminRejectWithNotes(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	o, err := service.ApproveReject(ctx, "order-1", false, subAdminActor, "incomplete documentation")

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, o.Status)
	assert.Equal(t, "incomplete documentation", o.AdminNotes)
}

func TestService_ApproveReject_BuyerForbidden(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	_, err := service.ApproveReject(ctx, "order-1", true, buyerActor, "")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_ApproveReject_NotPending(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusConfirmed)

	_, err := service.ApproveReject(ctx, "order-1", true, adminActor, "")

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// Confirm

func TestService_Confirm_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	o, err := service.Confirm(ctx, "order-1", sellerActor, map[string]string{"carrier": "DHL", "tracking": "JD0001"})

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, "DHL", o.FulfillmentDetails["carrier"])
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderConfirmed, eventStore.AppendCalls[0].EventType)
}

func TestService_Confirm_MissingFulfillment(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	for _, details := range []map[string]string{nil, {}} {
		_, err := service.Confirm(ctx, "order-1", sellerActor, details)
		assert.ErrorIs(t, err, ErrMissingFulfillment)
	}
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Confirm_NonSellerForbidden(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusApproved)

	_, err := service.Confirm(ctx, "order-1", adminActor, map[string]string{"carrier": "DHL"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Confirm_NotApproved(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()
	seedOrder(t, eventStore, "order-1", StatusPendingApproval)

	_, err := service.Confirm(ctx, "order-1", sellerActor, map[string]string{"carrier": "DHL"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// TestService_FullLifecycle walks an order through the complete happy
// path: placement, sub-admin approval, seller confirmation with
// fulfillment details, processing, dispatch, buyer delivery.
func TestService_FullLifecycle(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	placed, err := service.Place(ctx, "buyer-1", Placement{
		ProductID:       "prod-1",
		SellerID:        "seller-1",
		Industry:        "electronics",
		Quantity:        3,
		ShippingAddress: "1 Market St",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, placed.Status)

	o, err := service.ApproveReject(ctx, placed.ID, true, subAdminActor, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, o.Status)

	o, err = service.Confirm(ctx, placed.ID, sellerActor, map[string]string{"carrier": "DHL"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, map[string]string{"carrier": "DHL"}, o.FulfillmentDetails)

	o, err = service.Transition(ctx, placed.ID, StatusInProgress, sellerActor, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, o.Status)

	o, err = service.Transition(ctx, placed.ID, StatusDispatched, sellerActor, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, o.Status)

	o, err = service.Transition(ctx, placed.ID, StatusDelivered, buyerActor, nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)
	assert.Equal(t, 3, o.Quantity)
	assert.Equal(t, map[string]string{"carrier": "DHL"}, o.FulfillmentDetails)

	// Delivered is terminal, even for admins
	_, err = service.Transition(ctx, placed.ID, StatusCancelled, adminActor, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
