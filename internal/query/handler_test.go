package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderStatuses = []string{
	"pending_approval", "approved", "rejected", "confirmed",
	"in_progress", "dispatched", "delivered", "cancelled",
}

// seedOrders writes one order per status for each of two buyer/seller
// pairs in different industries
func seedOrders(t *testing.T, readStore store.ReadStoreInterface) {
	t.Helper()
	pairs := []struct {
		buyer, seller, industry string
	}{
		{"buyer-1", "seller-1", "electronics"},
		{"buyer-2", "seller-2", "beauty"},
	}
	for _, pair := range pairs {
		for _, status := range orderStatuses {
			id := fmt.Sprintf("order-%s-%s", pair.buyer, status)
			require.NoError(t, readStore.Set(store.CollectionOrders, id, &readmodel.OrderReadModel{
				ID:        id,
				BuyerID:   pair.buyer,
				ProductID: "prod-" + pair.seller,
				SellerID:  pair.seller,
				Industry:  pair.industry,
				Quantity:  1,
				Status:    status,
				CreatedAt: time.Now(),
			}))
		}
	}
}

func newTestHandler(t *testing.T) (*Handler, *store.ReadStore) {
	readStore := store.NewReadStore()
	return NewHandler(readStore), readStore
}

func TestListOrders_BuyerNeverSeesPreConfirmationStatuses(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	buyer := order.Actor{ID: "buyer-1", Role: user.RoleBuyer}

	// Property must hold for any caller-supplied filter
	filters := []OrderFilters{
		{},
		{Status: "pending_approval"},
		{Status: "approved"},
		{Status: "rejected"},
		{SellerID: "seller-1"},
		{BuyerID: "buyer-1"},
	}
	for _, f := range filters {
		orders, err := h.ListOrders(buyer, f)
		require.NoError(t, err)
		for _, o := range orders {
			assert.Equal(t, "buyer-1", o.BuyerID)
			assert.NotContains(t, []string{"pending_approval", "approved", "rejected"}, o.Status,
				"buyer saw hidden status %s with filter %+v", o.Status, f)
		}
	}
}

func TestListOrders_BuyerSeesOwnOrdersFromConfirmation(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	buyer := order.Actor{ID: "buyer-1", Role: user.RoleBuyer}

	orders, err := h.ListOrders(buyer, OrderFilters{})
	require.NoError(t, err)

	statuses := make([]string, 0, len(orders))
	for _, o := range orders {
		statuses = append(statuses, o.Status)
	}
	assert.ElementsMatch(t, []string{"confirmed", "in_progress", "dispatched", "delivered", "cancelled"}, statuses)
}

func TestListOrders_SellerNeverSeesPendingApproval(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	seller := order.Actor{ID: "seller-1", Role: user.RoleSeller, Industry: "electronics"}

	filters := []OrderFilters{{}, {Status: "pending_approval"}, {BuyerID: "buyer-1"}}
	for _, f := range filters {
		orders, err := h.ListOrders(seller, f)
		require.NoError(t, err)
		for _, o := range orders {
			assert.Equal(t, "seller-1", o.SellerID)
			assert.NotEqual(t, "pending_approval", o.Status)
			assert.NotEqual(t, "rejected", o.Status)
		}
	}
}

func TestListOrders_SubAdminScopedToIndustry(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	subAdmin := order.Actor{ID: "subadmin-1", Role: user.RoleSubAdmin, Industry: "electronics"}

	orders, err := h.ListOrders(subAdmin, OrderFilters{})
	require.NoError(t, err)

	// All statuses visible, but only electronics orders
	assert.Len(t, orders, len(orderStatuses))
	for _, o := range orders {
		assert.Equal(t, "electronics", o.Industry)
	}
}

func TestListOrders_AdminSeesEverything(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	admin := order.Actor{ID: "admin-1", Role: user.RoleAdmin}

	orders, err := h.ListOrders(admin, OrderFilters{})
	require.NoError(t, err)
	assert.Len(t, orders, 2*len(orderStatuses))
}

func TestListOrders_FiltersApplyAfterVisibility(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)
	admin := order.Actor{ID: "admin-1", Role: user.RoleAdmin}

	orders, err := h.ListOrders(admin, OrderFilters{Status: "confirmed", SellerID: "seller-2"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "buyer-2", orders[0].BuyerID)

	// A buyer cannot use filters to widen visibility to another buyer
	buyer := order.Actor{ID: "buyer-1", Role: user.RoleBuyer}
	orders, err = h.ListOrders(buyer, OrderFilters{BuyerID: "buyer-2"})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetOrder_InvisibleLooksAbsent(t *testing.T) {
	h, rs := newTestHandler(t)
	seedOrders(t, rs)

	// Pending order exists but is hidden from its buyer
	buyer := order.Actor{ID: "buyer-1", Role: user.RoleBuyer}
	o, ok, err := h.GetOrder(buyer, "order-buyer-1-pending_approval")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, o)

	// The same order is visible to an admin
	admin := order.Actor{ID: "admin-1", Role: user.RoleAdmin}
	o, ok, err = h.GetOrder(admin, "order-buyer-1-pending_approval")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pending_approval", o.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := order.Actor{ID: "admin-1", Role: user.RoleAdmin}

	_, ok, err := h.GetOrder(admin, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListProducts_OnlyApproved(t *testing.T) {
	h, rs := newTestHandler(t)
	for i, status := range []string{"pending_approval", "approved", "rejected"} {
		id := fmt.Sprintf("prod-%d", i)
		require.NoError(t, rs.Set(store.CollectionProducts, id, &readmodel.ProductReadModel{
			ID:       id,
			SellerID: "seller-1",
			Industry: "electronics",
			Name:     "Widget",
			Price:    100,
			Status:   status,
		}))
	}

	products, err := h.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "approved", products[0].Status)
}

func TestListPendingProducts_SubAdminIndustryScoped(t *testing.T) {
	h, rs := newTestHandler(t)
	require.NoError(t, rs.Set(store.CollectionProducts, "prod-1", &readmodel.ProductReadModel{
		ID: "prod-1", SellerID: "seller-1", Industry: "electronics", Name: "Widget", Status: "pending_approval",
	}))
	require.NoError(t, rs.Set(store.CollectionProducts, "prod-2", &readmodel.ProductReadModel{
		ID: "prod-2", SellerID: "seller-2", Industry: "beauty", Name: "Serum", Status: "pending_approval",
	}))

	products, err := h.ListPendingProducts(user.RoleSubAdmin, "electronics")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-1", products[0].ID)

	products, err = h.ListPendingProducts(user.RoleAdmin, "")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = h.ListPendingProducts(user.RoleBuyer, "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetCart_EmptyCartDefault(t *testing.T) {
	h, _ := newTestHandler(t)

	cart, err := h.GetCart("buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-buyer-1", cart.ID)
	assert.Empty(t, cart.Items)
}
