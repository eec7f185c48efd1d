package command

import (
	"context"
	"testing"

	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/infrastructure/store/mocks"
	"github.com/example/b2b-marketplace/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommandHandler() (*Handler, *mocks.MockEventStore, *store.ReadStore) {
	eventStore := mocks.NewMockEventStore()
	readStore := store.NewReadStore()
	handler := NewHandler(
		user.NewService(eventStore),
		product.NewService(eventStore),
		cart.NewService(eventStore),
		order.NewService(eventStore),
		readStore,
	)
	return handler, eventStore, readStore
}

func seedProduct(t *testing.T, rs *store.ReadStore, id, sellerID, industry, status string) {
	t.Helper()
	require.NoError(t, rs.Set(store.CollectionProducts, id, &readmodel.ProductReadModel{
		ID:       id,
		SellerID: sellerID,
		Industry: industry,
		Name:     "Widget",
		Price:    2500,
		Status:   status,
	}))
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	handler, _, _ := newTestCommandHandler()

	_, err := handler.CreateOrder(context.Background(), CreateOrder{
		BuyerID:         "buyer-1",
		ProductID:       "missing",
		Quantity:        1,
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestCreateOrder_UnapprovedProductLooksAbsent(t *testing.T) {
	handler, _, readStore := newTestCommandHandler()
	seedProduct(t, readStore, "prod-pending", "seller-1", "electronics", "pending_approval")
	seedProduct(t, readStore, "prod-rejected", "seller-1", "electronics", "rejected")

	for _, productID := range []string{"prod-pending", "prod-rejected"} {
		_, err := handler.CreateOrder(context.Background(), CreateOrder{
			BuyerID:         "buyer-1",
			ProductID:       productID,
			Quantity:        2,
			ShippingAddress: "1 Main St",
		})
		assert.ErrorIs(t, err, product.ErrProductNotFound, "product %s", productID)
	}
}

func TestCreateOrder_DenormalizesSellerAndIndustry(t *testing.T) {
	handler, _, readStore := newTestCommandHandler()
	seedProduct(t, readStore, "prod-1", "seller-1", "electronics", "approved")

	o, err := handler.CreateOrder(context.Background(), CreateOrder{
		BuyerID:         "buyer-1",
		ProductID:       "prod-1",
		Quantity:        3,
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	assert.Equal(t, "buyer-1", o.BuyerID)
	assert.Equal(t, "seller-1", o.SellerID)
	assert.Equal(t, "electronics", o.Industry)
	assert.Equal(t, order.StatusPendingApproval, o.Status)
	assert.Equal(t, 1, o.Version)
}

func TestAddToCart_RequiresApprovedProduct(t *testing.T) {
	handler, _, readStore := newTestCommandHandler()
	seedProduct(t, readStore, "prod-pending", "seller-1", "electronics", "pending_approval")
	seedProduct(t, readStore, "prod-ok", "seller-1", "electronics", "approved")

	err := handler.AddToCart(context.Background(), AddToCart{
		UserID: "buyer-1", ProductID: "prod-pending", Quantity: 1,
	})
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	err = handler.AddToCart(context.Background(), AddToCart{
		UserID: "buyer-1", ProductID: "prod-ok", Quantity: 1,
	})
	assert.NoError(t, err)
}

func TestCheckout_EmptyCart(t *testing.T) {
	handler, _, readStore := newTestCommandHandler()

	// No cart at all
	_, err := handler.Checkout(context.Background(), Checkout{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)

	// Cart exists but has no items
	require.NoError(t, readStore.Set(store.CollectionCarts, cart.GetCartID("buyer-1"), &readmodel.CartReadModel{
		ID:     cart.GetCartID("buyer-1"),
		UserID: "buyer-1",
		Items:  []readmodel.CartItemReadModel{},
	}))
	_, err = handler.Checkout(context.Background(), Checkout{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_OneOrderPerCartLine(t *testing.T) {
	handler, eventStore, readStore := newTestCommandHandler()
	seedProduct(t, readStore, "prod-1", "seller-1", "electronics", "approved")
	seedProduct(t, readStore, "prod-2", "seller-2", "beauty", "approved")

	cartID := cart.GetCartID("buyer-1")
	require.NoError(t, readStore.Set(store.CollectionCarts, cartID, &readmodel.CartReadModel{
		ID:     cartID,
		UserID: "buyer-1",
		Items: []readmodel.CartItemReadModel{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 5},
		},
	}))

	orders, err := handler.Checkout(context.Background(), Checkout{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Each line becomes an independent order with its product's seller
	assert.Equal(t, "prod-1", orders[0].ProductID)
	assert.Equal(t, "seller-1", orders[0].SellerID)
	assert.Equal(t, 2, orders[0].Quantity)
	assert.Equal(t, "prod-2", orders[1].ProductID)
	assert.Equal(t, "beauty", orders[1].Industry)
	assert.Equal(t, 5, orders[1].Quantity)
	for _, o := range orders {
		assert.Equal(t, order.StatusPendingApproval, o.Status)
	}

	// The cart is cleared after checkout
	lastAppend := eventStore.AppendCalls[len(eventStore.AppendCalls)-1]
	assert.Equal(t, cartID, lastAppend.AggregateID)
	assert.Equal(t, cart.EventCartCleared, lastAppend.EventType)
}

func TestCheckout_FailsOnUnapprovedLine(t *testing.T) {
	handler, _, readStore := newTestCommandHandler()
	seedProduct(t, readStore, "prod-1", "seller-1", "electronics", "approved")
	seedProduct(t, readStore, "prod-2", "seller-2", "beauty", "pending_approval")

	cartID := cart.GetCartID("buyer-1")
	require.NoError(t, readStore.Set(store.CollectionCarts, cartID, &readmodel.CartReadModel{
		ID:     cartID,
		UserID: "buyer-1",
		Items: []readmodel.CartItemReadModel{
			{ProductID: "prod-1", Quantity: 1},
			{ProductID: "prod-2", Quantity: 1},
		},
	}))

	_, err := handler.Checkout(context.Background(), Checkout{
		BuyerID:         "buyer-1",
		ShippingAddress: "1 Main St",
	})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestModerateProduct_MapsApproveFlag(t *testing.T) {
	handler, eventStore, _ := newTestCommandHandler()
	require.NoError(t, eventStore.AddEvent("prod-1", product.AggregateType, product.EventProductCreated, product.ProductCreated{
		ProductID: "prod-1",
		SellerID:  "seller-1",
		Industry:  "electronics",
		Name:      "Widget",
		Price:     2500,
	}))

	err := handler.ModerateProduct(context.Background(), ModerateProduct{
		ProductID: "prod-1",
		Approve:   true,
		ActorID:   "admin-1",
		ActorRole: user.RoleAdmin,
	})
	require.NoError(t, err)

	lastAppend := eventStore.AppendCalls[len(eventStore.AppendCalls)-1]
	assert.Equal(t, product.EventProductStatusChanged, lastAppend.EventType)
	statusEvent, ok := lastAppend.Data.(product.ProductStatusChanged)
	require.True(t, ok)
	assert.Equal(t, product.StatusApproved, statusEvent.Status)
}
