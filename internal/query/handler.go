package query

import (
	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
)

// OrderFilters are the caller-supplied filters for order listings. They
// are applied after the role visibility filter, never instead of it.
type OrderFilters struct {
	Status   string
	SellerID string
	BuyerID  string
}

// buyerVisibleStatuses implements staged disclosure: a buyer does not see
// an order until a seller has committed to it.
var buyerVisibleStatuses = map[string]bool{
	string(order.StatusConfirmed):  true,
	string(order.StatusInProgress): true,
	string(order.StatusDispatched): true,
	string(order.StatusDelivered):  true,
	string(order.StatusCancelled):  true,
}

// sellerVisibleStatuses hides orders still pending moderation from sellers
var sellerVisibleStatuses = map[string]bool{
	string(order.StatusApproved):   true,
	string(order.StatusConfirmed):  true,
	string(order.StatusInProgress): true,
	string(order.StatusDispatched): true,
	string(order.StatusDelivered):  true,
	string(order.StatusCancelled):  true,
}

// OrderVisibleTo reports whether the actor may see the given order
func OrderVisibleTo(actor order.Actor, o *OrderReadModel) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleSubAdmin:
		return o.Industry == actor.Industry
	case user.RoleSeller:
		return o.SellerID == actor.ID && sellerVisibleStatuses[o.Status]
	case user.RoleBuyer:
		return o.BuyerID == actor.ID && buyerVisibleStatuses[o.Status]
	}
	return false
}

type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// Orders

// GetOrder returns a single order if it exists and the actor may see it.
// Invisible orders are indistinguishable from absent ones.
func (h *Handler) GetOrder(actor order.Actor, id string) (*OrderReadModel, bool, error) {
	data, ok, err := h.readStore.Get(store.CollectionOrders, id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	o := data.(*OrderReadModel)
	if !OrderVisibleTo(actor, o) {
		return nil, false, nil
	}
	return o, true, nil
}

// ListOrders returns the orders visible to the actor, narrowed by the
// caller's filters
func (h *Handler) ListOrders(actor order.Actor, filters OrderFilters) ([]*OrderReadModel, error) {
	items, err := h.readStore.GetAll(store.CollectionOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]*OrderReadModel, 0)
	for _, item := range items {
		o := item.(*OrderReadModel)
		if !OrderVisibleTo(actor, o) {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		if filters.SellerID != "" && o.SellerID != filters.SellerID {
			continue
		}
		if filters.BuyerID != "" && o.BuyerID != filters.BuyerID {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Products

func (h *Handler) GetProduct(id string) (*ProductReadModel, bool, error) {
	data, ok, err := h.readStore.Get(store.CollectionProducts, id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return data.(*ProductReadModel), true, nil
}

// ListProducts returns the approved catalog, the only listings buyers
// can order from
func (h *Handler) ListProducts() ([]*ProductReadModel, error) {
	return h.listProducts(func(p *ProductReadModel) bool {
		return p.Status == string(product.StatusApproved)
	})
}

// ListProductsBySeller returns all of a seller's own listings, whatever
// their moderation status
func (h *Handler) ListProductsBySeller(sellerID string) ([]*ProductReadModel, error) {
	return h.listProducts(func(p *ProductReadModel) bool {
		return p.SellerID == sellerID
	})
}

// ListPendingProducts returns listings awaiting moderation. Sub-admins
// only see their own industry; admins see everything.
func (h *Handler) ListPendingProducts(actorRole user.Role, actorIndustry string) ([]*ProductReadModel, error) {
	return h.listProducts(func(p *ProductReadModel) bool {
		if p.Status != string(product.StatusPendingApproval) {
			return false
		}
		if actorRole == user.RoleSubAdmin {
			return p.Industry == actorIndustry
		}
		return actorRole == user.RoleAdmin
	})
}

func (h *Handler) listProducts(keep func(*ProductReadModel) bool) ([]*ProductReadModel, error) {
	items, err := h.readStore.GetAll(store.CollectionProducts)
	if err != nil {
		return nil, err
	}
	products := make([]*ProductReadModel, 0, len(items))
	for _, item := range items {
		p := item.(*ProductReadModel)
		if keep(p) {
			products = append(products, p)
		}
	}
	return products, nil
}

// Cart

func (h *Handler) GetCart(userID string) (*CartReadModel, error) {
	cartID := cart.GetCartID(userID)
	data, ok, err := h.readStore.Get(store.CollectionCarts, cartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Return empty cart
		return &CartReadModel{
			ID:     cartID,
			UserID: userID,
			Items:  []CartItemReadModel{},
		}, nil
	}
	return data.(*CartReadModel), nil
}

// Users

func (h *Handler) GetUser(id string) (*UserReadModel, bool, error) {
	data, ok, err := h.readStore.Get(store.CollectionUsers, id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return data.(*UserReadModel), true, nil
}

func (h *Handler) GetUserByEmail(email string) (*UserReadModel, bool, error) {
	return h.readStore.GetUserByEmail(email)
}
