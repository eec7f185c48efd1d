package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/query"
)

var ErrEmptyCart = errors.New("cart is empty")

type Handler struct {
	userSvc    *user.Service
	productSvc *product.Service
	cartSvc    *cart.Service
	orderSvc   *order.Service
	readStore  store.ReadStoreInterface
}

func NewHandler(
	userSvc *user.Service,
	productSvc *product.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	readStore store.ReadStoreInterface,
) *Handler {
	return &Handler{
		userSvc:    userSvc,
		productSvc: productSvc,
		cartSvc:    cartSvc,
		orderSvc:   orderSvc,
		readStore:  readStore,
	}
}

// Users

func (h *Handler) RegisterUser(ctx context.Context, cmd RegisterUser) (*user.User, error) {
	return h.userSvc.Register(ctx, cmd.Email, cmd.Password, cmd.Name, cmd.Role, cmd.Industry)
}

func (h *Handler) UpdateUserProfile(ctx context.Context, cmd UpdateUserProfile) error {
	return h.userSvc.UpdateProfile(ctx, cmd.UserID, cmd.Name)
}

func (h *Handler) ChangeUserPassword(ctx context.Context, cmd ChangeUserPassword) error {
	return h.userSvc.ChangePassword(ctx, cmd.UserID, cmd.NewPassword)
}

func (h *Handler) DeactivateUser(ctx context.Context, cmd DeactivateUser) error {
	return h.userSvc.Deactivate(ctx, cmd.UserID, cmd.Reason)
}

// Products

// CreateProduct lists a new product (async projection - updates via Kafka)
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	return h.productSvc.Create(ctx, cmd.SellerID, cmd.Industry, cmd.Name, cmd.Description, cmd.Price)
}

func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) error {
	return h.productSvc.Update(ctx, cmd.ProductID, cmd.ActorID, cmd.ActorRole, cmd.Name, cmd.Description, cmd.Price)
}

// ModerateProduct approves or rejects a pending listing
func (h *Handler) ModerateProduct(ctx context.Context, cmd ModerateProduct) error {
	status := product.StatusApproved
	if !cmd.Approve {
		status = product.StatusRejected
	}
	return h.productSvc.SetStatus(ctx, cmd.ProductID, status, cmd.ActorID, cmd.ActorRole, cmd.ActorIndustry, cmd.Notes)
}

func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	return h.productSvc.Delete(ctx, cmd.ProductID, cmd.ActorID, cmd.ActorRole)
}

// Cart

// AddToCart adds an item to cart. The product must exist and be approved,
// since only approved listings can ever become orders.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	if _, err := h.orderableProduct(cmd.ProductID); err != nil {
		return err
	}
	return h.cartSvc.AddItem(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) UpdateCartQuantity(ctx context.Context, cmd UpdateCartQuantity) error {
	return h.cartSvc.UpdateQuantity(ctx, cmd.UserID, cmd.ProductID, cmd.Quantity)
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.ProductID)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

// Orders

// orderableProduct resolves a product from the read store and checks it is
// approved. Unapproved and missing products are both reported as not found.
func (h *Handler) orderableProduct(productID string) (*query.ProductReadModel, error) {
	data, ok, err := h.readStore.Get(store.CollectionProducts, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, product.ErrProductNotFound
	}
	prod := data.(*query.ProductReadModel)
	if prod.Status != string(product.StatusApproved) {
		return nil, fmt.Errorf("%w: product %s is not approved", product.ErrProductNotFound, productID)
	}
	return prod, nil
}

// CreateOrder places a single order for an approved product
func (h *Handler) CreateOrder(ctx context.Context, cmd CreateOrder) (*order.Order, error) {
	prod, err := h.orderableProduct(cmd.ProductID)
	if err != nil {
		return nil, err
	}

	return h.orderSvc.Place(ctx, cmd.BuyerID, order.Placement{
		ProductID:       cmd.ProductID,
		SellerID:        prod.SellerID,
		Industry:        prod.Industry,
		Quantity:        cmd.Quantity,
		ShippingAddress: cmd.ShippingAddress,
	})
}

// Checkout places one order per cart line and clears the cart. Each order
// runs its own approval workflow independently.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) ([]*order.Order, error) {
	cartID := cart.GetCartID(cmd.BuyerID)
	data, ok, err := h.readStore.Get(store.CollectionCarts, cartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyCart
	}
	cartModel := data.(*query.CartReadModel)
	if len(cartModel.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orders := make([]*order.Order, 0, len(cartModel.Items))
	for _, item := range cartModel.Items {
		o, err := h.CreateOrder(ctx, CreateOrder{
			BuyerID:         cmd.BuyerID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			ShippingAddress: cmd.ShippingAddress,
		})
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := h.cartSvc.Clear(ctx, cmd.BuyerID); err != nil {
		return nil, err
	}

	return orders, nil
}

// TransitionOrder moves an order through the lifecycle on behalf of an actor
func (h *Handler) TransitionOrder(ctx context.Context, cmd TransitionOrder) (*order.Order, error) {
	return h.orderSvc.Transition(ctx, cmd.OrderID, cmd.Target, cmd.Actor, cmd.FulfillmentDetails, cmd.Reason)
}

// ApproveRejectOrder moderates a pending order
func (h *Handler) ApproveRejectOrder(ctx context.Context, cmd ApproveRejectOrder) (*order.Order, error) {
	return h.orderSvc.ApproveReject(ctx, cmd.OrderID, cmd.Approve, cmd.Actor, cmd.Notes)
}

// ConfirmOrder records the seller's commitment with fulfillment details
func (h *Handler) ConfirmOrder(ctx context.Context, cmd ConfirmOrder) (*order.Order, error) {
	return h.orderSvc.Confirm(ctx, cmd.OrderID, cmd.Actor, cmd.FulfillmentDetails)
}
