package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/b2b-marketplace/internal/api/middleware"
	"github.com/example/b2b-marketplace/internal/command"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// actorFromRequest builds the acting identity from the JWT claims
func actorFromRequest(r *http.Request) order.Actor {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return order.Actor{}
	}
	return order.Actor{
		ID:       claims.UserID,
		Role:     user.Role(claims.Role),
		Industry: claims.Industry,
	}
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int    `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.CreateProduct{
		SellerID:    claims.UserID,
		Industry:    claims.Industry,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	product, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetMyProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProductsBySeller(middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetPendingProducts(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	products, err := h.queryHandler.ListPendingProducts(actor.Role, actor.Industry)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, ok, err := h.queryHandler.GetProduct(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	actor := actorFromRequest(r)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int    `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.UpdateProduct{
		ProductID:   id,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.cmdHandler.UpdateProduct(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product updated"})
}

func (h *Handlers) ModerateProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/products/"), "/moderate")
	actor := actorFromRequest(r)

	var req struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.ModerateProduct{
		ProductID:     id,
		Approve:       req.Approve,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		ActorIndustry: actor.Industry,
		Notes:         req.Notes,
	}
	if err := h.cmdHandler.ModerateProduct(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product moderated"})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	actor := actorFromRequest(r)

	cmd := command.DeleteProduct{ProductID: id, ActorID: actor.ID, ActorRole: actor.Role}
	if err := h.cmdHandler.DeleteProduct(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// Cart Handlers

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.AddToCart{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.UpdateCartQuantity{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.UpdateCartQuantity(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	cmd := command.RemoveFromCart{
		UserID:    userID,
		ProductID: productID,
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{UserID: userID}); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	cart, err := h.queryHandler.GetCart(userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID       string `json:"product_id"`
		Quantity        int    `json:"quantity"`
		ShippingAddress string `json:"shipping_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.CreateOrder{
		BuyerID:         userID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
	}
	o, err := h.cmdHandler.CreateOrder(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	orders, err := h.cmdHandler.Checkout(r.Context(), command.Checkout{
		BuyerID:         userID,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, orders)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	filters := query.OrderFilters{
		Status:   r.URL.Query().Get("status"),
		SellerID: r.URL.Query().Get("seller_id"),
		BuyerID:  r.URL.Query().Get("buyer_id"),
	}

	orders, err := h.queryHandler.ListOrders(actor, filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := extractPathParam(r.URL.Path, "/orders/")

	o, ok, err := h.queryHandler.GetOrder(actor, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/transition")

	var req struct {
		Target             string            `json:"target"`
		FulfillmentDetails map[string]string `json:"fulfillment_details"`
		Reason             string            `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.TransitionOrder{
		OrderID:            id,
		Target:             order.Status(req.Target),
		Actor:              actor,
		FulfillmentDetails: req.FulfillmentDetails,
		Reason:             req.Reason,
	}
	o, err := h.cmdHandler.TransitionOrder(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ApproveRejectOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/approval")

	var req struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.ApproveRejectOrder{
		OrderID: id,
		Approve: req.Approve,
		Actor:   actor,
		Notes:   req.Notes,
	}
	o, err := h.cmdHandler.ApproveRejectOrder(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/confirm")

	var req struct {
		FulfillmentDetails map[string]string `json:"fulfillment_details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.ConfirmOrder{
		OrderID:            id,
		Actor:              actor,
		FulfillmentDetails: req.FulfillmentDetails,
	}
	o, err := h.cmdHandler.ConfirmOrder(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
