package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/email"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/readmodel"
)

// recipientByStatus determines who is notified when an order reaches a
// status. Sellers hear about approvals (an order just became actionable
// for them), buyers hear about everything from confirmation onward.
var recipientByStatus = map[string]string{
	string(order.StatusApproved):   "seller",
	string(order.StatusConfirmed):  "buyer",
	string(order.StatusInProgress): "buyer",
	string(order.StatusDispatched): "buyer",
	string(order.StatusDelivered):  "buyer",
	string(order.StatusCancelled):  "buyer",
}

// Handler processes events for sending notifications
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if event.AggregateType != order.AggregateType {
		return nil
	}

	switch event.EventType {
	case order.EventOrderApproved:
		return h.notify(event.AggregateID, order.StatusApproved, "")
	case order.EventOrderConfirmed:
		return h.notify(event.AggregateID, order.StatusConfirmed, "")
	case order.EventOrderProcessingStarted:
		return h.notify(event.AggregateID, order.StatusInProgress, "")
	case order.EventOrderDispatched:
		return h.notify(event.AggregateID, order.StatusDispatched, "")
	case order.EventOrderDelivered:
		return h.notify(event.AggregateID, order.StatusDelivered, "")
	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			log.Printf("[Notifier] Failed to unmarshal OrderCancelled event: %v", err)
			return err
		}
		return h.notify(event.AggregateID, order.StatusCancelled, e.Reason)
	}

	return nil
}

// notify resolves the order and recipient from the read store and sends the
// status email. Missing read model entries are logged and skipped, not
// treated as failures, since the projector may simply be behind.
func (h *Handler) notify(orderID string, status order.Status, reason string) error {
	orderData, exists, err := h.readStore.Get(store.CollectionOrders, orderID)
	if err != nil {
		log.Printf("[Notifier] Error getting order %s: %v", orderID, err)
		return nil
	}
	if !exists {
		log.Printf("[Notifier] Order not found: %s", orderID)
		return nil
	}
	o, ok := orderData.(*readmodel.OrderReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid order data type for order: %s", orderID)
		return nil
	}

	recipientID := o.BuyerID
	if recipientByStatus[string(status)] == "seller" {
		recipientID = o.SellerID
	}

	userData, exists, err := h.readStore.Get(store.CollectionUsers, recipientID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", recipientID, err)
		return nil
	}
	if !exists {
		log.Printf("[Notifier] User not found: %s", recipientID)
		return nil
	}
	recipient, ok := userData.(*readmodel.UserReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid user data type for user: %s", recipientID)
		return nil
	}

	productName := o.ProductID
	if productData, exists, _ := h.readStore.Get(store.CollectionProducts, o.ProductID); exists {
		if product, ok := productData.(*readmodel.ProductReadModel); ok {
			productName = product.Name
		}
	}

	if err := h.emailService.SendOrderStatusUpdate(recipient.Email, orderID, productName, o.Quantity, string(status), o.FulfillmentDetails, reason); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", recipient.Email, err)
		return err
	}

	log.Printf("[Notifier] %s notification sent to %s for order %s", status, recipient.Email, orderID)
	return nil
}
