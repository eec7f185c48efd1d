package projection

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/b2b-marketplace/internal/domain/cart"
	"github.com/example/b2b-marketplace/internal/domain/order"
	"github.com/example/b2b-marketplace/internal/domain/product"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/example/b2b-marketplace/internal/readmodel"
)

// Projector consumes domain events and maintains the denormalized read
// models the query side serves from.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	switch event.AggregateType {
	case product.AggregateType:
		return p.handleProductEvent(event)
	case order.AggregateType:
		return p.handleOrderEvent(event)
	case cart.AggregateType:
		return p.handleCartEvent(event)
	case user.AggregateType:
		return p.handleUserEvent(event)
	}

	return nil
}

func (p *Projector) handleProductEvent(event store.Event) error {
	switch event.EventType {
	case product.EventProductCreated:
		var e product.ProductCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(store.CollectionProducts, e.ProductID, &readmodel.ProductReadModel{
			ID:          e.ProductID,
			SellerID:    e.SellerID,
			Industry:    e.Industry,
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Status:      string(product.StatusPendingApproval),
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case product.EventProductUpdated:
		var e product.ProductUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionProducts, e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Name = e.Name
			prod.Description = e.Description
			prod.Price = e.Price
			prod.UpdatedAt = e.UpdatedAt
			return prod
		})
		return err

	case product.EventProductStatusChanged:
		var e product.ProductStatusChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionProducts, e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Status = string(e.Status)
			prod.UpdatedAt = e.ChangedAt
			return prod
		})
		return err

	case product.EventProductDeleted:
		var e product.ProductDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Delete(store.CollectionProducts, e.ProductID)
	}

	return nil
}

func (p *Projector) handleOrderEvent(event store.Event) error {
	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(store.CollectionOrders, e.OrderID, &readmodel.OrderReadModel{
			ID:              e.OrderID,
			BuyerID:         e.BuyerID,
			ProductID:       e.ProductID,
			SellerID:        e.SellerID,
			Industry:        e.Industry,
			Quantity:        e.Quantity,
			ShippingAddress: e.ShippingAddress,
			Status:          string(order.StatusPendingApproval),
			CreatedAt:       e.PlacedAt,
			UpdatedAt:       e.PlacedAt,
		})

	case order.EventOrderApproved:
		var e order.OrderApproved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusApproved, func(o *readmodel.OrderReadModel) {
			o.UpdatedAt = e.ApprovedAt
		})

	case order.EventOrderRejected:
		var e order.OrderRejected
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusRejected, func(o *readmodel.OrderReadModel) {
			o.AdminNotes = e.Notes
			o.UpdatedAt = e.RejectedAt
		})

	case order.EventOrderConfirmed:
		var e order.OrderConfirmed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusConfirmed, func(o *readmodel.OrderReadModel) {
			o.FulfillmentDetails = e.FulfillmentDetails
			o.UpdatedAt = e.ConfirmedAt
		})

	case order.EventOrderProcessingStarted:
		var e order.OrderProcessingStarted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusInProgress, func(o *readmodel.OrderReadModel) {
			if len(e.FulfillmentDetails) > 0 {
				o.FulfillmentDetails = e.FulfillmentDetails
			}
			o.UpdatedAt = e.StartedAt
		})

	case order.EventOrderDispatched:
		var e order.OrderDispatched
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusDispatched, func(o *readmodel.OrderReadModel) {
			o.UpdatedAt = e.DispatchedAt
		})

	case order.EventOrderDelivered:
		var e order.OrderDelivered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusDelivered, func(o *readmodel.OrderReadModel) {
			o.UpdatedAt = e.DeliveredAt
		})

	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateOrderStatus(e.OrderID, order.StatusCancelled, func(o *readmodel.OrderReadModel) {
			o.AdminNotes = e.Reason
			o.UpdatedAt = e.CancelledAt
		})
	}

	return nil
}

func (p *Projector) updateOrderStatus(orderID string, status order.Status, mutate func(*readmodel.OrderReadModel)) error {
	_, err := p.readStore.Update(store.CollectionOrders, orderID, func(current any) any {
		o := current.(*readmodel.OrderReadModel)
		o.Status = string(status)
		mutate(o)
		return o
	})
	return err
}

func (p *Projector) handleCartEvent(event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		var e cart.ItemAddedToCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		_, found, err := p.readStore.Get(store.CollectionCarts, e.CartID)
		if err != nil {
			return err
		}
		if !found {
			return p.readStore.Set(store.CollectionCarts, e.CartID, &readmodel.CartReadModel{
				ID:     e.CartID,
				UserID: e.UserID,
				Items: []readmodel.CartItemReadModel{
					{ProductID: e.ProductID, Quantity: e.Quantity},
				},
				UpdatedAt: e.AddedAt,
			})
		}
		_, err = p.readStore.Update(store.CollectionCarts, e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			found := false
			for i, item := range c.Items {
				if item.ProductID == e.ProductID {
					c.Items[i].Quantity += e.Quantity
					found = true
					break
				}
			}
			if !found {
				c.Items = append(c.Items, readmodel.CartItemReadModel{
					ProductID: e.ProductID,
					Quantity:  e.Quantity,
				})
			}
			c.UpdatedAt = e.AddedAt
			return c
		})
		return err

	case cart.EventItemQuantityUpdated:
		var e cart.CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionCarts, e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			for i, item := range c.Items {
				if item.ProductID == e.ProductID {
					c.Items[i].Quantity = e.Quantity
					break
				}
			}
			c.UpdatedAt = e.UpdatedAt
			return c
		})
		return err

	case cart.EventItemRemoved:
		var e cart.ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionCarts, e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			newItems := make([]readmodel.CartItemReadModel, 0, len(c.Items))
			for _, item := range c.Items {
				if item.ProductID != e.ProductID {
					newItems = append(newItems, item)
				}
			}
			c.Items = newItems
			c.UpdatedAt = e.RemovedAt
			return c
		})
		return err

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(store.CollectionCarts, e.CartID, &readmodel.CartReadModel{
			ID:        e.CartID,
			UserID:    e.UserID,
			Items:     []readmodel.CartItemReadModel{},
			UpdatedAt: e.ClearedAt,
		})
	}

	return nil
}

func (p *Projector) handleUserEvent(event store.Event) error {
	switch event.EventType {
	case user.EventUserCreated:
		var e user.UserCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set(store.CollectionUsers, e.UserID, &readmodel.UserReadModel{
			ID:           e.UserID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         string(e.Role),
			Industry:     e.Industry,
			IsActive:     true,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case user.EventUserUpdated:
		var e user.UserUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionUsers, e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.Name = e.Name
			u.UpdatedAt = e.UpdatedAt
			return u
		})
		return err

	case user.EventUserPasswordChanged:
		var e user.UserPasswordChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionUsers, e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.PasswordHash = e.PasswordHash
			u.UpdatedAt = e.ChangedAt
			return u
		})
		return err

	case user.EventUserDeactivated:
		var e user.UserDeactivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update(store.CollectionUsers, e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = false
			u.UpdatedAt = e.DeactivatedAt
			return u
		})
		return err
	}

	return nil
}
