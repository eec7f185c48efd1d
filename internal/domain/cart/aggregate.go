package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/aggregate"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrItemNotInCart   = errors.New("item is not in the cart")
)

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Items   map[string]CartItem `json:"items"` // productID -> item
	Version int                 `json:"version"`
}

func (c *Cart) GetID() string    { return c.ID }
func (c *Cart) GetVersion() int  { return c.Version }
func (c *Cart) SetVersion(v int) { c.Version = v }

// GetCartID returns the cart ID for a user (using userID as cartID for simplicity)
func GetCartID(userID string) string {
	return "cart-" + userID
}

// ApplyEvent applies a single event to the cart state
func (c *Cart) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if c.Items == nil {
			c.Items = make(map[string]CartItem)
		}
		c.ID = data.CartID
		c.UserID = data.UserID
		if existing, ok := c.Items[data.ProductID]; ok {
			existing.Quantity += data.Quantity
			c.Items[data.ProductID] = existing
		} else {
			c.Items[data.ProductID] = CartItem{
				ProductID: data.ProductID,
				Quantity:  data.Quantity,
			}
		}
	case EventItemQuantityUpdated:
		var data CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if item, ok := c.Items[data.ProductID]; ok {
			item.Quantity = data.Quantity
			c.Items[data.ProductID] = item
		}
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		delete(c.Items, data.ProductID)
	case EventCartCleared:
		var data CartCleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Items = make(map[string]CartItem)
	}
	c.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadCart loads a cart by replaying events, using snapshot if available.
// A cart that has no events yet is returned empty, not as an error.
func (s *Service) loadCart(ctx context.Context, userID string) (*Cart, error) {
	cartID := GetCartID(userID)
	cart, found, err := aggregate.LoadAggregate(ctx, s.eventStore, cartID, func() *Cart {
		return &Cart{Items: make(map[string]CartItem)}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		cart = &Cart{
			ID:     cartID,
			UserID: userID,
			Items:  make(map[string]CartItem),
		}
	}
	return cart, nil
}

func (s *Service) append(ctx context.Context, cart *Cart, eventType string, event any) error {
	storedEvent, err := s.eventStore.Append(ctx, cart.ID, AggregateType, eventType, cart.Version, event)
	if err != nil {
		return err
	}

	if err := cart.ApplyEvent(*storedEvent); err != nil {
		return err
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}
	return nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}

	event := ItemAddedToCart{
		CartID:    cart.ID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}

	return s.append(ctx, cart, EventItemAdded, event)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Items[productID]; !ok {
		return ErrItemNotInCart
	}

	event := CartItemQuantityUpdated{
		CartID:    cart.ID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now(),
	}

	return s.append(ctx, cart, EventItemQuantityUpdated, event)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := cart.Items[productID]; !ok {
		return ErrItemNotInCart
	}

	event := ItemRemovedFromCart{
		CartID:    cart.ID,
		UserID:    userID,
		ProductID: productID,
		RemovedAt: time.Now(),
	}

	return s.append(ctx, cart, EventItemRemoved, event)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}

	event := CartCleared{
		CartID:    cart.ID,
		UserID:    userID,
		ClearedAt: time.Now(),
	}

	return s.append(ctx, cart, EventCartCleared, event)
}
