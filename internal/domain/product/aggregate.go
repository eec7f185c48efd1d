package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/b2b-marketplace/internal/domain/aggregate"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Product"

// Status is a listing moderation status
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidName     = errors.New("name is required")
	ErrMissingIndustry = errors.New("industry is required")
	ErrInvalidStatus   = errors.New("invalid product status")
	ErrNotOwner        = errors.New("actor does not own this product")
	ErrNotModerator    = errors.New("actor may not moderate this product")
)

// Product is a seller listing. New listings start in pending approval and
// become orderable once a moderator approves them.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Industry    string    `json:"industry"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Status      Status    `json:"status"`
	IsDeleted   bool      `json:"is_deleted,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

func (p *Product) GetID() string    { return p.ID }
func (p *Product) GetVersion() int  { return p.Version }
func (p *Product) SetVersion(v int) { p.Version = v }

// ApplyEvent applies a single event to the product state
func (p *Product) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventProductCreated:
		var data ProductCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.ID = data.ProductID
		p.SellerID = data.SellerID
		p.Industry = data.Industry
		p.Name = data.Name
		p.Description = data.Description
		p.Price = data.Price
		p.Status = StatusPendingApproval
		p.CreatedAt = data.CreatedAt
		p.UpdatedAt = data.CreatedAt
	case EventProductUpdated:
		var data ProductUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.Name = data.Name
		p.Description = data.Description
		p.Price = data.Price
		p.UpdatedAt = data.UpdatedAt
	case EventProductStatusChanged:
		var data ProductStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.Status = data.Status
		p.UpdatedAt = data.ChangedAt
	case EventProductDeleted:
		var data ProductDeleted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.IsDeleted = true
		p.UpdatedAt = data.DeletedAt
	}
	p.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) loadProduct(ctx context.Context, productID string) (*Product, error) {
	p, found, err := aggregate.LoadAggregate(ctx, s.eventStore, productID, func() *Product {
		return &Product{}
	})
	if err != nil {
		return nil, err
	}
	if !found || p.IsDeleted {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Create lists a new product for a seller. The listing starts in pending
// approval and is not orderable until approved.
func (s *Service) Create(ctx context.Context, sellerID, industry, name, description string, price int) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if industry == "" {
		return nil, ErrMissingIndustry
	}

	productID := uuid.New().String()
	now := time.Now()

	event := ProductCreated{
		ProductID:   productID,
		SellerID:    sellerID,
		Industry:    industry,
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
	}

	if _, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductCreated, 0, event); err != nil {
		return nil, err
	}

	return &Product{
		ID:          productID,
		SellerID:    sellerID,
		Industry:    industry,
		Name:        name,
		Description: description,
		Price:       price,
		Status:      StatusPendingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}, nil
}

// Update edits a listing. Only the owning seller or an admin may edit.
func (s *Service) Update(ctx context.Context, productID, actorID string, actorRole user.Role, name, description string, price int) error {
	if name == "" {
		return ErrInvalidName
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if actorRole != user.RoleAdmin && p.SellerID != actorID {
		return ErrNotOwner
	}

	event := ProductUpdated{
		ProductID:   productID,
		Name:        name,
		Description: description,
		Price:       price,
		UpdatedAt:   time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductUpdated, p.Version, event)
	if err != nil {
		return err
	}

	if err := p.ApplyEvent(*storedEvent); err != nil {
		return err
	}
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, p, AggregateType); err != nil {
		log.Printf("[Product] Failed to create snapshot for product %s: %v", p.ID, err)
	}
	return nil
}

// SetStatus approves or rejects a listing. Admins may moderate any
// product, sub-admins only products in their own industry.
func (s *Service) SetStatus(ctx context.Context, productID string, status Status, actorID string, actorRole user.Role, actorIndustry, notes string) error {
	if !status.Valid() || status == StatusPendingApproval {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	switch actorRole {
	case user.RoleAdmin:
	case user.RoleSubAdmin:
		if actorIndustry != p.Industry {
			return fmt.Errorf("%w: sub-admin industry %q does not match product industry %q", ErrNotModerator, actorIndustry, p.Industry)
		}
	default:
		return ErrNotModerator
	}

	event := ProductStatusChanged{
		ProductID: productID,
		Status:    status,
		ActorID:   actorID,
		Notes:     notes,
		ChangedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductStatusChanged, p.Version, event)
	if err != nil {
		return err
	}

	if err := p.ApplyEvent(*storedEvent); err != nil {
		return err
	}
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, p, AggregateType); err != nil {
		log.Printf("[Product] Failed to create snapshot for product %s: %v", p.ID, err)
	}
	return nil
}

// Delete removes a listing. Only the owning seller or an admin may delete.
func (s *Service) Delete(ctx context.Context, productID, actorID string, actorRole user.Role) error {
	p, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if actorRole != user.RoleAdmin && p.SellerID != actorID {
		return ErrNotOwner
	}

	event := ProductDeleted{
		ProductID: productID,
		DeletedAt: time.Now(),
	}

	_, err = s.eventStore.Append(ctx, productID, AggregateType, EventProductDeleted, p.Version, event)
	return err
}
