package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/b2b-marketplace/internal/auth"
	"github.com/example/b2b-marketplace/internal/domain/aggregate"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "User"

// Role determines both which order transitions an actor may request and
// which orders are visible to them.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub_admin" // scoped to one industry
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin, RoleSubAdmin:
		return true
	}
	return false
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingIndustry    = errors.New("industry is required for sellers and sub-admins")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDeactivated    = errors.New("user account is deactivated")
)

// User represents a directory user aggregate
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Industry     string    `json:"industry,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

func (u *User) GetID() string    { return u.ID }
func (u *User) GetVersion() int  { return u.Version }
func (u *User) SetVersion(v int) { u.Version = v }

// ApplyEvent applies a single event to the user state
func (u *User) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventUserCreated:
		var data UserCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.ID = data.UserID
		u.Email = data.Email
		u.PasswordHash = data.PasswordHash
		u.Name = data.Name
		u.Role = data.Role
		u.Industry = data.Industry
		u.IsActive = true
		u.CreatedAt = data.CreatedAt
		u.UpdatedAt = data.CreatedAt
	case EventUserUpdated:
		var data UserUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.Name = data.Name
		u.UpdatedAt = data.UpdatedAt
	case EventUserPasswordChanged:
		var data UserPasswordChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.PasswordHash = data.PasswordHash
		u.UpdatedAt = data.ChangedAt
	case EventUserDeactivated:
		var data UserDeactivated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.IsActive = false
		u.UpdatedAt = data.DeactivatedAt
	}
	u.Version = event.Version
	return nil
}

// Service handles user directory operations
type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) loadUser(ctx context.Context, userID string) (*User, error) {
	u, found, err := aggregate.LoadAggregate(ctx, s.eventStore, userID, func() *User {
		return &User{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Register creates a new user. Sellers and sub-admins must carry an
// industry; it scopes their catalog ownership and approval authority.
func (s *Service) Register(ctx context.Context, email, password, name string, role Role, industry string) (*User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if (role == RoleSeller || role == RoleSubAdmin) && industry == "" {
		return nil, ErrMissingIndustry
	}
	if role != RoleSeller && role != RoleSubAdmin {
		industry = ""
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	userID := uuid.New().String()
	now := time.Now()

	event := UserCreated{
		UserID:       userID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		Industry:     industry,
		CreatedAt:    now,
	}

	if _, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserCreated, 0, event); err != nil {
		return nil, err
	}

	return &User{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		Industry:  industry,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}, nil
}

// UpdateProfile updates user profile information
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) error {
	if name == "" {
		return ErrInvalidName
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	event := UserUpdated{
		UserID:    userID,
		Name:      name,
		UpdatedAt: time.Now(),
	}

	_, err = s.eventStore.Append(ctx, userID, AggregateType, EventUserUpdated, u.Version, event)
	return err
}

// ChangePassword changes user password
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	event := UserPasswordChanged{
		UserID:       userID,
		PasswordHash: passwordHash,
		ChangedAt:    time.Now(),
	}

	_, err = s.eventStore.Append(ctx, userID, AggregateType, EventUserPasswordChanged, u.Version, event)
	return err
}

// Deactivate bans a user account
func (s *Service) Deactivate(ctx context.Context, userID, reason string) error {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	event := UserDeactivated{
		UserID:        userID,
		Reason:        reason,
		DeactivatedAt: time.Now(),
	}

	_, err = s.eventStore.Append(ctx, userID, AggregateType, EventUserDeactivated, u.Version, event)
	return err
}
