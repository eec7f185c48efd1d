package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/b2b-marketplace/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL.
// Collections map to read_* tables maintained by the projector.
type PostgresReadStore struct {
	db *sql.DB
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

var errUnknownCollection = errors.New("unknown read model collection")

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) error {
	switch collection {
	case CollectionProducts:
		return rs.setProduct(data.(*readmodel.ProductReadModel))
	case CollectionOrders:
		return rs.setOrder(data.(*readmodel.OrderReadModel))
	case CollectionCarts:
		return rs.setCart(data.(*readmodel.CartReadModel))
	case CollectionUsers:
		return rs.setUser(data.(*readmodel.UserReadModel))
	}
	return fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	switch collection {
	case CollectionProducts:
		return rs.getProduct(id)
	case CollectionOrders:
		return rs.getOrder(id)
	case CollectionCarts:
		return rs.getCart(id)
	case CollectionUsers:
		return rs.getUser(id)
	}
	return nil, false, fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	switch collection {
	case CollectionProducts:
		return rs.getAllProducts()
	case CollectionOrders:
		return rs.getAllOrders()
	case CollectionCarts:
		return rs.getAllCarts()
	case CollectionUsers:
		return rs.getAllUsers()
	}
	return nil, fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) error {
	var tableName string
	switch collection {
	case CollectionProducts:
		tableName = "read_products"
	case CollectionOrders:
		tableName = "read_orders"
	case CollectionCarts:
		tableName = "read_carts"
	case CollectionUsers:
		tableName = "read_users"
	default:
		return fmt.Errorf("%w: %s", errUnknownCollection, collection)
	}

	_, err := rs.db.Exec("DELETE FROM "+tableName+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	return nil
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	current, found, err := rs.Get(collection, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := rs.Set(collection, id, updateFn(current)); err != nil {
		return false, err
	}
	return true, nil
}

// Product operations

func (rs *PostgresReadStore) setProduct(p *readmodel.ProductReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_products (id, seller_id, industry, name, description, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.SellerID, p.Industry, p.Name, p.Description, p.Price, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set product: %w", err)
	}
	return nil
}

func (rs *PostgresReadStore) getProduct(id string) (any, bool, error) {
	var p readmodel.ProductReadModel
	err := rs.db.QueryRow(`
		SELECT id, seller_id, industry, name, description, price, status, created_at, updated_at
		FROM read_products WHERE id = $1
	`, id).Scan(&p.ID, &p.SellerID, &p.Industry, &p.Name, &p.Description, &p.Price, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, true, nil
}

func (rs *PostgresReadStore) getAllProducts() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, seller_id, industry, name, description, price, status, created_at, updated_at
		FROM read_products ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []any
	for rows.Next() {
		var p readmodel.ProductReadModel
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Industry, &p.Name, &p.Description, &p.Price, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// Order operations

func (rs *PostgresReadStore) setOrder(o *readmodel.OrderReadModel) error {
	var details []byte
	if len(o.FulfillmentDetails) > 0 {
		var err error
		details, err = json.Marshal(o.FulfillmentDetails)
		if err != nil {
			return fmt.Errorf("failed to marshal fulfillment details: %w", err)
		}
	}
	_, err := rs.db.Exec(`
		INSERT INTO read_orders (id, buyer_id, product_id, seller_id, industry, quantity, shipping_address,
			status, fulfillment_details, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			fulfillment_details = EXCLUDED.fulfillment_details,
			admin_notes = EXCLUDED.admin_notes,
			updated_at = EXCLUDED.updated_at
	`, o.ID, o.BuyerID, o.ProductID, o.SellerID, o.Industry, o.Quantity, o.ShippingAddress,
		o.Status, details, nullString(o.AdminNotes), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set order: %w", err)
	}
	return nil
}

func (rs *PostgresReadStore) getOrder(id string) (any, bool, error) {
	row := rs.db.QueryRow(`
		SELECT id, buyer_id, product_id, seller_id, industry, quantity, shipping_address,
			status, fulfillment_details, admin_notes, created_at, updated_at
		FROM read_orders WHERE id = $1
	`, id)
	o, err := scanOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get order: %w", err)
	}
	return o, true, nil
}

func (rs *PostgresReadStore) getAllOrders() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, buyer_id, product_id, seller_id, industry, quantity, shipping_address,
			status, fulfillment_details, admin_notes, created_at, updated_at
		FROM read_orders ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []any
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(scan func(dest ...any) error) (*readmodel.OrderReadModel, error) {
	var o readmodel.OrderReadModel
	var details []byte
	var notes sql.NullString
	if err := scan(&o.ID, &o.BuyerID, &o.ProductID, &o.SellerID, &o.Industry, &o.Quantity, &o.ShippingAddress,
		&o.Status, &details, &notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &o.FulfillmentDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fulfillment details: %w", err)
		}
	}
	o.AdminNotes = notes.String
	return &o, nil
}

// Cart operations

func (rs *PostgresReadStore) setCart(c *readmodel.CartReadModel) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_carts (id, user_id, items, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.UserID, itemsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set cart: %w", err)
	}
	return nil
}

func (rs *PostgresReadStore) getCart(id string) (any, bool, error) {
	var c readmodel.CartReadModel
	var itemsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, user_id, items, updated_at FROM read_carts WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &itemsJSON, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cart: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}
	return &c, true, nil
}

func (rs *PostgresReadStore) getAllCarts() ([]any, error) {
	rows, err := rs.db.Query(`SELECT id, user_id, items, updated_at FROM read_carts`)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer rows.Close()

	var carts []any
	for rows.Next() {
		var c readmodel.CartReadModel
		var itemsJSON []byte
		if err := rows.Scan(&c.ID, &c.UserID, &itemsJSON, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
		}
		carts = append(carts, &c)
	}
	return carts, rows.Err()
}

// User operations

func (rs *PostgresReadStore) setUser(u *readmodel.UserReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_users (id, email, password_hash, name, role, industry, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			industry = EXCLUDED.industry,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, nullString(u.Industry), u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}
	return nil
}

func (rs *PostgresReadStore) getUser(id string) (any, bool, error) {
	u, found, err := rs.queryUser(`WHERE id = $1`, id)
	if err != nil || !found {
		return nil, found, err
	}
	return u, true, nil
}

// GetUserByEmail retrieves a user by email
func (rs *PostgresReadStore) GetUserByEmail(email string) (*readmodel.UserReadModel, bool, error) {
	return rs.queryUser(`WHERE email = $1`, email)
}

func (rs *PostgresReadStore) queryUser(where string, arg any) (*readmodel.UserReadModel, bool, error) {
	var u readmodel.UserReadModel
	var industry sql.NullString
	err := rs.db.QueryRow(`
		SELECT id, email, password_hash, name, role, industry, is_active, created_at, updated_at
		FROM read_users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &industry, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	u.Industry = industry.String
	return &u, true, nil
}

func (rs *PostgresReadStore) getAllUsers() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, email, password_hash, name, role, industry, is_active, created_at, updated_at
		FROM read_users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []any
	for rows.Next() {
		var u readmodel.UserReadModel
		var industry sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &industry, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Industry = industry.String
		users = append(users, &u)
	}
	return users, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
