package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartRepository defines the persistence operations for carts and their lines
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating it lazily on first access
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// GetByUserTx loads the user's cart inside an open transaction. Returns
	// nil when the user has no cart yet.
	GetByUserTx(ctx context.Context, tx Tx, userID uuid.UUID) (*Cart, error)

	Items(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)
	ItemsTx(ctx context.Context, tx Tx, cartID uuid.UUID) ([]CartItem, error)

	// UpsertItem inserts the line or adds quantity to an existing one
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteItemTx(ctx context.Context, tx Tx, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

// PostgresCartRepository implements CartRepository using PostgreSQL
type PostgresCartRepository struct {
	db *pgxpool.Pool
}

// NewCartRepository creates a new PostgresCartRepository
func NewCartRepository(db *pgxpool.Pool) CartRepository {
	return &PostgresCartRepository{db: db}
}

func (r *PostgresCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	var cart Cart
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	created := NewCart(userID)
	// Concurrent first access races on the unique user_id; the conflict clause
	// keeps whichever row won.
	err = r.db.QueryRow(ctx, `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at
	`, created.ID, created.UserID, created.CreatedAt).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *PostgresCartRepository) GetByUserTx(ctx context.Context, tx Tx, userID uuid.UUID) (*Cart, error) {
	var cart Cart
	err := pgxTx(tx).QueryRow(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func scanCartItems(rows pgx.Rows) ([]CartItem, error) {
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const cartItemsQuery = `
	SELECT cart_id, product_id, quantity
	FROM cart_items
	WHERE cart_id = $1
	ORDER BY product_id
`

func (r *PostgresCartRepository) Items(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := r.db.Query(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	return scanCartItems(rows)
}

func (r *PostgresCartRepository) ItemsTx(ctx context.Context, tx Tx, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := pgxTx(tx).Query(ctx, cartItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	return scanCartItems(rows)
}

func (r *PostgresCartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, cartID, productID, quantity)
	return err
}

func (r *PostgresCartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotInCart(productID)
	}
	return nil
}

func (r *PostgresCartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	return err
}

func (r *PostgresCartRepository) DeleteItemTx(ctx context.Context, tx Tx, cartID, productID uuid.UUID) error {
	_, err := pgxTx(tx).Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	return err
}

func (r *PostgresCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
