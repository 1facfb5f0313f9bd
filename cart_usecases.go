package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartUseCase manages the user's cart. Quantity bounds are enforced here, at
// mutation time, not at checkout.
type CartUseCase struct {
	products ProductRepository
	carts    CartRepository
}

// NewCartUseCase creates a new CartUseCase
func NewCartUseCase(products ProductRepository, carts CartRepository) *CartUseCase {
	return &CartUseCase{products: products, carts: carts}
}

// GetCart returns the cart read view, creating the cart lazily on first
// access. Lines whose product disappeared are skipped.
func (uc *CartUseCase) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := uc.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	view := &CartView{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       []CartLineView{},
		TotalAmount: decimal.Zero,
	}
	for _, line := range lines {
		product, err := uc.products.Get(ctx, line.ProductID)
		if errors.Is(err, ErrProductNotFound(line.ProductID)) {
			continue
		}
		if err != nil {
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Items = append(view.Items, CartLineView{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Total:     lineTotal,
		})
		view.TotalAmount = view.TotalAmount.Add(lineTotal)
		view.ItemsCount += line.Quantity
	}
	return view, nil
}

// AddItem adds quantity of a product to the cart, creating the line when
// missing. The resulting quantity may not exceed the product's stock.
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity(quantity)
	}

	product, err := uc.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsAvailable || product.Stock < quantity {
		return ErrInsufficientStock(product.Name, product.Stock, quantity)
	}

	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	current := 0
	lines, err := uc.carts.Items(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	for _, line := range lines {
		if line.ProductID == productID {
			current = line.Quantity
			break
		}
	}
	if product.Stock < current+quantity {
		return ErrInsufficientStock(product.Name, product.Stock, current+quantity)
	}

	return uc.carts.UpsertItem(ctx, cart.ID, productID, quantity)
}

// UpdateItem sets the quantity of an existing cart line. A quantity of zero
// or less deletes the line. The line must exist either way.
func (uc *CartUseCase) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := uc.carts.Items(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	exists := false
	for _, line := range lines {
		if line.ProductID == productID {
			exists = true
			break
		}
	}
	if !exists {
		return ErrItemNotInCart(productID)
	}

	if quantity <= 0 {
		return uc.carts.DeleteItem(ctx, cart.ID, productID)
	}

	product, err := uc.products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return ErrInsufficientStock(product.Name, product.Stock, quantity)
	}

	return uc.carts.SetItemQuantity(ctx, cart.ID, productID, quantity)
}

// ClearCart removes every line from the user's cart
func (uc *CartUseCase) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	return uc.carts.Clear(ctx, cart.ID)
}
