package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutUseCase converts cart lines into an order: it snapshots prices,
// decrements stock and clears the consumed lines in one transaction.
type CheckoutUseCase struct {
	txb      TxBeginner
	products ProductRepository
	carts    CartRepository
	orders   OrderRepository
	notifier OrderNotifier
	tracer   trace.Tracer
}

// NewCheckoutUseCase creates a new CheckoutUseCase
func NewCheckoutUseCase(
	txb TxBeginner,
	products ProductRepository,
	carts CartRepository,
	orders OrderRepository,
	notifier OrderNotifier,
	tracer trace.Tracer,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txb:      txb,
		products: products,
		carts:    carts,
		orders:   orders,
		notifier: notifier,
		tracer:   tracer,
	}
}

// PlaceOrder checks out the user's cart. A nil productIDs selects the whole
// cart; an explicitly empty selection is rejected; otherwise only the named
// subset is validated and consumed, leaving the remaining lines intact. All
// validation happens before any mutation; any failure rolls back the whole
// operation.
func (uc *CheckoutUseCase) PlaceOrder(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*Order, error) {
	ctx, span := uc.tracer.Start(ctx, "place_order")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	tx, err := uc.txb.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cart, err := uc.carts.GetByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, ErrEmptyCart
	}

	lines, err := uc.carts.ItemsTx(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	selected, err := selectLines(lines, productIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrNoItemsSelected
	}

	// Validation phase: every selected product row is locked and checked
	// before the first decrement.
	products := make(map[uuid.UUID]*Product, len(selected))
	for _, line := range selected {
		product, err := uc.products.GetForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, ErrInsufficientStock(product.Name, product.Stock, line.Quantity)
		}
		products[line.ProductID] = product
	}

	// Mutation phase: the conditional update re-checks the guard, a zero row
	// count means the stock moved underneath us despite the lock.
	total := decimal.Zero
	order := NewOrder(userID, decimal.Zero)
	items := make([]OrderItem, 0, len(selected))
	for _, line := range selected {
		product := products[line.ProductID]

		ok, err := uc.products.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInsufficientStock(product.Name, product.Stock, line.Quantity)
		}

		item := OrderItem{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}
	order.TotalAmount = total

	if err := uc.orders.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	for i := range items {
		if err := uc.orders.CreateItem(ctx, tx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	// Only consumed lines are removed, a partial checkout keeps the rest
	for _, line := range selected {
		if err := uc.carts.DeleteItemTx(ctx, tx, cart.ID, line.ProductID); err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	order.Items = items
	span.SetAttributes(
		attribute.String("order_id", order.ID.String()),
		attribute.String("order_total", order.TotalAmount.StringFixed(2)),
	)
	log.Printf("✅ [CHECKOUT] OrderID=%s UserID=%s Total=%s Items=%d",
		order.ID, userID, order.TotalAmount.StringFixed(2), len(items))

	uc.notifier.OrderPlaced(ctx, order)

	return order, nil
}

// selectLines resolves the checkout selection against the cart lines. A nil
// selection means the whole cart; a non-nil selection must name products that
// are in the cart, an unknown id is an error, not a silent skip.
func selectLines(lines []CartItem, productIDs []uuid.UUID) ([]CartItem, error) {
	if productIDs == nil {
		return lines, nil
	}

	byProduct := make(map[uuid.UUID]CartItem, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] = line
	}

	selected := make([]CartItem, 0, len(productIDs))
	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		line, ok := byProduct[id]
		if !ok {
			return nil, ErrItemNotInCart(id)
		}
		selected = append(selected, line)
	}
	return selected, nil
}
