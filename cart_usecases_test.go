package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (*fakeStore, *CartUseCase, *Product, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	product := NewProduct("Keyboard", "mechanical", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, store.products().Create(context.Background(), product))
	uc := NewCartUseCase(store.products(), store.carts())
	return store, uc, product, uuid.New()
}

func TestAddItemCreatesAndAccumulates(t *testing.T) {
	store, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 1))

	cart, err := store.carts().GetOrCreate(ctx, userID)
	require.NoError(t, err)
	lines, err := store.carts().Items(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddItemRejectsOverStock(t *testing.T) {
	_, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	// More than stock in one shot
	err := uc.AddItem(ctx, userID, product.ID, 6)
	assertDomainCode(t, err, CodeInsufficientStock)

	// Accumulating past the stock is rejected too
	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 4))
	err = uc.AddItem(ctx, userID, product.ID, 2)
	assertDomainCode(t, err, CodeInsufficientStock)
}

func TestAddItemQuantityBound(t *testing.T) {
	_, uc, product, userID := newCartFixture(t)

	err := uc.AddItem(context.Background(), userID, product.ID, 0)
	assertDomainCode(t, err, CodeInvalidQuantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	_, uc, _, userID := newCartFixture(t)

	err := uc.AddItem(context.Background(), userID, uuid.New(), 1)
	assertDomainCode(t, err, CodeProductNotFound)
}

func TestAddItemUnavailableProduct(t *testing.T) {
	store, uc, _, userID := newCartFixture(t)
	ctx := context.Background()

	sold := NewProduct("Mouse", "wireless", decimal.RequireFromString("5.00"), 0)
	require.NoError(t, store.products().Create(ctx, sold))

	err := uc.AddItem(ctx, userID, sold.ID, 1)
	assertDomainCode(t, err, CodeInsufficientStock)
}

func TestUpdateItemSetsQuantity(t *testing.T) {
	store, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, uc.UpdateItem(ctx, userID, product.ID, 4))

	cart, _ := store.carts().GetOrCreate(ctx, userID)
	lines, err := store.carts().Items(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestUpdateItemZeroDeletesLine(t *testing.T) {
	store, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, uc.UpdateItem(ctx, userID, product.ID, 0))

	cart, _ := store.carts().GetOrCreate(ctx, userID)
	lines, err := store.carts().Items(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateItemNotInCart(t *testing.T) {
	_, uc, product, userID := newCartFixture(t)

	err := uc.UpdateItem(context.Background(), userID, product.ID, 2)
	assertDomainCode(t, err, CodeItemNotInCart)

	// Quantity zero is a delete, but the line still has to exist
	err = uc.UpdateItem(context.Background(), userID, product.ID, 0)
	assertDomainCode(t, err, CodeItemNotInCart)
}

func TestUpdateItemOverStock(t *testing.T) {
	_, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	err := uc.UpdateItem(ctx, userID, product.ID, 9)
	assertDomainCode(t, err, CodeInsufficientStock)
}

func TestGetCartComputesTotals(t *testing.T) {
	store, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	second := NewProduct("Mouse", "wireless", decimal.RequireFromString("5.50"), 3)
	require.NoError(t, store.products().Create(ctx, second))

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, uc.AddItem(ctx, userID, second.ID, 3))

	view, err := uc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, view.UserID)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 5, view.ItemsCount)
	assert.True(t, view.TotalAmount.Equal(decimal.RequireFromString("36.50")),
		"expected total 36.50, got %s", view.TotalAmount)
}

func TestGetCartCreatesLazily(t *testing.T) {
	_, uc, _, userID := newCartFixture(t)

	view, err := uc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.ItemsCount)
	assert.True(t, view.TotalAmount.IsZero())
}

func TestClearCart(t *testing.T) {
	store, uc, product, userID := newCartFixture(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, userID, product.ID, 2))
	require.NoError(t, uc.ClearCart(ctx, userID))

	cart, _ := store.carts().GetOrCreate(ctx, userID)
	lines, err := store.carts().Items(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
