package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartService is the cart contract consumed by the HTTP layer
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CartHandler contains the HTTP handlers for the cart.
// The user is identified by a user_id query parameter, auth is out of scope.
type CartHandler struct {
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// UpdateCartItemRequest sets a cart line quantity; zero or less removes it
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the user's cart with current prices and totals
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := uuidQuery(c, "user_id")
	if !ok {
		return
	}
	view, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem adds a product to the cart, quantity defaults to 1
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := uuidQuery(c, "user_id")
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
		return
	}

	if err := h.carts.AddItem(c.Request.Context(), userID, productID, quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product added to cart"})
}

// UpdateItem sets a cart line's quantity
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := uuidQuery(c, "user_id")
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.carts.UpdateItem(c.Request.Context(), userID, productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart updated"})
}

// Clear empties the user's cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := uuidQuery(c, "user_id")
	if !ok {
		return
	}
	if err := h.carts.ClearCart(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
