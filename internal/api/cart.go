package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajatc17/india-ecom/internal/service"
)

// getCart handles the cart view, creating an empty cart on first access
func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// getCartCount handles the cart badge count
func (h *Handler) getCartCount(c *gin.Context) {
	count, err := h.carts.Count(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// addCartItem handles adding a product to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := h.carts.Add(c.Request.Context(), currentUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// updateCartItem handles quantity changes on one line
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := h.carts.UpdateQuantity(c.Request.Context(), currentUserID(c), c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// removeCartItem handles removing one line from the cart
func (h *Handler) removeCartItem(c *gin.Context) {
	cart, err := h.carts.Remove(c.Request.Context(), currentUserID(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// clearCart handles emptying the cart
func (h *Handler) clearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// validateCart handles pre-checkout validation; issues are reported, never
// auto-fixed
func (h *Handler) validateCart(c *gin.Context) {
	issues, cart, err := h.carts.Validate(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(issues) == 0,
		"issues": issues,
		"cart":   cart,
	})
}

type syncCartRequest struct {
	Items []service.GuestLine `json:"items" binding:"required"`
}

// syncCart merges a guest cart into the server-side cart after login
func (h *Handler) syncCart(c *gin.Context) {
	var req syncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, skipped, err := h.carts.Sync(c.Request.Context(), currentUserID(c), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart":    cart,
		"skipped": skipped,
	})
}

// syncCartPrices refreshes every line's price snapshot to the live price
func (h *Handler) syncCartPrices(c *gin.Context) {
	cart, err := h.carts.SyncPrices(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
