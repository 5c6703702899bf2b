package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/service"
)

// register handles account creation
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// login handles credential verification and token issue
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// checkEmail reports whether an email is already registered
func (h *Handler) checkEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	taken, err := h.auth.EmailTaken(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"taken": taken})
}

// getProfile returns the authenticated user with their address book
func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// addAddress appends a shipping address to the user's book
func (h *Handler) addAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.auth.AddAddress(c.Request.Context(), currentUserID(c), &addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// removeAddress deletes one address
func (h *Handler) removeAddress(c *gin.Context) {
	if err := h.auth.RemoveAddress(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address removed"})
}

// getWishlist returns the user's wishlist products
func (h *Handler) getWishlist(c *gin.Context) {
	products, err := h.auth.Wishlist(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// addToWishlist adds a product to the wishlist
func (h *Handler) addToWishlist(c *gin.Context) {
	if err := h.auth.AddToWishlist(c.Request.Context(), currentUserID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist"})
}

// removeFromWishlist removes a product from the wishlist
func (h *Handler) removeFromWishlist(c *gin.Context) {
	if err := h.auth.RemoveFromWishlist(c.Request.Context(), currentUserID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// setUserRole handles admin role management
func (h *Handler) setUserRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.auth.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
