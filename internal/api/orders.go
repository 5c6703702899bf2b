package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajatc17/india-ecom/internal/service"
)

// placeOrder handles checkout
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.Place(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// listMyOrders handles the user's order history
func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getMyOrder handles get order by ID with ownership enforcement
func (h *Handler) getMyOrder(c *gin.Context) {
	order, err := h.orders.GetForUser(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// cancelMyOrder handles user-initiated cancellation
func (h *Handler) cancelMyOrder(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orders.Cancel(c.Request.Context(), currentUserID(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// listAllOrders handles the admin order list
func (h *Handler) listAllOrders(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	orders, total, err := h.orders.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// getAnyOrder handles admin get order by ID
func (h *Handler) getAnyOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// updateOrderStatus handles admin lifecycle transitions
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// cancelAnyOrder handles admin cancellation of any user's order
func (h *Handler) cancelAnyOrder(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orders.Cancel(c.Request.Context(), "", c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
