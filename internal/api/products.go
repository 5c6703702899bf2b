package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajatc17/india-ecom/internal/service"
)

// listProducts handles the catalog query with hierarchy-aware category
// filtering
func (h *Handler) listProducts(c *gin.Context) {
	params := service.CatalogParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Region:   c.Query("region"),
		GITagged: c.Query("gi"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		InStock:  c.Query("inStock"),
		Featured: c.Query("featured"),
		Sort:     c.Query("sort"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// getFeaturedProducts handles the featured shelf
func (h *Handler) getFeaturedProducts(c *gin.Context) {
	products, err := h.catalog.FeaturedProducts(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles get product by ID; inactive products are visible to
// admins only
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.ProductByID(c.Request.Context(), c.Param("id"), isAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// getProductBySlug handles get product by slug
func (h *Handler) getProductBySlug(c *gin.Context) {
	product, err := h.catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// createProduct handles admin product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// updateProduct handles admin product updates
func (h *Handler) updateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct handles admin product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type stockRequest struct {
	Op       string `json:"op" binding:"required"`
	Quantity int    `json:"quantity"`
}

// mutateStock handles admin stock corrections
func (h *Handler) mutateStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.catalog.MutateStock(c.Request.Context(), c.Param("id"), req.Op, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
