package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rajatc17/india-ecom/internal/service"
)

// listCategories handles category listing, optionally filtered by level
func (h *Handler) listCategories(c *gin.Context) {
	var level *int
	if v, err := strconv.Atoi(c.Query("level")); err == nil {
		level = &v
	}
	activeOnly := c.Query("includeInactive") != "true" || !isAdmin(c)

	categories, err := h.categories.List(c.Request.Context(), activeOnly, level)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// getCategoryTree handles the nested tree view
func (h *Handler) getCategoryTree(c *gin.Context) {
	tree, err := h.categories.Tree(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

// getRootCategories handles top-level category listing
func (h *Handler) getRootCategories(c *gin.Context) {
	categories, err := h.categories.Roots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// getCategory handles get category by ID
func (h *Handler) getCategory(c *gin.Context) {
	category, err := h.categories.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// getCategoryBySlug handles get category by slug
func (h *Handler) getCategoryBySlug(c *gin.Context) {
	category, err := h.categories.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// getCategoryChildren handles listing the direct children of a category
func (h *Handler) getCategoryChildren(c *gin.Context) {
	children, err := h.categories.Children(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": children})
}

// createCategory handles admin category creation
func (h *Handler) createCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// updateCategory handles admin category updates
func (h *Handler) updateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// deleteCategory handles admin category deletion
func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
