package categories

import (
	"net/http"

	"epaper-app/internal/api/respond"
	editionsvc "epaper-app/internal/editions"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *editionsvc.Service
}

func NewHandler(svc *editionsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// GET /admin/categories
func (h *Handler) List(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Category not found", "Failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// POST /admin/categories
func (h *Handler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "name", "The name field is required.")
		return
	}
	actor, ok := respond.Actor(c)
	if !ok {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), actor, req.Name)
	if err != nil {
		respond.Error(c, err, "Category not found", "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully.", "category": cat})
}

// PUT /admin/categories/reorder
func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.OrderedIDs) == 0 {
		respond.Invalid(c, "ordered_ids", "Reorder payload is invalid.")
		return
	}
	actor, ok := respond.Actor(c)
	if !ok {
		return
	}
	if err := h.svc.ReorderCategories(c.Request.Context(), actor, req.OrderedIDs); err != nil {
		respond.Error(c, err, "Category not found", "Failed to reorder categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered successfully."})
}

// DELETE /admin/categories/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Category not found")
	if !ok {
		return
	}
	actor, ok := respond.Actor(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), actor, id); err != nil {
		respond.Error(c, err, "Category not found", "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully."})
}
