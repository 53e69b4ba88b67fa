package editions

import (
	"net/http"

	"epaper-app/internal/api/respond"

	"github.com/gin-gonic/gin"
)

// ------------------------------
// GET /admin/editions/:id/pages
// ------------------------------
func (h *Handler) ListPages(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	pages, err := h.svc.ListEditionPages(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to load pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"edition_id": id, "pages": pages})
}

// ------------------------------
// POST /admin/editions/:id/pages
// ------------------------------
func (h *Handler) RegisterPage(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	var req RegisterPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.svc.RegisterPage(c.Request.Context(), id, req.input(respond.ActorID(c)))
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to register page")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Page added successfully.", "page": page})
}

// ------------------------------
// PUT /admin/editions/:id/pages/reorder
// ------------------------------
func (h *Handler) ReorderPages(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	var req ReorderPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.OrderedPageIDs) == 0 {
		respond.Invalid(c, "ordered_page_ids", "Reorder payload is invalid for this edition.")
		return
	}

	if err := h.svc.ReorderPages(c.Request.Context(), id, req.OrderedPageIDs); err != nil {
		respond.Error(c, err, "Edition not found", "Failed to reorder pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pages reordered successfully."})
}

// ------------------------------
// PUT /admin/pages/:id
// ------------------------------
func (h *Handler) UpdatePage(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Page not found")
	if !ok {
		return
	}
	var req UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "page_no", "The page number field is required.")
		return
	}

	if err := h.svc.UpdatePage(c.Request.Context(), id, req.PageNo, req.CategoryID); err != nil {
		respond.Error(c, err, "Page not found", "Failed to update page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page updated successfully."})
}

// ------------------------------
// DELETE /admin/pages/:id
// ------------------------------
func (h *Handler) DeletePage(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Page not found")
	if !ok {
		return
	}
	if err := h.svc.DeletePage(c.Request.Context(), id); err != nil {
		respond.Error(c, err, "Page not found", "Failed to delete page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page deleted successfully."})
}
