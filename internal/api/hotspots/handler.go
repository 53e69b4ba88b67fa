package hotspots

import (
	"fmt"
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

func bindHotspot(c *gin.Context) (HotspotRequest, bool) {
	var req HotspotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"errors": gin.H{"hotspot": []string{"relation_kind, x, y, w and h are required."}},
		})
		return req, false
	}
	return req, true
}

// ------------------------------
// POST /admin/pages/:id/hotspots
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	pageID, ok := respond.ID(c, "id", "Page not found")
	if !ok {
		return
	}
	req, ok := bindHotspot(c)
	if !ok {
		return
	}

	hs, err := h.svc.CreateHotspot(c.Request.Context(), pageID, req.input(respond.ActorID(c)))
	if err != nil {
		respond.Error(c, err, "Page not found", "Failed to create hotspot")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Hotspot created successfully.", "hotspot": hs})
}

// ------------------------------
// PUT /admin/hotspots/:id
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Hotspot not found")
	if !ok {
		return
	}
	req, ok := bindHotspot(c)
	if !ok {
		return
	}

	hs, err := h.svc.UpdateHotspot(c.Request.Context(), id, req.input(nil))
	if err != nil {
		respond.Error(c, err, "Hotspot not found", "Failed to update hotspot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotspot updated successfully.", "hotspot": hs})
}

// ------------------------------
// DELETE /admin/hotspots/:id
// ------------------------------
func (h *Handler) Delete(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Hotspot not found")
	if !ok {
		return
	}
	if err := h.svc.DeleteHotspot(c.Request.Context(), id); err != nil {
		respond.Error(c, err, "Hotspot not found", "Failed to delete hotspot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Hotspot deleted successfully."})
}

// ------------------------------
// POST /admin/pages/:id/hotspots/bulk-delete
// ------------------------------
func (h *Handler) BulkDelete(c *gin.Context) {
	pageID, ok := respond.ID(c, "id", "Page not found")
	if !ok {
		return
	}
	actor, ok := respond.Actor(c)
	if !ok {
		return
	}
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "hotspot_ids", "Select at least one hotspot.")
		return
	}

	n, err := h.svc.BulkDeleteHotspots(c.Request.Context(), actor, pageID, req.HotspotIDs)
	if err != nil {
		respond.Error(c, err, "Page not found", "Failed to delete hotspots")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d hotspot(s) deleted successfully.", n),
		"deleted": n,
	})
}
