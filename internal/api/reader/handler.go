// Package reader serves the public, read-only side of published editions.
package reader

import (
	"net/http"
	"strconv"

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

// GET /epaper/editions/:id/pages/:pageNo/hotspots/:hotspotId
func (h *Handler) ResolveHotspot(c *gin.Context) {
	editionID, ok := respond.ID(c, "id", "Hotspot not found")
	if !ok {
		return
	}
	hotspotID, ok := respond.ID(c, "hotspotId", "Hotspot not found")
	if !ok {
		return
	}
	pageNo, err := strconv.Atoi(c.Param("pageNo"))
	if err != nil || pageNo < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotspot not found"})
		return
	}

	nav, err := h.svc.ResolveHotspot(c.Request.Context(), editionID, pageNo, hotspotID)
	if err != nil {
		respond.Error(c, err, "Hotspot not found", "Failed to resolve hotspot")
		return
	}
	c.JSON(http.StatusOK, toNavigationDTO(nav))
}
