package admin

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

type SoftReferenceReport struct {
	Count    int                            `json:"count"`
	Dangling []editionsvc.DanglingReference `json:"dangling"`
}

// GET /admin/audit/soft-references
func (h *Handler) SoftReferences(c *gin.Context) {
	dangling, err := h.svc.AuditSoftReferences(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Not found", "Failed to audit hotspot targets")
		return
	}
	c.JSON(http.StatusOK, SoftReferenceReport{Count: len(dangling), Dangling: dangling})
}
