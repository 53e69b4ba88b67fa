package editions

import (
	"net/http"
	"time"

	"epaper-app/internal/api/respond"
	"epaper-app/internal/domain/epaper"
	editionsvc "epaper-app/internal/editions"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *editionsvc.Service
}

func NewHandler(svc *editionsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// ------------------------------
// GET /admin/editions?date=YYYY-MM-DD (defaults to today, UTC)
// ------------------------------
func (h *Handler) ListEditions(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().UTC().Format(epaper.DateLayout))

	list, err := h.svc.ListEditionsForDate(c.Request.Context(), date)
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to load editions")
		return
	}

	out := make([]EditionSummaryDTO, 0, len(list))
	for _, s := range list {
		out = append(out, EditionSummaryDTO{
			EditionDTO: toEditionDTO(s.Edition),
			PagesCount: s.PagesCount,
			Readiness:  ReadinessDTO{EditionID: s.ID, IsReady: s.Readiness.IsReady, Blockers: s.Readiness.Blockers},
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "editions": out})
}

// ------------------------------
// POST /admin/editions
// ------------------------------
func (h *Handler) CreateEdition(c *gin.Context) {
	var req CreateEditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "date", "The date field is required.")
		return
	}

	e, err := h.svc.CreateEdition(c.Request.Context(), req.Date, req.Name, respond.ActorID(c))
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to create edition")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Edition created successfully.", "edition": toEditionDTO(e)})
}

// ------------------------------
// POST /admin/editions/for-date
// ------------------------------
func (h *Handler) FindOrCreateEdition(c *gin.Context) {
	var req CreateEditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Invalid(c, "date", "The date field is required.")
		return
	}

	e, created, err := h.svc.FindOrCreateEditionForDate(c.Request.Context(), req.Date, respond.ActorID(c))
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to load edition")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created, "edition": toEditionDTO(e)})
}

// ------------------------------
// DELETE /admin/editions/:id
// ------------------------------
func (h *Handler) DeleteEdition(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	actor, ok := respond.Actor(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEdition(c.Request.Context(), actor, id); err != nil {
		respond.Error(c, err, "Edition not found", "Failed to delete edition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Edition deleted successfully."})
}

// ------------------------------
// GET /admin/editions/:id/readiness
// ------------------------------
func (h *Handler) Readiness(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	r, err := h.svc.EvaluatePublishReadiness(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to evaluate edition")
		return
	}
	c.JSON(http.StatusOK, ReadinessDTO{EditionID: id, IsReady: r.IsReady, Blockers: r.Blockers})
}

// ------------------------------
// POST /admin/editions/:id/publish
// ------------------------------
func (h *Handler) Publish(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	e, err := h.svc.Publish(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to publish edition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Edition published successfully.", "edition": toEditionDTO(e)})
}

// ------------------------------
// POST /admin/editions/:id/unpublish
// ------------------------------
func (h *Handler) Unpublish(c *gin.Context) {
	id, ok := respond.ID(c, "id", "Edition not found")
	if !ok {
		return
	}
	e, err := h.svc.Unpublish(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err, "Edition not found", "Failed to unpublish edition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Edition moved to draft.", "edition": toEditionDTO(e)})
}
