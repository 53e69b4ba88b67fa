package editions

import (
	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/domain/media"
	editionsvc "epaper-app/internal/editions"
)

// ---------- requests

type CreateEditionRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name"`
}

type RegisterPageRequest struct {
	PageNo            *int    `json:"page_no" binding:"omitempty,min=1"`
	CategoryID        *uint   `json:"category_id"`
	ImageOriginalPath string  `json:"image_original_path" binding:"required"`
	ImageLargePath    *string `json:"image_large_path"`
	ImageThumbPath    *string `json:"image_thumb_path"`
	Width             *int    `json:"width" binding:"omitempty,min=1"`
	Height            *int    `json:"height" binding:"omitempty,min=1"`
}

func (r RegisterPageRequest) input(uploadedBy *uint) editionsvc.PageInput {
	return editionsvc.PageInput{
		PageNo:     r.PageNo,
		CategoryID: r.CategoryID,
		Image: media.PageImage{
			OriginalPath: r.ImageOriginalPath,
			LargePath:    r.ImageLargePath,
			ThumbPath:    r.ImageThumbPath,
		},
		Width:      r.Width,
		Height:     r.Height,
		UploadedBy: uploadedBy,
	}
}

type UpdatePageRequest struct {
	PageNo     int   `json:"page_no" binding:"required"`
	CategoryID *uint `json:"category_id"`
}

type ReorderPagesRequest struct {
	OrderedPageIDs []uint `json:"ordered_page_ids"`
}

// ---------- responses

type ReadinessDTO struct {
	EditionID uint     `json:"edition_id"`
	IsReady   bool     `json:"is_ready"`
	Blockers  []string `json:"blockers"`
}

type EditionDTO struct {
	ID          uint    `json:"id"`
	Date        string  `json:"edition_date"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	PublishedAt *string `json:"published_at"`
}

func toEditionDTO(e epaper.Edition) EditionDTO {
	out := EditionDTO{ID: e.ID, Date: e.DateString(), Name: e.Name, Status: e.Status}
	if e.PublishedAt != nil {
		s := e.PublishedAt.UTC().Format("2006-01-02T15:04:05Z")
		out.PublishedAt = &s
	}
	return out
}

type EditionSummaryDTO struct {
	EditionDTO
	PagesCount int          `json:"pages_count"`
	Readiness  ReadinessDTO `json:"readiness"`
}
