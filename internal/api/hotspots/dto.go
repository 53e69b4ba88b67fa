package hotspots

import (
	"epaper-app/internal/domain/epaper"
	editionsvc "epaper-app/internal/editions"
)

type HotspotRequest struct {
	RelationKind    string   `json:"relation_kind" binding:"required"`
	X               *float64 `json:"x" binding:"required"`
	Y               *float64 `json:"y" binding:"required"`
	W               *float64 `json:"w" binding:"required"`
	H               *float64 `json:"h" binding:"required"`
	TargetPageNo    *int     `json:"target_page_no"`
	TargetHotspotID *uint    `json:"target_hotspot_id"`
	Label           *string  `json:"label"`
}

func (r HotspotRequest) input(createdBy *uint) editionsvc.HotspotInput {
	return editionsvc.HotspotInput{
		RelationKind:    r.RelationKind,
		Rect:            epaper.Rect{X: *r.X, Y: *r.Y, W: *r.W, H: *r.H},
		TargetPageNo:    r.TargetPageNo,
		TargetHotspotID: r.TargetHotspotID,
		Label:           r.Label,
		CreatedBy:       createdBy,
	}
}

type BulkDeleteRequest struct {
	HotspotIDs []uint `json:"hotspot_ids"`
}
