package reader

import (
	"epaper-app/internal/domain/epaper"
	editionsvc "epaper-app/internal/editions"
)

type HotspotDTO struct {
	ID           uint     `json:"id"`
	PageNo       int      `json:"page_no"`
	RelationKind string   `json:"relation_kind"`
	Label        *string  `json:"label"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	W            float64  `json:"w"`
	H            float64  `json:"h"`
	TargetPageNo *int     `json:"target_page_no"`
	Target       *Partner `json:"target_hotspot"`
}

type Partner struct {
	ID     uint    `json:"id"`
	PageNo int     `json:"page_no"`
	Label  *string `json:"label"`
}

type NavigationDTO struct {
	EditionID        uint       `json:"edition_id"`
	EditionDate      string     `json:"edition_date"`
	Hotspot          HotspotDTO `json:"hotspot"`
	TargetPageExists bool       `json:"target_page_exists"`
}

func toNavigationDTO(nav editionsvc.Navigation) NavigationDTO {
	h := nav.Hotspot
	out := NavigationDTO{
		EditionID:   nav.Edition.ID,
		EditionDate: nav.Edition.DateString(),
		Hotspot: HotspotDTO{
			ID:           h.ID,
			PageNo:       nav.Page.PageNo,
			RelationKind: h.RelationKind,
			Label:        h.Label,
			X:            h.X,
			Y:            h.Y,
			W:            h.W,
			H:            h.H,
			TargetPageNo: h.TargetPageNo,
		},
		TargetPageExists: nav.TargetPageExists,
	}
	if nav.TargetHotspot != nil {
		out.Hotspot.Target = toPartner(*nav.TargetHotspot, *nav.TargetHotspotPageNo)
	}
	return out
}

func toPartner(h epaper.PageHotspot, pageNo int) *Partner {
	return &Partner{ID: h.ID, PageNo: pageNo, Label: h.Label}
}
