package editions

import (
	"context"
	"errors"
	"fmt"

	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/store"
)

// Navigation is what a reader needs to follow a hotspot of a published edition.
type Navigation struct {
	Edition          epaper.Edition
	Page             epaper.Page
	Hotspot          epaper.PageHotspot
	TargetPageExists bool
	// TargetHotspot is nil when the hotspot has no usable partner.
	TargetHotspot       *epaper.PageHotspot
	TargetHotspotPageNo *int
}

// ResolveHotspot looks up hotspotID on page pageNo of a published edition.
// The partner is the explicit target when it is in the same edition, or else
// the lowest-id hotspot linked back to this one.
func (s *Service) ResolveHotspot(ctx context.Context, editionID uint, pageNo int, hotspotID uint) (Navigation, error) {
	var nav Navigation
	err := s.read(ctx, func(tx store.Tx) error {
		e, err := tx.GetEdition(editionID)
		if err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		if !e.IsPublished() {
			return fmt.Errorf("edition %d is not published: %w", editionID, ErrNotFound)
		}
		pages, err := tx.ListPages(editionID)
		if err != nil {
			return err
		}
		byID := make(map[uint]epaper.Page, len(pages))
		numbers := make(map[int]bool, len(pages))
		for _, p := range pages {
			byID[p.ID] = p
			numbers[p.PageNo] = true
			if p.PageNo == pageNo && nav.Page.ID == 0 {
				nav.Page = p
			}
		}
		if nav.Page.ID == 0 {
			return fmt.Errorf("page %d: %w", pageNo, ErrNotFound)
		}

		h, err := tx.GetHotspot(hotspotID)
		if err != nil {
			return fmt.Errorf("hotspot %d: %w", hotspotID, err)
		}
		if h.PageID != nav.Page.ID {
			return fmt.Errorf("hotspot %d not on page %d: %w", hotspotID, pageNo, ErrNotFound)
		}
		nav.Edition, nav.Hotspot = e, h
		nav.TargetPageExists = h.TargetPageNo != nil && numbers[*h.TargetPageNo]

		var partner *epaper.PageHotspot
		if h.TargetHotspotID != nil {
			t, err := tx.GetHotspot(*h.TargetHotspotID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, inEdition := byID[t.PageID]; err == nil && inEdition {
				partner = &t
			}
		}
		if partner == nil {
			linked, err := tx.FindHotspots(store.HotspotFilter{EditionID: &editionID, LinkedHotspotID: &h.ID})
			if err != nil {
				return err
			}
			if len(linked) > 0 {
				partner = &linked[0]
			}
		}
		if partner != nil {
			n := byID[partner.PageID].PageNo
			nav.TargetHotspot = partner
			nav.TargetHotspotPageNo = &n
		}
		return nil
	})
	return nav, err
}
