package editions

import (
	"context"

	"epaper-app/internal/metrics"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

// DanglingReference is a hotspot whose target_page_no names no page of its edition.
type DanglingReference struct {
	HotspotID    uint `json:"hotspot_id"`
	PageID       uint `json:"page_id"`
	EditionID    uint `json:"edition_id"`
	TargetPageNo int  `json:"target_page_no"`
}

// AuditSoftReferences lists hotspots whose page-number target no longer
// resolves. Nothing is modified.
func (s *Service) AuditSoftReferences(ctx context.Context) ([]DanglingReference, error) {
	out := []DanglingReference{}
	err := s.read(ctx, func(tx store.Tx) error {
		hotspots, err := tx.FindHotspots(store.HotspotFilter{HasTargetPageNo: true})
		if err != nil {
			return err
		}
		editionOf := map[uint]uint{}
		numbers := map[uint]map[int]bool{}
		for _, h := range hotspots {
			editionID, ok := editionOf[h.PageID]
			if !ok {
				p, err := tx.GetPage(h.PageID)
				if err != nil {
					return err
				}
				editionID = p.EditionID
				editionOf[h.PageID] = editionID
			}
			if _, ok := numbers[editionID]; !ok {
				pages, err := tx.ListPages(editionID)
				if err != nil {
					return err
				}
				set := make(map[int]bool, len(pages))
				for _, p := range pages {
					set[p.PageNo] = true
				}
				numbers[editionID] = set
			}
			if !numbers[editionID][*h.TargetPageNo] {
				out = append(out, DanglingReference{
					HotspotID:    h.ID,
					PageID:       h.PageID,
					EditionID:    editionID,
					TargetPageNo: *h.TargetPageNo,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DanglingSoftReferences.Set(float64(len(out)))
	s.log.Info("soft reference audit finished", zap.Int("dangling", len(out)))
	return out, nil
}
