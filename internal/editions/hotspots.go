package editions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

const maxLabelLength = 150

// HotspotInput is the editable state of a hotspot. A nil TargetHotspotID
// removes the hotspot's own link.
type HotspotInput struct {
	RelationKind    string
	Rect            epaper.Rect
	TargetPageNo    *int
	TargetHotspotID *uint
	Label           *string
	CreatedBy       *uint
}

// checkedHotspot is HotspotInput after validation and normalization.
type checkedHotspot struct {
	content         store.HotspotContent
	targetHotspotID *uint
}

// checkHotspot validates in against the page it lives on. selfID is zero for
// a hotspot that does not exist yet.
func checkHotspot(tx store.Tx, page epaper.Page, in HotspotInput, selfID uint) (checkedHotspot, error) {
	ve := &ValidationError{}

	if !epaper.ValidRelationKind(in.RelationKind) {
		ve.add("relation_kind", "Relation kind must be next or previous.")
	}

	rect := in.Rect.Rounded()
	for field, msg := range rect.Problems() {
		ve.add(field, msg)
	}

	var label *string
	if in.Label != nil {
		trimmed := strings.TrimSpace(*in.Label)
		switch {
		case utf8.RuneCountInString(trimmed) > maxLabelLength:
			ve.add("label", fmt.Sprintf("Label may not be greater than %d characters.", maxLabelLength))
		case trimmed != "":
			label = &trimmed
		}
	}

	maxNo, err := tx.MaxPageNo(page.EditionID)
	if err != nil {
		return checkedHotspot{}, err
	}
	if in.TargetPageNo != nil && (*in.TargetPageNo < 1 || *in.TargetPageNo > maxNo) {
		ve.add("target_page_no", fmt.Sprintf("Target page must be between 1 and %d for this edition.", max(maxNo, 1)))
	}

	var targetPageNo *int
	if in.TargetPageNo != nil {
		n := *in.TargetPageNo
		targetPageNo = &n
	}

	if in.TargetHotspotID != nil {
		switch target, err := tx.GetHotspot(*in.TargetHotspotID); {
		case selfID != 0 && *in.TargetHotspotID == selfID:
			ve.add("target_hotspot_id", "A hotspot cannot link to itself.")
		case errors.Is(err, store.ErrNotFound):
			ve.add("target_hotspot_id", "Selected target hotspot does not exist.")
		case err != nil:
			return checkedHotspot{}, err
		default:
			targetPage, err := tx.GetPage(target.PageID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return checkedHotspot{}, err
			}
			switch {
			case err != nil || targetPage.EditionID != page.EditionID:
				ve.add("target_hotspot_id", "Selected target hotspot must belong to the same edition.")
			case in.TargetPageNo != nil && targetPage.PageNo != *in.TargetPageNo:
				ve.add("target_hotspot_id", fmt.Sprintf("Selected hotspot must belong to target page %d.", *in.TargetPageNo))
			case targetPageNo == nil:
				n := targetPage.PageNo
				targetPageNo = &n
			}
		}
	}

	if !ve.empty() {
		return checkedHotspot{}, ve
	}
	return checkedHotspot{
		content: store.HotspotContent{
			RelationKind: in.RelationKind,
			TargetPageNo: targetPageNo,
			Rect:         rect,
			Label:        label,
		},
		targetHotspotID: in.TargetHotspotID,
	}, nil
}

func (s *Service) CreateHotspot(ctx context.Context, pageID uint, in HotspotInput) (epaper.PageHotspot, error) {
	editionID, err := s.editionOfPage(ctx, pageID)
	if err != nil {
		return epaper.PageHotspot{}, err
	}

	var h epaper.PageHotspot
	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageID, err)
		}
		checked, err := checkHotspot(tx, page, in, 0)
		if err != nil {
			return err
		}

		c := checked.content
		h = epaper.PageHotspot{
			PageID:       page.ID,
			Type:         "relation",
			RelationKind: c.RelationKind,
			TargetPageNo: c.TargetPageNo,
			X:            c.Rect.X,
			Y:            c.Rect.Y,
			W:            c.Rect.W,
			H:            c.Rect.H,
			Label:        c.Label,
			CreatedBy:    in.CreatedBy,
		}
		if err := tx.CreateHotspot(&h); err != nil {
			return err
		}
		if err := syncLink(tx, h, checked.targetHotspotID); err != nil {
			return err
		}
		h, err = tx.GetHotspot(h.ID)
		return err
	})
	if err != nil {
		return epaper.PageHotspot{}, record("create_hotspot", err)
	}
	s.log.Info("hotspot created",
		zap.Uint("page_id", pageID),
		zap.Uint("hotspot_id", h.ID),
		zap.Uintp("target_hotspot_id", h.TargetHotspotID),
	)
	return h, record("create_hotspot", nil)
}

func (s *Service) UpdateHotspot(ctx context.Context, hotspotID uint, in HotspotInput) (epaper.PageHotspot, error) {
	editionID, err := s.editionOfHotspot(ctx, hotspotID)
	if err != nil {
		return epaper.PageHotspot{}, err
	}

	var h epaper.PageHotspot
	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		current, err := tx.GetHotspot(hotspotID)
		if err != nil {
			return fmt.Errorf("hotspot %d: %w", hotspotID, err)
		}
		page, err := tx.GetPage(current.PageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", current.PageID, err)
		}
		checked, err := checkHotspot(tx, page, in, current.ID)
		if err != nil {
			return err
		}
		if err := tx.UpdateHotspotContent(current.ID, checked.content); err != nil {
			return err
		}
		if err := syncLink(tx, current, checked.targetHotspotID); err != nil {
			return err
		}
		h, err = tx.GetHotspot(current.ID)
		return err
	})
	if err != nil {
		return epaper.PageHotspot{}, record("update_hotspot", err)
	}
	s.log.Info("hotspot updated",
		zap.Uint("hotspot_id", h.ID),
		zap.Uintp("target_hotspot_id", h.TargetHotspotID),
	)
	return h, record("update_hotspot", nil)
}

func (s *Service) DeleteHotspot(ctx context.Context, hotspotID uint) error {
	editionID, err := s.editionOfHotspot(ctx, hotspotID)
	if err != nil {
		return err
	}
	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		h, err := tx.GetHotspot(hotspotID)
		if err != nil {
			return fmt.Errorf("hotspot %d: %w", hotspotID, err)
		}
		return detachAndDelete(tx, h)
	})
	if err != nil {
		return record("delete_hotspot", err)
	}
	s.log.Info("hotspot deleted", zap.Uint("hotspot_id", hotspotID))
	return record("delete_hotspot", nil)
}

// BulkDeleteHotspots deletes the given hotspots of one page in a single
// transaction. Either every hotspot is removed or none is.
func (s *Service) BulkDeleteHotspots(ctx context.Context, actor access.Actor, pageID uint, hotspotIDs []uint) (int, error) {
	if err := s.checkBulkIDs(hotspotIDs); err != nil {
		return 0, record("bulk_delete_hotspots", err)
	}
	if !access.ComputePolicy(actor).Allows(access.CapManageEditions) {
		return 0, ErrForbidden
	}
	editionID, err := s.editionOfPage(ctx, pageID)
	if err != nil {
		return 0, err
	}

	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		hotspots, err := tx.FindHotspots(store.HotspotFilter{PageID: &pageID, IDs: hotspotIDs})
		if err != nil {
			return err
		}
		if len(hotspots) != len(hotspotIDs) {
			return invalid("hotspot_ids", "Some selected hotspots are no longer available on this page.")
		}
		for _, h := range hotspots {
			// An earlier deletion in this loop may have detached h.
			fresh, err := tx.GetHotspot(h.ID)
			if err != nil {
				return err
			}
			if err := detachAndDelete(tx, fresh); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, record("bulk_delete_hotspots", err)
	}
	s.log.Info("hotspots deleted",
		zap.Uint("page_id", pageID),
		zap.Int("count", len(hotspotIDs)),
		zap.Uint("actor_id", actor.UserID),
	)
	return len(hotspotIDs), record("bulk_delete_hotspots", nil)
}

func (s *Service) checkBulkIDs(ids []uint) error {
	if len(ids) == 0 {
		return invalid("hotspot_ids", "Select at least one hotspot.")
	}
	if len(ids) > s.opts.BulkDeleteMax {
		return invalid("hotspot_ids", "You may delete at most %d hotspots at once.", s.opts.BulkDeleteMax)
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return invalid("hotspot_ids", "Hotspot ids must be positive integers.")
		}
		if _, dup := seen[id]; dup {
			return invalid("hotspot_ids", "Hotspot ids must be distinct.")
		}
		seen[id] = struct{}{}
	}
	return nil
}
