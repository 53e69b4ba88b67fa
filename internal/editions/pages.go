package editions

import (
	"context"
	"errors"
	"fmt"

	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/domain/media"
	"epaper-app/internal/domain/sequence"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

// PageInput registers an uploaded page image. A nil PageNo appends the page.
type PageInput struct {
	PageNo     *int
	CategoryID *uint
	Image      media.PageImage
	Width      *int
	Height     *int
	UploadedBy *uint
}

// ListEditionPages returns the edition's pages by page number, each with its hotspots.
func (s *Service) ListEditionPages(ctx context.Context, editionID uint) ([]epaper.Page, error) {
	var pages []epaper.Page
	err := s.read(ctx, func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		var err error
		if pages, err = tx.ListPages(editionID); err != nil {
			return err
		}
		hotspots, err := tx.FindHotspots(store.HotspotFilter{EditionID: &editionID})
		if err != nil {
			return err
		}
		byPage := map[uint][]epaper.PageHotspot{}
		for _, h := range hotspots {
			byPage[h.PageID] = append(byPage[h.PageID], h)
		}
		for i := range pages {
			pages[i].Hotspots = byPage[pages[i].ID]
		}
		return nil
	})
	return pages, err
}

func (s *Service) RegisterPage(ctx context.Context, editionID uint, in PageInput) (epaper.Page, error) {
	if in.Image.OriginalPath == "" {
		return epaper.Page{}, record("register_page", invalid("image_original_path", "An original image path is required."))
	}
	if in.PageNo != nil && (*in.PageNo < 1 || *in.PageNo > s.opts.MaxPageNo) {
		return epaper.Page{}, record("register_page", invalid("page_no", "Page number must be between 1 and %d.", s.opts.MaxPageNo))
	}

	var page epaper.Page
	err := s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}

		pageNo := 0
		if in.PageNo != nil {
			pageNo = *in.PageNo
		} else {
			maxNo, err := tx.MaxPageNo(editionID)
			if err != nil {
				return err
			}
			pageNo = maxNo + 1
			if pageNo > s.opts.MaxPageNo {
				return invalid("page_no", "Page number must be between 1 and %d.", s.opts.MaxPageNo)
			}
		}

		page = epaper.Page{
			EditionID:  editionID,
			PageNo:     pageNo,
			CategoryID: in.CategoryID,
			PageImage:  in.Image,
			Width:      in.Width,
			Height:     in.Height,
			UploadedBy: in.UploadedBy,
		}
		err := tx.CreatePage(&page)
		if errors.Is(err, store.ErrDuplicatePageNo) {
			return invalid("page_no", "Page %d already exists in this edition.", pageNo)
		}
		return err
	})
	if err != nil {
		return epaper.Page{}, record("register_page", err)
	}
	s.log.Info("page registered",
		zap.Uint("edition_id", editionID),
		zap.Uint("page_id", page.ID),
		zap.Int("page_no", page.PageNo),
	)
	return page, record("register_page", nil)
}

// UpdatePage renumbers a page and sets its category. Hotspots of the edition
// that targeted the old number follow the page to its new number.
func (s *Service) UpdatePage(ctx context.Context, pageID uint, pageNo int, categoryID *uint) error {
	if pageNo < 1 || pageNo > s.opts.MaxPageNo {
		return record("update_page", invalid("page_no", "Page number must be between 1 and %d.", s.opts.MaxPageNo))
	}
	editionID, err := s.editionOfPage(ctx, pageID)
	if err != nil {
		return err
	}

	var oldNo int
	var retargeted int64
	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageID, err)
		}
		if err := checkCategory(tx, categoryID); err != nil {
			return err
		}
		oldNo = page.PageNo

		err = tx.UpdatePage(pageID, pageNo, categoryID)
		if errors.Is(err, store.ErrDuplicatePageNo) {
			return invalid("page_no", "Page %d already exists in this edition.", pageNo)
		}
		if err != nil {
			return err
		}
		retargeted, err = retargetPage(tx, page.EditionID, oldNo, pageNo)
		return err
	})
	if err != nil {
		return record("update_page", err)
	}
	s.log.Info("page updated",
		zap.Uint("page_id", pageID),
		zap.Int("old_page_no", oldNo),
		zap.Int("page_no", pageNo),
		zap.Int64("targets_remapped", retargeted),
	)
	return record("update_page", nil)
}

// ReorderPages gives the edition's pages the numbers 1..n in the order of
// orderedPageIDs, which must list every page of the edition exactly once.
func (s *Service) ReorderPages(ctx context.Context, editionID uint, orderedPageIDs []uint) error {
	if len(orderedPageIDs) == 0 {
		return record("reorder_pages", invalid("ordered_page_ids", "Reorder payload is invalid for this edition."))
	}

	var remapped int64
	err := s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		pages, err := tx.LockPages(editionID)
		if err != nil {
			return err
		}
		current := make(map[uint]int, len(pages))
		for _, p := range pages {
			current[p.ID] = p.PageNo
		}

		res, err := sequence.Apply(current, orderedPageIDs, s.opts.MaxPageNo, tx.SetPageNo)
		switch {
		case errors.Is(err, sequence.ErrPayloadMismatch):
			return invalid("ordered_page_ids", "Reorder payload is invalid for this edition.")
		case errors.Is(err, sequence.ErrTooMany):
			return invalid("ordered_page_ids", "Too many pages to reorder.")
		case errors.Is(err, sequence.ErrNoFreeRange), errors.Is(err, store.ErrDuplicatePageNo):
			return invalid("ordered_page_ids", "Current page numbers leave no room to reorder this edition.")
		case err != nil:
			return err
		}

		remapped, err = remapTargets(tx, editionID, res.Remap)
		return err
	})
	if err != nil {
		return record("reorder_pages", err)
	}
	s.log.Info("pages reordered",
		zap.Uint("edition_id", editionID),
		zap.Int("pages", len(orderedPageIDs)),
		zap.Int64("targets_remapped", remapped),
	)
	return record("reorder_pages", nil)
}

// DeletePage removes a page's stored images, its links to other pages'
// hotspots, its own hotspots and the page row. Hotspots elsewhere that target
// the page number are left alone unless the stale target policy is "clear".
func (s *Service) DeletePage(ctx context.Context, pageID uint) error {
	editionID, err := s.editionOfPage(ctx, pageID)
	if err != nil {
		return err
	}

	var cleared int64
	err = s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageID, err)
		}

		if err := s.images.DeletePageImages(ctx, page.PageImage); err != nil {
			s.log.Warn("page image cleanup failed",
				zap.Uint("page_id", page.ID),
				zap.Strings("paths", page.Paths()),
				zap.Error(err),
			)
		}

		own, err := tx.FindHotspots(store.HotspotFilter{PageID: &page.ID})
		if err != nil {
			return err
		}
		for _, h := range own {
			fresh, err := tx.GetHotspot(h.ID)
			if err != nil {
				return err
			}
			if err := detachAndDelete(tx, fresh); err != nil {
				return err
			}
		}

		if s.opts.StaleTargetPolicy == StaleTargetsClear {
			cleared, err = tx.UpdateHotspots(
				store.HotspotFilter{EditionID: &page.EditionID, TargetPageNos: []int{page.PageNo}},
				store.HotspotPatch{TargetPageNo: store.Null[int]()},
			)
			if err != nil {
				return fmt.Errorf("clear stale targets: %w", err)
			}
		}
		return tx.DeletePage(page.ID)
	})
	if err != nil {
		return record("delete_page", err)
	}
	s.log.Info("page deleted",
		zap.Uint("edition_id", editionID),
		zap.Uint("page_id", pageID),
		zap.Int64("stale_targets_cleared", cleared),
	)
	return record("delete_page", nil)
}

func checkCategory(tx store.Tx, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	_, err := tx.GetCategory(*categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("category_id", "Selected category does not exist.")
	}
	return err
}
