package editions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

// EditionSummary is an edition with its page count and publish readiness.
type EditionSummary struct {
	epaper.Edition
	PagesCount int              `json:"pages_count"`
	Readiness  epaper.Readiness `json:"readiness"`
}

// ParseEditionDate accepts only YYYY-MM-DD.
func ParseEditionDate(raw string) (time.Time, error) {
	d, err := time.Parse(epaper.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid("date", "Invalid date format. Use YYYY-MM-DD.")
	}
	return d, nil
}

func (s *Service) CreateEdition(ctx context.Context, date, name string, createdBy *uint) (epaper.Edition, error) {
	d, err := ParseEditionDate(date)
	if err != nil {
		return epaper.Edition{}, record("create_edition", err)
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > 150 {
		return epaper.Edition{}, record("create_edition", invalid("name", "Name may not be greater than 150 characters."))
	}

	e := epaper.Edition{EditionDate: d, Name: name, Status: epaper.StatusDraft, CreatedBy: createdBy}
	if err := s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.CreateEdition(&e)
	}); err != nil {
		return epaper.Edition{}, record("create_edition", err)
	}
	s.log.Info("edition created", zap.Uint("edition_id", e.ID), zap.String("date", e.DateString()))
	return e, record("create_edition", nil)
}

// FindOrCreateEditionForDate returns the newest edition for date, creating a
// draft when there is none.
func (s *Service) FindOrCreateEditionForDate(ctx context.Context, date string, createdBy *uint) (epaper.Edition, bool, error) {
	d, err := ParseEditionDate(date)
	if err != nil {
		return epaper.Edition{}, false, err
	}
	var (
		e       epaper.Edition
		created bool
	)
	err = s.locked(ctx, "edition-date:"+d.Format(epaper.DateLayout), func(tx store.Tx) error {
		existing, err := tx.ListEditionsForDate(d)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			e = existing[0]
			return nil
		}
		e = epaper.Edition{EditionDate: d, Status: epaper.StatusDraft, CreatedBy: createdBy}
		created = true
		return tx.CreateEdition(&e)
	})
	if err != nil {
		return epaper.Edition{}, false, err
	}
	if created {
		s.log.Info("edition created", zap.Uint("edition_id", e.ID), zap.String("date", e.DateString()))
	}
	return e, created, nil
}

// ListEditionsForDate returns the editions of a day, newest first.
func (s *Service) ListEditionsForDate(ctx context.Context, date string) ([]EditionSummary, error) {
	d, err := ParseEditionDate(date)
	if err != nil {
		return nil, err
	}
	out := []EditionSummary{}
	err = s.read(ctx, func(tx store.Tx) error {
		editions, err := tx.ListEditionsForDate(d)
		if err != nil {
			return err
		}
		for _, e := range editions {
			pages, err := tx.ListPages(e.ID)
			if err != nil {
				return err
			}
			out = append(out, EditionSummary{
				Edition:    e,
				PagesCount: len(pages),
				Readiness:  epaper.EvaluateReadiness(pageNumbers(pages)),
			})
		}
		return nil
	})
	return out, err
}

// DeleteEdition removes an edition with its pages, hotspots and stored images.
func (s *Service) DeleteEdition(ctx context.Context, actor access.Actor, editionID uint) error {
	if !access.ComputePolicy(actor).Allows(access.CapDeleteEditions) {
		return ErrForbidden
	}
	var pages []epaper.Page
	err := s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		var err error
		if pages, err = tx.ListPages(editionID); err != nil {
			return err
		}
		return tx.DeleteEdition(editionID)
	})
	if err != nil {
		return record("delete_edition", err)
	}
	for _, p := range pages {
		if err := s.images.DeletePageImages(ctx, p.PageImage); err != nil {
			s.log.Warn("page image cleanup failed",
				zap.Uint("page_id", p.ID),
				zap.Strings("paths", p.Paths()),
				zap.Error(err),
			)
		}
	}
	s.log.Info("edition deleted", zap.Uint("edition_id", editionID), zap.Int("pages", len(pages)))
	return record("delete_edition", nil)
}

func (s *Service) EvaluatePublishReadiness(ctx context.Context, editionID uint) (epaper.Readiness, error) {
	var r epaper.Readiness
	err := s.read(ctx, func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		pages, err := tx.ListPages(editionID)
		if err != nil {
			return err
		}
		r = epaper.EvaluateReadiness(pageNumbers(pages))
		return nil
	})
	return r, err
}

// Publish marks the edition published when its page numbering is ready.
func (s *Service) Publish(ctx context.Context, editionID uint) (epaper.Edition, error) {
	var e epaper.Edition
	err := s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		pages, err := tx.LockPages(editionID)
		if err != nil {
			return err
		}
		if r := epaper.EvaluateReadiness(pageNumbers(pages)); !r.IsReady {
			ve := &ValidationError{Blockers: r.Blockers}
			for _, b := range r.Blockers {
				ve.add("edition_id", b)
			}
			return ve
		}
		now := s.now()
		if err := tx.SetEditionStatus(editionID, epaper.StatusPublished, &now); err != nil {
			return err
		}
		e, err = tx.GetEdition(editionID)
		return err
	})
	if err != nil {
		return epaper.Edition{}, record("publish", err)
	}
	s.log.Info("edition published", zap.Uint("edition_id", editionID))
	return e, record("publish", nil)
}

func (s *Service) Unpublish(ctx context.Context, editionID uint) (epaper.Edition, error) {
	var e epaper.Edition
	err := s.locked(ctx, editionKey(editionID), func(tx store.Tx) error {
		if _, err := tx.GetEdition(editionID); err != nil {
			return fmt.Errorf("edition %d: %w", editionID, err)
		}
		if err := tx.SetEditionStatus(editionID, epaper.StatusDraft, nil); err != nil {
			return err
		}
		var err error
		e, err = tx.GetEdition(editionID)
		return err
	})
	if err != nil {
		return epaper.Edition{}, record("unpublish", err)
	}
	s.log.Info("edition unpublished", zap.Uint("edition_id", editionID))
	return e, record("unpublish", nil)
}

func pageNumbers(pages []epaper.Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.PageNo
	}
	return out
}
