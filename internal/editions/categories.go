package editions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/domain/sequence"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

const categoriesKey = "categories"

func (s *Service) ListCategories(ctx context.Context) ([]epaper.Category, error) {
	var out []epaper.Category
	err := s.read(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ListCategories(false)
		return err
	})
	return out, err
}

// CreateCategory appends a category after the current last position.
func (s *Service) CreateCategory(ctx context.Context, actor access.Actor, name string) (epaper.Category, error) {
	if !access.ComputePolicy(actor).Allows(access.CapManageCategories) {
		return epaper.Category{}, ErrForbidden
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return epaper.Category{}, record("create_category", invalid("name", "The name field is required."))
	case utf8.RuneCountInString(name) > 120:
		return epaper.Category{}, record("create_category", invalid("name", "Name may not be greater than 120 characters."))
	}

	c := epaper.Category{Name: name, IsActive: true}
	err := s.locked(ctx, categoriesKey, func(tx store.Tx) error {
		if _, err := tx.ListCategories(true); err != nil {
			return err
		}
		maxPos, err := tx.MaxCategoryPosition()
		if err != nil {
			return err
		}
		if maxPos+1 > s.opts.MaxPageNo {
			return invalid("name", "Too many categories.")
		}
		c.Position = maxPos + 1
		return tx.CreateCategory(&c)
	})
	if err != nil {
		return epaper.Category{}, record("create_category", err)
	}
	s.log.Info("category created", zap.Uint("category_id", c.ID), zap.Int("position", c.Position))
	return c, record("create_category", nil)
}

// ReorderCategories assigns positions 1..n in the given order.
func (s *Service) ReorderCategories(ctx context.Context, actor access.Actor, orderedIDs []uint) error {
	if !access.ComputePolicy(actor).Allows(access.CapManageCategories) {
		return ErrForbidden
	}
	if len(orderedIDs) == 0 {
		return record("reorder_categories", invalid("ordered_ids", "Reorder payload is invalid."))
	}
	err := s.locked(ctx, categoriesKey, func(tx store.Tx) error {
		cats, err := tx.ListCategories(true)
		if err != nil {
			return err
		}
		_, err = sequence.Apply(positions(cats), orderedIDs, s.opts.MaxPageNo, tx.SetCategoryPosition)
		switch {
		case errors.Is(err, sequence.ErrPayloadMismatch):
			return invalid("ordered_ids", "Reorder payload is invalid.")
		case errors.Is(err, sequence.ErrTooMany), errors.Is(err, sequence.ErrNoFreeRange):
			return invalid("ordered_ids", "Too many categories to reorder.")
		}
		return err
	})
	if err != nil {
		return record("reorder_categories", err)
	}
	s.log.Info("categories reordered", zap.Int("categories", len(orderedIDs)))
	return record("reorder_categories", nil)
}

// DeleteCategory refuses categories still used by a page. The remaining
// categories are renumbered 1..n keeping their relative order.
func (s *Service) DeleteCategory(ctx context.Context, actor access.Actor, categoryID uint) error {
	if !access.ComputePolicy(actor).Allows(access.CapManageCategories) {
		return ErrForbidden
	}
	err := s.locked(ctx, categoriesKey, func(tx store.Tx) error {
		if _, err := tx.GetCategory(categoryID); err != nil {
			return fmt.Errorf("category %d: %w", categoryID, err)
		}
		used, err := tx.CountPagesInCategory(categoryID)
		if err != nil {
			return err
		}
		if used > 0 {
			return invalid("category", "This category is used by one or more pages and cannot be deleted.")
		}
		if err := tx.DeleteCategory(categoryID); err != nil {
			return err
		}

		rest, err := tx.ListCategories(true)
		if err != nil || len(rest) == 0 {
			return err
		}
		ordered := make([]uint, len(rest))
		for i, c := range rest {
			ordered[i] = c.ID
		}
		_, err = sequence.Apply(positions(rest), ordered, s.opts.MaxPageNo, tx.SetCategoryPosition)
		return err
	})
	if err != nil {
		return record("delete_category", err)
	}
	s.log.Info("category deleted", zap.Uint("category_id", categoryID))
	return record("delete_category", nil)
}

func positions(cats []epaper.Category) map[uint]int {
	out := make(map[uint]int, len(cats))
	for _, c := range cats {
		out[c.ID] = c.Position
	}
	return out
}
