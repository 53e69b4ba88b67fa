// Package store persists editions, pages, hotspots and categories.
package store

import (
	"context"
	"errors"
	"time"

	"epaper-app/internal/domain/epaper"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicatePageNo   = errors.New("page number already taken in edition")
	ErrDuplicatePosition = errors.New("category position already taken")
	ErrUnscopedUpdate    = errors.New("refusing hotspot update without a filter")
)

// Store runs units of work. Every write of one operation goes through a single Tx.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of reads and conditional writes available inside a transaction.
type Tx interface {
	CreateEdition(e *epaper.Edition) error
	GetEdition(id uint) (epaper.Edition, error)
	ListEditionsForDate(date time.Time) ([]epaper.Edition, error)
	SetEditionStatus(id uint, status string, publishedAt *time.Time) error
	DeleteEdition(id uint) error

	CreatePage(p *epaper.Page) error
	GetPage(id uint) (epaper.Page, error)
	// ListPages returns the edition's pages ordered by page_no, then id.
	ListPages(editionID uint) ([]epaper.Page, error)
	// LockPages is ListPages holding a write lock on the rows until commit.
	LockPages(editionID uint) ([]epaper.Page, error)
	MaxPageNo(editionID uint) (int, error)
	UpdatePage(id uint, pageNo int, categoryID *uint) error
	SetPageNo(id uint, pageNo int) error
	// DeletePage removes the page and, by cascade, its own hotspots.
	DeletePage(id uint) error
	CountPagesInCategory(categoryID uint) (int64, error)

	CreateHotspot(h *epaper.PageHotspot) error
	GetHotspot(id uint) (epaper.PageHotspot, error)
	// FindHotspots returns the matching hotspots ordered by id.
	FindHotspots(f HotspotFilter) ([]epaper.PageHotspot, error)
	UpdateHotspotContent(id uint, c HotspotContent) error
	// UpdateHotspots applies p to every hotspot matching f and returns the row count.
	UpdateHotspots(f HotspotFilter, p HotspotPatch) (int64, error)
	DeleteHotspot(id uint) error

	CreateCategory(c *epaper.Category) error
	GetCategory(id uint) (epaper.Category, error)
	// ListCategories returns categories ordered by position, then id.
	ListCategories(lock bool) ([]epaper.Category, error)
	MaxCategoryPosition() (int, error)
	SetCategoryPosition(id uint, position int) error
	DeleteCategory(id uint) error
}

// HotspotFilter selects hotspots. Zero fields do not constrain.
type HotspotFilter struct {
	IDs             []uint
	ExcludeID       *uint
	PageID          *uint
	EditionID       *uint
	TargetHotspotID *uint
	LinkedHotspotID *uint
	TargetPageNos   []int
	// HasTargetPageNo restricts to rows with a non-null target_page_no.
	HasTargetPageNo bool
}

func (f HotspotFilter) empty() bool {
	return len(f.IDs) == 0 && f.ExcludeID == nil && f.PageID == nil && f.EditionID == nil &&
		f.TargetHotspotID == nil && f.LinkedHotspotID == nil && len(f.TargetPageNos) == 0 &&
		!f.HasTargetPageNo
}

// Field is an optional column assignment. A set Field with a nil Value writes NULL.
type Field[T any] struct {
	Set   bool
	Value *T
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// HotspotPatch lists the reference columns a conditional update may touch.
type HotspotPatch struct {
	TargetHotspotID Field[uint]
	LinkedHotspotID Field[uint]
	TargetPageNo    Field[int]
}

func (p HotspotPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.TargetHotspotID.Set {
		cols["target_hotspot_id"] = nullable(p.TargetHotspotID.Value)
	}
	if p.LinkedHotspotID.Set {
		cols["linked_hotspot_id"] = nullable(p.LinkedHotspotID.Value)
	}
	if p.TargetPageNo.Set {
		cols["target_page_no"] = nullable(p.TargetPageNo.Value)
	}
	return cols
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// HotspotContent is the editable, non-link part of a hotspot.
type HotspotContent struct {
	RelationKind string
	TargetPageNo *int
	Rect         epaper.Rect
	Label        *string
}
