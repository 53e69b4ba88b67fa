package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"epaper-app/internal/domain/epaper"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

// translate maps driver and gorm errors onto the store's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch {
			case strings.Contains(pgErr.ConstraintName, "page_no"):
				return fmt.Errorf("%w: %s", ErrDuplicatePageNo, pgErr.Detail)
			case strings.Contains(pgErr.ConstraintName, "position"):
				return fmt.Errorf("%w: %s", ErrDuplicatePosition, pgErr.Detail)
			}
		case "23503":
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.Detail)
		}
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- editions

func (t *gormTx) CreateEdition(e *epaper.Edition) error {
	if e.Status == "" {
		e.Status = epaper.StatusDraft
	}
	return translate(t.db.Create(e).Error)
}

func (t *gormTx) GetEdition(id uint) (epaper.Edition, error) {
	var e epaper.Edition
	err := t.db.First(&e, "id = ?", id).Error
	return e, translate(err)
}

func (t *gormTx) ListEditionsForDate(date time.Time) ([]epaper.Edition, error) {
	var out []epaper.Edition
	err := t.db.Where("edition_date = ?", date.Format(epaper.DateLayout)).
		Order("id DESC").
		Find(&out).Error
	return out, translate(err)
}

func (t *gormTx) SetEditionStatus(id uint, status string, publishedAt *time.Time) error {
	return affected(t.db.Model(&epaper.Edition{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"published_at": nullable(publishedAt),
			"updated_at":   time.Now().UTC(),
		}))
}

func (t *gormTx) DeleteEdition(id uint) error {
	pageIDs := t.db.Model(&epaper.Page{}).Select("id").Where("edition_id = ?", id)
	if err := t.db.Where("page_id IN (?)", pageIDs).Delete(&epaper.PageHotspot{}).Error; err != nil {
		return translate(err)
	}
	if err := t.db.Where("edition_id = ?", id).Delete(&epaper.Page{}).Error; err != nil {
		return translate(err)
	}
	return translate(t.db.Delete(&epaper.Edition{}, "id = ?", id).Error)
}

// ---------- pages

func (t *gormTx) CreatePage(p *epaper.Page) error {
	return translate(t.db.Omit(clause.Associations).Create(p).Error)
}

func (t *gormTx) GetPage(id uint) (epaper.Page, error) {
	var p epaper.Page
	err := t.db.First(&p, "id = ?", id).Error
	return p, translate(err)
}

func (t *gormTx) ListPages(editionID uint) ([]epaper.Page, error) {
	var out []epaper.Page
	err := t.db.Where("edition_id = ?", editionID).
		Order("page_no ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (t *gormTx) LockPages(editionID uint) ([]epaper.Page, error) {
	var out []epaper.Page
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("edition_id = ?", editionID).
		Order("page_no ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (t *gormTx) MaxPageNo(editionID uint) (int, error) {
	var n int
	err := t.db.Model(&epaper.Page{}).
		Where("edition_id = ?", editionID).
		Select("COALESCE(MAX(page_no), 0)").
		Scan(&n).Error
	return n, translate(err)
}

func (t *gormTx) UpdatePage(id uint, pageNo int, categoryID *uint) error {
	return affected(t.db.Model(&epaper.Page{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"page_no":     pageNo,
			"category_id": nullable(categoryID),
			"updated_at":  time.Now().UTC(),
		}))
}

func (t *gormTx) SetPageNo(id uint, pageNo int) error {
	return affected(t.db.Model(&epaper.Page{}).
		Where("id = ?", id).
		Updates(map[string]any{"page_no": pageNo, "updated_at": time.Now().UTC()}))
}

func (t *gormTx) DeletePage(id uint) error {
	if err := t.db.Where("page_id = ?", id).Delete(&epaper.PageHotspot{}).Error; err != nil {
		return translate(err)
	}
	return translate(t.db.Delete(&epaper.Page{}, "id = ?", id).Error)
}

func (t *gormTx) CountPagesInCategory(categoryID uint) (int64, error) {
	var n int64
	err := t.db.Model(&epaper.Page{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translate(err)
}

// ---------- hotspots

func (t *gormTx) scope(q *gorm.DB, f HotspotFilter) *gorm.DB {
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}
	if f.PageID != nil {
		q = q.Where("page_id = ?", *f.PageID)
	}
	if f.EditionID != nil {
		pageIDs := t.db.Session(&gorm.Session{NewDB: true}).
			Model(&epaper.Page{}).
			Select("id").
			Where("edition_id = ?", *f.EditionID)
		q = q.Where("page_id IN (?)", pageIDs)
	}
	if f.TargetHotspotID != nil {
		q = q.Where("target_hotspot_id = ?", *f.TargetHotspotID)
	}
	if f.LinkedHotspotID != nil {
		q = q.Where("linked_hotspot_id = ?", *f.LinkedHotspotID)
	}
	if len(f.TargetPageNos) > 0 {
		q = q.Where("target_page_no IN ?", f.TargetPageNos)
	}
	if f.HasTargetPageNo {
		q = q.Where("target_page_no IS NOT NULL")
	}
	return q
}

func (t *gormTx) CreateHotspot(h *epaper.PageHotspot) error {
	if h.Type == "" {
		h.Type = "relation"
	}
	return translate(t.db.Create(h).Error)
}

func (t *gormTx) GetHotspot(id uint) (epaper.PageHotspot, error) {
	var h epaper.PageHotspot
	err := t.db.First(&h, "id = ?", id).Error
	return h, translate(err)
}

func (t *gormTx) FindHotspots(f HotspotFilter) ([]epaper.PageHotspot, error) {
	var out []epaper.PageHotspot
	err := t.scope(t.db.Model(&epaper.PageHotspot{}), f).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (t *gormTx) UpdateHotspotContent(id uint, c HotspotContent) error {
	return affected(t.db.Model(&epaper.PageHotspot{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"relation_kind":  c.RelationKind,
			"target_page_no": nullable(c.TargetPageNo),
			"x":              c.Rect.X,
			"y":              c.Rect.Y,
			"w":              c.Rect.W,
			"h":              c.Rect.H,
			"label":          nullable(c.Label),
			"updated_at":     time.Now().UTC(),
		}))
}

func (t *gormTx) UpdateHotspots(f HotspotFilter, p HotspotPatch) (int64, error) {
	if f.empty() {
		return 0, ErrUnscopedUpdate
	}
	cols := p.columns()
	if len(cols) == 0 {
		return 0, nil
	}
	cols["updated_at"] = time.Now().UTC()
	res := t.scope(t.db.Model(&epaper.PageHotspot{}), f).Updates(cols)
	return res.RowsAffected, translate(res.Error)
}

func (t *gormTx) DeleteHotspot(id uint) error {
	return translate(t.db.Delete(&epaper.PageHotspot{}, "id = ?", id).Error)
}

// ---------- categories

func (t *gormTx) CreateCategory(c *epaper.Category) error {
	return translate(t.db.Create(c).Error)
}

func (t *gormTx) GetCategory(id uint) (epaper.Category, error) {
	var c epaper.Category
	err := t.db.First(&c, "id = ?", id).Error
	return c, translate(err)
}

func (t *gormTx) ListCategories(lock bool) ([]epaper.Category, error) {
	q := t.db.Model(&epaper.Category{})
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []epaper.Category
	err := q.Order("position ASC, id ASC").Find(&out).Error
	return out, translate(err)
}

func (t *gormTx) MaxCategoryPosition() (int, error) {
	var n int
	err := t.db.Model(&epaper.Category{}).Select("COALESCE(MAX(position), 0)").Scan(&n).Error
	return n, translate(err)
}

func (t *gormTx) SetCategoryPosition(id uint, position int) error {
	return affected(t.db.Model(&epaper.Category{}).
		Where("id = ?", id).
		Updates(map[string]any{"position": position, "updated_at": time.Now().UTC()}))
}

func (t *gormTx) DeleteCategory(id uint) error {
	if err := t.db.Model(&epaper.Page{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return translate(err)
	}
	return translate(t.db.Delete(&epaper.Category{}, "id = ?", id).Error)
}
