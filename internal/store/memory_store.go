package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"epaper-app/internal/domain/epaper"
)

// MemoryStore keeps every table in-process. Transactions are serialized and
// roll back to a snapshot on error, and the (edition_id, page_no) and
// category position unique constraints are checked on every write.
type MemoryStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	nextID     uint
	editions   map[uint]epaper.Edition
	pages      map[uint]epaper.Page
	hotspots   map[uint]epaper.PageHotspot
	categories map[uint]epaper.Category
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		editions:   map[uint]epaper.Edition{},
		pages:      map[uint]epaper.Page{},
		hotspots:   map[uint]epaper.PageHotspot{},
		categories: map[uint]epaper.Category{},
	}}
}

func (s memState) clone() memState {
	out := memState{
		nextID:     s.nextID,
		editions:   make(map[uint]epaper.Edition, len(s.editions)),
		pages:      make(map[uint]epaper.Page, len(s.pages)),
		hotspots:   make(map[uint]epaper.PageHotspot, len(s.hotspots)),
		categories: make(map[uint]epaper.Category, len(s.categories)),
	}
	for k, v := range s.editions {
		out.editions[k] = v
	}
	for k, v := range s.pages {
		out.pages[k] = v
	}
	for k, v := range s.hotspots {
		out.hotspots[k] = v
	}
	for k, v := range s.categories {
		out.categories[k] = v
	}
	return out
}

// Transaction runs fn with exclusive access and restores the previous state
// if fn fails or panics.
func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	backup := m.state.clone()
	defer func() {
		if r := recover(); r != nil {
			m.state = backup
			panic(r)
		}
	}()

	if err = fn(&memTx{st: &m.state}); err != nil {
		m.state = backup
	}
	return err
}

type memTx struct {
	st *memState
}

func (t *memTx) id() uint {
	t.st.nextID++
	return t.st.nextID
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ---------- editions

func (t *memTx) CreateEdition(e *epaper.Edition) error {
	now := time.Now().UTC()
	e.ID = t.id()
	if e.Status == "" {
		e.Status = epaper.StatusDraft
	}
	e.CreatedAt, e.UpdatedAt = now, now
	row := *e
	row.Pages = nil
	t.st.editions[e.ID] = row
	return nil
}

func (t *memTx) GetEdition(id uint) (epaper.Edition, error) {
	e, ok := t.st.editions[id]
	if !ok {
		return epaper.Edition{}, ErrNotFound
	}
	return e, nil
}

func (t *memTx) ListEditionsForDate(date time.Time) ([]epaper.Edition, error) {
	var out []epaper.Edition
	for _, e := range t.st.editions {
		if sameDay(e.EditionDate, date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memTx) SetEditionStatus(id uint, status string, publishedAt *time.Time) error {
	e, ok := t.st.editions[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	e.PublishedAt = copyPtr(publishedAt)
	e.UpdatedAt = time.Now().UTC()
	t.st.editions[id] = e
	return nil
}

func (t *memTx) DeleteEdition(id uint) error {
	if _, ok := t.st.editions[id]; !ok {
		return nil
	}
	for pid, p := range t.st.pages {
		if p.EditionID == id {
			_ = t.DeletePage(pid)
		}
	}
	delete(t.st.editions, id)
	return nil
}

// ---------- pages

func (t *memTx) pageNoTaken(editionID uint, pageNo int, except uint) bool {
	for _, p := range t.st.pages {
		if p.ID != except && p.EditionID == editionID && p.PageNo == pageNo {
			return true
		}
	}
	return false
}

func (t *memTx) CreatePage(p *epaper.Page) error {
	if _, ok := t.st.editions[p.EditionID]; !ok {
		return ErrNotFound
	}
	if t.pageNoTaken(p.EditionID, p.PageNo, 0) {
		return ErrDuplicatePageNo
	}
	now := time.Now().UTC()
	p.ID = t.id()
	p.CreatedAt, p.UpdatedAt = now, now
	row := *p
	row.Hotspots = nil
	row.Category = nil
	t.st.pages[p.ID] = row
	return nil
}

func (t *memTx) GetPage(id uint) (epaper.Page, error) {
	p, ok := t.st.pages[id]
	if !ok {
		return epaper.Page{}, ErrNotFound
	}
	return p, nil
}

func (t *memTx) ListPages(editionID uint) ([]epaper.Page, error) {
	var out []epaper.Page
	for _, p := range t.st.pages {
		if p.EditionID == editionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PageNo != out[j].PageNo {
			return out[i].PageNo < out[j].PageNo
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// LockPages needs no extra locking: the transaction already holds the store mutex.
func (t *memTx) LockPages(editionID uint) ([]epaper.Page, error) {
	return t.ListPages(editionID)
}

func (t *memTx) MaxPageNo(editionID uint) (int, error) {
	maxNo := 0
	for _, p := range t.st.pages {
		if p.EditionID == editionID && p.PageNo > maxNo {
			maxNo = p.PageNo
		}
	}
	return maxNo, nil
}

func (t *memTx) UpdatePage(id uint, pageNo int, categoryID *uint) error {
	p, ok := t.st.pages[id]
	if !ok {
		return ErrNotFound
	}
	if t.pageNoTaken(p.EditionID, pageNo, id) {
		return ErrDuplicatePageNo
	}
	p.PageNo = pageNo
	p.CategoryID = copyPtr(categoryID)
	p.UpdatedAt = time.Now().UTC()
	t.st.pages[id] = p
	return nil
}

func (t *memTx) SetPageNo(id uint, pageNo int) error {
	p, ok := t.st.pages[id]
	if !ok {
		return ErrNotFound
	}
	if t.pageNoTaken(p.EditionID, pageNo, id) {
		return ErrDuplicatePageNo
	}
	p.PageNo = pageNo
	p.UpdatedAt = time.Now().UTC()
	t.st.pages[id] = p
	return nil
}

func (t *memTx) DeletePage(id uint) error {
	for hid, h := range t.st.hotspots {
		if h.PageID == id {
			delete(t.st.hotspots, hid)
		}
	}
	delete(t.st.pages, id)
	return nil
}

func (t *memTx) CountPagesInCategory(categoryID uint) (int64, error) {
	var n int64
	for _, p := range t.st.pages {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// ---------- hotspots

func (t *memTx) CreateHotspot(h *epaper.PageHotspot) error {
	if _, ok := t.st.pages[h.PageID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	h.ID = t.id()
	if h.Type == "" {
		h.Type = "relation"
	}
	h.CreatedAt, h.UpdatedAt = now, now
	row := *h
	row.TargetPageNo = copyPtr(h.TargetPageNo)
	row.TargetHotspotID = copyPtr(h.TargetHotspotID)
	row.LinkedHotspotID = copyPtr(h.LinkedHotspotID)
	row.Label = copyPtr(h.Label)
	t.st.hotspots[h.ID] = row
	return nil
}

func (t *memTx) GetHotspot(id uint) (epaper.PageHotspot, error) {
	h, ok := t.st.hotspots[id]
	if !ok {
		return epaper.PageHotspot{}, ErrNotFound
	}
	return h, nil
}

func (t *memTx) matches(f HotspotFilter, h epaper.PageHotspot) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, h.ID) {
		return false
	}
	if f.ExcludeID != nil && h.ID == *f.ExcludeID {
		return false
	}
	if f.PageID != nil && h.PageID != *f.PageID {
		return false
	}
	if f.EditionID != nil {
		p, ok := t.st.pages[h.PageID]
		if !ok || p.EditionID != *f.EditionID {
			return false
		}
	}
	if f.TargetHotspotID != nil && (h.TargetHotspotID == nil || *h.TargetHotspotID != *f.TargetHotspotID) {
		return false
	}
	if f.LinkedHotspotID != nil && (h.LinkedHotspotID == nil || *h.LinkedHotspotID != *f.LinkedHotspotID) {
		return false
	}
	if f.HasTargetPageNo && h.TargetPageNo == nil {
		return false
	}
	if len(f.TargetPageNos) > 0 {
		if h.TargetPageNo == nil {
			return false
		}
		found := false
		for _, n := range f.TargetPageNos {
			if n == *h.TargetPageNo {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (t *memTx) FindHotspots(f HotspotFilter) ([]epaper.PageHotspot, error) {
	var out []epaper.PageHotspot
	for _, h := range t.st.hotspots {
		if t.matches(f, h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) UpdateHotspotContent(id uint, c HotspotContent) error {
	h, ok := t.st.hotspots[id]
	if !ok {
		return ErrNotFound
	}
	h.RelationKind = c.RelationKind
	h.TargetPageNo = copyPtr(c.TargetPageNo)
	h.X, h.Y, h.W, h.H = c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H
	h.Label = copyPtr(c.Label)
	h.UpdatedAt = time.Now().UTC()
	t.st.hotspots[id] = h
	return nil
}

func (t *memTx) UpdateHotspots(f HotspotFilter, p HotspotPatch) (int64, error) {
	if f.empty() {
		return 0, ErrUnscopedUpdate
	}
	var n int64
	now := time.Now().UTC()
	for id, h := range t.st.hotspots {
		if !t.matches(f, h) {
			continue
		}
		if p.TargetHotspotID.Set {
			h.TargetHotspotID = copyPtr(p.TargetHotspotID.Value)
		}
		if p.LinkedHotspotID.Set {
			h.LinkedHotspotID = copyPtr(p.LinkedHotspotID.Value)
		}
		if p.TargetPageNo.Set {
			h.TargetPageNo = copyPtr(p.TargetPageNo.Value)
		}
		h.UpdatedAt = now
		t.st.hotspots[id] = h
		n++
	}
	return n, nil
}

func (t *memTx) DeleteHotspot(id uint) error {
	delete(t.st.hotspots, id)
	return nil
}

// ---------- categories

func (t *memTx) positionTaken(position int, except uint) bool {
	for _, c := range t.st.categories {
		if c.ID != except && c.Position == position {
			return true
		}
	}
	return false
}

func (t *memTx) CreateCategory(c *epaper.Category) error {
	if t.positionTaken(c.Position, 0) {
		return ErrDuplicatePosition
	}
	now := time.Now().UTC()
	c.ID = t.id()
	c.CreatedAt, c.UpdatedAt = now, now
	t.st.categories[c.ID] = *c
	return nil
}

func (t *memTx) GetCategory(id uint) (epaper.Category, error) {
	c, ok := t.st.categories[id]
	if !ok {
		return epaper.Category{}, ErrNotFound
	}
	return c, nil
}

func (t *memTx) ListCategories(bool) ([]epaper.Category, error) {
	out := make([]epaper.Category, 0, len(t.st.categories))
	for _, c := range t.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) MaxCategoryPosition() (int, error) {
	maxPos := 0
	for _, c := range t.st.categories {
		if c.Position > maxPos {
			maxPos = c.Position
		}
	}
	return maxPos, nil
}

func (t *memTx) SetCategoryPosition(id uint, position int) error {
	c, ok := t.st.categories[id]
	if !ok {
		return ErrNotFound
	}
	if t.positionTaken(position, id) {
		return ErrDuplicatePosition
	}
	c.Position = position
	c.UpdatedAt = time.Now().UTC()
	t.st.categories[id] = c
	return nil
}

func (t *memTx) DeleteCategory(id uint) error {
	for pid, p := range t.st.pages {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			t.st.pages[pid] = p
		}
	}
	delete(t.st.categories, id)
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
