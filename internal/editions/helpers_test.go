package editions

import (
	"context"
	"errors"
	"testing"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/domain/media"
	"epaper-app/internal/store"
)

var admin = access.Actor{UserID: 1, Role: access.RoleAdmin}

func newTestService(t *testing.T, opts Options) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewService(st, nil, nil, nil, opts), st
}

// seedPages creates an edition with n pages numbered 1..n.
func seedPages(t *testing.T, svc *Service, n int) (epaper.Edition, []epaper.Page) {
	t.Helper()
	ctx := context.Background()
	e, err := svc.CreateEdition(ctx, "2026-03-04", "Morning", nil)
	if err != nil {
		t.Fatalf("CreateEdition: %v", err)
	}
	pages := make([]epaper.Page, 0, n)
	for i := 0; i < n; i++ {
		p, err := svc.RegisterPage(ctx, e.ID, PageInput{Image: media.PageImage{OriginalPath: "editions/p.jpg"}})
		if err != nil {
			t.Fatalf("RegisterPage: %v", err)
		}
		pages = append(pages, p)
	}
	return e, pages
}

func mustHotspot(t *testing.T, svc *Service, pageID uint, targetPageNo *int, target *uint) epaper.PageHotspot {
	t.Helper()
	h, err := svc.CreateHotspot(context.Background(), pageID, HotspotInput{
		RelationKind:    epaper.RelationNext,
		Rect:            epaper.Rect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2},
		TargetPageNo:    targetPageNo,
		TargetHotspotID: target,
	})
	if err != nil {
		t.Fatalf("CreateHotspot(page %d): %v", pageID, err)
	}
	return h
}

func hotspotsOf(t *testing.T, st *store.MemoryStore, editionID uint) map[uint]epaper.PageHotspot {
	t.Helper()
	out := map[uint]epaper.PageHotspot{}
	err := st.Transaction(context.Background(), func(tx store.Tx) error {
		hs, err := tx.FindHotspots(store.HotspotFilter{EditionID: &editionID})
		for _, h := range hs {
			out[h.ID] = h
		}
		return err
	})
	if err != nil {
		t.Fatalf("FindHotspots: %v", err)
	}
	return out
}

func pageNos(t *testing.T, st *store.MemoryStore, editionID uint) map[uint]int {
	t.Helper()
	out := map[uint]int{}
	err := st.Transaction(context.Background(), func(tx store.Tx) error {
		ps, err := tx.ListPages(editionID)
		for _, p := range ps {
			out[p.ID] = p.PageNo
		}
		return err
	})
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	return out
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Fields
}

func intp(v int) *int    { return &v }
func uintp(v uint) *uint { return &v }
