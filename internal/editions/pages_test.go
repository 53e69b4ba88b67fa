package editions

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"epaper-app/internal/domain/media"
	"epaper-app/internal/store"
)

func TestReorderPagesRemapsTargets(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 5)

	// One hotspot per page number, all on the first page.
	targetOf := map[uint]uint{}
	for _, p := range pages {
		h := mustHotspot(t, svc, pages[0].ID, intp(p.PageNo), nil)
		targetOf[h.ID] = p.ID
	}

	order := []uint{pages[4].ID, pages[3].ID, pages[2].ID, pages[1].ID, pages[0].ID}
	if err := svc.ReorderPages(ctx, e.ID, order); err != nil {
		t.Fatalf("ReorderPages: %v", err)
	}

	nos := pageNos(t, st, e.ID)
	for i, id := range order {
		if nos[id] != i+1 {
			t.Fatalf("page %d has number %d, want %d", id, nos[id], i+1)
		}
	}
	for id, h := range hotspotsOf(t, st, e.ID) {
		if h.TargetPageNo == nil || *h.TargetPageNo != nos[targetOf[id]] {
			t.Fatalf("hotspot %d targets %v, want %d", id, h.TargetPageNo, nos[targetOf[id]])
		}
	}
}

func TestReorderPagesRandomPermutations(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 12)

	targetOf := map[uint]uint{}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 30; i++ {
		on := pages[rng.Intn(len(pages))]
		to := pages[rng.Intn(len(pages))]
		h := mustHotspot(t, svc, on.ID, intp(to.PageNo), nil)
		targetOf[h.ID] = to.ID
	}

	for round := 0; round < 20; round++ {
		order := make([]uint, len(pages))
		for i, j := range rng.Perm(len(pages)) {
			order[i] = pages[j].ID
		}
		if err := svc.ReorderPages(ctx, e.ID, order); err != nil {
			t.Fatalf("round %d: ReorderPages: %v", round, err)
		}
		nos := pageNos(t, st, e.ID)
		seen := map[int]bool{}
		for i, id := range order {
			if nos[id] != i+1 {
				t.Fatalf("round %d: page %d = %d, want %d", round, id, nos[id], i+1)
			}
			seen[nos[id]] = true
		}
		if len(seen) != len(pages) {
			t.Fatalf("round %d: page numbers not unique: %v", round, nos)
		}
		for id, h := range hotspotsOf(t, st, e.ID) {
			if *h.TargetPageNo != nos[targetOf[id]] {
				t.Fatalf("round %d: hotspot %d targets %d, want %d", round, id, *h.TargetPageNo, nos[targetOf[id]])
			}
		}
	}
}

func TestReorderPagesRejectsBadPayload(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)
	_, otherPages := seedPages(t, svc, 1)

	before := pageNos(t, st, e.ID)
	payloads := map[string][]uint{
		"empty":     {},
		"missing":   {pages[0].ID, pages[1].ID},
		"duplicate": {pages[0].ID, pages[0].ID, pages[1].ID},
		"foreign":   {pages[0].ID, pages[1].ID, otherPages[0].ID},
		"extra":     {pages[0].ID, pages[1].ID, pages[2].ID, otherPages[0].ID},
	}
	for name, payload := range payloads {
		err := svc.ReorderPages(ctx, e.ID, payload)
		fields := validationFields(t, err)
		if got := fields["ordered_page_ids"]; len(got) != 1 || got[0] != "Reorder payload is invalid for this edition." {
			t.Fatalf("%s: unexpected errors %v", name, fields)
		}
		after := pageNos(t, st, e.ID)
		for id, no := range before {
			if after[id] != no {
				t.Fatalf("%s: page %d changed from %d to %d", name, id, no, after[id])
			}
		}
	}
}

func TestReorderPagesTooMany(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxPageNo: 4})
	e, pages := seedPages(t, svc, 4)

	order := []uint{pages[3].ID, pages[2].ID, pages[1].ID, pages[0].ID}
	fields := validationFields(t, svc.ReorderPages(context.Background(), e.ID, order))
	if fields["ordered_page_ids"][0] != "Too many pages to reorder." {
		t.Fatalf("unexpected errors %v", fields)
	}
}

func TestReorderPagesAfterRenumberNearMax(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)

	if err := svc.UpdatePage(ctx, pages[2].ID, 65534, nil); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	h := mustHotspot(t, svc, pages[0].ID, intp(65534), nil)

	order := []uint{pages[2].ID, pages[1].ID, pages[0].ID}
	if err := svc.ReorderPages(ctx, e.ID, order); err != nil {
		t.Fatalf("ReorderPages: %v", err)
	}
	got := pageNos(t, st, e.ID)
	for rank, id := range order {
		if got[id] != rank+1 {
			t.Fatalf("page %d = %d, want %d", id, got[id], rank+1)
		}
	}
	if tp := hotspotsOf(t, st, e.ID)[h.ID].TargetPageNo; tp == nil || *tp != 1 {
		t.Fatalf("target_page_no = %v, want 1", tp)
	}
}

func TestReorderPagesWithoutFreeRange(t *testing.T) {
	svc, st := newTestService(t, Options{MaxPageNo: 8})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)
	for i, no := range []int{8, 5, 2} {
		if err := svc.UpdatePage(ctx, pages[i].ID, no, nil); err != nil {
			t.Fatalf("UpdatePage(%d): %v", no, err)
		}
	}
	before := pageNos(t, st, e.ID)

	order := []uint{pages[1].ID, pages[0].ID, pages[2].ID}
	fields := validationFields(t, svc.ReorderPages(ctx, e.ID, order))
	if fields["ordered_page_ids"][0] != "Current page numbers leave no room to reorder this edition." {
		t.Fatalf("unexpected errors %v", fields)
	}
	after := pageNos(t, st, e.ID)
	for id, no := range before {
		if after[id] != no {
			t.Fatalf("page %d changed from %d to %d", id, no, after[id])
		}
	}
}

func TestUpdatePageRenumberPropagates(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)
	_, otherPages := seedPages(t, svc, 3)

	toThird := mustHotspot(t, svc, pages[0].ID, intp(3), nil)
	toSecond := mustHotspot(t, svc, pages[0].ID, intp(2), nil)
	elsewhere := mustHotspot(t, svc, otherPages[0].ID, intp(3), nil)

	if err := svc.UpdatePage(ctx, pages[2].ID, 7, nil); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	hs := hotspotsOf(t, st, e.ID)
	if got := *hs[toThird.ID].TargetPageNo; got != 7 {
		t.Fatalf("hotspot targeting renumbered page = %d, want 7", got)
	}
	if got := *hs[toSecond.ID].TargetPageNo; got != 2 {
		t.Fatalf("unrelated hotspot changed to %d", got)
	}
	other := hotspotsOf(t, st, otherPages[0].EditionID)
	if got := *other[elsewhere.ID].TargetPageNo; got != 3 {
		t.Fatalf("hotspot in another edition changed to %d", got)
	}
}

func TestUpdatePageDuplicateNumber(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 2)
	h := mustHotspot(t, svc, pages[0].ID, intp(2), nil)

	fields := validationFields(t, svc.UpdatePage(ctx, pages[1].ID, 1, nil))
	if fields["page_no"][0] != "Page 1 already exists in this edition." {
		t.Fatalf("unexpected errors %v", fields)
	}
	if nos := pageNos(t, st, e.ID); nos[pages[1].ID] != 2 {
		t.Fatalf("page number changed to %d", nos[pages[1].ID])
	}
	if got := *hotspotsOf(t, st, e.ID)[h.ID].TargetPageNo; got != 2 {
		t.Fatalf("target changed to %d after failed update", got)
	}
}

func TestUpdatePageUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, pages := seedPages(t, svc, 1)

	fields := validationFields(t, svc.UpdatePage(context.Background(), pages[0].ID, 1, uintp(999)))
	if _, ok := fields["category_id"]; !ok {
		t.Fatalf("expected category_id error, got %v", fields)
	}
}

func TestUpdatePageNotFound(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	if err := svc.UpdatePage(context.Background(), 42, 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterPage(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	e, _ := seedPages(t, svc, 2)

	p, err := svc.RegisterPage(ctx, e.ID, PageInput{PageNo: intp(5), Image: media.PageImage{OriginalPath: "a.jpg"}})
	if err != nil || p.PageNo != 5 {
		t.Fatalf("RegisterPage explicit: %+v, %v", p, err)
	}
	p, err = svc.RegisterPage(ctx, e.ID, PageInput{Image: media.PageImage{OriginalPath: "b.jpg"}})
	if err != nil || p.PageNo != 6 {
		t.Fatalf("RegisterPage append: %+v, %v", p, err)
	}
	_, err = svc.RegisterPage(ctx, e.ID, PageInput{PageNo: intp(2), Image: media.PageImage{OriginalPath: "c.jpg"}})
	if fields := validationFields(t, err); fields["page_no"][0] != "Page 2 already exists in this edition." {
		t.Fatalf("unexpected errors %v", fields)
	}
	_, err = svc.RegisterPage(ctx, e.ID, PageInput{})
	if _, ok := validationFields(t, err)["image_original_path"]; !ok {
		t.Fatalf("expected image path error, got %v", err)
	}
	if _, err := svc.RegisterPage(ctx, 999, PageInput{Image: media.PageImage{OriginalPath: "d.jpg"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	listed, err := svc.ListEditionPages(ctx, e.ID)
	if err != nil || len(listed) != 4 {
		t.Fatalf("ListEditionPages: %d pages, %v", len(listed), err)
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].PageNo >= listed[i].PageNo {
			t.Fatalf("pages out of order: %d before %d", listed[i-1].PageNo, listed[i].PageNo)
		}
	}
}

type failingDeleter struct{ calls int }

func (f *failingDeleter) DeletePageImages(context.Context, media.PageImage) error {
	f.calls++
	return errors.New("bucket unavailable")
}

func TestDeletePageKeepsStaleTargets(t *testing.T) {
	images := &failingDeleter{}
	st := store.NewMemoryStore()
	svc := NewService(st, images, nil, nil, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)

	onDeleted := mustHotspot(t, svc, pages[2].ID, intp(1), nil)
	partner := mustHotspot(t, svc, pages[0].ID, intp(3), uintp(onDeleted.ID))
	stale := mustHotspot(t, svc, pages[1].ID, intp(3), nil)

	if err := svc.DeletePage(ctx, pages[2].ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if images.calls != 1 {
		t.Fatalf("image deleter called %d times", images.calls)
	}

	hs := hotspotsOf(t, st, e.ID)
	if _, ok := hs[onDeleted.ID]; ok {
		t.Fatal("hotspot of deleted page still exists")
	}
	p := hs[partner.ID]
	if p.TargetHotspotID != nil || p.LinkedHotspotID != nil {
		t.Fatalf("partner still linked: target=%v linked=%v", p.TargetHotspotID, p.LinkedHotspotID)
	}
	if got := hs[stale.ID].TargetPageNo; got == nil || *got != 3 {
		t.Fatalf("stale target = %v, want 3 kept", got)
	}

	dangling, err := svc.AuditSoftReferences(ctx)
	if err != nil {
		t.Fatalf("AuditSoftReferences: %v", err)
	}
	found := 0
	for _, d := range dangling {
		if d.HotspotID == stale.ID || d.HotspotID == partner.ID {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("audit found %+v", dangling)
	}
}

func TestDeletePageClearsStaleTargets(t *testing.T) {
	svc, st := newTestService(t, Options{StaleTargetPolicy: StaleTargetsClear})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)
	stale := mustHotspot(t, svc, pages[0].ID, intp(3), nil)
	kept := mustHotspot(t, svc, pages[0].ID, intp(2), nil)

	if err := svc.DeletePage(ctx, pages[2].ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	hs := hotspotsOf(t, st, e.ID)
	if hs[stale.ID].TargetPageNo != nil {
		t.Fatalf("stale target not cleared: %d", *hs[stale.ID].TargetPageNo)
	}
	if *hs[kept.ID].TargetPageNo != 2 {
		t.Fatal("unrelated target changed")
	}
	if dangling, _ := svc.AuditSoftReferences(ctx); len(dangling) != 0 {
		t.Fatalf("audit found %+v", dangling)
	}
	if err := svc.DeletePage(ctx, pages[2].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
