package editions

import (
	"context"
	"math/rand"
	"testing"

	"epaper-app/internal/domain/epaper"
)

// checkPairs verifies that links form strict pairs: linked ids are mutual, a
// target is always the linked partner, and every pair has a direction.
func checkPairs(t *testing.T, hs map[uint]epaper.PageHotspot) {
	t.Helper()
	for id, h := range hs {
		if h.TargetHotspotID != nil {
			if h.LinkedHotspotID == nil || *h.LinkedHotspotID != *h.TargetHotspotID {
				t.Fatalf("hotspot %d targets %d but is linked to %v", id, *h.TargetHotspotID, h.LinkedHotspotID)
			}
			target, ok := hs[*h.TargetHotspotID]
			if !ok {
				t.Fatalf("hotspot %d targets missing hotspot %d", id, *h.TargetHotspotID)
			}
			if target.LinkedHotspotID == nil || *target.LinkedHotspotID != id {
				t.Fatalf("hotspot %d targets %d whose linked id is %v", id, target.ID, target.LinkedHotspotID)
			}
		}
		if h.LinkedHotspotID != nil {
			partner, ok := hs[*h.LinkedHotspotID]
			if !ok {
				t.Fatalf("hotspot %d linked to missing hotspot %d", id, *h.LinkedHotspotID)
			}
			if partner.LinkedHotspotID == nil || *partner.LinkedHotspotID != id {
				t.Fatalf("hotspot %d linked to %d, which is linked to %v", id, partner.ID, partner.LinkedHotspotID)
			}
			forward := h.TargetHotspotID != nil && *h.TargetHotspotID == partner.ID
			backward := partner.TargetHotspotID != nil && *partner.TargetHotspotID == id
			if !forward && !backward {
				t.Fatalf("pair %d/%d has no direction", id, partner.ID)
			}
		}
	}
}

func TestLinkPairsSurviveRandomEdits(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		svc, st := newTestService(t, Options{})
		ctx := context.Background()
		e, pages := seedPages(t, svc, 3)
		rng := rand.New(rand.NewSource(seed))

		var ids []uint
		pick := func(except uint) *uint {
			if len(ids) == 0 || rng.Intn(3) == 0 {
				return nil
			}
			id := ids[rng.Intn(len(ids))]
			if id == except {
				return nil
			}
			return &id
		}
		remove := func(gone map[uint]bool) {
			kept := ids[:0]
			for _, id := range ids {
				if !gone[id] {
					kept = append(kept, id)
				}
			}
			ids = kept
		}

		for step := 0; step < 300; step++ {
			switch op := rng.Intn(10); {
			case op < 4 || len(ids) == 0:
				page := pages[rng.Intn(len(pages))]
				h := mustHotspot(t, svc, page.ID, nil, pick(0))
				ids = append(ids, h.ID)
			case op < 7:
				id := ids[rng.Intn(len(ids))]
				_, err := svc.UpdateHotspot(ctx, id, HotspotInput{
					RelationKind:    epaper.RelationPrevious,
					Rect:            epaper.Rect{X: 0.5, Y: 0.5, W: 0.1, H: 0.1},
					TargetHotspotID: pick(id),
				})
				if err != nil {
					t.Fatalf("seed %d step %d: UpdateHotspot: %v", seed, step, err)
				}
			case op < 9:
				id := ids[rng.Intn(len(ids))]
				if err := svc.DeleteHotspot(ctx, id); err != nil {
					t.Fatalf("seed %d step %d: DeleteHotspot: %v", seed, step, err)
				}
				remove(map[uint]bool{id: true})
			default:
				page := pages[rng.Intn(len(pages))]
				var onPage []uint
				for _, h := range hotspotsOf(t, st, e.ID) {
					if h.PageID == page.ID && len(onPage) < 3 {
						onPage = append(onPage, h.ID)
					}
				}
				if len(onPage) == 0 {
					continue
				}
				if _, err := svc.BulkDeleteHotspots(ctx, admin, page.ID, onPage); err != nil {
					t.Fatalf("seed %d step %d: BulkDeleteHotspots: %v", seed, step, err)
				}
				gone := map[uint]bool{}
				for _, id := range onPage {
					gone[id] = true
				}
				remove(gone)
			}
			checkPairs(t, hotspotsOf(t, st, e.ID))
		}
	}
}

func TestRelinkStealsTarget(t *testing.T) {
	svc, st := newTestService(t, Options{})
	e, pages := seedPages(t, svc, 2)

	c := mustHotspot(t, svc, pages[1].ID, nil, nil)
	a := mustHotspot(t, svc, pages[0].ID, nil, uintp(c.ID))
	b := mustHotspot(t, svc, pages[0].ID, nil, uintp(c.ID))

	hs := hotspotsOf(t, st, e.ID)
	if hs[a.ID].TargetHotspotID != nil || hs[a.ID].LinkedHotspotID != nil {
		t.Fatalf("previous source still linked: %+v", hs[a.ID])
	}
	if *hs[b.ID].TargetHotspotID != c.ID || *hs[c.ID].LinkedHotspotID != b.ID {
		t.Fatalf("new link not established: b=%+v c=%+v", hs[b.ID], hs[c.ID])
	}
	if got := *hs[b.ID].TargetPageNo; got != 2 {
		t.Fatalf("target page derived as %d, want 2", got)
	}
	checkPairs(t, hs)
}

func TestMutualLinkSurvivesOneSideUnlinking(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 2)

	a := mustHotspot(t, svc, pages[0].ID, nil, nil)
	b := mustHotspot(t, svc, pages[1].ID, nil, uintp(a.ID))
	if _, err := svc.UpdateHotspot(ctx, a.ID, HotspotInput{
		RelationKind: epaper.RelationNext, Rect: a.Rect(), TargetHotspotID: uintp(b.ID),
	}); err != nil {
		t.Fatalf("UpdateHotspot: %v", err)
	}
	checkPairs(t, hotspotsOf(t, st, e.ID))

	// Editing a without a target keeps b's link to a.
	if _, err := svc.UpdateHotspot(ctx, a.ID, HotspotInput{RelationKind: epaper.RelationNext, Rect: a.Rect()}); err != nil {
		t.Fatalf("UpdateHotspot: %v", err)
	}
	hs := hotspotsOf(t, st, e.ID)
	checkPairs(t, hs)
	if hs[a.ID].TargetHotspotID != nil {
		t.Fatal("a still has a target")
	}
	if *hs[b.ID].TargetHotspotID != a.ID || *hs[a.ID].LinkedHotspotID != b.ID {
		t.Fatalf("b lost its link: a=%+v b=%+v", hs[a.ID], hs[b.ID])
	}
}

func TestUnlinkIsIdempotent(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 2)

	b := mustHotspot(t, svc, pages[1].ID, nil, nil)
	a := mustHotspot(t, svc, pages[0].ID, nil, uintp(b.ID))

	var states []map[uint]epaper.PageHotspot
	for i := 0; i < 2; i++ {
		if _, err := svc.UpdateHotspot(ctx, a.ID, HotspotInput{RelationKind: epaper.RelationNext, Rect: a.Rect()}); err != nil {
			t.Fatalf("UpdateHotspot #%d: %v", i, err)
		}
		states = append(states, hotspotsOf(t, st, e.ID))
	}
	for _, hs := range states {
		if hs[a.ID].TargetHotspotID != nil || hs[a.ID].LinkedHotspotID != nil {
			t.Fatalf("a still linked: %+v", hs[a.ID])
		}
		if hs[b.ID].LinkedHotspotID != nil {
			t.Fatalf("b still linked back: %+v", hs[b.ID])
		}
	}
}

func TestDeleteHotspotClearsEveryReference(t *testing.T) {
	svc, st := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 2)

	target := mustHotspot(t, svc, pages[1].ID, nil, nil)
	h := mustHotspot(t, svc, pages[0].ID, nil, uintp(target.ID))
	source := mustHotspot(t, svc, pages[1].ID, nil, nil)
	// source -> h steals h from its pair with target.
	if _, err := svc.UpdateHotspot(ctx, source.ID, HotspotInput{
		RelationKind: epaper.RelationNext, Rect: source.Rect(), TargetHotspotID: uintp(h.ID),
	}); err != nil {
		t.Fatalf("UpdateHotspot: %v", err)
	}

	if err := svc.DeleteHotspot(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHotspot: %v", err)
	}
	for id, other := range hotspotsOf(t, st, e.ID) {
		if (other.TargetHotspotID != nil && *other.TargetHotspotID == h.ID) ||
			(other.LinkedHotspotID != nil && *other.LinkedHotspotID == h.ID) {
			t.Fatalf("hotspot %d still references deleted %d: %+v", id, h.ID, other)
		}
	}
}
