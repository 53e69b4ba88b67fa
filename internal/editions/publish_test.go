package editions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"epaper-app/internal/domain/access"
	"epaper-app/internal/domain/epaper"
)

func TestPublishRequiresContiguousPages(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	e, pages := seedPages(t, svc, 3)

	if err := svc.UpdatePage(ctx, pages[1].ID, 5, nil); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	r, err := svc.EvaluatePublishReadiness(ctx, e.ID)
	if err != nil {
		t.Fatalf("EvaluatePublishReadiness: %v", err)
	}
	want := "Page numbering has gaps: missing pages 2, 4."
	if r.IsReady || len(r.Blockers) != 1 || r.Blockers[0] != want {
		t.Fatalf("readiness = %+v", r)
	}

	_, err = svc.Publish(ctx, e.ID)
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Blockers) != 1 || ve.Fields["edition_id"][0] != want {
		t.Fatalf("Publish error = %v", err)
	}
	if list, _ := svc.ListEditionsForDate(ctx, "2026-03-04"); list[0].Status != epaper.StatusDraft {
		t.Fatalf("status changed to %s", list[0].Status)
	}

	if err := svc.ReorderPages(ctx, e.ID, []uint{pages[0].ID, pages[1].ID, pages[2].ID}); err != nil {
		t.Fatalf("ReorderPages: %v", err)
	}
	published, err := svc.Publish(ctx, e.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !published.IsPublished() || published.PublishedAt == nil {
		t.Fatalf("edition not published: %+v", published)
	}

	draft, err := svc.Unpublish(ctx, e.ID)
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if draft.Status != epaper.StatusDraft || draft.PublishedAt != nil {
		t.Fatalf("edition not draft: %+v", draft)
	}
}

func TestPublishEmptyEdition(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	e, err := svc.CreateEdition(ctx, "2026-03-05", "", nil)
	if err != nil {
		t.Fatalf("CreateEdition: %v", err)
	}
	_, err = svc.Publish(ctx, e.ID)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Blockers[0] != "Add at least one page before publishing." {
		t.Fatalf("Publish error = %v", err)
	}
	if _, err := svc.Publish(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditionsForDate(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	if _, err := svc.CreateEdition(ctx, "04/03/2026", "", nil); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	first, created, err := svc.FindOrCreateEditionForDate(ctx, "2026-03-06", nil)
	if err != nil || !created {
		t.Fatalf("FindOrCreateEditionForDate = %v, %v", created, err)
	}
	again, created, err := svc.FindOrCreateEditionForDate(ctx, "2026-03-06", nil)
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("second call created=%v id=%d err=%v", created, again.ID, err)
	}
	second, err := svc.CreateEdition(ctx, "2026-03-06", "Evening", nil)
	if err != nil {
		t.Fatalf("CreateEdition: %v", err)
	}

	list, err := svc.ListEditionsForDate(ctx, "2026-03-06")
	if err != nil || len(list) != 2 {
		t.Fatalf("ListEditionsForDate = %d, %v", len(list), err)
	}
	if list[0].ID != second.ID || list[0].PagesCount != 0 || list[0].Readiness.IsReady {
		t.Fatalf("unexpected first summary %+v", list[0])
	}
}

func TestDeleteEditionNeedsCapability(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	e, _ := seedPages(t, svc, 2)

	operator := access.Actor{UserID: 2, Role: access.RoleOperator}
	if err := svc.DeleteEdition(ctx, operator, e.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteEdition(ctx, admin, e.ID); err != nil {
		t.Fatalf("DeleteEdition: %v", err)
	}
	if _, err := svc.ListEditionPages(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("edition still readable: %v", err)
	}
}

func TestCreateEditionNameCountsCharacters(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	name := strings.Repeat("ü", 150)

	e, err := svc.CreateEdition(ctx, "2026-03-05", name, nil)
	if err != nil {
		t.Fatalf("CreateEdition(150 runes): %v", err)
	}
	if e.Name != name {
		t.Fatalf("name = %q", e.Name)
	}
	_, err = svc.CreateEdition(ctx, "2026-03-05", name+"ü", nil)
	if got := validationFields(t, err)["name"]; len(got) == 0 || got[0] != "Name may not be greater than 150 characters." {
		t.Fatalf("unexpected errors %v", got)
	}
}
