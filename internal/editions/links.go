package editions

import (
	"errors"
	"fmt"

	"epaper-app/internal/domain/epaper"
	"epaper-app/internal/store"
)

// Hotspot links are strict pairs. For a pair (A, B) where A targets B:
//
//	A.target = B, A.linked = B, B.linked = A
//
// and B.target is either empty or A. Every step below is a conditional update
// keyed on the current column value, so replaying syncLink is harmless.

// syncLink makes source link to target (or to nothing when target is nil),
// detaching every other hotspot that claimed either side. Unlinking does not
// always clear both of source's columns: when the partner still targets
// source, source keeps linked_hotspot_id so the pair stays symmetric.
func syncLink(tx store.Tx, source epaper.PageHotspot, target *uint) error {
	if target == nil {
		return unlink(tx, source)
	}
	t := *target
	s := source.ID

	// Nobody but the new target may stay linked to, or point at, the source.
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{LinkedHotspotID: &s, ExcludeID: &t},
		store.HotspotPatch{LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach source backlinks: %w", err)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{TargetHotspotID: &s, ExcludeID: &t},
		store.HotspotPatch{TargetHotspotID: store.Null[uint](), LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach hotspots targeting source: %w", err)
	}

	// The target can only be claimed by one linker.
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{TargetHotspotID: &t, ExcludeID: &s},
		store.HotspotPatch{TargetHotspotID: store.Null[uint](), LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach competing sources: %w", err)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{LinkedHotspotID: &t, ExcludeID: &s},
		store.HotspotPatch{LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach target's previous partner: %w", err)
	}

	th, err := tx.GetHotspot(t)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Existence is the caller's concern; the pair below is still written.
	case err != nil:
		return err
	case th.TargetHotspotID != nil && *th.TargetHotspotID != s:
		// The target leaves the pair it was the source of.
		if _, err := tx.UpdateHotspots(
			store.HotspotFilter{IDs: []uint{t}},
			store.HotspotPatch{TargetHotspotID: store.Null[uint]()},
		); err != nil {
			return fmt.Errorf("detach target's own link: %w", err)
		}
	}

	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{IDs: []uint{s}},
		store.HotspotPatch{TargetHotspotID: store.Value(t), LinkedHotspotID: store.Value(t)},
	); err != nil {
		return fmt.Errorf("link source: %w", err)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{IDs: []uint{t}},
		store.HotspotPatch{LinkedHotspotID: store.Value(s)},
	); err != nil {
		return fmt.Errorf("link target: %w", err)
	}
	return nil
}

// unlink clears source's own target. A partner that still points at source
// keeps the pair alive in that direction.
func unlink(tx store.Tx, source epaper.PageHotspot) error {
	s := source.ID

	var keep *uint
	if source.LinkedHotspotID != nil {
		p, err := tx.GetHotspot(*source.LinkedHotspotID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil && p.TargetHotspotID != nil && *p.TargetHotspotID == s {
			keep = &p.ID
		}
	}

	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{LinkedHotspotID: &s, ExcludeID: keep},
		store.HotspotPatch{LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach source backlinks: %w", err)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{TargetHotspotID: &s, ExcludeID: keep},
		store.HotspotPatch{TargetHotspotID: store.Null[uint](), LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("detach hotspots targeting source: %w", err)
	}

	linked := store.Null[uint]()
	if keep != nil {
		linked = store.Value(*keep)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{IDs: []uint{s}},
		store.HotspotPatch{TargetHotspotID: store.Null[uint](), LinkedHotspotID: linked},
	); err != nil {
		return fmt.Errorf("unlink source: %w", err)
	}
	return nil
}

// detachAndDelete removes every reference to h held by other hotspots, then h.
func detachAndDelete(tx store.Tx, h epaper.PageHotspot) error {
	id := h.ID
	if h.TargetHotspotID != nil {
		if _, err := tx.UpdateHotspots(
			store.HotspotFilter{IDs: []uint{*h.TargetHotspotID}, LinkedHotspotID: &id},
			store.HotspotPatch{LinkedHotspotID: store.Null[uint]()},
		); err != nil {
			return fmt.Errorf("clear target backlink: %w", err)
		}
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{TargetHotspotID: &id},
		store.HotspotPatch{TargetHotspotID: store.Null[uint](), LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("clear incoming targets: %w", err)
	}
	if _, err := tx.UpdateHotspots(
		store.HotspotFilter{LinkedHotspotID: &id},
		store.HotspotPatch{LinkedHotspotID: store.Null[uint]()},
	); err != nil {
		return fmt.Errorf("clear incoming links: %w", err)
	}
	return tx.DeleteHotspot(id)
}
