package editions

import (
	"fmt"
	"sort"

	"epaper-app/internal/metrics"
	"epaper-app/internal/store"
)

// retargetPage points every hotspot of the edition that targeted oldNo at newNo.
func retargetPage(tx store.Tx, editionID uint, oldNo, newNo int) (int64, error) {
	if oldNo == newNo {
		return 0, nil
	}
	n, err := tx.UpdateHotspots(
		store.HotspotFilter{EditionID: &editionID, TargetPageNos: []int{oldNo}},
		store.HotspotPatch{TargetPageNo: store.Value(newNo)},
	)
	if err != nil {
		return 0, fmt.Errorf("retarget page %d to %d: %w", oldNo, newNo, err)
	}
	metrics.TargetsRemapped.Add(float64(n))
	return n, nil
}

// remapTargets rewrites target_page_no for a whole reorder. Affected hotspots
// are grouped by their old value from a single read and updated by id, so a
// hotspot moved from 1 to 2 is never picked up again by the 2 to 3 rewrite.
func remapTargets(tx store.Tx, editionID uint, remap map[int]int) (int64, error) {
	olds := make([]int, 0, len(remap))
	for oldNo, newNo := range remap {
		if oldNo != newNo {
			olds = append(olds, oldNo)
		}
	}
	if len(olds) == 0 {
		return 0, nil
	}
	sort.Ints(olds)

	hotspots, err := tx.FindHotspots(store.HotspotFilter{EditionID: &editionID, TargetPageNos: olds})
	if err != nil {
		return 0, fmt.Errorf("load targeting hotspots: %w", err)
	}
	byOld := map[int][]uint{}
	for _, h := range hotspots {
		byOld[*h.TargetPageNo] = append(byOld[*h.TargetPageNo], h.ID)
	}

	var total int64
	for _, oldNo := range olds {
		ids := byOld[oldNo]
		if len(ids) == 0 {
			continue
		}
		n, err := tx.UpdateHotspots(
			store.HotspotFilter{IDs: ids},
			store.HotspotPatch{TargetPageNo: store.Value(remap[oldNo])},
		)
		if err != nil {
			return total, fmt.Errorf("remap target page %d: %w", oldNo, err)
		}
		total += n
	}
	metrics.TargetsRemapped.Add(float64(total))
	return total, nil
}
