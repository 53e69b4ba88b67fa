package epaper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxListed caps how many page numbers a blocker message spells out.
const maxListed = 8

// Readiness is the outcome of checking an edition's page numbering before publishing.
type Readiness struct {
	IsReady  bool     `json:"is_ready"`
	Blockers []string `json:"blockers"`
}

// EvaluateReadiness checks that pageNumbers is non-empty, has no duplicates and
// covers 1..max without gaps.
func EvaluateReadiness(pageNumbers []int) Readiness {
	if len(pageNumbers) == 0 {
		return Readiness{Blockers: []string{"Add at least one page before publishing."}}
	}

	blockers := []string{}

	counts := make(map[int]int, len(pageNumbers))
	for _, n := range pageNumbers {
		counts[n]++
	}

	unique := make([]int, 0, len(counts))
	var duplicates []int
	for n, c := range counts {
		unique = append(unique, n)
		if c > 1 {
			duplicates = append(duplicates, n)
		}
	}
	sort.Ints(unique)
	sort.Ints(duplicates)

	if len(duplicates) > 0 {
		blockers = append(blockers, fmt.Sprintf(
			"Duplicate page numbers found: %s. Resolve duplicates before publishing.",
			listNumbers(duplicates),
		))
	}

	var gaps []int
	maxNo := unique[len(unique)-1]
	for n := 1; n <= maxNo; n++ {
		if counts[n] == 0 {
			gaps = append(gaps, n)
		}
	}

	switch {
	case len(gaps) == 1:
		blockers = append(blockers, fmt.Sprintf("Page numbering has a gap: missing page %d.", gaps[0]))
	case len(gaps) > 1:
		blockers = append(blockers, fmt.Sprintf("Page numbering has gaps: missing pages %s.", listNumbers(gaps)))
	}

	return Readiness{IsReady: len(blockers) == 0, Blockers: blockers}
}

func listNumbers(nums []int) string {
	shown := nums
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	parts := make([]string, len(shown))
	for i, n := range shown {
		parts[i] = strconv.Itoa(n)
	}
	out := strings.Join(parts, ", ")
	if rest := len(nums) - len(shown); rest > 0 {
		out += fmt.Sprintf(" ...and %d more", rest)
	}
	return out
}
