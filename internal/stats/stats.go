// Package stats turns the raw record log into per-activity shares.
package stats

import (
	"fmt"
	"sort"

	"trastes/internal/core"
)

// Share is one label's part of a group.
type Share struct {
	Label   string
	Count   int
	Percent float64
}

// PercentLabel formats Percent with one decimal, e.g. "62.5%".
func (s Share) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", s.Percent)
}

// Breakdown is the split of one activity over the people who did it.
type Breakdown struct {
	Activity string
	Total    int
	Shares   []Share
}

// ByPerson splits the records of one activity by person. It reports false
// when no record matches.
func ByPerson(records []core.Record, activity string) (Breakdown, bool) {
	var labels []string
	for _, r := range records {
		if r.Activity == activity {
			labels = append(labels, r.Person)
		}
	}
	if len(labels) == 0 {
		return Breakdown{Activity: activity}, false
	}
	return Breakdown{Activity: activity, Total: len(labels), Shares: shares(labels)}, true
}

// ByActivity returns one breakdown per activity that has records. Activities
// listed in order come first in that order; others follow in order of first
// appearance.
func ByActivity(records []core.Record, order []string) []Breakdown {
	seen := make(map[string]bool, len(order))
	var names []string
	present := make(map[string]bool)
	for _, r := range records {
		present[r.Activity] = true
	}
	for _, a := range order {
		if present[a] && !seen[a] {
			seen[a] = true
			names = append(names, a)
		}
	}
	for _, r := range records {
		if !seen[r.Activity] {
			seen[r.Activity] = true
			names = append(names, r.Activity)
		}
	}

	out := make([]Breakdown, 0, len(names))
	for _, a := range names {
		if b, ok := ByPerson(records, a); ok {
			out = append(out, b)
		}
	}
	return out
}

// Totals counts records per person across all activities.
func Totals(records []core.Record) []Share {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = r.Person
	}
	return shares(labels)
}

// Last returns the n most recent records, newest first. n <= 0 returns
// all of them.
func Last(records []core.Record, n int) []core.Record {
	if n <= 0 || n > len(records) {
		n = len(records)
	}
	out := make([]core.Record, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out
}

// shares counts labels, ordered by count descending and then by first
// appearance.
func shares(labels []string) []Share {
	if len(labels) == 0 {
		return nil
	}
	index := map[string]int{}
	var out []Share
	for _, l := range labels {
		i, ok := index[l]
		if !ok {
			i = len(out)
			index[l] = i
			out = append(out, Share{Label: l})
		}
		out[i].Count++
	}
	total := float64(len(labels))
	for i := range out {
		out[i].Percent = float64(out[i].Count) / total * 100
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
