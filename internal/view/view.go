// Package view projects catalog and collection state into the ordered list a
// client displays. The projection is a pure function of its inputs and is
// recomputed whenever the search text, filter criteria, record map, or
// catalog changes.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/angelarchive/archive-server/internal/domain"
)

// Ownership narrows the list by owned quantity.
type Ownership string

// Ownership filter values.
const (
	OwnershipAll     Ownership = "all"
	OwnershipOwned   Ownership = "owned"
	OwnershipUnowned Ownership = "unowned"
)

// SortKey selects the list ordering.
type SortKey string

// Sort orderings. Name comparisons are locale-aware; count ties keep the
// incoming catalog order (the sort is stable).
const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortCountDesc SortKey = "count-desc"
	SortCountAsc  SortKey = "count-asc"
)

// StatusFlags selects records by bookmark status. Requested flags combine
// disjunctively: an entry matches if it carries at least one of them.
type StatusFlags struct {
	Favorite       bool
	InSearchOf     bool
	WillingToTrade bool
}

// Any reports whether at least one status flag is requested.
func (f StatusFlags) Any() bool {
	return f.Favorite || f.InSearchOf || f.WillingToTrade
}

// Criteria is the full set of filter/sort/search inputs.
// The zero value means: everything, sorted by name ascending.
type Criteria struct {
	Ownership Ownership
	SeriesIDs []string // empty = no series restriction
	Status    StatusFlags
	Sort      SortKey
	Search    string
}

// Entry pairs an angel with the viewing user's record for it. Angels without
// a persisted record carry the zero record.
type Entry struct {
	Angel  domain.Angel
	Record domain.CollectionRecord
}

// Project filters and orders the catalog for display.
func Project(angels []domain.Angel, records map[string]domain.CollectionRecord, c Criteria) []Entry {
	// The search text is matched literally; whitespace is significant.
	search := strings.ToLower(c.Search)

	var series map[string]bool
	if len(c.SeriesIDs) > 0 {
		series = make(map[string]bool, len(c.SeriesIDs))
		for _, id := range c.SeriesIDs {
			series[id] = true
		}
	}

	entries := make([]Entry, 0, len(angels))
	for _, angel := range angels {
		if search != "" && !strings.Contains(strings.ToLower(angel.Name), search) {
			continue
		}

		rec := records[angel.ID]

		switch c.Ownership {
		case OwnershipOwned:
			if rec.Count <= 0 {
				continue
			}
		case OwnershipUnowned:
			if rec.Count > 0 {
				continue
			}
		}

		if series != nil && !series[angel.SeriesID] {
			continue
		}

		if c.Status.Any() && !matchesStatus(rec, c.Status) {
			continue
		}

		entries = append(entries, Entry{Angel: angel, Record: rec})
	}

	sortEntries(entries, c.Sort)
	return entries
}

// matchesStatus reports whether the record carries any requested flag.
func matchesStatus(rec domain.CollectionRecord, f StatusFlags) bool {
	if f.Favorite && rec.IsFavorite {
		return true
	}
	if f.InSearchOf && rec.InSearchOf {
		return true
	}
	if f.WillingToTrade && rec.WillingToTrade {
		return true
	}
	return false
}

func sortEntries(entries []Entry, key SortKey) {
	switch key {
	case SortNameDesc:
		coll := newCollator()
		sort.SliceStable(entries, func(i, j int) bool {
			return coll.CompareString(entries[i].Angel.Name, entries[j].Angel.Name) > 0
		})
	case SortCountDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Record.Count > entries[j].Record.Count
		})
	case SortCountAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Record.Count < entries[j].Record.Count
		})
	default: // SortNameAsc
		coll := newCollator()
		sort.SliceStable(entries, func(i, j int) bool {
			return coll.CompareString(entries[i].Angel.Name, entries[j].Angel.Name) < 0
		})
	}
}

// newCollator builds a case-insensitive, locale-aware collator. Angel names
// are latin-script product names; the undetermined locale handles accented
// characters without tying the sort to a user locale.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}
