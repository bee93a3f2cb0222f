// Package search provides full-text catalog search using Bleve, with fuzzy
// matching and prefix queries so typos and partial names still find the
// right angel.
package search

import "github.com/angelarchive/archive-server/internal/domain"

// Document is the indexed representation of a catalog angel.
//
// The series name is denormalized into the document so "winter" finds every
// angel in the Winter Series with a single query.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SeriesID   string `json:"series_id"`
	SeriesName string `json:"series_name,omitempty"`
	CardNumber int    `json:"card_number,omitempty"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized), but the index
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":        d.ID,
		"name":      d.Name,
		"series_id": d.SeriesID,
	}

	if d.SeriesName != "" {
		m["series_name"] = d.SeriesName
	}
	if d.CardNumber > 0 {
		m["card_number"] = d.CardNumber
	}

	return m
}

// AngelToDocument converts a catalog angel to a search document. The series
// name is passed by the caller because search shouldn't depend on store.
func AngelToDocument(angel *domain.Angel, seriesName string) *Document {
	return &Document{
		ID:         angel.ID,
		Name:       angel.Name,
		SeriesID:   angel.SeriesID,
		SeriesName: seriesName,
		CardNumber: angel.CardNumber,
	}
}
