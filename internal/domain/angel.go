// Package domain contains the core data models for the Angel Archive server.
package domain

// Angel is a single collectible figure in the shared catalog.
// The three image fields are storage-relative paths; handlers expand them
// to full CDN URLs before sending to clients.
type Angel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SeriesID     string `json:"series_id"`
	CardNumber   int    `json:"card_number,omitempty"`
	Image        string `json:"image"`         // full-color, shown when owned
	ImageBW      string `json:"image_bw"`      // monochrome, shown when unowned
	ImageOpacity string `json:"image_opacity"` // translucent, shown on hover
}

// Series groups angels released together (e.g. "Animal Series 1").
type Series struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
