// Package export builds downloadable snapshots of a user's collection in
// JSON or CSV form, and computes the per-user export cooldown.
package export

import (
	"encoding/csv"
	"encoding/json/v2"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/angelarchive/archive-server/internal/domain"
)

// Format is a supported export format.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string. An empty string defaults to JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Filename returns the download filename for a user's export.
func Filename(userID string, format Format) string {
	return fmt.Sprintf("angel_archive_export_%s.%s", userID, format)
}

// Item is one exported collection row, joined with its catalog angel.
type Item struct {
	AngelID        string `json:"angel_id"`
	Name           string `json:"name"`
	SeriesName     string `json:"series_name,omitempty"`
	CardNumber     int    `json:"card_number,omitempty"`
	Count          int    `json:"count"`
	TradeCount     int    `json:"trade_count"`
	IsFavorite     bool   `json:"is_favorite"`
	InSearchOf     bool   `json:"in_search_of"`
	WillingToTrade bool   `json:"willing_to_trade"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// Summary aggregates the collection for the export header.
type Summary struct {
	CatalogSize    int `json:"catalog_size"`
	UniqueOwned    int `json:"unique_owned"`
	TotalCount     int `json:"total_count"`
	Favorites      int `json:"favorites"`
	InSearchOf     int `json:"in_search_of"`
	WillingToTrade int `json:"willing_to_trade"`
}

// Export is a complete collection snapshot.
type Export struct {
	Username    string    `json:"username"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Items       []Item    `json:"items"`
}

// Build joins the user's records with the catalog into an export snapshot.
// Items follow catalog order; angels the user has no record for are skipped.
func Build(user *domain.User, angels []*domain.Angel, seriesByID map[string]*domain.Series, records map[string]domain.CollectionRecord) *Export {
	ex := &Export{
		Username:    user.Username,
		GeneratedAt: time.Now().UTC(),
		Summary:     Summary{CatalogSize: len(angels)},
	}

	for _, angel := range angels {
		rec, ok := records[angel.ID]
		if !ok {
			continue
		}

		item := Item{
			AngelID:        angel.ID,
			Name:           angel.Name,
			CardNumber:     angel.CardNumber,
			Count:          rec.Count,
			TradeCount:     rec.TradeCount,
			IsFavorite:     rec.IsFavorite,
			InSearchOf:     rec.InSearchOf,
			WillingToTrade: rec.WillingToTrade,
		}
		if sr, ok := seriesByID[angel.SeriesID]; ok {
			item.SeriesName = sr.Name
		}
		if !rec.UpdatedAt.IsZero() {
			item.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
		}
		ex.Items = append(ex.Items, item)

		if rec.Count > 0 {
			ex.Summary.UniqueOwned++
		}
		ex.Summary.TotalCount += rec.Count
		if rec.IsFavorite {
			ex.Summary.Favorites++
		}
		if rec.InSearchOf {
			ex.Summary.InSearchOf++
		}
		if rec.WillingToTrade {
			ex.Summary.WillingToTrade++
		}
	}

	return ex
}

// Write renders the export in the given format.
func (e *Export) Write(w io.Writer, format Format) error {
	if format == FormatCSV {
		return e.writeCSV(w)
	}
	return json.MarshalWrite(w, e)
}

var csvHeader = []string{
	"angel_id", "name", "series_name", "card_number",
	"count", "trade_count", "is_favorite", "in_search_of", "willing_to_trade",
	"updated_at",
}

func (e *Export) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range e.Items {
		row := []string{
			item.AngelID,
			item.Name,
			item.SeriesName,
			strconv.Itoa(item.CardNumber),
			strconv.Itoa(item.Count),
			strconv.Itoa(item.TradeCount),
			strconv.FormatBool(item.IsFavorite),
			strconv.FormatBool(item.InSearchOf),
			strconv.FormatBool(item.WillingToTrade),
			item.UpdatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CooldownStatus reports whether a user may export right now.
type CooldownStatus struct {
	CanExport bool `json:"canExport"`
	// TimeRemaining is minutes until the next allowed export, rounded up.
	// Zero when CanExport is true.
	TimeRemaining int `json:"timeRemaining"`
}

// ComputeCooldown derives the cooldown status from the user's last export
// stamp. A zero lastExport means the user has never exported.
func ComputeCooldown(lastExport time.Time, cooldown time.Duration, now time.Time) CooldownStatus {
	if lastExport.IsZero() {
		return CooldownStatus{CanExport: true}
	}

	readyAt := lastExport.Add(cooldown)
	if !now.Before(readyAt) {
		return CooldownStatus{CanExport: true}
	}

	remaining := readyAt.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return CooldownStatus{CanExport: false, TimeRemaining: minutes}
}
