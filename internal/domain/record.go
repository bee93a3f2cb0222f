package domain

import "time"

// CollectionRecord is one user's ownership and status state for one angel.
// There is at most one record per (user, angel) pair.
//
// Field consistency (trade count bounded by count, the willing-to-trade /
// trade-count pairing, the collapse on count zero) is maintained by the
// reconcile package, which is the only writer of these fields. Storage
// persists records verbatim.
type CollectionRecord struct {
	AngelID        string    `json:"angel_id"`
	Count          int       `json:"count"`
	TradeCount     int       `json:"trade_count"`
	IsFavorite     bool      `json:"is_favorite"`
	InSearchOf     bool      `json:"in_search_of"`
	WillingToTrade bool      `json:"willing_to_trade"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// IsAbsent reports whether the record carries no information beyond defaults.
// Absent records are deleted from storage rather than stored as zero rows.
func (r CollectionRecord) IsAbsent() bool {
	return r.Count == 0 &&
		r.TradeCount == 0 &&
		!r.IsFavorite &&
		!r.InSearchOf &&
		!r.WillingToTrade
}

// Owned reports whether the user owns at least one copy.
func (r CollectionRecord) Owned() bool {
	return r.Count > 0
}
