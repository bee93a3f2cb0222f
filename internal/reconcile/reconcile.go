// Package reconcile computes the next valid collection record from a current
// record and a user intent. It is the single writer of record fields: every
// mutation in the system, client or server side, flows through Apply.
//
// The engine is pure. It never touches storage; callers decide between upsert
// and delete by checking IsAbsent on the result.
package reconcile

import "github.com/angelarchive/archive-server/internal/domain"

// Intent is a named state-transition request. The set of intents is closed:
// a type switch over intents is exhaustive.
type Intent interface {
	isIntent()
}

// SetCount sets the owned quantity. Negative values clamp to zero.
type SetCount struct {
	Count int
}

// ToggleFavorite flips the favorite flag. Newly favoriting an unowned angel
// is rejected; un-favoriting is always allowed.
type ToggleFavorite struct{}

// ToggleInSearchOf flips the in-search-of flag. Seeking an angel and offering
// it for trade are mutually exclusive, so turning ISO on clears trade state.
type ToggleInSearchOf struct{}

// ToggleWillingToTrade flips the willing-to-trade flag. Activation always
// resets the trade count to exactly 1, never to the full owned count.
type ToggleWillingToTrade struct{}

// SetTradeCount sets the quantity offered for trade, clamped to [0, Count].
type SetTradeCount struct {
	Count int
}

func (SetCount) isIntent()             {}
func (ToggleFavorite) isIntent()       {}
func (ToggleInSearchOf) isIntent()     {}
func (ToggleWillingToTrade) isIntent() {}
func (SetTradeCount) isIntent()        {}

// Rejection is returned when an intent violates a business rule. The record
// is left unchanged; callers surface the reason as a non-fatal warning.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(reason string) (domain.CollectionRecord, error) {
	return domain.CollectionRecord{}, &Rejection{Reason: reason}
}

// Apply computes the next record for the given intent.
//
// On success the returned record satisfies every invariant:
// 0 <= TradeCount <= Count, WillingToTrade iff TradeCount > 0, and a zero
// count forecloses favorite and trade status. On rejection the current
// record must be kept as-is.
func Apply(cur domain.CollectionRecord, intent Intent) (domain.CollectionRecord, error) {
	next := cur

	switch it := intent.(type) {
	case SetCount:
		next.Count = max(it.Count, 0)
		if next.Count == 0 {
			// Owning nothing forecloses trade and favorite status.
			next.WillingToTrade = false
			next.TradeCount = 0
			next.IsFavorite = false
		}
		next.TradeCount = min(next.TradeCount, next.Count)
		if next.TradeCount == 0 {
			next.WillingToTrade = false
		}
		// InSearchOf is untouched: a user may keep seeking more copies
		// while already owning some.

	case ToggleFavorite:
		if !cur.IsFavorite && cur.Count <= 0 {
			return reject("cannot favorite an angel you do not own")
		}
		next.IsFavorite = !cur.IsFavorite

	case ToggleInSearchOf:
		next.InSearchOf = !cur.InSearchOf
		if next.InSearchOf {
			next.TradeCount = 0
			next.WillingToTrade = false
		}

	case ToggleWillingToTrade:
		if cur.Count <= 0 {
			return reject("cannot offer an angel you do not own for trade")
		}
		if cur.WillingToTrade {
			next.WillingToTrade = false
			next.TradeCount = 0
		} else {
			next.WillingToTrade = true
			next.TradeCount = 1
		}

	case SetTradeCount:
		if cur.Count <= 0 {
			return reject("cannot set a trade count on an angel you do not own")
		}
		next.TradeCount = min(max(it.Count, 0), cur.Count)
		next.WillingToTrade = next.TradeCount > 0
		// Editing the trade count implies ownership and supersedes seeking.
		next.InSearchOf = false
	}

	return next, nil
}
