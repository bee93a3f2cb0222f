package client

import (
	"context"
	"fmt"

	"github.com/angelarchive/archive-server/internal/domain"
)

// CollectionItem is a collection record joined with its catalog angel.
type CollectionItem struct {
	domain.CollectionRecord
	Angel *domain.Angel `json:"angel,omitempty"`
}

// recordBody is the wire shape for record writes.
type recordBody struct {
	Count          int  `json:"count"`
	TradeCount     int  `json:"trade_count"`
	IsFavorite     bool `json:"is_favorite"`
	InSearchOf     bool `json:"in_search_of"`
	WillingToTrade bool `json:"willing_to_trade"`
}

// ListRecords returns the authenticated user's collection records.
func (c *Client) ListRecords(ctx context.Context) ([]*CollectionItem, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/collections/")
	if err != nil {
		return nil, fmt.Errorf("list records request: %w", err)
	}

	data, err := decode[struct {
		Records []*CollectionItem `json:"records"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Records, nil
}

// GetRecord returns the user's record for one angel.
func (c *Client) GetRecord(ctx context.Context, angelID string) (*CollectionItem, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/collections/" + angelID)
	if err != nil {
		return nil, fmt.Errorf("get record request: %w", err)
	}
	return decode[*CollectionItem](resp)
}

// PutRecord writes the user's record for an angel. A record carrying only
// default values is deleted server-side.
func (c *Client) PutRecord(ctx context.Context, rec domain.CollectionRecord) (*CollectionItem, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetBody(recordBody{
			Count:          rec.Count,
			TradeCount:     rec.TradeCount,
			IsFavorite:     rec.IsFavorite,
			InSearchOf:     rec.InSearchOf,
			WillingToTrade: rec.WillingToTrade,
		}).
		Put("/api/v1/collections/" + rec.AngelID)
	if err != nil {
		return nil, fmt.Errorf("put record request: %w", err)
	}
	return decode[*CollectionItem](resp)
}

// DeleteRecord removes the user's record for an angel. Idempotent.
func (c *Client) DeleteRecord(ctx context.Context, angelID string) error {
	resp, err := c.request().
		SetContext(ctx).
		Delete("/api/v1/collections/" + angelID)
	if err != nil {
		return fmt.Errorf("delete record request: %w", err)
	}
	return mapHTTPError(resp)
}
