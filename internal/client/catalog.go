package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/search"
)

// ListAngels returns the full catalog ordered by card number.
func (c *Client) ListAngels(ctx context.Context) ([]*domain.Angel, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/angels/")
	if err != nil {
		return nil, fmt.Errorf("list angels request: %w", err)
	}

	data, err := decode[struct {
		Angels []*domain.Angel `json:"angels"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Angels, nil
}

// ListAngelsBySeries returns the catalog angels belonging to one series.
func (c *Client) ListAngelsBySeries(ctx context.Context, seriesID string) ([]*domain.Angel, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetQueryParam("series", seriesID).
		Get("/api/v1/angels/")
	if err != nil {
		return nil, fmt.Errorf("list angels by series request: %w", err)
	}

	data, err := decode[struct {
		Angels []*domain.Angel `json:"angels"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Angels, nil
}

// GetAngel returns one catalog angel.
func (c *Client) GetAngel(ctx context.Context, angelID string) (*domain.Angel, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/angels/" + angelID)
	if err != nil {
		return nil, fmt.Errorf("get angel request: %w", err)
	}
	return decode[*domain.Angel](resp)
}

// ListSeries returns all series ordered by name.
func (c *Client) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/series")
	if err != nil {
		return nil, fmt.Errorf("list series request: %w", err)
	}

	data, err := decode[struct {
		Series []*domain.Series `json:"series"`
	}](resp)
	if err != nil {
		return nil, err
	}
	return data.Series, nil
}

// Search runs a catalog search on the server.
func (c *Client) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	req := c.request().
		SetContext(ctx).
		SetQueryParam("q", params.Query)
	for _, id := range params.SeriesID {
		req.QueryParam.Add("series", id)
	}
	if params.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(params.Offset))
	}

	resp, err := req.Get("/api/v1/search")
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	return decode[*search.Result](resp)
}
