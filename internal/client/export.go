package client

import (
	"context"
	"fmt"
	"mime"

	"github.com/angelarchive/archive-server/internal/export"
)

// Download fetches the user's collection export. Returns the raw file bytes
// and the server-assigned filename.
func (c *Client) Download(ctx context.Context, format export.Format) ([]byte, string, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetQueryParam("format", string(format)).
		Get("/api/v1/export/")
	if err != nil {
		return nil, "", fmt.Errorf("export request: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, "", err
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}

	return resp.Body(), filename, nil
}

// ExportStatus reports whether an export is currently allowed.
func (c *Client) ExportStatus(ctx context.Context) (export.CooldownStatus, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/export/status")
	if err != nil {
		return export.CooldownStatus{}, fmt.Errorf("export status request: %w", err)
	}
	return decode[export.CooldownStatus](resp)
}
