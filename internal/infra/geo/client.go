package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	appgeo "staybook/internal/app/services/geo"
)

// Client calls an external geocoding HTTP service. The service contract is
// a single GET returning the country/admin/city triple for a free-text
// address; any of the three may come back empty.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
	Logger     *slog.Logger
}

type geocodeResponse struct {
	Country string `json:"country"`
	Admin   string `json:"admin"`
	City    string `json:"city"`
}

func (c *Client) Geocode(ctx context.Context, text string) (appgeo.Geocoded, error) {
	var zero appgeo.Geocoded
	if c == nil || c.HTTPClient == nil {
		return zero, errors.New("geo: http client not configured")
	}
	if c.Endpoint == "" {
		return zero, errors.New("geo: endpoint not configured")
	}

	query := url.Values{}
	query.Set("address", text)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return zero, err
	}

	resp, err := c.HTTPClient.Do(request)
	if err != nil {
		c.logError("geocode request failed", text, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("geo: geocoder returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("geocoder returned error", text, err)
		return zero, err
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logError("geocode decode failed", text, err)
		return zero, err
	}
	return appgeo.Geocoded{
		Country: decoded.Country,
		Admin:   decoded.Admin,
		City:    decoded.City,
	}, nil
}

func (c *Client) logError(msg, text string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "location", text, "error", err)
}

// Static resolves locations from a fixed table, keyed by lowercased input.
// It backs demo runs where no external geocoder is reachable.
type Static struct {
	Table map[string]appgeo.Geocoded
}

func (s Static) Geocode(ctx context.Context, text string) (appgeo.Geocoded, error) {
	if resolved, ok := s.Table[strings.ToLower(strings.TrimSpace(text))]; ok {
		return resolved, nil
	}
	return appgeo.Geocoded{}, nil
}

var _ appgeo.Geocoder = (*Client)(nil)
var _ appgeo.Geocoder = Static{}
