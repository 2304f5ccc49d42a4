package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guestsync/internal/config"
	"guestsync/internal/features/venue"
)

// VenueDirectory queries the external venue directory by owner email.
// Venue records, including their device inventories, are read-only here.
type VenueDirectory interface {
	VenuesByOwner(ctx context.Context, email string) ([]venue.Venue, error)
}

type httpVenueDirectory struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVenueDirectory(cfg *config.Config) VenueDirectory {
	return &httpVenueDirectory{
		baseURL: strings.TrimRight(cfg.DirectoryURL, "/"),
		apiKey:  cfg.DirectoryAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (d *httpVenueDirectory) VenuesByOwner(ctx context.Context, email string) ([]venue.Venue, error) {
	endpoint := fmt.Sprintf("%s/venues?owner_email=%s", d.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("directory lookup returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Venues []venue.Venue `json:"venues"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid directory response: %w", err)
	}
	return parsed.Venues, nil
}
