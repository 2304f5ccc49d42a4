package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guestsync/internal/config"
)

// ErrCRMCallFailed wraps any network or API failure talking to the CRM.
// The provider's message is surfaced verbatim; callers never retry.
var ErrCRMCallFailed = errors.New("crm call failed")

// TokenPair is the CRM token endpoint response for both the
// authorization-code and the refresh-token exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	LocationID   string `json:"locationId"`
}

// ContactRequest is the outbound contact-creation payload.
type ContactRequest struct {
	LocationID string   `json:"locationId"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Source     string   `json:"source,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// CRMClient is the narrow contract against the CRM collaborator.
type CRMClient interface {
	ExchangeCode(ctx context.Context, code string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	CreateContact(ctx context.Context, accessToken string, req ContactRequest) (string, error)
}

type ghlClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// NewGHLClient builds the HTTP client for the GoHighLevel-style CRM. All
// calls carry a bounded timeout; a timeout surfaces like any other failure.
func NewGHLClient(cfg *config.Config) CRMClient {
	return &ghlClient{
		baseURL:      strings.TrimRight(cfg.GHLBaseURL, "/"),
		clientID:     cfg.GHLClientID,
		clientSecret: cfg.GHLClientSecret,
		redirectURI:  cfg.GHLRedirectURI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *ghlClient) ExchangeCode(ctx context.Context, code string) (*TokenPair, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURI},
	}
	return c.tokenExchange(ctx, form)
}

func (c *ghlClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return c.tokenExchange(ctx, form)
}

func (c *ghlClient) tokenExchange(ctx context.Context, form url.Values) (*TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCRMCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCRMCallFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", ErrCRMCallFailed, resp.StatusCode, string(body))
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("%w: invalid token response: %v", ErrCRMCallFailed, err)
	}
	return &pair, nil
}

func (c *ghlClient) CreateContact(ctx context.Context, accessToken string, contact ContactRequest) (string, error) {
	payload, err := json.Marshal(contact)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCRMCallFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts/", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCRMCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCRMCallFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: contact endpoint returned %d: %s", ErrCRMCallFailed, resp.StatusCode, string(body))
	}

	var parsed struct {
		Contact struct {
			ID string `json:"id"`
		} `json:"contact"`
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid contact response: %v", ErrCRMCallFailed, err)
	}

	id := parsed.Contact.ID
	if id == "" {
		id = parsed.ID
	}
	return id, nil
}
