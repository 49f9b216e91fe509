// Package iploc estimates the caller's position from their public IP address
// using a cascade of free geolocation endpoints.
package iploc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/resilience"
)

// Estimate is a normalized IP-geolocation result. Accuracy is fixed at 5 km:
// IP positioning is city-level at best.
type Estimate struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	City       string         `json:"city"`
}

// AccuracyMeters is the fixed accuracy attributed to every IP estimate.
const AccuracyMeters = 5000.0

// Provider is a single IP-geolocation backend. Response shapes vary per
// provider; each adapter normalizes to Estimate.
type Provider interface {
	Name() string
	Locate(ctx context.Context) (*Estimate, error)
}

// Client tries IP-geolocation providers in sequence; first success wins.
type Client struct {
	providers  []Provider
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithProviders replaces the default provider list.
func WithProviders(providers ...Provider) Option {
	return func(c *Client) { c.providers = providers }
}

// WithTimeout bounds each provider attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client for the default providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client with the default provider chain.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:    5 * time.Second,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.providers == nil {
		c.providers = []Provider{
			&ipAPIProvider{url: "http://ip-api.com/json/", client: c.httpClient},
			&ipapiCoProvider{url: "https://ipapi.co/json/", client: c.httpClient},
			&ipwhoisProvider{url: "https://ipwho.is/", client: c.httpClient},
		}
	}
	return c
}

// Locate walks the provider chain sequentially and returns the first
// successful estimate.
func (c *Client) Locate(ctx context.Context) (*Estimate, error) {
	attempts := make([]resilience.Attempt[*Estimate], 0, len(c.providers))
	for _, p := range c.providers {
		attempts = append(attempts, resilience.Attempt[*Estimate]{
			Name:    p.Name(),
			Timeout: c.timeout,
			Run:     p.Locate,
		})
	}

	est, _, err := resilience.First(ctx, "ip-geolocation", attempts)
	if err != nil {
		return nil, eris.Wrap(err, "iploc: locate")
	}
	return est, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "iploc: build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "iploc: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("iploc: provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "iploc: read body")
	}
	return eris.Wrap(json.Unmarshal(body, out), "iploc: parse response")
}

// ipAPIProvider adapts ip-api.com.
type ipAPIProvider struct {
	url    string
	client *http.Client
}

func (p *ipAPIProvider) Name() string { return "ip-api" }

func (p *ipAPIProvider) Locate(ctx context.Context) (*Estimate, error) {
	var r struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		City   string  `json:"city"`
	}
	if err := fetchJSON(ctx, p.client, p.url, &r); err != nil {
		return nil, err
	}
	if r.Status != "success" {
		return nil, eris.Errorf("iploc: ip-api status %q", r.Status)
	}
	return normalize(r.Lat, r.Lon, r.City)
}

// ipapiCoProvider adapts ipapi.co.
type ipapiCoProvider struct {
	url    string
	client *http.Client
}

func (p *ipapiCoProvider) Name() string { return "ipapi-co" }

func (p *ipapiCoProvider) Locate(ctx context.Context) (*Estimate, error) {
	var r struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		City      string  `json:"city"`
		Error     bool    `json:"error"`
	}
	if err := fetchJSON(ctx, p.client, p.url, &r); err != nil {
		return nil, err
	}
	if r.Error {
		return nil, eris.New("iploc: ipapi.co reported an error")
	}
	return normalize(r.Latitude, r.Longitude, r.City)
}

// ipwhoisProvider adapts ipwho.is.
type ipwhoisProvider struct {
	url    string
	client *http.Client
}

func (p *ipwhoisProvider) Name() string { return "ipwhois" }

func (p *ipwhoisProvider) Locate(ctx context.Context) (*Estimate, error) {
	var r struct {
		Success   bool    `json:"success"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		City      string  `json:"city"`
	}
	if err := fetchJSON(ctx, p.client, p.url, &r); err != nil {
		return nil, err
	}
	if !r.Success {
		return nil, eris.New("iploc: ipwho.is reported failure")
	}
	return normalize(r.Latitude, r.Longitude, r.City)
}

func normalize(lat, lng float64, city string) (*Estimate, error) {
	coord := geo.Coordinate{Lat: lat, Lng: lng}
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	if lat == 0 && lng == 0 {
		return nil, eris.New("iploc: provider returned null island")
	}
	return &Estimate{Coordinate: coord, City: city}, nil
}
