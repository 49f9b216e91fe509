// Package geocode provides forward and reverse geocoding via Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/resilience"
)

// ErrNotFound is returned when the provider yields no usable result.
var ErrNotFound = eris.New("geocode: not found")

// ForwardResult holds a forward-geocoded coordinate with its display label.
type ForwardResult struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	DisplayName string         `json:"display_name"`
}

// Client is a Nominatim geocoding client. Nominatim's usage policy requires
// an identifying User-Agent and at most one request per second, so every
// request passes through the rate limiter.
type Client struct {
	baseURL     string
	userAgent   string
	countryCode string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent sets the identifying client agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCountryCode scopes forward searches to an ISO country code.
func WithCountryCode(cc string) Option {
	return func(c *Client) { c.countryCode = strings.ToLower(cc) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit overrides the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a Nominatim client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://nominatim.openstreetmap.org",
		userAgent:  "nearfind/1.0",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResult is the wire shape shared by /search and /reverse.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		Suburb      string `json:"suburb"`
		Village     string `json:"village"`
		Town        string `json:"town"`
		City        string `json:"city"`
		State       string `json:"state"`
		Country     string `json:"country"`
	} `json:"address"`
}

// Forward geocodes free text to a coordinate. The search is scoped to the
// configured country first; an empty country-scoped result triggers one
// unscoped retry. The first result wins. Blank input fails with ErrNotFound
// without touching the network.
func (c *Client) Forward(ctx context.Context, text string) (*ForwardResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNotFound
	}

	results, err := c.search(ctx, text, c.countryCode)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 && c.countryCode != "" {
		results, err = c.search(ctx, text, "")
		if err != nil {
			return nil, err
		}
	}
	if len(results) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "geocode: forward %q", text)
	}

	first := results[0]
	lat, latErr := strconv.ParseFloat(first.Lat, 64)
	lng, lngErr := strconv.ParseFloat(first.Lon, 64)
	if latErr != nil || lngErr != nil {
		return nil, eris.Errorf("geocode: forward %q: malformed coordinates", text)
	}

	return &ForwardResult{
		Coordinate:  geo.Coordinate{Lat: lat, Lng: lng},
		DisplayName: first.DisplayName,
	}, nil
}

func (c *Client) search(ctx context.Context, text, countryCode string) ([]nominatimResult, error) {
	params := url.Values{
		"q":              {text},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}
	if countryCode != "" {
		params.Set("countrycodes", countryCode)
	}

	var results []nominatimResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Suggest returns up to limit forward matches for partial text, optionally
// biased toward a center coordinate via a ~0.5 degree viewbox.
func (c *Client) Suggest(ctx context.Context, text string, limit int, bias *geo.Coordinate) ([]ForwardResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"q":      {text},
		"format": {"json"},
		"limit":  {strconv.Itoa(limit)},
	}
	if c.countryCode != "" {
		params.Set("countrycodes", c.countryCode)
	}
	if bias != nil {
		params.Set("viewbox", strings.Join([]string{
			strconv.FormatFloat(bias.Lng-0.25, 'f', 4, 64),
			strconv.FormatFloat(bias.Lat+0.25, 'f', 4, 64),
			strconv.FormatFloat(bias.Lng+0.25, 'f', 4, 64),
			strconv.FormatFloat(bias.Lat-0.25, 'f', 4, 64),
		}, ","))
	}

	var raw []nominatimResult
	if err := c.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}

	out := make([]ForwardResult, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lngErr != nil {
			continue
		}
		out = append(out, ForwardResult{
			Coordinate:  geo.Coordinate{Lat: lat, Lng: lng},
			DisplayName: r.DisplayName,
		})
	}
	return out, nil
}

// Reverse converts a coordinate to an address. ErrNotFound is returned when
// the provider yields no address substructure.
func (c *Client) Reverse(ctx context.Context, coord geo.Coordinate) (*model.Address, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{
		"lat":    {strconv.FormatFloat(coord.Lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(coord.Lng, 'f', 6, 64)},
		"format": {"json"},
	}

	var r nominatimResult
	if err := c.get(ctx, "/reverse", params, &r); err != nil {
		return nil, err
	}

	addr := buildAddress(r)
	if addr.Street == "" && addr.City == "" && addr.State == "" && addr.Country == "" {
		return nil, eris.Wrapf(ErrNotFound, "geocode: reverse %.5f,%.5f", coord.Lat, coord.Lng)
	}
	return &addr, nil
}

func buildAddress(r nominatimResult) model.Address {
	street := r.Address.Road
	if r.Address.HouseNumber != "" && street != "" {
		street = r.Address.HouseNumber + " " + street
	}
	if street == "" {
		street = r.Address.Suburb
	}

	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}

	return model.Address{
		Street:  street,
		City:    city,
		State:   r.Address.State,
		Country: r.Address.Country,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	// A transient provider status gets one retry; the rate limiter paces it.
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "geocode: rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "geocode: build request")
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "geocode: request")
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close() //nolint:errcheck
			if attempt == 0 && resilience.IsTransientHTTPStatus(resp.StatusCode) {
				zap.L().Debug("geocode: transient status, retrying",
					zap.Int("status", resp.StatusCode))
				continue
			}
			return eris.Errorf("geocode: provider returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			return eris.Wrap(err, "geocode: read body")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrap(err, "geocode: parse response")
		}

		zap.L().Debug("geocode request", zap.String("path", path))
		return nil
	}
}
