// Package overpass queries community geodata mirrors for tagged features
// around a point.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/resilience"
)

// Element is one raw feature returned by the provider. Ways carry their
// computed center instead of a node position.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

// Center holds the computed centre of a way element.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coords returns the element's position, preferring the node position and
// falling back to the way center.
func (e *Element) Coords() (geo.Coordinate, bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return geo.Coordinate{Lat: e.Lat, Lng: e.Lon}, true
	}
	if e.Center != nil {
		return geo.Coordinate{Lat: e.Center.Lat, Lng: e.Center.Lon}, true
	}
	return geo.Coordinate{}, false
}

type response struct {
	Elements []Element `json:"elements"`
}

// Client queries a fixed priority list of equivalent mirror endpoints. Each
// attempt is bounded by the client timeout; any failure or empty element
// list advances to the next mirror.
type Client struct {
	mirrors       []string
	serverTimeout time.Duration // encoded into the query body
	clientTimeout time.Duration // per-mirror attempt budget
	maxElements   int
	httpClient    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithMirrors sets the mirror priority list.
func WithMirrors(mirrors ...string) Option {
	return func(c *Client) { c.mirrors = mirrors }
}

// WithServerTimeout sets the timeout encoded in the query itself.
func WithServerTimeout(d time.Duration) Option {
	return func(c *Client) { c.serverTimeout = d }
}

// WithClientTimeout bounds each mirror attempt.
func WithClientTimeout(d time.Duration) Option {
	return func(c *Client) { c.clientTimeout = d }
}

// WithMaxElements caps raw results per query.
func WithMaxElements(n int) Option {
	return func(c *Client) { c.maxElements = n }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an Overpass client with the public mirror list.
func NewClient(opts ...Option) *Client {
	c := &Client{
		mirrors: []string{
			"https://overpass-api.de/api/interpreter",
			"https://overpass.kumi.systems/api/interpreter",
			"https://overpass.openstreetmap.ru/api/interpreter",
		},
		serverTimeout: 8 * time.Second,
		clientTimeout: 4 * time.Second,
		maxElements:   25,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildQuery renders one composite query covering every selector (key=value
// pair) as node+way clauses around the center. The selector set is kept
// small so mirrors can answer within the server timeout.
func (c *Client) BuildQuery(center geo.Coordinate, radiusMeters int, selectors []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(c.serverTimeout.Seconds()))
	for _, sel := range selectors {
		fmt.Fprintf(&b, "  node[%s](around:%d,%f,%f);\n", sel, radiusMeters, center.Lat, center.Lng)
		fmt.Fprintf(&b, "  way[%s](around:%d,%f,%f);\n", sel, radiusMeters, center.Lat, center.Lng)
	}
	fmt.Fprintf(&b, ");\nout center %d;\n", c.maxElements)
	return b.String()
}

// Search posts the composite query to each mirror in priority order and
// returns the first non-empty element list. Exhaustion of every mirror (or
// universally empty responses) surfaces as an error; callers treat that as
// "no live data", not a fault.
func (c *Client) Search(ctx context.Context, center geo.Coordinate, radiusMeters int, selectors []string) ([]Element, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if len(selectors) == 0 {
		return nil, eris.New("overpass: no selectors")
	}

	query := c.BuildQuery(center, radiusMeters, selectors)

	attempts := make([]resilience.Attempt[[]Element], 0, len(c.mirrors))
	for _, mirror := range c.mirrors {
		mirror := mirror
		attempts = append(attempts, resilience.Attempt[[]Element]{
			Name:    mirror,
			Timeout: c.clientTimeout,
			Run: func(ctx context.Context) ([]Element, error) {
				return c.post(ctx, mirror, query)
			},
			Accept: func(elements []Element) bool { return len(elements) > 0 },
		})
	}

	elements, mirror, err := resilience.First(ctx, "overpass-mirrors", attempts)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: search")
	}

	zap.L().Debug("overpass search succeeded",
		zap.String("mirror", mirror),
		zap.Int("elements", len(elements)),
	)
	return elements, nil
}

func (c *Client) post(ctx context.Context, mirror, query string) ([]Element, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mirror, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("overpass: mirror returned status %d", resp.StatusCode)
		if !resilience.IsTransientHTTPStatus(resp.StatusCode) {
			// Every mirror receives the same query body, so a permanent
			// rejection would repeat at each of them.
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}
	if len(r.Elements) > c.maxElements {
		r.Elements = r.Elements[:c.maxElements]
	}
	return r.Elements, nil
}
