// Package overpass implements domain.PlaceFinder against the OpenStreetMap
// Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/retry"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	upstreamName = "overpass"
	userAgent    = "impact-sim-service/1.0"
	unknown      = "Unknown"
	maxAttempts  = 2
)

var errRetryable = errors.New("retryable")

// Client queries Overpass for named settlements.
type Client struct {
	endpoint   string
	httpClient *http.Client
	// queryTimeout is the server-side [timeout:N] setting in seconds.
	queryTimeout int
	backoff      retry.Backoff
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates an Overpass client for the interpreter endpoint, e.g.
// https://overpass-api.de/api/interpreter.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	qt := int(timeout.Seconds())
	if qt < 1 {
		qt = 1
	}
	return &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: timeout},
		queryTimeout: qt,
		backoff:      retry.Backoff{Initial: 500 * time.Millisecond, Max: 2 * time.Second},
		metrics:      metrics,
		logger:       logger,
	}
}

// NearbyPlaces returns settlements of the given kinds within radiusKm of the
// point, nearest first. A positive limit truncates the result; otherwise at
// most domain.MaxAffectedPlaces are returned.
func (c *Client) NearbyPlaces(ctx context.Context, lat, lon, radiusKm float64, kinds []domain.PlaceKind, limit int) (places []domain.Place, err error) {
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, fmt.Errorf("search radius %v km: %w", radiusKm, domain.ErrInvalidParameter)
	}
	if len(kinds) == 0 {
		kinds = []domain.PlaceKind{domain.PlaceCity, domain.PlaceTown}
	}
	if limit <= 0 || limit > domain.MaxAffectedPlaces {
		limit = domain.MaxAffectedPlaces
	}

	ctx, span := observability.StartSpan(ctx, "overpass.nearby",
		attribute.String("upstream", upstreamName),
		attribute.Float64("overpass.radius_km", radiusKm),
		attribute.Int("overpass.kinds", len(kinds)),
	)
	start := time.Now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if len(places) == 0 {
			outcome = "empty"
		}
		span.SetAttributes(attribute.Int("overpass.results", len(places)))
		c.metrics.ObserveUpstream(upstreamName, outcome, time.Since(start))
		span.End()
	}()

	query := buildQuery(lat, lon, radiusKm, kinds, c.queryTimeout)

	var resp response
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		err = c.post(ctx, query, &resp)
		if err == nil || !errors.Is(err, errRetryable) || attempt == maxAttempts {
			break
		}
		delay := backoff.Next()
		c.logger.Warn("overpass request failed, retrying", "attempt", attempt, "backoff", delay, "error", err)
		if !sharedretry.SleepWithContext(ctx, delay) {
			return nil, fmt.Errorf("overpass: %w", ctx.Err())
		}
	}
	if err != nil {
		return nil, err
	}

	places = resp.places(lat, lon)
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// buildQuery renders an Overpass QL union of node searches, one per kind.
func buildQuery(lat, lon, radiusKm float64, kinds []domain.PlaceKind, timeout int) string {
	radiusM := strconv.FormatFloat(math.Round(radiusKm*1000), 'f', 0, 64)
	around := fmt.Sprintf("(around:%s,%s,%s)", radiusM,
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeout)
	for _, k := range kinds {
		fmt.Fprintf(&b, "  node[\"place\"=%q]%s;\n", string(k), around)
	}
	b.WriteString(");\nout body;")
	return b.String()
}

func (c *Client) post(ctx context.Context, query string, out *response) error {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("overpass request: %w", err)
		}
		return fmt.Errorf("overpass request: %w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %w", errRetryable, err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// places converts nodes to places sorted by distance from the origin.
func (r response) places(lat, lon float64) []domain.Place {
	out := make([]domain.Place, 0, len(r.Elements))
	for _, e := range r.Elements {
		if e.Type != "" && e.Type != "node" {
			continue
		}
		out = append(out, domain.Place{
			Name:       tagOr(e.Tags, unknown, "name"),
			Lat:        e.Lat,
			Lon:        e.Lon,
			PlaceType:  domain.PlaceKind(tagOr(e.Tags, unknown, "place")),
			Population: tagOr(e.Tags, unknown, "population"),
			Country:    tagOr(e.Tags, unknown, "addr:country", "is_in:country"),
			DistanceKm: math.Round(domain.Haversine(lat, lon, e.Lat, e.Lon)*100) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// tagOr returns the first non-empty tag among keys, or def.
func tagOr(tags map[string]string, def string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return def
}
