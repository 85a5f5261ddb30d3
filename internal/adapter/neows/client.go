// Package neows implements domain.Catalog on top of NASA's Near Earth Object
// Web Service.
package neows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/retry"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	upstreamName = "neows"
	userAgent    = "impact-sim-service/1.0"
	dateLayout   = "2006-01-02"

	// feedChunkDays is the widest window the feed endpoint accepts.
	feedChunkDays = 7
	// MaxFeedDays bounds a single Feed call so one request cannot fan out
	// into an unbounded number of upstream calls.
	MaxFeedDays = 31

	maxAttempts = 3
)

// Client talks to the NeoWs REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	backoff    retry.Backoff
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs client. baseURL is the API root, e.g.
// https://api.nasa.gov/neo/rest/v1.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clockwork.NewRealClock(),
		backoff:    retry.Backoff{Initial: 200 * time.Millisecond, Max: 2 * time.Second},
		metrics:    metrics,
		logger:     logger,
	}
}

// Feed lists objects approaching between start and end inclusive. Windows
// wider than a week are fetched in weekly chunks and concatenated in date order.
func (c *Client) Feed(ctx context.Context, start, end time.Time) ([]domain.CatalogRecord, error) {
	start, end, err := c.feedWindow(start, end)
	if err != nil {
		return nil, err
	}

	var records []domain.CatalogRecord
	for chunkStart := start; !chunkStart.After(end); {
		chunkEnd := chunkStart.AddDate(0, 0, feedChunkDays)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		params := url.Values{
			"start_date": {chunkStart.Format(dateLayout)},
			"end_date":   {chunkEnd.Format(dateLayout)},
		}
		var resp feedResponse
		if err := c.get(ctx, "feed", "/feed", params, &resp); err != nil {
			return nil, err
		}
		records = append(records, resp.records()...)

		chunkStart = chunkEnd.AddDate(0, 0, 1)
	}
	return records, nil
}

func (c *Client) feedWindow(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		start = c.clock.Now().UTC()
	}
	start = truncateDay(start)
	if end.IsZero() {
		end = start.AddDate(0, 0, feedChunkDays)
	}
	end = truncateDay(end)

	if end.Before(start) {
		return start, end, fmt.Errorf("end_date %s is before start_date %s: %w",
			end.Format(dateLayout), start.Format(dateLayout), domain.ErrInvalidParameter)
	}
	if end.Sub(start) > MaxFeedDays*24*time.Hour {
		return start, end, fmt.Errorf("date range exceeds %d days: %w", MaxFeedDays, domain.ErrInvalidParameter)
	}
	return start, end, nil
}

// Lookup fetches a single object by its NeoWs id.
func (c *Client) Lookup(ctx context.Context, id string) (domain.CatalogRecord, error) {
	if id == "" {
		return domain.CatalogRecord{}, fmt.Errorf("asteroid id is empty: %w", domain.ErrInvalidParameter)
	}
	var obj neoObject
	if err := c.get(ctx, "lookup", "/neo/"+url.PathEscape(id), nil, &obj); err != nil {
		return domain.CatalogRecord{}, err
	}
	return obj.record(), nil
}

// get performs a GET with retries on 429 and 5xx responses and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) (err error) {
	ctx, span := observability.StartSpan(ctx, "neows."+op,
		attribute.String("upstream", upstreamName),
		attribute.String("neows.path", path),
	)
	start := c.clock.Now()
	outcome := "success"
	defer func() {
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				outcome = "not_found"
			} else {
				outcome = "error"
				span.SetStatus(codes.Error, err.Error())
			}
			span.RecordError(err)
		}
		c.metrics.ObserveUpstream(upstreamName, outcome, c.clock.Since(start))
		span.End()
	}()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		retryable, err := c.do(ctx, fullURL, out)
		if err == nil || !retryable || attempt == maxAttempts {
			return err
		}
		delay := backoff.Next()
		c.logger.Warn("neows request failed, retrying",
			"op", op, "attempt", attempt, "backoff", delay, "error", err)
		if !sharedretry.SleepWithContext(ctx, delay) {
			return fmt.Errorf("neows %s: %w", op, ctx.Err())
		}
	}
}

func (c *Client) do(ctx context.Context, fullURL string, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("neows request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("neows: %w", domain.ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NeoWs API response types.

type feedResponse struct {
	ElementCount    int                    `json:"element_count"`
	NearEarthObject map[string][]neoObject `json:"near_earth_objects"`
}

// records flattens the per-day map in ascending date order.
func (f feedResponse) records() []domain.CatalogRecord {
	dates := make([]string, 0, len(f.NearEarthObject))
	for date := range f.NearEarthObject {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]domain.CatalogRecord, 0, f.ElementCount)
	for _, date := range dates {
		for _, obj := range f.NearEarthObject[date] {
			out = append(out, obj.record())
		}
	}
	return out
}

type neoObject struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	IsHazardous       bool              `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter estimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []approach        `json:"close_approach_data"`
}

type estimatedDiameter struct {
	Meters *diameterRange `json:"meters"`
}

type diameterRange struct {
	Min *float64 `json:"estimated_diameter_min"`
	Max *float64 `json:"estimated_diameter_max"`
}

type approach struct {
	Date             string           `json:"close_approach_date"`
	DateFull         string           `json:"close_approach_date_full"`
	RelativeVelocity relativeVelocity `json:"relative_velocity"`
	MissDistance     missDistance     `json:"miss_distance"`
}

type relativeVelocity struct {
	KmPerSecond string `json:"kilometers_per_second"`
}

type missDistance struct {
	Kilometers string `json:"kilometers"`
}

func (o neoObject) record() domain.CatalogRecord {
	rec := domain.CatalogRecord{
		ID:                     o.ID,
		Name:                   o.Name,
		IsPotentiallyHazardous: o.IsHazardous,
		CloseApproachData:      make([]domain.CloseApproach, 0, len(o.CloseApproachData)),
	}
	if m := o.EstimatedDiameter.Meters; m != nil {
		rec.DiameterMinM = m.Min
		rec.DiameterMaxM = m.Max
	}
	for _, a := range o.CloseApproachData {
		ca := domain.CloseApproach{Date: a.Date, DateFull: a.DateFull}
		if v, err := strconv.ParseFloat(a.RelativeVelocity.KmPerSecond, 64); err == nil {
			ca.VelocityKmS = &v
		}
		if d, err := strconv.ParseFloat(a.MissDistance.Kilometers, 64); err == nil {
			ca.MissDistanceKm = d
		}
		rec.CloseApproachData = append(rec.CloseApproachData, ca)
	}
	return rec
}
