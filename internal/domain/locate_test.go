package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGeocoder struct {
	forwardResult GeocodingResult
	forwardErr    error
	reverseResult GeocodingResult
	reverseErr    error
	forwardCalls  int
	reverseCalls  int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, _ string) (GeocodingResult, error) {
	m.forwardCalls++
	return m.forwardResult, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}

type mockPlaces struct {
	byRadius map[float64][]Place
	err      error
	radii    []float64
	limits   []int
}

func (m *mockPlaces) NearbyPlaces(_ context.Context, _, _, radiusKm float64, _ []PlaceKind, limit int) ([]Place, error) {
	m.radii = append(m.radii, radiusKm)
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.byRadius[radiusKm], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestResolveLocation_ReverseGeocodedCity(t *testing.T) {
	geo := &mockGeocoder{reverseResult: GeocodingResult{
		FormattedAddress: "Austin, Texas, United States",
		City:             "Austin",
		State:            "Texas",
		Country:          "United States",
		CountryCode:      "US",
	}}
	places := &mockPlaces{}

	got, err := ResolveLocation(context.Background(), geo, places, 30.27, -97.74, discardLogger())
	require.NoError(t, err)

	want := LocationInfo{
		FormattedAddress: "Austin, Texas, United States",
		City:             "Austin",
		State:            "Texas",
		Country:          "United States",
		CountryCode:      "US",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("location mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, places.radii, "place search skipped when a city is known")
}

func TestResolveLocation_NearestTown(t *testing.T) {
	geo := &mockGeocoder{reverseErr: errors.New("timeout")}
	places := &mockPlaces{byRadius: map[float64][]Place{
		100: {{Name: "Alice Springs", Country: "AU", DistanceKm: 80.456}},
	}}

	got, err := ResolveLocation(context.Background(), geo, places, -23.0, 134.0, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []float64{50, 100}, places.radii)
	assert.Equal(t, []int{1, 1}, places.limits)
	assert.Equal(t, "Near Alice Springs (~80km away)", got.FormattedAddress)
	assert.Equal(t, "Alice Springs", got.City)
	assert.Equal(t, "AU", got.Country)
	assert.True(t, got.IsRemote)
	assert.False(t, got.IsOcean)
	require.NotNil(t, got.NearestCityDistanceKm)
	assert.Equal(t, 80.46, *got.NearestCityDistanceKm)
}

func TestResolveLocation_DistantTownMeansOcean(t *testing.T) {
	geo := &mockGeocoder{reverseResult: GeocodingResult{FormattedAddress: "Pacific"}}
	places := &mockPlaces{byRadius: map[float64][]Place{
		500: {{Name: "Hilo", DistanceKm: 450.7}},
	}}

	got, err := ResolveLocation(context.Background(), geo, places, 0, -150, discardLogger())
	require.NoError(t, err)

	assert.True(t, got.IsOcean)
	assert.Equal(t, "Pacific Ocean", got.OceanName)
	assert.Equal(t, "Hilo", got.NearestCity)
	assert.Equal(t, "Pacific Ocean (nearest city: Hilo, ~450km away)", got.FormattedAddress)
}

func TestResolveLocation_NothingFound(t *testing.T) {
	places := &mockPlaces{}
	got, err := ResolveLocation(context.Background(), nil, places, 0, -30, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []float64{50, 100, 200, 500}, places.radii)
	assert.Equal(t, "Atlantic Ocean", got.FormattedAddress)
	assert.True(t, got.IsOcean)
	assert.Nil(t, got.NearestCityDistanceKm)
}

func TestResolveLocation_NoDependencies(t *testing.T) {
	got, err := ResolveLocation(context.Background(), nil, nil, -20, 80, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "Indian Ocean", got.OceanName)
}

func TestResolveLocation_PlaceSearchError(t *testing.T) {
	places := &mockPlaces{err: errors.New("overpass down")}
	_, err := ResolveLocation(context.Background(), nil, places, 0, 0, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overpass down")
}

func TestResolveLocation_InvalidCoordinates(t *testing.T) {
	geo := &mockGeocoder{}
	_, err := ResolveLocation(context.Background(), geo, nil, 95, 0, discardLogger())
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Zero(t, geo.reverseCalls)
}

func TestOceanName(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"central pacific", 0, -150, "Pacific Ocean"},
		{"western pacific", -30, 170, "Pacific Ocean"},
		{"pacific band edge", 0, -70, "Pacific Ocean"},
		{"north atlantic", 20, -40, "Atlantic Ocean"},
		{"indian", -20, 80, "Indian Ocean"},
		{"arctic", 80, 0, "Arctic Ocean"},
		{"southern", -70, 0, "Southern Ocean"},
		{"mediterranean", 35, 18, "Mediterranean Sea"},
		{"arabian sea", 15, 65, "Arabian Sea"},
		{"bay of bengal", 15, 92, "Bay of Bengal"},
		{"sea of japan", 40, 135, "Sea of Japan"},
		{"north pacific above band", 64, -150, "Unknown Ocean"},
		{"central asia", 45, 80, "Unknown Ocean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OceanName(tt.lat, tt.lon))
		})
	}
}

func TestIdentifyOcean(t *testing.T) {
	plain := IdentifyOcean(0, -150, "", 0)
	assert.Equal(t, "Pacific Ocean", plain.FormattedAddress)
	assert.True(t, plain.IsRemote)
	assert.Empty(t, plain.NearestCity)

	near := IdentifyOcean(0, -150, "Honolulu", 1234.567)
	assert.Equal(t, "Pacific Ocean (nearest city: Honolulu, ~1234km away)", near.FormattedAddress)
	require.NotNil(t, near.NearestCityDistanceKm)
	assert.Equal(t, 1234.57, *near.NearestCityDistanceKm)
}
