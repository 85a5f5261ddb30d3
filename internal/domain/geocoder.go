package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Country          string  `json:"country,omitempty"`
	CountryCode      string  `json:"country_code,omitempty"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider confidence score
}

// Found reports whether the provider matched anything.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != "" || r.PlaceName != ""
}

// Geocoder resolves addresses and coordinates.
type Geocoder interface {
	// ForwardGeocode converts a free-form address to coordinates.
	ForwardGeocode(ctx context.Context, address string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// PlaceKind is a settlement class as tagged in OpenStreetMap.
type PlaceKind string

const (
	PlaceCity    PlaceKind = "city"
	PlaceTown    PlaceKind = "town"
	PlaceVillage PlaceKind = "village"
)

// Place is a named settlement near a point of interest.
type Place struct {
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	PlaceType  PlaceKind `json:"place_type"`
	Population string    `json:"population"`
	Country    string    `json:"country"`
	DistanceKm float64   `json:"distance_km"`
}

// PlaceFinder searches for settlements around a point. Results are sorted by
// ascending distance and truncated to limit when limit is positive.
type PlaceFinder interface {
	NearbyPlaces(ctx context.Context, lat, lon, radiusKm float64, kinds []PlaceKind, limit int) ([]Place, error)
}
