package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackRadiiKm are the progressively wider searches used when reverse
// geocoding does not name a city.
var fallbackRadiiKm = []float64{50, 100, 200, 500}

// oceanDistanceKm is the nearest-settlement distance beyond which a point is
// assumed to be at sea.
const oceanDistanceKm = 300.0

// LocationInfo describes what lies at an impact site.
type LocationInfo struct {
	FormattedAddress      string   `json:"formatted_address"`
	City                  string   `json:"city,omitempty"`
	State                 string   `json:"state,omitempty"`
	Country               string   `json:"country,omitempty"`
	CountryCode           string   `json:"country_code,omitempty"`
	IsRemote              bool     `json:"is_remote"`
	IsOcean               bool     `json:"is_ocean"`
	OceanName             string   `json:"ocean_name,omitempty"`
	NearestCity           string   `json:"nearest_city,omitempty"`
	NearestCityDistanceKm *float64 `json:"nearest_city_distance_km,omitempty"`
}

// ResolveLocation names the place at (lat, lon). A reverse-geocoded city wins;
// otherwise the nearest settlement found by places is used, and sites far from
// any settlement are attributed to an ocean or sea. Either dependency may be nil.
func ResolveLocation(ctx context.Context, geocoder Geocoder, places PlaceFinder, lat, lon float64, logger *slog.Logger) (LocationInfo, error) {
	site := ImpactSite{Lat: lat, Lon: lon}
	if err := site.Validate(); err != nil {
		return LocationInfo{}, err
	}

	if geocoder != nil {
		res, err := geocoder.ReverseGeocode(ctx, lat, lon)
		switch {
		case err != nil:
			logger.Warn("reverse geocoding failed, falling back to place search", "lat", lat, "lon", lon, "error", err)
		case res.City != "":
			address := res.FormattedAddress
			if address == "" {
				address = "Unknown"
			}
			return LocationInfo{
				FormattedAddress: address,
				City:             res.City,
				State:            res.State,
				Country:          res.Country,
				CountryCode:      res.CountryCode,
			}, nil
		}
	}

	if places == nil {
		return IdentifyOcean(lat, lon, "", 0), nil
	}

	kinds := []PlaceKind{PlaceCity, PlaceTown}
	for _, radius := range fallbackRadiiKm {
		found, err := places.NearbyPlaces(ctx, lat, lon, radius, kinds, 1)
		if err != nil {
			return LocationInfo{}, fmt.Errorf("search places within %.0f km: %w", radius, err)
		}
		if len(found) == 0 {
			continue
		}
		nearest := found[0]
		if nearest.DistanceKm > oceanDistanceKm {
			return IdentifyOcean(lat, lon, nearest.Name, nearest.DistanceKm), nil
		}
		dist := round2(nearest.DistanceKm)
		country := nearest.Country
		if country == "" {
			country = "Unknown"
		}
		return LocationInfo{
			FormattedAddress:      fmt.Sprintf("Near %s (~%dkm away)", nearest.Name, int(nearest.DistanceKm)),
			City:                  nearest.Name,
			Country:               country,
			IsRemote:              true,
			NearestCityDistanceKm: &dist,
		}, nil
	}

	return IdentifyOcean(lat, lon, "", 0), nil
}

// IdentifyOcean attributes a point to an ocean or sea from coarse
// latitude/longitude boxes. When nearestCity is set the address mentions it.
func IdentifyOcean(lat, lon float64, nearestCity string, distanceKm float64) LocationInfo {
	name := OceanName(lat, lon)
	info := LocationInfo{
		FormattedAddress: name,
		IsRemote:         true,
		IsOcean:          true,
		OceanName:        name,
	}
	if nearestCity != "" && distanceKm > 0 {
		dist := round2(distanceKm)
		info.NearestCity = nearestCity
		info.NearestCityDistanceKm = &dist
		info.FormattedAddress = fmt.Sprintf("%s (nearest city: %s, ~%dkm away)", name, nearestCity, int(distanceKm))
	}
	return info
}

// OceanName returns the body of water a point most likely lies in.
func OceanName(lat, lon float64) string {
	name := "Unknown Ocean"

	// The longitude bands are exclusive: a point in the Pacific band that
	// misses its latitude range is not re-tested against the Atlantic.
	switch {
	case (lon >= -180 && lon <= -70) || (lon >= 120 && lon <= 180):
		if lat >= -60 && lat <= 60 {
			name = "Pacific Ocean"
		}
	case lon >= -70 && lon <= 20:
		if lat >= -60 && lat <= 70 {
			name = "Atlantic Ocean"
		}
	case lon >= 20 && lon <= 120:
		if lat >= -60 && lat <= 30 {
			name = "Indian Ocean"
		}
	}

	switch {
	case lat > 66:
		name = "Arctic Ocean"
	case lat < -60:
		name = "Southern Ocean"
	}

	switch {
	case lat >= 30 && lat <= 45 && lon >= -10 && lon <= 45:
		name = "Mediterranean Sea"
	case lat >= 10 && lat <= 30 && lon >= 35 && lon <= 75:
		name = "Arabian Sea"
	case lat >= 0 && lat <= 25 && lon >= 90 && lon <= 100:
		name = "Bay of Bengal"
	case lat >= 20 && lat <= 50 && lon >= 120 && lon <= 145:
		name = "Sea of Japan"
	}

	return name
}
