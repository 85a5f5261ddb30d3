// Package geojson renders damage zones as a GeoJSON overlay for map clients.
package geojson

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// CircleSegments is the number of vertices used to approximate each zone.
const CircleSegments = 64

type zone struct {
	name     domain.DamageClass
	radiusKm float64
}

// ZoneFeatures returns one polygon per damage zone with a positive radius,
// largest first, followed by the impact point. Zones that would enclose a pole
// cannot be drawn as a simple lon/lat ring and are left out.
func ZoneFeatures(site domain.ImpactSite, zones domain.DamageZones) (geom.GeoJSONFeatureCollection, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	all := []zone{
		{domain.DamageCrater, zones.CraterRadiusKm},
		{domain.DamageFireball, zones.FireballRadiusKm},
		{domain.DamageShockwave, zones.ShockwaveRadiusKm},
		{domain.DamageThermal, zones.ThermalRadiationKm},
		{domain.DamageSeismic, zones.SeismicEffectKm},
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].radiusKm > all[j].radiusKm })

	poleKm := math.Min(
		domain.Haversine(site.Lat, site.Lon, 90, 0),
		domain.Haversine(site.Lat, site.Lon, -90, 0),
	)

	fc := make(geom.GeoJSONFeatureCollection, 0, len(all)+1)
	for _, z := range all {
		if z.radiusKm <= 0 || z.radiusKm >= poleKm {
			continue
		}
		poly, err := circle(site, z.radiusKm)
		if err != nil {
			return nil, fmt.Errorf("build %s zone: %w", z.name, err)
		}
		fc = append(fc, geom.GeoJSONFeature{
			ID:       string(z.name),
			Geometry: poly.AsGeometry(),
			Properties: map[string]any{
				"kind":      "zone",
				"zone":      string(z.name),
				"radius_km": z.radiusKm,
			},
		})
	}

	omitted := len(all) - len(fc)
	x, y := WebMercator(site.Lat, site.Lon)
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: site.Lon, Y: site.Lat}})
	if err != nil {
		return nil, fmt.Errorf("build impact point: %w", err)
	}
	fc = append(fc, geom.GeoJSONFeature{
		ID:       "impact_site",
		Geometry: pt.AsGeometry(),
		Properties: map[string]any{
			"kind":          "impact_site",
			"epsg3857_x":    x,
			"epsg3857_y":    y,
			"zones_omitted": omitted,
		},
	})
	return fc, nil
}

// WebMercator projects a WGS84 coordinate to EPSG:3857 meters.
func WebMercator(lat, lon float64) (x, y float64) {
	x, y, _ = wgs84.EPSG().Transform(4326, 3857)(lon, lat, 0)
	return x, y
}

// circle approximates a geodesic circle as a closed polygon ring.
// Longitudes are kept continuous around the center so rings crossing the
// antimeridian stay simple.
func circle(site domain.ImpactSite, radiusKm float64) (geom.Polygon, error) {
	coords := make([]float64, 0, 2*(CircleSegments+1))
	for i := 0; i < CircleSegments; i++ {
		bearing := float64(i) * 360 / CircleSegments
		lat, lon := domain.Destination(site.Lat, site.Lon, bearing, radiusKm)
		d := lon - site.Lon
		if d > 180 {
			d -= 360
		} else if d < -180 {
			d += 360
		}
		coords = append(coords, site.Lon+d, lat)
	}
	coords = append(coords, coords[0], coords[1])

	ring, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{ring})
}
