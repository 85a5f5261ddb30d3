package simulator

import (
	"github.com/couchcryptid/impact-sim-service/internal/domain"
)

// Request is the input of a simulation. The impactor comes either from
// DiameterM and VelocityKmS or from NASAData; the site comes either from
// Location or from Address.
type Request struct {
	DiameterM          *float64              `json:"diameter_m"`
	VelocityKmS        *float64              `json:"velocity_km_s"`
	NASAData           *domain.CatalogRecord `json:"nasa_data"`
	Location           *Location             `json:"impact_location"`
	Address            string                `json:"address"`
	ImpactAngle        *float64              `json:"impact_angle"`
	TargetType         string                `json:"target_type"`
	IncludeLocation    bool                  `json:"include_location"`
	IncludeEnvironment bool                  `json:"include_environment"`
}

// Location is an impact_location as sent by a client. Both coordinates are
// required; a missing one is reported rather than read as zero.
type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NewLocation returns a Location with both coordinates set.
func NewLocation(lat, lon float64) *Location {
	return &Location{Lat: &lat, Lon: &lon}
}

// Site converts l into a validated impact site.
func (l Location) Site() (domain.ImpactSite, error) {
	if l.Lat == nil {
		return domain.ImpactSite{}, &domain.ParameterError{Field: "impact_location.lat", Reason: "is required"}
	}
	if l.Lon == nil {
		return domain.ImpactSite{}, &domain.ParameterError{Field: "impact_location.lon", Reason: "is required"}
	}
	site := domain.ImpactSite{Lat: *l.Lat, Lon: *l.Lon}
	return site, site.Validate()
}

// EnvironmentRequest is the input of a standalone environmental assessment.
type EnvironmentRequest struct {
	Location        *Location `json:"impact_location"`
	Megatons        *float64  `json:"megatons"`
	CraterDiameterM *float64  `json:"crater_diameter_m"`
	TargetType      string    `json:"target_type"`
}

// AsteroidInfo identifies the catalogued object a simulation was built from.
type AsteroidInfo struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	IsPotentiallyHazardous bool   `json:"is_potentially_hazardous"`
}

// Report is a simulation result with the optional enrichments requested.
type Report struct {
	SimulationID string `json:"simulation_id"`
	domain.SimulationResult
	LocationInfo        *domain.LocationInfo        `json:"location_info,omitempty"`
	EnvironmentalImpact *domain.EnvironmentalImpact `json:"environmental_impact,omitempty"`
	AsteroidInfo        *AsteroidInfo               `json:"asteroid_info,omitempty"`
}

// PlacesReport lists the settlements inside the damage footprint.
type PlacesReport struct {
	SimulationID   string                 `json:"simulation_id"`
	Location       domain.ImpactSite      `json:"impact_location"`
	DamageZones    domain.DamageZones     `json:"damage_zones"`
	SearchRadiusKm float64                `json:"search_radius_km"`
	Places         []domain.AffectedPlace `json:"places"`
}
