package domain

import (
	"math"
	"strings"
)

// TargetType is the medium at the impact point.
type TargetType string

const (
	TargetLand  TargetType = "land"
	TargetWater TargetType = "water"
)

// DefaultImpactAngle is the statistically most likely entry angle in degrees.
const DefaultImpactAngle = 45.0

// DefaultVelocityKmS is used when a catalog record has no close-approach velocity.
const DefaultVelocityKmS = 20.0

// ParseTargetType normalizes a target medium. An empty string means land.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(strings.ToLower(strings.TrimSpace(s))) {
	case "", TargetLand:
		return TargetLand, nil
	case TargetWater:
		return TargetWater, nil
	default:
		return "", invalid("target_type", "must be %q or %q, got %q", TargetLand, TargetWater, s)
	}
}

// AsteroidParameters describes the impactor.
type AsteroidParameters struct {
	DiameterM    float64
	VelocityKmS  float64
	AngleDegrees float64
	TargetType   TargetType
}

// NewAsteroidParameters returns parameters with the default angle and a land target.
func NewAsteroidParameters(diameterM, velocityKmS float64) AsteroidParameters {
	return AsteroidParameters{
		DiameterM:    diameterM,
		VelocityKmS:  velocityKmS,
		AngleDegrees: DefaultImpactAngle,
		TargetType:   TargetLand,
	}
}

// Validate checks ranges and normalizes an empty target type to land.
func (p AsteroidParameters) Validate() (AsteroidParameters, error) {
	if !positiveFinite(p.DiameterM) {
		return p, invalid("diameter_m", "must be a positive finite number, got %v", p.DiameterM)
	}
	if !positiveFinite(p.VelocityKmS) {
		return p, invalid("velocity_km_s", "must be a positive finite number, got %v", p.VelocityKmS)
	}
	if math.IsNaN(p.AngleDegrees) || p.AngleDegrees < 0 || p.AngleDegrees > 90 {
		return p, invalid("impact_angle", "must be within [0, 90], got %v", p.AngleDegrees)
	}
	target, err := ParseTargetType(string(p.TargetType))
	if err != nil {
		return p, err
	}
	p.TargetType = target
	return p, nil
}

// ImpactSite is a WGS-84 latitude/longitude pair in degrees.
type ImpactSite struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinates are on the globe.
func (s ImpactSite) Validate() error {
	if math.IsNaN(s.Lat) || s.Lat < -90 || s.Lat > 90 {
		return invalid("lat", "must be within [-90, 90], got %v", s.Lat)
	}
	if math.IsNaN(s.Lon) || s.Lon < -180 || s.Lon > 180 {
		return invalid("lon", "must be within [-180, 180], got %v", s.Lon)
	}
	return nil
}

// AsteroidSummary is the impactor section of a simulation result.
type AsteroidSummary struct {
	DiameterM   float64 `json:"diameter_m"`
	MassKg      float64 `json:"mass_kg"`
	VelocityKmS float64 `json:"velocity_km_s"`
}

// ImpactSummary is the impact-geometry section of a simulation result.
type ImpactSummary struct {
	Location     ImpactSite `json:"location"`
	AngleDegrees float64    `json:"angle_degrees"`
	TargetType   TargetType `json:"target_type"`
}

// EnergyResult holds the kinetic energy of the impact.
type EnergyResult struct {
	Joules         float64 `json:"joules"`
	MegatonsTNT    float64 `json:"megatons_tnt"`
	HiroshimaBombs float64 `json:"hiroshima_bombs"`
	Comparison     string  `json:"comparison"`
}

// CraterResult holds the estimated final crater size.
type CraterResult struct {
	DiameterM  float64 `json:"diameter_m"`
	RadiusM    float64 `json:"radius_m"`
	Comparison string  `json:"comparison"`
}

// SeismicResult holds the equivalent earthquake magnitude.
type SeismicResult struct {
	MagnitudeRichter float64 `json:"magnitude_richter"`
	Comparison       string  `json:"comparison"`
}

// DamageZones are radii in kilometers within which an effect is damaging.
type DamageZones struct {
	CraterRadiusKm     float64 `json:"crater_radius_km"`
	FireballRadiusKm   float64 `json:"fireball_radius_km"`
	ShockwaveRadiusKm  float64 `json:"shockwave_radius_km"`
	ThermalRadiationKm float64 `json:"thermal_radiation_km"`
	SeismicEffectKm    float64 `json:"seismic_effect_km"`
}

// PopulationImpact is a rough headcount inside the shockwave radius.
type PopulationImpact struct {
	Method                  string  `json:"method"`
	EstimatedPeopleAffected int64   `json:"estimated_people_affected"`
	AffectedAreaKm2         float64 `json:"affected_area_km2"`
	Note                    string  `json:"note"`
}

// SimulationResult aggregates every output of one simulation.
type SimulationResult struct {
	Asteroid         AsteroidSummary  `json:"asteroid"`
	Impact           ImpactSummary    `json:"impact"`
	Energy           EnergyResult     `json:"energy"`
	Crater           CraterResult     `json:"crater"`
	Seismic          SeismicResult    `json:"seismic"`
	DamageZones      DamageZones      `json:"damage_zones"`
	PopulationImpact PopulationImpact `json:"population_impact"`
}

// CloseApproach is one pass of a near-Earth object.
type CloseApproach struct {
	Date           string   `json:"date,omitempty"`
	DateFull       string   `json:"date_full,omitempty"`
	VelocityKmS    *float64 `json:"velocity_km_s,omitempty"`
	MissDistanceKm float64  `json:"miss_distance_km,omitempty"`
}

// CatalogRecord is a near-Earth object as reported by the catalog.
type CatalogRecord struct {
	ID                     string          `json:"id,omitempty"`
	Name                   string          `json:"name,omitempty"`
	DiameterMinM           *float64        `json:"diameter_min_m,omitempty"`
	DiameterMaxM           *float64        `json:"diameter_max_m,omitempty"`
	IsPotentiallyHazardous bool            `json:"is_potentially_hazardous"`
	CloseApproachData      []CloseApproach `json:"close_approach_data"`
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
