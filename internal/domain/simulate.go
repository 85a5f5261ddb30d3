package domain

import (
	"fmt"
	"math"
)

const (
	// hiroshimaMegatons is the yield of the Hiroshima bomb (15 kt).
	hiroshimaMegatons = 0.015

	// globalPopulationDensity is the average number of people per km² of land.
	globalPopulationDensity = 60.0
)

// Simulate runs the full physics chain for one impact.
func Simulate(params AsteroidParameters, site ImpactSite) (SimulationResult, error) {
	params, err := params.Validate()
	if err != nil {
		return SimulationResult{}, err
	}
	if err := site.Validate(); err != nil {
		return SimulationResult{}, err
	}

	mass, err := Mass(params.DiameterM)
	if err != nil {
		return SimulationResult{}, err
	}
	joules := KineticEnergy(mass, params.VelocityKmS)
	megatons := EnergyToMegatons(joules)
	crater := CraterDiameter(megatons, params.TargetType)
	magnitude := SeismicMagnitude(joules)
	zones := DamageRadii(megatons)

	return SimulationResult{
		Asteroid: AsteroidSummary{
			DiameterM:   params.DiameterM,
			MassKg:      mass,
			VelocityKmS: params.VelocityKmS,
		},
		Impact: ImpactSummary{
			Location:     site,
			AngleDegrees: params.AngleDegrees,
			TargetType:   params.TargetType,
		},
		Energy: EnergyResult{
			Joules:         joules,
			MegatonsTNT:    round2(megatons),
			HiroshimaBombs: math.Round(megatons / hiroshimaMegatons),
			Comparison:     EnergyComparison(megatons),
		},
		Crater: CraterResult{
			DiameterM:  round2(crater),
			RadiusM:    round2(crater / 2),
			Comparison: CraterComparison(crater),
		},
		Seismic: SeismicResult{
			MagnitudeRichter: round2(magnitude),
			Comparison:       SeismicComparison(magnitude),
		},
		DamageZones: DamageZones{
			CraterRadiusKm:     round2(zones.CraterRadiusKm),
			FireballRadiusKm:   round2(zones.FireballRadiusKm),
			ShockwaveRadiusKm:  round2(zones.ShockwaveRadiusKm),
			ThermalRadiationKm: round2(zones.ThermalRadiationKm),
			SeismicEffectKm:    round2(zones.SeismicEffectKm),
		},
		PopulationImpact: EstimatePopulationImpact(zones),
	}, nil
}

// CatalogParameters derives impactor parameters from a catalog record.
// The diameter is the mean of the min/max estimates; a lone bound is used as-is.
// The velocity is taken from the first close approach, defaulting to 20 km/s.
func CatalogParameters(record CatalogRecord, target TargetType) (AsteroidParameters, error) {
	var diameter float64
	switch {
	case record.DiameterMinM != nil && record.DiameterMaxM != nil:
		diameter = (*record.DiameterMinM + *record.DiameterMaxM) / 2
	case record.DiameterMinM != nil:
		diameter = *record.DiameterMinM
	case record.DiameterMaxM != nil:
		diameter = *record.DiameterMaxM
	default:
		return AsteroidParameters{}, fmt.Errorf("catalog record %q has no diameter estimate: %w", record.ID, ErrMissingData)
	}

	velocity := DefaultVelocityKmS
	if len(record.CloseApproachData) > 0 && record.CloseApproachData[0].VelocityKmS != nil {
		velocity = *record.CloseApproachData[0].VelocityKmS
	}

	params := NewAsteroidParameters(diameter, velocity)
	params.TargetType = target
	return params, nil
}

// SimulateFromCatalogRecord simulates an impact of a catalogued object at its
// default entry angle.
func SimulateFromCatalogRecord(record CatalogRecord, site ImpactSite, target TargetType) (SimulationResult, error) {
	params, err := CatalogParameters(record, target)
	if err != nil {
		return SimulationResult{}, err
	}
	return Simulate(params, site)
}

// EnergyComparison labels an impact energy against known explosions.
func EnergyComparison(megatons float64) string {
	switch {
	case megatons < 0.001:
		return "Less than a small bomb"
	case megatons < hiroshimaMegatons:
		return "Similar to large conventional bombs"
	case megatons < 1:
		return fmt.Sprintf("Equivalent to %.0f Hiroshima bombs", megatons/hiroshimaMegatons)
	case megatons < 50:
		return "Larger than any nuclear weapon ever tested (Tsar Bomba: 50 MT)"
	default:
		return fmt.Sprintf("Equivalent to %.0f megatons - extinction-level event", megatons)
	}
}

// CraterComparison labels a crater diameter in meters against familiar sizes.
func CraterComparison(diameterM float64) string {
	switch {
	case diameterM < 50:
		return "Size of a small house"
	case diameterM < 100:
		return "Size of a football field"
	case diameterM < 500:
		return "Size of several football fields"
	case diameterM < 1000:
		return "Larger than 10 city blocks"
	case diameterM < 5000:
		return "Larger than New York's Central Park"
	default:
		return fmt.Sprintf("About %.1f km across - visible from space", diameterM/1000)
	}
}

// SeismicComparison labels a magnitude against historical earthquakes.
func SeismicComparison(magnitude float64) string {
	switch {
	case magnitude < 3:
		return "Barely detectable - instruments only"
	case magnitude < 4:
		return "Felt near the epicenter"
	case magnitude < 5:
		return "Minor damage to weak buildings"
	case magnitude < 6:
		return "Moderate damage to structures"
	case magnitude < 7:
		return "Severe damage over a wide area"
	case magnitude < 8:
		return "Major devastation (similar to Haiti 2010, 7.0)"
	default:
		return "Catastrophic (similar to Japan 2011, 9.1)"
	}
}

// EstimatePopulationImpact counts people inside the shockwave disc at the
// global average density.
func EstimatePopulationImpact(zones DamageZones) PopulationImpact {
	area := math.Pi * zones.ShockwaveRadiusKm * zones.ShockwaveRadiusKm
	return PopulationImpact{
		Method:                  "simplified_average",
		EstimatedPeopleAffected: truncInt(area * globalPopulationDensity),
		AffectedAreaKm2:         round2(area),
		Note:                    "Estimate uses the global average population density. Integrate a population API for accuracy.",
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// truncInt truncates toward zero, saturating at the int64 range.
func truncInt(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}
