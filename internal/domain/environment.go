package domain

import (
	"fmt"
	"math"
	"strconv"
)

// earthSurfaceKm2 is the total surface area of the Earth.
const earthSurfaceKm2 = 510_000_000

// Severity is the qualitative band an environmental effect falls into.
type Severity string

const (
	SeverityNone             Severity = "None"
	SeverityLow              Severity = "Low"
	SeverityMinor            Severity = "Minor"
	SeverityMinimal          Severity = "Minimal"
	SeverityLocalized        Severity = "Localized"
	SeverityLocal            Severity = "Local"
	SeverityModerate         Severity = "Moderate"
	SeverityHigh             Severity = "High"
	SeverityRegional         Severity = "Regional"
	SeverityContinental      Severity = "Regional/Continental"
	SeveritySevere           Severity = "Severe"
	SeverityExtreme          Severity = "Extreme"
	SeverityCatastrophic     Severity = "Catastrophic"
	SeverityMassExtinction   Severity = "Mass Extinction Event"
	SeverityGlobalExtinction Severity = "Global - Mass Extinction"
)

// AtmosphericEffects describes dust injection and blast in the atmosphere.
type AtmosphericEffects struct {
	Severity               Severity `json:"severity"`
	DustEjectedTons        int64    `json:"dust_ejected_tons"`
	AtmosphericPenetration string   `json:"atmospheric_penetration"`
	ShockWave              string   `json:"shock_wave"`
	Effects                []string `json:"effects"`
}

// ClimateEffects describes cooling and its duration. Exactly one of the
// duration fields is set, depending on the band.
type ClimateEffects struct {
	Severity               Severity `json:"severity"`
	DurationDays           *int64   `json:"duration_days,omitempty"`
	DurationMonths         *int64   `json:"duration_months,omitempty"`
	DurationYears          *int64   `json:"duration_years,omitempty"`
	TemperatureDropCelsius float64  `json:"temperature_drop_celsius"`
	AffectedAreaKm2        int64    `json:"affected_area_km2"`
	Effects                []string `json:"effects"`
}

// TsunamiEffects describes waves generated by an ocean impact.
type TsunamiEffects struct {
	Risk               Severity `json:"risk"`
	Message            string   `json:"message,omitempty"`
	WaveHeightMeters   *float64 `json:"wave_height_meters,omitempty"`
	AffectedCoastlines string   `json:"affected_coastlines,omitempty"`
	TravelTimeHours    string   `json:"travel_time_hours,omitempty"`
	Effects            []string `json:"effects,omitempty"`
}

// SeismicEffects describes ground shaking at continental scale.
type SeismicEffects struct {
	Magnitude float64  `json:"magnitude"`
	Severity  Severity `json:"severity"`
	RangeKm   int      `json:"range_km"`
	Effects   []string `json:"effects"`
}

// EcosystemEffects describes habitat loss and recovery.
type EcosystemEffects struct {
	Severity        Severity `json:"severity"`
	AffectedAreaKm2 int64    `json:"affected_area_km2"`
	HabitatLoss     string   `json:"habitat_loss"`
	SpeciesAtRisk   string   `json:"species_at_risk"`
	RecoveryTime    string   `json:"recovery_time"`
	Effects         []string `json:"effects"`
}

// RadiationEffects describes the thermal pulse.
type RadiationEffects struct {
	ThermalRadiationRadiusKm float64  `json:"thermal_radiation_radius_km"`
	Severity                 Severity `json:"severity"`
	Effects                  []string `json:"effects"`
}

// EnvironmentalImpact bundles the six secondary-effect reports.
type EnvironmentalImpact struct {
	Atmospheric AtmosphericEffects `json:"atmospheric"`
	Climate     ClimateEffects     `json:"climate"`
	Tsunami     TsunamiEffects     `json:"tsunami"`
	Seismic     SeismicEffects     `json:"seismic"`
	Ecosystem   EcosystemEffects   `json:"ecosystem"`
	Radiation   RadiationEffects   `json:"radiation"`
}

// AssessEnvironment computes every secondary effect of an impact.
func AssessEnvironment(site ImpactSite, megatons, craterDiameterM float64, target TargetType) (EnvironmentalImpact, error) {
	if err := site.Validate(); err != nil {
		return EnvironmentalImpact{}, err
	}
	if megatons < 0 || math.IsInf(megatons, 0) || math.IsNaN(megatons) {
		return EnvironmentalImpact{}, invalid("megatons", "must be a non-negative finite number, got %v", megatons)
	}
	if craterDiameterM < 0 || math.IsInf(craterDiameterM, 0) || math.IsNaN(craterDiameterM) {
		return EnvironmentalImpact{}, invalid("crater_diameter_m", "must be a non-negative finite number, got %v", craterDiameterM)
	}
	target, err := ParseTargetType(string(target))
	if err != nil {
		return EnvironmentalImpact{}, err
	}

	return EnvironmentalImpact{
		Atmospheric: atmosphericEffects(megatons),
		Climate:     climateEffects(megatons),
		Tsunami:     tsunamiEffects(megatons, target),
		Seismic:     seismicEffects(megatons),
		Ecosystem:   ecosystemEffects(megatons, craterDiameterM),
		Radiation:   radiationEffects(megatons),
	}, nil
}

func atmosphericEffects(mt float64) AtmosphericEffects {
	switch {
	case mt < 1:
		return AtmosphericEffects{
			Severity:               SeverityMinimal,
			DustEjectedTons:        truncInt(mt * 1e6),
			AtmosphericPenetration: "Complete vaporization before impact",
			ShockWave:              "Localized sonic boom",
			Effects: []string{
				"Bright fireball visible",
				"Loud sonic boom in area",
				"Minimal dust in atmosphere",
			},
		}
	case mt < 100:
		return AtmosphericEffects{
			Severity:               SeverityModerate,
			DustEjectedTons:        truncInt(mt * 5e6),
			AtmosphericPenetration: "Significant energy release in atmosphere",
			ShockWave:              fmt.Sprintf("Overpressure up to %.1f PSI at 10km", mt*0.5),
			Effects: []string{
				"Massive fireball visible for hundreds of km",
				"Shockwave breaks windows up to 50km away",
				"Dust cloud affects local weather for days",
				"Temporary ozone depletion in region",
			},
		}
	case mt < 10000:
		return AtmosphericEffects{
			Severity:               SeveritySevere,
			DustEjectedTons:        truncInt(mt * 1e7),
			AtmosphericPenetration: "Massive explosion in stratosphere",
			ShockWave:              "Global atmospheric disturbance",
			Effects: []string{
				"Fireball visible from space",
				"Stratospheric dust injection",
				"Regional cooling for weeks/months",
				"Acid rain in surrounding areas",
				"Ozone layer damage",
				"Disruption of air travel globally",
			},
		}
	default:
		return AtmosphericEffects{
			Severity:               SeverityCatastrophic,
			DustEjectedTons:        truncInt(mt * 5e7),
			AtmosphericPenetration: "Mass extinction level event",
			ShockWave:              "Global atmospheric ignition possible",
			Effects: []string{
				"Global dust cloud blocking sunlight",
				"Impact winter lasting years",
				"Collapse of photosynthesis",
				"Mass extinction of plant life",
				"Breakdown of food chains",
				"Global temperature drop of 10-20°C",
			},
		}
	}
}

func climateEffects(mt float64) ClimateEffects {
	switch {
	case mt < 100:
		days := truncInt(mt * 0.5)
		drop := round2(mt * 0.01)
		return ClimateEffects{
			Severity:               SeverityLocal,
			DurationDays:           &days,
			TemperatureDropCelsius: drop,
			AffectedAreaKm2:        truncInt(mt * 10000),
			Effects: []string{
				fmt.Sprintf("Local cooling of %s°C for %d days", formatNumber(drop), days),
				"Disruption of local weather patterns",
				"Temporary reduction in solar radiation",
			},
		}
	case mt < 10000:
		months := truncInt(mt / 100)
		drop := round1(mt * 0.001)
		return ClimateEffects{
			Severity:               SeverityContinental,
			DurationMonths:         &months,
			TemperatureDropCelsius: drop,
			AffectedAreaKm2:        truncInt(mt * 100000),
			Effects: []string{
				fmt.Sprintf("Regional cooling of %s°C for %d months", formatNumber(drop), months),
				"Disruption of growing seasons",
				"Increased precipitation in some areas, drought in others",
				"Failure of crops over wide areas",
				"Economic disruption to agriculture",
			},
		}
	default:
		years := truncInt(mt / 10000)
		drop := round1(mt * 0.0001)
		return ClimateEffects{
			Severity:               SeverityGlobalExtinction,
			DurationYears:          &years,
			TemperatureDropCelsius: drop,
			AffectedAreaKm2:        earthSurfaceKm2,
			Effects: []string{
				fmt.Sprintf("Global cooling of %s°C for %d+ years", formatNumber(drop), years),
				"Impact winter - darkness for months",
				"Collapse of global food production",
				"Mass starvation",
				"Ecosystem collapse",
				"Possible human extinction",
			},
		}
	}
}

func tsunamiEffects(mt float64, target TargetType) TsunamiEffects {
	if target != TargetWater {
		return TsunamiEffects{
			Risk:    SeverityNone,
			Message: "Impact on land - no tsunami generated",
		}
	}

	wave := 10 * math.Sqrt(mt)
	height := round1(wave)

	switch {
	case mt < 10:
		return TsunamiEffects{
			Risk:               SeverityLow,
			WaveHeightMeters:   &height,
			AffectedCoastlines: "Local (< 100km)",
			Effects: []string{
				fmt.Sprintf("Tsunami waves up to %.1fm high", wave),
				"Flooding of immediate coastal areas",
				"Damage to ports and coastal infrastructure",
				"Evacuation needed for low-lying coasts",
			},
		}
	case mt < 1000:
		return TsunamiEffects{
			Risk:               SeverityHigh,
			WaveHeightMeters:   &height,
			AffectedCoastlines: "Regional (100-1000km)",
			TravelTimeHours:    "Varies by distance (6-12 hours typical)",
			Effects: []string{
				fmt.Sprintf("Massive tsunami waves up to %.1fm high", wave),
				"Devastation of all coastal areas within 1000km",
				"Waves detectable across ocean basin",
				"Complete destruction of coastal cities",
				"Millions at risk",
				"Warning time: 2-12 hours depending on distance",
			},
		}
	default:
		return TsunamiEffects{
			Risk:               SeverityCatastrophic,
			WaveHeightMeters:   &height,
			AffectedCoastlines: "Global - All oceans",
			TravelTimeHours:    "12-24 hours to reach all coasts",
			Effects: []string{
				fmt.Sprintf("Mega-tsunami waves up to %.1fm high", wave),
				"Global tsunami affecting all ocean-connected coasts",
				"Complete inundation of coastal plains",
				"Billions at risk",
				"Permanent reshaping of coastlines",
				"Flooding extends 10-100km inland",
			},
		}
	}
}

func seismicEffects(mt float64) SeismicEffects {
	magnitude := SeismicMagnitude(mt * TNTJoulesPerTon * 1e6)

	switch {
	case magnitude < 5:
		return SeismicEffects{
			Magnitude: round1(magnitude),
			Severity:  SeverityMinor,
			RangeKm:   50,
			Effects:   []string{"Perceptible shaking near impact site"},
		}
	case magnitude < 7:
		return SeismicEffects{
			Magnitude: round1(magnitude),
			Severity:  SeverityModerate,
			RangeKm:   500,
			Effects: []string{
				"Strong shaking up to 500km away",
				"Damage to buildings near impact",
				"Landslides in mountainous terrain",
				"Infrastructure damage",
			},
		}
	default:
		return SeismicEffects{
			Magnitude: round1(magnitude),
			Severity:  SeverityExtreme,
			RangeKm:   5000,
			Effects: []string{
				"Global seismic waves detectable",
				"Severe shaking across continent",
				"Triggering of earthquakes on fault lines",
				"Massive landslides",
				"Volcanic eruptions triggered",
				"Permanent geological changes",
			},
		}
	}
}

func ecosystemEffects(mt, craterDiameterM float64) EcosystemEffects {
	switch {
	case mt < 1:
		return EcosystemEffects{
			Severity:        SeverityLocalized,
			AffectedAreaKm2: truncInt(craterDiameterM * craterDiameterM * 3.14 / 1e6),
			HabitatLoss:     "Minimal",
			SpeciesAtRisk:   "Local populations only",
			RecoveryTime:    "5-20 years",
			Effects: []string{
				"Destruction of immediate impact zone",
				"Fire damage in surrounding forest",
				"Temporary displacement of wildlife",
			},
		}
	case mt < 10000:
		return EcosystemEffects{
			Severity:        SeverityRegional,
			AffectedAreaKm2: truncInt(mt * 5000),
			HabitatLoss:     "Significant",
			SpeciesAtRisk:   "Regional extinctions possible",
			RecoveryTime:    "50-200 years",
			Effects: []string{
				"Widespread destruction of ecosystems",
				"Mass animal deaths from shockwave and fires",
				"Contamination of water sources",
				"Disruption of food chains",
				"Extinction of specialized species",
				"Invasive species takeover during recovery",
			},
		}
	default:
		return EcosystemEffects{
			Severity:        SeverityMassExtinction,
			AffectedAreaKm2: earthSurfaceKm2,
			HabitatLoss:     "Catastrophic - Global",
			SpeciesAtRisk:   "70-90% of all species",
			RecoveryTime:    "Millions of years",
			Effects: []string{
				"Collapse of global ecosystems",
				"Extinction of most large animals",
				"Death of most plant life (no sunlight)",
				"Collapse of ocean food chains",
				"Only extremophiles and some microbes survive",
				"Complete restructuring of biosphere",
				"Comparable to dinosaur extinction",
			},
		}
	}
}

func radiationEffects(mt float64) RadiationEffects {
	radius := 5.0 * math.Pow(mt, 0.4)

	switch {
	case mt < 1:
		return RadiationEffects{
			ThermalRadiationRadiusKm: round1(radius),
			Severity:                 SeverityLow,
			Effects: []string{
				"First-degree burns possible within 1km",
				"Ignition of dry materials",
				"Brief flash of intense light",
			},
		}
	case mt < 1000:
		return RadiationEffects{
			ThermalRadiationRadiusKm: round1(radius),
			Severity:                 SeverityHigh,
			Effects: []string{
				fmt.Sprintf("Third-degree burns up to %.0fkm from impact", radius),
				"Ignition of all flammable materials",
				"Firestorms in urban areas",
				"Retinal damage from flash (permanent blindness)",
				"Widespread fires creating smoke and soot",
			},
		}
	default:
		return RadiationEffects{
			ThermalRadiationRadiusKm: round1(radius),
			Severity:                 SeverityExtreme,
			Effects: []string{
				fmt.Sprintf("Lethal thermal radiation up to %.0fkm", radius),
				"Global heat pulse",
				"Ignition of forests worldwide",
				"Atmospheric heating",
				"Possible global firestorm",
			},
		}
	}
}

// formatNumber renders a float in its shortest form that keeps one decimal,
// so 2 prints as "2.0" and 0.25 as "0.25".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
