// Package domain models asteroid impact consequences.
//
// # Physics Chain
//
// Every simulation runs the same deterministic chain of empirical scaling laws:
//
//	mass      = (4/3)·π·(d/2)³·ρ              ρ = 3000 kg/m³ (stony asteroid)
//	energy    = ½·m·(v·1000)²                 joules, v in km/s
//	megatons  = energy / 4.184e9 / 1e6        TNT equivalent
//	crater    = 1.8·Mt^0.28·ρt^-0.33·1000     meters, ρt = 2500 land | 1000 water
//	magnitude = 0.67·log10(energy) − 5.87     clamped at 0
//
// Damage-zone radii (km) are independent power laws of megatons:
//
//	crater     crater(Mt, land) / 2000
//	fireball   0.5·Mt^0.4
//	shockwave  2.0·Mt^0.33
//	thermal    5.0·Mt^0.4
//	seismic    50·Mt^0.25
//
// The crater zone always uses land density, even for water impacts. The
// exponents and coefficients are fixed fits (Collins et al. 2005 style) and
// must not be re-derived: downstream consumers compare output text and
// numbers across versions.
//
// # Comparison Labels
//
// Human-readable labels are step functions with literal breakpoints:
//
//	Energy (Mt):  <0.001 | <0.015 | <1 | <50 | ≥50
//	Crater (m):   <50 | <100 | <500 | <1000 | <5000 | ≥5000
//	Magnitude:    <3 | <4 | <5 | <6 | <7 | <8 | ≥8
//
// A band selects values ≥ its lower bound and < its upper bound.
//
// # Environmental Effects
//
// Six sub-reports share the megaton input. Bands:
//
//	Atmospheric: <1 Minimal | <100 Moderate | <10000 Severe | Catastrophic
//	Climate:     <100 Local | <10000 Regional/Continental | Global - Mass Extinction
//	Tsunami:     land → None; water: <10 Low | <1000 High | Catastrophic
//	Seismic:     magnitude <5 Minor | <7 Moderate | Extreme
//	Ecosystem:   <1 Localized | <10000 Regional | Mass Extinction Event
//	Radiation:   <1 Low | <1000 High | Extreme
//
// # Population
//
// The affected population is the shockwave disc area times a constant global
// average density of 60 persons/km². It is illustrative only.
//
// # Location and Approach
//
// [ResolveLocation] names an impact site from a [Geocoder] and a [PlaceFinder],
// falling back to coarse ocean boxes for remote sites. [TimeToApproach] turns
// the next close approach of a catalogued object into a countdown and an
// evacuation level; it reads time from the package clock, see [SetClock].
//
// # Errors
//
// Malformed numeric input fails fast with [ErrInvalidParameter]. Catalog
// records without any diameter fail with [ErrMissingData]. Collaborators
// report absent upstream data with [ErrNotFound].
package domain
