package domain

import "math"

// DamageClass names the innermost damage zone a place falls in.
type DamageClass string

const (
	DamageCrater    DamageClass = "crater"
	DamageFireball  DamageClass = "fireball"
	DamageShockwave DamageClass = "shockwave"
	DamageThermal   DamageClass = "thermal"
	DamageSeismic   DamageClass = "seismic"
	DamageNone      DamageClass = "none"
)

// MaxAffectedPlaces caps the number of settlements reported for one impact.
const MaxAffectedPlaces = 50

// AffectedPlace is a settlement annotated with the damage it would suffer.
type AffectedPlace struct {
	Place
	Damage DamageClass `json:"damage"`
}

// ClassifyDamage returns the innermost zone whose radius covers distanceKm.
func ClassifyDamage(distanceKm float64, zones DamageZones) DamageClass {
	switch {
	case distanceKm <= zones.CraterRadiusKm:
		return DamageCrater
	case distanceKm <= zones.FireballRadiusKm:
		return DamageFireball
	case distanceKm <= zones.ShockwaveRadiusKm:
		return DamageShockwave
	case distanceKm <= zones.ThermalRadiationKm:
		return DamageThermal
	case distanceKm <= zones.SeismicEffectKm:
		return DamageSeismic
	default:
		return DamageNone
	}
}

// AffectedPlaces annotates each place with its damage class, keeping order.
func AffectedPlaces(places []Place, zones DamageZones) []AffectedPlace {
	out := make([]AffectedPlace, 0, len(places))
	for _, p := range places {
		out = append(out, AffectedPlace{Place: p, Damage: ClassifyDamage(p.DistanceKm, zones)})
	}
	return out
}

// SearchRadiusKm is the radius worth searching for affected settlements: the
// widest of the shockwave, thermal and seismic zones, capped at maxKm when
// maxKm is positive.
func SearchRadiusKm(zones DamageZones, maxKm float64) float64 {
	r := math.Max(zones.ShockwaveRadiusKm, math.Max(zones.ThermalRadiationKm, zones.SeismicEffectKm))
	if maxKm > 0 && r > maxKm {
		return maxKm
	}
	return r
}
