package domain

import "math"

const (
	// AsteroidDensity is the bulk density of a stony asteroid in kg/m³.
	AsteroidDensity = 3000.0

	// TNTJoulesPerTon is the energy released by one ton of TNT.
	TNTJoulesPerTon = 4.184e9

	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0

	landDensity  = 2500.0
	waterDensity = 1000.0
)

// Mass returns the mass in kg of a uniform sphere of the given diameter.
func Mass(diameterM float64) (float64, error) {
	if diameterM < 0 || math.IsInf(diameterM, 0) || math.IsNaN(diameterM) {
		return 0, invalid("diameter_m", "must be a non-negative finite number, got %v", diameterM)
	}
	r := diameterM / 2
	volume := (4.0 / 3.0) * math.Pi * r * r * r
	return volume * AsteroidDensity, nil
}

// KineticEnergy returns ½·m·v² in joules for a velocity in km/s.
func KineticEnergy(massKg, velocityKmS float64) float64 {
	v := velocityKmS * 1000
	return 0.5 * massKg * v * v
}

// EnergyToMegatons converts joules to megatons of TNT.
func EnergyToMegatons(joules float64) float64 {
	return joules / TNTJoulesPerTon / 1e6
}

// CraterDiameter estimates the final crater diameter in meters.
func CraterDiameter(megatons float64, target TargetType) float64 {
	density := landDensity
	if target == TargetWater {
		density = waterDensity
	}
	return 1.8 * math.Pow(megatons, 0.28) * math.Pow(density, -0.33) * 1000
}

// SeismicMagnitude converts impact energy to a Richter-like magnitude.
// Non-positive energy and negative magnitudes both yield 0.
func SeismicMagnitude(joules float64) float64 {
	if joules <= 0 {
		return 0
	}
	return math.Max(0, 0.67*math.Log10(joules)-5.87)
}

// DamageRadii returns the five damage-zone radii in km.
func DamageRadii(megatons float64) DamageZones {
	return DamageZones{
		CraterRadiusKm:     CraterDiameter(megatons, TargetLand) / 2000,
		FireballRadiusKm:   0.5 * math.Pow(megatons, 0.4),
		ShockwaveRadiusKm:  2.0 * math.Pow(megatons, 0.33),
		ThermalRadiationKm: 5.0 * math.Pow(megatons, 0.4),
		SeismicEffectKm:    50.0 * math.Pow(megatons, 0.25),
	}
}
