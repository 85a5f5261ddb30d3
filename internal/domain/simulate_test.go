package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSimulate(t *testing.T) {
	site := ImpactSite{Lat: 40.7128, Lon: -74.006}
	res, err := Simulate(NewAsteroidParameters(100, 20), site)
	require.NoError(t, err)

	assert.InDelta(t, 1.5708e9, res.Asteroid.MassKg, 1e5)
	assert.InDelta(t, 3.1416e17, res.Energy.Joules, 1e13)
	assert.Equal(t, 75.09, res.Energy.MegatonsTNT)
	assert.Equal(t, 5006.0, res.Energy.HiroshimaBombs)
	assert.Equal(t, "Equivalent to 75 megatons - extinction-level event", res.Energy.Comparison)

	assert.Equal(t, 456.15, res.Crater.DiameterM)
	assert.Equal(t, 228.08, res.Crater.RadiusM)
	assert.Equal(t, "Size of several football fields", res.Crater.Comparison)

	assert.Equal(t, 5.85, res.Seismic.MagnitudeRichter)
	assert.Equal(t, "Moderate damage to structures", res.Seismic.Comparison)

	want := DamageZones{
		CraterRadiusKm:     0.23,
		FireballRadiusKm:   2.81,
		ShockwaveRadiusKm:  8.32,
		ThermalRadiationKm: 28.13,
		SeismicEffectKm:    147.18,
	}
	if diff := cmp.Diff(want, res.DamageZones); diff != "" {
		t.Errorf("damage zones mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 217.31, res.PopulationImpact.AffectedAreaKm2)
	assert.Equal(t, int64(13038), res.PopulationImpact.EstimatedPeopleAffected)
	assert.Equal(t, "simplified_average", res.PopulationImpact.Method)

	assert.Equal(t, site, res.Impact.Location)
	assert.Equal(t, DefaultImpactAngle, res.Impact.AngleDegrees)
	assert.Equal(t, TargetLand, res.Impact.TargetType)
}

func TestSimulate_Deterministic(t *testing.T) {
	params := AsteroidParameters{DiameterM: 250, VelocityKmS: 17.5, AngleDegrees: 30, TargetType: TargetWater}
	site := ImpactSite{Lat: -12, Lon: 150}

	a, err := Simulate(params, site)
	require.NoError(t, err)
	b, err := Simulate(params, site)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b))
}

func TestSimulate_WaterCraterIsLarger(t *testing.T) {
	site := ImpactSite{}
	land, err := Simulate(NewAsteroidParameters(100, 20), site)
	require.NoError(t, err)

	params := NewAsteroidParameters(100, 20)
	params.TargetType = TargetWater
	water, err := Simulate(params, site)
	require.NoError(t, err)

	assert.Greater(t, water.Crater.DiameterM, land.Crater.DiameterM)
	assert.Equal(t, land.DamageZones, water.DamageZones, "damage zones do not depend on target")
}

func TestSimulate_EmptyTargetDefaultsToLand(t *testing.T) {
	params := AsteroidParameters{DiameterM: 10, VelocityKmS: 10, AngleDegrees: 45}
	res, err := Simulate(params, ImpactSite{})
	require.NoError(t, err)
	assert.Equal(t, TargetLand, res.Impact.TargetType)
}

func TestSimulate_InvalidInput(t *testing.T) {
	valid := NewAsteroidParameters(100, 20)
	tests := []struct {
		name  string
		mut   func(*AsteroidParameters, *ImpactSite)
		field string
	}{
		{"zero diameter", func(p *AsteroidParameters, _ *ImpactSite) { p.DiameterM = 0 }, "diameter_m"},
		{"negative diameter", func(p *AsteroidParameters, _ *ImpactSite) { p.DiameterM = -5 }, "diameter_m"},
		{"infinite diameter", func(p *AsteroidParameters, _ *ImpactSite) { p.DiameterM = math.Inf(1) }, "diameter_m"},
		{"zero velocity", func(p *AsteroidParameters, _ *ImpactSite) { p.VelocityKmS = 0 }, "velocity_km_s"},
		{"NaN velocity", func(p *AsteroidParameters, _ *ImpactSite) { p.VelocityKmS = math.NaN() }, "velocity_km_s"},
		{"angle above 90", func(p *AsteroidParameters, _ *ImpactSite) { p.AngleDegrees = 91 }, "impact_angle"},
		{"negative angle", func(p *AsteroidParameters, _ *ImpactSite) { p.AngleDegrees = -1 }, "impact_angle"},
		{"unknown target", func(p *AsteroidParameters, _ *ImpactSite) { p.TargetType = "lava" }, "target_type"},
		{"latitude out of range", func(_ *AsteroidParameters, s *ImpactSite) { s.Lat = 90.5 }, "lat"},
		{"longitude out of range", func(_ *AsteroidParameters, s *ImpactSite) { s.Lon = -181 }, "lon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, site := valid, ImpactSite{}
			tt.mut(&params, &site)

			_, err := Simulate(params, site)
			require.ErrorIs(t, err, ErrInvalidParameter)
			var pe *ParameterError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestSimulate_AngleBoundsAccepted(t *testing.T) {
	for _, angle := range []float64{0, 90} {
		params := NewAsteroidParameters(50, 15)
		params.AngleDegrees = angle
		_, err := Simulate(params, ImpactSite{Lat: 90, Lon: 180})
		assert.NoError(t, err, "angle %v", angle)
	}
}

func TestParseTargetType(t *testing.T) {
	got, err := ParseTargetType(" Water ")
	require.NoError(t, err)
	assert.Equal(t, TargetWater, got)

	got, err = ParseTargetType("")
	require.NoError(t, err)
	assert.Equal(t, TargetLand, got)

	_, err = ParseTargetType("ice")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCatalogParameters(t *testing.T) {
	t.Run("mean diameter and first approach velocity", func(t *testing.T) {
		rec := CatalogRecord{
			ID:           "3542519",
			DiameterMinM: ptr(100.0),
			DiameterMaxM: ptr(300.0),
			CloseApproachData: []CloseApproach{
				{VelocityKmS: ptr(12.5)},
				{VelocityKmS: ptr(30.0)},
			},
		}
		p, err := CatalogParameters(rec, TargetWater)
		require.NoError(t, err)
		assert.Equal(t, 200.0, p.DiameterM)
		assert.Equal(t, 12.5, p.VelocityKmS)
		assert.Equal(t, DefaultImpactAngle, p.AngleDegrees)
		assert.Equal(t, TargetWater, p.TargetType)
	})

	t.Run("default velocity without approaches", func(t *testing.T) {
		rec := CatalogRecord{DiameterMinM: ptr(10.0), DiameterMaxM: ptr(20.0)}
		p, err := CatalogParameters(rec, TargetLand)
		require.NoError(t, err)
		assert.Equal(t, 20.0, p.VelocityKmS)
	})

	t.Run("default velocity when first approach lacks it", func(t *testing.T) {
		rec := CatalogRecord{DiameterMaxM: ptr(20.0), CloseApproachData: []CloseApproach{{Date: "2026-01-01"}}}
		p, err := CatalogParameters(rec, TargetLand)
		require.NoError(t, err)
		assert.Equal(t, 20.0, p.VelocityKmS)
		assert.Equal(t, 20.0, p.DiameterM)
	})

	t.Run("lone minimum bound", func(t *testing.T) {
		p, err := CatalogParameters(CatalogRecord{DiameterMinM: ptr(42.0)}, TargetLand)
		require.NoError(t, err)
		assert.Equal(t, 42.0, p.DiameterM)
	})

	t.Run("no diameter", func(t *testing.T) {
		_, err := CatalogParameters(CatalogRecord{ID: "x"}, TargetLand)
		assert.ErrorIs(t, err, ErrMissingData)
	})
}

func TestSimulateFromCatalogRecord(t *testing.T) {
	rec := CatalogRecord{DiameterMinM: ptr(50.0), DiameterMaxM: ptr(150.0)}
	site := ImpactSite{Lat: 10, Lon: 10}

	got, err := SimulateFromCatalogRecord(rec, site, TargetLand)
	require.NoError(t, err)
	want, err := Simulate(NewAsteroidParameters(100, 20), site)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))

	_, err = SimulateFromCatalogRecord(rec, site, "magma")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSimulate_ReferenceScenarios(t *testing.T) {
	site := ImpactSite{Lat: 40.7128, Lon: -74.006}

	t.Run("250 m at 20 km/s", func(t *testing.T) {
		res, err := Simulate(NewAsteroidParameters(250, 20), site)
		require.NoError(t, err)

		assert.InEpsilon(t, 2.454e10, res.Asteroid.MassKg, 1e-3)
		z := res.DamageZones
		for name, r := range map[string]float64{
			"crater":    z.CraterRadiusKm,
			"fireball":  z.FireballRadiusKm,
			"shockwave": z.ShockwaveRadiusKm,
			"thermal":   z.ThermalRadiationKm,
			"seismic":   z.SeismicEffectKm,
		} {
			assert.Positive(t, r, name)
		}
		assert.Less(t, z.ShockwaveRadiusKm, z.ThermalRadiationKm)
	})

	t.Run("catalog record matches direct parameters", func(t *testing.T) {
		rec := CatalogRecord{
			ID:                "2000433",
			DiameterMinM:      ptr(313.73),
			DiameterMaxM:      ptr(701.52),
			CloseApproachData: []CloseApproach{{VelocityKmS: ptr(18.29)}},
		}
		got, err := SimulateFromCatalogRecord(rec, site, TargetLand)
		require.NoError(t, err)
		want, err := Simulate(NewAsteroidParameters(507.625, 18.29), site)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("catalog simulation mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("catalog record without approaches uses 20 km/s", func(t *testing.T) {
		rec := CatalogRecord{DiameterMinM: ptr(313.73), DiameterMaxM: ptr(701.52)}
		got, err := SimulateFromCatalogRecord(rec, site, TargetLand)
		require.NoError(t, err)
		assert.Equal(t, 20.0, got.Asteroid.VelocityKmS)
	})
}

func TestEnergyComparison(t *testing.T) {
	tests := []struct {
		mt   float64
		want string
	}{
		{0.0009, "Less than a small bomb"},
		{0.001, "Similar to large conventional bombs"},
		{0.0149, "Similar to large conventional bombs"},
		{0.015, "Equivalent to 1 Hiroshima bombs"},
		{0.3, "Equivalent to 20 Hiroshima bombs"},
		{0.999, "Equivalent to 67 Hiroshima bombs"},
		{1, "Larger than any nuclear weapon ever tested (Tsar Bomba: 50 MT)"},
		{49.9, "Larger than any nuclear weapon ever tested (Tsar Bomba: 50 MT)"},
		{50, "Equivalent to 50 megatons - extinction-level event"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnergyComparison(tt.mt), "megatons %v", tt.mt)
	}
}

func TestCraterComparison(t *testing.T) {
	tests := []struct {
		m    float64
		want string
	}{
		{49.9, "Size of a small house"},
		{50, "Size of a football field"},
		{99.9, "Size of a football field"},
		{100, "Size of several football fields"},
		{500, "Larger than 10 city blocks"},
		{1000, "Larger than New York's Central Park"},
		{4999, "Larger than New York's Central Park"},
		{5000, "About 5.0 km across - visible from space"},
		{12340, "About 12.3 km across - visible from space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CraterComparison(tt.m), "diameter %v", tt.m)
	}
}

func TestSeismicComparison(t *testing.T) {
	tests := []struct {
		mag  float64
		want string
	}{
		{2.99, "Barely detectable - instruments only"},
		{3, "Felt near the epicenter"},
		{4, "Minor damage to weak buildings"},
		{5, "Moderate damage to structures"},
		{6, "Severe damage over a wide area"},
		{6.99, "Severe damage over a wide area"},
		{7, "Major devastation (similar to Haiti 2010, 7.0)"},
		{8, "Catastrophic (similar to Japan 2011, 9.1)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeismicComparison(tt.mag), "magnitude %v", tt.mag)
	}
}

func TestEstimatePopulationImpact(t *testing.T) {
	got := EstimatePopulationImpact(DamageZones{ShockwaveRadiusKm: 2})
	assert.Equal(t, 12.57, got.AffectedAreaKm2)
	assert.Equal(t, int64(753), got.EstimatedPeopleAffected)
	assert.NotEmpty(t, got.Note)

	zero := EstimatePopulationImpact(DamageZones{})
	assert.Zero(t, zero.EstimatedPeopleAffected)
}

func TestTruncInt(t *testing.T) {
	assert.Equal(t, int64(3), truncInt(3.99))
	assert.Equal(t, int64(-3), truncInt(-3.99))
	assert.Equal(t, int64(0), truncInt(math.NaN()))
	assert.Equal(t, int64(math.MaxInt64), truncInt(1e300))
}
