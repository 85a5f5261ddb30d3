package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMass(t *testing.T) {
	t.Run("one meter sphere", func(t *testing.T) {
		m, err := Mass(1)
		require.NoError(t, err)
		assert.InDelta(t, 500*math.Pi, m, 1e-9)
	})

	t.Run("zero diameter", func(t *testing.T) {
		m, err := Mass(0)
		require.NoError(t, err)
		assert.Zero(t, m)
	})

	t.Run("scales with the cube of the diameter", func(t *testing.T) {
		small, err := Mass(10)
		require.NoError(t, err)
		large, err := Mass(20)
		require.NoError(t, err)
		assert.InDelta(t, 8.0, large/small, 1e-12)
	})

	for _, d := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Mass(d)
		assert.ErrorIs(t, err, ErrInvalidParameter, "diameter %v", d)
	}
}

func TestKineticEnergy(t *testing.T) {
	assert.InDelta(t, 5e8, KineticEnergy(1000, 1), 1e-6)
	assert.InDelta(t, 4*KineticEnergy(1000, 1), KineticEnergy(1000, 2), 1e-6)
}

func TestEnergyToMegatons(t *testing.T) {
	assert.InDelta(t, 1.0, EnergyToMegatons(4.184e15), 1e-12)
	assert.Zero(t, EnergyToMegatons(0))

	for _, e := range []float64{1, 4.184e9, 3.1416e17, 2.5e23} {
		assert.InDelta(t, 2*EnergyToMegatons(e), EnergyToMegatons(2*e), 1e-12*EnergyToMegatons(e), "linear at %g J", e)
	}
}

func TestCraterDiameter(t *testing.T) {
	land := CraterDiameter(1, TargetLand)
	water := CraterDiameter(1, TargetWater)

	assert.InDelta(t, 136.13, land, 0.01)
	assert.InDelta(t, 184.19, water, 0.01)
	assert.Greater(t, water, land, "lower target density yields a larger crater")
	assert.Greater(t, CraterDiameter(10, TargetLand), land)
}

func TestSeismicMagnitude(t *testing.T) {
	tests := []struct {
		name   string
		joules float64
		want   float64
	}{
		{"zero energy", 0, 0},
		{"negative energy", -5, 0},
		{"tiny energy clamps to zero", 1, 0},
		{"one petajoule", 1e15, 4.18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SeismicMagnitude(tt.joules), 1e-9)
		})
	}
}

func TestDamageRadii(t *testing.T) {
	z := DamageRadii(1)
	assert.InDelta(t, 0.5, z.FireballRadiusKm, 1e-12)
	assert.InDelta(t, 2.0, z.ShockwaveRadiusKm, 1e-12)
	assert.InDelta(t, 5.0, z.ThermalRadiationKm, 1e-12)
	assert.InDelta(t, 50.0, z.SeismicEffectKm, 1e-12)
	assert.InDelta(t, CraterDiameter(1, TargetLand)/2000, z.CraterRadiusKm, 1e-12)

	t.Run("zero energy", func(t *testing.T) {
		assert.Equal(t, DamageZones{}, DamageRadii(0))
	})

	t.Run("monotone in energy", func(t *testing.T) {
		prev := DamageRadii(0.001)
		for _, mt := range []float64{0.01, 0.1, 1, 10, 100, 1e4, 1e6} {
			cur := DamageRadii(mt)
			assert.Greater(t, cur.CraterRadiusKm, prev.CraterRadiusKm)
			assert.Greater(t, cur.FireballRadiusKm, prev.FireballRadiusKm)
			assert.Greater(t, cur.ShockwaveRadiusKm, prev.ShockwaveRadiusKm)
			assert.Greater(t, cur.ThermalRadiationKm, prev.ThermalRadiationKm)
			assert.Greater(t, cur.SeismicEffectKm, prev.SeismicEffectKm)
			prev = cur
		}
	})
}

func TestParameterErrorUnwraps(t *testing.T) {
	err := invalid("lat", "must be within [-90, 90], got %v", 91)

	var pe *ParameterError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "lat", pe.Field)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "invalid parameter lat: must be within [-90, 90], got 91", err.Error())
}
