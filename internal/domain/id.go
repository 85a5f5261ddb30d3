package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SimulationID derives a stable identifier from the simulation inputs, so that
// repeated runs of the same scenario share a key.
func SimulationID(params AsteroidParameters, site ImpactSite) string {
	raw := fmt.Sprintf("%g|%g|%g|%s|%g|%g",
		params.DiameterM, params.VelocityKmS, params.AngleDegrees, params.TargetType, site.Lat, site.Lon)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
