package domain

import "time"

// Simulation sources.
const (
	SourceParams  = "params"
	SourceCatalog = "catalog"
)

// SimulationEvent is a completed simulation as published to downstream consumers.
type SimulationEvent struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	AsteroidID  string           `json:"asteroid_id,omitempty"`
	SimulatedAt time.Time        `json:"simulated_at"`
	Result      SimulationResult `json:"result"`
	Location    *LocationInfo    `json:"location,omitempty"`
}

// NewSimulationEvent stamps a result with its deterministic id and the
// current time from the package clock.
func NewSimulationEvent(source string, params AsteroidParameters, site ImpactSite, result SimulationResult) SimulationEvent {
	return SimulationEvent{
		ID:          SimulationID(params, site),
		Source:      source,
		SimulatedAt: clock.Now().UTC(),
		Result:      result,
	}
}
