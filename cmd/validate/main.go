// Command validate replays the impact scenario fixture through the simulator
// and checks the results for regressions, physical consistency, GeoJSON
// rendering, and determinism.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/fixtures/impact_scenarios.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/impact-sim-service/internal/adapter/geojson"
	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/simulator"
	"github.com/google/go-cmp/cmp"
)

// scenario is one fixture entry. Input uses the API request schema.
type scenario struct {
	Name     string            `json:"name"`
	Input    simulator.Request `json:"input"`
	Expected expected          `json:"expected"`
}

type expected struct {
	MegatonsTNT             float64            `json:"megatons_tnt"`
	CraterDiameterM         float64            `json:"crater_diameter_m"`
	MagnitudeRichter        float64            `json:"magnitude_richter"`
	DamageZones             domain.DamageZones `json:"damage_zones"`
	EstimatedPeopleAffected int64              `json:"estimated_people_affected"`
	TsunamiRisk             domain.Severity    `json:"tsunami_risk"`
}

const (
	populationDensity = 60.0

	// The reported area is rounded to 0.01 km² while the head count is
	// truncated from the unrounded area.
	peopleTolerance = populationDensity*0.005 + 1
)

// outcome pairs a scenario with the report the simulator produced for it.
type outcome struct {
	scenario
	report simulator.Report
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "data/fixtures/impact_scenarios.json", "path to the impact scenario fixture")
	tolerance := flag.Float64("tolerance", 0.01, "absolute tolerance for rounded values")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*fixture, *tolerance))
}

func run(fixturePath string, tolerance float64) int {
	fmt.Println("=== Impact Simulation Validation ===")
	fmt.Println()

	scenarios, err := loadScenarios(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	svc := newService()
	outcomes, runPhase := simulateAll(svc, scenarios)

	phases := []*phase{
		runPhase,
		validateRegression(outcomes, tolerance),
		validateConsistency(outcomes),
		validateGeoJSON(outcomes),
		validateDeterminism(svc, outcomes),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Scenarios: %d in fixture, %d simulated\n", len(scenarios), len(outcomes))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// newService builds a simulator without upstream collaborators. Only the
// physics chain and environmental assessment run.
func newService() *simulator.Service {
	return simulator.New(simulator.Deps{
		Metrics: observability.NewMetricsForTesting(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func loadScenarios(path string) ([]scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []scenario
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}
	return items, nil
}

// ── Phase 0: Simulation ──

func simulateAll(svc *simulator.Service, scenarios []scenario) ([]outcome, *phase) {
	p := &phase{name: "Phase 0: Simulation (fixture replay)"}
	out := make([]outcome, 0, len(scenarios))
	for _, s := range scenarios {
		req := s.Input
		req.IncludeEnvironment = true
		report, err := svc.Simulate(context.Background(), req)
		if err != nil {
			p.errorf("%s: %v", s.Name, err)
			continue
		}
		out = append(out, outcome{scenario: s, report: report})
	}
	return out, p
}

// ── Phase 1: Regression ──
// Compares the headline numbers against the recorded expectations.

func validateRegression(outcomes []outcome, tol float64) *phase {
	p := &phase{name: "Phase 1: Regression (fixture values)"}

	for _, o := range outcomes {
		r, want := o.report, o.Expected
		check := func(field string, got, exp float64) {
			if !approxEq(got, exp, tol) {
				p.errorf("%s: %s: expected %g, got %g", o.Name, field, exp, got)
			}
		}
		check("megatons_tnt", r.Energy.MegatonsTNT, want.MegatonsTNT)
		check("crater_diameter_m", r.Crater.DiameterM, want.CraterDiameterM)
		check("magnitude_richter", r.Seismic.MagnitudeRichter, want.MagnitudeRichter)
		check("crater_radius_km", r.DamageZones.CraterRadiusKm, want.DamageZones.CraterRadiusKm)
		check("fireball_radius_km", r.DamageZones.FireballRadiusKm, want.DamageZones.FireballRadiusKm)
		check("shockwave_radius_km", r.DamageZones.ShockwaveRadiusKm, want.DamageZones.ShockwaveRadiusKm)
		check("thermal_radiation_km", r.DamageZones.ThermalRadiationKm, want.DamageZones.ThermalRadiationKm)
		check("seismic_effect_km", r.DamageZones.SeismicEffectKm, want.DamageZones.SeismicEffectKm)

		if d := r.PopulationImpact.EstimatedPeopleAffected - want.EstimatedPeopleAffected; d < -1 || d > 1 {
			p.errorf("%s: estimated_people_affected: expected %d, got %d", o.Name, want.EstimatedPeopleAffected, r.PopulationImpact.EstimatedPeopleAffected)
		}
		if r.EnvironmentalImpact == nil {
			p.errorf("%s: environmental impact missing", o.Name)
		} else if got := r.EnvironmentalImpact.Tsunami.Risk; got != want.TsunamiRisk {
			p.errorf("%s: tsunami risk: expected %q, got %q", o.Name, want.TsunamiRisk, got)
		}
	}
	return p
}

// ── Phase 2: Consistency ──
// Checks relationships that must hold for any impact.

func validateConsistency(outcomes []outcome) *phase {
	p := &phase{name: "Phase 2: Consistency (physics invariants)"}

	for _, o := range outcomes {
		r := o.report
		z := r.DamageZones
		if z.FireballRadiusKm > z.ThermalRadiationKm {
			p.errorf("%s: fireball radius %g exceeds thermal radius %g", o.Name, z.FireballRadiusKm, z.ThermalRadiationKm)
		}
		if r.Seismic.MagnitudeRichter < 0 {
			p.errorf("%s: negative magnitude %g", o.Name, r.Seismic.MagnitudeRichter)
		}
		if !approxEq(r.Crater.RadiusM*2, r.Crater.DiameterM, 0.02) {
			p.errorf("%s: crater radius %g is not half of diameter %g", o.Name, r.Crater.RadiusM, r.Crater.DiameterM)
		}
		if r.Energy.Joules <= 0 || r.Asteroid.MassKg <= 0 {
			p.errorf("%s: non-positive energy or mass", o.Name)
		}
		people := r.PopulationImpact.AffectedAreaKm2 * populationDensity
		if math.Abs(float64(r.PopulationImpact.EstimatedPeopleAffected)-people) > peopleTolerance {
			p.errorf("%s: %d people inconsistent with area %g km²", o.Name, r.PopulationImpact.EstimatedPeopleAffected, r.PopulationImpact.AffectedAreaKm2)
		}
		if r.Impact.TargetType == domain.TargetLand && r.EnvironmentalImpact != nil && r.EnvironmentalImpact.Tsunami.WaveHeightMeters != nil {
			p.errorf("%s: land impact reports a tsunami wave height", o.Name)
		}
		if r.SimulationID == "" {
			p.errorf("%s: missing simulation id", o.Name)
		}
	}
	return p
}

// ── Phase 3: GeoJSON ──
// Renders every result's damage zones and checks the feature layout.

func validateGeoJSON(outcomes []outcome) *phase {
	p := &phase{name: "Phase 3: GeoJSON (damage zone rendering)"}

	for _, o := range outcomes {
		fc, err := geojson.ZoneFeatures(o.report.Impact.Location, o.report.DamageZones)
		if err != nil {
			p.errorf("%s: %v", o.Name, err)
			continue
		}
		if len(fc) == 0 || len(fc) > 6 {
			p.errorf("%s: expected 1-6 features, got %d", o.Name, len(fc))
			continue
		}
		last := fc[len(fc)-1]
		if !last.Geometry.IsPoint() {
			p.errorf("%s: last feature is %s, expected the impact point", o.Name, last.Geometry.Type())
		}
		for _, f := range fc[:len(fc)-1] {
			poly, ok := f.Geometry.AsPolygon()
			if !ok {
				p.errorf("%s: zone %v is %s, expected a polygon", o.Name, f.ID, f.Geometry.Type())
				continue
			}
			ring := poly.ExteriorRing().Coordinates()
			if ring.Length() != geojson.CircleSegments+1 {
				p.errorf("%s: zone %v ring has %d points, expected %d", o.Name, f.ID, ring.Length(), geojson.CircleSegments+1)
			}
		}
	}
	return p
}

// ── Phase 4: Determinism ──
// Re-runs every scenario and requires byte-for-byte identical results.

func validateDeterminism(svc *simulator.Service, outcomes []outcome) *phase {
	p := &phase{name: "Phase 4: Determinism (repeat runs)"}

	for _, o := range outcomes {
		req := o.Input
		req.IncludeEnvironment = true
		again, err := svc.Simulate(context.Background(), req)
		if err != nil {
			p.errorf("%s: %v", o.Name, err)
			continue
		}
		if diff := cmp.Diff(o.report, again); diff != "" {
			p.errorf("%s: results differ between runs (-first +second):\n%s", o.Name, diff)
		}
	}
	return p
}

// ── Helpers ──

func approxEq(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol+1e-9*math.Max(math.Abs(a), math.Abs(b))
}
