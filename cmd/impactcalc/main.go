// Command impactcalc runs one impact simulation offline and prints the result
// as JSON. No upstream APIs are contacted.
//
// Usage:
//
//	go run ./cmd/impactcalc -diameter 140 -velocity 20 -lat 40.7128 -lon -74.006
//	go run ./cmd/impactcalc -diameter 370 -velocity 12.6 -lat 0 -lon -30 -target water -env -zones
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	diameter := flag.Float64("diameter", 0, "asteroid diameter in meters")
	velocity := flag.Float64("velocity", domain.DefaultVelocityKmS, "impact velocity in km/s")
	lat := flag.Float64("lat", 0, "impact latitude in degrees")
	lon := flag.Float64("lon", 0, "impact longitude in degrees")
	angle := flag.Float64("angle", domain.DefaultImpactAngle, "impact angle in degrees from horizontal")
	target := flag.String("target", "land", "target surface: land or water")
	env := flag.Bool("env", false, "include the environmental assessment")
	zones := flag.Bool("zones", false, "print the damage zones as GeoJSON instead")
	flag.Parse()

	if *diameter <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag: -diameter")
	}

	svc := simulator.New(simulator.Deps{
		Metrics: observability.NewMetricsForTesting(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	req := simulator.Request{
		DiameterM:          diameter,
		VelocityKmS:        velocity,
		Location:           simulator.NewLocation(*lat, *lon),
		ImpactAngle:        angle,
		TargetType:         *target,
		IncludeEnvironment: *env,
	}

	var out any
	var err error
	if *zones {
		out, err = svc.Zones(context.Background(), req)
	} else {
		out, err = svc.Simulate(context.Background(), req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
