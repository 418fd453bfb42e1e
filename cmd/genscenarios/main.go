// Command genscenarios generates scenario fixtures for demos and downstream
// test suites. It runs the actual domain predictor, governance, and fusion
// code so the fixtures match real evaluation behavior.
//
// Usage:
//
//	go run ./cmd/genscenarios -out data/fixtures/scenarios.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

type scenario struct {
	Name   string  `json:"name"`
	RainMM float64 `json:"rain_mm"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type fixture struct {
	Scenario   scenario                `json:"scenario"`
	Prediction domain.Prediction       `json:"prediction"`
	Governance domain.RiskVerdict      `json:"governance"`
	Fused      domain.RiskVerdict      `json:"fused"`
	Proposal   domain.DecisionProposal `json:"proposal"`
}

var scenarios = []scenario{
	{Name: "calm_plains", RainMM: 8, Lat: 25.50, Lng: 91.00},
	{Name: "steady_rain_hills", RainMM: 55, Lat: 26.14, Lng: 91.73},
	{Name: "sustained_rain_steep_slope", RainMM: 65, Lat: 26.90, Lng: 92.50},
	{Name: "cloudburst_guwahati", RainMM: 140, Lat: 26.14, Lng: 91.73},
	{Name: "cloudburst_shillong", RainMM: 180, Lat: 25.60, Lng: 91.90},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the scenario fixture JSON")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock for reproducible proposal timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.June, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	// Predictor warnings about the heuristic fallback are noise here.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	predictor := domain.NewTerrainRiskPredictor(nil, logger)
	policy := domain.DefaultFusionPolicy()

	fixtures := make([]fixture, 0, len(scenarios))
	for _, sc := range scenarios {
		prediction := predictor.Predict(sc.RainMM, sc.Lat, sc.Lng)
		governance := domain.ValidateRisk(sc.RainMM, prediction.SlopeAngle, prediction.Score)
		fused := domain.Fuse(governance, nil, nil, domain.SimulationOverride{},
			domain.CompositeInputs{
				Landslide: float64(100 - prediction.Score),
				Terrain:   prediction.SlopeAngle / 60 * 100,
				Weather:   sc.RainMM,
			}, policy)

		fixtures = append(fixtures, fixture{
			Scenario:   sc,
			Prediction: prediction,
			Governance: governance,
			Fused:      fused,
			Proposal:   domain.BuildProposal(fused, sc.Lat, sc.Lng, 2.0),
		})
		log.Printf("%s: %s via %s", sc.Name, fused.Level, fused.Source)
	}

	if err := writeJSON(*out, fixtures); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d scenarios: %s", len(fixtures), *out)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
