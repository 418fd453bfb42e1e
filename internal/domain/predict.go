package domain

import (
	"hash/fnv"
	"log/slog"
	"math"
)

// hillLatitudeCutoff separates hill terrain (steeper slope range, unstable
// soil) from plains. Calibrated for the monitored region's geography.
const hillLatitudeCutoff = 26.0

// Prediction is the terrain model's output for one position.
type Prediction struct {
	Score      int     `json:"score"` // safety score, 0–100
	SlopeAngle float64 `json:"slope_angle"`
	SoilClass  string  `json:"soil_class"`
	Degraded   bool    `json:"degraded"` // true when the heuristic fallback produced the score
}

// TerrainModel scores landslide susceptibility from rainfall and slope.
// Implementations wrap a trained model; the predictor falls back to a
// documented heuristic when none is loaded.
type TerrainModel interface {
	Score(rainMM, slopeAngle float64) (int, error)
}

// TerrainRiskPredictor maps {rainfall, position} to a terrain risk
// prediction. Construct one instance at process start and inject it into the
// evaluation pipeline; it holds no mutable state and is safe for concurrent use.
type TerrainRiskPredictor struct {
	model  TerrainModel
	logger *slog.Logger
}

// NewTerrainRiskPredictor creates a predictor. A nil model selects the
// heuristic fallback, which is a supported degraded mode, not an error.
func NewTerrainRiskPredictor(model TerrainModel, logger *slog.Logger) *TerrainRiskPredictor {
	if model == nil {
		logger.Warn("no trained terrain model loaded, predictor running in degraded heuristic mode")
	}
	return &TerrainRiskPredictor{model: model, logger: logger}
}

// Degraded reports whether the predictor is running without a trained model.
func (p *TerrainRiskPredictor) Degraded() bool {
	return p.model == nil
}

// Predict returns the terrain risk prediction for the given rainfall and
// position. Deterministic for a given model state: identical inputs always
// produce identical output.
func (p *TerrainRiskPredictor) Predict(rainMM, lat, lng float64) Prediction {
	slope, soil := terrainAt(lat, lng)

	if p.model != nil {
		score, err := p.model.Score(rainMM, slope)
		if err == nil {
			return Prediction{Score: clampScore(float64(score)), SlopeAngle: slope, SoilClass: soil}
		}
		p.logger.Warn("terrain model scoring failed, using heuristic fallback", "error", err)
	}

	return Prediction{
		Score:      heuristicScore(rainMM, slope),
		SlopeAngle: slope,
		SoilClass:  soil,
		Degraded:   true,
	}
}

// heuristicScore is the documented fallback used when no trained model is
// available: score = clamp(100 - rain*0.5 - slopePenalty, 0, 100), where the
// slope penalty only applies once the slope exceeds 30 degrees.
func heuristicScore(rainMM, slope float64) int {
	penalty := rainMM * 0.5
	if slope > 30 {
		penalty += slope * 0.5
	}
	return clampScore(100 - penalty)
}

// terrainAt derives slope and soil class from the position. Hill terrain
// (lat above the cutoff) draws from a 30–60 degree range over unstable loam;
// plains draw from 5–20 degrees over stable alluvium. The value within the
// range is a deterministic function of the quantized coordinates so that
// repeated evaluations of the same zone agree.
func terrainAt(lat, lng float64) (slope float64, soil string) {
	frac := coordFraction(lat, lng)
	if lat > hillLatitudeCutoff {
		return 30 + frac*30, "loamy-unstable"
	}
	return 5 + frac*15, "alluvial-stable"
}

// coordFraction hashes coordinates quantized to ~11m precision into [0, 1).
func coordFraction(lat, lng float64) float64 {
	h := fnv.New64a()
	// Quantize to 4 decimal places to keep nearby queries stable.
	la := math.Round(lat * 1e4)
	ln := math.Round(lng * 1e4)
	var buf [16]byte
	writeUint64(buf[:8], math.Float64bits(la))
	writeUint64(buf[8:], math.Float64bits(ln))
	h.Write(buf[:])
	return float64(h.Sum64()%1000) / 1000.0
}

func writeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
