// Package domain models hazard risk assessment for a monitored region.
//
// # Signal Sources
//
// Risk evaluations fuse four independently sourced signals:
//
//	Terrain prediction:  a landslide-probability score from the terrain risk
//	                     predictor. When no trained model is loaded the
//	                     predictor runs a documented heuristic (degraded mode).
//	Protocol governance: deterministic safety rules (cloudburst, critical
//	                     slope) that veto or clamp any model-derived score.
//	Sensor grid:         river gauges, rain gauges, and soil-moisture probes
//	                     reporting NORMAL/WARNING/CRITICAL status.
//	Citizen network:     crowd-sourced hazard reports evaluated per zone.
//
// # Score Conventions
//
// The governance score is a safety score: 100 means stable conditions and
// low values mean danger (the cloudburst protocol pins it at 10). Composite
// fusion sub-scores are risk scores: 0 is calm and 100 is extreme. Both are
// integers in 0–100; the fusion engine converts between the two conventions
// when it builds composite inputs.
//
// # Override Precedence
//
// Fusion applies a strict precedence order: an active drill wins over a live
// sensor breach, which wins over citizen-network intel, which wins over the
// weighted composite. A calmer composite score can never mask a physical
// sensor breach, and governance vetoes are never softened by lower-priority
// signals. See [Fuse].
package domain
