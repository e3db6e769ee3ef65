package domain

import (
	"image"
	"time"
)

// Objective is the user-selected optimization bias for recommendations.
type Objective string

const (
	ObjectiveBalanced Objective = "balanced"
	ObjectiveYield    Objective = "yield"
	ObjectiveWater    Objective = "water"
)

// NormalizeObjective coerces free-form input to a known objective,
// defaulting to balanced.
func NormalizeObjective(s string) Objective {
	switch Objective(s) {
	case ObjectiveYield:
		return ObjectiveYield
	case ObjectiveWater:
		return ObjectiveWater
	default:
		return ObjectiveBalanced
	}
}

// NDVIStats summarizes the vegetation index over an area.
type NDVIStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Sample is one historical NDVI observation. Samples are ordered oldest
// to newest.
type Sample struct {
	Date time.Time `json:"date"`
	NDVI float64   `json:"ndvi"`
}

// WeatherSnapshot holds current conditions from the weather provider.
type WeatherSnapshot struct {
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPct     float64 `json:"humidity_pct"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	Simulated       bool    `json:"simulated,omitempty"`
}

// SoilStats holds soil moisture statistics (volumetric fraction).
type SoilStats struct {
	Mean      float64 `json:"mean"`
	Simulated bool    `json:"simulated,omitempty"`
}

// ETStats holds evapotranspiration statistics (mm/day).
type ETStats struct {
	Mean      float64 `json:"mean"`
	Simulated bool    `json:"simulated,omitempty"`
}

// GridCell is one cell of the 3x3 spatial breakdown. IDs run "A1".."C3",
// row-major from the northwest corner.
type GridCell struct {
	ID    string     `json:"id"`
	Stats *NDVIStats `json:"stats,omitempty"`
}

// Grid is the optional 3x3 spatial breakdown of the area of interest.
type Grid struct {
	Cells []GridCell `json:"cells"`
}

// Cell returns the grid cell with the given ID, or nil.
func (g *Grid) Cell(id string) *GridCell {
	if g == nil {
		return nil
	}
	for i := range g.Cells {
		if g.Cells[i].ID == id {
			return &g.Cells[i]
		}
	}
	return nil
}

// ProviderDiagnostic records the outcome of one upstream fetch attempt.
type ProviderDiagnostic struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Simulated bool   `json:"simulated,omitempty"`
}

// ChatTurn is one prior exchange in a chat-mode conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ScenarioInput describes a proposed intervention for the scenario
// simulator. Deltas are fractional adjustments relative to current practice.
type ScenarioInput struct {
	IrrigationDelta float64 `json:"irrigation_delta"`
	WaterBudget     float64 `json:"water_budget"`
	FertilizerDelta float64 `json:"fertilizer_delta"`
	TargetRisk      float64 `json:"target_risk"`
}

// InferenceRequest is the single entry-point payload for the engine. All
// observation fields are optional; defaulting is centralized in the feature
// extractor rather than scattered across call sites.
type InferenceRequest struct {
	Prompt       string `json:"prompt,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"` // "inference", "scenario", or "chat"
	Objective    string `json:"objective,omitempty"`

	NDVI    *NDVIStats       `json:"ndvi,omitempty"`
	Samples []Sample         `json:"samples,omitempty"`
	Weather *WeatherSnapshot `json:"weather,omitempty"`
	Soil    *SoilStats       `json:"soil,omitempty"`
	ET      *ETStats         `json:"et,omitempty"`

	Grid         *Grid  `json:"grid,omitempty"`
	SelectedCell string `json:"selected_cell,omitempty"`

	Providers    []ProviderDiagnostic `json:"providers,omitempty"`
	LatencyHours float64              `json:"latency_hours,omitempty"`

	Scenario *ScenarioInput `json:"scenario,omitempty"`
	History  []ChatTurn     `json:"history,omitempty"`

	// Preview is an optional coarse raster of the area of interest, set
	// programmatically by callers that hold imagery. Not serialized.
	Preview image.Image `json:"-"`
}

// SeriesValues returns the NDVI values of the sample series in order.
func (r *InferenceRequest) SeriesValues() []float64 {
	if len(r.Samples) == 0 {
		return nil
	}
	values := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		values[i] = s.NDVI
	}
	return values
}
