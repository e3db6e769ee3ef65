// Package chat builds the context packet handed to the external
// conversational collaborator and, when that collaborator is unavailable,
// composes a deterministic templated answer from the inference result.
package chat

import (
	"context"

	"github.com/croplens/field-inference/internal/domain"
)

// maxHistoryTurns bounds how much conversation history travels in a packet.
const maxHistoryTurns = 6

// Packet is the condensed context handed to the assistant collaborator.
type Packet struct {
	Prompt       string            `json:"prompt"`
	Objective    domain.Objective  `json:"objective"`
	SelectedCell string            `json:"selected_cell,omitempty"`
	CellStats    *domain.NDVIStats `json:"cell_stats,omitempty"`
	Summary      domain.Summary    `json:"summary"`
	Forecast     domain.Forecast   `json:"forecast"`
	AnomalyLevel string            `json:"anomaly_level"`
	Confidence   float64           `json:"confidence"`
	ObservedNDVI *domain.NDVIStats `json:"observed_ndvi,omitempty"`
	Providers    []string          `json:"providers,omitempty"`
	History      []domain.ChatTurn `json:"history,omitempty"`
}

// Reply is what the assistant collaborator (or the fallback composer)
// returns. Mode records which path produced it.
type Reply struct {
	Answer       string   `json:"answer"`
	Rationale    string   `json:"rationale,omitempty"`
	Actions      []string `json:"actions,omitempty"`
	ForecastText string   `json:"forecast_text,omitempty"`
	Mode         string   `json:"mode"`
}

// Reply modes.
const (
	ModeAssistant = "assistant"
	ModeTemplate  = "template"
)

// Assistant is the external conversational collaborator.
type Assistant interface {
	Answer(ctx context.Context, p Packet) (Reply, error)
}

// BuildPacket condenses a request and its inference result into the
// context packet for the assistant.
func BuildPacket(req domain.InferenceRequest, result domain.InferenceResult) Packet {
	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var cellStats *domain.NDVIStats
	if cell := req.Grid.Cell(req.SelectedCell); cell != nil {
		cellStats = cell.Stats
	}

	providers := make([]string, 0, len(req.Providers))
	for _, p := range req.Providers {
		providers = append(providers, p.Name)
	}

	return Packet{
		Prompt:       req.Prompt,
		Objective:    result.Objective,
		SelectedCell: req.SelectedCell,
		CellStats:    cellStats,
		Summary:      result.Summary,
		Forecast:     result.Forecast,
		AnomalyLevel: result.Anomaly.Level,
		Confidence:   result.Confidence,
		ObservedNDVI: req.NDVI,
		Providers:    providers,
		History:      history,
	}
}
