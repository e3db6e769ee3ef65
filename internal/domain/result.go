package domain

import "time"

// FeatureVector is the fixed numeric feature set derived from one request.
// All fields are finite, bounded to their physical domain, and rounded to
// four decimals.
type FeatureVector struct {
	NDVIMin    float64 `json:"ndvi_min"`
	NDVIMax    float64 `json:"ndvi_max"`
	NDVIMean   float64 `json:"ndvi_mean"`
	NDVISpread float64 `json:"ndvi_spread"`

	Delta7d    float64 `json:"delta_7d"`
	Delta30d   float64 `json:"delta_30d"`
	TrendSlope float64 `json:"trend_slope"`
	TrendAccel float64 `json:"trend_accel"`
	Volatility float64 `json:"volatility"`
	Momentum   float64 `json:"momentum"`

	SoilMoistureMean float64 `json:"soil_moisture_mean"`
	MoistureDeficit  float64 `json:"moisture_deficit"`
	ETMean           float64 `json:"et_mean"`
	WeatherStress    float64 `json:"weather_stress"`
	TemperatureC     float64 `json:"temperature_c"`
	PrecipitationMM  float64 `json:"precipitation_mm"`
	HumidityPct      float64 `json:"humidity_pct"`

	SeasonalIndex  float64 `json:"seasonal_index"`
	LatencyPenalty float64 `json:"latency_penalty"`
}

// DataQualityReport describes how complete and trustworthy the inputs were.
// Computed once per call, immutable afterwards.
type DataQualityReport struct {
	Completeness    float64  `json:"completeness"`
	ProviderQuality float64  `json:"provider_quality"`
	Score           float64  `json:"score"`
	SimulatedInputs bool     `json:"simulated_inputs"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Trend labels for the forecast.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Forecast projects the vegetation index over two horizons and derives
// horizon risk.
type Forecast struct {
	NDVI7d  float64 `json:"ndvi_7d"`
	NDVI30d float64 `json:"ndvi_30d"`
	Risk7d  float64 `json:"risk_7d"`
	Risk30d float64 `json:"risk_30d"`
	Trend   string  `json:"trend"`
}

// Anomaly levels, monotonic in score.
const (
	AnomalyLow      = "low"
	AnomalyModerate = "moderate"
	AnomalyHigh     = "high"
)

// Anomaly is the bounded instability assessment.
type Anomaly struct {
	Score   float64  `json:"score"`
	Level   string   `json:"level"`
	Signals []string `json:"signals,omitempty"`
}

// ZoneCluster is one spatial cluster of the area of interest.
type ZoneCluster struct {
	ID       int        `json:"id"`
	Members  int        `json:"members"`
	Centroid [5]float64 `json:"centroid"`
}

// Zone sources.
const (
	ZoneSourceRaster    = "raster"
	ZoneSourceSynthetic = "synthetic"
)

// ZoneSummary groups the clusters produced for one call. Zones are
// recomputed fresh every call, never updated incrementally.
type ZoneSummary struct {
	K        int           `json:"k"`
	Source   string        `json:"source"`
	Clusters []ZoneCluster `json:"clusters"`
}

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is one actionable item, emitted in fixed rule order.
type Recommendation struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Priority          string   `json:"priority"`
	Reason            string   `json:"reason"`
	Actions           []string `json:"actions"`
	ExpectedImpactPct float64  `json:"expected_impact_pct"`
	Confidence        float64  `json:"confidence"`
	TimeWindow        string   `json:"time_window"`
	Evidence          []string `json:"evidence,omitempty"`
}

// Task owners.
const (
	OwnerIrrigation = "irrigation"
	OwnerScouting   = "scouting"
	OwnerOperations = "operations"
)

// Task is a work item derived 1:1 from a leading recommendation.
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Owner      string `json:"owner"`
	Priority   string `json:"priority"`
	TimeWindow string `json:"time_window"`
}

// Summary is the four-field templated narrative of one result.
type Summary struct {
	Headline         string `json:"headline"`
	ForecastOutlook  string `json:"forecast_outlook"`
	RiskOutlook      string `json:"risk_outlook"`
	RecommendedFocus string `json:"recommended_focus"`
}

// Diagnostics records which providers were consulted and any warnings
// accumulated during inference.
type Diagnostics struct {
	ProvidersTried []string `json:"providers_tried,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// InferenceResult is the aggregate decision artifact for one request.
// Created fresh per call; safe for concurrent use.
type InferenceResult struct {
	Engine          string            `json:"engine"`
	Objective       Objective         `json:"objective"`
	Confidence      float64           `json:"confidence"`
	Quality         DataQualityReport `json:"quality"`
	Features        FeatureVector     `json:"features"`
	Forecast        Forecast          `json:"forecast"`
	Anomaly         Anomaly           `json:"anomaly"`
	Zones           ZoneSummary       `json:"zones"`
	Recommendations []Recommendation  `json:"recommendations"`
	Tasks           []Task            `json:"tasks,omitempty"`
	Summary         Summary           `json:"summary"`
	Diagnostics     Diagnostics       `json:"diagnostics"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// ScenarioResult is the counterfactual outcome for one proposed
// intervention. Ephemeral, never persisted.
type ScenarioResult struct {
	BaselineRisk7d     float64 `json:"baseline_risk_7d"`
	ScenarioRisk7d     float64 `json:"scenario_risk_7d"`
	BaselineNDVI30d    float64 `json:"baseline_ndvi_30d"`
	ScenarioNDVI30d    float64 `json:"scenario_ndvi_30d"`
	WaterUseDeltaPct   float64 `json:"water_use_delta_pct"`
	YieldProxyDeltaPct float64 `json:"yield_proxy_delta_pct"`
	Confidence         float64 `json:"confidence"`
	Recommendation     string  `json:"recommendation"`
}
