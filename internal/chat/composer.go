package chat

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/croplens/field-inference/internal/domain"
)

// Intents recognized by the fallback composer.
const (
	intentStatus   = "status"
	intentForecast = "forecast"
	intentStress   = "stress"
	intentCompare  = "compare"
	intentAction   = "action"
	intentWhatIf   = "whatif"
)

// intentCorpus is the fixed training corpus for TF-IDF intent
// classification. Each document lists phrasings typical of its intent.
var intentCorpus = map[string]string{
	intentStatus:   "how is the field doing current condition health status overview summary today looking state",
	intentForecast: "forecast outlook next week month predict projection future expect trend upcoming days ahead",
	intentStress:   "stress risk anomaly problem concern disease drought water deficit heat wilting damage worried",
	intentCompare:  "compare difference between cells zones which cell zone better worse strongest weakest versus",
	intentAction:   "what should i do recommend recommendation action task priority next steps advise focus work",
	intentWhatIf:   "what if scenario suppose increase decrease irrigation fertilizer water budget simulate would happen",
}

// cellIDRe matches explicit cell references like "B2" or "cell a3".
var cellIDRe = regexp.MustCompile(`\b([A-Ca-c][1-3])\b`)

// directionCells maps compass phrasing to grid cells ("A1" northwest
// through "C3" southeast).
var directionCells = []struct {
	phrase string
	cell   string
}{
	{"northwest", "A1"}, {"north east", "A3"}, {"northeast", "A3"},
	{"north west", "A1"}, {"southwest", "C1"}, {"south west", "C1"},
	{"southeast", "C3"}, {"south east", "C3"},
	{"north", "A2"}, {"south", "C2"}, {"west", "B1"}, {"east", "B3"},
	{"center", "B2"}, {"middle", "B2"},
}

// Composer renders deterministic templated answers when the assistant
// collaborator is unavailable. It holds the precomputed corpus vectors.
type Composer struct {
	docVectors map[string]map[string]float64
	idf        map[string]float64
}

// NewComposer precomputes TF-IDF vectors for the intent corpus.
func NewComposer() *Composer {
	docTokens := make(map[string][]string, len(intentCorpus))
	df := map[string]int{}
	for intent, doc := range intentCorpus {
		tokens := tokenize(doc)
		docTokens[intent] = tokens
		seen := map[string]bool{}
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	n := float64(len(intentCorpus))
	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log(1 + n/float64(count))
	}

	vectors := make(map[string]map[string]float64, len(intentCorpus))
	for intent, tokens := range docTokens {
		vectors[intent] = tfidfVector(tokens, idf)
	}

	return &Composer{docVectors: vectors, idf: idf}
}

// Compose renders a templated reply for the prompt from the inference
// result. It never fails; unclassifiable prompts fall back to the status
// shape.
func (c *Composer) Compose(p Packet, result domain.InferenceResult, req domain.InferenceRequest) Reply {
	intent := c.classifyIntent(p.Prompt)
	cell := resolveCell(p.Prompt, p.SelectedCell, p.History)

	var reply Reply
	switch intent {
	case intentForecast:
		reply = composeForecast(result)
	case intentStress:
		reply = composeStress(result)
	case intentCompare:
		reply = composeCompare(result, req, cell)
	case intentAction:
		reply = composeAction(result)
	case intentWhatIf:
		reply = composeWhatIf(result)
	default:
		reply = composeStatus(result, cell)
	}

	reply.Mode = ModeTemplate
	return reply
}

// classifyIntent picks the intent whose corpus document has the highest
// cosine similarity with the prompt's TF-IDF vector.
func (c *Composer) classifyIntent(prompt string) string {
	promptVec := tfidfVector(tokenize(prompt), c.idf)
	if len(promptVec) == 0 {
		return intentStatus
	}

	best, bestScore := intentStatus, 0.0
	// Iterate in sorted order so ties resolve deterministically.
	intents := make([]string, 0, len(c.docVectors))
	for intent := range c.docVectors {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	for _, intent := range intents {
		score := cosine(promptVec, c.docVectors[intent])
		if score > bestScore {
			best, bestScore = intent, score
		}
	}
	return best
}

// resolveCell finds the grid cell a prompt refers to: an explicit ID,
// compass phrasing, a cell mentioned in recent history, or the selected
// cell, in that order.
func resolveCell(prompt, selected string, history []domain.ChatTurn) string {
	lower := strings.ToLower(prompt)

	if m := cellIDRe.FindStringSubmatch(prompt); m != nil {
		return strings.ToUpper(m[1])
	}
	for _, d := range directionCells {
		if strings.Contains(lower, d.phrase) {
			return d.cell
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		if m := cellIDRe.FindStringSubmatch(history[i].Content); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return selected
}

func composeStatus(result domain.InferenceResult, cell string) Reply {
	answer := fmt.Sprintf("%s %s", result.Summary.Headline, result.Summary.RiskOutlook)
	if cell != "" {
		answer = fmt.Sprintf("Looking at cell %s: %s", cell, answer)
	}
	return Reply{
		Answer:       answer,
		Rationale:    strings.Join(result.Anomaly.Signals, "; "),
		ForecastText: result.Summary.ForecastOutlook,
	}
}

func composeForecast(result domain.InferenceResult) Reply {
	return Reply{
		Answer: fmt.Sprintf("%s The trend is %s and short-horizon risk sits at %.2f.",
			result.Summary.ForecastOutlook, result.Forecast.Trend, result.Forecast.Risk7d),
		ForecastText: result.Summary.ForecastOutlook,
	}
}

func composeStress(result domain.InferenceResult) Reply {
	answer := fmt.Sprintf("Instability is %s (score %.2f).", result.Anomaly.Level, result.Anomaly.Score)
	if len(result.Anomaly.Signals) > 0 {
		answer += " Main drivers: " + strings.Join(result.Anomaly.Signals, "; ") + "."
	}
	return Reply{
		Answer:    answer,
		Rationale: result.Summary.RiskOutlook,
	}
}

func composeCompare(result domain.InferenceResult, req domain.InferenceRequest, cell string) Reply {
	target := req.Grid.Cell(cell)
	if target == nil || target.Stats == nil {
		return Reply{
			Answer: fmt.Sprintf(
				"Per-cell statistics are not available for a comparison; area-wide mean vegetation index is %.2f with spread %.2f across %d zones.",
				result.Features.NDVIMean, result.Features.NDVISpread, result.Zones.K),
		}
	}

	relation := "above"
	if target.Stats.Mean < result.Features.NDVIMean {
		relation = "below"
	}
	return Reply{
		Answer: fmt.Sprintf("Cell %s has a mean vegetation index of %.2f, %s the area-wide mean of %.2f.",
			cell, target.Stats.Mean, relation, result.Features.NDVIMean),
		Rationale: result.Summary.Headline,
	}
}

func composeAction(result domain.InferenceResult) Reply {
	actions := make([]string, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		actions = append(actions, fmt.Sprintf("%s (%s)", rec.Title, rec.Priority))
	}
	return Reply{
		Answer:    result.Summary.RecommendedFocus,
		Rationale: result.Summary.RiskOutlook,
		Actions:   actions,
	}
}

// composeWhatIf answers intervention questions with a modest default
// scenario when the prompt does not carry explicit parameters.
func composeWhatIf(result domain.InferenceResult) Reply {
	scenario := domain.SimulateScenario(result.Features, domain.ScenarioInput{
		IrrigationDelta: 0.15,
		WaterBudget:     0.5,
		TargetRisk:      0.3,
	})
	return Reply{
		Answer: fmt.Sprintf(
			"A moderate irrigation increase would shift 7-day risk from %.2f to %.2f and the 30-day vegetation index from %.2f to %.2f.",
			scenario.BaselineRisk7d, scenario.ScenarioRisk7d, scenario.BaselineNDVI30d, scenario.ScenarioNDVI30d),
		Rationale: scenario.Recommendation,
	}
}

// tokenize lowercases and splits on non-letter runs, dropping one-letter
// tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tfidfVector builds a term-frequency vector scaled by inverse document
// frequency. Unknown terms get a neutral IDF of 1.
func tfidfVector(tokens []string, idf map[string]float64) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	vec := map[string]float64{}
	for _, tok := range tokens {
		vec[tok]++
	}
	for tok := range vec {
		weight := 1.0
		if w, ok := idf[tok]; ok {
			weight = w
		}
		vec[tok] = vec[tok] / float64(len(tokens)) * weight
	}
	return vec
}

// cosine computes cosine similarity between two sparse vectors.
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for tok, va := range a {
		normA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
