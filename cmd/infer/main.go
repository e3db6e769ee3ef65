// Command infer runs the inference engine once against a request read from
// a JSON file and prints the result, with no server, broker, or assistant
// involved. It exists for fixture generation and offline inspection of
// engine behavior.
//
// Usage:
//
//	go run ./cmd/infer -in request.json
//	go run ./cmd/infer -in request.json -at 2026-06-15T12:00:00Z -pretty
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
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/croplens/field-inference/internal/domain"
	"github.com/croplens/field-inference/internal/engine"
	"github.com/croplens/field-inference/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to a request JSON file, or - for stdin")
	at := flag.String("at", "", "fix the engine clock to this RFC3339 instant for reproducible output")
	objective := flag.String("objective", "", "override the request objective (balanced, yield, water)")
	pretty := flag.Bool("pretty", false, "indent the output JSON")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	req, err := readRequest(*in)
	if err != nil {
		return err
	}
	if *objective != "" {
		req.Objective = *objective
	}

	clock := clockwork.Clock(clockwork.NewRealClock())
	if *at != "" {
		fixed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		fake := clockwork.NewFakeClockAt(fixed)
		clock = fake
		domain.SetClock(fake)
		defer domain.SetClock(nil)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng := engine.NewWithClock(logger, observability.NewMetricsForTesting(), nil, nil, time.Second, clock)

	var out any
	switch req.AnalysisType {
	case "scenario":
		out = eng.Simulate(req)
	case "chat":
		result, reply := eng.Chat(context.Background(), req)
		out = map[string]any{"reply": reply, "result": result}
	default:
		out = eng.Infer(context.Background(), req)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func readRequest(path string) (domain.InferenceRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.InferenceRequest{}, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req domain.InferenceRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return domain.InferenceRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
