package chart

import (
	"bytes"
	"image/png"
	"testing"

	"skillradar/internal/schema"
	"skillradar/internal/scoring"
)

func sampleResult(v float64) scoring.Result {
	s := schema.Default()
	answers := make(map[string]*float64)
	for _, id := range s.QuestionIDs() {
		val := v
		answers[id] = &val
	}
	for _, q := range s.Axes[2].Questions {
		answers[q.ID] = nil
	}
	return scoring.Compute(s, answers)
}

func TestRenderResult(t *testing.T) {
	data, err := RenderResult(sampleResult(7), Options{Size: 400, Title: "Ada"})
	if err != nil {
		t.Fatalf("RenderResult: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 400 {
		t.Fatalf("size = %dx%d, want 400x400", cfg.Width, cfg.Height)
	}
}

func TestResultOverlays(t *testing.T) {
	overlays := ResultOverlays(sampleResult(5))
	if got, want := len(overlays), len(scoring.SeriesNames); got != want {
		t.Fatalf("overlays = %d, want %d", got, want)
	}
	if overlays[0].Name != "overall" || overlays[3].Label != "Pentest" {
		t.Fatalf("unexpected overlay order: %+v", overlays[:4])
	}
	if overlays[0].Values[2] != nil {
		t.Fatalf("N/A axis should be a gap")
	}
}

func TestRenderAggregateDefaultSize(t *testing.T) {
	agg := scoring.Aggregate([]scoring.Result{sampleResult(4), sampleResult(8)})
	data, err := RenderAggregate(agg, Options{})
	if err != nil {
		t.Fatalf("RenderAggregate: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != DefaultSize {
		t.Fatalf("width = %d, want %d", cfg.Width, DefaultSize)
	}
	if got := len(AggregateOverlays(agg)); got != 4 {
		t.Fatalf("aggregate overlays = %d, want 4", got)
	}
}

func TestRadarRejectsBadInput(t *testing.T) {
	if _, err := Radar([]string{"a", "b"}, nil, Options{}); err == nil {
		t.Fatalf("expected error for two axes")
	}
	if _, err := Radar([]string{"a", "b", "c"}, nil, Options{Size: 50}); err == nil {
		t.Fatalf("expected error for tiny chart")
	}
}
