package scoring

import (
	"reflect"
	"testing"

	"skillradar/internal/schema"
)

func filled(s *schema.Schema, v float64) map[string]*float64 {
	answers := make(map[string]*float64)
	for _, id := range s.QuestionIDs() {
		answers[id] = ptr(v)
	}
	return answers
}

func axisByID(t *testing.T, r Result, id string) AxisResult {
	t.Helper()
	for _, ar := range r.AxisOverall {
		if ar.AxisID == id {
			return ar
		}
	}
	t.Fatalf("axis %q not in result", id)
	return AxisResult{}
}

func TestComputeNeutralAnswers(t *testing.T) {
	s := schema.Default()
	r := Compute(s, filled(s, 5))

	if r.OverallMean == nil || *r.OverallMean != 5.0 {
		t.Fatalf("overallMean = %v, want 5.0", r.OverallMean)
	}
	for _, ar := range r.AxisOverall {
		if ar.Mean == nil || *ar.Mean != 5.0 {
			t.Fatalf("%s mean = %v, want 5.0", ar.AxisID, ar.Mean)
		}
		if ar.Total == nil || *ar.Total != 50 {
			t.Fatalf("%s total = %v, want 50", ar.AxisID, ar.Total)
		}
		if ar.AnsweredCount != 10 {
			t.Fatalf("%s answeredCount = %d, want 10", ar.AxisID, ar.AnsweredCount)
		}
	}
	if got, want := r.Labels, s.Labels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if got := Completion(r); got != 100 {
		t.Fatalf("completion = %d, want 100", got)
	}
}

func TestComputeAxisMeanAndTags(t *testing.T) {
	s := schema.Default()
	answers := filled(s, 5)
	for i := 1; i <= 10; i++ {
		answers[s.Axes[0].Questions[i-1].ID] = ptr(float64(i))
	}

	r := Compute(s, answers)
	win := axisByID(t, r, "windows")
	if got, want := *win.Mean, 5.5; got != want {
		t.Fatalf("mean = %v, want %v", got, want)
	}
	if got, want := *win.Total, 55; got != want {
		t.Fatalf("total = %v, want %v", got, want)
	}
	wantTags := map[schema.Tag]float64{schema.TagScenario: 2.5, schema.TagSOC: 6, schema.TagPentest: 9}
	if !reflect.DeepEqual(win.TagAverages, wantTags) {
		t.Fatalf("tagAverages = %v, want %v", win.TagAverages, wantTags)
	}
	if got := r.Series.PT[0]; got == nil || *got != 9 {
		t.Fatalf("pt series[0] = %v, want 9", got)
	}
}

func TestComputeSeriesGapsForMissingTags(t *testing.T) {
	s := schema.Default()
	r := Compute(s, filled(s, 7))

	leader := len(r.Labels) - 1
	if r.Series.Scenario[leader] != nil || r.Series.SOC[leader] != nil || r.Series.PT[leader] != nil {
		t.Fatalf("leader axis should have no scenario/soc/pt values")
	}
	if r.Series.Team[leader] == nil || *r.Series.Team[leader] != 7 {
		t.Fatalf("team series = %v, want 7", r.Series.Team[leader])
	}
	for i := 0; i < leader; i++ {
		if r.Series.Team[i] != nil || r.Series.Comms[i] != nil || r.Series.EN[i] != nil {
			t.Fatalf("axis %d should have no leader tags", i)
		}
	}
	for _, name := range SeriesNames {
		if got := len(r.Series.Named(name)); got != len(r.Labels) {
			t.Fatalf("series %s length = %d, want %d", name, got, len(r.Labels))
		}
	}
}

func TestComputeNotApplicableAxis(t *testing.T) {
	s := schema.Default()
	answers := filled(s, 8)
	for _, q := range s.Axes[1].Questions {
		answers[q.ID] = nil
	}

	r := Compute(s, answers)
	lin := axisByID(t, r, "linux")
	if lin.Mean != nil || lin.Total != nil {
		t.Fatalf("linux mean/total = %v/%v, want nil", lin.Mean, lin.Total)
	}
	if lin.AnsweredCount != 0 {
		t.Fatalf("answeredCount = %d, want 0", lin.AnsweredCount)
	}
	if len(lin.TagAverages) != 0 {
		t.Fatalf("tagAverages = %v, want empty", lin.TagAverages)
	}
	if r.Series.Overall[1] != nil {
		t.Fatalf("overall series should have a gap for linux")
	}
	win := axisByID(t, r, "windows")
	if win.Mean == nil || *win.Mean != 8 {
		t.Fatalf("windows mean = %v, want 8", win.Mean)
	}
	if r.OverallMean == nil || *r.OverallMean != 8 {
		t.Fatalf("overallMean = %v, want 8", r.OverallMean)
	}
	if got, want := Completion(r), 83; got != want {
		t.Fatalf("completion = %d, want %d", got, want)
	}
}

func TestComputePartialTagPresence(t *testing.T) {
	s := schema.Default()
	answers := filled(s, 6)
	// Only the pentest questions of windows are left unanswered.
	for _, q := range s.Axes[0].Questions[7:] {
		delete(answers, q.ID)
	}

	r := Compute(s, answers)
	win := axisByID(t, r, "windows")
	if _, ok := win.TagAverages[schema.TagPentest]; ok {
		t.Fatalf("PT should be omitted when no PT question is answered")
	}
	if got, want := len(win.TagAverages), 2; got != want {
		t.Fatalf("tag count = %d, want %d", got, want)
	}
	if win.AnsweredCount != 7 {
		t.Fatalf("answeredCount = %d, want 7", win.AnsweredCount)
	}
}

func TestComputeClampsOutOfRange(t *testing.T) {
	s := schema.Default()
	cases := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 1},
		{in: -5, want: 1},
		{in: 11, want: 10},
		{in: 7, want: 7},
	}
	for _, tc := range cases {
		answers := filled(s, 5)
		for _, q := range s.Axes[0].Questions {
			answers[q.ID] = ptr(tc.in)
		}
		r := Compute(s, answers)
		if got := *r.AxisOverall[0].Mean; got != tc.want {
			t.Fatalf("value %v: mean = %v, want %v", tc.in, got, tc.want)
		}
		if got := Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestComputePenalizeMissing(t *testing.T) {
	s := schema.Default()
	answers := filled(s, 9)
	for _, q := range s.Axes[2].Questions[:5] {
		answers[q.ID] = nil
	}

	na := Compute(s, answers)
	if got := *axisByID(t, na, "network").Mean; got != 9 {
		t.Fatalf("not-applicable mean = %v, want 9", got)
	}

	pen := ComputeWith(s, answers, ModePenalizeMissing)
	net := axisByID(t, pen, "network")
	if got, want := *net.Mean, 5.0; got != want {
		t.Fatalf("penalized mean = %v, want %v", got, want)
	}
	if net.AnsweredCount != 10 {
		t.Fatalf("penalized answeredCount = %d, want 10", net.AnsweredCount)
	}

	empty := ComputeWith(s, nil, ModePenalizeMissing)
	if empty.OverallMean == nil || *empty.OverallMean != MissingScore {
		t.Fatalf("empty penalized overallMean = %v, want %v", empty.OverallMean, MissingScore)
	}
	if Compute(s, nil).OverallMean != nil {
		t.Fatalf("empty not-applicable overallMean should be nil")
	}
}

func TestComputeIgnoresUnknownKeysAndIsIdempotent(t *testing.T) {
	s := schema.Default()
	answers := filled(s, 3)
	answers["retired_q99"] = ptr(10)

	first := Compute(s, answers)
	second := Compute(s, answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compute is not idempotent")
	}
	if *first.OverallMean != 3 {
		t.Fatalf("overallMean = %v, want 3", *first.OverallMean)
	}
	if len(answers) != s.QuestionCount()+1 {
		t.Fatalf("input answers were modified")
	}
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		2.25: 2.3,
		1.04: 1.0,
		6.66: 6.7,
		5:    5,
	}
	for in, want := range cases {
		if got := Round1(in); got != want {
			t.Fatalf("Round1(%v) = %v, want %v", in, got, want)
		}
	}
}
