package scoring

import (
	"math"

	"skillradar/internal/schema"
)

const (
	// MinScore and MaxScore bound every stored or scored answer.
	MinScore = 1
	MaxScore = 10

	// MissingScore replaces missing or invalid answers when scoring in ModePenalizeMissing.
	// It is unrelated to the neutral value blank assessments are created with.
	MissingScore = 1
)

// Mode selects how missing answers are scored.
type Mode int

const (
	// ModeNotApplicable excludes null, missing and invalid answers from every average.
	ModeNotApplicable Mode = iota
	// ModePenalizeMissing scores null, missing and invalid answers as MissingScore.
	// It reproduces how records without N/A support were scored.
	ModePenalizeMissing
)

func (m Mode) String() string {
	switch m {
	case ModePenalizeMissing:
		return "penalize-missing"
	default:
		return "not-applicable"
	}
}

// AxisResult is the score of a single axis.
type AxisResult struct {
	AxisID        string                 `json:"axisId"`
	Label         string                 `json:"label"`
	AnsweredCount int                    `json:"answeredCount"`
	QuestionCount int                    `json:"questionCount"`
	Mean          *float64               `json:"mean"`
	Total         *int                   `json:"total"`
	TagAverages   map[schema.Tag]float64 `json:"tagAverages"`
}

// Series holds one chart overlay per field, aligned with Result.Labels.
// A nil entry means the axis has no answered question for that overlay.
type Series struct {
	Overall  []*float64 `json:"overall"`
	Scenario []*float64 `json:"scenario"`
	SOC      []*float64 `json:"soc"`
	PT       []*float64 `json:"pt"`
	Team     []*float64 `json:"team"`
	Comms    []*float64 `json:"comms"`
	EN       []*float64 `json:"en"`
}

// Result is the computed score of one assessment.
type Result struct {
	AxisOverall []AxisResult `json:"axisOverall"`
	Labels      []string     `json:"labels"`
	Series      Series       `json:"series"`
	OverallMean *float64     `json:"overallMean"`
}

// Clamp bounds v to [MinScore, MaxScore]. NaN maps to MinScore.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// Round1 rounds n to one decimal place, nudging exact halves up.
func Round1(n float64) float64 {
	return math.Round((n+epsilon)*10) / 10
}

// Machine epsilon for float64.
const epsilon = 2.220446049250313e-16

// Compute scores answers against s, excluding N/A answers.
func Compute(s *schema.Schema, answers map[string]*float64) Result {
	return ComputeWith(s, answers, ModeNotApplicable)
}

// ComputeWith scores answers against s using the given missing-value mode.
// Keys of answers that are not part of s are ignored. answers is not modified.
func ComputeWith(s *schema.Schema, answers map[string]*float64, mode Mode) Result {
	res := Result{
		AxisOverall: make([]AxisResult, 0, len(s.Axes)),
		Labels:      make([]string, 0, len(s.Axes)),
	}

	var allSum float64
	var allCount int

	for _, axis := range s.Axes {
		ar := AxisResult{
			AxisID:        axis.ID,
			Label:         axis.Name,
			QuestionCount: len(axis.Questions),
			TagAverages:   make(map[schema.Tag]float64),
		}

		var sum float64
		tagSum := make(map[schema.Tag]float64)
		tagCount := make(map[schema.Tag]int)

		for _, q := range axis.Questions {
			v, ok := resolve(answers[q.ID], mode)
			if !ok {
				continue
			}
			sum += v
			ar.AnsweredCount++
			tagSum[q.Tag] += v
			tagCount[q.Tag]++
		}

		if ar.AnsweredCount > 0 {
			mean := Round1(sum / float64(ar.AnsweredCount))
			total := int(math.Round(mean * 10))
			ar.Mean = &mean
			ar.Total = &total
		}
		for tag, n := range tagCount {
			ar.TagAverages[tag] = Round1(tagSum[tag] / float64(n))
		}

		allSum += sum
		allCount += ar.AnsweredCount

		res.AxisOverall = append(res.AxisOverall, ar)
		res.Labels = append(res.Labels, axis.Name)
		res.Series.Overall = append(res.Series.Overall, ar.Mean)
		res.Series.Scenario = append(res.Series.Scenario, tagValue(ar, schema.TagScenario))
		res.Series.SOC = append(res.Series.SOC, tagValue(ar, schema.TagSOC))
		res.Series.PT = append(res.Series.PT, tagValue(ar, schema.TagPentest))
		res.Series.Team = append(res.Series.Team, tagValue(ar, schema.TagTeam))
		res.Series.Comms = append(res.Series.Comms, tagValue(ar, schema.TagComms))
		res.Series.EN = append(res.Series.EN, tagValue(ar, schema.TagEnglish))
	}

	if allCount > 0 {
		res.OverallMean = ptr(Round1(allSum / float64(allCount)))
	}
	return res
}

// resolve returns the score to use for one answer and whether it counts.
func resolve(answer *float64, mode Mode) (float64, bool) {
	valid := answer != nil && !math.IsNaN(*answer) && !math.IsInf(*answer, 0)
	if valid {
		return Clamp(*answer), true
	}
	if mode == ModePenalizeMissing {
		return MissingScore, true
	}
	return 0, false
}

func tagValue(ar AxisResult, tag schema.Tag) *float64 {
	v, ok := ar.TagAverages[tag]
	if !ok {
		return nil
	}
	return &v
}

// Completion returns the share of questions answered, as a percentage in [0, 100].
func Completion(r Result) int {
	var answered, total int
	for _, ar := range r.AxisOverall {
		answered += ar.AnsweredCount
		total += ar.QuestionCount
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(answered) * 100 / float64(total)))
}

// Named returns the named overlay, or nil for an unknown name.
func (s Series) Named(name string) []*float64 {
	switch name {
	case "overall":
		return s.Overall
	case "scenario":
		return s.Scenario
	case "soc":
		return s.SOC
	case "pt":
		return s.PT
	case "team":
		return s.Team
	case "comms":
		return s.Comms
	case "en":
		return s.EN
	}
	return nil
}

// SeriesNames lists the overlay names in chart order.
var SeriesNames = []string{"overall", "scenario", "soc", "pt", "team", "comms", "en"}

func ptr(v float64) *float64 {
	return &v
}
