package scoring

// MinSelection is the smallest number of assessments a comparison is meaningful for.
// Aggregate itself accepts any count; callers enforce the minimum.
const MinSelection = 2

// AggregateSeries holds the averaged overlays used by comparison charts.
type AggregateSeries struct {
	Overall  []*float64 `json:"overall"`
	Scenario []*float64 `json:"scenario"`
	SOC      []*float64 `json:"soc"`
	PT       []*float64 `json:"pt"`
}

// AggregateResult is the null-safe average of several computed results.
type AggregateResult struct {
	Count  int             `json:"count"`
	Labels []string        `json:"labels"`
	Series AggregateSeries `json:"series"`
}

// Aggregate averages results axis by axis. Null cells are left out of both the sum and the
// denominator; a cell with no values at all stays null. Labels come from the first result.
func Aggregate(results []Result) AggregateResult {
	out := AggregateResult{Count: len(results)}
	if len(results) == 0 {
		return out
	}
	out.Labels = append([]string(nil), results[0].Labels...)
	n := len(out.Labels)

	pick := func(get func(Series) []*float64) []*float64 {
		cells := make([]*float64, n)
		for i := 0; i < n; i++ {
			var sum float64
			var count int
			for _, r := range results {
				values := get(r.Series)
				if i >= len(values) || values[i] == nil {
					continue
				}
				sum += *values[i]
				count++
			}
			if count > 0 {
				cells[i] = ptr(Round1(sum / float64(count)))
			}
		}
		return cells
	}

	out.Series.Overall = pick(func(s Series) []*float64 { return s.Overall })
	out.Series.Scenario = pick(func(s Series) []*float64 { return s.Scenario })
	out.Series.SOC = pick(func(s Series) []*float64 { return s.SOC })
	out.Series.PT = pick(func(s Series) []*float64 { return s.PT })
	return out
}

// Named returns the named aggregate overlay, or nil for an unknown name.
func (s AggregateSeries) Named(name string) []*float64 {
	switch name {
	case "overall":
		return s.Overall
	case "scenario":
		return s.Scenario
	case "soc":
		return s.SOC
	case "pt":
		return s.PT
	}
	return nil
}

// AggregateSeriesNames lists the aggregate overlay names in chart order.
var AggregateSeriesNames = []string{"overall", "scenario", "soc", "pt"}
