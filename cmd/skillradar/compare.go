package main

import (
	"fmt"

	"skillradar/internal/assessment"
	"skillradar/internal/chart"
	"skillradar/internal/export"
	"skillradar/internal/scoring"
)

func runCompare(args []string, workspacePath string) (err error) {
	fs := flagSet("compare")
	teamRef := fs.String("team", "", "Compare every assessment of this team")
	noTeam := fs.Bool("no-team", false, "Compare every assessment without a team")
	png := fs.Bool("png", false, "Also write a comparison radar chart")
	out := fs.String("out", "", "Chart output file (default: <exports>/comparison_radar.png)")
	refs, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	var picked []assessment.Assessment
	if len(refs) == 0 {
		filter, err := teamFilter(a, *teamRef, *noTeam)
		if err != nil {
			return err
		}
		picked = assessment.FilterByTeam(a.state.Assessments, filter)
	} else {
		seen := make(map[string]struct{}, len(refs))
		for _, ref := range refs {
			rec, err := a.state.Resolve(ref)
			if err != nil {
				return err
			}
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			picked = append(picked, rec)
		}
	}
	if len(picked) < scoring.MinSelection {
		return fmt.Errorf("pick at least %d engineers (got %d)", scoring.MinSelection, len(picked))
	}

	results := make([]scoring.Result, 0, len(picked))
	type engineer struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		OverallMean *float64 `json:"overallMean"`
	}
	engineers := make([]engineer, 0, len(picked))
	for _, rec := range picked {
		res := rec.Compute(a.schema)
		results = append(results, res)
		engineers = append(engineers, engineer{ID: rec.ID, Name: rec.DisplayName(), OverallMean: res.OverallMean})
	}
	agg := scoring.Aggregate(results)

	if *png {
		path, err := a.ws.ExportPath(*out, export.ComparisonFileName)
		if err != nil {
			return err
		}
		finish := a.track("export_comparison", map[string]any{"path": path, "count": len(picked)})
		data, err := chart.RenderAggregate(agg, chart.Options{Size: a.cfg.Chart.Size, Title: fmt.Sprintf("Comparison (%d engineers)", len(picked))})
		if err == nil {
			err = export.WriteFile(path, data)
		}
		finish(err)
		if err != nil {
			return err
		}
		a.log.Info("comparison chart written", "path", path)
	}

	return writeJSON(a.out, map[string]any{
		"aggregate": agg,
		"engineers": engineers,
	})
}
