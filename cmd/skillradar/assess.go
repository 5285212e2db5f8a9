package main

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"skillradar/internal/assessment"
	"skillradar/internal/schema"
	"skillradar/internal/scoring"
	"skillradar/internal/state"
	"skillradar/internal/team"
)

func runAssess(args []string, workspacePath string) error {
	if len(args) == 0 || isHelp(args[0]) {
		return fmt.Errorf("%s assess: missing subcommand (new, list, show, select, set, answer, delete)", appName)
	}

	switch args[0] {
	case "new":
		return runAssessNew(args[1:], workspacePath)
	case "list":
		return runAssessList(args[1:], workspacePath)
	case "show":
		return runAssessShow(args[1:], workspacePath)
	case "select":
		return runAssessSelect(args[1:], workspacePath)
	case "set":
		return runAssessSet(args[1:], workspacePath)
	case "answer":
		return runAssessAnswer(args[1:], workspacePath)
	case "delete":
		return runAssessDelete(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s assess: unknown subcommand %q", appName, args[0])
	}
}

type profileFlags struct {
	name, role, period, team, main, additional, domains, notes *string
}

func addProfileFlags(fs *flag.FlagSet) profileFlags {
	return profileFlags{
		name:       fs.String("name", "", "Engineer name"),
		role:       fs.String("role", "", "Engineer role"),
		period:     fs.String("period", "", "Assessment period"),
		team:       fs.String("team", "", "Team id or name (empty to unassign)"),
		main:       fs.String("main", "", "Main direction"),
		additional: fs.String("additional", "", "Comma-separated additional directions"),
		domains:    fs.String("domains", "", "Comma-separated domains"),
		notes:      fs.String("notes", "", "Free-form notes"),
	}
}

// patch builds a profile patch from the flags that were explicitly set.
func (p profileFlags) patch(fs *flag.FlagSet, teams []team.Team) (assessment.ProfilePatch, error) {
	var patch assessment.ProfilePatch
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = p.name
		case "role":
			patch.Role = p.role
		case "period":
			patch.Period = p.period
		case "main":
			patch.MainDirection = p.main
		case "additional":
			patch.AdditionalDirection = splitList(*p.additional)
		case "domains":
			patch.Domains = splitList(*p.domains)
		case "notes":
			patch.Notes = p.notes
		case "team":
			id := ""
			if strings.TrimSpace(*p.team) != "" {
				t, resolveErr := team.Resolve(teams, *p.team)
				if resolveErr != nil {
					err = resolveErr
					return
				}
				id = t.ID
			}
			patch.TeamID = &id
		}
	})
	return patch, err
}

func runAssessNew(args []string, workspacePath string) (err error) {
	fs := flagSet("assess new")
	pf := addProfileFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	patch, err := pf.patch(fs, a.state.Teams)
	if err != nil {
		return err
	}

	finish := a.track("assess_new", nil)
	defer func() { finish(err) }()

	now := a.now()
	rec := assessment.NewBlank(a.schema, now)
	rec.Engineer.MainDirection = a.cfg.MainDirection
	rec = assessment.UpdateProfile(rec, patch, now)
	a.state.Put(rec)
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, rec.ID)
	return nil
}

func runAssessList(args []string, workspacePath string) error {
	fs := flagSet("assess list")
	teamRef := fs.String("team", "", "Only show this team (id or name)")
	noTeam := fs.Bool("no-team", false, "Only show assessments without a team")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	filter, err := teamFilter(a, *teamRef, *noTeam)
	if err != nil {
		return err
	}
	list := assessment.FilterByTeam(a.state.Assessments, filter)

	type row struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Team        string   `json:"team"`
		OverallMean *float64 `json:"overallMean"`
		Completion  int      `json:"completion"`
		UpdatedAt   string   `json:"updatedAt"`
		Current     bool     `json:"current"`
	}
	rows := make([]row, 0, len(list))
	for _, rec := range list {
		res := rec.Compute(a.schema)
		rows = append(rows, row{
			ID:          rec.ID,
			Name:        rec.DisplayName(),
			Team:        team.DisplayName(a.state.Teams, rec.Engineer.TeamID),
			OverallMean: res.OverallMean,
			Completion:  scoring.Completion(res),
			UpdatedAt:   rec.UpdatedAt.Format("2006-01-02 15:04"),
			Current:     rec.ID == a.state.CurrentID,
		})
	}
	if *asJSON {
		return writeJSON(a.out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No assessments.")
		return nil
	}
	for _, r := range rows {
		marker := " "
		if r.Current {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %-24s %-18s overall %-4s %3d%%  %s\n",
			marker, shortID(r.ID), r.Name, r.Team, formatScore(r.OverallMean), r.Completion, r.UpdatedAt)
	}
	return nil
}

func runAssessShow(args []string, workspacePath string) error {
	fs := flagSet("assess show")
	asJSON := fs.Bool("json", false, "Print JSON")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.state.Resolve(firstOr(positional, ""))
	if err != nil {
		return err
	}
	res := rec.Compute(a.schema)

	if *asJSON {
		return writeJSON(a.out, map[string]any{
			"assessment": rec,
			"computed":   res,
			"completion": scoring.Completion(res),
			"team":       team.DisplayName(a.state.Teams, rec.Engineer.TeamID),
		})
	}

	fmt.Fprintf(a.out, "%s (%s)\n", rec.DisplayName(), rec.ID)
	fmt.Fprintf(a.out, "Role: %s  Period: %s  Team: %s\n", rec.Engineer.Role, rec.Engineer.Period, team.DisplayName(a.state.Teams, rec.Engineer.TeamID))
	fmt.Fprintf(a.out, "Direction: %s", rec.Engineer.MainDirection)
	if len(rec.Engineer.AdditionalDirection) > 0 {
		fmt.Fprintf(a.out, " + %s", strings.Join(rec.Engineer.AdditionalDirection, ", "))
	}
	fmt.Fprintln(a.out)
	if len(rec.Engineer.Domains) > 0 {
		fmt.Fprintf(a.out, "Domains: %s\n", strings.Join(rec.Engineer.Domains, ", "))
	}
	fmt.Fprintf(a.out, "Overall: %s  Completion: %d%%\n\n", formatScore(res.OverallMean), scoring.Completion(res))
	for _, ar := range res.AxisOverall {
		total := "n/a"
		if ar.Total != nil {
			total = strconv.Itoa(*ar.Total)
		}
		fmt.Fprintf(a.out, "%-44s mean %-4s total %-4s (%d/%d)", ar.Label, formatScore(ar.Mean), total, ar.AnsweredCount, ar.QuestionCount)
		for _, tag := range schema.Tags {
			if v, ok := ar.TagAverages[tag]; ok {
				fmt.Fprintf(a.out, "  %s %.1f", tag.Label(), v)
			}
		}
		fmt.Fprintln(a.out)
	}
	if rec.Notes != "" {
		fmt.Fprintf(a.out, "\nNotes:\n%s\n", rec.Notes)
	}
	return nil
}

func runAssessSelect(args []string, workspacePath string) (err error) {
	fs := flagSet("assess select")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s assess select <id>", appName)
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	finish := a.track("assess_select", map[string]any{"ref": fs.Arg(0)})
	defer func() { finish(err) }()

	if err := a.state.Select(fs.Arg(0)); err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.state.CurrentID)
	return nil
}

func runAssessSet(args []string, workspacePath string) (err error) {
	fs := flagSet("assess set")
	pf := addProfileFlags(fs)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.state.Resolve(firstOr(positional, ""))
	if err != nil {
		return err
	}
	patch, err := pf.patch(fs, a.state.Teams)
	if err != nil {
		return err
	}

	finish := a.track("assess_set", map[string]any{"id": rec.ID})
	defer func() { finish(err) }()

	a.state.Put(assessment.UpdateProfile(rec, patch, a.now()))
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", rec.ID)
	return nil
}

// runAssessAnswer accepts `<id> <qid> <value>` or `<id> qid=value...`. "na" marks N/A.
// The id "current" starts a blank assessment when nothing is selected.
func runAssessAnswer(args []string, workspacePath string) (err error) {
	fs := flagSet("assess answer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	positional := fs.Args()
	if len(positional) < 2 {
		return fmt.Errorf("usage: %s assess answer <id> <qid> <value|na> | <id> qid=value...", appName)
	}
	pairs, err := answerPairs(positional[1:])
	if err != nil {
		return err
	}

	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	var rec assessment.Assessment
	if positional[0] == state.CurrentRef {
		var created bool
		rec, created = a.state.EnsureCurrent(a.now())
		if created {
			fmt.Fprintf(a.out, "Started new assessment %s\n", rec.ID)
		}
	} else if rec, err = a.state.Resolve(positional[0]); err != nil {
		return err
	}

	finish := a.track("assess_answer", map[string]any{"id": rec.ID, "answers": len(pairs)})
	defer func() { finish(err) }()

	now := a.now()
	for _, p := range pairs {
		if p.na {
			rec, err = assessment.MarkNA(rec, a.schema, p.qid, now)
		} else {
			rec, err = assessment.SetAnswer(rec, a.schema, p.qid, p.value, now)
		}
		if err != nil {
			return err
		}
	}
	a.state.Put(rec)
	if err := a.save(); err != nil {
		return err
	}
	res := rec.Compute(a.schema)
	fmt.Fprintf(a.out, "Saved %d answer(s); overall %s, completion %d%%\n", len(pairs), formatScore(res.OverallMean), scoring.Completion(res))
	return nil
}

type answerPair struct {
	qid   string
	value float64
	na    bool
}

func answerPairs(args []string) ([]answerPair, error) {
	if len(args) == 2 && !strings.Contains(args[0], "=") {
		args = []string{args[0] + "=" + args[1]}
	}
	pairs := make([]answerPair, 0, len(args))
	for _, arg := range args {
		qid, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(qid) == "" {
			return nil, fmt.Errorf("invalid answer %q (expected qid=value)", arg)
		}
		p := answerPair{qid: strings.TrimSpace(qid)}
		raw = strings.TrimSpace(raw)
		if strings.EqualFold(raw, "na") || strings.EqualFold(raw, "n/a") {
			p.na = true
		} else {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("invalid score %q for %s (expected 1-10 or na)", raw, p.qid)
			}
			p.value = v
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func runAssessDelete(args []string, workspacePath string) (err error) {
	fs := flagSet("assess delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s assess delete <id>", appName)
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.state.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}

	finish := a.track("assess_delete", map[string]any{"id": rec.ID})
	defer func() { finish(err) }()

	if err := a.state.Remove(rec.ID); err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", rec.ID)
	return nil
}

func teamFilter(a *app, ref string, noTeam bool) (string, error) {
	if noTeam {
		return assessment.NoTeamFilter, nil
	}
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	t, err := team.Resolve(a.state.Teams, ref)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
