package importer

import (
	"fmt"
	"strings"
	"time"

	"skillradar/internal/assessment"
	"skillradar/internal/schema"
	"skillradar/internal/scoring"
	"skillradar/internal/team"
)

// Import is a reconciled payload ready to be applied to the store.
type Import struct {
	Source      string
	Variant     Variant
	Exported    bool
	Teams       []team.Team
	Assessments []assessment.Assessment
}

// Replaces reports whether applying the import replaces the whole store.
func (imp Import) Replaces() bool {
	return imp.Variant == VariantBackup
}

// Reconcile migrates a decoded payload to current records.
//
// A single assessment keeps its id and createdAt when present, always gets a fresh updatedAt,
// has its profile merged over blank defaults and its answers merged over a blank answer set, so
// every current question is present. Backup records keep their own timestamps.
func Reconcile(p Payload, s *schema.Schema, now time.Time) (Import, error) {
	now = now.UTC()
	imp := Import{Source: p.Source, Variant: p.Variant, Exported: p.Exported}

	switch p.Variant {
	case VariantBackup:
		imp.Teams = make([]team.Team, 0, len(p.teams))
		for _, rt := range p.teams {
			imp.Teams = append(imp.Teams, reconcileTeam(rt, now))
		}
		imp.Assessments = make([]assessment.Assessment, 0, len(p.items))
		seen := make(map[string]struct{}, len(p.items))
		for _, rec := range p.items {
			a := reconcileRecord(rec, detectVariant(rec), s, now, true)
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			imp.Assessments = append(imp.Assessments, a)
		}
	case VariantV1, VariantV2:
		if p.record == nil {
			return Import{}, fmt.Errorf("%s: %w", p.Source, ErrUnrecognizedPayload)
		}
		imp.Assessments = []assessment.Assessment{reconcileRecord(p.record, p.Variant, s, now, false)}
	default:
		return Import{}, fmt.Errorf("%s: %w", p.Source, ErrUnrecognizedPayload)
	}
	return imp, nil
}

// Apply merges an import into the current lists. Backups replace both lists; single
// assessments are upserted.
func Apply(teams []team.Team, assessments []assessment.Assessment, imp Import) ([]team.Team, []assessment.Assessment) {
	if imp.Replaces() {
		return append([]team.Team{}, imp.Teams...), append([]assessment.Assessment{}, imp.Assessments...)
	}
	for _, a := range imp.Assessments {
		assessments = assessment.Upsert(assessments, a)
	}
	return teams, assessments
}

// PenalizedResult scores a single version 1 record the way it was scored before migration:
// missing and invalid answers count as scoring.MissingScore.
func PenalizedResult(p Payload, s *schema.Schema) (scoring.Result, bool) {
	if p.Variant != VariantV1 || p.record == nil {
		return scoring.Result{}, false
	}
	answers := make(map[string]*float64, len(p.record.answers))
	for qid, a := range p.record.answers {
		if a.kind != answerNumber {
			continue
		}
		v := a.value
		answers[qid] = &v
	}
	return scoring.ComputeWith(s, answers, scoring.ModePenalizeMissing), true
}

func reconcileRecord(rec *rawRecord, variant Variant, s *schema.Schema, now time.Time, keepUpdated bool) assessment.Assessment {
	a := assessment.Assessment{
		ID:        rec.id,
		Version:   assessment.CurrentVersion,
		CreatedAt: parseTime(rec.createdAt, now),
		UpdatedAt: now,
		Engineer:  reconcileEngineer(rec.engineer, variant),
		Answers:   assessment.BlankAnswers(s),
	}
	if a.ID == "" {
		a.ID = assessment.NewID()
	}
	if keepUpdated {
		a.UpdatedAt = parseTime(rec.updatedAt, now)
	}
	if rec.notes != nil {
		a.Notes = *rec.notes
	}

	for qid, raw := range rec.answers {
		switch {
		case raw.kind == answerNumber:
			v := scoring.Clamp(raw.value)
			a.Answers[qid] = &v
		case variant == VariantV1:
			v := float64(scoring.MissingScore)
			a.Answers[qid] = &v
		default:
			a.Answers[qid] = nil
		}
	}
	return a
}

func reconcileEngineer(raw *rawEngineer, variant Variant) assessment.Engineer {
	eng := assessment.BlankEngineer()
	if raw == nil {
		return eng
	}
	f := raw.fields
	if _, ok := f["name"]; ok {
		eng.Name = strings.TrimSpace(stringField(f, "name"))
	}
	if _, ok := f["role"]; ok {
		eng.Role = strings.TrimSpace(stringField(f, "role"))
	}
	if _, ok := f["period"]; ok {
		eng.Period = strings.TrimSpace(stringField(f, "period"))
	}
	if _, ok := f["mainDirection"]; ok {
		eng.MainDirection = strings.TrimSpace(stringField(f, "mainDirection"))
	}
	if list, ok := stringList(f, "additionalDirection"); ok {
		eng.AdditionalDirection = list
	}
	if list, ok := stringList(f, "domains"); ok {
		eng.Domains = list
	}
	if variant == VariantV2 {
		eng.TeamID = strings.TrimSpace(stringField(f, "teamId"))
	}
	return eng
}

func reconcileTeam(rt rawTeam, now time.Time) team.Team {
	t := team.Team{
		ID:        strings.TrimSpace(rt.id),
		Name:      strings.TrimSpace(rt.name),
		CreatedAt: parseTime(rt.createdAt, now),
	}
	if t.ID == "" {
		t.ID = assessment.NewID()
	}
	if t.Name == "" {
		t.Name = "Unnamed team"
	}
	return t
}

func parseTime(value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
