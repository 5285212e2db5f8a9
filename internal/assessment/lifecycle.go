package assessment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillradar/internal/schema"
	"skillradar/internal/scoring"
)

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// BlankEngineer returns an empty profile with the default main direction.
func BlankEngineer() Engineer {
	return Engineer{
		MainDirection:       DefaultMainDirection,
		AdditionalDirection: []string{},
		Domains:             []string{},
	}
}

// BlankAnswers sets every question of s to BlankScore.
func BlankAnswers(s *schema.Schema) map[string]*float64 {
	answers := make(map[string]*float64, s.QuestionCount())
	for _, id := range s.QuestionIDs() {
		v := float64(BlankScore)
		answers[id] = &v
	}
	return answers
}

// NewBlank creates an assessment with an empty profile and every answer at BlankScore.
func NewBlank(s *schema.Schema, now time.Time) Assessment {
	now = now.UTC()
	return Assessment{
		ID:        NewID(),
		Version:   CurrentVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Engineer:  BlankEngineer(),
		Answers:   BlankAnswers(s),
	}
}

// Compute scores the assessment against s.
func (a Assessment) Compute(s *schema.Schema) scoring.Result {
	return scoring.Compute(s, a.Answers)
}

// Upsert returns a new list with item first and any earlier record sharing its id removed.
func Upsert(list []Assessment, item Assessment) []Assessment {
	out := make([]Assessment, 0, len(list)+1)
	out = append(out, item)
	for _, a := range list {
		if a.ID != item.ID {
			out = append(out, a)
		}
	}
	return out
}

// RemoveByID returns a new list without the record with the given id.
func RemoveByID(list []Assessment, id string) []Assessment {
	out := make([]Assessment, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the record with the given id.
func Find(list []Assessment, id string) (Assessment, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Assessment{}, false
}

// Lookup is Find with an ErrNotFound error.
func Lookup(list []Assessment, id string) (Assessment, error) {
	a, ok := Find(list, id)
	if !ok {
		return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// SetAnswer stores the clamped score for qid on a copy of a.
func SetAnswer(a Assessment, s *schema.Schema, qid string, value float64, now time.Time) (Assessment, error) {
	if _, _, ok := s.Question(qid); !ok {
		return a, fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return a, fmt.Errorf("answer for %s must be a finite number", qid)
	}
	out := a.Clone()
	if out.Answers == nil {
		out.Answers = make(map[string]*float64)
	}
	v := scoring.Clamp(value)
	out.Answers[qid] = &v
	out.UpdatedAt = now.UTC()
	return out, nil
}

// MarkNA stores an explicit not-applicable answer for qid on a copy of a.
func MarkNA(a Assessment, s *schema.Schema, qid string, now time.Time) (Assessment, error) {
	if _, _, ok := s.Question(qid); !ok {
		return a, fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
	}
	out := a.Clone()
	if out.Answers == nil {
		out.Answers = make(map[string]*float64)
	}
	out.Answers[qid] = nil
	out.UpdatedAt = now.UTC()
	return out, nil
}

// ProfilePatch lists profile fields to overwrite. Nil fields are left untouched.
type ProfilePatch struct {
	Name                *string
	Role                *string
	Period              *string
	TeamID              *string
	MainDirection       *string
	AdditionalDirection []string
	Domains             []string
	Notes               *string
}

// UpdateProfile applies patch to a copy of a.
func UpdateProfile(a Assessment, patch ProfilePatch, now time.Time) Assessment {
	out := a.Clone()
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&out.Engineer.Name, patch.Name)
	set(&out.Engineer.Role, patch.Role)
	set(&out.Engineer.Period, patch.Period)
	set(&out.Engineer.TeamID, patch.TeamID)
	set(&out.Engineer.MainDirection, patch.MainDirection)
	if patch.AdditionalDirection != nil {
		out.Engineer.AdditionalDirection = uniqueTrimmed(patch.AdditionalDirection)
	}
	if patch.Domains != nil {
		out.Engineer.Domains = uniqueTrimmed(patch.Domains)
	}
	if patch.Notes != nil {
		out.Notes = *patch.Notes
	}
	out.UpdatedAt = now.UTC()
	return out
}

// FilterByTeam keeps records matching filter: "" keeps all, NoTeamFilter keeps unassigned
// records and any other value keeps that team's records.
func FilterByTeam(list []Assessment, filter string) []Assessment {
	out := make([]Assessment, 0, len(list))
	for _, a := range list {
		switch filter {
		case "":
		case NoTeamFilter:
			if a.Engineer.TeamID != "" {
				continue
			}
		default:
			if a.Engineer.TeamID != filter {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func uniqueTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
