package assessment

import (
	"errors"
	"time"
)

// CurrentVersion is the record version written by this module. Version 1 records have no
// N/A answers and no team reference; they are migrated at import time.
const CurrentVersion = 2

// BlankScore is the neutral answer every question starts with in a new assessment.
// It is unrelated to scoring.MissingScore.
const BlankScore = 5

// DefaultMainDirection is the main direction preset on new profiles.
const DefaultMainDirection = "Scenarios / Iron Range"

// NoTeamFilter selects assessments without a team in FilterByTeam.
const NoTeamFilter = "__none__"

// MainDirections lists the selectable main directions.
var MainDirections = []string{
	"Scenarios / Iron Range",
	"Scenarios",
	"Scenarios Transferring",
	"SOC",
	"Pentest",
}

// AdditionalDirections lists the selectable additional directions.
var AdditionalDirections = []string{
	"SOC",
	"Pentest",
	"Iron Range",
	"CTF",
	"Marketing",
	"Communication",
}

var (
	ErrNotFound        = errors.New("assessment not found")
	ErrUnknownQuestion = errors.New("unknown question id")
)

// Engineer is the profile embedded in an assessment. TeamID is empty when unassigned.
type Engineer struct {
	Name                string   `json:"name"`
	Role                string   `json:"role"`
	Period              string   `json:"period"`
	TeamID              string   `json:"teamId,omitempty"`
	MainDirection       string   `json:"mainDirection"`
	AdditionalDirection []string `json:"additionalDirection"`
	Domains             []string `json:"domains"`
}

// Assessment is one engineer's questionnaire response. A nil answer is an explicit N/A.
type Assessment struct {
	ID        string              `json:"id"`
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Engineer  Engineer            `json:"engineer"`
	Notes     string              `json:"notes"`
	Answers   map[string]*float64 `json:"answers"`
}

// DisplayName returns the engineer name or a placeholder.
func (a Assessment) DisplayName() string {
	if a.Engineer.Name == "" {
		return "(unnamed)"
	}
	return a.Engineer.Name
}

// Clone returns a deep copy of a.
func (a Assessment) Clone() Assessment {
	out := a
	out.Engineer.AdditionalDirection = append([]string{}, a.Engineer.AdditionalDirection...)
	out.Engineer.Domains = append([]string{}, a.Engineer.Domains...)
	if a.Answers != nil {
		out.Answers = make(map[string]*float64, len(a.Answers))
		for k, v := range a.Answers {
			if v == nil {
				out.Answers[k] = nil
				continue
			}
			val := *v
			out.Answers[k] = &val
		}
	}
	return out
}
