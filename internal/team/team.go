package team

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillradar/internal/assessment"
)

var (
	ErrNotFound      = errors.New("team not found")
	ErrEmptyName     = errors.New("team name is required")
	ErrAmbiguousName = errors.New("ambiguous team name")
)

const (
	// NoTeamLabel is shown for assessments without a team.
	NoTeamLabel = "(no team)"
	// DeletedTeamLabel is shown for assessments whose team no longer exists.
	DeletedTeamLabel = "(deleted team)"
)

// Team is a named group of engineers.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeletePolicy decides what happens to a deleted team's assessments.
type DeletePolicy int

const (
	// Unassign clears the team reference and keeps the assessments.
	Unassign DeletePolicy = iota
	// Cascade removes the assessments together with the team.
	Cascade
)

func (p DeletePolicy) String() string {
	if p == Cascade {
		return "cascade"
	}
	return "unassign"
}

// Create returns a new list with a freshly created team first.
func Create(teams []Team, name string, now time.Time) ([]Team, Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return teams, Team{}, ErrEmptyName
	}
	t := Team{ID: uuid.NewString(), Name: name, CreatedAt: now.UTC()}
	out := make([]Team, 0, len(teams)+1)
	out = append(out, t)
	out = append(out, teams...)
	return out, t, nil
}

// Rename returns a new list with the team's name replaced.
func Rename(teams []Team, id, name string) ([]Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return teams, ErrEmptyName
	}
	idx := indexOf(teams, id)
	if idx < 0 {
		return teams, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := append([]Team(nil), teams...)
	out[idx].Name = name
	return out, nil
}

// Delete removes the team and applies policy to every assessment that references it.
// Both lists are returned together so callers persist them as one change.
func Delete(teams []Team, assessments []assessment.Assessment, id string, policy DeletePolicy, now time.Time) ([]Team, []assessment.Assessment, error) {
	if indexOf(teams, id) < 0 {
		return teams, assessments, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	outTeams := make([]Team, 0, len(teams)-1)
	for _, t := range teams {
		if t.ID != id {
			outTeams = append(outTeams, t)
		}
	}

	outAssessments := make([]assessment.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Engineer.TeamID != id {
			outAssessments = append(outAssessments, a)
			continue
		}
		if policy == Cascade {
			continue
		}
		cleared := a.Clone()
		cleared.Engineer.TeamID = ""
		cleared.UpdatedAt = now.UTC()
		outAssessments = append(outAssessments, cleared)
	}
	return outTeams, outAssessments, nil
}

// Find returns the team with the given id.
func Find(teams []Team, id string) (Team, bool) {
	idx := indexOf(teams, id)
	if idx < 0 {
		return Team{}, false
	}
	return teams[idx], true
}

// CountMembers counts assessments assigned to the team.
func CountMembers(assessments []assessment.Assessment, id string) int {
	n := 0
	for _, a := range assessments {
		if a.Engineer.TeamID == id {
			n++
		}
	}
	return n
}

// DisplayName resolves a team reference for display. Dangling references are not an error.
func DisplayName(teams []Team, id string) string {
	if id == "" {
		return NoTeamLabel
	}
	if t, ok := Find(teams, id); ok {
		return t.Name
	}
	return DeletedTeamLabel
}

// Resolve accepts a team id or a team name. Names match case-insensitively; when several
// teams match, only an exact-case match is accepted.
func Resolve(teams []Team, ref string) (Team, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := Find(teams, ref); ok {
		return t, nil
	}
	var folded, exact []Team
	for _, t := range teams {
		if strings.EqualFold(t.Name, ref) {
			folded = append(folded, t)
			if t.Name == ref {
				exact = append(exact, t)
			}
		}
	}
	switch {
	case len(folded) == 1:
		return folded[0], nil
	case len(exact) == 1:
		return exact[0], nil
	case len(folded) > 1:
		return Team{}, fmt.Errorf("%w: %s matches %d teams", ErrAmbiguousName, ref, len(folded))
	}
	return Team{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func indexOf(teams []Team, id string) int {
	for i, t := range teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}
