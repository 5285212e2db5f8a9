package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"skillradar/internal/assessment"
	"skillradar/internal/importer"
	"skillradar/internal/schema"
	"skillradar/internal/store"
	"skillradar/internal/team"
)

// CurrentRef refers to the current selection wherever an assessment id is accepted.
const CurrentRef = "current"

var ErrAmbiguousRef = errors.New("ambiguous assessment reference")

// Persister loads and saves the full application state.
type Persister interface {
	Load() store.Snapshot
	SaveAll(store.Snapshot) error
}

// State is the application's single in-memory container. Engine functions transform its lists;
// callers persist it with Save.
type State struct {
	Schema      *schema.Schema
	Teams       []team.Team
	Assessments []assessment.Assessment
	CurrentID   string
}

// Load reads state from p. Unreadable resources load as empty lists.
func Load(p Persister, s *schema.Schema) *State {
	snap := p.Load()
	return &State{
		Schema:      s,
		Teams:       snap.Teams,
		Assessments: snap.Assessments,
		CurrentID:   snap.CurrentID,
	}
}

// Save writes the full state through p.
func (st *State) Save(p Persister) error {
	return p.SaveAll(st.Snapshot())
}

// Snapshot returns the persistable view of the state.
func (st *State) Snapshot() store.Snapshot {
	return store.Snapshot{
		Teams:       st.Teams,
		Assessments: st.Assessments,
		CurrentID:   st.CurrentID,
	}
}

// Current returns the selected assessment if it still exists.
func (st *State) Current() (assessment.Assessment, bool) {
	if st.CurrentID == "" {
		return assessment.Assessment{}, false
	}
	return assessment.Find(st.Assessments, st.CurrentID)
}

// EnsureCurrent returns the selected assessment, creating and selecting a blank one when the
// selection is empty or dangling.
func (st *State) EnsureCurrent(now time.Time) (assessment.Assessment, bool) {
	if a, ok := st.Current(); ok {
		return a, false
	}
	a := assessment.NewBlank(st.Schema, now)
	st.Put(a)
	return a, true
}

// Select makes id the current selection.
func (st *State) Select(id string) error {
	a, err := st.Resolve(id)
	if err != nil {
		return err
	}
	st.CurrentID = a.ID
	return nil
}

// Put upserts a and selects it.
func (st *State) Put(a assessment.Assessment) {
	st.Assessments = assessment.Upsert(st.Assessments, a)
	st.CurrentID = a.ID
}

// Remove deletes the assessment and clears the selection if it pointed at it.
func (st *State) Remove(id string) error {
	if _, err := assessment.Lookup(st.Assessments, id); err != nil {
		return err
	}
	st.Assessments = assessment.RemoveByID(st.Assessments, id)
	if st.CurrentID == id {
		st.CurrentID = ""
	}
	return nil
}

// DeleteTeam removes a team and applies policy to its assessments.
func (st *State) DeleteTeam(id string, policy team.DeletePolicy, now time.Time) (int, error) {
	affected := team.CountMembers(st.Assessments, id)
	teams, list, err := team.Delete(st.Teams, st.Assessments, id, policy, now)
	if err != nil {
		return 0, err
	}
	st.Teams = teams
	st.Assessments = list
	if _, ok := st.Current(); !ok {
		st.CurrentID = ""
	}
	return affected, nil
}

// ApplyImport merges a reconciled import into the state. A single assessment becomes the
// current selection.
func (st *State) ApplyImport(imp importer.Import) {
	st.Teams, st.Assessments = importer.Apply(st.Teams, st.Assessments, imp)
	if !imp.Replaces() && len(imp.Assessments) > 0 {
		st.CurrentID = imp.Assessments[len(imp.Assessments)-1].ID
	}
	if _, ok := st.Current(); !ok {
		st.CurrentID = ""
	}
}

// Resolve finds an assessment by exact id, unique id prefix or CurrentRef.
func (st *State) Resolve(ref string) (assessment.Assessment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == CurrentRef {
		if a, ok := st.Current(); ok {
			return a, nil
		}
		return assessment.Assessment{}, fmt.Errorf("%w: no current selection", assessment.ErrNotFound)
	}
	if a, ok := assessment.Find(st.Assessments, ref); ok {
		return a, nil
	}
	var matches []assessment.Assessment
	for _, a := range st.Assessments {
		if strings.HasPrefix(a.ID, ref) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return assessment.Assessment{}, fmt.Errorf("%w: %s", assessment.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return assessment.Assessment{}, fmt.Errorf("%w: %s matches %d records", ErrAmbiguousRef, ref, len(matches))
	}
}
