package integration_test

import (
	"encoding/json"
	"strings"
	"testing"

	"skillradar/integration/harness"
)

func seedTeam(t *testing.T, binPath, root, name string, members ...string) string {
	t.Helper()
	teamID := strings.TrimSpace(harness.MustRun(t, binPath, root, "team", "create", name))
	for _, m := range members {
		harness.MustRun(t, binPath, root, "assess", "new", "--name", m, "--team", name)
	}
	return teamID
}

func TestTeamDeleteUnassign(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	seedTeam(t, binPath, root, "Red", "A", "B")

	stdout := harness.MustRun(t, binPath, root, "team", "delete", "red", "--unassign")
	if !strings.Contains(stdout, "unassigned 2 assessment(s)") {
		t.Fatalf("unexpected delete output:\n%s", stdout)
	}
	rows := listAssessments(t, binPath, root, "--no-team")
	if len(rows) != 2 {
		t.Fatalf("expected 2 unassigned assessments, got %+v", rows)
	}
	for _, r := range rows {
		if r.Team != "(no team)" {
			t.Fatalf("%s team = %q", r.Name, r.Team)
		}
	}
	requireAuditEvents(t, root, "team_create", "team_delete")
}

func TestTeamDeleteCascade(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	seedTeam(t, binPath, root, "Red", "A", "B")
	harness.MustRun(t, binPath, root, "assess", "new", "--name", "Solo")

	stdout := harness.MustRun(t, binPath, root, "team", "delete", "Red", "--cascade")
	if !strings.Contains(stdout, "Deleted team Red and 2 assessment(s)") {
		t.Fatalf("unexpected delete output:\n%s", stdout)
	}
	rows := listAssessments(t, binPath, root)
	if len(rows) != 1 || rows[0].Name != "Solo" {
		t.Fatalf("expected only Solo to remain, got %+v", rows)
	}
}

func TestTeamDeleteRequiresPolicy(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	seedTeam(t, binPath, root, "Red")

	_, stderr, code := harness.Run(t, binPath, root, []string{"--workspace", root, "team", "delete", "Red"})
	if code == 0 {
		t.Fatalf("expected failure without a policy flag")
	}
	if !strings.Contains(stderr, "--cascade or --unassign") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestCompareTeam(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	seedTeam(t, binPath, root, "Red", "A", "B")

	rows := listAssessments(t, binPath, root, "--team", "Red")
	if len(rows) != 2 {
		t.Fatalf("expected 2 team members, got %+v", rows)
	}
	harness.MustRun(t, binPath, root, "assess", "answer", rows[0].ID, "win_q1=4")
	harness.MustRun(t, binPath, root, "assess", "answer", rows[1].ID, "win_q1=8", "win_q2=na")

	var cmp struct {
		Aggregate struct {
			Count  int      `json:"count"`
			Labels []string `json:"labels"`
			Series struct {
				Overall []*float64 `json:"overall"`
			} `json:"series"`
		} `json:"aggregate"`
		Engineers []struct {
			ID string `json:"id"`
		} `json:"engineers"`
	}
	stdout := harness.MustRun(t, binPath, root, "compare", "--team", "Red", "--png")
	if err := json.Unmarshal([]byte(stdout), &cmp); err != nil {
		t.Fatalf("decode compare: %v\n%s", err, stdout)
	}
	if cmp.Aggregate.Count != 2 || len(cmp.Engineers) != 2 {
		t.Fatalf("unexpected compare count %d", cmp.Aggregate.Count)
	}
	if len(cmp.Aggregate.Series.Overall) != 6 || cmp.Aggregate.Series.Overall[0] == nil {
		t.Fatalf("unexpected overall series %v", cmp.Aggregate.Series.Overall)
	}
	// windows: (4+9*5)/10 = 4.9 and (8+8*5)/9 = 5.333 -> 5.3; mean 5.1
	if got := *cmp.Aggregate.Series.Overall[0]; got != 5.1 {
		t.Fatalf("windows aggregate = %v, want 5.1", got)
	}
	requireAuditEvents(t, root, "export_comparison")
}

func TestCompareNeedsTwoEngineers(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	id := strings.TrimSpace(harness.MustRun(t, binPath, root, "assess", "new", "--name", "Alone"))

	_, stderr, code := harness.Run(t, binPath, root, []string{"--workspace", root, "compare", id})
	if code == 0 {
		t.Fatalf("expected compare to reject a single engineer")
	}
	if !strings.Contains(stderr, "pick at least 2 engineers") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestCompareCountsRepeatedIDOnce(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	id := strings.TrimSpace(harness.MustRun(t, binPath, root, "assess", "new", "--name", "Alone"))

	_, stderr, code := harness.Run(t, binPath, root, []string{"--workspace", root, "compare", id, id, id[:8]})
	if code != 1 {
		t.Fatalf("compare of one engineer listed three times exit code %d, want 1\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "(got 1)") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}
