package integration_test

import (
	"encoding/json"
	"strings"
	"testing"

	"skillradar/integration/harness"
)

func stageImports(t *testing.T, root string) {
	t.Helper()
	staged := harness.StageFixtures(t, root, "imports")
	for _, name := range []string{"legacy_v1.json", "engineer_v2.json", "backup.json", "broken.json"} {
		if _, ok := staged[name]; !ok {
			t.Fatalf("fixture %s not staged", name)
		}
	}
}

type listedAssessment struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Team    string `json:"team"`
	Current bool   `json:"current"`
}

func listAssessments(t *testing.T, binPath, root string, args ...string) []listedAssessment {
	t.Helper()
	stdout := harness.MustRun(t, binPath, root, append([]string{"assess", "list", "--json"}, args...)...)
	var rows []listedAssessment
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("decode list: %v\n%s", err, stdout)
	}
	return rows
}

func TestImportSkipsBrokenFiles(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	stageImports(t, root)

	stdout, stderr, code := harness.Run(t, binPath, root, []string{
		"--workspace", root, "import", "incoming/legacy_v1.json", "incoming/broken.json",
	})
	if code != 0 {
		t.Fatalf("import exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "(assessment-v1): legacy-0001") {
		t.Fatalf("expected legacy import line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1 file(s) imported, 1 skipped") {
		t.Fatalf("expected summary line:\n%s", stdout)
	}
	if !strings.Contains(stderr, "skipped") || !strings.Contains(stderr, "broken.json") {
		t.Fatalf("expected broken file to be reported:\n%s", stderr)
	}

	var shown struct {
		Assessment struct {
			Version int                 `json:"version"`
			Answers map[string]*float64 `json:"answers"`
		} `json:"assessment"`
	}
	out := harness.MustRun(t, binPath, root, "assess", "show", "legacy-0001", "--json")
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode show: %v\n%s", err, out)
	}
	if shown.Assessment.Version != 2 {
		t.Fatalf("imported version = %d, want 2", shown.Assessment.Version)
	}
	want := map[string]float64{"win_q1": 8, "net_q1": 4, "net_q2": 1, "lin_q2": 5}
	for qid, v := range want {
		got := shown.Assessment.Answers[qid]
		if got == nil || *got != v {
			t.Fatalf("%s = %v, want %v", qid, got, v)
		}
	}
	if len(shown.Assessment.Answers) != 60 {
		t.Fatalf("expected every question answered, got %d", len(shown.Assessment.Answers))
	}

	requireAuditEvents(t, root, "import")
}

func TestImportFailsWhenNothingReadable(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	stageImports(t, root)

	_, stderr, code := harness.Run(t, binPath, root, []string{"--workspace", root, "import", "incoming/broken.json"})
	if code == 0 {
		t.Fatalf("expected failure when every file is broken")
	}
	if !strings.Contains(stderr, "no files imported") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestImportDryRunShowsDiff(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	stageImports(t, root)

	stdout := harness.MustRun(t, binPath, root, "import", "--dry-run", "incoming/engineer_v2.json", "incoming/legacy_v1.json")
	for _, want := range []string{"assessment-v2", "+++ import/", "\"v2-0001\"", "overall as version 1", "nothing saved"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("dry run output missing %q:\n%s", want, stdout)
		}
	}
	if rows := listAssessments(t, binPath, root); len(rows) != 0 {
		t.Fatalf("dry run should not save, got %d assessments", len(rows))
	}
}

func TestImportBackupReplacesStore(t *testing.T) {
	binPath := harness.BuildBinary(t)
	root := harness.InitWorkspace(t, binPath)
	stageImports(t, root)

	harness.MustRun(t, binPath, root, "assess", "new", "--name", "Before Restore")
	stdout := harness.MustRun(t, binPath, root, "import", "incoming/backup.json")
	if !strings.Contains(stdout, "restored") || !strings.Contains(stdout, "1 team(s), 2 assessment(s)") {
		t.Fatalf("unexpected restore output:\n%s", stdout)
	}

	rows := listAssessments(t, binPath, root)
	if len(rows) != 2 {
		t.Fatalf("expected 2 assessments after restore, got %+v", rows)
	}
	for _, r := range rows {
		if r.Team != "Blue" {
			t.Fatalf("%s team = %q, want Blue", r.ID, r.Team)
		}
		if r.Name == "Before Restore" {
			t.Fatalf("restore should replace existing assessments")
		}
	}

	var teams []struct {
		Name    string `json:"name"`
		Members int    `json:"members"`
	}
	out := harness.MustRun(t, binPath, root, "team", "list", "--json")
	if err := json.Unmarshal([]byte(out), &teams); err != nil {
		t.Fatalf("decode teams: %v\n%s", err, out)
	}
	if len(teams) != 1 || teams[0].Name != "Blue" || teams[0].Members != 2 {
		t.Fatalf("unexpected teams %+v", teams)
	}
}
