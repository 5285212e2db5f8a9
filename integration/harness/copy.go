package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// StagingDir is where StageFixtures places import files inside a workspace.
const StagingDir = "incoming"

// FixturePath returns the path of a file under integration/fixtures.
func FixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	return filepath.Join(append([]string{RepoRoot(t), "integration", "fixtures"}, parts...)...)
}

// StageFixtures copies the JSON files of fixtures/<set> into <workspace>/incoming and returns
// their workspace-relative paths keyed by file name.
func StageFixtures(t *testing.T, workspace, set string) map[string]string {
	t.Helper()
	staged, err := stageJSON(FixturePath(t, set), filepath.Join(workspace, StagingDir))
	if err != nil {
		t.Fatalf("stage fixtures %s: %v", set, err)
	}
	return staged
}

func stageJSON(src, dst string) (map[string]string, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, err
	}

	staged := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if !entry.Type().IsRegular() {
			return nil, fmt.Errorf("fixture is not a regular file: %s", name)
		}
		data, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dst, name), data, 0o644); err != nil {
			return nil, err
		}
		staged[name] = filepath.Join(StagingDir, name)
	}
	if len(staged) == 0 {
		return nil, fmt.Errorf("no JSON fixtures in %s", src)
	}
	return staged, nil
}
