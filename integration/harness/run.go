package harness

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Run executes the CLI in the provided working directory.
func Run(t *testing.T, binPath, workDir string, args []string) (string, string, int) {
	t.Helper()
	return run(t, binPath, workDir, args, nil)
}

// RunWithEnv executes the CLI with environment overrides.
func RunWithEnv(t *testing.T, binPath, workDir string, args []string, env map[string]string) (string, string, int) {
	t.Helper()
	return run(t, binPath, workDir, args, env)
}

// MustRun executes the CLI against workspace and fails the test on a non-zero exit.
func MustRun(t *testing.T, binPath, workspace string, args ...string) string {
	t.Helper()
	full := append([]string{"--workspace", workspace}, args...)
	stdout, stderr, code := run(t, binPath, workspace, full, nil)
	if code != 0 {
		t.Fatalf("skillradar %s exit code %d\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), code, stdout, stderr)
	}
	return stdout
}

// InitWorkspace runs `skillradar init` in a fresh temp directory and returns its path.
func InitWorkspace(t *testing.T, binPath string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "workspace")
	stdout, stderr, code := run(t, binPath, t.TempDir(), []string{"init", "--workspace", root}, nil)
	if code != 0 {
		t.Fatalf("skillradar init exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	return root
}

func run(t *testing.T, binPath, workDir string, args []string, env map[string]string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binPath, args...)
	cmd.Dir = workDir
	if len(env) > 0 {
		cmd.Env = mergeEnv(env)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			t.Fatalf("run %s: %v", binPath, err)
		}
	}

	return stdout.String(), stderr.String(), exitCode
}

func mergeEnv(overrides map[string]string) []string {
	env := make(map[string]string, len(overrides))
	for _, entry := range os.Environ() {
		key, val, _ := strings.Cut(entry, "=")
		env[key] = val
	}
	for k, v := range overrides {
		env[k] = v
	}

	merged := make([]string, 0, len(env))
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	sort.Strings(merged)
	return merged
}
