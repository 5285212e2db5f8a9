package harness

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// EnvBinary points the smoke tests at a prebuilt skillradar binary instead of building one.
const EnvBinary = "SKILLRADAR_TEST_BIN"

const modulePath = "skillradar"

var (
	buildOnce sync.Once
	buildPath string
	buildErr  error

	rootOnce sync.Once
	rootPath string
	rootErr  error
)

// RepoRoot returns the directory holding the skillradar go.mod.
func RepoRoot(t *testing.T) string {
	t.Helper()
	rootOnce.Do(func() {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			rootErr = fmt.Errorf("runtime.Caller failed")
			return
		}
		rootPath, rootErr = findModuleRoot(filepath.Dir(file))
	})
	if rootErr != nil {
		t.Fatalf("resolve repo root: %v", rootErr)
	}
	return rootPath
}

// findModuleRoot walks up from dir to the go.mod that declares the skillradar module.
func findModuleRoot(dir string) (string, error) {
	for {
		if name, err := moduleName(filepath.Join(dir, "go.mod")); err == nil && name == modulePath {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod for module %s above %s", modulePath, dir)
		}
		dir = parent
	}
}

func moduleName(goMod string) (string, error) {
	f, err := os.Open(goMod)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "module "); ok {
			return strings.TrimSpace(name), nil
		}
	}
	return "", fmt.Errorf("%s: no module directive", goMod)
}

// BuildBinary returns the skillradar CLI under test, compiling ./cmd/skillradar once per run
// unless EnvBinary names an existing binary.
func BuildBinary(t *testing.T) string {
	t.Helper()
	root := RepoRoot(t)

	buildOnce.Do(func() {
		if prebuilt := strings.TrimSpace(os.Getenv(EnvBinary)); prebuilt != "" {
			if _, err := os.Stat(prebuilt); err != nil {
				buildErr = fmt.Errorf("%s: %w", EnvBinary, err)
				return
			}
			buildPath = prebuilt
			return
		}

		dir, err := os.MkdirTemp("", "skillradar-bin-")
		if err != nil {
			buildErr = fmt.Errorf("create temp dir: %w", err)
			return
		}
		out := filepath.Join(dir, "skillradar")
		if runtime.GOOS == "windows" {
			out += ".exe"
		}

		cmd := exec.Command("go", "build", "-trimpath", "-o", out, "./cmd/skillradar")
		cmd.Dir = root
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			buildErr = fmt.Errorf("go build ./cmd/skillradar: %w\n%s", err, stderr.String())
			return
		}
		buildPath = out
	})

	if buildErr != nil {
		t.Fatalf("build skillradar binary: %v", buildErr)
	}
	return buildPath
}
