package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvRoot names the environment variable consulted when no --workspace flag is given.
const EnvRoot = "SKILLRADAR_WORKSPACE"

// ConfigFileName is the workspace configuration file.
const ConfigFileName = "skillradar.yml"

// Workspace defines workspace-relative paths for skillradar data.
type Workspace struct {
	Root        string
	DataDir     string
	DataDBPath  string
	ExportsDir  string
	AuditDir    string
	AuditDBPath string
	ConfigPath  string
}

// Resolve expands and validates the workspace root, ensuring it exists.
func Resolve(root string) (*Workspace, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", abs)
	}
	return newWorkspace(abs), nil
}

// ResolveRoot resolves the workspace root without requiring it to exist.
func ResolveRoot(root string) (string, error) {
	return resolveRoot(root)
}

// RootFromEnv returns flagValue, or the EnvRoot variable when the flag is empty.
func RootFromEnv(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return os.Getenv(EnvRoot)
}

// EnsureDirs creates the data, exports and audit directories.
func (w *Workspace) EnsureDirs() error {
	if w == nil {
		return fmt.Errorf("workspace is nil")
	}
	for _, dir := range []string{w.DataDir, w.ExportsDir, w.AuditDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// SetExportsDir points exports at dir, resolved against the workspace root.
func (w *Workspace) SetExportsDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	resolved, err := w.ResolvePath(dir)
	if err != nil {
		return fmt.Errorf("resolve exports dir: %w", err)
	}
	w.ExportsDir = resolved
	return nil
}

// ResolvePath returns an absolute path, resolving relative paths from the workspace root.
func (w *Workspace) ResolvePath(path string) (string, error) {
	if w == nil {
		return "", fmt.Errorf("workspace is nil")
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Abs(filepath.Join(w.Root, expanded))
}

// ExportPath resolves an --out value. An empty value places name in the exports dir.
func (w *Workspace) ExportPath(out, name string) (string, error) {
	if strings.TrimSpace(out) == "" {
		return filepath.Join(w.ExportsDir, name), nil
	}
	return w.ResolvePath(out)
}

func newWorkspace(root string) *Workspace {
	return &Workspace{
		Root:        root,
		DataDir:     filepath.Join(root, "data"),
		DataDBPath:  filepath.Join(root, "data", "skillradar.sqlite"),
		ExportsDir:  filepath.Join(root, "exports"),
		AuditDir:    filepath.Join(root, "audit"),
		AuditDBPath: filepath.Join(root, "audit", "audit.sqlite"),
		ConfigPath:  filepath.Join(root, ConfigFileName),
	}
}

func resolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("workspace root is required (use --workspace or %s)", EnvRoot)
	}
	expanded, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion: %s", path)
}
