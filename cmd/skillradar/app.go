package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"skillradar/internal/audit"
	"skillradar/internal/config"
	"skillradar/internal/logger"
	"skillradar/internal/schema"
	"skillradar/internal/state"
	"skillradar/internal/store"
	"skillradar/internal/workspace"
)

// app bundles everything a command needs once the workspace is resolved.
type app struct {
	ws     *workspace.Workspace
	cfg    config.Config
	log    *logger.Logger
	store  *store.Store
	state  *state.State
	audit  *audit.Logger
	schema *schema.Schema
	out    io.Writer
	now    func() time.Time
}

func openApp(workspacePath string) (*app, error) {
	ws, err := workspace.Resolve(workspace.RootFromEnv(workspacePath))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(ws.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := ws.SetExportsDir(cfg.ExportsDir); err != nil {
		return nil, err
	}
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ws.DataDBPath, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	s := schema.Default()
	return &app{
		ws:     ws,
		cfg:    cfg,
		log:    log,
		store:  st,
		state:  state.Load(st, s),
		audit:  audit.NewLogger(ws.AuditDBPath),
		schema: s,
		out:    os.Stdout,
		now:    time.Now,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store failed", "error", err)
	}
	a.log.Sync()
}

func (a *app) save() error {
	if err := a.state.Save(a.store); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// track records <name>_started and returns a func recording <name>_finished with the outcome.
func (a *app) track(name string, payload map[string]any) func(error) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["workspace"] = a.ws.Root
	if err := a.audit.LogEvent(name+"_started", payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
	return func(runErr error) {
		finish := make(map[string]any, len(payload)+1)
		for k, v := range payload {
			finish[k] = v
		}
		if runErr != nil {
			finish["error"] = runErr.Error()
		}
		if err := a.audit.LogEvent(name+"_finished", finish); err != nil {
			fmt.Fprintln(os.Stderr, "audit log failed:", err)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func runInit(args []string, workspacePath string) error {
	fs := flagSet("init")
	if err := fs.Parse(args); err != nil {
		return err
	}
	workspacePath = workspace.RootFromEnv(workspacePath)
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(workspacePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}
	if err := writeFileIfMissing(ws.ConfigPath, config.Template); err != nil {
		return err
	}

	a, err := openApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	finish := a.track("workspace_init", nil)
	err = a.save()
	finish(err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Initialized workspace: %s\n", ws.Root)
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  %s --workspace %s assess new --name \"Jane Doe\"\n", appName, ws.Root)
	fmt.Fprintf(a.out, "  %s --workspace %s import <file.json>...\n", appName, ws.Root)
	return nil
}

func runAudit(args []string, workspacePath string) error {
	fs := flagSet("audit")
	limit := fs.Int("limit", 20, "Number of events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.audit.Recent(*limit)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Fprintf(a.out, "%s  %-28s %s  %s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Actor, ev.PayloadJSON)
	}
	return nil
}

func writeFileIfMissing(path string, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
