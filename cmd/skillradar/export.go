package main

import (
	"fmt"

	"skillradar/internal/chart"
	"skillradar/internal/export"
)

func runExport(args []string, workspacePath string) error {
	if len(args) == 0 || isHelp(args[0]) {
		return fmt.Errorf("%s export: missing subcommand (assessment, backup, png)", appName)
	}

	switch args[0] {
	case "assessment":
		return runExportAssessment(args[1:], workspacePath)
	case "backup":
		return runExportBackup(args[1:], workspacePath)
	case "png":
		return runExportPNG(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s export: unknown subcommand %q", appName, args[0])
	}
}

func runExportAssessment(args []string, workspacePath string) (err error) {
	fs := flagSet("export assessment")
	out := fs.String("out", "", "Output file (default: <exports>/<name>_assessment.json)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.state.Resolve(firstOr(positional, ""))
	if err != nil {
		return err
	}
	path, err := a.ws.ExportPath(*out, export.AssessmentFileName(rec))
	if err != nil {
		return err
	}

	finish := a.track("export_assessment", map[string]any{"id": rec.ID, "path": path})
	defer func() { finish(err) }()

	if err := export.WriteJSON(path, export.NewAssessmentExport(rec, a.schema)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}

func runExportBackup(args []string, workspacePath string) (err error) {
	fs := flagSet("export backup")
	out := fs.String("out", "", "Output file (default: <exports>/skillradar_backup_<date>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.now()
	path, err := a.ws.ExportPath(*out, export.BackupFileName(now))
	if err != nil {
		return err
	}

	finish := a.track("export_backup", map[string]any{
		"path":        path,
		"teams":       len(a.state.Teams),
		"assessments": len(a.state.Assessments),
	})
	defer func() { finish(err) }()

	if err := export.WriteJSON(path, export.NewBackup(a.state.Teams, a.state.Assessments, now)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}

func runExportPNG(args []string, workspacePath string) (err error) {
	fs := flagSet("export png")
	out := fs.String("out", "", "Output file (default: <exports>/<name>_radar.png)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.state.Resolve(firstOr(positional, ""))
	if err != nil {
		return err
	}
	path, err := a.ws.ExportPath(*out, export.RadarFileName(rec))
	if err != nil {
		return err
	}

	finish := a.track("export_png", map[string]any{"id": rec.ID, "path": path})
	defer func() { finish(err) }()

	data, err := chart.RenderResult(rec.Compute(a.schema), chart.Options{Size: a.cfg.Chart.Size, Title: rec.DisplayName()})
	if err != nil {
		return err
	}
	if err := export.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}
