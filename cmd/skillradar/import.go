package main

import (
	"context"
	"fmt"
	"os"

	"skillradar/internal/assessment"
	"skillradar/internal/importer"
)

func runImport(args []string, workspacePath string) (err error) {
	fs := flagSet("import")
	dryRun := fs.Bool("dry-run", false, "Show what would change without saving")
	paths, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("usage: %s import [--dry-run] FILE...", appName)
	}

	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	for i, p := range paths {
		resolved, err := a.ws.ResolvePath(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		paths[i] = resolved
	}

	if !*dryRun {
		finish := a.track("import", map[string]any{"files": paths})
		defer func() { finish(err) }()
	}

	results, err := importer.ImportFiles(context.Background(), paths, a.cfg.Import.Workers, a.schema, a.now())
	if err != nil {
		return err
	}

	imported, skipped := 0, 0
	for _, res := range results {
		if res.Err != nil {
			skipped++
			a.log.Warn("import file skipped", "path", res.Path, "error", res.Err)
			fmt.Fprintf(os.Stderr, "skipped %s: %v\n", res.Path, res.Err)
			continue
		}
		imp := *res.Import
		if *dryRun {
			if err := previewImport(a, res.Payload, imp); err != nil {
				return err
			}
			imported++
			continue
		}
		a.state.ApplyImport(imp)
		imported++
		if imp.Replaces() {
			fmt.Fprintf(a.out, "restored %s: %d team(s), %d assessment(s)\n", res.Path, len(imp.Teams), len(imp.Assessments))
		} else {
			fmt.Fprintf(a.out, "imported %s (%s): %s\n", res.Path, imp.Variant, imp.Assessments[0].ID)
		}
	}

	if imported == 0 {
		return fmt.Errorf("no files imported (%d skipped)", skipped)
	}
	if *dryRun {
		fmt.Fprintf(a.out, "dry run: %d file(s) readable, %d skipped; nothing saved\n", imported, skipped)
		return nil
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d file(s) imported, %d skipped\n", imported, skipped)
	return nil
}

func previewImport(a *app, p importer.Payload, imp importer.Import) error {
	label := imp.Variant.String()
	if imp.Exported {
		label += ", exported"
	}
	fmt.Fprintf(a.out, "== %s (%s)\n", imp.Source, label)

	if imp.Replaces() {
		fmt.Fprintf(a.out, "would replace the store: %d team(s), %d assessment(s) -> %d team(s), %d assessment(s)\n",
			len(a.state.Teams), len(a.state.Assessments), len(imp.Teams), len(imp.Assessments))
		return nil
	}

	incoming := imp.Assessments[0]
	var stored *assessment.Assessment
	if existing, ok := assessment.Find(a.state.Assessments, incoming.ID); ok {
		stored = &existing
	}
	diff, err := importer.Diff(stored, incoming, imp.Source)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(a.out, "no changes")
	} else {
		fmt.Fprint(a.out, diff)
	}

	if legacy, ok := importer.PenalizedResult(p, a.schema); ok {
		migrated := incoming.Compute(a.schema)
		fmt.Fprintf(a.out, "overall as version 1 (missing answers = 1): %s; after migration: %s\n",
			formatScore(legacy.OverallMean), formatScore(migrated.OverallMean))
	}
	return nil
}
