package main

import (
	"fmt"
	"strings"

	"skillradar/internal/team"
)

func runTeam(args []string, workspacePath string) error {
	if len(args) == 0 || isHelp(args[0]) {
		return fmt.Errorf("%s team: missing subcommand (create, rename, delete, list)", appName)
	}

	switch args[0] {
	case "create":
		return runTeamCreate(args[1:], workspacePath)
	case "rename":
		return runTeamRename(args[1:], workspacePath)
	case "delete":
		return runTeamDelete(args[1:], workspacePath)
	case "list":
		return runTeamList(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s team: unknown subcommand %q", appName, args[0])
	}
}

func runTeamCreate(args []string, workspacePath string) (err error) {
	fs := flagSet("team create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	finish := a.track("team_create", map[string]any{"name": name})
	defer func() { finish(err) }()

	teams, created, err := team.Create(a.state.Teams, name, a.now())
	if err != nil {
		return err
	}
	a.state.Teams = teams
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, created.ID)
	return nil
}

func runTeamRename(args []string, workspacePath string) (err error) {
	fs := flagSet("team rename")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: %s team rename <team> <new name>", appName)
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := team.Resolve(a.state.Teams, fs.Arg(0))
	if err != nil {
		return err
	}
	name := strings.Join(fs.Args()[1:], " ")

	finish := a.track("team_rename", map[string]any{"id": t.ID, "name": name})
	defer func() { finish(err) }()

	teams, err := team.Rename(a.state.Teams, t.ID, name)
	if err != nil {
		return err
	}
	a.state.Teams = teams
	if err := a.save(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Renamed %s to %s\n", t.ID, strings.TrimSpace(name))
	return nil
}

func runTeamDelete(args []string, workspacePath string) (err error) {
	fs := flagSet("team delete")
	cascade := fs.Bool("cascade", false, "Also delete the team's assessments")
	unassign := fs.Bool("unassign", false, "Keep the team's assessments without a team")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("usage: %s team delete <team> --cascade|--unassign", appName)
	}
	if *cascade == *unassign {
		return fmt.Errorf("choose exactly one of --cascade or --unassign")
	}
	policy := team.Unassign
	if *cascade {
		policy = team.Cascade
	}

	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := team.Resolve(a.state.Teams, positional[0])
	if err != nil {
		return err
	}

	finish := a.track("team_delete", map[string]any{"id": t.ID, "policy": policy.String()})
	defer func() { finish(err) }()

	affected, err := a.state.DeleteTeam(t.ID, policy, a.now())
	if err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	if policy == team.Cascade {
		fmt.Fprintf(a.out, "Deleted team %s and %d assessment(s)\n", t.Name, affected)
	} else {
		fmt.Fprintf(a.out, "Deleted team %s; unassigned %d assessment(s)\n", t.Name, affected)
	}
	return nil
}

func runTeamList(args []string, workspacePath string) error {
	fs := flagSet("team list")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := openApp(workspacePath)
	if err != nil {
		return err
	}
	defer a.Close()

	type row struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Members int    `json:"members"`
	}
	rows := make([]row, 0, len(a.state.Teams))
	for _, t := range a.state.Teams {
		rows = append(rows, row{ID: t.ID, Name: t.Name, Members: team.CountMembers(a.state.Assessments, t.ID)})
	}
	if *asJSON {
		return writeJSON(a.out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No teams.")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(a.out, "%s  %-24s %d engineer(s)\n", shortID(r.ID), r.Name, r.Members)
	}
	return nil
}
