package integration_test

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// auditEvent is one row written by the CLI's command tracking.
type auditEvent struct {
	Type    string
	Payload map[string]any
}

func readAuditTrail(t *testing.T, workspace string) []auditEvent {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(workspace, "audit", "audit.sqlite"))
	if err != nil {
		t.Fatalf("open audit db: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.Query("SELECT type, payload_json FROM events ORDER BY id")
	if err != nil {
		t.Fatalf("query audit events: %v", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []auditEvent
	for rows.Next() {
		var ev auditEvent
		var payload string
		if err := rows.Scan(&ev.Type, &payload); err != nil {
			t.Fatalf("scan audit event: %v", err)
		}
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			t.Fatalf("decode %s payload %q: %v", ev.Type, payload, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate audit events: %v", err)
	}
	return events
}

func lastAuditEvent(t *testing.T, events []auditEvent, eventType string) (auditEvent, bool) {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i], true
		}
	}
	return auditEvent{}, false
}

// requireAuditEvents checks that each command ran to completion: a <command>_started and a
// <command>_finished event for workspace, the latter without an error.
func requireAuditEvents(t *testing.T, workspace string, commands ...string) {
	t.Helper()
	events := readAuditTrail(t, workspace)
	for _, command := range commands {
		if _, ok := lastAuditEvent(t, events, command+"_started"); !ok {
			t.Fatalf("missing audit event %s_started", command)
		}
		finished, ok := lastAuditEvent(t, events, command+"_finished")
		if !ok {
			t.Fatalf("missing audit event %s_finished", command)
		}
		if got := finished.Payload["workspace"]; got != workspace {
			t.Fatalf("%s_finished workspace = %v, want %s", command, got, workspace)
		}
		if msg, failed := finished.Payload["error"]; failed {
			t.Fatalf("%s_finished recorded error %v", command, msg)
		}
	}
}

// requireAuditFailure checks that the last run of command recorded an error.
func requireAuditFailure(t *testing.T, workspace, command string) string {
	t.Helper()
	finished, ok := lastAuditEvent(t, readAuditTrail(t, workspace), command+"_finished")
	if !ok {
		t.Fatalf("missing audit event %s_finished", command)
	}
	msg, _ := finished.Payload["error"].(string)
	if msg == "" {
		t.Fatalf("%s_finished has no error: %v", command, finished.Payload)
	}
	return msg
}
