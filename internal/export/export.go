package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"skillradar/internal/assessment"
	"skillradar/internal/schema"
	"skillradar/internal/scoring"
	"skillradar/internal/team"
)

// BackupVersion is the version of the backup envelope.
const BackupVersion = 1

// ComparisonFileName is the default name of a comparison chart.
const ComparisonFileName = "comparison_radar.png"

// AssessmentExport is a self-describing single-assessment file: the record, its computed
// score and the questionnaire it was scored against.
type AssessmentExport struct {
	assessment.Assessment
	Computed scoring.Result `json:"computed"`
	Schema   *schema.Schema `json:"schema"`
}

// Backup is a full-store snapshot.
type Backup struct {
	Version     int                     `json:"version"`
	ExportedAt  time.Time               `json:"exportedAt"`
	Teams       []team.Team             `json:"teams"`
	Assessments []assessment.Assessment `json:"assessments"`
}

// NewAssessmentExport scores a and bundles it with s.
func NewAssessmentExport(a assessment.Assessment, s *schema.Schema) AssessmentExport {
	return AssessmentExport{
		Assessment: a,
		Computed:   a.Compute(s),
		Schema:     s,
	}
}

// NewBackup snapshots the full store.
func NewBackup(teams []team.Team, assessments []assessment.Assessment, now time.Time) Backup {
	if teams == nil {
		teams = []team.Team{}
	}
	if assessments == nil {
		assessments = []assessment.Assessment{}
	}
	return Backup{
		Version:     BackupVersion,
		ExportedAt:  now.UTC(),
		Teams:       teams,
		Assessments: assessments,
	}
}

var unsafeRun = regexp.MustCompile(`[\s/\\]+`)

// FileStem turns an engineer name into a file name prefix.
func FileStem(name string) string {
	stem := unsafeRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if stem == "" {
		return "engineer"
	}
	return stem
}

// AssessmentFileName is the default JSON export name for a.
func AssessmentFileName(a assessment.Assessment) string {
	return FileStem(a.Engineer.Name) + "_assessment.json"
}

// RadarFileName is the default chart name for a.
func RadarFileName(a assessment.Assessment) string {
	return FileStem(a.Engineer.Name) + "_radar.png"
}

// BackupFileName is the default backup name for the given day.
func BackupFileName(now time.Time) string {
	return "skillradar_backup_" + now.UTC().Format("2006-01-02") + ".json"
}

// WriteJSON writes v as indented JSON with a trailing newline.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	return WriteFile(path, data)
}

// WriteFile replaces path atomically via a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("export path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
