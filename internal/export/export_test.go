package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"skillradar/internal/assessment"
	"skillradar/internal/importer"
	"skillradar/internal/schema"
	"skillradar/internal/team"
)

var testNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func TestFileNames(t *testing.T) {
	cases := map[string]string{
		"Ada  Lovelace": "Ada_Lovelace",
		"   ":           "engineer",
		"":              "engineer",
		"a/b c":         "a_b_c",
	}
	for in, want := range cases {
		if got := FileStem(in); got != want {
			t.Fatalf("FileStem(%q) = %q, want %q", in, got, want)
		}
	}
	a := assessment.NewBlank(schema.Default(), testNow)
	a.Engineer.Name = "Ada Lovelace"
	if got, want := AssessmentFileName(a), "Ada_Lovelace_assessment.json"; got != want {
		t.Fatalf("name = %q, want %q", got, want)
	}
	if got, want := RadarFileName(a), "Ada_Lovelace_radar.png"; got != want {
		t.Fatalf("name = %q, want %q", got, want)
	}
	if got, want := BackupFileName(testNow), "skillradar_backup_2026-05-06.json"; got != want {
		t.Fatalf("name = %q, want %q", got, want)
	}
}

func TestAssessmentExportShape(t *testing.T) {
	s := schema.Default()
	a := assessment.NewBlank(s, testNow)
	path := filepath.Join(t.TempDir(), "out", AssessmentFileName(a))

	if err := WriteJSON(path, NewAssessmentExport(a, s)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if data[len(data)-1] != '\n' {
		t.Fatalf("export should end with a newline")
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "version", "engineer", "answers", "computed", "schema"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("export missing %q", key)
		}
	}

	var shape struct {
		Computed struct {
			OverallMean *float64 `json:"overallMean"`
		} `json:"computed"`
		Schema struct {
			Axes []struct {
				ID        string `json:"id"`
				Questions []struct {
					ID  string `json:"id"`
					Tag string `json:"tag"`
				} `json:"questions"`
			} `json:"axes"`
		} `json:"schema"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		t.Fatal(err)
	}
	if shape.Computed.OverallMean == nil || *shape.Computed.OverallMean != 5 {
		t.Fatalf("computed.overallMean = %v, want 5", shape.Computed.OverallMean)
	}
	if len(shape.Schema.Axes) != 6 || shape.Schema.Axes[5].Questions[9].Tag != "EN" {
		t.Fatalf("schema not embedded: %+v", shape.Schema.Axes)
	}
}

func TestExportReimportRoundTrip(t *testing.T) {
	s := schema.Default()
	a := assessment.NewBlank(s, testNow)
	a, err := assessment.MarkNA(a, s, "app_q4", testNow)
	if err != nil {
		t.Fatal(err)
	}
	a, err = assessment.SetAnswer(a, s, "app_q5", 9, testNow)
	if err != nil {
		t.Fatal(err)
	}
	a.Engineer.TeamID = "t1"

	data, err := json.Marshal(NewAssessmentExport(a, s))
	if err != nil {
		t.Fatal(err)
	}
	p, err := importer.Decode(data, "export.json")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Variant != importer.VariantV2 || !p.Exported {
		t.Fatalf("variant = %v exported = %v", p.Variant, p.Exported)
	}
	imp, err := importer.Reconcile(p, s, testNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	got := imp.Assessments[0]
	if got.ID != a.ID || got.Engineer.TeamID != "t1" {
		t.Fatalf("round trip lost identity: %+v", got.Engineer)
	}
	if got.Answers["app_q4"] != nil || *got.Answers["app_q5"] != 9 {
		t.Fatalf("round trip lost answers")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	s := schema.Default()
	teams, red, err := team.Create(nil, "Red", testNow)
	if err != nil {
		t.Fatal(err)
	}
	a := assessment.NewBlank(s, testNow)
	a.Engineer.TeamID = red.ID
	path := filepath.Join(t.TempDir(), BackupFileName(testNow))

	if err := WriteJSON(path, NewBackup(teams, []assessment.Assessment{a}, testNow)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	_, imp, err := importer.ReadFile(path, s, testNow)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !imp.Replaces() || len(imp.Teams) != 1 || len(imp.Assessments) != 1 {
		t.Fatalf("backup import = %+v", imp)
	}
	if imp.Assessments[0].Engineer.TeamID != red.ID {
		t.Fatalf("team reference lost")
	}

	empty := NewBackup(nil, nil, testNow)
	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatal(err)
	}
	p, err := importer.Decode(data, "empty.json")
	if err != nil || p.Variant != importer.VariantBackup {
		t.Fatalf("empty backup should still be recognized: %v %v", p.Variant, err)
	}
}
