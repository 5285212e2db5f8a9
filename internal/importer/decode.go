package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnrecognizedPayload is returned for JSON that is neither a backup nor an assessment.
var ErrUnrecognizedPayload = errors.New("unrecognized import payload")

// Variant is the shape an import file was recognized as.
type Variant int

const (
	// VariantV1 is an assessment without N/A answers or a team reference.
	VariantV1 Variant = iota + 1
	// VariantV2 is an assessment with N/A answers and an optional team reference.
	VariantV2
	// VariantBackup is a full-store snapshot of teams and assessments.
	VariantBackup
)

func (v Variant) String() string {
	switch v {
	case VariantV1:
		return "assessment-v1"
	case VariantV2:
		return "assessment-v2"
	case VariantBackup:
		return "backup"
	}
	return "unknown"
}

type answerKind int

const (
	answerNumber answerKind = iota
	answerNull
	answerInvalid
)

type rawAnswer struct {
	kind  answerKind
	value float64
}

type rawEngineer struct {
	fields map[string]json.RawMessage
}

type rawRecord struct {
	id        string
	version   *float64
	createdAt string
	updatedAt string
	engineer  *rawEngineer
	notes     *string
	answers   map[string]rawAnswer
	exported  bool
}

type rawTeam struct {
	id        string
	name      string
	createdAt string
}

// Payload is a decoded import file, prior to reconciliation.
type Payload struct {
	Source   string
	Variant  Variant
	Exported bool

	record *rawRecord
	teams  []rawTeam
	items  []*rawRecord
}

// Decode recognizes the shape of an import file.
func Decode(data []byte, source string) (Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%s: empty file: %w", source, ErrUnrecognizedPayload)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return Payload{}, fmt.Errorf("%s: invalid JSON at offset %d: %w", source, syntaxErr.Offset, err)
		}
		return Payload{}, fmt.Errorf("%s: expected a JSON object: %w", source, ErrUnrecognizedPayload)
	}

	if isArray(top["teams"]) && isArray(top["assessments"]) {
		return decodeBackup(top, source)
	}

	if !hasAny(top, "id", "answers", "engineer") {
		return Payload{}, fmt.Errorf("%s: no teams/assessments arrays and no assessment fields: %w", source, ErrUnrecognizedPayload)
	}
	rec := decodeRecord(top)
	return Payload{
		Source:   source,
		Variant:  detectVariant(rec),
		Exported: rec.exported,
		record:   rec,
	}, nil
}

func decodeBackup(top map[string]json.RawMessage, source string) (Payload, error) {
	var teams []json.RawMessage
	if err := json.Unmarshal(top["teams"], &teams); err != nil {
		return Payload{}, fmt.Errorf("%s: teams: %w", source, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(top["assessments"], &items); err != nil {
		return Payload{}, fmt.Errorf("%s: assessments: %w", source, err)
	}

	p := Payload{Source: source, Variant: VariantBackup}
	for _, raw := range teams {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		p.teams = append(p.teams, rawTeam{
			id:        stringField(fields, "id"),
			name:      stringField(fields, "name"),
			createdAt: stringField(fields, "createdAt"),
		})
	}
	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		p.items = append(p.items, decodeRecord(fields))
	}
	return p, nil
}

func decodeRecord(fields map[string]json.RawMessage) *rawRecord {
	rec := &rawRecord{
		id:        strings.TrimSpace(stringField(fields, "id")),
		createdAt: stringField(fields, "createdAt"),
		updatedAt: stringField(fields, "updatedAt"),
		answers:   make(map[string]rawAnswer),
	}
	if v, ok := numberField(fields, "version"); ok {
		rec.version = &v
	}
	if raw, ok := fields["engineer"]; ok {
		var eng map[string]json.RawMessage
		if err := json.Unmarshal(raw, &eng); err == nil && eng != nil {
			rec.engineer = &rawEngineer{fields: eng}
		}
	}
	if raw, ok := fields["notes"]; ok {
		var notes string
		if err := json.Unmarshal(raw, &notes); err == nil {
			rec.notes = &notes
		}
	}
	if raw, ok := fields["answers"]; ok {
		var answers map[string]json.RawMessage
		if err := json.Unmarshal(raw, &answers); err == nil {
			for qid, v := range answers {
				rec.answers[qid] = decodeAnswer(v)
			}
		}
	}
	_, hasComputed := fields["computed"]
	_, hasSchema := fields["schema"]
	rec.exported = hasComputed || hasSchema
	return rec
}

// decodeAnswer accepts numbers, null and numeric strings. Numeric strings are rounded.
func decodeAnswer(raw json.RawMessage) rawAnswer {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return rawAnswer{kind: answerNull}
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return rawAnswer{kind: answerNumber, value: n}
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return rawAnswer{kind: answerNumber, value: math.Round(f)}
		}
	}
	return rawAnswer{kind: answerInvalid}
}

// detectVariant uses the version field when present. Without one, a team reference or an
// N/A answer can only come from a version 2 record.
func detectVariant(rec *rawRecord) Variant {
	if rec.version != nil {
		if *rec.version >= 2 {
			return VariantV2
		}
		return VariantV1
	}
	if rec.engineer != nil {
		if _, ok := rec.engineer.fields["teamId"]; ok {
			return VariantV2
		}
	}
	for _, a := range rec.answers {
		if a.kind == answerNull {
			return VariantV2
		}
	}
	return VariantV1
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func hasAny(fields map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func stringList(fields map[string]json.RawMessage, key string) ([]string, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, true
}
