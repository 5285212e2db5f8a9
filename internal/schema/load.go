package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yml
var embeddedQuestions []byte

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default returns the built-in questionnaire. It panics if the embedded file is invalid,
// which is covered by tests.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := Parse(embeddedQuestions, "questions.yml")
		if err != nil {
			panic(fmt.Sprintf("schema: embedded questionnaire is invalid: %v", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

type rawSchema struct {
	Axes []rawAxis `yaml:"axes"`
}

type rawAxis struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Subtitle  string        `yaml:"subtitle"`
	Questions []rawQuestion `yaml:"questions"`
}

type rawQuestion struct {
	ID   string `yaml:"id"`
	Tag  string `yaml:"tag"`
	Text string `yaml:"text"`
}

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Parse unmarshals and validates a YAML questionnaire.
func Parse(data []byte, source string) (*Schema, error) {
	var raw rawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ValidationErrors{{
			File:    source,
			Field:   "yaml",
			Message: err.Error(),
		}}
	}
	return validateRaw(raw, source)
}

func validateRaw(raw rawSchema, source string) (*Schema, error) {
	var errs ValidationErrors

	if len(raw.Axes) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   "axes",
			Message: "must contain at least one axis",
		})
	}

	s := &Schema{questions: make(map[string]questionRef)}
	axisIDs := make(map[string]struct{})

	for axisIdx, ra := range raw.Axes {
		axisPath := fmt.Sprintf("axes[%d]", axisIdx)
		axis := Axis{
			ID:       strings.TrimSpace(ra.ID),
			Name:     strings.TrimSpace(ra.Name),
			Subtitle: strings.TrimSpace(ra.Subtitle),
		}
		if axis.ID == "" {
			errs = append(errs, ValidationError{File: source, Field: axisPath + ".id", Message: "id is required"})
		} else if _, exists := axisIDs[axis.ID]; exists {
			errs = append(errs, ValidationError{File: source, Field: axisPath + ".id", Message: fmt.Sprintf("duplicate axis id %q", axis.ID)})
		} else {
			axisIDs[axis.ID] = struct{}{}
		}
		if axis.Name == "" {
			errs = append(errs, ValidationError{File: source, Field: axisPath + ".name", Message: "name is required"})
		}
		if len(ra.Questions) != QuestionsPerAxis {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   axisPath + ".questions",
				Message: fmt.Sprintf("must contain exactly %d questions, got %d", QuestionsPerAxis, len(ra.Questions)),
			})
		}

		for qIdx, rq := range ra.Questions {
			qPath := fmt.Sprintf("%s.questions[%d]", axisPath, qIdx)
			q := Question{
				ID:   strings.TrimSpace(rq.ID),
				Text: strings.TrimSpace(rq.Text),
			}
			tag, tagErr := ParseTag(strings.TrimSpace(rq.Tag))
			if tagErr != nil {
				errs = append(errs, ValidationError{File: source, Field: qPath + ".tag", Message: tagErr.Error()})
			}
			q.Tag = tag
			if q.Text == "" {
				errs = append(errs, ValidationError{File: source, Field: qPath + ".text", Message: "text is required"})
			}
			if q.ID == "" {
				errs = append(errs, ValidationError{File: source, Field: qPath + ".id", Message: "id is required"})
			} else if prev, exists := s.questions[q.ID]; exists {
				errs = append(errs, ValidationError{
					File:    source,
					Field:   qPath + ".id",
					Message: fmt.Sprintf("question id %q already defined in axis %s", q.ID, raw.Axes[prev.axis].ID),
				})
			} else {
				s.questions[q.ID] = questionRef{question: q, axis: axisIdx}
			}
			axis.Questions = append(axis.Questions, q)
		}
		s.Axes = append(s.Axes, axis)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}
