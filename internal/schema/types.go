package schema

import "fmt"

// QuestionsPerAxis is the fixed number of questions in every axis.
const QuestionsPerAxis = 10

// Tag is a cross-cutting slice category attached to a single question.
type Tag string

const (
	TagScenario Tag = "S"
	TagSOC      Tag = "SOC"
	TagPentest  Tag = "PT"
	TagTeam     Tag = "TEAM"
	TagComms    Tag = "COMMS"
	TagEnglish  Tag = "EN"
)

// Tags lists every tag in overlay order.
var Tags = []Tag{TagScenario, TagSOC, TagPentest, TagTeam, TagComms, TagEnglish}

var tagLabels = map[Tag]string{
	TagScenario: "Scenario",
	TagSOC:      "SOC",
	TagPentest:  "Pentest",
	TagTeam:     "Team",
	TagComms:    "Comms",
	TagEnglish:  "English",
}

// Label returns the human-readable name of the tag.
func (t Tag) Label() string {
	if l, ok := tagLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t Tag) String() string { return string(t) }

// ParseTag validates a raw tag value.
func ParseTag(value string) (Tag, error) {
	t := Tag(value)
	if _, ok := tagLabels[t]; !ok {
		return t, fmt.Errorf("invalid tag %q (expected S, SOC, PT, TEAM, COMMS or EN)", value)
	}
	return t, nil
}

// Question is a single scored prompt.
type Question struct {
	ID   string `json:"id"`
	Tag  Tag    `json:"tag"`
	Text string `json:"text"`
}

// Axis groups the questions of one competency category.
type Axis struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Questions []Question `json:"questions"`
}

// HasTag reports whether any question of the axis carries tag.
func (a Axis) HasTag(tag Tag) bool {
	for _, q := range a.Questions {
		if q.Tag == tag {
			return true
		}
	}
	return false
}

// Schema is the immutable questionnaire. Axis order is significant.
type Schema struct {
	Axes []Axis `json:"axes"`

	questions map[string]questionRef
}

type questionRef struct {
	question Question
	axis     int
}

// Question looks up a question and the axis that owns it.
func (s *Schema) Question(id string) (Question, Axis, bool) {
	if s == nil {
		return Question{}, Axis{}, false
	}
	ref, ok := s.questions[id]
	if !ok {
		return Question{}, Axis{}, false
	}
	return ref.question, s.Axes[ref.axis], true
}

// Axis returns the axis with the given id.
func (s *Schema) Axis(id string) (Axis, bool) {
	for _, a := range s.Axes {
		if a.ID == id {
			return a, true
		}
	}
	return Axis{}, false
}

// QuestionIDs returns every question id in schema order.
func (s *Schema) QuestionIDs() []string {
	ids := make([]string, 0, len(s.questions))
	for _, a := range s.Axes {
		for _, q := range a.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// QuestionCount returns the total number of questions.
func (s *Schema) QuestionCount() int {
	return len(s.questions)
}

// Labels returns the axis display names in schema order.
func (s *Schema) Labels() []string {
	out := make([]string, 0, len(s.Axes))
	for _, a := range s.Axes {
		out = append(out, a.Name)
	}
	return out
}
