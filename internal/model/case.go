package model

import "github.com/pkg/errors"

// Case is a simulated clinical scenario as served by GET /api/simulation/new
type Case struct {
	PresentingComplaint string     `json:"presenting_complaint"`
	Questions           []Question `json:"questions"`
	DifferentialTopic   string     `json:"differential_topic"`
}

// ID returns the case key sent back as case_id on submission
func (c *Case) ID() string {
	return c.DifferentialTopic
}

// Len returns the number of questions
func (c *Case) Len() int {
	return len(c.Questions)
}

// HasField reports whether any question collects the given field
func (c *Case) HasField(field string) bool {
	for _, q := range c.Questions {
		if q.Field == field {
			return true
		}
	}
	return false
}

// Validate checks that a case is well-formed: a complaint, at least one question,
// and unique non-empty ids and fields.
func (c *Case) Validate() error {
	if c == nil {
		return errors.New("case is nil")
	}
	if blank(c.PresentingComplaint) {
		return errors.New("case has no presenting complaint")
	}
	if len(c.Questions) == 0 {
		return errors.New("case has no questions")
	}
	ids := make(map[QuestionID]bool, len(c.Questions))
	fields := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		if blank(q.Field) {
			return errors.Errorf("question %s has no field", questionLabel(i, q))
		}
		if fields[q.Field] {
			return errors.Errorf("duplicate field %q", q.Field)
		}
		fields[q.Field] = true
		if q.ID != "" {
			if ids[q.ID] {
				return errors.Errorf("duplicate question id %q", q.ID)
			}
			ids[q.ID] = true
		}
	}
	return nil
}

// Clone returns a deep copy
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	out := *c
	out.Questions = append([]Question(nil), c.Questions...)
	return &out
}
