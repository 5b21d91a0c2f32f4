package model

// AnswerSet maps a question field to the learner's trimmed answer text
type AnswerSet map[string]string

// Has reports whether field has a non-empty answer
func (a AnswerSet) Has(field string) bool {
	return !blank(a[field])
}

// Covers reports whether every question of c has a non-empty answer
func (a AnswerSet) Covers(c *Case) bool {
	if c == nil {
		return false
	}
	for _, q := range c.Questions {
		if !a.Has(q.Field) {
			return false
		}
	}
	return true
}

// Clone returns a copy safe to hand out of the store
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SubmitRequest is the body of POST /api/simulation/submit
type SubmitRequest struct {
	Answers AnswerSet `json:"answers"`
	CaseID  string    `json:"case_id"`
}
