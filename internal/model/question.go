package model

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// QuestionID is a question identifier. The backend sends either a string or a number;
// both are normalized to their string form.
type QuestionID string

// UnmarshalJSON accepts a JSON string or number
func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = QuestionID(n.String())
	return nil
}

// Question is one step of a case. Immutable once received.
type Question struct {
	ID     QuestionID `json:"id"`
	Prompt string     `json:"question"`
	Field  string     `json:"field"` // answer category, e.g. "diagnosis", "treatment"
}

// Well-known answer fields
const (
	FieldDiagnosis = "diagnosis"
	FieldTreatment = "treatment"
)

// QuestionResult is the backend's verdict for one question
type QuestionResult struct {
	Question string `json:"question" bson:"question"`
	Field    string `json:"field" bson:"field"`
	Correct  bool   `json:"correct" bson:"correct"`
	Feedback string `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

func questionLabel(i int, q Question) string {
	if q.ID != "" {
		return string(q.ID)
	}
	return strconv.Itoa(i)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
