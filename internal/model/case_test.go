package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionID_AcceptsNumbersAndStrings(t *testing.T) {
	var c Case
	body := `{"presenting_complaint":"Fever","differential_topic":"malaria",
		"questions":[{"id":1,"question":"Diagnosis?","field":"diagnosis"},
		             {"id":"q2","question":"Treatment?","field":"treatment"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, QuestionID("1"), c.Questions[0].ID)
	assert.Equal(t, QuestionID("q2"), c.Questions[1].ID)
	assert.Equal(t, "malaria", c.ID())
	assert.Equal(t, 2, c.Len())
}

func TestQuestionID_RejectsObjects(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"id":{"x":1},"field":"diagnosis"}`), &q)
	assert.Error(t, err)
}

func TestCase_Validate(t *testing.T) {
	valid := func() *Case {
		return &Case{
			PresentingComplaint: "Fever and chills",
			DifferentialTopic:   "malaria",
			Questions: []Question{
				{ID: "1", Prompt: "Diagnosis?", Field: FieldDiagnosis},
				{ID: "2", Prompt: "Treatment?", Field: FieldTreatment},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Case)
		ok     bool
	}{
		{"valid", func(c *Case) {}, true},
		{"no complaint", func(c *Case) { c.PresentingComplaint = "  " }, false},
		{"no questions", func(c *Case) { c.Questions = nil }, false},
		{"empty field", func(c *Case) { c.Questions[1].Field = "" }, false},
		{"duplicate field", func(c *Case) { c.Questions[1].Field = FieldDiagnosis }, false},
		{"duplicate id", func(c *Case) { c.Questions[1].ID = "1" }, false},
		{"missing ids allowed", func(c *Case) { c.Questions[0].ID = ""; c.Questions[1].ID = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	var nilCase *Case
	assert.Error(t, nilCase.Validate())
}

func TestCase_CloneIsIndependent(t *testing.T) {
	c := &Case{PresentingComplaint: "Cough", Questions: []Question{{ID: "1", Field: FieldDiagnosis}}}
	cp := c.Clone()
	cp.Questions[0].Field = "other"
	assert.Equal(t, FieldDiagnosis, c.Questions[0].Field)
}

func TestAnswerSet_Covers(t *testing.T) {
	c := &Case{Questions: []Question{{Field: FieldDiagnosis}, {Field: FieldTreatment}}}

	answers := AnswerSet{FieldDiagnosis: "Malaria"}
	assert.False(t, answers.Covers(c))

	answers[FieldTreatment] = "   "
	assert.False(t, answers.Covers(c))

	answers[FieldTreatment] = "Artemether"
	assert.True(t, answers.Covers(c))
	assert.False(t, answers.Covers(nil))
}
