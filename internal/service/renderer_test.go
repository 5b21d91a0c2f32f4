package service

import (
	"strings"
	"testing"

	"mediqa/casesim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerExtractor_Diagnosis(t *testing.T) {
	got, ok := NewMarkerExtractor().ExtractCorrectAnswer("Incorrect. The correct diagnosis is: Typhoid fever.", model.FieldDiagnosis)
	require.True(t, ok)
	assert.Equal(t, "Typhoid fever", got)
}

func TestMarkerExtractor_Treatment(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     string
	}{
		{"correct answer marker", "Partially correct. Correct answer:  Oral artemether-lumefantrine ", "Oral artemether-lumefantrine"},
		{"recommended treatment", "Incorrect. Recommended treatment: Ceftriaxone", "Ceftriaxone"},
		{"recommended treatment includes", "Incorrect. Recommended treatment includes: rest and fluids", "rest and fluids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewMarkerExtractor().ExtractCorrectAnswer(tt.feedback, model.FieldTreatment)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkerExtractor_NoMarker(t *testing.T) {
	_, ok := NewMarkerExtractor().ExtractCorrectAnswer("Incorrect. Review the guidelines.", model.FieldDiagnosis)
	assert.False(t, ok)

	got, ok := NewMarkerExtractor().ExtractCorrectAnswer("Incorrect. Correct answer: Troponin", "investigation")
	require.True(t, ok)
	assert.Equal(t, "Troponin", got)
}

func TestFormatTreatment(t *testing.T) {
	short := "Oral artemether-lumefantrine for three days"
	assert.Equal(t, short, FormatTreatment(short))

	preformatted := "• Rest\n• Fluids"
	assert.Equal(t, preformatted, FormatTreatment(preformatted))

	long := "1. Start oral artemether-lumefantrine twice daily for three days; " +
		"give IV artesunate if severe features develop; " +
		"- monitor blood glucose every four hours; " +
		"ok; " +
		"check a repeat blood film at 72 hours to confirm clearance; " +
		"encourage oral fluids and paracetamol for fever control; " +
		"arrange lumbar puncture if consciousness declines; " +
		"counsel on mosquito bite prevention before discharge"
	require.Greater(t, len(long), 200)

	got := FormatTreatment(long)
	lines := strings.Split(got, "\n")
	assert.Equal(t, []string{
		"• Start oral artemether-lumefantrine twice daily for three days",
		"• monitor blood glucose every four hours",
		"• check a repeat blood film at 72 hours to confirm clearance",
		"• encourage oral fluids and paracetamol for fever control",
		"• counsel on mosquito bite prevention before discharge",
	}, lines)
}

func TestFormatTreatment_CapsBullets(t *testing.T) {
	clause := "continue supportive oral therapy as tolerated"
	long := strings.Repeat(clause+". ", 8)
	lines := strings.Split(FormatTreatment(long), "\n")
	assert.Len(t, lines, maxBullets)
}

func TestFormatTreatment_AllClausesDropped(t *testing.T) {
	long := strings.Repeat("schedule surgical incision and drainage today; ", 6)
	assert.Equal(t, "", FormatTreatment(long))
}

func TestFormatTreatment_CountsUTF16Units(t *testing.T) {
	pills := strings.Repeat("\U0001F48A", 6)
	long := strings.Repeat("Start oral antibiotics and continue the full course at home; ", 4) + pills
	lines := strings.Split(FormatTreatment(long), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, bullet+" "+pills, lines[4])

	wide := strings.Repeat("\U0001F48A", 101)
	assert.Equal(t, bullet+" "+wide, FormatTreatment(wide))
	assert.Equal(t, 202, textLength(wide))
}

func TestRenderer_Render(t *testing.T) {
	report := &model.ScoreReport{
		OverallScore: 50,
		Feedback:     "Keep practising",
		Topic:        "Typhoid",
		Questions: []model.QuestionResult{
			{Question: "Diagnosis?", Field: model.FieldDiagnosis, Correct: false, Feedback: "Incorrect. The correct diagnosis is: Typhoid fever."},
			{Question: "Treatment?", Field: model.FieldTreatment, Correct: true, Feedback: "Correct!"},
			{Question: "Follow-up?", Field: "followup", Correct: false},
		},
	}
	answers := model.AnswerSet{model.FieldDiagnosis: "Malaria", model.FieldTreatment: "Ceftriaxone"}

	view := NewRenderer(nil).Render(report, answers)
	assert.Equal(t, 50, view.Score)
	assert.Equal(t, "Typhoid", view.Topic)
	require.Len(t, view.Items, 3)

	assert.Equal(t, "Malaria", view.Items[0].UserAnswer)
	assert.Equal(t, "Typhoid fever", view.Items[0].CorrectAnswer)
	assert.Empty(t, view.Items[1].CorrectAnswer)
	assert.Equal(t, model.NoAnswer, view.Items[2].UserAnswer)
	assert.Empty(t, view.Items[2].CorrectAnswer)
}

type staticExtractor string

func (s staticExtractor) ExtractCorrectAnswer(string, string) (string, bool) {
	return string(s), s != ""
}

func TestRenderer_CustomExtractor(t *testing.T) {
	report := &model.ScoreReport{Questions: []model.QuestionResult{
		{Field: model.FieldDiagnosis, Correct: false, Feedback: "Wrong"},
	}}
	view := NewRenderer(staticExtractor("Dengue fever")).Render(report, model.AnswerSet{})
	assert.Equal(t, "Dengue fever", view.Items[0].CorrectAnswer)
}
