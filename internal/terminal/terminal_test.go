package terminal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedAPI struct {
	submitted model.AnswerSet
}

func (a *scriptedAPI) NewCase(context.Context) (*model.Case, error) {
	return &model.Case{
		PresentingComplaint: "Fever and rigors after travel to Ghana.",
		DifferentialTopic:   "malaria",
		Questions: []model.Question{
			{ID: "1", Prompt: "What is the most likely diagnosis?", Field: model.FieldDiagnosis},
			{ID: "2", Prompt: "How would you treat this patient?", Field: model.FieldTreatment},
		},
	}, nil
}

func (a *scriptedAPI) Submit(_ context.Context, answers model.AnswerSet, caseID string) (*model.ScoreReport, error) {
	a.submitted = answers
	return &model.ScoreReport{
		OverallScore: 50,
		Topic:        "Malaria",
		Questions: []model.QuestionResult{
			{Question: "What is the most likely diagnosis?", Field: model.FieldDiagnosis, Correct: false,
				Feedback: "Incorrect. The correct diagnosis is: Typhoid fever."},
			{Question: "How would you treat this patient?", Field: model.FieldTreatment, Correct: true, Feedback: "Correct!"},
		},
	}, nil
}

func newController(api service.CaseAPI) *service.Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewController("tab-term", cache.NewMemoryTabStore(), api, service.NewRenderer(nil), logger)
}

func TestRun_FullCase(t *testing.T) {
	api := &scriptedAPI{}
	in := strings.NewReader(strings.Join([]string{
		"Malaria",
		":back",
		":state",
		":n",
		"Artemether-lumefantrine",
		":quit",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), newController(api), in, &out))

	text := out.String()
	assert.Contains(t, text, "Fever and rigors after travel to Ghana.")
	assert.Contains(t, text, "Question 1 of 2")
	assert.Contains(t, text, "Question 2 of 2")
	assert.Contains(t, text, "[Submit]")
	assert.Contains(t, text, "Your answer: Malaria")
	assert.Contains(t, text, "Score: 50/100")
	assert.Contains(t, text, "Typhoid fever")
	assert.Equal(t, model.AnswerSet{
		model.FieldDiagnosis: "Malaria",
		model.FieldTreatment: "Artemether-lumefantrine",
	}, api.submitted)
}

func TestRun_RejectionsAreReported(t *testing.T) {
	in := strings.NewReader(":back\n:s\n:bogus\n")
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), newController(&scriptedAPI{}), in, &out))

	text := out.String()
	assert.Contains(t, text, "already at the first question")
	assert.Contains(t, text, "unknown command :bogus")
}

func TestRender_Idle(t *testing.T) {
	var out bytes.Buffer
	Render(&out, &model.Snapshot{Phase: model.PhaseIdle, Notice: &model.Notice{Kind: "error", Message: "Server busy"}})
	assert.Equal(t, "! Server busy\nNo active case. Type :new to load one.\n", out.String())
}
