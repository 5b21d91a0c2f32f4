package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"mediqa/casesim/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func malariaCase() *model.Case {
	return &model.Case{
		PresentingComplaint: "A 24-year-old returning traveller with fever and rigors.",
		DifferentialTopic:   "malaria",
		Questions: []model.Question{
			{ID: "1", Prompt: "What is the most likely diagnosis?", Field: model.FieldDiagnosis},
			{ID: "2", Prompt: "How would you treat this patient?", Field: model.FieldTreatment},
		},
	}
}

func threeQuestionCase() *model.Case {
	return &model.Case{
		PresentingComplaint: "A 60-year-old with crushing chest pain.",
		DifferentialTopic:   "myocardial_infarction",
		Questions: []model.Question{
			{ID: "1", Prompt: "Diagnosis?", Field: model.FieldDiagnosis},
			{ID: "2", Prompt: "First investigation?", Field: "investigation"},
			{ID: "3", Prompt: "Treatment?", Field: model.FieldTreatment},
		},
	}
}

type submitCall struct {
	answers model.AnswerSet
	caseID  string
}

// fakeAPI is a scripted CaseAPI. A non-nil block channel holds Submit until closed.
type fakeAPI struct {
	mu        sync.Mutex
	cases     []*model.Case
	caseErr   error
	report    *model.ScoreReport
	submitErr error
	block     chan struct{}
	entered   chan struct{}
	newCalls  int
	submits   []submitCall
}

func (f *fakeAPI) NewCase(ctx context.Context) (*model.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newCalls++
	if f.caseErr != nil {
		return nil, f.caseErr
	}
	c := f.cases[0]
	if len(f.cases) > 1 {
		f.cases = f.cases[1:]
	}
	return c.Clone(), nil
}

func (f *fakeAPI) Submit(ctx context.Context, answers model.AnswerSet, caseID string) (*model.ScoreReport, error) {
	f.mu.Lock()
	f.submits = append(f.submits, submitCall{answers: answers.Clone(), caseID: caseID})
	block, entered := f.block, f.entered
	report, err := f.report, f.submitErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (f *fakeAPI) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func (f *fakeAPI) newCaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newCalls
}

type published struct {
	tabID   string
	msgType string
	snap    *model.Snapshot
}

// recordingBroadcaster captures every publish
type recordingBroadcaster struct {
	mu           sync.Mutex
	messages     []published
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToTab(tabID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, _ := payload.(*model.Snapshot)
	b.messages = append(b.messages, published{tabID: tabID, msgType: msgType, snap: snap})
}

func (b *recordingBroadcaster) DisconnectTab(tabID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, tabID)
}

func (b *recordingBroadcaster) last() published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages[len(b.messages)-1]
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}
