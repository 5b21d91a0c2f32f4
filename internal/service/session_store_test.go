package service

import (
	"context"
	"testing"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()
	c := threeQuestionCase()

	NewSessionStore("tab-1", tabs, discardLogger()).StartNewCase(ctx, c)

	reloaded := NewSessionStore("tab-1", tabs, discardLogger())
	got, ok := reloaded.Restore(ctx)
	require.True(t, ok)
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("restored case mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, reloaded.Index())
	assert.Empty(t, reloaded.Answers())
}

func TestSessionStore_ProgressSurvivesReload(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()

	s := NewSessionStore("tab-1", tabs, discardLogger())
	s.StartNewCase(ctx, threeQuestionCase())
	require.NoError(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "  STEMI  "))
	s.SetIndex(ctx, 1)

	reloaded := NewSessionStore("tab-1", tabs, discardLogger())
	_, ok := reloaded.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, reloaded.Index())
	assert.Equal(t, "STEMI", reloaded.Answer(model.FieldDiagnosis))
}

func TestSessionStore_TabsAreIsolated(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()

	NewSessionStore("tab-1", tabs, discardLogger()).StartNewCase(ctx, malariaCase())

	_, ok := NewSessionStore("tab-2", tabs, discardLogger()).Restore(ctx)
	assert.False(t, ok)
}

func TestSessionStore_MalformedRecordIsDropped(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"presenting_complaint": `},
		{"no questions", `{"presenting_complaint":"fever","questions":[],"differential_topic":"malaria"}`},
		{"duplicate fields", `{"presenting_complaint":"fever","questions":[{"id":1,"field":"diagnosis"},{"id":2,"field":"diagnosis"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tabs.Set(ctx, "tab-1", CurrentCaseKey, []byte(tt.data)))

			_, ok := NewSessionStore("tab-1", tabs, discardLogger()).Restore(ctx)
			assert.False(t, ok)

			data, err := tabs.Get(ctx, "tab-1", CurrentCaseKey)
			require.NoError(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestSessionStore_StaleProgressIgnored(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()

	s := NewSessionStore("tab-1", tabs, discardLogger())
	s.StartNewCase(ctx, malariaCase())
	require.NoError(t, tabs.Set(ctx, "tab-1", CaseProgressKey,
		[]byte(`{"case_id":"typhoid","index":1,"answers":{"diagnosis":"Typhoid"}}`)))

	reloaded := NewSessionStore("tab-1", tabs, discardLogger())
	_, ok := reloaded.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, 0, reloaded.Index())
	assert.Empty(t, reloaded.Answers())
}

func TestSessionStore_RecordAnswer(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore("tab-1", cache.NewMemoryTabStore(), discardLogger())

	assert.ErrorIs(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "Malaria"), ErrNoActiveCase)

	s.StartNewCase(ctx, malariaCase())
	assert.True(t, IsValidation(s.RecordAnswer(ctx, model.FieldDiagnosis, "   ")))
	assert.True(t, IsValidation(s.RecordAnswer(ctx, "prognosis", "good")))

	require.NoError(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "Malaria"))
	require.NoError(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "Falciparum malaria"))
	assert.Equal(t, model.AnswerSet{model.FieldDiagnosis: "Falciparum malaria"}, s.Answers())
}

func TestSessionStore_StartNewCaseResetsAnswers(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore("tab-1", cache.NewMemoryTabStore(), discardLogger())

	s.StartNewCase(ctx, malariaCase())
	require.NoError(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "Malaria"))

	s.StartNewCase(ctx, threeQuestionCase())
	assert.Empty(t, s.Answers())
	assert.Equal(t, "myocardial_infarction", s.Case().ID())
}

func TestSessionStore_Clear(t *testing.T) {
	ctx := context.Background()
	tabs := cache.NewMemoryTabStore()
	s := NewSessionStore("tab-1", tabs, discardLogger())
	s.StartNewCase(ctx, malariaCase())

	s.Clear(ctx)
	assert.Nil(t, s.Case())

	for _, key := range []string{CurrentCaseKey, CaseProgressKey} {
		data, err := tabs.Get(ctx, "tab-1", key)
		require.NoError(t, err)
		assert.Nil(t, data, key)
	}
}

type failingTabStore struct{ cache.TabStore }

func (failingTabStore) Set(context.Context, string, string, []byte) error {
	return assert.AnError
}

func TestSessionStore_WriteFailureKeepsCaseInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore("tab-1", failingTabStore{cache.NewMemoryTabStore()}, discardLogger())

	s.StartNewCase(ctx, malariaCase())
	require.NotNil(t, s.Case())
	require.NoError(t, s.RecordAnswer(ctx, model.FieldDiagnosis, "Malaria"))
	assert.Equal(t, "Malaria", s.Answer(model.FieldDiagnosis))
}
