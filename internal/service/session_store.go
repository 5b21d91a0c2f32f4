package service

import (
	"context"
	"log/slog"
	"strings"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/model"

	"github.com/goccy/go-json"
)

// Fixed keys of the per-tab volatile store
const (
	CurrentCaseKey  = "currentCase"
	CaseProgressKey = "caseProgress"
)

// SessionStore owns the active case and answer set of one tab. Nothing else
// mutates them; the navigator and gateway go through this interface.
type SessionStore struct {
	tabID  string
	tabs   cache.TabStore
	logger *slog.Logger

	current *model.Case
	answers model.AnswerSet
	index   int
}

// NewSessionStore creates the store for tabID
func NewSessionStore(tabID string, tabs cache.TabStore, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		tabID:   tabID,
		tabs:    tabs,
		logger:  logger.With(slog.String("tab_id", tabID)),
		answers: model.AnswerSet{},
	}
}

// StartNewCase replaces any existing case and answers and persists the case.
// A failed write is logged only; the case stays active in memory.
func (s *SessionStore) StartNewCase(ctx context.Context, c *model.Case) {
	s.current = c.Clone()
	s.answers = model.AnswerSet{}
	s.index = 0

	data, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Error("failed to encode case", slog.String("case_id", c.ID()), slog.Any("error", err))
		return
	}
	if err := s.tabs.Set(ctx, s.tabID, CurrentCaseKey, data); err != nil {
		s.logger.Error("failed to persist case", slog.String("case_id", c.ID()), slog.Any("error", err))
		return
	}
	s.saveProgress(ctx)
}

// Restore reads a previously persisted case. It returns false when the record is
// absent or malformed; malformed records are dropped.
func (s *SessionStore) Restore(ctx context.Context) (*model.Case, bool) {
	data, err := s.tabs.Get(ctx, s.tabID, CurrentCaseKey)
	if err != nil {
		s.logger.Warn("failed to read persisted case", slog.Any("error", err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var c model.Case
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("discarding malformed persisted case", slog.Any("error", err))
		s.drop(ctx)
		return nil, false
	}
	if err := c.Validate(); err != nil {
		s.logger.Warn("discarding invalid persisted case", slog.Any("error", err))
		s.drop(ctx)
		return nil, false
	}

	s.current = &c
	s.answers = model.AnswerSet{}
	s.index = 0
	s.restoreProgress(ctx)
	return c.Clone(), true
}

func (s *SessionStore) restoreProgress(ctx context.Context) {
	data, err := s.tabs.Get(ctx, s.tabID, CaseProgressKey)
	if err != nil || data == nil {
		return
	}
	var p model.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("ignoring malformed case progress", slog.Any("error", err))
		return
	}
	if p.CaseID != s.current.ID() || p.Index < 0 || p.Index >= s.current.Len() {
		return
	}
	for field, text := range p.Answers {
		if s.current.HasField(field) && strings.TrimSpace(text) != "" {
			s.answers[field] = strings.TrimSpace(text)
		}
	}
	s.index = p.Index
}

// RecordAnswer inserts or overwrites the answer for field
func (s *SessionStore) RecordAnswer(ctx context.Context, field, text string) error {
	if s.current == nil {
		return ErrNoActiveCase
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &ValidationError{Field: field, Reason: "Please provide an answer"}
	}
	if !s.current.HasField(field) {
		return &ValidationError{Field: field, Reason: "field does not belong to the active case"}
	}
	s.answers[field] = text
	s.saveProgress(ctx)
	return nil
}

// SetIndex records the navigator position for resume after reload
func (s *SessionStore) SetIndex(ctx context.Context, i int) {
	if s.current == nil || i < 0 || i >= s.current.Len() {
		return
	}
	s.index = i
	s.saveProgress(ctx)
}

// Clear removes the case and answers from memory and the persisted store
func (s *SessionStore) Clear(ctx context.Context) {
	s.current = nil
	s.answers = model.AnswerSet{}
	s.index = 0
	s.drop(ctx)
}

func (s *SessionStore) drop(ctx context.Context) {
	for _, key := range []string{CurrentCaseKey, CaseProgressKey} {
		if err := s.tabs.Delete(ctx, s.tabID, key); err != nil {
			s.logger.Error("failed to clear persisted record", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *SessionStore) saveProgress(ctx context.Context) {
	if s.current == nil {
		return
	}
	data, err := json.Marshal(&model.Progress{
		CaseID:  s.current.ID(),
		Index:   s.index,
		Answers: s.answers,
	})
	if err != nil {
		return
	}
	if err := s.tabs.Set(ctx, s.tabID, CaseProgressKey, data); err != nil {
		s.logger.Error("failed to persist case progress", slog.String("case_id", s.current.ID()), slog.Any("error", err))
	}
}

// Case returns the active case, or nil
func (s *SessionStore) Case() *model.Case {
	return s.current
}

// Answers returns a copy of the answer set
func (s *SessionStore) Answers() model.AnswerSet {
	return s.answers.Clone()
}

// Answer returns the recorded answer for field
func (s *SessionStore) Answer(field string) string {
	return s.answers[field]
}

// Index returns the persisted navigator position
func (s *SessionStore) Index() int {
	return s.index
}
