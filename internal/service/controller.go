package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Learner-facing notices
const (
	noticeLoadFailed   = "Failed to load case. Please try again."
	noticeSubmitFailed = "An error occurred submitting your answers"
)

// Controller is the case session controller of one tab. It owns the session
// store and navigator; every mutation goes through it.
type Controller struct {
	tabID    string
	store    *SessionStore
	nav      *Navigator
	api      CaseAPI
	renderer *Renderer
	logger   *slog.Logger

	attempts    repository.AttemptRepo
	broadcaster Broadcaster

	mu sync.Mutex
	// bumped on every new case; stale submissions are discarded
	gen uint64
	// at most one outstanding submission per case; replaced with gen
	submitting *semaphore.Weighted
	loading bool
	drafts  map[string]string
	focused bool
	notice  *model.Notice
	results *model.ResultView
	now     func() time.Time
}

// NewController creates the controller for tabID
func NewController(tabID string, tabs cache.TabStore, api CaseAPI, renderer *Renderer, logger *slog.Logger) *Controller {
	return &Controller{
		tabID:      tabID,
		store:      NewSessionStore(tabID, tabs, logger),
		nav:        NewNavigator(),
		api:        api,
		renderer:   renderer,
		logger:     logger.With(slog.String("tab_id", tabID)),
		submitting: semaphore.NewWeighted(1),
		drafts:     make(map[string]string),
		now:        time.Now,
	}
}

// SetBroadcaster sets the broadcaster for state pushes
func (c *Controller) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

// SetAttemptRepo sets the archive for completed cases
func (c *Controller) SetAttemptRepo(repo repository.AttemptRepo) {
	c.attempts = repo
}

// TabID returns the owning tab
func (c *Controller) TabID() string {
	return c.tabID
}

// Init resumes a persisted case, or fetches a new one when there is none
func (c *Controller) Init(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	if restored, ok := c.store.Restore(ctx); ok {
		c.nextGenLocked()
		c.resetViewLocked()
		c.nav.Start(restored.Len(), c.store.Index())
		for field, text := range c.store.Answers() {
			c.drafts[field] = text
		}
		c.focused = true
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Info("restored case", slog.String("case_id", restored.ID()), slog.Int("index", snap.Index))
		c.publish(snap)
		return snap, nil
	}
	c.mu.Unlock()

	return c.NewCase(ctx)
}

// NewCase discards the active case and fetches a fresh one
func (c *Controller) NewCase(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	if c.loading {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
	gen := c.nextGenLocked()
	c.loading = true
	c.store.Clear(ctx)
	c.nav.Reset()
	c.resetViewLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	fetched, err := c.api.NewCase(ctx)

	c.mu.Lock()
	c.loading = false
	if gen != c.gen {
		snap = c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
	if err != nil {
		c.notice = &model.Notice{Kind: "error", Message: noticeFor(err, noticeLoadFailed)}
		snap = c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Error("failed to load case", slog.Any("error", err))
		c.publish(snap)
		return snap, err
	}

	c.store.StartNewCase(ctx, fetched)
	c.nav.Start(fetched.Len(), 0)
	c.focused = true
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("loaded case", slog.String("case_id", fetched.ID()), slog.Int("questions", fetched.Len()))
	c.publish(snap)
	return snap, nil
}

// SetInput updates the answer input of the current question
func (c *Controller) SetInput(text string) (*model.Snapshot, error) {
	c.mu.Lock()
	st := c.nav.State()
	if st.Phase != model.PhaseViewing {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNotViewing
	}
	q := c.store.Case().Questions[st.Index]
	c.drafts[q.Field] = text
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap, nil
}

// SetFocus records whether the answer input has keyboard focus
func (c *Controller) SetFocus(focused bool) *model.Snapshot {
	c.mu.Lock()
	c.focused = focused
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// Advance records the current input and moves forward. On the last question
// it submits the answer set and blocks until the backend replies.
func (c *Controller) Advance(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	held, err := c.advanceLocked(ctx)
	snap := c.snapshotLocked()
	var p pendingSubmission
	if held != nil {
		p = pendingSubmission{slot: held, gen: c.gen, active: c.store.Case(), answers: c.store.Answers()}
	}
	c.mu.Unlock()

	c.publish(snap)
	if err != nil || held == nil {
		return snap, err
	}
	return c.submit(ctx, p)
}

type pendingSubmission struct {
	slot    *semaphore.Weighted
	gen     uint64
	active  *model.Case
	answers model.AnswerSet
}

// advanceLocked returns the acquired submission slot when the advance
// entered Submitting.
func (c *Controller) advanceLocked(ctx context.Context) (*semaphore.Weighted, error) {
	active := c.store.Case()
	if active == nil {
		return nil, ErrNoActiveCase
	}
	st := c.nav.State()
	switch st.Phase {
	case model.PhaseViewing:
	case model.PhaseSubmitting:
		return nil, ErrSubmissionInFlight
	default:
		return nil, ErrNotViewing
	}

	q := active.Questions[st.Index]
	if err := c.store.RecordAnswer(ctx, q.Field, c.drafts[q.Field]); err != nil {
		c.notice = &model.Notice{Kind: "error", Message: noticeFor(err, err.Error())}
		return nil, err
	}

	last := st.IsLast()
	if last && !c.submitting.TryAcquire(1) {
		c.notice = &model.Notice{Kind: "error", Message: ErrSubmissionInFlight.Error()}
		return nil, ErrSubmissionInFlight
	}
	st, err := c.nav.Advance(active, c.store.Answers())
	if err != nil {
		if last {
			c.submitting.Release(1)
		}
		c.notice = &model.Notice{Kind: "error", Message: noticeFor(err, err.Error())}
		return nil, err
	}
	c.notice = nil

	if st.Phase == model.PhaseSubmitting {
		return c.submitting, nil
	}
	c.store.SetIndex(ctx, st.Index)
	c.focused = true
	return nil, nil
}

func (c *Controller) submit(ctx context.Context, p pendingSubmission) (*model.Snapshot, error) {
	defer p.slot.Release(1)

	// a disconnecting client does not abort the submission; the gateway timeout bounds it
	ctx = context.WithoutCancel(ctx)
	active, answers, gen := p.active, p.answers, p.gen

	start := c.now()
	report, err := c.api.Submit(ctx, answers, active.ID())

	c.mu.Lock()
	if gen != c.gen {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Warn("discarding result of replaced case", slog.String("case_id", active.ID()))
		return snap, nil
	}
	if err != nil {
		c.nav.SubmissionFailed()
		c.notice = &model.Notice{Kind: "error", Message: noticeFor(err, noticeSubmitFailed)}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.logger.Error("submission failed", slog.String("case_id", active.ID()), slog.Any("error", err))
		c.publish(snap)
		return snap, err
	}

	view := c.renderer.Render(report, answers)
	c.results = view
	c.nav.SubmissionSucceeded()
	c.store.Clear(ctx)
	c.drafts = make(map[string]string)
	c.focused = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("case scored",
		slog.String("case_id", active.ID()),
		slog.Int("score", report.OverallScore),
		slog.Duration("elapsed", c.now().Sub(start)))
	c.archive(ctx, active, answers, view)
	c.publish(snap)
	return snap, nil
}

func (c *Controller) archive(ctx context.Context, active *model.Case, answers model.AnswerSet, view *model.ResultView) {
	if c.attempts == nil {
		return
	}
	attempt := &model.Attempt{
		ID:                  uuid.New().String(),
		TabID:               c.tabID,
		CaseID:              active.ID(),
		PresentingComplaint: active.PresentingComplaint,
		Score:               view.Score,
		Answers:             answers,
		Results:             view,
		CompletedAt:         c.now().UTC(),
	}
	if err := c.attempts.Save(ctx, attempt); err != nil {
		c.logger.Error("failed to archive attempt", slog.String("case_id", active.ID()), slog.Any("error", err))
	}
}

// Retreat moves back one question. At the first question it is a rejected no-op.
func (c *Controller) Retreat(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	st, err := c.nav.Retreat()
	if err == nil {
		c.store.SetIndex(ctx, st.Index)
		c.focused = true
		c.notice = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err == nil {
		c.publish(snap)
	}
	return snap, err
}

// HandleKey applies a keyboard shortcut. Keys that do not map to a transition
// in the current state are ignored.
func (c *Controller) HandleKey(ctx context.Context, key string) (*model.Snapshot, error) {
	c.mu.Lock()
	var input string
	if st := c.nav.State(); st.Phase == model.PhaseViewing {
		input = c.drafts[c.store.Case().Questions[st.Index].Field]
	}
	advance := c.nav.ShortcutAdvances(key, input, c.focused)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !advance {
		return snap, nil
	}
	return c.Advance(ctx)
}

// Answers returns a copy of the recorded answers
func (c *Controller) Answers() model.AnswerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Answers()
}

// Snapshot returns the current render projection
func (c *Controller) Snapshot() *model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// nextGenLocked starts a new generation with its own submission slot. A
// submission still running for the old generation keeps and releases the old slot.
func (c *Controller) nextGenLocked() uint64 {
	c.gen++
	c.submitting = semaphore.NewWeighted(1)
	return c.gen
}

func (c *Controller) resetViewLocked() {
	c.drafts = make(map[string]string)
	c.focused = false
	c.notice = nil
	c.results = nil
}

func (c *Controller) snapshotLocked() *model.Snapshot {
	st := c.nav.State()
	snap := &model.Snapshot{
		TabID:   c.tabID,
		Phase:   st.Phase,
		Loading: c.loading,
		Notice:  c.notice,
		Results: c.results,
	}

	active := c.store.Case()
	if active == nil {
		return snap
	}
	snap.CaseID = active.ID()
	snap.PresentingComplaint = active.PresentingComplaint
	snap.Answers = c.store.Answers()

	if st.Phase != model.PhaseViewing && st.Phase != model.PhaseSubmitting {
		return snap
	}
	q := active.Questions[st.Index]
	snap.Index = st.Index
	snap.Total = st.Total
	snap.Progress = st.Progress()
	snap.Question = &q
	snap.Input = c.drafts[q.Field]

	switch {
	case st.Phase == model.PhaseSubmitting:
		snap.SubmitLabel = model.LabelEvaluating
	case st.IsLast():
		snap.SubmitLabel = model.LabelSubmit
	default:
		snap.SubmitLabel = model.LabelNext
	}
	viewing := st.Phase == model.PhaseViewing
	snap.SubmitEnabled = viewing
	snap.BackEnabled = viewing && st.Index > 0
	snap.InputFocused = viewing && c.focused
	return snap
}

func (c *Controller) publish(snap *model.Snapshot) {
	c.mu.Lock()
	b := c.broadcaster
	c.mu.Unlock()
	if b == nil {
		return
	}
	b.BroadcastToTab(c.tabID, MsgState, snap)
}

// Retire detaches a replaced controller. Work still in flight finishes but its
// result is discarded and nothing more is published.
func (c *Controller) Retire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextGenLocked()
	c.broadcaster = nil
}
