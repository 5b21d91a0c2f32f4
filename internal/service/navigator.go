package service

import (
	"fmt"
	"strings"

	"mediqa/casesim/internal/model"
)

// Keyboard shortcuts
const (
	KeyNext       = "n"
	KeyArrowRight = "ArrowRight"
	KeySubmit     = "s"
)

// NavState is the navigator position. Index is meaningful in PhaseViewing only.
type NavState struct {
	Phase model.Phase
	Index int
	Total int
}

// IsLast reports whether the cursor is on the final question
func (s NavState) IsLast() bool {
	return s.Total > 0 && s.Index == s.Total-1
}

// Progress returns the "Question i of N" indicator
func (s NavState) Progress() string {
	if s.Phase != model.PhaseViewing && s.Phase != model.PhaseSubmitting {
		return ""
	}
	return fmt.Sprintf("Question %d of %d", s.Index+1, s.Total)
}

// Navigator is a linear cursor over a case's questions. Transitions return the
// new state; a rejected transition leaves the state unchanged.
type Navigator struct {
	state NavState
}

// NewNavigator starts idle
func NewNavigator() *Navigator {
	return &Navigator{state: NavState{Phase: model.PhaseIdle}}
}

// State returns the current state
func (n *Navigator) State() NavState {
	return n.state
}

// Start enters Viewing(index) for a case of total questions
func (n *Navigator) Start(total, index int) NavState {
	if total <= 0 {
		n.state = NavState{Phase: model.PhaseIdle}
		return n.state
	}
	if index < 0 || index >= total {
		index = 0
	}
	n.state = NavState{Phase: model.PhaseViewing, Index: index, Total: total}
	return n.state
}

// Reset returns to idle
func (n *Navigator) Reset() NavState {
	n.state = NavState{Phase: model.PhaseIdle}
	return n.state
}

// Advance moves past the current question. field must already hold a non-empty
// answer in answers. On the last index the navigator enters Submitting.
func (n *Navigator) Advance(c *model.Case, answers model.AnswerSet) (NavState, error) {
	switch n.state.Phase {
	case model.PhaseViewing:
	case model.PhaseSubmitting:
		return n.state, ErrSubmissionInFlight
	default:
		return n.state, ErrNotViewing
	}

	q := c.Questions[n.state.Index]
	if !answers.Has(q.Field) {
		return n.state, &ValidationError{Field: q.Field, Reason: "Please provide an answer"}
	}

	if n.state.IsLast() {
		if !answers.Covers(c) {
			return n.state, &ValidationError{Reason: "Please answer all questions"}
		}
		n.state.Phase = model.PhaseSubmitting
		return n.state, nil
	}
	n.state.Index++
	return n.state, nil
}

// Retreat moves back one question without touching recorded answers
func (n *Navigator) Retreat() (NavState, error) {
	if n.state.Phase != model.PhaseViewing {
		return n.state, ErrNotViewing
	}
	if n.state.Index == 0 {
		return n.state, ErrAtFirstQuestion
	}
	n.state.Index--
	return n.state, nil
}

// SubmissionFailed returns to the last question with the submit control re-enabled
func (n *Navigator) SubmissionFailed() NavState {
	if n.state.Phase == model.PhaseSubmitting {
		n.state.Phase = model.PhaseViewing
		n.state.Index = n.state.Total - 1
	}
	return n.state
}

// SubmissionSucceeded enters Results
func (n *Navigator) SubmissionSucceeded() NavState {
	if n.state.Phase == model.PhaseSubmitting {
		n.state.Phase = model.PhaseResults
	}
	return n.state
}

// ShortcutAdvances reports whether key should trigger Advance given the current
// input text and focus. Shortcuts are ignored while the input has focus and
// outside the Viewing phase.
func (n *Navigator) ShortcutAdvances(key, input string, inputFocused bool) bool {
	if inputFocused || n.state.Phase != model.PhaseViewing {
		return false
	}
	if strings.TrimSpace(input) == "" {
		return false
	}
	switch key {
	case KeyNext, KeyArrowRight:
		return true
	case KeySubmit:
		return n.state.IsLast()
	}
	return false
}
