package model

// Phase is the navigator state
type Phase string

const (
	PhaseIdle       Phase = "idle" // no active case
	PhaseViewing    Phase = "viewing"
	PhaseSubmitting Phase = "submitting"
	PhaseResults    Phase = "results"
)

// Progress is the persisted resume point of a case
type Progress struct {
	CaseID  string    `json:"case_id"`
	Index   int       `json:"index"`
	Answers AnswerSet `json:"answers"`
}

// Notice is a transient message for the learner
type Notice struct {
	Kind    string `json:"kind"` // "error" or "info"
	Message string `json:"message"`
}

// Submit control labels
const (
	LabelNext       = "Next"
	LabelSubmit     = "Submit"
	LabelEvaluating = "Evaluating..."
)

// Snapshot is the render projection of a tab's controller
type Snapshot struct {
	TabID               string      `json:"tabId"`
	Phase               Phase       `json:"phase"`
	Loading             bool        `json:"loading"`
	CaseID              string      `json:"caseId,omitempty"`
	PresentingComplaint string      `json:"presentingComplaint,omitempty"`
	Index               int         `json:"index"`
	Total               int         `json:"total"`
	Progress            string      `json:"progress,omitempty"` // "Question 2 of 3"
	Question            *Question   `json:"question,omitempty"`
	Input               string      `json:"input"`
	InputFocused        bool        `json:"inputFocused"`
	SubmitLabel         string      `json:"submitLabel,omitempty"`
	SubmitEnabled       bool        `json:"submitEnabled"`
	BackEnabled         bool        `json:"backEnabled"`
	Answers             AnswerSet   `json:"answers,omitempty"`
	Notice              *Notice     `json:"notice,omitempty"`
	Results             *ResultView `json:"results,omitempty"`
}
