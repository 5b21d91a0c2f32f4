package service

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"mediqa/casesim/internal/model"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Backend endpoints
const (
	SimulationNewPath    = "/api/simulation/new"
	SimulationSubmitPath = "/api/simulation/submit"
)

// CaseAPI is the MediQA backend as seen by the controller
type CaseAPI interface {
	NewCase(ctx context.Context) (*model.Case, error)
	Submit(ctx context.Context, answers model.AnswerSet, caseID string) (*model.ScoreReport, error)
}

// Gateway calls the MediQA simulation endpoints over HTTP
type Gateway struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewGateway creates a gateway for baseURL. Every call is bounded by timeout.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewCase handles GET /api/simulation/new
func (g *Gateway) NewCase(ctx context.Context) (*model.Case, error) {
	var c model.Case
	if err := g.call(ctx, http.MethodGet, SimulationNewPath, nil, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, &NetworkError{Op: "load case", Err: errors.Wrap(err, "malformed case")}
	}
	return &c, nil
}

type submitResponse struct {
	Score             float64                `json:"score"`
	Feedback          string                 `json:"feedback"`
	Questions         []model.QuestionResult `json:"questions"`
	Topic             string                 `json:"topic"`
	DifferentialTopic string                 `json:"differential_topic"`
}

// Submit handles POST /api/simulation/submit. Any failure is a SubmissionError.
func (g *Gateway) Submit(ctx context.Context, answers model.AnswerSet, caseID string) (*model.ScoreReport, error) {
	body := &model.SubmitRequest{Answers: answers, CaseID: caseID}

	var resp submitResponse
	if err := g.call(ctx, http.MethodPost, SimulationSubmitPath, body, &resp); err != nil {
		return nil, &SubmissionError{CaseID: caseID, Err: err}
	}

	return &model.ScoreReport{
		OverallScore:      clampScore(resp.Score),
		Feedback:          resp.Feedback,
		Questions:         resp.Questions,
		Topic:             resp.Topic,
		DifferentialTopic: resp.DifferentialTopic,
	}, nil
}

func (g *Gateway) call(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: errors.Wrap(err, "read response")}
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		if resp.StatusCode >= 300 {
			return &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &NetworkError{Op: op, Err: errors.Wrap(err, "malformed response")}
	}
	if envelope.Error != "" {
		return &BackendError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if resp.StatusCode >= 300 {
		return &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Op: op, Err: errors.Wrap(err, "malformed response")}
	}
	return nil
}

func clampScore(score float64) int {
	s := int(math.Round(score))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
