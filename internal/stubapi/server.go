// Package stubapi is a local stand-in for the MediQA simulation backend. It
// serves seeded cases and scores answers by key-term overlap.
package stubapi

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"mediqa/casesim/internal/logging"
	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/service"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// Score bands by share of matched key terms
const (
	bandMostly  = 0.7
	bandPartial = 0.4
	passScore   = 80
)

var keyTermRe = regexp.MustCompile(`\b\w{4,}\b`)

// Options configure the stub backend
type Options struct {
	Seed    uint64
	Latency time.Duration // added before every response
	Cases   []SeedCase
}

// Server serves GET /api/simulation/new and POST /api/simulation/submit
type Server struct {
	cases   []SeedCase
	byID    map[string]SeedCase
	latency time.Duration
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a stub backend
func New(opts Options) *Server {
	cases := opts.Cases
	if len(cases) == 0 {
		cases = SeedCases
	}
	byID := make(map[string]SeedCase, len(cases))
	for _, c := range cases {
		byID[caseID(c)] = c
	}
	return &Server{
		cases:   cases,
		byID:    byID,
		latency: opts.Latency,
		logger:  logging.New("stubapi"),
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.delay)
	r.HandleFunc(service.SimulationNewPath, s.newCase).Methods("GET")
	r.HandleFunc(service.SimulationSubmitPath, s.submit).Methods("POST")
	return r
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func caseID(c SeedCase) string {
	return strings.ToLower(strings.ReplaceAll(c.Topic, " ", "_"))
}

// Case builds the wire case for a seed
func (c SeedCase) Case() *model.Case {
	return &model.Case{
		PresentingComplaint: c.PresentingComplaint,
		DifferentialTopic:   caseID(c),
		Questions: []model.Question{
			{ID: "1", Prompt: "What is the most likely diagnosis?", Field: model.FieldDiagnosis},
			{ID: "2", Prompt: "What treatment would you recommend from the pharmacy?", Field: model.FieldTreatment},
		},
	}
}

func (s *Server) newCase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c := s.cases[s.rng.IntN(len(s.cases))]
	s.mu.Unlock()

	s.logger.Info("serving case", slog.String("topic", c.Topic))
	writeJSON(w, http.StatusOK, c.Case())
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, ok := s.byID[req.CaseID]
	if !ok {
		writeError(w, http.StatusBadRequest, "No active case found")
		return
	}

	writeJSON(w, http.StatusOK, Evaluate(c, req.Answers))
}

// Evaluate scores answers against a seed case
func Evaluate(c SeedCase, answers model.AnswerSet) *model.ScoreReport {
	dxScore, dxFeedback := scoreAnswer(c.Diagnosis, answers[model.FieldDiagnosis], "diagnosis")
	txScore, txFeedback := scoreAnswer(c.Treatment, answers[model.FieldTreatment], "treatment plan")

	dx := model.QuestionResult{
		Question: "What is the most likely diagnosis?",
		Field:    model.FieldDiagnosis,
		Correct:  dxScore >= passScore,
		Feedback: dxFeedback,
	}
	if !dx.Correct {
		dx.Feedback += " The correct diagnosis is: " + c.Diagnosis + "."
	}
	tx := model.QuestionResult{
		Question: "What treatment would you recommend from the pharmacy?",
		Field:    model.FieldTreatment,
		Correct:  txScore >= passScore,
		Feedback: txFeedback,
	}
	if !tx.Correct {
		tx.Feedback += " Correct answer: " + c.Treatment
	}

	return &model.ScoreReport{
		OverallScore:      int(math.Round(float64(dxScore+txScore) / 2)),
		Feedback:          "Diagnosis: " + dxFeedback + " Treatment: " + txFeedback,
		Questions:         []model.QuestionResult{dx, tx},
		Topic:             c.Topic,
		DifferentialTopic: c.DifferentialTopic,
	}
}

// scoreAnswer counts which key terms (words of four or more letters) of the
// expected text occur in the answer
func scoreAnswer(expected, answer, noun string) (int, string) {
	expected = strings.ToLower(expected)
	answer = strings.ToLower(strings.TrimSpace(answer))

	terms := keyTermRe.FindAllString(expected, -1)
	matched := 0
	for _, term := range terms {
		if strings.Contains(answer, term) {
			matched++
		}
	}

	total := float64(len(terms))
	switch {
	case answer == "":
		return 0, "No " + noun + " was provided."
	case matched == len(terms) || answer == expected:
		return 100, "Excellent! Your " + noun + " is correct."
	case float64(matched) >= total*bandMostly:
		return 80, "Good job! Your " + noun + " is mostly correct."
	case float64(matched) >= total*bandPartial:
		return 60, "Your " + noun + " is partially correct, but missing some key elements."
	case matched > 0:
		return 40, "Your " + noun + " has some correct elements, but is mostly off."
	default:
		return 0, "Your " + noun + " does not match the expected answer."
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
