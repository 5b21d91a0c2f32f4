package service

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"mediqa/casesim/internal/model"
)

// AnswerExtractor pulls a "correct answer" excerpt out of free-text feedback.
// The default implementation is marker based and will break if the backend
// rewords its feedback; a structured backend field can replace it here.
type AnswerExtractor interface {
	ExtractCorrectAnswer(feedback, field string) (string, bool)
}

type marker struct {
	re   *regexp.Regexp
	trim bool
}

// MarkerExtractor matches fixed textual markers per field, first match wins
type MarkerExtractor struct {
	byField  map[string][]marker
	fallback []marker
}

// NewMarkerExtractor returns the extractor for the MediQA feedback wording
func NewMarkerExtractor() *MarkerExtractor {
	return &MarkerExtractor{
		byField: map[string][]marker{
			model.FieldDiagnosis: {
				{re: regexp.MustCompile(`The correct diagnosis is: ([^.]+)`)},
			},
			model.FieldTreatment: {
				{re: regexp.MustCompile(`Correct answer:([\s\S]+)`), trim: true},
				{re: regexp.MustCompile(`Recommended treatment: ([\s\S]+)`), trim: true},
				{re: regexp.MustCompile(`Recommended treatment includes: ([\s\S]+)`), trim: true},
			},
		},
		fallback: []marker{
			{re: regexp.MustCompile(`Correct answer:([\s\S]+)`), trim: true},
		},
	}
}

// ExtractCorrectAnswer implements AnswerExtractor
func (e *MarkerExtractor) ExtractCorrectAnswer(feedback, field string) (string, bool) {
	markers, ok := e.byField[field]
	if !ok {
		markers = e.fallback
	}
	for _, m := range markers {
		match := m.re.FindStringSubmatch(feedback)
		if len(match) < 2 {
			continue
		}
		excerpt := match[1]
		if m.trim {
			excerpt = strings.TrimSpace(excerpt)
		}
		if excerpt != "" {
			return excerpt, true
		}
	}
	return "", false
}

const (
	treatmentBulletThreshold = 200
	minClauseLength          = 10
	maxBullets               = 5
	bullet                   = "•"
)

var (
	numberingPrefix = regexp.MustCompile(`^\d+\s*[\).]*\s*`)
	dashPrefix      = regexp.MustCompile(`^-\s*`)
	bulletPrefix    = regexp.MustCompile(`^` + bullet + `\s*`)
	procedureTerms  = regexp.MustCompile(`(?i)\b(IV|intravenous|IM|intramuscular|injection|infusion|surgical|surgery|incision|drain|catheter|lumbar|puncture|biopsy)\b`)
)

// FormatTreatment turns a long single-paragraph treatment excerpt into at most
// five bullet points. Already formatted or short text is returned unchanged.
func FormatTreatment(excerpt string) string {
	if strings.Contains(excerpt, "\n") || strings.Contains(excerpt, bullet) {
		return excerpt
	}
	if textLength(excerpt) <= treatmentBulletThreshold {
		return excerpt
	}

	sep := "."
	if strings.Contains(excerpt, ";") {
		sep = ";"
	}

	var bullets []string
	for _, line := range strings.Split(excerpt, sep) {
		line = strings.TrimSpace(line)
		if textLength(line) <= minClauseLength {
			continue
		}
		line = numberingPrefix.ReplaceAllString(line, "")
		line = dashPrefix.ReplaceAllString(line, "")
		line = bulletPrefix.ReplaceAllString(line, "")
		if procedureTerms.MatchString(line) {
			continue
		}
		bullets = append(bullets, bullet+" "+line)
		if len(bullets) == maxBullets {
			break
		}
	}
	return strings.Join(bullets, "\n")
}

// textLength counts UTF-16 code units, the length a browser reports for the
// same text.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Renderer projects a score report into the review view
type Renderer struct {
	extractor AnswerExtractor
}

// NewRenderer creates a renderer. A nil extractor selects the marker extractor.
func NewRenderer(extractor AnswerExtractor) *Renderer {
	if extractor == nil {
		extractor = NewMarkerExtractor()
	}
	return &Renderer{extractor: extractor}
}

// Render builds the result view. It reads answers for display only.
func (r *Renderer) Render(report *model.ScoreReport, answers model.AnswerSet) *model.ResultView {
	view := &model.ResultView{
		Score:             report.OverallScore,
		Feedback:          report.Feedback,
		Items:             make([]model.ResultItem, 0, len(report.Questions)),
		Topic:             report.Topic,
		DifferentialTopic: report.DifferentialTopic,
	}

	for _, q := range report.Questions {
		item := model.ResultItem{
			Question:   q.Question,
			Field:      q.Field,
			UserAnswer: answers[q.Field],
			Correct:    q.Correct,
			Feedback:   q.Feedback,
		}
		if item.UserAnswer == "" {
			item.UserAnswer = model.NoAnswer
		}
		if !q.Correct && q.Feedback != "" {
			item.CorrectAnswer = r.correctAnswer(q.Feedback, q.Field)
		}
		view.Items = append(view.Items, item)
	}
	return view
}

func (r *Renderer) correctAnswer(feedback, field string) string {
	excerpt, ok := r.extractor.ExtractCorrectAnswer(feedback, field)
	if !ok {
		return ""
	}
	if field == model.FieldTreatment {
		return FormatTreatment(excerpt)
	}
	return excerpt
}
