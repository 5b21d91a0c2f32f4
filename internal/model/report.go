package model

// ScoreReport is the backend's evaluation of a submitted AnswerSet
type ScoreReport struct {
	OverallScore      int              `json:"score" bson:"score"` // 0-100
	Feedback          string           `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Questions         []QuestionResult `json:"questions" bson:"questions"`
	Topic             string           `json:"topic,omitempty" bson:"topic,omitempty"`
	DifferentialTopic string           `json:"differential_topic,omitempty" bson:"differentialTopic,omitempty"`
}

// ResultItem is one reviewed question
type ResultItem struct {
	Question      string `json:"question" bson:"question"`
	Field         string `json:"field" bson:"field"`
	UserAnswer    string `json:"userAnswer" bson:"userAnswer"`
	Correct       bool   `json:"correct" bson:"correct"`
	Feedback      string `json:"feedback,omitempty" bson:"feedback,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty" bson:"correctAnswer,omitempty"`
}

// ResultView is the review screen shown after scoring
type ResultView struct {
	Score             int          `json:"score" bson:"score"`
	Feedback          string       `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Items             []ResultItem `json:"items" bson:"items"`
	Topic             string       `json:"topic,omitempty" bson:"topic,omitempty"`
	DifferentialTopic string       `json:"differentialTopic,omitempty" bson:"differentialTopic,omitempty"`
}

// NoAnswer is displayed when the answer set has nothing for a reviewed field
const NoAnswer = "No answer provided"
