package model

import "time"

// Attempt is an archived, completed case
type Attempt struct {
	ID                  string      `json:"id" bson:"_id"`
	TabID               string      `json:"tabId" bson:"tabId"`
	CaseID              string      `json:"caseId" bson:"caseId"`
	PresentingComplaint string      `json:"presentingComplaint" bson:"presentingComplaint"`
	Score               int         `json:"score" bson:"score"`
	Answers             AnswerSet   `json:"answers" bson:"answers"`
	Results             *ResultView `json:"results" bson:"results"`
	CompletedAt         time.Time   `json:"completedAt" bson:"completedAt"`
}
