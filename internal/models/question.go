package models

import "time"

// QuestionStatus is the lifecycle state of a queue question
type QuestionStatus string

const (
	StatusOpen       QuestionStatus = "open"
	StatusInProgress QuestionStatus = "in_progress"
	StatusResolved   QuestionStatus = "resolved"
)

// Question is a student question in the office-hours queue
type Question struct {
	ID             int64          `json:"id" db:"id"`
	StudentName    string         `json:"student_name" db:"student_name"`
	Course         string         `json:"course,omitempty" db:"course"`
	QuestionText   string         `json:"question_text" db:"question_text"`
	Status         QuestionStatus `json:"status" db:"status"`
	AIAnswer       string         `json:"ai_answer,omitempty" db:"ai_answer"`
	AISources      string         `json:"ai_sources,omitempty" db:"ai_sources"`
	ResolvedAnswer string         `json:"resolved_answer,omitempty" db:"resolved_answer"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// CreateQuestionRequest is the payload for submitting a new question
type CreateQuestionRequest struct {
	StudentName  string `json:"student_name"`
	Course       string `json:"course"`
	QuestionText string `json:"question_text"`
}

// ResolveQuestionRequest is the payload for resolving a question
type ResolveQuestionRequest struct {
	ResolvedAnswer string `json:"resolved_answer"`
	SaveToFAQ      bool   `json:"save_to_faq"`
}

// SubmitResponse is returned after a successful submission.
// QueuePosition is the 1-based position among non-resolved questions.
type SubmitResponse struct {
	Question
	QueuePosition int `json:"queue_position"`
}

// QueueResponse wraps the ordered list of waiting questions
type QueueResponse struct {
	Questions []Question `json:"questions"`
}
