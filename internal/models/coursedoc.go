package models

import "time"

// CourseDoc is an uploaded course document used as retrieval context
type CourseDoc struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	SourceType string    `json:"source_type" db:"source_type"` // syllabus, hw, slides, notes, other
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateCourseDocRequest is the payload for adding a course document
type CreateCourseDocRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}
