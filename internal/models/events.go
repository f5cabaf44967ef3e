package models

import "time"

// QueueEventType identifies what changed in the queue
type QueueEventType string

const (
	QueueEventSubmitted QueueEventType = "question_submitted"
	QueueEventStarted   QueueEventType = "question_started"
	QueueEventResolved  QueueEventType = "question_resolved"
	QueueEventDeleted   QueueEventType = "question_deleted"
)

// QueueEvent is pushed to connected TA dashboards whenever the queue changes
type QueueEvent struct {
	Type       QueueEventType `json:"type"`
	QuestionID int64          `json:"question_id"`
	QueueDepth int            `json:"queue_depth"`
	Timestamp  time.Time      `json:"timestamp"`
}
