package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"officehourlens/internal/database"
	"officehourlens/internal/logging"
	"officehourlens/internal/models"
)

// ResolvedAnswerPlaceholder is stored when a TA resolves without typing an
// answer, so FAQ entries never carry an empty body.
const ResolvedAnswerPlaceholder = "Resolved by TA."

// QuestionService is the question lifecycle manager: it owns every status
// transition from submission to resolution and triggers the suggestion and
// clustering flows at the right points.
type QuestionService struct {
	db          *database.DB
	suggestions *SuggestionService
	faq         *FAQService
	settings    *SettingsService
	hub         *QueueHub
}

// NewQuestionService creates a new question service
func NewQuestionService(db *database.DB, suggestions *SuggestionService, faq *FAQService, settings *SettingsService, hub *QueueHub) *QuestionService {
	return &QuestionService{
		db:          db,
		suggestions: suggestions,
		faq:         faq,
		settings:    settings,
		hub:         hub,
	}
}

// Submit validates and stores a new question in `open`, with the AI
// suggestion attached. The suggestion call is bounded by the generator
// timeout, so submission never hangs on an unavailable generator.
func (s *QuestionService) Submit(ctx context.Context, req models.CreateQuestionRequest) (*models.SubmitResponse, error) {
	if strings.TrimSpace(req.StudentName) == "" {
		return nil, &ValidationError{Field: "student_name", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.QuestionText) == "" {
		return nil, &ValidationError{Field: "question_text", Message: "must not be empty"}
	}

	suggestion := s.suggestions.Suggest(ctx, req.QuestionText)

	now := time.Now().UTC()
	result, err := s.db.Exec(
		"INSERT INTO questions (student_name, course, question_text, status, ai_answer, ai_sources, resolved_answer, created_at) VALUES (?, ?, ?, ?, ?, ?, '', ?)",
		req.StudentName, req.Course, req.QuestionText, models.StatusOpen, suggestion.Answer, suggestion.Sources, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted question id: %w", err)
	}

	question := models.Question{
		ID:           id,
		StudentName:  req.StudentName,
		Course:       req.Course,
		QuestionText: req.QuestionText,
		Status:       models.StatusOpen,
		AIAnswer:     suggestion.Answer,
		AISources:    suggestion.Sources,
		CreatedAt:    now,
	}

	position, err := s.queuePosition(id)
	if err != nil {
		log.Printf("⚠️  Failed to compute queue position for question %d: %v", id, err)
		position = 0
	}

	s.broadcast(models.QueueEventSubmitted, id)
	logging.WithQuestion(id, req.StudentName).Info("question submitted", "queue_position", position)

	return &models.SubmitResponse{Question: question, QueuePosition: position}, nil
}

// Get returns a single question by id
func (s *QuestionService) Get(id int64) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRow(
		"SELECT id, student_name, course, question_text, status, ai_answer, ai_sources, resolved_answer, created_at FROM questions WHERE id = ?",
		id,
	).Scan(&q.ID, &q.StudentName, &q.Course, &q.QuestionText, &q.Status, &q.AIAnswer, &q.AISources, &q.ResolvedAnswer, &q.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "question", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read question: %w", err)
	}
	return &q, nil
}

// ListQueue returns all open and in-progress questions ordered by submission
// time, earliest first (FIFO fairness).
func (s *QuestionService) ListQueue() ([]models.Question, error) {
	return s.listByStatus(models.StatusOpen, models.StatusInProgress)
}

// ListAll returns every question, earliest first
func (s *QuestionService) ListAll() ([]models.Question, error) {
	return s.listByStatus(models.StatusOpen, models.StatusInProgress, models.StatusResolved)
}

// Start transitions a question from open to in_progress. Any other starting
// state is rejected without mutation.
func (s *QuestionService) Start(id int64) (*models.Question, error) {
	// Guarded update: 0 affected rows means wrong state (or missing id),
	// so two TAs cannot both claim the same question.
	result, err := s.db.Exec(
		"UPDATE questions SET status = ? WHERE id = ? AND status = ?",
		models.StatusInProgress, id, models.StatusOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check start result: %w", err)
	}
	if affected == 0 {
		q, getErr := s.Get(id)
		if getErr != nil {
			return nil, getErr // NotFound
		}
		return nil, &InvalidTransitionError{QuestionID: id, From: q.Status, Op: "start"}
	}

	s.broadcast(models.QueueEventStarted, id)
	return s.Get(id)
}

// Resolve transitions a question to resolved from open or in_progress and
// records the TA's answer. With saveToFAQ the resolution flows into the
// clustering engine under the threshold configured at this moment.
// Resolving an already-resolved question fails and changes nothing.
func (s *QuestionService) Resolve(ctx context.Context, id int64, resolvedAnswer string, saveToFAQ bool) (*models.Question, error) {
	if strings.TrimSpace(resolvedAnswer) == "" {
		resolvedAnswer = ResolvedAnswerPlaceholder
	}

	result, err := s.db.Exec(
		"UPDATE questions SET status = ?, resolved_answer = ? WHERE id = ? AND status IN (?, ?)",
		models.StatusResolved, resolvedAnswer, id, models.StatusOpen, models.StatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve question: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check resolve result: %w", err)
	}
	if affected == 0 {
		q, getErr := s.Get(id)
		if getErr != nil {
			return nil, getErr // NotFound
		}
		return nil, &InvalidTransitionError{QuestionID: id, From: q.Status, Op: "resolve"}
	}

	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if saveToFAQ {
		rlog := logging.WithResolution(slog.Default(), id, saveToFAQ)

		// Threshold is resolved once per operation and passed in, not read
		// from ambient state inside the engine.
		threshold := s.settings.FAQThreshold()
		outcome, err := s.faq.RecordResolution(ctx, q.QuestionText, resolvedAnswer, threshold)
		if err != nil {
			// The question is already resolved; clustering failure must not
			// undo that, but it is loud in the logs.
			rlog.Error("faq clustering failed", "error", err)
		} else if outcome.Merged {
			rlog.Info("resolution merged into existing faq entry",
				"matched_id", outcome.MatchedID, "threshold", threshold)
		} else {
			rlog.Info("resolution saved as new faq entry",
				"entry_id", outcome.Entry.ID, "threshold", threshold)
		}
	}

	s.broadcast(models.QueueEventResolved, id)
	return q, nil
}

// Delete removes a question that has not been resolved yet. Resolved
// questions are the FAQ audit trail and cannot be deleted.
func (s *QuestionService) Delete(id int64) error {
	q, err := s.Get(id)
	if err != nil {
		return err
	}
	if q.Status == models.StatusResolved {
		return &InvalidTransitionError{QuestionID: id, From: q.Status, Op: "delete"}
	}

	if _, err := s.db.Exec("DELETE FROM questions WHERE id = ? AND status != ?", id, models.StatusResolved); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.broadcast(models.QueueEventDeleted, id)
	return nil
}

// QueueDepth returns the number of open and in-progress questions
func (s *QuestionService) QueueDepth() int {
	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM questions WHERE status IN (?, ?)",
		models.StatusOpen, models.StatusInProgress,
	).Scan(&count); err != nil {
		return 0
	}
	return count
}

// queuePosition is the 1-based position among non-resolved questions in
// submission order.
func (s *QuestionService) queuePosition(id int64) (int, error) {
	var position int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM questions WHERE status IN (?, ?) AND id <= ?",
		models.StatusOpen, models.StatusInProgress, id,
	).Scan(&position)
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (s *QuestionService) listByStatus(statuses ...models.QuestionStatus) ([]models.Question, error) {
	placeholders := strings.TrimRight(strings.Repeat("?,", len(statuses)), ",")
	args := make([]interface{}, len(statuses))
	for i, st := range statuses {
		args[i] = st
	}

	rows, err := s.db.Query(
		"SELECT id, student_name, course, question_text, status, ai_answer, ai_sources, resolved_answer, created_at FROM questions WHERE status IN ("+placeholders+") ORDER BY created_at ASC, id ASC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.StudentName, &q.Course, &q.QuestionText, &q.Status, &q.AIAnswer, &q.AISources, &q.ResolvedAnswer, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *QuestionService) broadcast(eventType models.QueueEventType, questionID int64) {
	if s.hub != nil {
		s.hub.Broadcast(eventType, questionID, s.QueueDepth())
	}
}
