package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithQuestion returns a logger with question context fields attached.
// Use this for all logging along a single question's lifecycle.
func WithQuestion(questionID int64, studentName string) *slog.Logger {
	return slog.With(
		"question_id", questionID,
		"student_name", studentName,
	)
}

// WithResolution returns a logger scoped to one resolution flowing into the
// FAQ clustering engine.
func WithResolution(logger *slog.Logger, questionID int64, saveToFAQ bool) *slog.Logger {
	return logger.With(
		"question_id", questionID,
		"save_to_faq", saveToFAQ,
	)
}
