package services

import (
	"context"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"officehourlens/internal/llm"
	"officehourlens/internal/retrieval"
)

const (
	// FallbackAnswer is served whenever generation is unavailable or there is
	// no usable context. It must never fail a submission.
	FallbackAnswer = "I couldn't generate an automatic answer right now. " +
		"Please ask the TA, and consider checking your lecture notes and assignment description."

	contextTopK        = 5   // ranked units offered to the generator
	contextSnippetLen  = 600 // max runes per unit body in the prompt
	suggestionCacheTTL = 5 * time.Minute
)

// Suggestion is a composed AI answer with its provenance
type Suggestion struct {
	Answer  string
	Sources string // comma-joined unit labels, empty when no context was used
}

// SuggestionService composes retrieval-augmented answer suggestions.
// It ranks the corpus (course docs + FAQ entries) against the question,
// prompts the external generator with the top matches, and degrades to a
// fixed fallback when the generator is unreachable.
type SuggestionService struct {
	docs     *CourseDocService
	faq      *FAQService
	generate llm.GenerateFunc
	prompts  *llm.PromptStore
	cache    *gocache.Cache
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(docs *CourseDocService, faq *FAQService, generate llm.GenerateFunc, prompts *llm.PromptStore) *SuggestionService {
	return &SuggestionService{
		docs:     docs,
		faq:      faq,
		generate: generate,
		prompts:  prompts,
		cache:    gocache.New(suggestionCacheTTL, 10*time.Minute),
	}
}

// Suggest builds a suggestion for the question text. It never returns an
// error: generator failure, an empty corpus, or a missing generator all
// produce the fallback answer with empty sources.
func (s *SuggestionService) Suggest(ctx context.Context, questionText string) Suggestion {
	cacheKey := strings.Join(retrieval.Tokenize(questionText), " ")
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(Suggestion)
	}

	start := time.Now()
	suggestion := s.compose(ctx, questionText)
	if m := GetMetrics(); m != nil {
		m.RecordSuggestion(time.Since(start).Seconds())
	}

	// Only successful generations are worth reusing; a fallback served while
	// the generator is down should not mask it coming back.
	if suggestion.Answer != FallbackAnswer {
		s.cache.Set(cacheKey, suggestion, gocache.DefaultExpiration)
	}
	return suggestion
}

func (s *SuggestionService) compose(ctx context.Context, questionText string) Suggestion {
	units, err := s.corpusUnits()
	if err != nil {
		log.Printf("⚠️  Failed to load corpus for suggestion: %v", err)
		return Suggestion{Answer: FallbackAnswer}
	}

	chosen := selectContext(questionText, units)
	if len(chosen) == 0 || s.generate == nil {
		return Suggestion{Answer: FallbackAnswer}
	}

	var contextBlock strings.Builder
	labels := make([]string, 0, len(chosen))
	for _, m := range chosen {
		labels = append(labels, m.Unit.Label)
		contextBlock.WriteString(m.Unit.Label)
		contextBlock.WriteString(": ")
		contextBlock.WriteString(truncate(m.Unit.Body, contextSnippetLen))
		contextBlock.WriteString("\n")
	}

	prompt := s.prompts.SuggestionPrompt(strings.TrimRight(contextBlock.String(), "\n"), questionText)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("⚠️  Generation failed, serving fallback: %v", err)
		if m := GetMetrics(); m != nil {
			m.RecordGeneratorFailure()
		}
		return Suggestion{Answer: FallbackAnswer}
	}

	return Suggestion{
		Answer:  strings.TrimSpace(answer),
		Sources: strings.Join(labels, ", "),
	}
}

// corpusUnits merges course docs and FAQ entries into one ranked pool.
// Docs come first so that on exact score ties provenance favors authored
// course material over prior answers.
func (s *SuggestionService) corpusUnits() ([]retrieval.Unit, error) {
	units, err := s.docs.Units()
	if err != nil {
		return nil, err
	}
	faqUnits, err := s.faq.Units()
	if err != nil {
		return nil, err
	}
	return append(units, faqUnits...), nil
}

// selectContext picks the units worth prompting with: the top-k with a
// positive score, or, when nothing matches lexically, the two earliest units
// so the generator still sees some course material.
func selectContext(questionText string, units []retrieval.Unit) []retrieval.Match {
	matches := retrieval.Rank(questionText, units, len(units))
	if len(matches) == 0 {
		return nil
	}

	nonZero := make([]retrieval.Match, 0, contextTopK)
	for _, m := range matches {
		if m.Score > 0 {
			nonZero = append(nonZero, m)
			if len(nonZero) == contextTopK {
				break
			}
		}
	}
	if len(nonZero) > 0 {
		return nonZero
	}

	if len(matches) > 2 {
		matches = matches[:2]
	}
	return matches
}

func truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
