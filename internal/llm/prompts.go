package llm

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Prompts holds the prompt templates used by the suggestion composer and the
// cluster-naming call. Templates use %s verbs filled in template order.
type Prompts struct {
	// Suggestion takes (context block, student question)
	Suggestion string `yaml:"suggestion"`
	// ClusterName takes (bullet list of member questions)
	ClusterName string `yaml:"cluster_name"`
}

const defaultSuggestionPrompt = "You are a helpful university teaching assistant helping a student during office hours. " +
	"Below is some context from course documents and past questions, followed by the student's question. " +
	"Use the context when it is relevant. If you are not sure, say you are not completely sure and suggest what to ask the TA.\n\n" +
	"CONTEXT:\n%s\n\n" +
	"STUDENT QUESTION:\n%s\n\n" +
	"Give a concise, student-friendly answer (2-5 sentences)."

const defaultClusterNamePrompt = "You are analyzing student questions from a course. Below are related questions that have been grouped together. " +
	"Generate a short, descriptive topic name (2-5 words) that captures the main theme of these questions.\n\n" +
	"Questions:\n%s\n\n" +
	"Topic name (2-5 words only):"

// PromptStore serves the current prompt templates. Defaults are compiled in;
// an optional YAML file overrides them and is hot-reloaded on change.
type PromptStore struct {
	mu      sync.RWMutex
	prompts Prompts
}

// NewPromptStore returns a store with the built-in templates
func NewPromptStore() *PromptStore {
	return &PromptStore{
		prompts: Prompts{
			Suggestion:  defaultSuggestionPrompt,
			ClusterName: defaultClusterNamePrompt,
		},
	}
}

// SuggestionPrompt renders the suggestion prompt for a context block and question
func (ps *PromptStore) SuggestionPrompt(contextBlock, question string) string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return fmt.Sprintf(ps.prompts.Suggestion, contextBlock, question)
}

// ClusterNamePrompt renders the topic-naming prompt for a set of questions
func (ps *PromptStore) ClusterNamePrompt(questions []string) string {
	// Limit to 5 questions to keep the prompt bounded
	if len(questions) > 5 {
		questions = questions[:5]
	}
	var b strings.Builder
	for _, q := range questions {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return fmt.Sprintf(ps.prompts.ClusterName, strings.TrimRight(b.String(), "\n"))
}

// LoadFile replaces templates from a YAML file. Missing keys keep the
// built-in default. A broken file leaves current templates untouched.
func (ps *PromptStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read prompts file: %w", err)
	}

	var loaded Prompts
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if loaded.Suggestion != "" {
		ps.prompts.Suggestion = loaded.Suggestion
	}
	if loaded.ClusterName != "" {
		ps.prompts.ClusterName = loaded.ClusterName
	}
	return nil
}

// Watch reloads the prompts file whenever it changes. Blocks; run in a
// goroutine. Watches the containing directory, which is more reliable than
// watching the file itself across editors that replace-on-save.
func (ps *PromptStore) Watch(path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create prompts file watcher: %v", err)
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", path, err)
		watcher.Close()
		return
	}

	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for prompt changes (hot-reload enabled)", path)

	// Debounce rapid write events from editors
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := ps.LoadFile(absPath); err != nil {
						log.Printf("❌ Failed to reload prompts: %v", err)
					} else {
						log.Printf("🔄 Prompts reloaded from %s", path)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  Prompts file watcher error: %v", err)
		}
	}
}
