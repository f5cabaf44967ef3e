// Package seed loads sample course documents and FAQ entries, used for
// demos and local development. Seeding only fills empty tables and never
// overwrites existing data.
package seed

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"officehourlens/internal/database"
)

// Data is the seed file structure
type Data struct {
	CourseDocs []CourseDoc `yaml:"course_docs"`
	FAQEntries []FAQEntry  `yaml:"faq_entries"`
}

// CourseDoc is one seeded course document
type CourseDoc struct {
	Title      string `yaml:"title"`
	Content    string `yaml:"content"`
	SourceType string `yaml:"source_type"`
}

// FAQEntry is one seeded FAQ entry
type FAQEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Sample returns the built-in demo data used when no seed file is configured
func Sample() Data {
	return Data{
		CourseDocs: []CourseDoc{
			{
				Title:      "HW1: Linear Regression",
				Content:    "Homework 1 covers linear regression, mean squared error, gradient descent, and basic data preprocessing.",
				SourceType: "hw",
			},
			{
				Title:      "Syllabus: Intro to ML",
				Content:    "Course covers supervised learning, regression, classification, neural networks. Homework is due on Fridays at 11:59 PM.",
				SourceType: "syllabus",
			},
		},
		FAQEntries: []FAQEntry{
			{
				Question: "What should I focus on for the midterm?",
				Answer:   "Focus on understanding linear regression, logistic regression, and how to interpret model coefficients. Practice past homework problems and review lecture slides.",
			},
			{
				Question: "Can I submit homework late?",
				Answer:   "You can submit homework up to 48 hours late with a small penalty. After that, submissions are not accepted unless you have prior approval.",
			},
		},
	}
}

// LoadFile parses a YAML seed file
func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return data, nil
}

// Apply inserts seed data into empty tables. Tables that already hold rows
// are left untouched.
func Apply(db *database.DB, data Data) error {
	now := time.Now().UTC()

	var docCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM course_docs").Scan(&docCount); err != nil {
		return fmt.Errorf("failed to count course docs: %w", err)
	}
	if docCount == 0 && len(data.CourseDocs) > 0 {
		for _, doc := range data.CourseDocs {
			if _, err := db.Exec(
				"INSERT INTO course_docs (title, content, source_type, created_at) VALUES (?, ?, ?, ?)",
				doc.Title, doc.Content, doc.SourceType, now,
			); err != nil {
				return fmt.Errorf("failed to seed course doc %q: %w", doc.Title, err)
			}
		}
		log.Printf("🌱 Seeded %d course docs", len(data.CourseDocs))
	}

	var faqCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM faq_entries").Scan(&faqCount); err != nil {
		return fmt.Errorf("failed to count FAQ entries: %w", err)
	}
	if faqCount == 0 && len(data.FAQEntries) > 0 {
		for _, entry := range data.FAQEntries {
			if _, err := db.Exec(
				"INSERT INTO faq_entries (question, answer, cluster_id, cluster_name, ask_count, created_at) VALUES (?, ?, NULL, '', 1, ?)",
				entry.Question, entry.Answer, now,
			); err != nil {
				return fmt.Errorf("failed to seed FAQ entry %q: %w", entry.Question, err)
			}
		}
		log.Printf("🌱 Seeded %d FAQ entries", len(data.FAQEntries))
	}

	return nil
}
