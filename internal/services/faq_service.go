package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"officehourlens/internal/database"
	"officehourlens/internal/llm"
	"officehourlens/internal/models"
	"officehourlens/internal/retrieval"
)

const clusterNameTimeout = 10 * time.Second

// UnclusteredHeader labels the trailing FAQ group of singleton entries
const UnclusteredHeader = "Other Questions"

// ResolutionOutcome describes what the clustering engine did with one
// resolved question.
type ResolutionOutcome struct {
	Merged    bool            // true when the resolution matched an existing entry
	Entry     models.FAQEntry // the entry created for this resolution
	MatchedID int64           // id of the incremented entry when Merged
}

// FAQService is the adaptive FAQ store and clustering engine. Each saved
// resolution is either merged into an existing topic cluster or becomes a new
// unclustered entry, decided by ranking against the current FAQ pool and a
// similarity threshold.
type FAQService struct {
	db       *database.DB
	generate llm.GenerateFunc
	prompts  *llm.PromptStore

	// mu serializes clustering decisions. The transaction alone is not
	// mutual exclusion on MySQL: under snapshot isolation two concurrent
	// resolutions can both read "no match" and insert duplicate singletons.
	mu sync.Mutex
}

// NewFAQService creates a new FAQ service. generate may be nil; cluster
// naming then always uses the lexical fallback.
func NewFAQService(db *database.DB, generate llm.GenerateFunc, prompts *llm.PromptStore) *FAQService {
	return &FAQService{db: db, generate: generate, prompts: prompts}
}

// RecordResolution runs the clustering decision for a newly resolved
// question/answer pair under the given similarity threshold. The whole
// match-then-increment-or-create sequence runs under the service mutex and
// inside one transaction, so two concurrent resolutions cannot both miss the
// same candidate and create duplicate singletons.
func (s *FAQService) RecordResolution(ctx context.Context, questionText, answer string, threshold float64) (*ResolutionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin clustering transaction: %w", err)
	}
	defer tx.Rollback()

	entries, err := scanEntries(tx.Query(
		"SELECT id, question, answer, cluster_id, cluster_name, ask_count, created_at FROM faq_entries ORDER BY id ASC",
	))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	matched := bestMatch(questionText, entries, threshold)
	if matched == nil {
		// No duplicate above threshold: new unclustered entry, a clustering
		// candidate for future resolutions.
		entry, err := insertEntry(tx, questionText, answer, nil, "", now)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit clustering transaction: %w", err)
		}
		if m := GetMetrics(); m != nil {
			m.RecordResolution("new")
		}
		return &ResolutionOutcome{Merged: false, Entry: *entry}, nil
	}

	clusterID := matched.ClusterID
	clusterName := matched.ClusterName
	freshCluster := clusterID == nil

	if freshCluster {
		// The matched singleton becomes the seed of a new two-member cluster.
		id, err := nextClusterID(tx)
		if err != nil {
			return nil, err
		}
		clusterID = &id
		clusterName = firstWords(matched.Question, 5)
	}

	if _, err := tx.Exec(
		"UPDATE faq_entries SET ask_count = ask_count + 1, cluster_id = ?, cluster_name = ? WHERE id = ?",
		*clusterID, clusterName, matched.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update matched FAQ entry: %w", err)
	}

	// Both phrasings are kept: the new resolution joins the cluster as its
	// own entry instead of overwriting the canonical one.
	entry, err := insertEntry(tx, questionText, answer, clusterID, clusterName, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit clustering transaction: %w", err)
	}

	if m := GetMetrics(); m != nil {
		m.RecordResolution("merged")
	}

	if freshCluster {
		// Upgrade the lexical label to a generated topic name off the request
		// path. Naming failure never affects the stored cluster.
		go s.nameCluster(*clusterID, []string{matched.Question, questionText})
	}

	return &ResolutionOutcome{Merged: true, Entry: *entry, MatchedID: matched.ID}, nil
}

// bestMatch scores the question pairwise against every entry's question and
// returns the top entry when its similarity reaches the threshold. Pairwise
// scores (not pool-normalized ones) are used here so the threshold keeps its
// meaning as an absolute cutoff. Earliest entry wins exact ties.
func bestMatch(questionText string, entries []models.FAQEntry, threshold float64) *models.FAQEntry {
	var best *models.FAQEntry
	bestScore := 0.0

	for i := range entries {
		score := retrieval.Similarity(questionText, entries[i].Question)
		if score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}

	if bestScore < threshold {
		return nil
	}
	return best
}

// List returns the FAQ grouped for display: clusters in first-creation
// order with entries in creation order, then unclustered entries under a
// generic header. A cluster's times-asked is the sum of member ask counts.
func (s *FAQService) List() (models.FAQListResponse, error) {
	entries, err := scanEntries(s.db.Query(
		"SELECT id, question, answer, cluster_id, cluster_name, ask_count, created_at FROM faq_entries ORDER BY id ASC",
	))
	if err != nil {
		return models.FAQListResponse{}, err
	}

	clusterIndex := make(map[int64]int)
	clusters := []models.FAQCluster{}
	var unclustered models.FAQCluster

	for _, e := range entries {
		if e.ClusterID == nil {
			unclustered.Entries = append(unclustered.Entries, e)
			unclustered.TimesAsked += e.AskCount
			continue
		}

		idx, ok := clusterIndex[*e.ClusterID]
		if !ok {
			idx = len(clusters)
			clusterIndex[*e.ClusterID] = idx
			clusters = append(clusters, models.FAQCluster{
				ClusterID:   e.ClusterID,
				ClusterName: e.ClusterName,
			})
		}
		clusters[idx].Entries = append(clusters[idx].Entries, e)
		clusters[idx].TimesAsked += e.AskCount
	}

	if len(unclustered.Entries) > 0 {
		unclustered.ClusterName = UnclusteredHeader
		clusters = append(clusters, unclustered)
	}

	return models.FAQListResponse{Clusters: clusters}, nil
}

// Entries returns all FAQ entries in creation order
func (s *FAQService) Entries() ([]models.FAQEntry, error) {
	return scanEntries(s.db.Query(
		"SELECT id, question, answer, cluster_id, cluster_name, ask_count, created_at FROM faq_entries ORDER BY id ASC",
	))
}

// DeleteAll clears all FAQ entries and their cluster assignments
func (s *FAQService) DeleteAll() error {
	if _, err := s.db.Exec("DELETE FROM faq_entries"); err != nil {
		return fmt.Errorf("failed to delete FAQ entries: %w", err)
	}
	return nil
}

// Units returns FAQ entries as retrieval units for the suggestion composer.
// Question and answer are combined so either side can match a query.
func (s *FAQService) Units() ([]retrieval.Unit, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	units := make([]retrieval.Unit, 0, len(entries))
	for _, e := range entries {
		units = append(units, retrieval.Unit{
			ID:    e.ID,
			Label: "FAQ",
			Body:  fmt.Sprintf("Q: %s \nA: %s", e.Question, e.Answer),
		})
	}
	return units, nil
}

// nameCluster asks the generator for a short topic name and applies it to
// every entry in the cluster. Best-effort: the lexical fallback name stays on
// any failure.
func (s *FAQService) nameCluster(clusterID int64, questions []string) {
	if s.generate == nil || s.prompts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), clusterNameTimeout)
	defer cancel()

	raw, err := s.generate(ctx, s.prompts.ClusterNamePrompt(questions))
	if err != nil {
		log.Printf("⚠️  Cluster naming failed for cluster %d: %v", clusterID, err)
		return
	}

	name := cleanClusterName(raw)
	if name == "" {
		return
	}

	if _, err := s.db.Exec(
		"UPDATE faq_entries SET cluster_name = ? WHERE cluster_id = ?",
		name, clusterID,
	); err != nil {
		log.Printf("⚠️  Failed to store cluster name for cluster %d: %v", clusterID, err)
		return
	}
	log.Printf("🏷️  Cluster %d named %q", clusterID, name)
}

// cleanClusterName normalizes a generated topic name: first line only,
// quotes stripped, capped at 50 runes on a word boundary.
func cleanClusterName(raw string) string {
	name := strings.TrimSpace(raw)
	if idx := strings.IndexByte(name, '\n'); idx >= 0 {
		name = name[:idx]
	}
	name = strings.Trim(name, `"' `)
	if runes := []rune(name); len(runes) > 50 {
		cut := string(runes[:50])
		if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
			cut = cut[:idx]
		}
		name = cut + "..."
	}
	return name
}

// firstWords builds the lexical fallback cluster label from a question
func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func nextClusterID(tx *sql.Tx) (int64, error) {
	var maxID sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(cluster_id) FROM faq_entries").Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate cluster id: %w", err)
	}
	if !maxID.Valid {
		return 1, nil
	}
	return maxID.Int64 + 1, nil
}

func insertEntry(tx *sql.Tx, question, answer string, clusterID *int64, clusterName string, now time.Time) (*models.FAQEntry, error) {
	var cid interface{}
	if clusterID != nil {
		cid = *clusterID
	}

	result, err := tx.Exec(
		"INSERT INTO faq_entries (question, answer, cluster_id, cluster_name, ask_count, created_at) VALUES (?, ?, ?, ?, 1, ?)",
		question, answer, cid, clusterName, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert FAQ entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted FAQ entry id: %w", err)
	}

	return &models.FAQEntry{
		ID:          id,
		Question:    question,
		Answer:      answer,
		ClusterID:   clusterID,
		ClusterName: clusterName,
		AskCount:    1,
		CreatedAt:   now,
	}, nil
}

// scanEntries adapts a Query result into FAQ entries
func scanEntries(rows *sql.Rows, err error) ([]models.FAQEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query FAQ entries: %w", err)
	}
	defer rows.Close()

	entries := []models.FAQEntry{}
	for rows.Next() {
		var e models.FAQEntry
		var clusterID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &clusterID, &e.ClusterName, &e.AskCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan FAQ entry: %w", err)
		}
		if clusterID.Valid {
			v := clusterID.Int64
			e.ClusterID = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
