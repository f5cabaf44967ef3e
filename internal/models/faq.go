package models

import "time"

// FAQEntry is a resolved question saved into the FAQ.
// ClusterID is nil while the entry is an unclustered singleton.
type FAQEntry struct {
	ID          int64     `json:"id" db:"id"`
	Question    string    `json:"question" db:"question"`
	Answer      string    `json:"answer" db:"answer"`
	ClusterID   *int64    `json:"cluster_id,omitempty" db:"cluster_id"`
	ClusterName string    `json:"cluster_name,omitempty" db:"cluster_name"`
	AskCount    int       `json:"ask_count" db:"ask_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FAQCluster groups the entries sharing one cluster id for display.
// TimesAsked is the sum of the member ask counts.
type FAQCluster struct {
	ClusterID   *int64     `json:"cluster_id"`
	ClusterName string     `json:"cluster_name"`
	TimesAsked  int        `json:"times_asked"`
	Entries     []FAQEntry `json:"entries"`
}

// FAQListResponse is the grouped FAQ listing: named clusters in
// first-creation order, then a trailing group for unclustered entries.
type FAQListResponse struct {
	Clusters []FAQCluster `json:"clusters"`
}
