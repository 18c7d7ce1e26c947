package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the Discovery variants.
type Kind string

const (
	KindPattern       Kind = "pattern"
	KindAnomaly       Kind = "anomaly"
	KindConnection    Kind = "connection"
	KindContradiction Kind = "contradiction"
	KindGap           Kind = "gap"
	KindTrend         Kind = "trend"
)

// Kinds lists every variant in engine order.
var Kinds = []Kind{KindPattern, KindAnomaly, KindConnection, KindContradiction, KindGap, KindTrend}

// Discovery is one ranked insight about a corpus. Exactly one of the detail
// pointers is set and it always matches Kind.
type Discovery struct {
	ID             string         `json:"id" yaml:"id"`
	Kind           Kind           `json:"kind" yaml:"kind"`
	Title          string         `json:"title" yaml:"title"`
	Description    string         `json:"description" yaml:"description"`
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	RelevanceScore float64        `json:"relevance_score" yaml:"relevance_score"`
	Metadata       map[string]any `json:"metadata" yaml:"metadata"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`

	Pattern       *PatternDetails       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Anomaly       *AnomalyDetails       `json:"anomaly,omitempty" yaml:"anomaly,omitempty"`
	Connection    *ConnectionDetails    `json:"connection,omitempty" yaml:"connection,omitempty"`
	Contradiction *ContradictionDetails `json:"contradiction,omitempty" yaml:"contradiction,omitempty"`
	Gap           *GapDetails           `json:"gap,omitempty" yaml:"gap,omitempty"`
	Trend         *TrendDetails         `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// RelatedDocuments returns the document ids the discovery refers to,
// whatever its variant.
func (d Discovery) RelatedDocuments() []string {
	switch d.Kind {
	case KindPattern:
		if d.Pattern != nil {
			return d.Pattern.RelatedDocuments
		}
	case KindAnomaly:
		if d.Anomaly != nil {
			return []string{d.Anomaly.DocumentID}
		}
	case KindConnection:
		if d.Connection != nil {
			return d.Connection.RelatedDocuments
		}
	case KindContradiction:
		if d.Contradiction != nil {
			return []string{d.Contradiction.DocumentAID, d.Contradiction.DocumentBID}
		}
	case KindGap:
		if d.Gap != nil {
			return d.Gap.RelatedDocuments
		}
	}
	return nil
}

// PatternDetails describes a thematic cluster.
type PatternDetails struct {
	RelatedDocuments []string `json:"related_documents" yaml:"related_documents"`
	SharedThemes     []string `json:"shared_themes" yaml:"shared_themes"`
	VerseIDs         []int    `json:"verse_ids" yaml:"verse_ids"`
	Titles           []string `json:"titles" yaml:"titles"`
	ClusterSize      int      `json:"cluster_size" yaml:"cluster_size"`
	CoreRatio        float64  `json:"core_ratio" yaml:"core_ratio"`
	ClusterStrength  float64  `json:"cluster_strength" yaml:"cluster_strength"`
}

// AnomalyDetails describes a statistically atypical document.
type AnomalyDetails struct {
	DocumentID    string   `json:"document_id" yaml:"document_id"`
	AnomalyScore  float64  `json:"anomaly_score" yaml:"anomaly_score"`
	DecisionScore float64  `json:"decision_score" yaml:"decision_score"`
	Topics        []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}

// ConnectionEdge is one pruned edge of the projected document graph.
type ConnectionEdge struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SharedVerses []int  `json:"shared_verses" yaml:"shared_verses"`
}

// ConnectionDetails describes a group of documents linked by shared references.
type ConnectionDetails struct {
	RelatedDocuments []string         `json:"related_documents" yaml:"related_documents"`
	SharedVerses     []int            `json:"shared_verses" yaml:"shared_verses"`
	SharedTopics     []string         `json:"shared_topics" yaml:"shared_topics"`
	Edges            []ConnectionEdge `json:"edges" yaml:"edges"`
	Density          float64          `json:"density" yaml:"density"`
	MaxEdgeWeight    int              `json:"max_edge_weight" yaml:"max_edge_weight"`
}

// ContradictionType classifies what a contradiction is about.
type ContradictionType string

const (
	ContradictionTheological ContradictionType = "theological"
	ContradictionHistorical  ContradictionType = "historical"
	ContradictionTextual     ContradictionType = "textual"
	ContradictionLogical     ContradictionType = "logical"
)

// ContradictionDetails describes two documents whose claims conflict.
type ContradictionDetails struct {
	DocumentAID        string            `json:"document_a_id" yaml:"document_a_id"`
	DocumentBID        string            `json:"document_b_id" yaml:"document_b_id"`
	DocumentATitle     string            `json:"document_a_title" yaml:"document_a_title"`
	DocumentBTitle     string            `json:"document_b_title" yaml:"document_b_title"`
	ClaimA             string            `json:"claim_a" yaml:"claim_a"`
	ClaimB             string            `json:"claim_b" yaml:"claim_b"`
	ContradictionType  ContradictionType `json:"contradiction_type" yaml:"contradiction_type"`
	ContradictionScore float64           `json:"contradiction_score" yaml:"contradiction_score"`
	SharedTopics       []string          `json:"shared_topics" yaml:"shared_topics"`
}

// GapDetails describes a reference topic the corpus under-covers.
type GapDetails struct {
	ReferenceTopic   string   `json:"reference_topic" yaml:"reference_topic"`
	MissingKeywords  []string `json:"missing_keywords" yaml:"missing_keywords"`
	SharedKeywords   []string `json:"shared_keywords" yaml:"shared_keywords"`
	RelatedDocuments []string `json:"related_documents" yaml:"related_documents"`
	Scriptures       []string `json:"scriptures,omitempty" yaml:"scriptures,omitempty"`
	Similarity       float64  `json:"similarity" yaml:"similarity"`
	CoverageRatio    float64  `json:"coverage_ratio" yaml:"coverage_ratio"`
	GapIntensity     float64  `json:"gap_intensity" yaml:"gap_intensity"`
}

// TrendDirection is "up" or "down".
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
)

// TrendPoint is the share of a topic in one snapshot, in percent.
type TrendPoint struct {
	Date         time.Time `json:"date" yaml:"date"`
	SharePercent float64   `json:"share" yaml:"share"`
}

// TrendDetails describes a topic whose share moved across snapshots.
type TrendDetails struct {
	Topic         string         `json:"topic" yaml:"topic"`
	Change        float64        `json:"change" yaml:"change"`
	Direction     TrendDirection `json:"direction" yaml:"direction"`
	BaselineShare float64        `json:"baseline_share" yaml:"baseline_share"`
	LatestShare   float64        `json:"latest_share" yaml:"latest_share"`
	History       []TrendPoint   `json:"history" yaml:"history"`
}

// DiscoveryID derives a stable identifier from the discovery kind, its
// title and the documents it refers to.
func DiscoveryID(kind Kind, title string, related []string) string {
	name := string(kind) + "\x00" + title + "\x00" + strings.Join(related, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
