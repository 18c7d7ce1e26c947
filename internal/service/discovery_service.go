package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"theo-discovery/internal/config"
	"theo-discovery/internal/discovery"
	"theo-discovery/internal/domain"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/nli"
	"theo-discovery/internal/taxonomy"
)

// Engines bundles one instance of every discovery engine.
type Engines struct {
	Pattern       *discovery.PatternEngine
	Anomaly       *discovery.AnomalyEngine
	Connection    *discovery.ConnectionEngine
	Contradiction *discovery.ContradictionEngine
	Gap           *discovery.GapEngine
	Trend         *discovery.TrendEngine
}

// Report is the outcome of one run over a corpus.
type Report struct {
	Snapshot    domain.CorpusSnapshotSummary `json:"snapshot" yaml:"snapshot"`
	Discoveries []domain.Discovery           `json:"discoveries" yaml:"discoveries"`
}

// ByKind returns the discoveries of one kind, in engine ranking order.
func (r *Report) ByKind(kind domain.Kind) []domain.Discovery {
	var out []domain.Discovery
	for _, d := range r.Discoveries {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns the number of discoveries per kind.
func (r *Report) Counts() map[domain.Kind]int {
	counts := make(map[domain.Kind]int, len(domain.Kinds))
	for _, k := range domain.Kinds {
		counts[k] = 0
	}
	for _, d := range r.Discoveries {
		counts[d.Kind]++
	}
	return counts
}

// DiscoveryService runs every engine over one corpus.
type DiscoveryService struct {
	engines       Engines
	historyWindow int
}

// NewDiscoveryService wraps ready engines. historyWindow bounds the
// snapshots read back for trend analysis.
func NewDiscoveryService(engines Engines, historyWindow int) *DiscoveryService {
	return &DiscoveryService{engines: engines, historyWindow: historyWindow}
}

// NewFromConfig assembles the engines described by cfg.
func NewFromConfig(cfg *config.AppConfig) (*DiscoveryService, error) {
	var classifier domain.Classifier
	switch cfg.NLI.Type {
	case "rule", "":
		classifier = nli.NewRuleClassifier()
	case "http":
		httpCfg, err := cfg.HTTPClassifierConfig()
		if err != nil {
			return nil, err
		}
		c, err := nli.NewHTTPClassifier(httpCfg)
		if err != nil {
			return nil, fmt.Errorf("nli classifier init failed: %w", err)
		}
		classifier = c
	default:
		return nil, fmt.Errorf("unknown nli classifier: %s", cfg.NLI.Type)
	}

	catalog := taxonomy.Default()
	if cfg.Taxonomy.Path != "" {
		catalog = taxonomy.FromFile(cfg.Taxonomy.Path)
	}

	var (
		engines Engines
		err     error
	)
	if engines.Pattern, err = discovery.NewPatternEngine(cfg.PatternOptions()); err != nil {
		return nil, err
	}
	if engines.Anomaly, err = discovery.NewAnomalyEngine(cfg.AnomalyOptions()); err != nil {
		return nil, err
	}
	if engines.Connection, err = discovery.NewConnectionEngine(cfg.ConnectionOptions()); err != nil {
		return nil, err
	}
	if engines.Contradiction, err = discovery.NewContradictionEngine(classifier, cfg.ContradictionOptions()); err != nil {
		return nil, err
	}
	if engines.Gap, err = discovery.NewGapEngine(catalog, discovery.DefaultTopicModel, cfg.GapOptions()); err != nil {
		return nil, err
	}
	if engines.Trend, err = discovery.NewTrendEngine(cfg.TrendOptions()); err != nil {
		return nil, err
	}
	return NewDiscoveryService(engines, cfg.Trend.HistoryWindow), nil
}

// Run executes the engines concurrently. The pattern snapshot is appended
// to history before the trend engine reads it back; with a nil history the
// trend engine only sees the new snapshot. The first engine error cancels
// the run.
func (s *DiscoveryService) Run(ctx context.Context, documents []domain.DocumentEmbedding, history domain.SnapshotHistory) (*Report, error) {
	var (
		snapshot                                         domain.CorpusSnapshotSummary
		patterns, anomalies, connections, contradictions []domain.Discovery
		gaps, trends                                     []domain.Discovery
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, snap, err := s.engines.Pattern.Detect(documents)
		if err != nil {
			return fmt.Errorf("pattern engine: %w", err)
		}
		patterns, snapshot = found, snap

		snapshots := []domain.CorpusSnapshotSummary{snap}
		if history != nil {
			if err := history.Append(snap); err != nil {
				return fmt.Errorf("saving snapshot: %w", err)
			}
			if snapshots, err = history.Recent(s.historyWindow); err != nil {
				return fmt.Errorf("reading snapshot history: %w", err)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		trends = s.engines.Trend.Detect(snapshots)
		return nil
	})
	g.Go(func() (err error) {
		anomalies, err = s.engines.Anomaly.Detect(documents)
		if err != nil {
			return fmt.Errorf("anomaly engine: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		connections, err = s.engines.Connection.Detect(documents)
		if err != nil {
			return fmt.Errorf("connection engine: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		contradictions, err = s.engines.Contradiction.Detect(ctx, documents)
		if err != nil {
			return fmt.Errorf("contradiction engine: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		gaps, err = s.engines.Gap.Detect(documents)
		if err != nil {
			return fmt.Errorf("gap engine: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Snapshot: snapshot}
	for _, part := range [][]domain.Discovery{patterns, anomalies, connections, contradictions, gaps, trends} {
		report.Discoveries = append(report.Discoveries, part...)
	}
	if report.Discoveries == nil {
		report.Discoveries = []domain.Discovery{}
	}
	logger.Info("[Service] Discovery run finished", "documents", len(documents), "discoveries", len(report.Discoveries))
	return report, nil
}
