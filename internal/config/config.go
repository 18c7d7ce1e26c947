package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"theo-discovery/internal/discovery"
	"theo-discovery/internal/nli"
)

// PatternConfig configures thematic clustering.
type PatternConfig struct {
	Eps            float64 `yaml:"eps"`
	MinClusterSize int     `yaml:"min_cluster_size"`
}

// AnomalyConfig configures outlier detection.
type AnomalyConfig struct {
	Contamination float64 `yaml:"contamination"`
	MinDocuments  int     `yaml:"min_documents"`
	MaxAnomalies  int     `yaml:"max_anomalies"`
	NEstimators   int     `yaml:"n_estimators"`
	MaxSamples    int     `yaml:"max_samples"`
	Seed          uint64  `yaml:"seed"`
}

// ConnectionConfig configures the shared-reference graph.
type ConnectionConfig struct {
	MinSharedVerses int `yaml:"min_shared_verses"`
	MinDocuments    int `yaml:"min_documents"`
	MaxResults      int `yaml:"max_results"`
}

// ContradictionConfig configures pairwise claim comparison.
type ContradictionConfig struct {
	Threshold     float64 `yaml:"contradiction_threshold"`
	MinConfidence float64 `yaml:"min_confidence"`
	MaxResults    int     `yaml:"max_results"`
}

// GapConfig configures the taxonomy diff.
type GapConfig struct {
	MinSimilarity float64 `yaml:"min_similarity"`
	MaxResults    int     `yaml:"max_results"`
	TopicKeywords int     `yaml:"topic_keywords"`
}

// TrendConfig configures snapshot comparison.
type TrendConfig struct {
	HistoryWindow    int     `yaml:"history_window"`
	MinSnapshots     int     `yaml:"min_snapshots"`
	MinPercentChange float64 `yaml:"min_percent_change"`
	MaxTrends        int     `yaml:"max_trends"`
}

// HTTPNLIConfig holds connection details for a remote NLI service.
type HTTPNLIConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// NLIConfig selects the contradiction classifier: "rule" or "http".
type NLIConfig struct {
	Type string         `yaml:"type"`
	HTTP *HTTPNLIConfig `yaml:"http,omitempty"`
}

// TaxonomyConfig points at a reference taxonomy file. Empty uses the
// embedded default.
type TaxonomyConfig struct {
	Path string `yaml:"path"`
}

// HistoryConfig points at the snapshot history file. Empty keeps history
// in memory for the current run only.
type HistoryConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries"`
}

// LoggingConfig configures console logging.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Pattern       PatternConfig       `yaml:"pattern"`
	Anomaly       AnomalyConfig       `yaml:"anomaly"`
	Connection    ConnectionConfig    `yaml:"connection"`
	Contradiction ContradictionConfig `yaml:"contradiction"`
	Gap           GapConfig           `yaml:"gap"`
	Trend         TrendConfig         `yaml:"trend"`
	NLI           NLIConfig           `yaml:"nli"`
	Taxonomy      TaxonomyConfig      `yaml:"taxonomy"`
	History       HistoryConfig       `yaml:"history"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./discovery.yaml first, then ~/.config/theo-discovery/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "discovery.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "theo-discovery", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{NLI: NLIConfig{Type: "rule"}}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	pattern := discovery.DefaultPatternOptions()
	if cfg.Pattern.Eps == 0 {
		cfg.Pattern.Eps = pattern.Eps
	}
	if cfg.Pattern.MinClusterSize == 0 {
		cfg.Pattern.MinClusterSize = pattern.MinClusterSize
	}

	anomaly := discovery.DefaultAnomalyOptions()
	if cfg.Anomaly.Contamination == 0 {
		cfg.Anomaly.Contamination = anomaly.Contamination
	}
	if cfg.Anomaly.MinDocuments == 0 {
		cfg.Anomaly.MinDocuments = anomaly.MinDocuments
	}
	if cfg.Anomaly.MaxAnomalies == 0 {
		cfg.Anomaly.MaxAnomalies = anomaly.MaxAnomalies
	}
	if cfg.Anomaly.NEstimators == 0 {
		cfg.Anomaly.NEstimators = anomaly.NEstimators
	}
	if cfg.Anomaly.MaxSamples == 0 {
		cfg.Anomaly.MaxSamples = anomaly.MaxSamples
	}
	if cfg.Anomaly.Seed == 0 {
		cfg.Anomaly.Seed = anomaly.Seed
	}

	connection := discovery.DefaultConnectionOptions()
	if cfg.Connection.MinSharedVerses == 0 {
		cfg.Connection.MinSharedVerses = connection.MinSharedVerses
	}
	if cfg.Connection.MinDocuments == 0 {
		cfg.Connection.MinDocuments = connection.MinDocuments
	}
	if cfg.Connection.MaxResults == 0 {
		cfg.Connection.MaxResults = connection.MaxResults
	}

	contradiction := discovery.DefaultContradictionOptions()
	if cfg.Contradiction.Threshold == 0 {
		cfg.Contradiction.Threshold = contradiction.Threshold
	}
	if cfg.Contradiction.MinConfidence == 0 {
		cfg.Contradiction.MinConfidence = contradiction.MinConfidence
	}
	if cfg.Contradiction.MaxResults == 0 {
		cfg.Contradiction.MaxResults = contradiction.MaxResults
	}

	gap := discovery.DefaultGapOptions()
	if cfg.Gap.MinSimilarity == 0 {
		cfg.Gap.MinSimilarity = gap.MinSimilarity
	}
	if cfg.Gap.MaxResults == 0 {
		cfg.Gap.MaxResults = gap.MaxResults
	}
	if cfg.Gap.TopicKeywords == 0 {
		cfg.Gap.TopicKeywords = gap.TopicKeywords
	}

	trend := discovery.DefaultTrendOptions()
	if cfg.Trend.HistoryWindow == 0 {
		cfg.Trend.HistoryWindow = trend.HistoryWindow
	}
	if cfg.Trend.MinSnapshots == 0 {
		cfg.Trend.MinSnapshots = trend.MinSnapshots
	}
	if cfg.Trend.MinPercentChange == 0 {
		cfg.Trend.MinPercentChange = trend.MinPercentChange
	}
	if cfg.Trend.MaxTrends == 0 {
		cfg.Trend.MaxTrends = trend.MaxTrends
	}

	if cfg.NLI.Type == "" {
		cfg.NLI.Type = "rule"
	}
	if cfg.NLI.Type == "http" && cfg.NLI.HTTP != nil {
		if cfg.NLI.HTTP.TimeoutSecs == 0 {
			cfg.NLI.HTTP.TimeoutSecs = 30
		}
	}
}

// PatternOptions converts the pattern section into engine options.
func (c *AppConfig) PatternOptions() discovery.PatternOptions {
	return discovery.PatternOptions{Eps: c.Pattern.Eps, MinClusterSize: c.Pattern.MinClusterSize}
}

// AnomalyOptions converts the anomaly section into engine options.
func (c *AppConfig) AnomalyOptions() discovery.AnomalyOptions {
	return discovery.AnomalyOptions{
		Contamination: c.Anomaly.Contamination,
		MinDocuments:  c.Anomaly.MinDocuments,
		MaxAnomalies:  c.Anomaly.MaxAnomalies,
		NEstimators:   c.Anomaly.NEstimators,
		MaxSamples:    c.Anomaly.MaxSamples,
		Seed:          c.Anomaly.Seed,
	}
}

// ConnectionOptions converts the connection section into engine options.
func (c *AppConfig) ConnectionOptions() discovery.ConnectionOptions {
	return discovery.ConnectionOptions{
		MinSharedVerses: c.Connection.MinSharedVerses,
		MinDocuments:    c.Connection.MinDocuments,
		MaxResults:      c.Connection.MaxResults,
	}
}

// ContradictionOptions converts the contradiction section into engine options.
func (c *AppConfig) ContradictionOptions() discovery.ContradictionOptions {
	return discovery.ContradictionOptions{
		Threshold:     c.Contradiction.Threshold,
		MinConfidence: c.Contradiction.MinConfidence,
		MaxResults:    c.Contradiction.MaxResults,
	}
}

// GapOptions converts the gap section into engine options.
func (c *AppConfig) GapOptions() discovery.GapOptions {
	return discovery.GapOptions{
		MinSimilarity: c.Gap.MinSimilarity,
		MaxResults:    c.Gap.MaxResults,
		TopicKeywords: c.Gap.TopicKeywords,
	}
}

// TrendOptions converts the trend section into engine options.
func (c *AppConfig) TrendOptions() discovery.TrendOptions {
	return discovery.TrendOptions{
		HistoryWindow:    c.Trend.HistoryWindow,
		MinSnapshots:     c.Trend.MinSnapshots,
		MinPercentChange: c.Trend.MinPercentChange,
		MaxTrends:        c.Trend.MaxTrends,
	}
}

// HTTPClassifierConfig converts the nli.http section for the HTTP classifier.
func (c *AppConfig) HTTPClassifierConfig() (nli.HTTPConfig, error) {
	if c.NLI.HTTP == nil {
		return nli.HTTPConfig{}, errors.New("nli.http config missing")
	}
	return nli.HTTPConfig{
		URL:       c.NLI.HTTP.URL,
		APIKeyEnv: c.NLI.HTTP.APIKeyEnv,
		Model:     c.NLI.HTTP.Model,
		Timeout:   time.Duration(c.NLI.HTTP.TimeoutSecs) * time.Second,
	}, nil
}
