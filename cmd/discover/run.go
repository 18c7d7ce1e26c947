package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"theo-discovery/internal/corpus"
	"theo-discovery/internal/domain"
	"theo-discovery/internal/history"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/service"
	"theo-discovery/internal/tui"
)

var (
	historyPath string
	plainOutput bool
	jsonOutput  bool
	embedCorpus bool
)

var runCmd = &cobra.Command{
	Use:   "run <corpus>",
	Short: "Run every discovery engine over a corpus file",
	Long: `Load a YAML or JSON corpus, run the pattern, anomaly, connection,
contradiction, gap and trend engines, and browse the results.

The snapshot of this run is appended to the history file when one is
configured, so that later runs can report topic trends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := corpus.Load(args[0])
		if err != nil {
			return err
		}
		if embedCorpus {
			if docs, err = corpus.EmbedTFIDF(docs); err != nil {
				return err
			}
			logger.Debug("[CLI] Embedded corpus with TF-IDF", "documents", len(docs))
		} else if corpus.NeedsEmbedding(docs) {
			logger.Warn("[CLI] Some documents have no usable embedding and are skipped by pattern and anomaly analysis; use --embed to compute them")
		}

		svc, err := service.NewFromConfig(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		report, err := svc.Run(ctx, docs, openHistory())
		if err != nil {
			return err
		}

		switch {
		case jsonOutput:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case plainOutput:
			printReport(cmd.OutOrStdout(), report)
			return nil
		}
		m := tui.New(report.Discoveries, summaryLine(report))
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

// openHistory returns the file store named by --history or the config, or
// a run-scoped in-memory store when neither is set.
func openHistory() domain.SnapshotHistory {
	path := cfg.History.Path
	if historyPath != "" {
		path = historyPath
	}
	if path == "" {
		return history.NewMemory()
	}
	store := history.NewFile(path)
	store.MaxEntries = cfg.History.MaxEntries
	return store
}

func init() {
	runCmd.Flags().StringVar(&historyPath, "history", "", "Snapshot history file (overrides history.path)")
	runCmd.Flags().BoolVar(&plainOutput, "plain", false, "Print discoveries instead of starting the browser")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	runCmd.Flags().BoolVar(&embedCorpus, "embed", false, "Replace document embeddings with TF-IDF vectors over the corpus")
	runCmd.MarkFlagsMutuallyExclusive("plain", "json")
	rootCmd.AddCommand(runCmd)
}
