package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"theo-discovery/internal/config"
	"theo-discovery/internal/logger"
	"theo-discovery/internal/logger/console"
)

var (
	cfgPath string
	debug   bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find patterns, gaps and contradictions in a theological corpus",
	Long: `discover runs six analysis engines over a corpus of documents and reports
thematic clusters, outliers, cross-references, contradictions, taxonomy gaps
and topic trends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return err
		}
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug:  debug || cfg.Logging.Debug,
			Output: os.Stderr,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (uses ./discovery.yaml or ~/.config/theo-discovery/config.yaml if not provided)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
