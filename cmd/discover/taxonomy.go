package main

import (
	"github.com/spf13/cobra"

	"theo-discovery/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the reference taxonomy used for gap analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := taxonomy.Default()
		if cfg.Taxonomy.Path != "" {
			catalog = taxonomy.FromFile(cfg.Taxonomy.Path)
		}
		topics, err := catalog.Topics()
		if err != nil {
			return err
		}
		printTaxonomy(cmd.OutOrStdout(), topics)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
}
