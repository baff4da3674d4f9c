// Command paperrag drives the offline paper-knowledge pipeline: topic
// taxonomy extraction and stabilization, section matching, per-aspect
// conclusion, source/summary ingestion, and on-demand paper generation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"paperrag/internal/config"
	"paperrag/internal/logging"
	"paperrag/internal/topic"
)

var (
	cfgFile string
	cfg     *config.Config
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paperrag",
		Short: "Offline research-paper knowledge pipeline and retrieval-augmented generator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("paperrag: failed to load config: %w", err)
			}
			cfg = loaded

			level := slog.LevelInfo
			if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
				logging.Init(level)
			} else {
				logging.Init(slog.LevelInfo)
			}

			if err := topic.LoadPrompts(cfg.Paths.PromptDir); err != nil {
				return fmt.Errorf("paperrag: failed to load prompt overrides: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config YAML file (defaults if omitted)")

	root.AddCommand(newGenTopicsCmd())
	root.AddCommand(newLabelCmd())
	root.AddCommand(newConcludeCmd())
	root.AddCommand(newLoadPapersCmd())
	root.AddCommand(newLoadConclusionCmd())
	root.AddCommand(newGenPaperCmd())
	root.AddCommand(newSyncTopicsCmd())

	return root
}
