package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paperrag/internal/sync"
	"paperrag/internal/topic"
)

func newSyncTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync_topics",
		Short: "Rewrite stale topic display strings in the section collections after a merge round",
		RunE: func(cmd *cobra.Command, args []string) error {
			embeddingModel, err := newEmbeddingModel(cfg)
			if err != nil {
				return err
			}
			store, err := newVectorStore(cfg, embeddingModel)
			if err != nil {
				return err
			}

			paths := storePaths()
			stable, err := topic.Load(paths.Topic)
			if err != nil {
				return err
			}

			report := sync.New(store).Sync(cmd.Context(), stable)
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d rows, updated %d, %d errors\n", report.RowsScanned, report.RowsUpdated, len(report.Errors))
			for _, e := range report.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+e)
			}
			return nil
		},
	}
}
