package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/conclude"
	"paperrag/internal/ingest"
	"paperrag/internal/label"
	"paperrag/internal/topic"
)

func newLoadConclusionCmd() *cobra.Command {
	var concludeDir string
	var dropAndRecreate bool

	cmd := &cobra.Command{
		Use:   "load_conclusion",
		Short: "Ingest each paper's completed per-aspect summaries into the per-aspect vector collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			if concludeDir == "" {
				concludeDir = cfg.Paths.ConcludeResult
			}

			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			concluder := conclude.New(chatModel, concludeDir)

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

			ingestor := ingest.NewSummaryIngestor(store, cfg.VectorDB.Dimension)
			ingestor.DropAndRecreate = dropAndRecreate

			if err := ingestor.EnsureCollections(cmd.Context()); err != nil {
				return err
			}

			papers, err := paperPaths(concludeDir)
			if err != nil {
				return err
			}

			for _, p := range papers {
				summaryPath := filepath.Join(concludeDir, p, "summary.json")
				summary, ok, err := conclude.LoadSummary(summaryPath)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}

				ids, _ := label.ReadTopicIDsForPaper(cfg.Paths.LabelDir, p)
				tags := ingestor.ResolveTags(stable, ids)

				loader := ingest.LoaderFromSummary(concluder, p, summary)
				if err := ingestor.IngestPaper(cmd.Context(), p, loader, tags); err != nil {
					return fmt.Errorf("paperrag: failed to ingest conclusion for %s: %w", p, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&concludeDir, "conclude-dir", "", "override the per-aspect conclusion root directory")
	cmd.Flags().BoolVar(&dropAndRecreate, "drop-and-recreate", false, "delete a paper's existing summary rows before inserting")

	return cmd
}
