package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/conclude"
	"paperrag/internal/ingest"
	"paperrag/internal/label"
	"paperrag/internal/section"
	"paperrag/internal/topic"
)

func newLoadPapersCmd() *cobra.Command {
	var componentDir string
	var labelDir string
	var dropAndRecreate bool

	cmd := &cobra.Command{
		Use:   "load_papers",
		Short: "Chunk and ingest each paper's canonical sections into the per-section vector collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			if componentDir == "" {
				componentDir = cfg.Paths.ComponentExtract
			}
			if labelDir == "" {
				labelDir = cfg.Paths.LabelDir
			}

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

			ingestor := ingest.NewSourceIngestor(store, cfg.VectorDB.Dimension, cfg.Chunking.ChunkSize, cfg.Chunking.OverlapSize)
			ingestor.DropAndRecreate = dropAndRecreate

			if err := ingestor.EnsureCollections(cmd.Context()); err != nil {
				return err
			}

			papers, err := paperPaths(componentDir)
			if err != nil {
				return err
			}

			for _, p := range papers {
				mapping, ok, err := section.Load(filepath.Join(cfg.Paths.SectionMatch, p, "section_mapping.json"))
				if err != nil {
					return err
				}
				if !ok {
					continue
				}

				canonical, err := conclude.LoadCanonicalSections(filepath.Join(componentDir, p), mapping)
				if err != nil {
					return fmt.Errorf("paperrag: failed to load canonical sections for %s: %w", p, err)
				}

				ids, _ := label.ReadTopicIDsForPaper(labelDir, p)
				tags := ingestor.ResolveTags(stable, ids)

				if err := ingestor.IngestPaper(cmd.Context(), p, canonical, tags); err != nil {
					return fmt.Errorf("paperrag: failed to ingest %s: %w", p, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&componentDir, "component-dir", "", "override the raw-section root directory")
	cmd.Flags().StringVar(&labelDir, "label-dir", "", "override the label-file root directory")
	cmd.Flags().BoolVar(&dropAndRecreate, "drop-and-recreate", false, "delete a paper's existing section rows before inserting")

	return cmd
}
