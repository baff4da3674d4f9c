package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/retrieval"
)

func newGenPaperCmd() *cobra.Command {
	var step int
	var output string

	cmd := &cobra.Command{
		Use:   "gen_paper [requirement]",
		Short: "Run the five-step retrieval-and-composition pipeline against a user requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirement := args[0]

			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			embeddingModel, err := newEmbeddingModel(cfg)
			if err != nil {
				return err
			}
			store, err := newVectorStore(cfg, embeddingModel)
			if err != nil {
				return err
			}

			retriever := retrieval.NewRetriever(chatModel, store, cfg.Retrieval.TopKPerAspect)
			selector := retrieval.NewSourceSelector(store)
			generator := retrieval.NewGenerator(chatModel)
			pipeline := retrieval.NewPipeline(retriever, selector, generator, cfg.Paths.RagDataBase)

			runDir, err := pipeline.NewRunDir()
			if err != nil {
				return err
			}

			maxStep := step
			if maxStep <= 0 {
				maxStep = 5
			}

			result, err := pipeline.RunUpTo(cmd.Context(), runDir, requirement, maxStep)
			if err != nil {
				return fmt.Errorf("paperrag: generation failed: %w", err)
			}

			if maxStep < 5 {
				fmt.Fprintf(cmd.OutOrStdout(), "stopped after step %d, artifacts under %s\n", maxStep, runDir)
				return nil
			}

			markdown := retrieval.RenderMarkdown(requirement, result.Final)

			if output == "" {
				output = retrieval.OutputPath(cfg.Paths.PaperGenDir)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("paperrag: failed to create output directory: %w", err)
			}
			if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("paperrag: failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (run %s)\n", output, runDir)
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "stop after step k (1-5); omit or 0/5 to run the full pipeline")
	cmd.Flags().StringVar(&output, "output", "", "override the generated-paper output path")

	return cmd
}
