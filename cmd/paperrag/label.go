package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/label"
	"paperrag/internal/topic"
)

func newLabelCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "label_papers_with_stable_topics",
		Short: "Label every paper's abstract against the stable topic store",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}

			paths := storePaths()
			stable, err := topic.Load(paths.Topic)
			if err != nil {
				return err
			}

			papers, err := paperPaths(cfg.Paths.AbstractExtract)
			if err != nil {
				return err
			}

			for _, p := range papers {
				abstract, err := readAbstract(cfg.Paths.AbstractExtract, p)
				if err != nil {
					return err
				}
				if abstract == "" {
					continue
				}

				labelPath := filepath.Join(cfg.Paths.LabelDir, p+".txt")
				result, err := label.Label(cmd.Context(), chatModel, stable, labelPath, abstract, force)
				if err != nil {
					return fmt.Errorf("paperrag: labeling failed for %s: %w", p, err)
				}
				if len(result.NewIDs) > 0 {
					if err := topic.Save(paths.Topic, stable); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "relabel papers that already have a label file")
	return cmd
}
