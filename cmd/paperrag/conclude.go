package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperrag/internal/conclude"
	"paperrag/internal/llm"
	"paperrag/internal/section"
)

func newConcludeCmd() *cobra.Command {
	var onlySectionMatch bool
	var skipSectionMatch bool
	var force bool

	cmd := &cobra.Command{
		Use:   "conclude_papers",
		Short: "Match each paper's raw sections onto the canonical five, then conclude per-aspect summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}

			papers, err := paperPaths(cfg.Paths.ComponentExtract)
			if err != nil {
				return err
			}

			concluder := conclude.New(chatModel, cfg.Paths.ConcludeResult)

			for _, p := range papers {
				mapping, err := resolveSectionMapping(cmd.Context(), chatModel, p, force, skipSectionMatch)
				if err != nil {
					return err
				}
				if onlySectionMatch || mapping == nil {
					continue
				}

				rawDir := filepath.Join(cfg.Paths.ComponentExtract, p)
				if _, err := concluder.Conclude(cmd.Context(), p, rawDir, mapping, force); err != nil {
					return fmt.Errorf("paperrag: conclude failed for %s: %w", p, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&onlySectionMatch, "only-section-match", false, "run section matching only, skip per-aspect conclusion")
	cmd.Flags().BoolVar(&skipSectionMatch, "skip-section-match", false, "reuse a persisted section mapping only, skipping papers without one")
	cmd.Flags().BoolVar(&force, "force", false, "recompute section mapping and conclusions even if already persisted")

	return cmd
}

// resolveSectionMapping loads a paper's persisted mapping. When absent (or
// force is set) it recomputes one via Match and persists it, unless
// skipMatch is set, in which case an absent mapping yields (nil, nil) so
// the caller skips the paper instead of calling the model.
func resolveSectionMapping(ctx context.Context, chatModel llm.ChatModel, paperPath string, force, skipMatch bool) (*section.Mapping, error) {
	mappingPath := filepath.Join(cfg.Paths.SectionMatch, paperPath, "section_mapping.json")

	if !force {
		if mapping, ok, err := section.Load(mappingPath); err != nil {
			return nil, err
		} else if ok {
			return mapping, nil
		}
	}

	if skipMatch {
		return nil, nil
	}

	titles, err := rawTitles(filepath.Join(cfg.Paths.ComponentExtract, paperPath))
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}

	mapping, err := section.Match(ctx, chatModel, paperPath, titles)
	if err != nil {
		return nil, fmt.Errorf("paperrag: section match failed for %s: %w", paperPath, err)
	}
	if err := section.Save(mappingPath, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}
