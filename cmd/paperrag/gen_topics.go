package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paperrag/internal/topic"
)

func storePaths() topic.StorePaths {
	return topic.StorePaths{
		Ori:    cfg.Paths.TopicStoreDir + "/topic_ori.json",
		Gen:    cfg.Paths.TopicStoreDir + "/gen_topic.json",
		Middle: cfg.Paths.TopicStoreDir + "/middle_topic.json",
		Topic:  cfg.Paths.TopicStoreDir + "/topic.json",
	}
}

func newGenTopicsCmd() *cobra.Command {
	var noReset bool

	cmd := &cobra.Command{
		Use:   "gen_topics",
		Short: "Generate the stable topic taxonomy",
	}

	full := &cobra.Command{
		Use:   "full",
		Short: "Run extract, then the three stabilization merge rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			engine := topic.NewEngine(storePaths(), chatModel)

			if !noReset {
				if err := engine.Reset(); err != nil {
					return err
				}
			}
			if err := runExtract(cmd, engine); err != nil {
				return err
			}
			return engine.Stabilize(cmd.Context())
		},
	}
	full.Flags().BoolVar(&noReset, "no-reset", false, "skip resetting topic/gen_topic from topic_ori before extracting")
	cmd.AddCommand(full)

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Propose topic keywords for every abstract into gen_topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			engine := topic.NewEngine(storePaths(), chatModel)
			return runExtract(cmd, engine)
		},
	}
	cmd.AddCommand(extract)

	merge := &cobra.Command{
		Use:   "generate_merge",
		Short: "Run the three stabilization merge rounds over gen_topic/middle_topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			engine := topic.NewEngine(storePaths(), chatModel)
			return engine.Stabilize(cmd.Context())
		},
	}
	cmd.AddCommand(merge)

	update := &cobra.Command{
		Use:   "update_topics",
		Short: "Reset topic/gen_topic from topic_ori",
		RunE: func(cmd *cobra.Command, args []string) error {
			chatModel, err := newChatModel(cfg)
			if err != nil {
				return err
			}
			engine := topic.NewEngine(storePaths(), chatModel)
			return engine.Reset()
		},
	}
	cmd.AddCommand(update)

	list := &cobra.Command{
		Use:   "list",
		Short: "List the stable topic store",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := storePaths()
			stable, err := topic.Load(paths.Topic)
			if err != nil {
				return err
			}
			for _, t := range topic.SortedByNumericID(stable) {
				fmt.Printf("%s: %s (%s)\n", t.ID, t.NameZh, t.NameEn)
			}
			return nil
		},
	}
	cmd.AddCommand(list)

	return cmd
}

// runExtract proposes topics for every paper's abstract under
// abstract_extract, accumulating newly confirmed topics into gen_topic.
func runExtract(cmd *cobra.Command, engine *topic.Engine) error {
	paths, err := paperPaths(cfg.Paths.AbstractExtract)
	if err != nil {
		return err
	}

	for _, p := range paths {
		abstract, err := readAbstract(cfg.Paths.AbstractExtract, p)
		if err != nil {
			return err
		}
		if abstract == "" {
			continue
		}
		if _, err := engine.Propose(cmd.Context(), abstract); err != nil {
			return fmt.Errorf("paperrag: extract failed for %s: %w", p, err)
		}
	}
	return nil
}
