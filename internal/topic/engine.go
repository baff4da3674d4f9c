package topic

import (
	"context"
	"fmt"

	"paperrag/internal/llm"
)

// StorePaths resolves the four on-disk topic stores.
type StorePaths struct {
	Ori    string // topic_ori.json — seed, never overwritten by a round
	Gen    string // gen_topic.json — accumulates free-form proposals
	Middle string // middle_topic.json — intermediate renumbered snapshot
	Topic  string // topic.json — stable, externally visible taxonomy
}

// Engine drives the taxonomy's stabilization pass.
type Engine struct {
	paths     StorePaths
	chatModel llm.ChatModel
}

// NewEngine builds an Engine over the given store paths and chat model.
func NewEngine(paths StorePaths, chatModel llm.ChatModel) *Engine {
	return &Engine{paths: paths, chatModel: chatModel}
}

// Reset copies topic_ori into topic and gen_topic so that re-running the
// stabilization pass from a cold start is idempotent.
func (e *Engine) Reset() error {
	return Reset(e.paths.Ori, e.paths.Topic, e.paths.Gen)
}

// Stabilize runs the three fixed merge rounds: gen→middle, middle→middle,
// middle→topic. Each round's output is persisted (middle_topic after
// rounds 1 and 2, topic after round 3) and handed to the next round in
// memory. It always starts from gen_topic and runs all three rounds; it
// does not run or resume a single round.
func (e *Engine) Stabilize(ctx context.Context) error {
	gen, err := Load(e.paths.Gen)
	if err != nil {
		return fmt.Errorf("topic: stabilize failed to load gen_topic: %w", err)
	}
	middle := MergeRound(ctx, e.chatModel, gen)
	if err := Save(e.paths.Middle, middle); err != nil {
		return fmt.Errorf("topic: stabilize failed to write middle_topic (round 1): %w", err)
	}

	middle = MergeRound(ctx, e.chatModel, middle)
	if err := Save(e.paths.Middle, middle); err != nil {
		return fmt.Errorf("topic: stabilize failed to write middle_topic (round 2): %w", err)
	}

	stable := MergeRound(ctx, e.chatModel, middle)
	if err := Save(e.paths.Topic, stable); err != nil {
		return fmt.Errorf("topic: stabilize failed to write topic: %w", err)
	}

	return nil
}

// Propose runs the propose() operation against the current stable and
// gen_topic stores, persisting any newly confirmed topics to gen_topic.
func (e *Engine) Propose(ctx context.Context, abstract string) (*ProposeResult, error) {
	stable, err := Load(e.paths.Topic)
	if err != nil {
		return nil, fmt.Errorf("topic: propose failed to load topic store: %w", err)
	}
	gen, err := Load(e.paths.Gen)
	if err != nil {
		return nil, fmt.Errorf("topic: propose failed to load gen_topic store: %w", err)
	}

	result, err := Propose(ctx, e.chatModel, stable, gen, abstract)
	if err != nil {
		return nil, err
	}

	if err := Save(e.paths.Gen, gen); err != nil {
		return nil, fmt.Errorf("topic: propose failed to persist gen_topic: %w", err)
	}

	return result, nil
}

// StableStore loads the current stable taxonomy, the only store
// downstream consumers (labeler, ingestors) are allowed to read.
func (e *Engine) StableStore() (*Store, error) {
	return Load(e.paths.Topic)
}
