// Package llm defines the two narrow model interfaces the pipeline needs —
// single-prompt completion and batch embedding — plus an OpenAI-compatible
// provider implementation.
package llm

import "context"

// ChatModel is a single-prompt completion model: string in, string out.
// Every taxonomy, labeling, matching, concluding and generation stage is
// built on this one call shape; none of them need chat history or
// tool-calling.
type ChatModel interface {
	// Complete sends prompt to the model and returns its full text
	// response. The call carries a per-call timeout from config; on
	// timeout or transport failure it returns a non-nil error and the
	// caller decides how to degrade (usually: skip the affected unit,
	// continue).
	Complete(ctx context.Context, prompt string) (string, error)
}

// EmbeddingModel produces a fixed-dimension vector for each input string,
// batched internally (batch size 32 by default).
type EmbeddingModel interface {
	// Embed returns one embedding per input text, in input order. A
	// per-batch failure fails the whole call (returns a nil slice and a
	// non-nil error).
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions reports the fixed vector dimension D this model
	// produces, used to size vector-store collections at creation time.
	Dimensions() int
}
