package topic

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paperrag/internal/llm"
	"paperrag/internal/logging"
	"paperrag/pkg/ptr"
)

// Kind distinguishes the two merge-suggestion shapes.
type Kind int

const (
	// Absorb folds A's name fields and aliases into B, leaving B's own
	// names untouched.
	Absorb Kind = iota
	// SwapThenAbsorb exchanges A's and B's name fields before marking A
	// merged into B, so the newer/refined name survives under the older id.
	SwapThenAbsorb
)

// Suggestion is one parsed merge-suggestion line.
type Suggestion struct {
	A, B string
	Kind Kind
}

var (
	absorbLineRe = regexp.MustCompile(`合并\s*(\d+)\s*->\s*(\d+)`)
	swapLineRe   = regexp.MustCompile(`更新并合并\s*(\d+)\s*->\s*(\d+)`)
)

// defaultMergeSuggestPromptTemplate is the contract with the LLM for
// generating merge suggestions: lines of the form "合并 A -> B" or "更新并合
// 并 A -> B". Any other text in the response is ignored by the parser.
const defaultMergeSuggestPromptTemplate = `You are deduplicating a research-topic taxonomy.
Topics:
%s

For every pair of topics that mean the same thing, emit one line:
  合并 A -> B       (absorb A into B, keep B's name)
  更新并合并 A -> B  (absorb A into B, but keep A's name instead)
where A and B are the numeric ids above. Emit nothing else.
`

// mergeSuggestPromptTemplate is the live template used by
// GenerateSuggestions, overridable by LoadPrompts.
var mergeSuggestPromptTemplate = defaultMergeSuggestPromptTemplate

// ParseSuggestions parses an LLM response into an ordered list of
// suggestions. Lines are scanned in the order they appear in the
// response text, since application order matters downstream. A
// suggestion with A == B is dropped. A line matching both patterns (the
// swap pattern's "更新并合并" contains "合并" as a substring) is classified
// as swap — the swap regex is checked first per line.
func ParseSuggestions(resp string) []Suggestion {
	var out []Suggestion

	for _, line := range strings.Split(resp, "\n") {
		if m := swapLineRe.FindStringSubmatch(line); m != nil {
			if m[1] == m[2] {
				continue
			}
			out = append(out, Suggestion{A: m[1], B: m[2], Kind: SwapThenAbsorb})
			continue
		}
		if m := absorbLineRe.FindStringSubmatch(line); m != nil {
			if m[1] == m[2] {
				continue
			}
			out = append(out, Suggestion{A: m[1], B: m[2], Kind: Absorb})
		}
	}

	return out
}

// GenerateSuggestions calls chatModel to propose merges over source's
// topics and parses the response. A non-nil error means the LLM call
// itself failed (timeout, transport); the caller treats this as a
// non-fatal round-skip rather than aborting stabilization entirely.
func GenerateSuggestions(ctx context.Context, chatModel llm.ChatModel, source *Store) ([]Suggestion, error) {
	prompt := fmt.Sprintf(mergeSuggestPromptTemplate, renderExistingTopics(source))

	resp, err := chatModel.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("topic: merge suggestion generation failed: %w", err)
	}

	return ParseSuggestions(resp), nil
}

// ApplySuggestions mutates working in place, applying each suggestion
// deterministically in the order given. Suggestions referencing an id
// absent from working are skipped.
func ApplySuggestions(working *Store, suggestions []Suggestion) {
	for _, s := range suggestions {
		a, aOK := working.Topics[s.A]
		b, bOK := working.Topics[s.B]
		if !aOK || !bOK {
			continue
		}

		switch s.Kind {
		case Absorb:
			applyAbsorb(a, b)
		case SwapThenAbsorb:
			applySwapThenAbsorb(a, b)
		}

		a.Merged = true
		a.MergedTo = ptr.Pointer(s.B)
	}
}

// applyAbsorb appends a's canonical name and aliases into b's aliases,
// deduplicated and order-preserving. b's own name fields are untouched.
func applyAbsorb(a, b *Topic) {
	b.Aliases = appendUniqueOrdered(b.Aliases, a.NameZh, a.NameEn)
	b.Aliases = appendUniqueOrdered(b.Aliases, a.Aliases...)
}

// applySwapThenAbsorb snapshots b's name fields, overwrites b with a's,
// and overwrites a with the snapshot, before the caller marks a merged.
// After this call, b carries a's original names, a carries b's original
// names.
func applySwapThenAbsorb(a, b *Topic) {
	snapZh, snapEn, snapAliases := b.NameZh, b.NameEn, append([]string(nil), b.Aliases...)

	b.NameZh, b.NameEn, b.Aliases = a.NameZh, a.NameEn, append([]string(nil), a.Aliases...)
	a.NameZh, a.NameEn, a.Aliases = snapZh, snapEn, snapAliases
}

// appendUniqueOrdered appends each value to base that isn't already
// present (case-sensitive, exact match), preserving first-seen order.
func appendUniqueOrdered(base []string, values ...string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		base = append(base, v)
	}
	return base
}

// Renumber walks working in ascending numeric id order, skips merged
// entries, and assigns fresh ids 1, 2, 3, … in iteration order. The
// returned store has no merged/merged_to fields set, matching the shape
// expected of the stable topic store.
func Renumber(working *Store) *Store {
	target := NewStore(working.Description)

	next := 1
	for _, t := range SortedByNumericID(working) {
		if t.Merged {
			continue
		}
		id := strconv.Itoa(next)
		target.Topics[id] = &Topic{
			ID:        id,
			NameZh:    t.NameZh,
			NameEn:    t.NameEn,
			Aliases:   append([]string(nil), t.Aliases...),
			ParentID:  t.ParentID,
			CreatedAt: t.CreatedAt,
		}
		next++
	}

	return target
}

// MergeRound runs generate-suggestions → apply-suggestions →
// renumber-into-target over a clone of source, returning the new target
// store. On LLM failure it logs and returns a renumbered-but-unmodified
// clone of source (a no-op round), never an error — a failed round must
// not abort the stabilization pass.
func MergeRound(ctx context.Context, chatModel llm.ChatModel, source *Store) *Store {
	working := source.Clone()

	suggestions, err := GenerateSuggestions(ctx, chatModel, working)
	if err != nil {
		logging.Warn("topic: merge round suggestion generation failed, writing source unchanged", "error", err.Error())
		return Renumber(working)
	}

	ApplySuggestions(working, suggestions)
	return Renumber(working)
}
