package topic

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paperrag/internal/llm"
)

// defaultProposePromptTemplate is the contract with the LLM for the
// propose operation. The model is given the current stable topic list and
// a paper abstract, and must answer with exactly two labeled sections:
// "MATCHED:" listing comma-separated existing ids, and one "NEW:" line
// per newly proposed topic in the form "{zh}, Keywords: {en}".
const defaultProposePromptTemplate = `You are maintaining a controlled vocabulary of research topics.
Existing topics:
%s

Paper abstract:
%s

Respond with exactly two sections:
MATCHED: <comma-separated ids of existing topics this abstract matches, or empty>
NEW: <zh name>, Keywords: <en name>
(one NEW line per newly proposed topic; omit if none)
`

// proposePromptTemplate is the live template used by Propose, overridable
// by LoadPrompts.
var proposePromptTemplate = defaultProposePromptTemplate

var (
	matchedLineRe = regexp.MustCompile(`(?im)^MATCHED:\s*(.*)$`)
	newLineRe     = regexp.MustCompile(`(?im)^NEW:\s*(.*)$`)
	newNameRe     = regexp.MustCompile(`^(.*?),\s*Keywords:\s*(.*)$`)
)

// renderExistingTopics builds the "current stable topic list" block of
// the propose prompt.
func renderExistingTopics(store *Store) string {
	var b strings.Builder
	for _, t := range SortedByNumericID(store) {
		if t.Merged {
			continue
		}
		fmt.Fprintf(&b, "%s: %s (%s)\n", t.ID, t.NameZh, t.NameEn)
	}
	return b.String()
}

// ProposeResult is the outcome of a single propose() call.
type ProposeResult struct {
	MatchedIDs []string
	NewNames   []string // rendered as "{zh}, Keywords: {en}"
}

// Propose prompts chatModel with the current stable topic list and an
// abstract, parses the two-section response, drops any matched id not
// present in stable, and appends confirmed new names to genStore with
// fresh monotonically increasing ids starting one greater than the
// maximum numeric id seen in either stable or genStore.
//
// LLM call failure is returned to the caller unchanged; per-paper
// disposition (skip and continue) is the caller's responsibility.
func Propose(ctx context.Context, chatModel llm.ChatModel, stable, genStore *Store, abstract string) (*ProposeResult, error) {
	prompt := fmt.Sprintf(proposePromptTemplate, renderExistingTopics(stable), abstract)

	resp, err := chatModel.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("topic: propose LLM call failed: %w", err)
	}

	result := parseProposeResponse(resp, stable)

	nextID := MaxNumericID(stable, genStore) + 1
	for _, name := range result.NewNames {
		zh, en := splitNewName(name)
		genStore.Topics[strconv.Itoa(nextID)] = &Topic{
			ID:      strconv.Itoa(nextID),
			NameZh:  zh,
			NameEn:  en,
			Aliases: []string{},
		}
		nextID++
	}

	return result, nil
}

func splitNewName(name string) (zh, en string) {
	m := newNameRe.FindStringSubmatch(name)
	if m == nil {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// parseProposeResponse implements the propose response parser: unknown
// ids (not present in stable) are silently dropped, and any response not
// matching the two-section contract yields empty results rather than an
// error — a malformed LLM response is a parse failure, not a fatal one.
func parseProposeResponse(resp string, stable *Store) *ProposeResult {
	result := &ProposeResult{}

	if m := matchedLineRe.FindStringSubmatch(resp); m != nil {
		for _, id := range strings.Split(m[1], ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := stable.Topics[id]; ok {
				result.MatchedIDs = append(result.MatchedIDs, id)
			}
		}
	}

	for _, m := range newLineRe.FindAllStringSubmatch(resp, -1) {
		name := strings.TrimSpace(m[1])
		if name != "" {
			result.NewNames = append(result.NewNames, name)
		}
	}

	return result
}
