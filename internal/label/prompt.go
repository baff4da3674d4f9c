package label

import (
	"fmt"
	"regexp"
	"strings"

	"paperrag/internal/topic"
)

// proposePromptTemplate mirrors the taxonomy engine's propose contract
// (two labeled sections, MATCHED/NEW), reused here so labeling and
// taxonomy growth speak the same LLM protocol.
const proposePromptTemplate = `You are tagging a research paper with topics from a controlled vocabulary.
Existing topics:
%s

Paper abstract:
%s

Respond with exactly two sections:
MATCHED: <comma-separated ids of existing topics this abstract matches, or empty>
NEW: <zh name>, Keywords: <en name>
(one NEW line per newly proposed topic; omit if none)
`

var (
	matchedLineRe = regexp.MustCompile(`(?im)^MATCHED:\s*(.*)$`)
	newLineRe     = regexp.MustCompile(`(?im)^NEW:\s*(.*)$`)
	newNameRe     = regexp.MustCompile(`^(.*?),\s*Keywords:\s*(.*)$`)
)

func renderStableTopics(stable *topic.Store) string {
	var b strings.Builder
	for _, t := range topic.SortedByNumericID(stable) {
		fmt.Fprintf(&b, "%s: %s (%s)\n", t.ID, t.NameZh, t.NameEn)
	}
	return b.String()
}

func parseProposeResponse(resp string, stable *topic.Store) (matched []string, newNames []string) {
	if m := matchedLineRe.FindStringSubmatch(resp); m != nil {
		for _, id := range strings.Split(m[1], ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := stable.Topics[id]; ok {
				matched = append(matched, id)
			}
		}
	}

	for _, m := range newLineRe.FindAllStringSubmatch(resp, -1) {
		name := strings.TrimSpace(m[1])
		if name != "" {
			newNames = append(newNames, name)
		}
	}
	return matched, newNames
}

func splitName(name string) (zh, en string) {
	m := newNameRe.FindStringSubmatch(name)
	if m == nil {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
