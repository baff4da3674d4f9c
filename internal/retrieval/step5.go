package retrieval

import (
	"context"
	"fmt"
	"strings"

	"paperrag/internal/llm"
	"paperrag/internal/section"
)

// generationOrder is the fixed section generation order.
var generationOrder = section.All5

// dependencies maps each section to the prior sections whose condensed
// summaries feed its prompt.
var dependencies = map[section.Canonical][]section.Canonical{
	section.Introduction: nil,
	section.RelatedWork:  {section.Introduction},
	section.Method:       {section.Introduction, section.RelatedWork},
	section.Experiments:  {section.Method},
	section.Conclusion:   {section.Introduction, section.RelatedWork, section.Method, section.Experiments},
}

const (
	condensedTargetChars = 150
	draftMinChars        = 800
	draftMaxChars        = 1200
)

const sectionTemplate = `Write the "%s" section of a research paper in Chinese (%d-%d characters), academic tone, coherent with and non-repetitive of the prior sections summarized below.

User requirement: %s

Prior section summaries:
%s

Context:
%s
`

const condenseTemplate = `Condense the following section draft into a single dense summary of at most %d characters, Chinese, preserving only the claims later sections must stay consistent with.

%s
`

const polishTemplate = `You are given a five-section paper draft. Revise it for coherence, remove cross-section repetition, and keep academic tone throughout. Preserve the section order and reproduce each section under its own "## {Section}" heading exactly as given.

%s
`

// Generator runs step 5: produce each section's draft in
// generationOrder, condensing each into a dependency summary for later
// steps, then runs a single whole-paper polish pass.
type Generator struct {
	chatModel llm.ChatModel
}

// NewGenerator builds a Generator.
func NewGenerator(chatModel llm.ChatModel) *Generator {
	return &Generator{chatModel: chatModel}
}

// Generate runs the full sequential pipeline and returns the final,
// polished (or polish-fallback) section texts.
func (g *Generator) Generate(ctx context.Context, userRequirement string, contexts map[section.Canonical]SectionContext) (map[section.Canonical]*Draft, map[section.Canonical]string, error) {
	drafts := make(map[section.Canonical]*Draft, len(generationOrder))

	for _, s := range generationOrder {
		draft, err := g.draftSection(ctx, s, userRequirement, contexts[s], drafts)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieval: step5 failed drafting %s: %w", s, err)
		}
		drafts[s] = draft
	}

	final := g.polish(ctx, drafts)
	return drafts, final, nil
}

func (g *Generator) draftSection(ctx context.Context, s section.Canonical, userRequirement string, sectionCtx SectionContext, drafts map[section.Canonical]*Draft) (*Draft, error) {
	depSummaries := dependencySummaries(s, drafts)
	prompt := fmt.Sprintf(sectionTemplate, s, draftMinChars, draftMaxChars, userRequirement, depSummaries, sectionCtx.Text)

	text, err := g.chatModel.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	condensed, err := g.chatModel.Complete(ctx, fmt.Sprintf(condenseTemplate, condensedTargetChars, text))
	if err != nil {
		condensed = truncateRunes(text, condensedTargetChars)
	}

	return &Draft{Section: s, Text: text, Condensed: condensed}, nil
}

func dependencySummaries(s section.Canonical, drafts map[section.Canonical]*Draft) string {
	deps := dependencies[s]
	if len(deps) == 0 {
		return "(none; this is the opening section)"
	}
	var lines []string
	for _, d := range deps {
		if draft, ok := drafts[d]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", d, draft.Condensed))
		}
	}
	return strings.Join(lines, "\n")
}

// polish invokes the whole-paper polish prompt once, then parses its
// output by splitting on "## " markers. Any section the parse fails to
// find falls back to its pre-polish draft.
func (g *Generator) polish(ctx context.Context, drafts map[section.Canonical]*Draft) map[section.Canonical]string {
	final := make(map[section.Canonical]string, len(drafts))
	for s, d := range drafts {
		final[s] = d.Text
	}

	combined := concatenateDrafts(drafts)
	resp, err := g.chatModel.Complete(ctx, fmt.Sprintf(polishTemplate, combined))
	if err != nil {
		return final
	}

	parsed := parsePolished(resp)
	for s, text := range parsed {
		final[s] = text
	}
	return final
}

func concatenateDrafts(drafts map[section.Canonical]*Draft) string {
	var b strings.Builder
	for _, s := range generationOrder {
		d, ok := drafts[s]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", s, d.Text)
	}
	return b.String()
}

// parsePolished splits resp on "## " markers and keys each block by its
// leading section name, tolerant of an unrecognized or malformed
// heading (it is simply omitted, triggering the caller's fallback).
func parsePolished(resp string) map[section.Canonical]string {
	out := make(map[section.Canonical]string)
	blocks := strings.Split(resp, "## ")
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		nameEnd := strings.IndexAny(block, "\n")
		if nameEnd == -1 {
			continue
		}
		name := strings.TrimSpace(block[:nameEnd])
		s := section.Canonical(name)
		if !section.IsCanonical(s) {
			continue
		}
		out[s] = strings.TrimSpace(block[nameEnd:])
	}
	return out
}
