package section

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"paperrag/internal/llm"
	"paperrag/internal/logging"
)

const matchPromptTemplate = `Classify each raw section title into exactly one of: Introduction, RelatedWork, Method, Experiments, Conclusion.

Raw titles:
%s

Respond with one line per title, in the form:
<raw title> -> <canonical section>
`

var matchLineRe = regexp.MustCompile(`(?m)^(.*?)\s*->\s*(\S+)\s*$`)

// Match builds the classification prompt for one paper's raw titles,
// calls chatModel, and parses the response: a line whose target is
// outside All5 is recorded as Method (with a warning); any input
// title missing from the response is filled as Method. Every input
// title is guaranteed to appear as a key on return.
func Match(ctx context.Context, chatModel llm.ChatModel, paperPath string, rawTitles []string) (*Mapping, error) {
	var b strings.Builder
	for _, title := range rawTitles {
		fmt.Fprintln(&b, title)
	}

	prompt := fmt.Sprintf(matchPromptTemplate, b.String())

	resp, err := chatModel.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("section: match LLM call failed: %w", err)
	}

	mapping := parseMatchResponse(resp, rawTitles)
	mapping.PaperPath = paperPath
	mapping.TotalSections = len(rawTitles)

	return mapping, nil
}

func parseMatchResponse(resp string, rawTitles []string) *Mapping {
	result := make(map[string]Canonical, len(rawTitles))

	for _, m := range matchLineRe.FindAllStringSubmatch(resp, -1) {
		title := strings.TrimSpace(m[1])
		target := Canonical(strings.TrimSpace(m[2]))
		if title == "" {
			continue
		}
		if !IsCanonical(target) {
			logging.Warn("section: model produced a non-canonical target, defaulting to Method", "title", title, "target", string(target))
			target = Method
		}
		result[title] = target
	}

	for _, title := range rawTitles {
		if _, ok := result[title]; !ok {
			result[title] = Method
		}
	}

	standard := make([]Canonical, 0, len(result))
	seen := make(map[Canonical]bool)
	for _, c := range result {
		if !seen[c] {
			seen[c] = true
			standard = append(standard, c)
		}
	}

	return &Mapping{
		SectionMapping:   result,
		StandardSections: standard,
	}
}

// Load reads a previously persisted Mapping. A persisted mapping is
// reused unless a force refresh is requested by the caller (checked by
// the caller before calling Match again).
func Load(path string) (*Mapping, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("section: failed to read mapping %s: %w", path, err)
	}

	var mapping Mapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, false, fmt.Errorf("section: failed to parse mapping %s: %w", path, err)
	}
	return &mapping, true, nil
}

// Save persists a Mapping as section_mapping.json.
func Save(path string, mapping *Mapping) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("section: failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("section: failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("section: failed to write mapping %s: %w", path, err)
	}
	return nil
}
