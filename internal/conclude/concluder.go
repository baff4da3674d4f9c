package conclude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paperrag/internal/aspect"
	"paperrag/internal/llm"
	"paperrag/internal/logging"
	"paperrag/internal/section"
)

// aspectPromptTemplate is the contract with the LLM for one aspect's
// summary. The concluder appends the paper's gathered canonical section
// content as a "## Paper Content" block.
const aspectPromptTemplate = `You are summarizing a research paper's %s aspect for a downstream literature-review generator. Write a concise, information-dense summary in Chinese, 150-300 characters, focused only on %s.

## Paper Content
%s
`

// Concluder produces one summary text per aspect, per paper.
type Concluder struct {
	chatModel llm.ChatModel
	resultDir string
}

// New builds a Concluder that writes aspect summaries under resultDir
// (the config-resolved conclude_result root).
func New(chatModel llm.ChatModel, resultDir string) *Concluder {
	return &Concluder{chatModel: chatModel, resultDir: resultDir}
}

// Conclude runs the full per-aspect algorithm for one paper: gather
// canonical sections via mapping, then for each aspect whose required
// sections are all absent, skip it; otherwise build the prompt, call the
// LLM, and persist the response. Always writes summary.json, even when
// every aspect failed.
func (c *Concluder) Conclude(ctx context.Context, paperPath, rawSectionDir string, mapping *section.Mapping, force bool) (*Summary, error) {
	outDir := filepath.Join(c.resultDir, paperPath)
	summaryPath := filepath.Join(outDir, "summary.json")

	if !force {
		if existing, ok, err := loadSummary(summaryPath); err != nil {
			return nil, err
		} else if ok {
			return existing, nil
		}
	}

	canonical, err := LoadCanonicalSections(rawSectionDir, mapping)
	if err != nil {
		return nil, fmt.Errorf("conclude: %s: %w", paperPath, err)
	}

	summary := &Summary{PaperPath: paperPath, TotalAspects: len(aspect.All)}

	for _, a := range aspect.All {
		content := gatherRequiredContent(canonical, aspect.RequiredSections[a])
		if content == "" {
			summary.MissingAspects = append(summary.MissingAspects, a)
			continue
		}

		text, err := c.concludeAspect(ctx, a, content)
		if err != nil {
			logging.Warn("conclude: aspect summary failed", "paper", paperPath, "aspect", string(a), "error", err.Error())
			summary.MissingAspects = append(summary.MissingAspects, a)
			continue
		}

		if err := writeAspectFile(outDir, a, text); err != nil {
			return nil, err
		}
		summary.CompletedAspects = append(summary.CompletedAspects, a)
	}

	summary.AspectsCompleted = len(summary.CompletedAspects)

	if err := saveSummary(summaryPath, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// AspectFilePath returns the path Conclude writes a completed aspect's
// summary text to, so callers (the summary ingestor) can read it back
// without re-deriving the directory layout.
func (c *Concluder) AspectFilePath(paperPath string, a aspect.Aspect) string {
	return filepath.Join(c.resultDir, paperPath, string(a)+".txt")
}

func (c *Concluder) concludeAspect(ctx context.Context, a aspect.Aspect, content string) (string, error) {
	prompt := fmt.Sprintf(aspectPromptTemplate, a, a, content)
	return c.chatModel.Complete(ctx, prompt)
}

// gatherRequiredContent concatenates canonical[section] for each section
// in required, skipping absent ones; returns "" if none are present.
func gatherRequiredContent(canonical map[section.Canonical]string, required []section.Canonical) string {
	var parts []string
	for _, s := range required {
		if text, ok := canonical[s]; ok && text != "" {
			parts = append(parts, fmt.Sprintf("### %s\n%s", s, text))
		}
	}
	return strings.Join(parts, "\n\n")
}

func writeAspectFile(outDir string, a aspect.Aspect, text string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("conclude: failed to create %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, string(a)+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("conclude: failed to write %s: %w", path, err)
	}
	return nil
}

// LoadSummary reads a previously persisted completeness manifest, so
// callers (the summary ingestor) can discover which aspects a paper
// completed without re-running Conclude.
func LoadSummary(path string) (*Summary, bool, error) {
	return loadSummary(path)
}

func loadSummary(path string) (*Summary, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("conclude: failed to read %s: %w", path, err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, fmt.Errorf("conclude: failed to parse %s: %w", path, err)
	}
	return &summary, true, nil
}

func saveSummary(path string, summary *Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("conclude: failed to create directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("conclude: failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("conclude: failed to write %s: %w", path, err)
	}
	return nil
}
