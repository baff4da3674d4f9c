package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paperrag/internal/section"
)

// Pipeline wires the five steps together and persists each step's
// artifact under a fresh run directory. Every run starts at step 1;
// persisted artifacts are not read back by the pipeline.
type Pipeline struct {
	retriever *Retriever
	selector  *SourceSelector
	generator *Generator
	runRoot   string
}

// NewPipeline builds a Pipeline. runRoot is the resolved rag_data_base
// config path.
func NewPipeline(retriever *Retriever, selector *SourceSelector, generator *Generator, runRoot string) *Pipeline {
	return &Pipeline{retriever: retriever, selector: selector, generator: generator, runRoot: runRoot}
}

// NewRunDir creates and returns a fresh run_{YYYYMMDD_HHMMSS} directory
// under the pipeline's run root.
func (p *Pipeline) NewRunDir() (string, error) {
	dir := filepath.Join(p.runRoot, "run_"+time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("retrieval: failed to create run directory %s: %w", dir, err)
	}
	return dir, nil
}

// Run executes all five steps in order against userRequirement,
// persisting each step's artifact under runDir, and returns the full
// Result.
func (p *Pipeline) Run(ctx context.Context, runDir, userRequirement string) (*Result, error) {
	return p.RunUpTo(ctx, runDir, userRequirement, 5)
}

// RunUpTo executes steps 1..maxStep in order against userRequirement,
// persisting each executed step's artifact under runDir, and returns the
// partial Result built so far. Fields past maxStep are left zero-valued.
// Used to inspect an intermediate artifact without paying for generation.
func (p *Pipeline) RunUpTo(ctx context.Context, runDir, userRequirement string, maxStep int) (*Result, error) {
	result := &Result{UserRequirement: userRequirement}

	query := p.retriever.Standardize(ctx, userRequirement)

	hits, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: step1 failed: %w", err)
	}
	result.AspectHits = hits
	if err := persistStep(runDir, 1, "summary_retrieval", hits); err != nil {
		return nil, err
	}
	if maxStep == 1 {
		return result, nil
	}

	analysis := Analyze(hits)
	result.Analysis = analysis
	if err := persistStep(runDir, 2, "cross_paper_analysis", analysis); err != nil {
		return nil, err
	}
	if maxStep == 2 {
		return result, nil
	}

	sources, err := p.selector.Select(ctx, hits)
	if err != nil {
		return nil, fmt.Errorf("retrieval: step3 failed: %w", err)
	}
	result.Sources = sources
	if err := persistStep(runDir, 3, "source_selection", sources); err != nil {
		return nil, err
	}
	if maxStep == 3 {
		return result, nil
	}

	contexts := BuildContexts(hits, analysis, sources)
	result.Contexts = contexts
	if err := persistStep(runDir, 4, "context_builder", contexts); err != nil {
		return nil, err
	}
	if maxStep == 4 {
		return result, nil
	}

	drafts, final, err := p.generator.Generate(ctx, userRequirement, contexts)
	if err != nil {
		return nil, fmt.Errorf("retrieval: step5 failed: %w", err)
	}
	result.Drafts = drafts
	result.Final = final
	if err := persistStep(runDir, 5, "paper_generation", final); err != nil {
		return nil, err
	}

	return result, nil
}

// RenderMarkdown assembles the final paper markdown: top-matter, each
// canonical section under its "## {Section}" heading in fixed order
// regardless of map iteration order, and a statistics tail.
func RenderMarkdown(userRequirement string, final map[section.Canonical]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generated Paper\n\n> Requirement: %s\n> Generated: %s\n\n", userRequirement, time.Now().Format(time.RFC3339))

	totalChars := 0
	for _, s := range section.All5 {
		text := final[s]
		totalChars += len([]rune(text))
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s, text)
	}

	fmt.Fprintf(&b, "---\n\nStatistics: %d sections, %d characters total\n", len(section.All5), totalChars)
	return b.String()
}

// OutputPath returns the paperGen/generated_paper_{timestamp}.md path
// under genDir for the current moment.
func OutputPath(genDir string) string {
	return filepath.Join(genDir, fmt.Sprintf("generated_paper_%s.md", time.Now().Format("20060102_150405")))
}

// persistStep writes artifact as paired artifact.json/artifact.txt under
// {runDir}/step{n}_{name}/.
func persistStep(runDir string, n int, name string, artifact any) error {
	dir := filepath.Join(runDir, fmt.Sprintf("step%d_%s", n, name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("retrieval: failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("retrieval: failed to marshal step%d artifact: %w", n, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "artifact.json"), data, 0o644); err != nil {
		return fmt.Errorf("retrieval: failed to write step%d artifact: %w", n, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "artifact.txt"), []byte(fmt.Sprintf("%v", artifact)), 0o644); err != nil {
		return fmt.Errorf("retrieval: failed to write step%d rendering: %w", n, err)
	}
	return nil
}
