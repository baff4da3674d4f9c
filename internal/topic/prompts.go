package topic

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// promptOverrides is the YAML shape an operator drops into
// {prompt_dir}/topic_prompts.yaml to override the built-in templates
// without recompiling (e.g. to run the taxonomy engine against a
// different source language).
type promptOverrides struct {
	Propose      string `yaml:"propose"`
	MergeSuggest string `yaml:"merge_suggest"`
}

// LoadPrompts reads {dir}/topic_prompts.yaml and replaces the propose and
// merge-suggestion templates with any non-empty overrides it contains. A
// missing file is not an error: the built-in templates stay in effect.
func LoadPrompts(dir string) error {
	path := filepath.Join(dir, "topic_prompts.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("topic: failed to read prompt overrides %s: %w", path, err)
	}

	var overrides promptOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("topic: failed to parse prompt overrides %s: %w", path, err)
	}

	if overrides.Propose != "" {
		proposePromptTemplate = overrides.Propose
	}
	if overrides.MergeSuggest != "" {
		mergeSuggestPromptTemplate = overrides.MergeSuggest
	}
	return nil
}
