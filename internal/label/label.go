// Package label implements the per-paper labeler: it proposes topic ids
// against the stable taxonomy and persists them as a label file, using
// the same propose-then-persist shape the section matcher uses for its
// own idempotent per-paper artifact.
package label

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"paperrag/internal/llm"
	"paperrag/internal/topic"
)

// labelLineRe matches the fixed label-file sentence and captures its
// comma-separated id list.
var labelLineRe = regexp.MustCompile(`故该论文的主题关键词总结为\[([^\]]*)\]。`)

// filenameConventions are the label-file name variants tried, in order,
// when resolving a paper's previously written topic-id list. Several
// conventions exist because earlier runs wrote the bare paper base while
// later ones appended "_label"; both are tolerated on read.
var filenameConventions = []string{"%s.txt", "%s_label.txt"}

// Result is the outcome of labeling one paper.
type Result struct {
	MatchedIDs []string
	NewIDs     []string
}

// Label proposes topic ids for abstract against the stable store and
// appends any confirmed new names directly into stable with the next
// free id — bypassing the multi-round merge pipeline, since by labeling
// time the taxonomy is considered stable and small one-off additions are
// tolerated. It then persists the full id list as the paper's label
// file. If the label file already exists, it is reused unless force is
// set.
func Label(ctx context.Context, chatModel llm.ChatModel, stable *topic.Store, labelPath, abstract string, force bool) (*Result, error) {
	if !force {
		if ids, ok, err := readLabelFile(labelPath); err != nil {
			return nil, err
		} else if ok {
			return &Result{MatchedIDs: ids}, nil
		}
	}

	prompt := fmt.Sprintf(proposePromptTemplate, renderStableTopics(stable), abstract)
	resp, err := chatModel.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("label: propose LLM call failed: %w", err)
	}

	matched, newNames := parseProposeResponse(resp, stable)

	result := &Result{MatchedIDs: matched}
	nextID := topic.MaxNumericID(stable)
	for _, name := range newNames {
		nextID++
		id := strconv.Itoa(nextID)
		zh, en := splitName(name)
		stable.Topics[id] = &topic.Topic{ID: id, NameZh: zh, NameEn: en, Aliases: []string{}}
		result.NewIDs = append(result.NewIDs, id)
	}

	if err := writeLabelFile(labelPath, append(append([]string{}, result.MatchedIDs...), result.NewIDs...)); err != nil {
		return nil, err
	}
	return result, nil
}

func writeLabelFile(path string, ids []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("label: failed to create directory for %s: %w", path, err)
	}
	line := fmt.Sprintf("故该论文的主题关键词总结为[%s]。\n", strings.Join(ids, ","))
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("label: failed to write %s: %w", path, err)
	}
	return nil
}

func readLabelFile(path string) ([]string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("label: failed to read %s: %w", path, err)
	}
	ids := ParseTopicIDs(string(data))
	return ids, true, nil
}

// ParseTopicIDs extracts the comma-separated id list from a label
// file's fixed sentence, trimming whitespace and dropping empty entries.
func ParseTopicIDs(content string) []string {
	m := labelLineRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(m[1], ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReadTopicIDsForPaper tries each of filenameConventions under dir in
// order and returns the first one found, so that labels written by
// either naming convention resolve the same way.
func ReadTopicIDsForPaper(dir, paperBase string) ([]string, bool) {
	for _, pattern := range filenameConventions {
		path := filepath.Join(dir, fmt.Sprintf(pattern, paperBase))
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return ParseTopicIDs(string(data)), true
	}
	return nil, false
}
