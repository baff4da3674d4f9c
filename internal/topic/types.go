// Package topic implements the topic taxonomy engine: a small,
// non-duplicative, human-readable vocabulary grown from noisy LLM
// keyword proposals via a three-round, cycle-safe merge pipeline.
package topic

import (
	"time"

	"paperrag/pkg/ptr"
)

// Topic is one taxonomy entry. Ids are decimal-digit strings so that
// JSON-object key ordering never has to be relied upon; numeric ordering
// is always recovered via SortedByNumericID.
type Topic struct {
	ID        string   `json:"id"`
	NameZh    string   `json:"name_zh"`
	NameEn    string   `json:"name_en"`
	Aliases   []string `json:"aliases"`
	ParentID  *string  `json:"parent_id,omitempty"`
	CreatedAt int64    `json:"created_at"`
	Merged    bool     `json:"merged,omitempty"`
	MergedTo  *string  `json:"merged_to,omitempty"`
}

// Clone returns a deep copy so callers mutating a working map never alias
// the store's own topics.
func (t *Topic) Clone() *Topic {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Aliases = append([]string(nil), t.Aliases...)
	if t.ParentID != nil {
		clone.ParentID = ptr.Pointer(*t.ParentID)
	}
	if t.MergedTo != nil {
		clone.MergedTo = ptr.Pointer(*t.MergedTo)
	}
	return &clone
}

// Store is the on-disk shape shared by topic.json, gen_topic.json,
// middle_topic.json and topic_ori.json.
type Store struct {
	Topics      map[string]*Topic `json:"topics"`
	Mappings    map[string]string `json:"mappings"`
	Version     string            `json:"version"`
	LastUpdated time.Time         `json:"last_updated"`
	Description string            `json:"description"`
}

// NewStore returns an empty, ready-to-use store.
func NewStore(description string) *Store {
	return &Store{
		Topics:      make(map[string]*Topic),
		Mappings:    make(map[string]string),
		Version:     "1.0",
		LastUpdated: time.Now(),
		Description: description,
	}
}

// Clone deep-copies the store so callers can build a working map without
// mutating the caller's own reference.
func (s *Store) Clone() *Store {
	clone := &Store{
		Topics:      make(map[string]*Topic, len(s.Topics)),
		Mappings:    make(map[string]string, len(s.Mappings)),
		Version:     s.Version,
		LastUpdated: s.LastUpdated,
		Description: s.Description,
	}
	for id, t := range s.Topics {
		clone.Topics[id] = t.Clone()
	}
	for k, v := range s.Mappings {
		clone.Mappings[k] = v
	}
	return clone
}

// DisplayString renders a topic as the "zh (en)" form used to tag source
// and summary records.
func DisplayString(t *Topic) string {
	if t.NameEn == "" {
		return t.NameZh
	}
	return t.NameZh + " (" + t.NameEn + ")"
}
