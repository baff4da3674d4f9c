package ingest

import "paperrag/internal/topic"

// ResolveTopicTags converts a paper's topic ids into their "zh (en)"
// display strings against the stable store, resolving through any
// merge redirects first. An id that no longer resolves to a live topic
// is dropped silently rather than failing the whole tagging call.
func ResolveTopicTags(stable *topic.Store, ids []string) []string {
	tags := make([]string, 0, len(ids))
	for _, id := range ids {
		live := topic.EffectiveID(stable, id)
		t, ok := stable.Topics[live]
		if !ok {
			continue
		}
		tags = append(tags, topic.DisplayString(t))
	}
	return tags
}
