// Package sync implements the topic-change synchronizer: housekeeping
// that rewrites stale topic display strings in the section collections
// after a merge round, following the merged-to chain to each id's
// current display form. It sits off the critical path — generation
// reads only the current stable topic store, never a collection's
// topics array — so a failed or skipped sync run never blocks
// generation.
package sync

import (
	"context"
	"fmt"

	"paperrag/internal/logging"
	"paperrag/internal/section"
	"paperrag/internal/topic"
	"paperrag/internal/vectorstore"
)

// Synchronizer rewrites the topics array of every row in the section
// collections, replacing any display string for a merged-away topic
// with its effective id's current display string.
type Synchronizer struct {
	store vectorstore.Store
}

// New builds a Synchronizer.
func New(store vectorstore.Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Report summarizes one Sync run.
type Report struct {
	RowsScanned int
	RowsUpdated int
	Errors      []string
}

// Sync scans every section collection and rewrites any row whose topics
// array contains a stale display string, replacing it with the resolved
// current string for that topic under stable. Best-effort: a failure
// against one collection is recorded in Errors and scanning continues
// with the rest.
func (s *Synchronizer) Sync(ctx context.Context, stable *topic.Store) *Report {
	report := &Report{}
	rename := buildRenameTable(stable)
	if len(rename) == 0 {
		return report
	}

	for _, canonical := range section.All5 {
		collection := vectorstore.SectionCollection(canonical)
		docs, err := s.store.Query(ctx, &vectorstore.QueryRequest{Collection: collection, Limit: 0})
		if err != nil {
			msg := fmt.Sprintf("%s: query failed: %v", collection, err)
			logging.Warn("sync: collection scan failed, continuing", "collection", collection, "error", err.Error())
			report.Errors = append(report.Errors, msg)
			continue
		}

		for _, d := range docs {
			report.RowsScanned++
			record := vectorstore.SectionRecordFromDocument(d)
			rewritten, changed := rewriteTopics(record.Topics, rename)
			if !changed {
				continue
			}

			record.Topics = rewritten

			// The provider assigns each row its own internal point id on
			// insert (see DESIGN.md), so a rewrite must delete the row
			// before reinserting it rather than relying on insert to
			// overwrite by paper_id.
			if err := s.store.Delete(ctx, &vectorstore.DeleteRequest{Collection: collection, Filter: record.PaperID}); err != nil {
				msg := fmt.Sprintf("%s: delete-before-rewrite failed for %s: %v", collection, record.PaperID, err)
				logging.Warn("sync: row delete failed, continuing", "collection", collection, "paper_id", record.PaperID, "error", err.Error())
				report.Errors = append(report.Errors, msg)
				continue
			}

			req := &vectorstore.CreateRequest{Collection: collection, Documents: []*vectorstore.Document{record.ToDocument()}}
			if err := s.store.Insert(ctx, req); err != nil {
				msg := fmt.Sprintf("%s: rewrite failed for %s: %v", collection, record.PaperID, err)
				logging.Warn("sync: row rewrite failed, continuing", "collection", collection, "paper_id", record.PaperID, "error", err.Error())
				report.Errors = append(report.Errors, msg)
				continue
			}
			report.RowsUpdated++
		}
	}

	return report
}

// buildRenameTable maps every stale display string (one per topic whose
// id has a merged_to chain, keyed by its pre-merge name form) to its
// effective topic's current display string.
func buildRenameTable(stable *topic.Store) map[string]string {
	rename := make(map[string]string)
	for id, t := range stable.Topics {
		effectiveID := topic.EffectiveID(stable, id)
		if effectiveID == id {
			continue
		}
		effective, ok := stable.Topics[effectiveID]
		if !ok {
			continue
		}
		rename[topic.DisplayString(t)] = topic.DisplayString(effective)
	}
	return rename
}

func rewriteTopics(topics []string, rename map[string]string) ([]string, bool) {
	changed := false
	out := make([]string, len(topics))
	for i, t := range topics {
		if replacement, ok := rename[t]; ok {
			out[i] = replacement
			changed = true
		} else {
			out[i] = t
		}
	}
	return out, changed
}
