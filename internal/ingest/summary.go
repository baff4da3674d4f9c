package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"paperrag/internal/aspect"
	"paperrag/internal/conclude"
	"paperrag/internal/topic"
	"paperrag/internal/vectorstore"
)

// SummaryIngestor populates the ten per-aspect summary collections with
// one record per paper per completed aspect.
type SummaryIngestor struct {
	store           vectorstore.Store
	dimension       int
	DropAndRecreate bool
}

// NewSummaryIngestor builds a SummaryIngestor. See SourceIngestor's
// DropAndRecreate doc for the re-ingestion semantics this flag controls.
func NewSummaryIngestor(store vectorstore.Store, dimension int) *SummaryIngestor {
	return &SummaryIngestor{store: store, dimension: dimension}
}

// EnsureCollections creates (idempotently) all ten aspect collections
// plus their paper_id index.
func (si *SummaryIngestor) EnsureCollections(ctx context.Context) error {
	for _, a := range aspect.All {
		name := vectorstore.SummaryCollection(strings.ToLower(string(a)))
		if err := si.store.CreateCollection(ctx, name, si.dimension); err != nil {
			return fmt.Errorf("ingest: failed to create collection %s: %w", name, err)
		}
		if err := si.store.EnsureIndex(ctx, name, "paper_id", vectorstore.IndexParams{Metric: "L2", Nlist: 128}); err != nil {
			return fmt.Errorf("ingest: failed to index collection %s: %w", name, err)
		}
	}
	return nil
}

// aspectTextLoader loads the {aspect}.txt file the concluder wrote for
// a, returning ok=false if the aspect was never completed for this
// paper.
type aspectTextLoader func(a aspect.Aspect) (string, bool, error)

// IngestPaper inserts one summary record per completed aspect (aspects
// loadText reports missing are skipped, matching the concluder's own
// "skip, don't fail the paper" posture). paperID identifies the paper
// within each aspect's collection.
func (si *SummaryIngestor) IngestPaper(ctx context.Context, paperID string, loadText aspectTextLoader, tags []string) error {
	for _, a := range aspect.All {
		text, ok, err := loadText(a)
		if err != nil {
			return fmt.Errorf("ingest: failed to load %s summary for %s: %w", a, paperID, err)
		}
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}

		collection := vectorstore.SummaryCollection(strings.ToLower(string(a)))
		if si.DropAndRecreate {
			if err := si.store.Delete(ctx, &vectorstore.DeleteRequest{Collection: collection, Filter: "%" + paperID + "%"}); err != nil {
				return fmt.Errorf("ingest: failed to drop existing %s summary for %s: %w", a, paperID, err)
			}
		}

		record := &vectorstore.SummaryRecord{
			PaperID:        paperID,
			SummaryText:    truncate(text, 8192),
			SourceSections: aspect.SourceSections(a),
			Topics:         tags,
		}
		req := &vectorstore.CreateRequest{
			Collection: collection,
			Documents:  []*vectorstore.Document{record.ToDocument()},
		}
		if err := si.store.Insert(ctx, req); err != nil {
			return fmt.Errorf("ingest: failed to insert %s summary for %s: %w", a, paperID, err)
		}
	}
	return nil
}

// ResolveTags resolves ids to display strings against stable, tolerant
// of a nil store.
func (si *SummaryIngestor) ResolveTags(stable *topic.Store, ids []string) []string {
	if stable == nil {
		return nil
	}
	return ResolveTopicTags(stable, ids)
}

// LoaderFromSummary adapts a completeness manifest (as written by the
// concluder alongside each aspect's text file) into an aspectTextLoader
// that reads each completed aspect's text file back off disk.
func LoaderFromSummary(concluder *conclude.Concluder, paperPath string, summary *conclude.Summary) aspectTextLoader {
	completed := make(map[aspect.Aspect]bool, len(summary.CompletedAspects))
	for _, a := range summary.CompletedAspects {
		completed[a] = true
	}
	return func(a aspect.Aspect) (string, bool, error) {
		if !completed[a] {
			return "", false, nil
		}
		data, err := os.ReadFile(concluder.AspectFilePath(paperPath, a))
		if err != nil {
			return "", false, fmt.Errorf("ingest: failed to read %s summary file: %w", a, err)
		}
		return string(data), true, nil
	}
}
