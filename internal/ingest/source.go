// Package ingest implements the two offline batch loaders that populate
// the vector store: the source ingestor (chunked per-section text) and
// the summary ingestor (per-aspect conclusions). Both follow the same
// collection-per-key/embed-on-write shape the reference framework's own
// vector-store writers use.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"paperrag/internal/document"
	"paperrag/internal/section"
	"paperrag/internal/topic"
	"paperrag/internal/vectorstore"
)

// SourceIngestor populates the five per-section collections with
// sentence-aware, overlapping chunks of a paper's canonical sections.
type SourceIngestor struct {
	store           vectorstore.Store
	dimension       int
	chunkSize       int
	overlapSize     int
	DropAndRecreate bool
}

// NewSourceIngestor builds a SourceIngestor. A chunkSize of 0 falls back
// to document.DefaultChunkSize; an overlapSize of 0 carries no overlap
// prefix, and only a negative one falls back to DefaultOverlapSize. When
// DropAndRecreate is left false (the default), re-ingesting a paper
// already present in the section collections duplicates its chunk rows;
// setting it deletes any existing rows for the paper before inserting.
func NewSourceIngestor(store vectorstore.Store, dimension, chunkSize, overlapSize int) *SourceIngestor {
	return &SourceIngestor{store: store, dimension: dimension, chunkSize: chunkSize, overlapSize: overlapSize}
}

// EnsureCollections creates (idempotently) all five canonical-section
// collections plus their paper_id index.
func (si *SourceIngestor) EnsureCollections(ctx context.Context) error {
	for _, s := range section.All5 {
		name := vectorstore.SectionCollection(s)
		if err := si.store.CreateCollection(ctx, name, si.dimension); err != nil {
			return fmt.Errorf("ingest: failed to create collection %s: %w", name, err)
		}
		if err := si.store.EnsureIndex(ctx, name, "paper_id", vectorstore.IndexParams{Metric: "L2", Nlist: 128}); err != nil {
			return fmt.Errorf("ingest: failed to index collection %s: %w", name, err)
		}
	}
	return nil
}

// IngestPaper chunks canonical[s] for every canonical section present
// and inserts the resulting records into that section's collection,
// tagging each chunk with tags (the paper's resolved topic display
// strings). paperBase is the "{conf}/{year}/{base}" path used to build
// each chunk's paper_id.
func (si *SourceIngestor) IngestPaper(ctx context.Context, paperBase string, canonical map[section.Canonical]string, tags []string) error {
	for s, text := range canonical {
		chunks := document.Chunk(text, si.chunkSize, si.overlapSize)
		if len(chunks) == 0 {
			continue
		}

		if si.DropAndRecreate {
			collection := vectorstore.SectionCollection(s)
			if err := si.store.Delete(ctx, &vectorstore.DeleteRequest{Collection: collection, Filter: "%" + paperBase + "%"}); err != nil {
				return fmt.Errorf("ingest: failed to drop existing rows for %s in %s: %w", paperBase, collection, err)
			}
		}

		docs := make([]*vectorstore.Document, 0, len(chunks))
		for i, chunk := range chunks {
			record := &vectorstore.SectionRecord{
				PaperID: fmt.Sprintf("%s_%d", paperBase, i),
				Section: s,
				Text:    truncate(chunk, 8000),
				Topics:  tags,
			}
			docs = append(docs, record.ToDocument())
		}

		req := &vectorstore.CreateRequest{Collection: vectorstore.SectionCollection(s), Documents: docs}
		if err := si.store.Insert(ctx, req); err != nil {
			return fmt.Errorf("ingest: failed to insert %s chunks for %s: %w", s, paperBase, err)
		}
	}
	return nil
}

// ResolveTags resolves the given topic ids to display strings, tolerant
// of a nil stable store (produces no tags).
func (si *SourceIngestor) ResolveTags(stable *topic.Store, ids []string) []string {
	if stable == nil {
		return nil
	}
	return ResolveTopicTags(stable, ids)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// ChunkIndex parses the integer chunk index from a paper_id suffix after
// the last underscore, defaulting to 0 on parse failure (used by the
// source-text selector to order retrieved chunks).
func ChunkIndex(paperID string) int {
	idx := strings.LastIndex(paperID, "_")
	if idx == -1 {
		return 0
	}
	n, err := strconv.Atoi(paperID[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
