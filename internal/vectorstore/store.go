// Package vectorstore defines the chunked vector-store abstraction:
// schema-per-aspect/schema-per-section collections, idempotent
// collection/index creation, batched embedding on write, and
// multi-collection top-k fan-in on read.
package vectorstore

import (
	"context"
	"errors"
)

const (
	// DefaultTopK is the default number of results per search.
	DefaultTopK = 5

	// AcceptAllScores accepts every result regardless of distance.
	AcceptAllScores = 0.0
)

// CreateRequest creates/embeds/indexes a batch of documents in one named
// collection.
type CreateRequest struct {
	Collection string
	Documents  []*Document
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return errors.New("vectorstore: create request cannot be nil")
	}
	if r.Collection == "" {
		return errors.New("vectorstore: collection name is required")
	}
	if len(r.Documents) == 0 {
		return errors.New("vectorstore: documents list cannot be empty")
	}
	return nil
}

// RetrievalRequest performs a single-collection similarity search.
type RetrievalRequest struct {
	Collection string
	Query      string
	TopK       int
	// Filter is a provider-native filter expression (e.g. a Qdrant
	// payload match expression), kept as an opaque string because the
	// only filter this pipeline ever needs is a paper_id prefix/substring
	// match — not a general filter AST.
	Filter string
}

func (r *RetrievalRequest) Validate() error {
	if r == nil {
		return errors.New("vectorstore: retrieval request cannot be nil")
	}
	if r.Collection == "" {
		return errors.New("vectorstore: collection name is required")
	}
	if r.Query == "" && r.Filter == "" {
		return errors.New("vectorstore: either query or filter must be set")
	}
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	return nil
}

// DeleteRequest deletes documents from one collection matching expr, or
// every document with a matching id prefix.
type DeleteRequest struct {
	Collection string
	Filter     string
}

func (r *DeleteRequest) Validate() error {
	if r == nil {
		return errors.New("vectorstore: delete request cannot be nil")
	}
	if r.Collection == "" {
		return errors.New("vectorstore: collection name is required")
	}
	if r.Filter == "" {
		return errors.New("vectorstore: filter cannot be empty, specify a filter to select documents for deletion")
	}
	return nil
}

// QueryRequest performs a non-vector filter-only query.
type QueryRequest struct {
	Collection string
	Filter     string
	Limit      int
}

// IndexParams carries the index-creation intent: metric plus a coarse
// build-time knob. The reference pipeline this was adapted from names
// Milvus's IVF_FLAT/nlist; this repo's provider (Qdrant) maps Nlist onto
// its own HNSW EfConstruct knob instead (see DESIGN.md).
type IndexParams struct {
	Metric string // "L2"
	Nlist  int    // mapped to provider-native build parameter
}

// Store is the vector-store abstraction every provider implements.
type Store interface {
	// CreateCollection creates the named collection if absent (idempotent);
	// if present, it is a no-op.
	CreateCollection(ctx context.Context, collection string, dimension int) error

	// EnsureIndex creates an index on field only if the collection has
	// none yet (idempotent).
	EnsureIndex(ctx context.Context, collection, field string, params IndexParams) error

	// Load loads the named collections into memory before querying.
	Load(ctx context.Context, collections []string) error

	// Insert embeds and stores req.Documents in req.Collection.
	Insert(ctx context.Context, req *CreateRequest) error

	// Search performs a single-collection similarity search, returning
	// results sorted by Score ascending (L2: lower is better).
	Search(ctx context.Context, req *RetrievalRequest) ([]*Document, error)

	// SearchMany fans out Search across multiple collections, tags each
	// result with its source collection (Metadata["__collection__"]),
	// re-sorts the concatenation globally by Score, and truncates to
	// topK.
	SearchMany(ctx context.Context, collections []string, query string, topK int) ([]*Document, error)

	// Query performs a non-vector filter query.
	Query(ctx context.Context, req *QueryRequest) ([]*Document, error)

	// Delete removes documents from a collection matching req.Filter.
	Delete(ctx context.Context, req *DeleteRequest) error
}

// SourceCollectionKey is the metadata key SearchMany uses to record which
// collection a fanned-in result came from.
const SourceCollectionKey = "__collection__"
