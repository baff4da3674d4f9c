// Package qdrant is the concrete vectorstore.Store provider backed by
// Qdrant, adapted from the reference framework's own Qdrant vector-store
// provider (ai/providers/vectorstores/qdrant).
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"paperrag/internal/llm"
	"paperrag/internal/vectorstore"
)

const Provider = "Qdrant"

// payloadTextKey stores the original chunk/summary text in the payload so
// it can be returned without a second lookup.
const payloadTextKey = "__text__"

// Config configures the Qdrant-backed store.
type Config struct {
	Client         *qdrant.Client
	EmbeddingModel llm.EmbeddingModel
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("qdrant: config is nil")
	}
	if c.Client == nil {
		return errors.New("qdrant: client is required")
	}
	if c.EmbeddingModel == nil {
		return errors.New("qdrant: embedding model is required")
	}
	return nil
}

// Store implements vectorstore.Store against a Qdrant cluster.
type Store struct {
	client         *qdrant.Client
	embeddingModel llm.EmbeddingModel
}

var _ vectorstore.Store = (*Store)(nil)

// New builds a Store from Config.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Store{client: cfg.Client, embeddingModel: cfg.EmbeddingModel}, nil
}

func (s *Store) CreateCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Euclid, // L2
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %s: %w", collection, err)
	}
	return nil
}

// EnsureIndex creates a payload index on field, mapping the IVF_FLAT/nlist
// build intent onto Qdrant's native HNSW build knob (EfConstruct derived
// from Nlist), since Qdrant has no IVF_FLAT index type — see DESIGN.md.
// Idempotent: CreateFieldIndex on an already-indexed field is a no-op
// server-side.
func (s *Store) EnsureIndex(ctx context.Context, collection, field string, params vectorstore.IndexParams) error {
	efConstruct := uint64(params.Nlist)
	if efConstruct == 0 {
		efConstruct = 128
	}

	_, err := s.client.UpdateCollection(ctx, &qdrant.UpdateCollection{
		CollectionName: collection,
		HnswConfig: &qdrant.HnswConfigDiff{
			EfConstruct: &efConstruct,
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to tune index for collection %s: %w", collection, err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      field,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create field index on %s.%s: %w", collection, field, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, collections []string) error {
	// Qdrant serves collections on demand; "loading" is a no-op existence
	// check so callers get an early, clear error if a collection is
	// missing before issuing searches against it.
	for _, c := range collections {
		exists, err := s.client.CollectionExists(ctx, c)
		if err != nil {
			return fmt.Errorf("qdrant: failed to check collection %s: %w", c, err)
		}
		if !exists {
			return fmt.Errorf("qdrant: collection %s does not exist", c)
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, req *vectorstore.CreateRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("qdrant: invalid insert request: %w", err)
	}

	texts := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		texts[i] = d.Text
	}

	vectors, err := s.embeddingModel.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("qdrant: failed to embed %d documents for collection %s: %w", len(texts), req.Collection, err)
	}

	points := make([]*qdrant.PointStruct, 0, len(req.Documents))
	for i, d := range req.Documents {
		point, err := s.buildPoint(d, vectors[i])
		if err != nil {
			return fmt.Errorf("qdrant: failed to build point for document %s: %w", d.ID, err)
		}
		points = append(points, point)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: req.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to upsert %d points into %s: %w", len(points), req.Collection, err)
	}
	return nil
}

func (s *Store) buildPoint(d *vectorstore.Document, vector []float64) (*qdrant.PointStruct, error) {
	point := &qdrant.PointStruct{
		Id: qdrant.NewID(uuid.NewString()),
	}

	f32 := make([]float32, len(vector))
	for i, v := range vector {
		f32[i] = float32(v)
	}
	point.Vectors = qdrant.NewVectors(f32...)

	payload, err := qdrant.TryValueMap(d.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to convert metadata to payload: %w", err)
	}
	contentValue, err := qdrant.NewValue(d.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to build text payload value: %w", err)
	}
	payload[payloadTextKey] = contentValue
	point.Payload = payload

	return point, nil
}

func (s *Store) Search(ctx context.Context, req *vectorstore.RetrievalRequest) ([]*vectorstore.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("qdrant: invalid search request: %w", err)
	}

	vectors, err := s.embeddingModel.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to embed query: %w", err)
	}
	f32 := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		f32[i] = float32(v)
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: req.Collection,
		Query:          qdrant.NewQuery(f32...),
		Limit:          ptrUint64(uint64(req.TopK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if req.Filter != "" {
		queryPoints.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{matchTextCondition(req.Filter)},
		}
	}

	scored, err := s.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("qdrant: query against %s failed: %w", req.Collection, err)
	}

	return s.toDocuments(scored), nil
}

func (s *Store) SearchMany(ctx context.Context, collections []string, query string, topK int) ([]*vectorstore.Document, error) {
	var all []*vectorstore.Document

	for _, c := range collections {
		docs, err := s.Search(ctx, &vectorstore.RetrievalRequest{Collection: c, Query: query, TopK: topK})
		if err != nil {
			// A missing/empty collection is not fatal to the fan-in:
			// skip it and continue with the rest.
			continue
		}
		for _, d := range docs {
			if d.Metadata == nil {
				d.Metadata = map[string]any{}
			}
			d.Metadata[vectorstore.SourceCollectionKey] = c
			all = append(all, d)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Score < all[j].Score })
	if topK > 0 && len(all) > topK {
		all = all[:topK]
	}
	return all, nil
}

func (s *Store) Query(ctx context.Context, req *vectorstore.QueryRequest) ([]*vectorstore.Document, error) {
	limit := uint32(req.Limit)
	if limit == 0 {
		limit = 1000
	}

	scrollReq := &qdrant.ScrollPoints{
		CollectionName: req.Collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if req.Filter != "" {
		scrollReq.Filter = &qdrant.Filter{Must: []*qdrant.Condition{matchTextCondition(req.Filter)}}
	}

	points, err := s.client.Scroll(ctx, scrollReq)
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll against %s failed: %w", req.Collection, err)
	}

	out := make([]*vectorstore.Document, 0, len(points))
	for _, p := range points {
		out = append(out, s.toDocument(p.GetPayload(), 0))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, req *vectorstore.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("qdrant: invalid delete request: %w", err)
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: req.Collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{matchTextCondition(req.Filter)},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to delete from %s: %w", req.Collection, err)
	}
	return nil
}

func (s *Store) toDocuments(scored []*qdrant.ScoredPoint) []*vectorstore.Document {
	out := make([]*vectorstore.Document, 0, len(scored))
	for _, p := range scored {
		out = append(out, s.toDocument(p.GetPayload(), float64(p.GetScore())))
	}
	return out
}

func (s *Store) toDocument(payload map[string]*qdrant.Value, score float64) *vectorstore.Document {
	metadata := make(map[string]any, len(payload))
	text := ""
	for k, v := range payload {
		if k == payloadTextKey {
			text = v.GetStringValue()
			continue
		}
		metadata[k] = convertValue(v)
	}

	return &vectorstore.Document{
		Text:     text,
		Score:    score,
		Metadata: metadata,
	}
}

func convertValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		out := make([]any, 0, len(kind.ListValue.Values))
		for _, item := range kind.ListValue.Values {
			out = append(out, convertValue(item))
		}
		return out
	default:
		return nil
	}
}

// matchTextCondition builds a substring-style payload match on paper_id.
// The source-text retriever tries three LIKE-style patterns in order;
// the caller supplies the already-chosen pattern text here.
func matchTextCondition(text string) *qdrant.Condition {
	return qdrant.NewMatchText("paper_id", text)
}

func ptrUint64(v uint64) *uint64 { return &v }
