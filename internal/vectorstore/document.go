package vectorstore

// Document is a single vector-indexed record: content plus metadata plus
// (after a search) a similarity score. It mirrors the reference
// framework's own media/document.Document shape, trimmed to the fields
// this pipeline actually needs (no Media/Formatter — this corpus is
// text-only).
type Document struct {
	ID        string
	Text      string
	Score     float64
	Metadata  map[string]any
	Embedding []float64
}
