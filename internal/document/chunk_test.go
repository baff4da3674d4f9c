package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/document"
)

func TestSplitSentences_Basic(t *testing.T) {
	got := document.SplitSentences("First sentence. Second sentence! Third sentence?")
	require.Len(t, got, 3)
	assert.Equal(t, "First sentence.", got[0])
	assert.Equal(t, "Second sentence!", got[1])
	assert.Equal(t, "Third sentence?", got[2])
}

func TestChunk_ProducesOverlappingChunksCoveringAllSentences(t *testing.T) {
	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, strings.Repeat("x", 40)+".")
	}
	text := strings.Join(sentences, " ")

	chunks := document.Chunk(text, 150, 50)
	require.NotEmpty(t, chunks)

	// Every produced chunk must be non-empty and built from whole
	// sentences (each ends with the terminal punctuation).
	for _, c := range chunks {
		assert.True(t, strings.HasSuffix(strings.TrimSpace(c), "."))
	}

	// Each 41-character sentence fits the 50-character overlap, so every
	// chunk after the first repeats its predecessor's last sentence: the
	// chunks together hold more sentences than the text.
	total := 0
	for _, c := range chunks {
		total += len(document.SplitSentences(c))
	}
	assert.Greater(t, total, len(sentences))

	// The final chunk must reach the end of the text: its last sentence
	// is the text's last sentence.
	lastChunkSentences := document.SplitSentences(chunks[len(chunks)-1])
	assert.Equal(t, sentences[len(sentences)-1], lastChunkSentences[len(lastChunkSentences)-1])
}

func TestChunk_AlwaysMakesForwardProgress(t *testing.T) {
	// A single sentence far longer than chunkSize must still form its
	// own chunk rather than looping forever.
	text := strings.Repeat("y", 1000) + "."
	chunks := document.Chunk(text, 10, 5)
	require.Len(t, chunks, 1)
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Nil(t, document.Chunk("", 500, 100))
}
