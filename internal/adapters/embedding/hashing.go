// Package embedding provides embedding adapters.
// Clean Architecture: Adapters implementing ports.EmbeddingService.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// HashingEmbedder is a deterministic local embedder using the feature
// hashing trick over term frequencies. Tokens are hashed into a fixed
// number of buckets, weighted by normalized term frequency, then the
// vector is L2 normalized. It needs no corpus preparation, so documents
// can be embedded incrementally at ingest time, and identical text
// always produces an identical vector.
type HashingEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// DefaultDimension is the bucket count used when none is configured.
const DefaultDimension = 512

// NewHashingEmbedder creates a hashing embedder with the given dimension.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashingEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// ModelName identifies this embedder for status reporting.
func (e *HashingEmbedder) ModelName() string {
	return "hashing-tf-" + strconv.Itoa(e.dimension)
}

// Dimension returns the dimensionality of produced vectors.
func (e *HashingEmbedder) Dimension() int { return e.dimension }

// Embed computes the hashed term-frequency embedding for the text.
// Text with no indexable tokens embeds to the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	tf := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		tf[e.bucket(tok)]++
	}

	total := float64(len(tokens))
	for idx, count := range tf {
		// Sublinear scaling keeps repeated terms from dominating.
		vec[idx] = float32((1 + math.Log(float64(count))) / total)
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// bucket maps a token to a vector index via FNV-1a.
func (e *HashingEmbedder) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}

func (e *HashingEmbedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "do", "does", "did", "what", "how", "why", "when", "where", "which", "who",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
