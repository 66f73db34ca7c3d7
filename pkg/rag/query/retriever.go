package query

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"pdf-chat-be/internal/entity"
)

// Retriever picks the chunks forwarded to generation. Implementations must
// return chunks in reading order.
type Retriever interface {
	Retrieve(ctx context.Context, question string, chunks []entity.Chunk) ([]entity.Chunk, error)
}

// AllChunks forwards the full chunk set.
type AllChunks struct{}

func (AllChunks) Retrieve(_ context.Context, _ string, chunks []entity.Chunk) ([]entity.Chunk, error) {
	return chunks, nil
}

// LexicalRetriever keeps the topK chunks with the highest word overlap
// (Ochiai coefficient) with the question.
type LexicalRetriever struct {
	TopK int
}

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

func (r LexicalRetriever) Retrieve(_ context.Context, question string, chunks []entity.Chunk) ([]entity.Chunk, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 5
	}
	if topK >= len(chunks) {
		return chunks, nil
	}

	qset := toTokenSet(question)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(chunks))
	for i, ch := range chunks {
		scores[i] = pair{i, overlapOchiai(qset, ch.Text)}
	}
	// Stable so ties keep reading order
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	picked := make([]int, 0, topK)
	for _, p := range scores[:topK] {
		picked = append(picked, p.idx)
	}
	sort.Ints(picked)

	out := make([]entity.Chunk, len(picked))
	for i, idx := range picked {
		out[i] = chunks[idx]
	}
	return out, nil
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func overlapOchiai(qset map[string]struct{}, text string) float64 {
	stoks := unicodeWordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(stoks))
	inter := 0
	for _, t := range stoks {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	// |A∩B| / sqrt(|A||B|)
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}

// NewRetriever maps a configured mode to a Retriever.
func NewRetriever(mode string, topK int) Retriever {
	if mode == "lexical" {
		return LexicalRetriever{TopK: topK}
	}
	return AllChunks{}
}
