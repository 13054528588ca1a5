package rag

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/techflow/careflow/agent/contract"
)

// Embedder turns texts into fixed-width vectors. The index only assumes the
// vectors are comparable under cosine similarity; the concrete model is
// interchangeable glue.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

/* ------------------------------ OpenAI ------------------------------ */

// OpenAIEmbedder calls the embeddings endpoint of an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client *openaisdk.Client
	model  string
}

func NewOpenAIEmbedder(client *openaisdk.Client, model string) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil openai client", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		model = string(openaisdk.EmbeddingModelTextEmbedding3Small)
	}
	return &OpenAIEmbedder{client: client, model: model}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(e.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings call: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", contractx.ErrSchemaViolation, len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[i] = normalize(vec)
	}
	return out, nil
}

/* ---------------------------- Term hashing --------------------------- */

const hashDims = 512

// HashingEmbedder is a deterministic term-frequency vectorizer: each token
// hashes into one of hashDims buckets, and the result is L2-normalized.
// It needs no network and always produces the same vector for the same
// text, which keeps retrieval reproducible offline and in tests.
type HashingEmbedder struct{}

func NewHashingEmbedder() HashingEmbedder { return HashingEmbedder{} }

func (HashingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, hashDims)
		for _, token := range tokenize(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			vec[h.Sum32()%hashDims]++
		}
		out[i] = normalize(vec)
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
