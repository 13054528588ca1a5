// Package rag provides the retrieval service: a sqlite-vec similarity
// index over the policy documents, queried read-only by graph nodes.
package rag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	contractx "github.com/techflow/careflow/agent/contract"
)

var ErrIndexUnavailable = errors.New("retrieval index unavailable")

func init() {
	// Auto-load the sqlite-vec extension on every new sqlite3 connection.
	vec.Auto()
}

// Document is one chunk to be indexed, with provenance.
type Document struct {
	Source     string
	ChunkIndex int
	Text       string
}

// Index ranks policy chunks with a sqlite-vec vec0 table over normalized
// embeddings. Rowid i+1 maps to docs[i]; the table holds only vectors and
// the chunk bodies stay in memory. Immutable after Build and safe for
// concurrent Query calls.
type Index struct {
	embedder Embedder
	db       *sql.DB
	docs     []Document
}

// BuildIndex embeds all documents up front and loads them into an in-memory
// vec0 table. An empty document set yields ErrIndexUnavailable on every
// query rather than a build failure, so a missing corpus degrades instead
// of aborting startup.
func BuildIndex(ctx context.Context, embedder Embedder, docs []Document) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: nil embedder", contractx.ErrValidation)
	}

	idx := &Index{embedder: embedder}
	if len(docs) == 0 {
		return idx, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vecs) != len(docs) || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: corpus embedding shape mismatch", contractx.ErrSchemaViolation)
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}
	// A pooled second connection would see a different empty :memory: db.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		"CREATE VIRTUAL TABLE policy_vec USING vec0(embedding float[%d])", len(vecs[0]),
	)); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vector table: %w", err)
	}

	for i, v := range vecs {
		blob, err := vec.SerializeFloat32(v)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("serialize embedding %d: %w", i, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO policy_vec(rowid, embedding) VALUES (?, ?)", i+1, blob); err != nil {
			db.Close()
			return nil, fmt.Errorf("index chunk %d: %w", i, err)
		}
	}

	idx.db = db
	idx.docs = append([]Document(nil), docs...)
	return idx, nil
}

// Query returns the top-k fragments ranked by cosine similarity,
// deduplicated by (source, text). Embeddings are L2-normalized, so the
// table's euclidean KNN ranks exactly like cosine and the reported score is
// the recovered cosine similarity. Ordering is total: score descending,
// then source, then chunk index, so identical queries against an unchanged
// index return identical results.
func (x *Index) Query(ctx context.Context, text string, k int) (contractx.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1", contractx.ErrValidation)
	}
	if x == nil || x.db == nil || len(x.docs) == 0 {
		return nil, ErrIndexUnavailable
	}

	vecs, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := vec.SerializeFloat32(vecs[0])
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	// The corpus is a handful of chunks; rank all of them and leave dedup
	// and the k cut to Go.
	rows, err := x.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT rowid, distance FROM policy_vec WHERE embedding MATCH ? ORDER BY distance LIMIT %d", len(x.docs),
	), blob)
	if err != nil {
		return nil, fmt.Errorf("query vector table: %w", err)
	}
	defer rows.Close()

	type scored struct {
		doc   Document
		score float64
	}
	ranked := make([]scored, 0, len(x.docs))
	for rows.Next() {
		var rowid int64
		var dist float64
		if err := rows.Scan(&rowid, &dist); err != nil {
			return nil, fmt.Errorf("scan ranked chunk: %w", err)
		}
		if rowid < 1 || rowid > int64(len(x.docs)) {
			continue
		}
		// For unit vectors, ||a-b||^2 = 2 - 2*cos(a,b).
		ranked = append(ranked, scored{doc: x.docs[rowid-1], score: 1 - dist*dist/2})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].doc.Source != ranked[j].doc.Source {
			return ranked[i].doc.Source < ranked[j].doc.Source
		}
		return ranked[i].doc.ChunkIndex < ranked[j].doc.ChunkIndex
	})

	seen := make(map[string]struct{}, k)
	out := make(contractx.RetrievalResult, 0, k)
	for _, s := range ranked {
		key := s.doc.Source + "\x00" + s.doc.Text
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, contractx.RetrievedChunk{
			Source: s.doc.Source,
			Text:   s.doc.Text,
			Score:  s.score,
		})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Size reports the number of indexed chunks.
func (x *Index) Size() int {
	if x == nil {
		return 0
	}
	return len(x.docs)
}

// Close releases the in-memory vector store.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

var _ contractx.Retriever = (*Index)(nil)
