package rag

import (
	"strings"
	"testing"
)

func TestLoadPolicyDocuments(t *testing.T) {
	t.Parallel()

	docs, err := LoadPolicyDocuments()
	if err != nil {
		t.Fatalf("LoadPolicyDocuments() error = %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("no policy documents loaded")
	}

	sources := map[string]bool{}
	for _, d := range docs {
		sources[d.Source] = true
		if strings.TrimSpace(d.Text) == "" {
			t.Fatalf("empty chunk from %s", d.Source)
		}
		if len(d.Text) > chunkSize+chunkOverlap {
			t.Fatalf("oversized chunk from %s: %d chars", d.Source, len(d.Text))
		}
	}
	for _, want := range []string{"return_policy.md", "care_plus_benefits.md", "troubleshooting_guide.md"} {
		if !sources[want] {
			t.Fatalf("missing chunks for %s", want)
		}
	}
}

func TestSplitTextParagraphFirst(t *testing.T) {
	t.Parallel()

	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"
	chunks := SplitText(text, 40, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d: %v", len(chunks), chunks)
	}
	for _, c := range chunks {
		if len(c) > 40 {
			t.Fatalf("chunk exceeds size: %q", c)
		}
	}
}

func TestSplitTextLongParagraphOverlaps(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("abcdefghij", 30) // 300 chars, no paragraph breaks
	chunks := SplitText(long, 100, 20)
	if len(chunks) < 3 {
		t.Fatalf("expected sliding-window chunks, got %d", len(chunks))
	}
	// Consecutive windows share the overlap region.
	first, second := chunks[0], chunks[1]
	if !strings.HasPrefix(second, first[len(first)-20:]) {
		t.Fatal("windows do not overlap")
	}
}

func TestSplitTextEmpty(t *testing.T) {
	t.Parallel()

	if chunks := SplitText("   \n\n  ", 100, 10); chunks != nil {
		t.Fatalf("expected nil for blank input, got %v", chunks)
	}
}
