package rag

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed docs/*.md
var policyFS embed.FS

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// LoadPolicyDocuments reads the embedded policy corpus and splits each file
// into overlapping chunks tagged with source and chunk index.
func LoadPolicyDocuments() ([]Document, error) {
	entries, err := policyFS.ReadDir("docs")
	if err != nil {
		return nil, fmt.Errorf("read policy docs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []Document
	for _, name := range names {
		raw, err := policyFS.ReadFile("docs/" + name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for i, chunk := range SplitText(string(raw), chunkSize, chunkOverlap) {
			docs = append(docs, Document{
				Source:     name,
				ChunkIndex: i,
				Text:       chunk,
			})
		}
	}
	return docs, nil
}

// SplitText splits on paragraph boundaries first and falls back to a sliding
// window with overlap when a paragraph exceeds the chunk size.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = chunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > size {
			flush()
			chunks = append(chunks, slideWindow(para, size, overlap)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}

func slideWindow(text string, size, overlap int) []string {
	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, strings.TrimSpace(text[start:end]))
		if end == len(text) {
			break
		}
	}
	return chunks
}
