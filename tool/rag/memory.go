package rag

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// MemoryRetriever is a process-local document index. Documents are ranked by
// the share of query terms they contain (case-insensitive). Suitable for
// tests, demos and small static FAQs; use a vector index for anything larger.
type MemoryRetriever struct {
	mu    sync.RWMutex
	docs  []Document
	index map[string]int
	seq   int
}

// NewMemoryRetriever creates an index holding docs.
func NewMemoryRetriever(docs ...Document) *MemoryRetriever {
	r := &MemoryRetriever{index: map[string]int{}}
	r.AddDocuments(docs...)

	return r
}

// Add stores content and returns its generated id.
func (r *MemoryRetriever) Add(content string, metadata map[string]any) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("doc_%d", r.seq)
	r.put(Document{ID: id, Content: content, Metadata: metadata})

	return id
}

// AddDocuments stores docs, replacing documents with the same id. Documents
// without an id get a generated one.
func (r *MemoryRetriever) AddDocuments(docs ...Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range docs {
		if d.ID == "" {
			d.ID = fmt.Sprintf("doc_%d", r.seq)
		}

		r.put(d)
	}
}

func (r *MemoryRetriever) put(d Document) {
	r.seq++

	d.Score = 0
	d.Metadata = maps.Clone(d.Metadata)

	if i, ok := r.index[d.ID]; ok {
		r.docs[i] = d
		return
	}

	r.index[d.ID] = len(r.docs)
	r.docs = append(r.docs, d)
}

// Delete removes a document by id.
func (r *MemoryRetriever) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}

	r.docs = append(r.docs[:i], r.docs[i+1:]...)

	delete(r.index, id)

	for j := i; j < len(r.docs); j++ {
		r.index[r.docs[j].ID] = j
	}

	return nil
}

// Len returns the number of indexed documents.
func (r *MemoryRetriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.docs)
}

// Retrieve implements Retriever. Documents matching no query term are
// skipped; an empty query matches everything.
func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := queryTerms(query)

	r.mu.RLock()
	results := make([]Document, 0, len(r.docs))

	for _, d := range r.docs {
		score := 1.0

		if len(terms) > 0 {
			content := strings.ToLower(d.Content)
			hits := 0

			for _, t := range terms {
				if strings.Contains(content, t) {
					hits++
				}
			}

			if hits == 0 {
				continue
			}

			score = float64(hits) / float64(len(terms))
		}

		d.Score = score
		d.Metadata = maps.Clone(d.Metadata)
		results = append(results, d)
	}
	r.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// queryTerms lowercases query and drops words of two letters or fewer.
func queryTerms(query string) []string {
	var terms []string

	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}

	return terms
}
