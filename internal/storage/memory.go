package storage

import (
	"context"
	"sort"
	"sync"
)

// ensure memoryBackend implements Backend
var _ Backend = (*memoryBackend)(nil)

// memoryBackend keeps documents in a map. It backs tests and runs that did
// not configure persistence.
type memoryBackend struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemory creates an in-memory Backend.
func NewMemory() Backend {
	return &memoryBackend{docs: make(map[string]*Document)}
}

func (b *memoryBackend) SaveDocument(_ context.Context, doc *Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[doc.RunID] = doc
	return nil
}

func (b *memoryBackend) GetDocument(_ context.Context, runID string) (*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	doc, ok := b.docs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (b *memoryBackend) ListDocuments(_ context.Context, filter Filter) ([]*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Document
	for _, doc := range b.docs {
		if filter.City != "" && doc.City != filter.City {
			continue
		}
		if filter.Role != "" && doc.Role != filter.Role {
			continue
		}
		if filter.Since != nil && doc.CreatedAt.Before(*filter.Since) {
			continue
		}
		out = append(out, doc)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (b *memoryBackend) Close() error {
	return nil
}
