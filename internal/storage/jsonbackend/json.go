package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arun3676/agentception/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

// jsonBackend appends one NDJSON line per run document. It is the zero-setup
// backend for local use; the database engines take over for anything shared.
type jsonBackend struct {
	mu   sync.Mutex
	file *os.File
}

// New creates a new NDJSON-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open documents file: %w", err)
	}
	return &jsonBackend{file: f}, nil
}

func (b *jsonBackend) SaveDocument(ctx context.Context, doc *storage.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append document: %w", err)
	}
	return nil
}

func (b *jsonBackend) GetDocument(ctx context.Context, runID string) (*storage.Document, error) {
	docs, err := b.readAll()
	if err != nil {
		return nil, err
	}
	// Later lines win so a re-saved run returns its latest state.
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].RunID == runID {
			return docs[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (b *jsonBackend) ListDocuments(ctx context.Context, filter storage.Filter) ([]*storage.Document, error) {
	all, err := b.readAll()
	if err != nil {
		return nil, err
	}

	var filtered []*storage.Document
	for _, doc := range all {
		if filter.City != "" && doc.City != filter.City {
			continue
		}
		if filter.Role != "" && doc.Role != filter.Role {
			continue
		}
		if filter.Since != nil && doc.CreatedAt.Before(*filter.Since) {
			continue
		}
		filtered = append(filtered, doc)
	}

	// Newest first, matching the database backends.
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	if filter.Limit > 0 && filter.Limit < len(filtered) {
		filtered = filtered[:filter.Limit]
	}
	return filtered, nil
}

func (b *jsonBackend) readAll() ([]*storage.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind documents file: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	scanner := bufio.NewScanner(b.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var docs []*storage.Document
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc storage.Document
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document line: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents file: %w", err)
	}
	return docs, nil
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
