// Package resume keeps uploaded resume text in memory, keyed by an opaque
// token. Runs reference a token instead of carrying the full text around, and
// only a bounded excerpt ever lands in the stored document.
package resume

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// excerptMax bounds how much resume text a run document may carry.
const excerptMax = 2500

// Store is an in-memory token-to-resume map, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]string)}
}

// Put saves resume text and returns the token that identifies it.
func (s *Store) Put(text string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.docs[token] = text
	s.mu.Unlock()
	return token
}

// Get returns the full resume text for a token.
func (s *Store) Get(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[token]
	return text, ok
}

// Delete removes a stored resume.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.docs, token)
	s.mu.Unlock()
}

// Excerpt returns the bounded excerpt for a token, or empty when the token is
// unknown. An unknown token is not an error; the run just proceeds without
// resume context.
func (s *Store) Excerpt(token string) string {
	text, ok := s.Get(token)
	if !ok {
		return ""
	}
	return Excerpt(text)
}

// Excerpt trims text to the excerpt budget.
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > excerptMax {
		return text[:excerptMax]
	}
	return text
}
