// Package storage persists finished pipeline runs. A run is stored as one
// document keyed by its run id; backends only need to round-trip the payload,
// all shaping happens upstream.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/roles"
)

// ErrNotFound is returned when no document exists for a run id.
var ErrNotFound = errors.New("storage: document not found")

// Document is the complete output of one pipeline run.
type Document struct {
	RunID         string                  `json:"run_id"`
	City          string                  `json:"city"`
	Role          string                  `json:"role"`
	Depth         string                  `json:"depth"`
	RoleProfile   roles.Profile           `json:"role_profile"`
	Companies     []*company.Intelligence `json:"companies"`
	ResumeExcerpt string                  `json:"resume_excerpt,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	Elapsed       time.Duration           `json:"elapsed"`
}

// Filter narrows a document listing.
type Filter struct {
	City  string
	Role  string
	Since *time.Time
	Limit int
}

// Backend defines the interface for storing and querying run documents.
type Backend interface {
	SaveDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, runID string) (*Document, error)
	ListDocuments(ctx context.Context, filter Filter) ([]*Document, error)
	Close() error
}
