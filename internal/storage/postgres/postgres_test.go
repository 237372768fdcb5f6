package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/storage"
)

func TestPostgresBackend(t *testing.T) {
	// Only run this test if AGENTCEPTION_TEST_PG_DSN is set
	dsn := os.Getenv("AGENTCEPTION_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: AGENTCEPTION_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	now := time.Now().UTC()

	intel := company.NewIntelligence(company.Candidate{
		Name:     "Acme",
		Homepage: "https://acme.ai",
		Score:    51,
	})
	intel.FundingStage = "series a"
	intel.ConfidenceScore = 1

	doc := &storage.Document{
		RunID:     "testpg-run-1",
		City:      "Austin",
		Role:      "ai engineer",
		Depth:     "deep",
		Companies: []*company.Intelligence{intel},
		CreatedAt: now,
		Elapsed:   90 * time.Second,
	}

	if err := b.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to save document: %v", err)
	}

	got, err := b.GetDocument(ctx, doc.RunID)
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if got.City != doc.City || got.Role != doc.Role {
		t.Errorf("Expected %s/%s, got %s/%s", doc.City, doc.Role, got.City, got.Role)
	}
	if len(got.Companies) != 1 || got.Companies[0].FundingStage != "series a" {
		t.Errorf("Companies did not round-trip: %+v", got.Companies)
	}
	// Postgres timestamps might differ slightly in sub-millisecond precision
	// compared to Go time.Now(), checking Unix seconds is usually safe enough
	if got.CreatedAt.Unix() != doc.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", doc.CreatedAt, got.CreatedAt)
	}

	// Re-saving the same run must upsert, not duplicate.
	doc.ResumeExcerpt = "updated"
	if err := b.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to re-save document: %v", err)
	}

	past := now.Add(-1 * time.Hour)
	docs, err := b.ListDocuments(ctx, storage.Filter{City: "Austin", Since: &past})
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) < 1 {
		t.Fatalf("Expected at least 1 document, got %d", len(docs))
	}
}
