package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/arun3676/agentception/internal/company"
	"github.com/arun3676/agentception/internal/storage"
)

func sampleDoc() *storage.Document {
	acme := company.NewIntelligence(company.Candidate{
		Name:        "Acme",
		Homepage:    "https://acme.ai",
		Score:       51,
		ContactHint: "hello@acme.ai",
		JobPosting:  &company.JobPosting{URL: "https://acme.ai/careers/ai", Title: "AI Engineer"},
	})
	acme.ConfidenceScore = 1
	acme.FundingStage = "series a"
	acme.MarketPosition = "B2B Enterprise"

	beta := company.NewIntelligence(company.Candidate{
		Name:     "Beta",
		Homepage: "https://beta.dev",
		Score:    35,
	})
	beta.ConfidenceScore = 0.5
	beta.MarketPosition = "Developer Tools"

	gamma := company.NewIntelligence(company.Candidate{
		Name:     "Gamma",
		Homepage: "https://gamma.ai",
		Score:    34,
	})

	return &storage.Document{
		RunID:     "run-1",
		City:      "Austin",
		Role:      "ai engineer",
		Depth:     "standard",
		Companies: []*company.Intelligence{acme, beta, gamma},
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Elapsed:   42 * time.Second,
	}
}

func TestGenerateSummary(t *testing.T) {
	summary := GenerateSummary(sampleDoc())

	if summary.TotalCompanies != 3 {
		t.Errorf("expected 3 companies, got %d", summary.TotalCompanies)
	}
	if summary.HiringCompanies != 1 {
		t.Errorf("expected 1 hiring company, got %d", summary.HiringCompanies)
	}
	if summary.WithContact != 1 {
		t.Errorf("expected 1 company with contact, got %d", summary.WithContact)
	}
	if summary.TopCompany != "Acme" {
		t.Errorf("expected top company Acme, got %s", summary.TopCompany)
	}
	if math.Abs(summary.AvgScore-40.0) > 1e-9 {
		t.Errorf("expected avg score 40, got %v", summary.AvgScore)
	}
	// Only the two enriched companies count toward confidence.
	if math.Abs(summary.AvgConfidence-0.75) > 1e-9 {
		t.Errorf("expected avg confidence 0.75, got %v", summary.AvgConfidence)
	}
	if summary.FundingStages["series a"] != 1 {
		t.Errorf("funding stages = %v", summary.FundingStages)
	}
	if summary.MarketPositions["Developer Tools"] != 1 {
		t.Errorf("market positions = %v", summary.MarketPositions)
	}
	if summary.Duration != 42*time.Second {
		t.Errorf("expected 42s duration, got %v", summary.Duration)
	}
}

func TestGenerateSummary_EmptyRun(t *testing.T) {
	summary := GenerateSummary(&storage.Document{RunID: "run-2", City: "Austin", Role: "ai engineer"})
	if summary.TotalCompanies != 0 || summary.TopCompany != "" {
		t.Errorf("unexpected summary for empty run: %+v", summary)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Summary{TotalCompanies: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"TotalCompanies": 5`) {
		t.Errorf("expected JSON to contain TotalCompanies: 5")
	}
}

func TestWriteText(t *testing.T) {
	summary := GenerateSummary(sampleDoc())
	var buf bytes.Buffer
	if err := WriteText(&buf, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "3 found, 1 hiring, 1 with contact") {
		t.Errorf("expected company line, got:\n%s", out)
	}
	if !strings.Contains(out, "series a: 1") {
		t.Errorf("expected funding stage line, got:\n%s", out)
	}
	if !strings.Contains(out, "Top Company:   Acme") {
		t.Errorf("expected top company line, got:\n%s", out)
	}
}

func TestWriteHTML(t *testing.T) {
	summary := GenerateSummary(sampleDoc())
	var buf bytes.Buffer
	if err := WriteHTML(&buf, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>Agentception Run Report</title>") {
		t.Errorf("expected HTML title")
	}
	if !strings.Contains(out, "B2B Enterprise") {
		t.Errorf("expected HTML to contain market position")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "Acme" || rows[1][3] != "true" || rows[1][4] != "https://acme.ai/careers/ai" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[2][3] != "false" {
		t.Errorf("beta should not be hiring: %v", rows[2])
	}
}
