// Package report renders a finished run document as a human-readable
// summary: aggregate stats as JSON, text, or HTML, and the company list as
// CSV for spreadsheet triage.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/template"
	"time"

	"github.com/arun3676/agentception/internal/storage"
)

// Summary contains aggregated metrics about one pipeline run.
type Summary struct {
	RunID string
	City  string
	Role  string
	Depth string

	TotalCompanies  int
	HiringCompanies int
	WithContact     int
	AvgScore        float64
	AvgConfidence   float64
	TopCompany      string

	FundingStages   map[string]int
	MarketPositions map[string]int

	StartTime time.Time
	Duration  time.Duration
}

// GenerateSummary aggregates a run document into summary metrics.
func GenerateSummary(doc *storage.Document) Summary {
	s := Summary{
		RunID:           doc.RunID,
		City:            doc.City,
		Role:            doc.Role,
		Depth:           doc.Depth,
		FundingStages:   make(map[string]int),
		MarketPositions: make(map[string]int),
		StartTime:       doc.CreatedAt,
		Duration:        doc.Elapsed,
	}

	if len(doc.Companies) == 0 {
		return s
	}

	var scoreSum, confSum float64
	var enriched int
	for _, c := range doc.Companies {
		s.TotalCompanies++
		if c.JobPosting != nil {
			s.HiringCompanies++
		}
		if c.ContactHint != "" {
			s.WithContact++
		}
		scoreSum += c.Score
		if c.ConfidenceScore > 0 {
			confSum += c.ConfidenceScore
			enriched++
		}
		if c.FundingStage != "" {
			s.FundingStages[c.FundingStage]++
		}
		if c.MarketPosition != "" {
			s.MarketPositions[c.MarketPosition]++
		}
	}

	s.AvgScore = scoreSum / float64(s.TotalCompanies)
	if enriched > 0 {
		s.AvgConfidence = confSum / float64(enriched)
	}
	// Companies arrive ranked, so the first one is the headline.
	s.TopCompany = doc.Companies[0].Name
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Agentception Run Summary
------------------------
Run:           {{.RunID}}
Target:        {{.Role}} in {{.City}} ({{.Depth}})
Started:       {{.StartTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Companies:     {{.TotalCompanies}} found, {{.HiringCompanies}} hiring, {{.WithContact}} with contact
Avg Score:     {{printf "%.1f" .AvgScore}}
Avg Confidence:{{printf " %.2f" .AvgConfidence}}
Top Company:   {{.TopCompany}}

Funding Stages:
{{- range $stage, $count := .FundingStages}}
  {{$stage}}: {{$count}}
{{- else}}
  None
{{- end}}

Market Positions:
{{- range $pos, $count := .MarketPositions}}
  {{$pos}}: {{$count}}
{{- else}}
  None
{{- end}}
`
	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("failed to render text report: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Agentception Run Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Agentception Run Report</h1>
  <p><strong>Target:</strong> {{.Role}} in {{.City}} ({{.Depth}})</p>
  <p><strong>Started:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Companies</div>
    <div class="stat-val">{{.TotalCompanies}}</div>
  </div>
  <div class="stat-card">
    <div>Hiring</div>
    <div class="stat-val" style="color: {{if gt .HiringCompanies 0}}green{{else}}red{{end}};">{{.HiringCompanies}}</div>
  </div>
  <div class="stat-card">
    <div>With Contact</div>
    <div class="stat-val">{{.WithContact}}</div>
  </div>
  <div class="stat-card">
    <div>Avg Score</div>
    <div class="stat-val">{{printf "%.1f" .AvgScore}}</div>
  </div>

  <h3>Funding Stages</h3>
  <table>
    <tr><th>Stage</th><th>Count</th></tr>
    {{- range $stage, $count := .FundingStages}}
    <tr><td>{{$stage}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Market Positions</h3>
  <table>
    <tr><th>Position</th><th>Count</th></tr>
    {{- range $pos, $count := .MarketPositions}}
    <tr><td>{{$pos}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per company for spreadsheet triage.
func WriteCSV(w io.Writer, doc *storage.Document) error {
	cw := csv.NewWriter(w)
	header := []string{
		"name", "homepage", "score", "hiring", "job_url",
		"contact", "confidence", "funding_stage", "company_size", "market_position",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, c := range doc.Companies {
		jobURL := ""
		hiring := "false"
		if c.JobPosting != nil {
			hiring = "true"
			jobURL = c.JobPosting.URL
		}
		row := []string{
			c.Name,
			c.Homepage,
			strconv.FormatFloat(c.Score, 'f', 1, 64),
			hiring,
			jobURL,
			c.ContactHint,
			strconv.FormatFloat(c.ConfidenceScore, 'f', 2, 64),
			c.FundingStage,
			c.CompanySize,
			c.MarketPosition,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
