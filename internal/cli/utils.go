// Package cli provides output formatting and an HTTP client for the kotae command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	}
	return "", fmt.Errorf("invalid output format %q (use text or json)", s)
}

// observationPreview bounds observations in text output; they can hold whole documents.
const observationPreview = 300

const rule = "─────────────────────────────────────────────────────────"

var (
	thoughtColor     = color.New(color.FgCyan)
	actionColor      = color.New(color.FgYellow)
	observationColor = color.New(color.FgBlue)
	resultColor      = color.New(color.FgGreen, color.Bold)
	errorColor       = color.New(color.FgRed, color.Bold)
	dimColor         = color.New(color.Faint)
)

func stepColor(t models.StepType) *color.Color {
	switch t {
	case models.StepThought:
		return thoughtColor
	case models.StepAction:
		return actionColor
	case models.StepObservation:
		return observationColor
	case models.StepResult:
		return resultColor
	}
	return dimColor
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteStep writes one agent step as a labeled line.
func WriteStep(w io.Writer, step models.Step) {
	content := step.Content
	if step.Type == models.StepObservation {
		content = Truncate(content, observationPreview)
	}
	stepColor(step.Type).Fprintf(w, "[%s] ", strings.ToUpper(string(step.Type)))
	fmt.Fprintln(w, content)
}

// WriteQueryResponse writes an answered query. Text output lists the steps
// unless they were already streamed.
func WriteQueryResponse(w io.Writer, resp *models.QueryResponse, format OutputFormat, includeSteps bool) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if includeSteps {
		for _, step := range resp.Steps {
			WriteStep(w, step)
		}
	}
	fmt.Fprintln(w, rule)
	if !resp.Success {
		errorColor.Fprint(w, "Error: ")
		fmt.Fprintln(w, resp.Error)
	} else {
		resultColor.Fprintln(w, "Answer:")
		fmt.Fprintln(w, resp.Result)
	}
	meta := fmt.Sprintf("%d steps in %dms", len(resp.Steps), resp.TimeMS)
	if resp.FromCache {
		meta += " (cached)"
	}
	dimColor.Fprintln(w, meta)
	return nil
}

// WriteDocuments writes a document listing.
func WriteDocuments(w io.Writer, docs []models.DocumentSummary, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []models.DocumentSummary{}
		}
		return writeJSON(w, map[string]interface{}{"documents": docs, "count": len(docs)})
	}
	fmt.Fprintf(w, "\n%d documents\n\n", len(docs))
	for _, d := range docs {
		fmt.Fprintln(w, rule)
		thoughtColor.Fprint(w, d.Title)
		dimColor.Fprintf(w, " (%d bytes)\n", d.Size)
		fmt.Fprintf(w, "%s\n", TruncateWords(d.ContentPreview, 30))
	}
	return nil
}

// WriteHistory writes past queries, newest first.
func WriteHistory(w io.Writer, records []*models.QueryRecord, format OutputFormat) error {
	if format == OutputJSON {
		if records == nil {
			records = []*models.QueryRecord{}
		}
		return writeJSON(w, map[string]interface{}{"queries": records, "count": len(records)})
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No queries yet.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintln(w, rule)
		status := resultColor.Sprint("ok")
		if !rec.Success {
			status = errorColor.Sprint("failed")
		}
		cached := ""
		if rec.FromCache {
			cached = " cached"
		}
		fmt.Fprintf(w, "%s  %s  %dms%s\n", rec.CreatedAt.Local().Format(time.DateTime), status, rec.DurationMS, cached)
		actionColor.Fprintf(w, "Q: ")
		fmt.Fprintln(w, rec.Query)
		if rec.Success {
			fmt.Fprintf(w, "A: %s\n", Truncate(rec.Result, 200))
		} else {
			fmt.Fprintf(w, "E: %s\n", rec.Error)
		}
	}
	return nil
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.DocumentSearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (showing %d)\n\n", response.Total, response.QueryTime, response.Count)
	for _, hit := range response.Results {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", hit.Rank, hit.Score)
		thoughtColor.Fprintf(w, "Title: %s\n", hit.Title)
		if len(hit.Fragments) > 0 {
			for _, f := range hit.Fragments {
				fmt.Fprintf(w, "  … %s\n", f)
			}
		} else if hit.Preview != "" {
			fmt.Fprintf(w, "\n%s\n", hit.Preview)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Status is the server status as reported by /api/status.
type Status struct {
	Version          string   `json:"version"`
	Documents        int      `json:"documents"`
	DocumentVersion  uint64   `json:"document_version"`
	AgentReady       bool     `json:"agent_ready"`
	Model            string   `json:"model,omitempty"`
	Cache            *Cache   `json:"cache,omitempty"`
	WatchDirectories []string `json:"watch_directories,omitempty"`
	DiskUsageBytes   int64    `json:"disk_usage_bytes,omitempty"`
}

// Cache is the answer cache section of Status.
type Cache struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// WriteStatus writes a status report.
func WriteStatus(w io.Writer, st *Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Version:     %s\n", st.Version)
	fmt.Fprintf(w, "Documents:   %d (version %d)\n", st.Documents, st.DocumentVersion)
	agent := resultColor.Sprint("ready")
	if !st.AgentReady {
		agent = errorColor.Sprint("not configured")
	}
	model := st.Model
	if model == "" {
		model = "-"
	}
	fmt.Fprintf(w, "Agent:       %s (model %s)\n", agent, model)
	if st.Cache != nil {
		fmt.Fprintf(w, "Cache:       %d entries, %d hits, %d misses\n", st.Cache.Entries, st.Cache.Hits, st.Cache.Misses)
	}
	if st.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "Disk usage:  %s\n", formatBytes(st.DiskUsageBytes))
	}
	if len(st.WatchDirectories) > 0 {
		fmt.Fprintln(w, "Watching:")
		for _, d := range st.WatchDirectories {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	return utils.Truncate(s, maxLen)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
