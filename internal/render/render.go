// Package render turns a bill and its allocation into a Markdown report, and
// renders that report for the terminal.
package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/mmynk/splitt/internal/amount"
	"github.com/mmynk/splitt/internal/calculator"
	"github.com/mmynk/splitt/internal/models"
)

// Report is the display form of a bill: every amount is already rounded and
// formatted in the bill's currency.
type Report struct {
	Title   string
	Items   []ItemRow
	People  []PersonRow
	Summary SummaryRow
}

// ItemRow is one line of the items table.
type ItemRow struct {
	ID       int64
	Name     string
	Cost     string
	SharedBy string
}

// PersonRow is one line of the split table.
type PersonRow struct {
	ID       int64
	Name     string
	Subtotal string
	Tax      string
	Tip      string
	Total    string
}

// SummaryRow holds the bill totals.
type SummaryRow struct {
	Subtotal   string
	Tax        string
	TaxMode    models.SplitMode
	Tip        string
	TipMode    models.SplitMode
	Total      string
	Unassigned string // empty when everything is assigned
}

// NewReport computes the allocation of b and formats it in currency.
func NewReport(b models.Bill, currency string) *Report {
	alloc := calculator.ForBill(b)
	summary := calculator.Summarize(b, alloc)
	r := &Report{
		Title: b.Title,
		Summary: SummaryRow{
			Subtotal: amount.Format(summary.Subtotal, currency),
			Tax:      amount.Format(summary.Tax, currency),
			TaxMode:  b.TaxMode,
			Tip:      amount.Format(summary.Tip, currency),
			TipMode:  b.TipMode,
			Total:    amount.Format(summary.Total, currency),
		},
	}
	if r.Title == "" {
		r.Title = "Bill"
	}
	if !amount.Round(summary.Unassigned, currency).IsZero() {
		r.Summary.Unassigned = amount.Format(summary.Unassigned, currency)
	}

	for _, item := range b.Items {
		var names []string
		for _, id := range item.ParticipantIDs {
			if p, ok := b.Participant(id); ok {
				names = append(names, escape(p.Name))
			}
		}
		sharedBy := strings.Join(names, ", ")
		if sharedBy == "" {
			sharedBy = "_nobody_"
		}
		r.Items = append(r.Items, ItemRow{
			ID:       item.ID,
			Name:     escape(item.Name),
			Cost:     amount.Format(item.Cost, currency),
			SharedBy: sharedBy,
		})
	}

	for _, p := range b.Participants {
		split := alloc[p.ID]
		r.People = append(r.People, PersonRow{
			ID:       p.ID,
			Name:     escape(p.Name),
			Subtotal: amount.Format(split.Subtotal, currency),
			Tax:      amount.Format(split.Tax, currency),
			Tip:      amount.Format(split.Tip, currency),
			Total:    amount.Format(split.Total, currency),
		})
	}

	return r
}

// escape keeps user supplied names from breaking table cells.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// reportMarkdownTemplate is the template for rendering a Report in Markdown.
const reportMarkdownTemplate = `# {{ .Title }}

{{- if .Items }}

## Items

| # | Item | Cost | Shared by |
|---:|:---|---:|:---|
{{- range .Items }}
| {{ .ID }} | {{ .Name }} | {{ .Cost }} | {{ .SharedBy }} |
{{- end }}
{{- end -}}

{{- if .People }}

## Split

| # | Person | Subtotal | Tax | Tip | Total |
|---:|:---|---:|---:|---:|---:|
{{- range .People }}
| {{ .ID }} | {{ .Name }} | {{ .Subtotal }} | {{ .Tax }} | {{ .Tip }} | **{{ .Total }}** |
{{- end }}
{{- end }}

## Summary

| | |
|:---|---:|
| Subtotal | {{ .Summary.Subtotal }} |
| Tax ({{ .Summary.TaxMode }}) | {{ .Summary.Tax }} |
| Tip ({{ .Summary.TipMode }}) | {{ .Summary.Tip }} |
| **Total** | **{{ .Summary.Total }}** |
{{- if .Summary.Unassigned }}

> {{ .Summary.Unassigned }} of items are not assigned to anyone and are not included in the split.
{{- end }}
`

var reportTemplate = template.Must(template.New("report").Parse(reportMarkdownTemplate))

// Markdown renders the report as Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, r); err != nil {
		return fmt.Sprintf("Error executing template: %v", err)
	}
	return b.String()
}

// Terminal renders Markdown for display in a terminal of the given width.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
