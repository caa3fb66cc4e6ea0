package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	api "github.com/nursabrinaas08/data-cleaning/pkg/contracts/api/v1"
)

// ReportContentType is the media type of rendered quality reports
const ReportContentType = "text/html; charset=utf-8"

// Report cleans an upload and renders the before and after quality reports
// as a standalone HTML page
func (s *CleaningService) Report(ctx context.Context, upload Upload, req api.CleaningOptionsRequest) ([]byte, error) {
	resp, err := s.Clean(ctx, upload, req)
	if err != nil {
		return nil, err
	}
	return RenderReport(resp), nil
}

// RenderReport renders a cleaning response as HTML
func RenderReport(resp *api.CleanResponse) []byte {
	md := ReportMarkdown(resp)

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Data quality report: " + resp.Filename,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// ReportMarkdown renders a cleaning response as Markdown
func ReportMarkdown(resp *api.CleanResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data quality report: %s\n\n", escapeMarkdown(filepath.Base(resp.Filename)))

	b.WriteString("## Cleaning options\n\n")
	fmt.Fprintf(&b, "- Missing values: `%s`\n", resp.Options.MissingStrategy)
	if resp.Options.CustomFillValue != nil {
		fmt.Fprintf(&b, "- Fill value: %s\n", escapeMarkdown(*resp.Options.CustomFillValue))
	}
	fmt.Fprintf(&b, "- Remove duplicates: %t\n", resp.Options.Deduplicate)
	fmt.Fprintf(&b, "- Download: %s (%s)\n\n", resp.Download.Filename, resp.Download.ContentType)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Before | After |\n|---|---:|---:|\n")
	writeRow(&b, "Rows", strconv.Itoa(resp.Before.Rows), strconv.Itoa(resp.After.Rows))
	writeRow(&b, "Columns", strconv.Itoa(resp.Before.Columns), strconv.Itoa(resp.After.Columns))
	writeRow(&b, "Missing values", strconv.Itoa(resp.Before.MissingTotal), strconv.Itoa(resp.After.MissingTotal))
	writeRow(&b, "Duplicate rows", strconv.Itoa(resp.Before.DuplicateRows), strconv.Itoa(resp.After.DuplicateRows))
	fmt.Fprintf(&b, "\nRows removed: %d. Cells filled: %d.\n\n", resp.RowsRemoved, resp.CellsFilled)

	b.WriteString("## Missing values per column\n\n")
	b.WriteString("| Column | Kind | Before | After |\n|---|---|---:|---:|\n")
	for _, col := range resp.Before.ColumnDetails {
		writeRow(&b,
			escapeMarkdown(col.Name),
			col.Kind,
			strconv.Itoa(col.Missing),
			strconv.Itoa(resp.After.MissingPerColumn[col.Name]))
	}
	b.WriteString("\n")

	if len(resp.Statistics) > 0 {
		b.WriteString("## Statistics\n\n")
		b.WriteString("| Column | Count | Mean | Std | Min | 25% | 50% | 75% | Max |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, st := range resp.Statistics {
			writeRow(&b,
				escapeMarkdown(st.Column),
				strconv.Itoa(st.Count),
				formatFloat(st.Mean), formatStat(st.StdDev), formatFloat(st.Min),
				formatFloat(st.P25), formatFloat(st.Median), formatFloat(st.P75),
				formatFloat(st.Max))
		}
		b.WriteString("\n")
	}

	if len(resp.Preview.Columns) > 0 {
		b.WriteString("## Preview\n\n")
		header := make([]string, len(resp.Preview.Columns))
		for i, col := range resp.Preview.Columns {
			header[i] = escapeMarkdown(col.Name)
		}
		writeRow(&b, header...)
		b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
		for _, row := range resp.Preview.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				if cell == nil {
					cells[i] = "*missing*"
				} else {
					cells[i] = escapeMarkdown(*cell)
				}
			}
			writeRow(&b, cells...)
		}
	}

	return b.String()
}

func writeRow(b *strings.Builder, cells ...string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func formatStat(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
	"\r\n", " ",
	"\n", " ",
)

// escapeMarkdown makes a cell value safe inside a table row
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
