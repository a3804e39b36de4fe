// Package export renders blame annotations and commit logs to shareable
// text formats and copies them to the terminal clipboard.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/dlepage/ghist/internal/blame"
	"github.com/dlepage/ghist/internal/history"
)

// Format represents the desired export format.
type Format string

const (
	// FormatHTML emits an HTML document.
	FormatHTML Format = "html"
	// FormatMarkdown emits a Markdown table or code block.
	FormatMarkdown Format = "markdown"
	// FormatANSI emits an ANSI-colored string.
	FormatANSI Format = "ansi"
)

// ParseFormat resolves user input to a Format, accepting common aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(raw) {
	case "", string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatHTML), "htm":
		return FormatHTML, nil
	case string(FormatANSI), "text":
		return FormatANSI, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", raw)
	}
}

// Options control rendering.
type Options struct {
	// Title is shown in HTML/Markdown outputs when provided.
	Title string
}

const dateLayout = "2006-01-02"

// RenderBlame formats per-line attribution in the requested format.
func RenderBlame(lines []blame.Line, format Format, opts Options) (string, error) {
	switch format {
	case FormatHTML:
		return blameHTML(lines, opts), nil
	case FormatMarkdown:
		return blameMarkdown(lines, opts), nil
	case FormatANSI:
		return blameANSI(lines, opts), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// RenderLog formats a commit log page in the requested format.
func RenderLog(commits []history.CommitRecord, format Format, opts Options) (string, error) {
	switch format {
	case FormatHTML:
		return logHTML(commits, opts), nil
	case FormatMarkdown:
		return logMarkdown(commits, opts), nil
	case FormatANSI:
		return logANSI(commits, opts), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func blameMarkdown(lines []blame.Line, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	}
	b.WriteString("| Line | Commit | Author | Date | Summary |\n")
	b.WriteString("|---:|---|---|---|---|\n")
	for _, ln := range lines {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			ln.Number, shortHash(ln.CommitHash), ln.Author,
			ln.Date.Format(dateLayout), ln.Summary)
	}
	return b.String()
}

func blameHTML(lines []blame.Line, opts Options) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>body{background:#0f111a;color:#e5e7eb;font-family:Menlo,Consolas,monospace;}" +
		"table{border-collapse:collapse;}td,th{padding:2px 10px;text-align:left;}" +
		".hash{color:#8dd39e;}.lineno{color:#9ca3af;text-align:right;}" +
		"h1{font-size:18px;margin-bottom:12px;}" +
		"</style></head><body>")
	if opts.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(opts.Title))
	}
	b.WriteString("<table><tr><th>Line</th><th>Commit</th><th>Author</th><th>Date</th><th>Summary</th></tr>\n")
	for _, ln := range lines {
		fmt.Fprintf(&b, "<tr><td class=\"lineno\">%d</td><td class=\"hash\">%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			ln.Number, shortHash(ln.CommitHash),
			html.EscapeString(ln.Author), ln.Date.Format(dateLayout),
			html.EscapeString(ln.Summary))
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func blameANSI(lines []blame.Line, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", opts.Title)
	}
	for _, ln := range lines {
		fmt.Fprintf(&b, "\u001b[90m%5d\u001b[0m \u001b[32m%s\u001b[0m %-20s %s %s\n",
			ln.Number, shortHash(ln.CommitHash), ln.Author,
			ln.Date.Format(dateLayout), ln.Summary)
	}
	return b.String()
}

func logMarkdown(commits []history.CommitRecord, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	}
	for _, c := range commits {
		fmt.Fprintf(&b, "- `%s` %s (%s, %s)\n",
			shortHash(c.Hash), c.Message, c.Author, c.Date.Format(dateLayout))
	}
	return b.String()
}

func logHTML(commits []history.CommitRecord, opts Options) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<style>body{background:#0f111a;color:#e5e7eb;font-family:Menlo,Consolas,monospace;}" +
		".hash{color:#8dd39e;}.meta{color:#9ca3af;}" +
		"h1{font-size:18px;margin-bottom:12px;}" +
		"</style></head><body>")
	if opts.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(opts.Title))
	}
	b.WriteString("<ul>\n")
	for _, c := range commits {
		fmt.Fprintf(&b, "<li><span class=\"hash\">%s</span> %s <span class=\"meta\">%s, %s</span></li>\n",
			shortHash(c.Hash), html.EscapeString(c.Message),
			html.EscapeString(c.Author), c.Date.Format(dateLayout))
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func logANSI(commits []history.CommitRecord, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", opts.Title)
	}
	for _, c := range commits {
		fmt.Fprintf(&b, "\u001b[33m%s\u001b[0m %s \u001b[90m%s, %s\u001b[0m\n",
			shortHash(c.Hash), c.Message, c.Author, c.Date.Format(dateLayout))
	}
	return b.String()
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
