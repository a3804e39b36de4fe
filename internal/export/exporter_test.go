package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dlepage/ghist/internal/blame"
	"github.com/dlepage/ghist/internal/export"
	"github.com/dlepage/ghist/internal/history"
)

func sampleBlame() []blame.Line {
	return []blame.Line{
		{Number: 1, CommitHash: strings.Repeat("a", 40), Author: "Alice",
			Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Summary: "fix"},
		{Number: 2, CommitHash: strings.Repeat("b", 40), Author: "Bob",
			Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Summary: "add <thing>"},
	}
}

func TestParseFormatAliases(t *testing.T) {
	cases := map[string]export.Format{
		"":         export.FormatMarkdown,
		"md":       export.FormatMarkdown,
		"markdown": export.FormatMarkdown,
		"html":     export.FormatHTML,
		"htm":      export.FormatHTML,
		"ansi":     export.FormatANSI,
		"text":     export.FormatANSI,
	}
	for raw, want := range cases {
		got, err := export.ParseFormat(raw)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := export.ParseFormat("pdf"); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestRenderBlameMarkdown(t *testing.T) {
	out, err := export.RenderBlame(sampleBlame(), export.FormatMarkdown,
		export.Options{Title: "Blame: a.go"})
	if err != nil {
		t.Fatalf("RenderBlame failed: %v", err)
	}
	if !strings.Contains(out, "# Blame: a.go") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "aaaaaaaa") || strings.Contains(out, strings.Repeat("a", 40)) {
		t.Errorf("hash not shortened: %q", out)
	}
	if !strings.Contains(out, "| 2 |") || !strings.Contains(out, "Bob") {
		t.Errorf("row missing: %q", out)
	}
}

func TestRenderBlameHTMLEscapes(t *testing.T) {
	out, err := export.RenderBlame(sampleBlame(), export.FormatHTML, export.Options{})
	if err != nil {
		t.Fatalf("RenderBlame failed: %v", err)
	}
	if strings.Contains(out, "add <thing>") {
		t.Errorf("summary not HTML-escaped")
	}
	if !strings.Contains(out, "add &lt;thing&gt;") {
		t.Errorf("expected escaped summary: %q", out)
	}
}

func TestRenderLogFormats(t *testing.T) {
	commits := []history.CommitRecord{
		{Hash: strings.Repeat("c", 40), Message: "initial import", Author: "Alice",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, format := range []export.Format{export.FormatMarkdown, export.FormatHTML, export.FormatANSI} {
		out, err := export.RenderLog(commits, format, export.Options{})
		if err != nil {
			t.Fatalf("RenderLog(%s) failed: %v", format, err)
		}
		if !strings.Contains(out, "cccccccc") || !strings.Contains(out, "initial import") {
			t.Errorf("RenderLog(%s) missing commit: %q", format, out)
		}
	}
}

func TestCopyToClipboardEncodesOSC52(t *testing.T) {
	var buf strings.Builder
	if err := export.CopyToClipboard("hello", &buf); err != nil {
		t.Fatalf("CopyToClipboard failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\u001b]52;c;") {
		t.Errorf("missing OSC52 prefix: %q", out)
	}
	if !strings.Contains(out, "aGVsbG8=") {
		t.Errorf("payload not base64 encoded: %q", out)
	}
}
