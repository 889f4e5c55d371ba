package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Aadhaar Enrolment &amp; Updates Analysis</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
th { background: #f4f4f4; }
blockquote { border-left: 3px solid #888; margin-left: 0; padding-left: 1rem; color: #444; }
hr { border: none; border-top: 1px solid #ddd; margin: 2rem 0; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts the composed markdown into a standalone HTML
// document.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return fmt.Sprintf(htmlShell, buf.String()), nil
}

// Write renders the report to the output directory as a timestamped
// markdown file with an HTML rendering alongside. Returns the HTML path.
func Write(dir, markdown string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	stamp := at.Format("20060102_150405")
	mdPath := filepath.Join(dir, fmt.Sprintf("aadhaar_analysis_%s.md", stamp))
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown report: %w", err)
	}

	html, err := RenderHTML(markdown)
	if err != nil {
		return "", err
	}
	htmlPath := filepath.Join(dir, fmt.Sprintf("aadhaar_analysis_%s.html", stamp))
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing html report: %w", err)
	}
	return htmlPath, nil
}
