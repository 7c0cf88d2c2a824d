package utils

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	// Force links to open in new tab
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	// Add noopener or noreferrer and follow security best practices
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts a post's raw content to sanitized HTML for
// the server-rendered feed.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source)) // Fallback
	}

	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
