package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		contains    []string
		notContains []string
	}{
		{
			name:     "emphasis and lists",
			source:   "**bold**\n\n- one\n- two",
			contains: []string{"<strong>bold</strong>", "<li>one</li>"},
		},
		{
			name:        "script is stripped",
			source:      "hello <script>alert(1)</script>",
			contains:    []string{"hello"},
			notContains: []string{"<script>", "alert(1)</script>"},
		},
		{
			name:     "external links open safely",
			source:   "[site](https://example.com)",
			contains: []string{`href="https://example.com"`, `target="_blank"`, "noreferrer"},
		},
		{
			name:        "javascript links are removed",
			source:      "[x](javascript:alert(1))",
			notContains: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderMarkdown(tt.source)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "hi there", PlainText("  <b>hi</b> there "))
	assert.Equal(t, "Tom & Jerry", PlainText("Tom & Jerry"))
	assert.Equal(t, "", PlainText("<img src=x onerror=alert(1)>"))
}
