package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanWriteHTML(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "internal link",
			content:  "[about](/about)",
			expected: "<p><a href=\"/about\">about</a></p>\n",
		},
		{
			name:     "external link opens new context",
			content:  "[go](https://go.dev)",
			expected: "<p><a href=\"https://go.dev\" target=\"_blank\" rel=\"noopener noreferrer\">go</a></p>\n",
		},
		{
			name:     "script url is dropped",
			content:  "[x](javascript:alert)",
			expected: "<p><a href=\"\">x</a></p>\n",
		},
		{
			name:     "url is escaped",
			content:  "[q](/search?a=1&b=\"2\")",
			expected: "<p><a href=\"/search?a=1&amp;b=%222%22\">q</a></p>\n",
		},
		{
			name:     "text is escaped",
			content:  "<script>alert(1)</script> & more",
			expected: "<p>&lt;script&gt;alert(1)&lt;/script&gt; &amp; more</p>\n",
		},
		{
			name:     "image without alt has no caption",
			content:  "![](/x.png)",
			expected: "<p><span class=\"figure\"><img src=\"/x.png\" alt=\"\"></span></p>\n",
		},
		{
			name:     "four stars",
			content:  "a **** b",
			expected: "<p>a <em>*</em>* b</p>\n",
		},
		{
			name:     "display math stands alone",
			content:  "$$a^2 + b^2$$",
			expected: "<div class=\"math math-display\">a^2 + b^2</div>\n",
		},
		{
			name:     "display math inside text",
			content:  "so $$x$$ holds",
			expected: "<p>so <div class=\"math math-display\">x</div> holds</p>\n",
		},
		{
			name:     "unknown callout",
			content:  ":::aside hello :::",
			expected: "<div class=\"callout callout-info\"><div class=\"callout-title\">aside</div><div>hello</div></div>\n",
		},
		{
			name:     "heading level",
			content:  "### Three",
			expected: "<h3>Three</h3>\n",
		},
		{
			name:     "header only table",
			content:  "| A |",
			expected: "<table>\n<thead>\n<tr><th>A</th></tr>\n</thead>\n</table>\n",
		},
		{
			name:     "code block without language",
			content:  "```\n<b>\n```",
			expected: "<pre><code class=\"language-text\">&lt;b&gt;</code></pre>\n",
		},
		{
			name:     "empty input",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := HTML(Render(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCanHighlightCodeBlocks(t *testing.T) {
	nodes := Render("```go\nfunc main() {}\n```\n\n```nosuchlang\nx\n```")

	out, err := HTML(nodes, WithHighlighting("monokai"))
	require.NoError(t, err)

	assert.Contains(t, out, `class="chroma"`)
	assert.NotContains(t, out, `language-go`)
	// no lexer, so the block is written as plain escaped code
	assert.Contains(t, out, "<pre><code class=\"language-nosuchlang\">x</code></pre>\n")
}

func TestHighlightCSS(t *testing.T) {
	css, err := HighlightCSS("github")
	require.NoError(t, err)
	assert.Contains(t, css, ".chroma")

	_, err = HighlightCSS("no-such-style")
	assert.Error(t, err)
}
