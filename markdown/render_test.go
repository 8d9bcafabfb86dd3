package markdown

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestRenderIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"\n\n\n",
		"|",
		"||",
		"```",
		"```\n```\n```",
		"- ",
		"- [ ] ",
		"# ",
		"> ",
		"**",
		"***",
		"*",
		"$$",
		"$",
		"::::::",
		":::info :::",
		"![](",
		"[](",
		"<kbd></kbd>",
		"~~~~~",
		"=====",
		"| a |\n|---|\n|---|",
		"\x00\xff\xfe",
		"日本語 **太字** `コード`",
		strings.Repeat("*", 101),
		strings.Repeat("[a](b)", 50),
	}

	for _, in := range inputs {
		nodes := Render(in)
		if strings.TrimSpace(in) == "" {
			assert.Empty(t, nodes, "input %q", in)
			continue
		}
		assert.NotEmpty(t, nodes, "input %q", in)
		for _, n := range nodes {
			assert.False(t, n.Kind.Inline(), "top level node %s for input %q", n.Kind, in)
		}
	}
}

func TestCanRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []Node
	}{
		{
			name:    "heading with inline markup",
			content: "## Hello *world*",
			expected: []Node{
				{Kind: KindHeading, Level: 2, Children: []Node{
					txt("Hello "),
					{Kind: KindEmphasis, Children: []Node{txt("world")}},
				}},
			},
		},
		{
			name:    "code block is not expanded",
			content: "```md\n**raw**\n```",
			expected: []Node{
				{Kind: KindCodeBlock, Language: "md", Text: "**raw**"},
			},
		},
		{
			name:    "table rows and cells",
			content: "| A | B |\n|---|---|\n| `1` | 2 |",
			expected: []Node{
				{Kind: KindTable, Children: []Node{
					{Kind: KindTableRow, Header: true, Children: []Node{
						{Kind: KindTableCell, Header: true, Children: []Node{txt("A")}},
						{Kind: KindTableCell, Header: true, Children: []Node{txt("B")}},
					}},
					{Kind: KindTableRow, Children: []Node{
						{Kind: KindTableCell, Children: []Node{{Kind: KindCode, Text: "1"}}},
						{Kind: KindTableCell, Children: []Node{txt("2")}},
					}},
				}},
			},
		},
		{
			name:    "task list",
			content: "- [x] done\n- [ ] todo",
			expected: []Node{
				{Kind: KindTaskList, Children: []Node{
					{Kind: KindTaskItem, Checked: true, Children: []Node{txt("done")}},
					{Kind: KindTaskItem, Children: []Node{txt("todo")}},
				}},
			},
		},
		{
			name:    "ordered list",
			content: "1. ~~a~~\n2. b",
			expected: []Node{
				{Kind: KindList, Ordered: true, Children: []Node{
					{Kind: KindListItem, Children: []Node{{Kind: KindStrikethrough, Children: []Node{txt("a")}}}},
					{Kind: KindListItem, Children: []Node{txt("b")}},
				}},
			},
		},
		{
			name:     "rule",
			content:  "___",
			expected: []Node{{Kind: KindRule}},
		},
		{
			name:    "bold spanning paragraph lines",
			content: "start **across\nlines** end",
			expected: []Node{
				{Kind: KindParagraph, Children: []Node{
					txt("start "),
					{Kind: KindStrong, Children: []Node{txt("across lines")}},
					txt(" end"),
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Render(tt.content))
		})
	}
}

func TestRenderIsSafeForConcurrentUse(t *testing.T) {
	input, err := os.ReadFile("testdata/render/sample.md")
	require.NoError(t, err)

	want := Render(string(input))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Render(string(input)))
		}()
	}
	wg.Wait()
}

func TestPlainText(t *testing.T) {
	nodes := Render("**bold *and* more** [link](/x)")
	require.Len(t, nodes, 1)
	assert.Equal(t, "bold and more link", nodes[0].PlainText())
}

func TestCanRenderSampleDocument(t *testing.T) {
	tests := []struct {
		name   string
		inFile string
		format string
	}{
		{name: "sample as html", inFile: "sample", format: "html"},
		{name: "sample as text", inFile: "sample", format: "txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := os.ReadFile("testdata/render/" + tt.inFile + ".md")
			require.NoError(t, err)

			nodes := Render(string(input))

			var buf bytes.Buffer
			switch tt.format {
			case "html":
				err = WriteHTML(&buf, nodes)
			default:
				err = WriteText(&buf, nodes, 40)
			}
			require.NoError(t, err)

			golden.Assert(t, buf.String(), "render/"+tt.inFile+".golden."+tt.format)
		})
	}
}
