package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// HTMLOption configures WriteHTML.
type HTMLOption func(*htmlWriter)

// WithHighlighting enables syntax highlighting of code blocks with the named
// chroma style. Highlighted blocks use CSS classes; see HighlightCSS.
func WithHighlighting(style string) HTMLOption {
	return func(hw *htmlWriter) {
		hw.style = styles.Get(style)
		hw.formatter = chromahtml.New(chromahtml.WithClasses(true))
	}
}

type htmlWriter struct {
	buf       strings.Builder
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// WriteHTML writes nodes as HTML, one block per line.
func WriteHTML(w io.Writer, nodes []Node, opts ...HTMLOption) error {
	hw := &htmlWriter{}
	for _, opt := range opts {
		opt(hw)
	}

	for _, n := range nodes {
		if err := hw.block(n); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, hw.buf.String())
	return err
}

// HTML is a convenience wrapper around WriteHTML.
func HTML(nodes []Node, opts ...HTMLOption) (string, error) {
	var sb strings.Builder
	if err := WriteHTML(&sb, nodes, opts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HighlightCSS returns the stylesheet for code highlighted with style.
func HighlightCSS(style string) (string, error) {
	s, ok := styles.Registry[style]
	if !ok {
		return "", fmt.Errorf("unknown highlight style %q", style)
	}

	var sb strings.Builder
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&sb, s); err != nil {
		return "", fmt.Errorf("writing highlight css: %w", err)
	}
	return sb.String(), nil
}

func (hw *htmlWriter) block(n Node) error {
	switch n.Kind {
	case KindParagraph:
		// callouts and display math are divs, which cannot sit inside <p>
		if len(n.Children) == 1 && (n.Children[0].Kind == KindCallout || n.Children[0].Kind == KindMathBlock) {
			hw.inline(n.Children[0])
			hw.buf.WriteString("\n")
			return nil
		}
		hw.wrap("p", n.Children)
	case KindHeading:
		hw.wrap(fmt.Sprintf("h%d", n.Level), n.Children)
	case KindBlockquote:
		hw.wrap("blockquote", n.Children)

	case KindList:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		hw.buf.WriteString("<" + tag + ">\n")
		for _, item := range n.Children {
			hw.wrap("li", item.Children)
		}
		hw.buf.WriteString("</" + tag + ">\n")

	case KindTaskList:
		hw.buf.WriteString("<ul class=\"task-list\">\n")
		for _, item := range n.Children {
			if item.Checked {
				hw.buf.WriteString(`<li class="task-item checked"><input type="checkbox" disabled checked> `)
			} else {
				hw.buf.WriteString(`<li class="task-item"><input type="checkbox" disabled> `)
			}
			hw.inlines(item.Children)
			hw.buf.WriteString("</li>\n")
		}
		hw.buf.WriteString("</ul>\n")

	case KindTable:
		hw.table(n)

	case KindCodeBlock:
		return hw.codeBlock(n)

	case KindRule:
		hw.buf.WriteString("<hr>\n")

	default:
		hw.inline(n)
		hw.buf.WriteString("\n")
	}
	return nil
}

func (hw *htmlWriter) wrap(tag string, children []Node) {
	hw.buf.WriteString("<" + tag + ">")
	hw.inlines(children)
	hw.buf.WriteString("</" + tag + ">\n")
}

func (hw *htmlWriter) table(n Node) {
	var head, body []Node
	for _, row := range n.Children {
		if row.Header {
			head = append(head, row)
		} else {
			body = append(body, row)
		}
	}

	hw.buf.WriteString("<table>\n")
	if len(head) > 0 {
		hw.buf.WriteString("<thead>\n")
		hw.rows(head, "th")
		hw.buf.WriteString("</thead>\n")
	}
	if len(body) > 0 {
		hw.buf.WriteString("<tbody>\n")
		hw.rows(body, "td")
		hw.buf.WriteString("</tbody>\n")
	}
	hw.buf.WriteString("</table>\n")
}

func (hw *htmlWriter) rows(rows []Node, cellTag string) {
	for _, row := range rows {
		hw.buf.WriteString("<tr>")
		for _, cell := range row.Children {
			hw.buf.WriteString("<" + cellTag + ">")
			hw.inlines(cell.Children)
			hw.buf.WriteString("</" + cellTag + ">")
		}
		hw.buf.WriteString("</tr>\n")
	}
}

func (hw *htmlWriter) codeBlock(n Node) error {
	if hw.formatter != nil {
		if lexer := lexers.Get(n.Language); lexer != nil {
			iterator, err := chroma.Coalesce(lexer).Tokenise(nil, n.Text)
			if err != nil {
				return fmt.Errorf("tokenising %s code block: %w", n.Language, err)
			}
			if err := hw.formatter.Format(&hw.buf, hw.style, iterator); err != nil {
				return fmt.Errorf("highlighting %s code block: %w", n.Language, err)
			}
			hw.buf.WriteString("\n")
			return nil
		}
	}

	hw.buf.WriteString(`<pre><code class="language-`)
	hw.escape(n.Language)
	hw.buf.WriteString(`">`)
	hw.escape(n.Text)
	hw.buf.WriteString("</code></pre>\n")
	return nil
}

func (hw *htmlWriter) inlines(nodes []Node) {
	for _, n := range nodes {
		hw.inline(n)
	}
}

func (hw *htmlWriter) inline(n Node) {
	switch n.Kind {
	case KindText:
		hw.escape(n.Text)

	case KindImage:
		hw.buf.WriteString(`<span class="figure"><img src="`)
		hw.url(n.URL)
		hw.buf.WriteString(`" alt="`)
		hw.escape(n.Text)
		hw.buf.WriteString(`">`)
		if n.Text != "" {
			hw.buf.WriteString(`<span class="caption">`)
			hw.escape(n.Text)
			hw.buf.WriteString(`</span>`)
		}
		hw.buf.WriteString(`</span>`)

	case KindKbd:
		hw.leaf("kbd", "", n.Text)

	case KindCallout:
		hw.buf.WriteString(`<div class="callout callout-` + n.Style + `"><div class="callout-title">`)
		hw.escape(n.Label)
		hw.buf.WriteString(`</div><div>`)
		hw.escape(n.Text)
		hw.buf.WriteString(`</div></div>`)

	case KindMathBlock:
		hw.leaf("div", "math math-display", n.Text)
	case KindMathInline:
		hw.leaf("span", "math math-inline", n.Text)
	case KindCode:
		hw.leaf("code", "", n.Text)

	case KindLink:
		hw.buf.WriteString(`<a href="`)
		hw.url(n.URL)
		hw.buf.WriteString(`"`)
		if n.External {
			hw.buf.WriteString(` target="_blank" rel="noopener noreferrer"`)
		}
		hw.buf.WriteString(`>`)
		hw.inlines(n.Children)
		hw.buf.WriteString(`</a>`)

	case KindStrong:
		hw.span("strong", n.Children)
	case KindEmphasis:
		hw.span("em", n.Children)
	case KindStrikethrough:
		hw.span("del", n.Children)
	case KindHighlight:
		hw.span("mark", n.Children)

	default:
		hw.inlines(n.Children)
	}
}

func (hw *htmlWriter) span(tag string, children []Node) {
	hw.buf.WriteString("<" + tag + ">")
	hw.inlines(children)
	hw.buf.WriteString("</" + tag + ">")
}

func (hw *htmlWriter) leaf(tag, class, text string) {
	hw.buf.WriteString("<" + tag)
	if class != "" {
		hw.buf.WriteString(` class="` + class + `"`)
	}
	hw.buf.WriteString(">")
	hw.escape(text)
	hw.buf.WriteString("</" + tag + ">")
}

func (hw *htmlWriter) escape(s string) {
	hw.buf.Write(util.EscapeHTML([]byte(s)))
}

// url writes a link or image target. Script and data URLs are dropped.
func (hw *htmlWriter) url(u string) {
	if gmhtml.IsDangerousURL([]byte(u)) {
		return
	}
	hw.buf.Write(util.EscapeHTML(util.URLEscape([]byte(u), true)))
}
