package markdown

import (
	"regexp"
	"strings"
)

// segment is a piece of inline text during expansion. A segment with a nil
// node is literal text. Otherwise node has already been resolved and text
// holds the markup it was resolved from.
type segment struct {
	text string
	node *Node
}

// capture gives a pattern's build function access to one match.
type capture struct {
	flat string
	segs []segment
	loc  []int
	// next is the index of the first pass that runs after this one
	next int
}

// source returns the raw markup captured by group g, including the markup
// of any resolved span inside it.
func (c capture) source(g int) string {
	return c.flat[c.loc[2*g]:c.loc[2*g+1]]
}

// expand re-expands the content of group g with the lower-priority passes.
func (c capture) expand(g int) []Node {
	return expandFrom(cut(c.segs, c.loc[2*g], c.loc[2*g+1]), c.next)
}

type inlinePattern struct {
	kind  Kind
	re    *regexp.Regexp
	build func(c capture) Node
}

// inlinePatterns are applied in order. Spans resolved by an earlier pattern
// are opaque to every later one.
var inlinePatterns []inlinePattern

func init() {
	inlinePatterns = []inlinePattern{
		{KindImage, regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`), buildImage},
		{KindKbd, regexp.MustCompile(`<kbd>([^<]+)</kbd>`), verbatim(KindKbd)},
		{KindCallout, regexp.MustCompile(`:::(\w+)\s*([\s\S]*?)\s*:::`), buildCallout},
		{KindMathBlock, regexp.MustCompile(`\$\$(.+?)\$\$`), verbatim(KindMathBlock)},
		{KindMathInline, regexp.MustCompile(`\$(.+?)\$`), verbatim(KindMathInline)},
		{KindLink, regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), buildLink},
		{KindStrong, regexp.MustCompile(`\*\*(.+?)\*\*`), container(KindStrong)},
		{KindEmphasis, regexp.MustCompile(`\*(.+?)\*`), container(KindEmphasis)},
		{KindCode, regexp.MustCompile("`([^`]+)`"), verbatim(KindCode)},
		{KindStrikethrough, regexp.MustCompile(`~~(.+?)~~`), container(KindStrikethrough)},
		{KindHighlight, regexp.MustCompile(`==(.+?)==`), container(KindHighlight)},
	}
}

var calloutStyles = map[string]bool{
	CalloutInfo:    true,
	CalloutWarning: true,
	CalloutError:   true,
	CalloutSuccess: true,
	CalloutTip:     true,
}

func buildImage(c capture) Node {
	return Node{Kind: KindImage, Text: c.source(1), URL: c.source(2)}
}

func buildCallout(c capture) Node {
	label := c.source(1)
	style := label
	if !calloutStyles[style] {
		style = CalloutInfo
	}
	return Node{
		Kind:  KindCallout,
		Label: label,
		Style: style,
		Text:  strings.TrimSpace(c.source(2)),
	}
}

func buildLink(c capture) Node {
	url := c.source(2)
	return Node{
		Kind:     KindLink,
		URL:      url,
		External: strings.HasPrefix(url, "http"),
		Children: c.expand(1),
	}
}

// verbatim nodes keep their content as written.
func verbatim(kind Kind) func(c capture) Node {
	return func(c capture) Node {
		return Node{Kind: kind, Text: c.source(1)}
	}
}

// container nodes hold inline children expanded from their content.
func container(kind Kind) func(c capture) Node {
	return func(c capture) Node {
		return Node{Kind: kind, Children: c.expand(1)}
	}
}

// ExpandInline turns one block's worth of text into a sequence of inline
// nodes. Markup that does not match any pattern stays literal text.
func ExpandInline(text string) []Node {
	if text == "" {
		return nil
	}
	return expandFrom([]segment{{text: text}}, 0)
}

func expandFrom(segs []segment, first int) []Node {
	for i := first; i < len(inlinePatterns); i++ {
		segs = applyPattern(segs, i)
	}
	return toNodes(segs)
}

// applyPattern resolves every match of pattern i in segs. Matching runs on a
// view of the text in which resolved spans are masked out, so a match can
// contain a resolved span but never start or end inside one.
func applyPattern(segs []segment, i int) []segment {
	p := inlinePatterns[i]
	flat, view := flatten(segs)

	locs := p.re.FindAllStringSubmatchIndex(view, -1)
	if len(locs) == 0 {
		return segs
	}

	out := make([]segment, 0, len(segs)+2*len(locs))
	pos := 0
	for _, loc := range locs {
		out = append(out, cut(segs, pos, loc[0])...)
		n := p.build(capture{flat: flat, segs: segs, loc: loc, next: i + 1})
		out = append(out, segment{text: flat[loc[0]:loc[1]], node: &n})
		pos = loc[1]
	}
	out = append(out, cut(segs, pos, len(flat))...)
	return out
}

// flatten concatenates the segments. view is flat with every byte of a
// resolved span replaced by NUL, which no pattern delimiter can match.
func flatten(segs []segment) (flat, view string) {
	var f, v strings.Builder
	for _, s := range segs {
		f.WriteString(s.text)
		if s.node != nil {
			v.WriteString(strings.Repeat("\x00", len(s.text)))
		} else {
			v.WriteString(s.text)
		}
	}
	return f.String(), v.String()
}

// cut returns the segments covering the byte range [start, end) of the
// flattened text. Text segments are trimmed to the range; resolved spans
// never straddle a boundary, so they are either kept whole or dropped.
func cut(segs []segment, start, end int) []segment {
	var out []segment
	off := 0
	for _, s := range segs {
		sStart, sEnd := off, off+len(s.text)
		off = sEnd
		if sEnd <= start || sStart >= end {
			continue
		}
		if s.node != nil {
			out = append(out, s)
			continue
		}
		lo, hi := max(start, sStart), min(end, sEnd)
		out = append(out, segment{text: s.text[lo-sStart : hi-sStart]})
	}
	return out
}

func toNodes(segs []segment) []Node {
	nodes := make([]Node, 0, len(segs))
	for _, s := range segs {
		if s.node != nil {
			nodes = append(nodes, *s.node)
			continue
		}
		if s.text == "" {
			continue
		}
		if last := len(nodes) - 1; last >= 0 && nodes[last].Kind == KindText {
			nodes[last].Text += s.text
			continue
		}
		nodes = append(nodes, Node{Kind: KindText, Text: s.text})
	}
	return nodes
}
