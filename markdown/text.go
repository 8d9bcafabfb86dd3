package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const defaultRuleWidth = 40

// WriteText writes nodes as plain text for a terminal. Paragraphs and
// blockquotes are wrapped to width display cells; width <= 0 disables
// wrapping. Blocks are separated by a blank line.
func WriteText(w io.Writer, nodes []Node, width int) error {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		blocks = append(blocks, textBlock(n, width))
	}
	if len(blocks) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	return err
}

func textBlock(n Node, width int) string {
	switch n.Kind {
	case KindHeading:
		return strings.Repeat("#", n.Level) + " " + inlineText(n.Children)

	case KindBlockquote:
		lines := wrap(inlineText(n.Children), width-2)
		for i, l := range lines {
			lines[i] = "> " + l
		}
		return strings.Join(lines, "\n")

	case KindList:
		lines := make([]string, len(n.Children))
		for i, item := range n.Children {
			marker := "-"
			if n.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			lines[i] = marker + " " + inlineText(item.Children)
		}
		return strings.Join(lines, "\n")

	case KindTaskList:
		lines := make([]string, len(n.Children))
		for i, item := range n.Children {
			box := "[ ]"
			if item.Checked {
				box = "[x]"
			}
			lines[i] = box + " " + inlineText(item.Children)
		}
		return strings.Join(lines, "\n")

	case KindTable:
		return textTable(n)

	case KindCodeBlock:
		return "```" + n.Language + "\n" + n.Text + "\n```"

	case KindRule:
		rw := width
		if rw <= 0 {
			rw = defaultRuleWidth
		}
		return strings.Repeat("-", rw)

	case KindParagraph:
		return strings.Join(wrap(inlineText(n.Children), width), "\n")

	default:
		return inlineText([]Node{n})
	}
}

func textTable(n Node) string {
	var widths []int
	cells := make([][]string, len(n.Children))
	for r, row := range n.Children {
		cells[r] = make([]string, len(row.Children))
		for c, cell := range row.Children {
			s := inlineText(cell.Children)
			cells[r][c] = s
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			widths[c] = max(widths[c], runewidth.StringWidth(s))
		}
	}

	var lines []string
	for r, row := range n.Children {
		parts := make([]string, len(widths))
		for c := range widths {
			s := ""
			if c < len(cells[r]) {
				s = cells[r][c]
			}
			parts[c] = runewidth.FillRight(s, widths[c])
		}
		lines = append(lines, strings.TrimRight(strings.Join(parts, " | "), " "))

		if row.Header {
			seps := make([]string, len(widths))
			for c, cw := range widths {
				seps[c] = strings.Repeat("-", cw)
			}
			lines = append(lines, strings.Join(seps, "-+-"))
		}
	}
	return strings.Join(lines, "\n")
}

func inlineText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case KindImage:
			if n.Text == "" {
				sb.WriteString("[image]")
			} else {
				sb.WriteString("[image: " + n.Text + "]")
			}
		case KindKbd:
			sb.WriteString("[" + n.Text + "]")
		case KindCallout:
			sb.WriteString(strings.ToUpper(n.Label) + ": " + n.Text)
		case KindLink:
			text := inlineText(n.Children)
			sb.WriteString(text)
			if n.External && text != n.URL {
				sb.WriteString(" (" + n.URL + ")")
			}
		case KindStrong, KindEmphasis, KindStrikethrough, KindHighlight:
			sb.WriteString(inlineText(n.Children))
		default:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}

// wrap breaks s into lines of at most width display cells. Words wider than
// width get a line of their own.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	cw := runewidth.StringWidth(current)
	for _, word := range words[1:] {
		ww := runewidth.StringWidth(word)
		if cw+1+ww > width {
			lines = append(lines, current)
			current, cw = word, ww
			continue
		}
		current += " " + word
		cw += 1 + ww
	}
	return append(lines, current)
}
