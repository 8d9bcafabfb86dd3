// Package markdown renders the site's markdown dialect into a tree of nodes.
//
// Rendering happens in two stages. ParseBlocks classifies the source line by
// line and assembles blocks: paragraphs, headings 1-4, blockquotes, lists,
// task lists, tables, fenced code and horizontal rules. ExpandInline then
// resolves inline markup inside each block: images, <kbd> keys, :::callouts,
// $$math$$, $math$, links, bold, italic, code, ~~strikethrough~~ and
// ==highlight==.
//
// Every input renders. Markup that is malformed or unterminated is kept as
// literal text, and nothing in this package returns an error.
package markdown

import (
	"log/slog"
	"strings"
)

// Render parses content and returns one node per top-level block.
func Render(content string) []Node {
	blocks := ParseBlocks(content)
	nodes := make([]Node, 0, len(blocks))
	for _, b := range blocks {
		nodes = append(nodes, RenderBlock(b))
	}
	slog.Debug("rendered markdown", "bytes", len(content), "blocks", len(blocks))
	return nodes
}

// RenderBlock expands the inline text of a single block into its node.
func RenderBlock(b Block) Node {
	switch b.Kind {
	case BlockHeading:
		return Node{Kind: KindHeading, Level: b.Level, Children: ExpandInline(b.Text)}

	case BlockBlockquote:
		return Node{Kind: KindBlockquote, Children: ExpandInline(b.Text)}

	case BlockList:
		items := make([]Node, len(b.Items))
		for i, item := range b.Items {
			items[i] = Node{Kind: KindListItem, Children: ExpandInline(item)}
		}
		return Node{Kind: KindList, Ordered: b.Ordered, Children: items}

	case BlockTaskList:
		items := make([]Node, len(b.Tasks))
		for i, task := range b.Tasks {
			items[i] = Node{Kind: KindTaskItem, Checked: task.Checked, Children: ExpandInline(task.Text)}
		}
		return Node{Kind: KindTaskList, Children: items}

	case BlockTable:
		var rows []Node
		if len(b.Headers) > 0 {
			rows = append(rows, tableRow(b.Headers, true))
		}
		for _, r := range b.Rows {
			rows = append(rows, tableRow(r, false))
		}
		return Node{Kind: KindTable, Children: rows}

	case BlockCode:
		return Node{Kind: KindCodeBlock, Language: b.Language, Text: strings.Join(b.Lines, "\n")}

	case BlockRule:
		return Node{Kind: KindRule}

	default:
		return Node{Kind: KindParagraph, Children: ExpandInline(b.Text)}
	}
}

func tableRow(cells []string, header bool) Node {
	row := Node{Kind: KindTableRow, Header: header, Children: make([]Node, len(cells))}
	for i, c := range cells {
		row.Children[i] = Node{Kind: KindTableCell, Header: header, Children: ExpandInline(c)}
	}
	return row
}
