package markdown

// BlockKind identifies the structural kind of a Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBlockquote
	BlockList
	BlockTaskList
	BlockTable
	BlockCode
	BlockRule
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockBlockquote:
		return "blockquote"
	case BlockList:
		return "list"
	case BlockTaskList:
		return "task-list"
	case BlockTable:
		return "table"
	case BlockCode:
		return "code"
	case BlockRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Block is one structural unit of a document as produced by the line
// assembler. Only the fields relevant to Kind are set.
type Block struct {
	Kind BlockKind

	// Text holds the raw inline text of paragraphs, headings and blockquotes.
	// Paragraph lines are already joined with single spaces.
	Text string
	// Level is the heading level, 1 to 4.
	Level int

	// Ordered is set for numbered lists; Items holds the marker-stripped
	// text of every list item.
	Ordered bool
	Items   []string

	Tasks []TaskItem

	Headers []string
	Rows    [][]string

	// Language defaults to "text" when the fence carries no info string.
	Language string
	// Lines are the verbatim lines between the fences.
	Lines []string
}

type TaskItem struct {
	Text    string
	Checked bool
}

// Kind identifies the type of a render Node.
type Kind int

const (
	// block level
	KindParagraph Kind = iota
	KindHeading
	KindBlockquote
	KindList
	KindListItem
	KindTaskList
	KindTaskItem
	KindTable
	KindTableRow
	KindTableCell
	KindCodeBlock
	KindRule

	// inline level
	KindText
	KindImage
	KindKbd
	KindCallout
	KindMathBlock
	KindMathInline
	KindLink
	KindStrong
	KindEmphasis
	KindCode
	KindStrikethrough
	KindHighlight
)

var kindNames = map[Kind]string{
	KindParagraph:     "paragraph",
	KindHeading:       "heading",
	KindBlockquote:    "blockquote",
	KindList:          "list",
	KindListItem:      "list-item",
	KindTaskList:      "task-list",
	KindTaskItem:      "task-item",
	KindTable:         "table",
	KindTableRow:      "table-row",
	KindTableCell:     "table-cell",
	KindCodeBlock:     "code-block",
	KindRule:          "rule",
	KindText:          "text",
	KindImage:         "image",
	KindKbd:           "kbd",
	KindCallout:       "callout",
	KindMathBlock:     "math-block",
	KindMathInline:    "math-inline",
	KindLink:          "link",
	KindStrong:        "strong",
	KindEmphasis:      "emphasis",
	KindCode:          "code",
	KindStrikethrough: "strikethrough",
	KindHighlight:     "highlight",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Inline reports whether nodes of this kind appear inside block text.
func (k Kind) Inline() bool {
	return k >= KindText
}

// Callout styles. Any other callout kind renders with CalloutInfo.
const (
	CalloutInfo    = "info"
	CalloutWarning = "warning"
	CalloutError   = "error"
	CalloutSuccess = "success"
	CalloutTip     = "tip"
)

// Node is an element of the render tree. Nodes are plain values and are
// never modified once Render has returned them.
type Node struct {
	Kind Kind

	// Text is the literal content of leaf nodes: text runs, inline code,
	// keyboard keys, math, callout bodies, image alt text and the joined
	// lines of a code block.
	Text string

	// URL is the link target or image source.
	URL string
	// External marks links whose target starts with "http".
	External bool

	// Level is the heading level.
	Level int
	// Ordered marks numbered lists.
	Ordered bool
	// Checked is the state of a task item.
	Checked bool
	// Header marks table rows and cells that belong to the header.
	Header bool

	// Language of a code block.
	Language string

	// Label is the callout kind as written; Style is the resolved style.
	Label string
	Style string

	Children []Node
}

// PlainText returns the visible text of the node and its descendants,
// without any markup.
func (n Node) PlainText() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var buf []byte
	for _, c := range n.Children {
		buf = append(buf, c.PlainText()...)
	}
	return string(buf)
}
