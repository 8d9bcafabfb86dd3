package markdown

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	taskItemRegex      = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\]\s+(.*)$`)
	bulletItemRegex    = regexp.MustCompile(`^\s*[-*+]\s+`)
	orderedItemRegex   = regexp.MustCompile(`^\s*\d+\.\s+`)
	separatorCellRegex = regexp.MustCompile(`^-+$`)
)

// lineKind is the classification of a single source line outside of a
// fenced code block.
type lineKind int

const (
	lineText lineKind = iota
	lineBlank
	lineRule
	lineTask
	lineTableRow
	lineBullet
	lineOrdered
	lineHeading
	lineQuote
)

type line struct {
	kind lineKind
	// text is the payload left after the line's marker is stripped
	text    string
	level   int
	checked bool
	cells   []string
}

// classify determines what a line contributes to the document. The checks
// run in priority order and the first one that matches wins.
func classify(raw string) line {
	trimmed := strings.TrimSpace(raw)

	if isRule(trimmed) {
		return line{kind: lineRule}
	}

	if m := taskItemRegex.FindStringSubmatch(raw); m != nil {
		return line{kind: lineTask, text: m[2], checked: m[1] != " "}
	}

	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
		return line{kind: lineTableRow, cells: splitRow(trimmed)}
	}

	if loc := bulletItemRegex.FindStringIndex(raw); loc != nil {
		return line{kind: lineBullet, text: raw[loc[1]:]}
	}
	if loc := orderedItemRegex.FindStringIndex(raw); loc != nil {
		return line{kind: lineOrdered, text: raw[loc[1]:]}
	}

	if trimmed == "" {
		return line{kind: lineBlank}
	}

	for level := 1; level <= 4; level++ {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(raw, prefix) {
			return line{kind: lineHeading, level: level, text: raw[len(prefix):]}
		}
	}

	if strings.HasPrefix(raw, "> ") {
		return line{kind: lineQuote, text: raw[2:]}
	}

	return line{kind: lineText, text: raw}
}

// isRule reports whether s is three or more of the same rule character.
func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(s, string(c)) == len(s)
}

// splitRow splits a pipe-delimited row into trimmed cells, dropping the
// empty fields produced by the leading and trailing pipe.
func splitRow(trimmed string) []string {
	fields := strings.Split(trimmed, "|")
	fields = fields[1 : len(fields)-1]
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = strings.TrimSpace(f)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !separatorCellRegex.MatchString(c) {
			return false
		}
	}
	return true
}

// mode is the accumulation state of the assembler. Exactly one block can be
// open at a time.
type mode int

const (
	modeNone mode = iota
	modeParagraph
	modeList
	modeTaskList
	modeTable
	modeCode
)

type assembler struct {
	mode   mode
	open   Block
	blocks []Block
}

// ParseBlocks splits content into lines and assembles them into blocks.
// It accepts any input; text that matches nothing else becomes paragraphs.
func ParseBlocks(content string) []Block {
	a := &assembler{}
	for _, raw := range strings.Split(content, "\n") {
		a.feed(strings.TrimSuffix(raw, "\r"))
	}
	a.flush()
	return a.blocks
}

func (a *assembler) feed(raw string) {
	if strings.HasPrefix(raw, fence) {
		if a.mode == modeCode {
			a.flush()
			return
		}
		lang := strings.TrimSpace(raw[len(fence):])
		if lang == "" {
			lang = "text"
		}
		a.start(modeCode, Block{Kind: BlockCode, Language: lang})
		return
	}

	if a.mode == modeCode {
		a.open.Lines = append(a.open.Lines, raw)
		return
	}

	l := classify(raw)
	switch l.kind {
	case lineRule:
		a.flush()
		a.emit(Block{Kind: BlockRule})

	case lineTask:
		if a.mode != modeTaskList {
			a.start(modeTaskList, Block{Kind: BlockTaskList})
		}
		a.open.Tasks = append(a.open.Tasks, TaskItem{Text: l.text, Checked: l.checked})

	case lineTableRow:
		if a.mode != modeTable {
			a.start(modeTable, Block{Kind: BlockTable, Headers: l.cells})
			return
		}
		if isSeparatorRow(l.cells) {
			return
		}
		a.open.Rows = append(a.open.Rows, l.cells)

	case lineBullet, lineOrdered:
		// the first item decides the list type, later markers only continue it
		if a.mode != modeList {
			a.start(modeList, Block{Kind: BlockList, Ordered: l.kind == lineOrdered})
		}
		a.open.Items = append(a.open.Items, l.text)

	case lineBlank:
		if a.mode == modeList {
			return
		}
		a.flush()

	case lineHeading:
		a.flush()
		a.emit(Block{Kind: BlockHeading, Level: l.level, Text: l.text})

	case lineQuote:
		a.flush()
		a.emit(Block{Kind: BlockBlockquote, Text: l.text})

	default:
		if a.mode != modeParagraph {
			a.start(modeParagraph, Block{Kind: BlockParagraph})
		}
		a.open.Lines = append(a.open.Lines, l.text)
	}
}

// start flushes whatever is open and opens a new block in mode m.
func (a *assembler) start(m mode, b Block) {
	a.flush()
	a.mode = m
	a.open = b
}

// flush emits the open block, if any, and returns the assembler to modeNone.
// An unterminated code fence is emitted with the lines read so far.
func (a *assembler) flush() {
	b := a.open
	switch a.mode {
	case modeNone:
		return
	case modeParagraph:
		b.Text = strings.Join(b.Lines, " ")
		b.Lines = nil
		a.emit(b)
	case modeList:
		if len(b.Items) > 0 {
			a.emit(b)
		}
	case modeTaskList:
		if len(b.Tasks) > 0 {
			a.emit(b)
		}
	case modeTable:
		if len(b.Headers) > 0 || len(b.Rows) > 0 {
			a.emit(b)
		}
	case modeCode:
		a.emit(b)
	}
	a.mode = modeNone
	a.open = Block{}
}

func (a *assembler) emit(b Block) {
	a.blocks = append(a.blocks, b)
}
