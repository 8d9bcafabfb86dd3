package folio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jwtly10/folio/markdown"
	unicodeenc "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const (
	frontMatterDelimiter = "---"
	excerptLength        = 160
)

// Date layouts accepted in front matter, tried in order
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

type Parser struct {
	now func() time.Time
}

type ParserOption func(*Parser)

// WithClock sets the time source used for documents without a date
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseMarkdownDoc parses a content file into a Document.
//
// The input may start with a YAML front matter block:
//
//	---
//	title: Hello
//	date: 2024-01-15
//	tags: [go, web]
//	---
//
//	Body text...
//
// Without a closing delimiter the whole input is treated as body.
// Front matter that cannot be decoded is reported as a *FrontMatterError.
func (p *Parser) ParseMarkdownDoc(r io.Reader, md MetaData) (*Document, error) {
	// strips a UTF-8 BOM, and decodes UTF-16 files that carry one
	r = transform.NewReader(r, unicodeenc.BOMOverride(unicodeenc.UTF8.NewDecoder()))
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = norm.NFC.Bytes(content)

	doc := &Document{
		Metadata: md,
		BodyLine: 1,
		keyLines: map[string]int{},
	}

	fm, body, bodyLine, ok := splitFrontMatter(content)
	if ok {
		if err := p.decodeFrontMatter(fm, doc); err != nil {
			return nil, err
		}
		doc.BodyLine = bodyLine
	}
	doc.Body = string(body)

	if err := p.applyDefaults(doc); err != nil {
		return nil, err
	}

	doc.Excerpt = excerpt(doc.Body)

	slog.Debug("Parsed document",
		"source", md.Source,
		"kind", md.Kind,
		"slug", doc.Slug,
		"date", doc.DateSlug(),
		"frontMatterKeys", len(doc.keyLines))

	return doc, nil
}

// splitFrontMatter separates a leading front matter block from the body.
// bodyLine is the 1-based line of the first body line.
func splitFrontMatter(content []byte) (fm, body []byte, bodyLine int, ok bool) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || string(bytes.TrimRight(lines[0], " \t\n")) != frontMatterDelimiter {
		return nil, content, 1, false
	}

	offset := len(lines[0])
	for i := 1; i < len(lines); i++ {
		if string(bytes.TrimRight(lines[i], " \t\n")) == frontMatterDelimiter {
			return content[len(lines[0]):offset], content[offset+len(lines[i]):], i + 2, true
		}
		offset += len(lines[i])
	}

	slog.Debug("Front matter is not closed, treating input as body")
	return nil, content, 1, false
}

func (p *Parser) decodeFrontMatter(fm []byte, doc *Document) error {
	var root yaml.Node
	if err := yaml.Unmarshal(fm, &root); err != nil {
		return &FrontMatterError{Line: yamlErrorLine(err), Err: err}
	}

	// empty front matter
	if len(root.Content) == 0 {
		return nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return &FrontMatterError{Line: mapping.Line + 1, Err: errors.New("front matter must be a mapping")}
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		// the opening delimiter is line 1 of the file
		doc.keyLines[key.Value] = key.Line + 1
	}

	if err := mapping.Decode(&doc.FrontMatter); err != nil {
		return &FrontMatterError{Line: yamlErrorLine(err), Err: err}
	}
	return nil
}

// yamlErrorLine extracts the file line from a yaml error message
func yamlErrorLine(err error) int {
	m := yamlLineRegex.FindStringSubmatch(err.Error())
	if m == nil {
		return 1
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 1
	}
	return n + 1
}

func (p *Parser) applyDefaults(doc *Document) error {
	fm := &doc.FrontMatter

	if fm.Title == "" {
		fm.Title = DefaultTitle
	}
	if doc.Metadata.Kind == KindProject && fm.Status == "" {
		fm.Status = StatusCompleted
	}

	if fm.Date == "" {
		doc.Date = p.now()
	} else {
		date, err := parseDate(fm.Date)
		if err != nil {
			line, _ := doc.KeyLine("date")
			return &FrontMatterError{Line: line, Err: err}
		}
		doc.Date = date
	}

	if doc.Metadata.Source != "" {
		doc.Slug = strings.TrimSuffix(filepath.Base(doc.Metadata.Source), filepath.Ext(doc.Metadata.Source))
	} else {
		doc.Slug = Slugify(fm.Title)
	}

	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Slugify turns a title into a lower case, dash separated URL segment
func Slugify(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return sb.String()
}

// excerpt returns the plain text of the first paragraph in body, cut to
// excerptLength runes at a word boundary. Images are left out.
func excerpt(body string) string {
	for _, n := range markdown.Render(body) {
		if n.Kind != markdown.KindParagraph {
			continue
		}
		var sb strings.Builder
		for _, c := range n.Children {
			if c.Kind == markdown.KindImage {
				continue
			}
			sb.WriteString(c.PlainText())
		}
		return truncateWords(strings.Join(strings.Fields(sb.String()), " "), excerptLength)
	}
	return ""
}

func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
