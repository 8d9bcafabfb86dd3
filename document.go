package folio

import (
	"fmt"
	"time"

	"github.com/jwtly10/folio/markdown"
)

// Document represents a parsed content file: its front matter, the derived
// values the site needs to route it, and the markdown body
type Document struct {
	// Metadata about the source file
	Metadata MetaData
	// Decoded front matter, with defaults applied
	FrontMatter FrontMatter
	// URL slug, taken from the source file name
	Slug string
	// Publication date parsed from the front matter
	Date time.Time
	// The markdown body, front matter removed
	Body string
	// BodyLine is the 1-based source line the body starts on
	BodyLine int
	// Plain text summary of the first paragraph
	Excerpt string

	// keyLines maps front matter keys to their 1-based source line
	keyLines map[string]int
}

// ContentKind is the section of the site a document belongs to
type ContentKind int

const (
	KindPost ContentKind = iota
	KindProject
)

func (k ContentKind) String() string {
	switch k {
	case KindProject:
		return "project"
	default:
		return "post"
	}
}

type MetaData struct {
	// The source file path
	Source string
	// Whether the file is a blog post or a project page
	Kind ContentKind
}

// Project statuses
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in-progress"
	StatusPlanned    = "planned"
)

const DefaultTitle = "Untitled"

type FrontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`

	// Project fields
	Tech   []string `yaml:"tech"`
	GitHub string   `yaml:"github"`
	Demo   string   `yaml:"demo"`
	Status string   `yaml:"status"`
}

// Render renders the document body
func (d *Document) Render() []markdown.Node {
	return markdown.Render(d.Body)
}

// DateSlug is the YYYY/MM/DD path segment of the document date
func (d *Document) DateSlug() string {
	return DateSlug(d.Date)
}

// MatchesDate reports whether the document was published on the given
// zero-padded year, month and day, as they appear in a post URL
func (d *Document) MatchesDate(year, month, day string) bool {
	return d.DateSlug() == fmt.Sprintf("%s/%s/%s", year, month, day)
}

// KeyLine returns the source line of a front matter key, if present
func (d *Document) KeyLine(key string) (int, bool) {
	line, ok := d.keyLines[key]
	return line, ok
}

// FrontMatterError reports front matter that could not be decoded
type FrontMatterError struct {
	// 1-based line in the source file
	Line int
	Err  error
}

func (e *FrontMatterError) Error() string {
	return fmt.Sprintf("front matter line %d: %v", e.Line, e.Err)
}

func (e *FrontMatterError) Unwrap() error {
	return e.Err
}
