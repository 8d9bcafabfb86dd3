package folio

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"

	"github.com/jwtly10/folio/markdown"
)

const VERSION = "v0.1.0"

type WriteMode int

const (
	// ModePage writes a complete HTML document
	ModePage WriteMode = iota
	// ModeFragment writes the rendered body only, for previews
	ModeFragment
)

func (m WriteMode) String() string {
	switch m {
	case ModePage:
		return "Page"
	case ModeFragment:
		return "Fragment"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// WriterMetadata is site level information stamped into every page
type WriterMetadata struct {
	Version   string
	Generated string
	SiteTitle string
	// BaseURL is the site origin used for canonical links, without a trailing slash
	BaseURL string
	Author  string
	// CSS is inlined into the page head, typically the highlight stylesheet
	CSS template.CSS
}

type Writer struct {
	mode     WriteMode
	htmlOpts []markdown.HTMLOption
}

func NewWriter(mode WriteMode, opts ...markdown.HTMLOption) *Writer {
	return &Writer{
		mode:     mode,
		htmlOpts: opts,
	}
}

func (w *Writer) Mode() WriteMode {
	return w.mode
}

type pageData struct {
	Meta WriterMetadata
	Doc  *Document
	Path string
	Kind string
	Date string
	Body template.HTML
}

type indexData struct {
	Meta    WriterMetadata
	Heading string
	Path    string
	Entries []indexEntry
}

type indexEntry struct {
	Title       string
	URL         string
	Date        string
	Description string
	Tags        []string
	Status      string
}

// Write renders doc to out according to the writer mode
func (w *Writer) Write(doc *Document, out io.Writer, meta WriterMetadata) error {
	var body strings.Builder
	if err := markdown.WriteHTML(&body, doc.Render(), w.htmlOpts...); err != nil {
		return fmt.Errorf("rendering body: %w", err)
	}

	slog.Debug("Writing document", "source", doc.Metadata.Source, "mode", w.mode, "bytes", body.Len())

	if w.mode == ModeFragment {
		if _, err := io.WriteString(out, body.String()); err != nil {
			return fmt.Errorf("writing fragment: %w", err)
		}
		return nil
	}

	data := pageData{
		Meta: meta,
		Doc:  doc,
		Path: URLPath(doc),
		Kind: doc.Metadata.Kind.String(),
		Body: template.HTML(body.String()),
	}
	if doc.Metadata.Kind == KindPost {
		data.Date = doc.Date.Format("January 2, 2006")
	}

	if err := pageTemplate.Execute(out, data); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

// WriteIndex writes the listing page for one section of the site. docs are
// listed in the order given.
func (w *Writer) WriteIndex(out io.Writer, kind ContentKind, docs []*Document, meta WriterMetadata) error {
	data := indexData{
		Meta:    meta,
		Heading: "Blog",
		Path:    "/blog/",
	}
	if kind == KindProject {
		data.Heading = "Projects"
		data.Path = "/projects/"
	}

	for _, doc := range docs {
		entry := indexEntry{
			Title:       doc.FrontMatter.Title,
			URL:         URLPath(doc),
			Description: doc.FrontMatter.Description,
			Tags:        doc.FrontMatter.Tags,
		}
		if entry.Description == "" {
			entry.Description = doc.Excerpt
		}
		if kind == KindPost {
			entry.Date = doc.Date.Format("January 2, 2006")
		} else {
			entry.Tags = doc.FrontMatter.Tech
			entry.Status = doc.FrontMatter.Status
		}
		data.Entries = append(data.Entries, entry)
	}

	slog.Debug("Writing index", "section", data.Heading, "entries", len(data.Entries))

	if err := indexTemplate.Execute(out, data); err != nil {
		return fmt.Errorf("writing %s index: %w", kind, err)
	}
	return nil
}

// head is shared by every page; its dot is the map built by headData
const headTemplate = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="folio {{.Meta.Version}}">
{{- with .Meta.Generated}}
<meta name="generated" content="{{.}}">
{{- end}}
{{- with .Meta.Author}}
<meta name="author" content="{{.}}">
{{- end}}
{{- with .Description}}
<meta name="description" content="{{.}}">
{{- end}}
{{- if .Meta.BaseURL}}
<link rel="canonical" href="{{.Meta.BaseURL}}{{.Path}}">
{{- end}}
<title>{{.Title}}{{with .Meta.SiteTitle}} | {{.}}{{end}}</title>
{{- with .Meta.CSS}}
<style>{{.}}</style>
{{- end}}
</head>
{{end}}`

func headData(meta WriterMetadata, title, description, path string) map[string]any {
	return map[string]any{"Meta": meta, "Title": title, "Description": description, "Path": path}
}

var templateFuncs = template.FuncMap{"head": headData}

var pageTemplate = template.Must(template.New("page").Funcs(templateFuncs).Parse(headTemplate +
	`{{template "head" head .Meta .Doc.FrontMatter.Title .Doc.FrontMatter.Description .Path}}<body>
<article class="{{.Kind}}">
<header>
<h1>{{.Doc.FrontMatter.Title}}</h1>
{{- with .Date}}
<time datetime="{{$.Doc.Date.Format "2006-01-02"}}">{{.}}</time>
{{- end}}
{{- with .Doc.FrontMatter.Tags}}
<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- with .Doc.FrontMatter.Tech}}
<ul class="tech">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- if eq .Kind "project"}}
<p class="status status-{{.Doc.FrontMatter.Status}}">{{.Doc.FrontMatter.Status}}</p>
{{- end}}
{{- with .Doc.FrontMatter.GitHub}}
<a class="github" href="{{.}}" target="_blank" rel="noopener noreferrer">Source</a>
{{- end}}
{{- with .Doc.FrontMatter.Demo}}
<a class="demo" href="{{.}}" target="_blank" rel="noopener noreferrer">Demo</a>
{{- end}}
</header>
{{.Body}}</article>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Funcs(templateFuncs).Parse(headTemplate +
	`{{template "head" head .Meta .Heading "" .Path}}<body>
<h1>{{.Heading}}</h1>
<ul class="entries">
{{- range .Entries}}
<li><a href="{{.URL}}">{{.Title}}</a>
{{- with .Date}} <time>{{.}}</time>{{end}}
{{- with .Status}} <span class="status">{{.}}</span>{{end}}
{{- with .Description}}
<p>{{.}}</p>
{{- end}}
{{- with .Tags}}
<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
</li>
{{- end}}
</ul>
</body>
</html>
`))
