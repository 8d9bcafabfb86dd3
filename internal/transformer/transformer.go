package transformer

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jwtly10/folio"
	"github.com/jwtly10/folio/markdown"
)

type TransformOptions struct {
	// The mode for the writer instance
	WriterMode folio.WriteMode
	// Root of the generated site
	OutDir string
	// If true, no backup will be created
	NoBackup bool
	// Chroma style for code blocks, empty disables highlighting
	HighlightStyle string
	// Site details stamped into every page
	SiteTitle string
	BaseURL   string
	Author    string
}

func (t *TransformOptions) Pretty() string {
	return fmt.Sprintf("mode=%s out=%s backup=%s highlight=%s",
		t.WriterMode,
		t.OutDir,
		boolToText(!t.NoBackup),
		orNone(t.HighlightStyle))
}

func boolToText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

type Transformer struct {
	parser *folio.Parser
	writer *folio.Writer
	backup *folio.BackupManager
	meta   folio.WriterMetadata

	opts TransformOptions
}

// NewTransformer creates a new Transformer instance with the specified options [TransformOptions]
func NewTransformer(opts TransformOptions) (*Transformer, error) {
	meta := folio.WriterMetadata{
		Version:   folio.VERSION,
		SiteTitle: opts.SiteTitle,
		BaseURL:   opts.BaseURL,
		Author:    opts.Author,
	}

	var htmlOpts []markdown.HTMLOption
	if opts.HighlightStyle != "" {
		htmlOpts = append(htmlOpts, markdown.WithHighlighting(opts.HighlightStyle))

		css, err := markdown.HighlightCSS(opts.HighlightStyle)
		if err != nil {
			return nil, err
		}
		meta.CSS = template.CSS(css)
	}

	return &Transformer{
		parser: folio.NewParser(),
		writer: folio.NewWriter(opts.WriterMode, htmlOpts...),
		backup: folio.NewBackupManager(),
		meta:   meta,
		opts:   opts,
	}, nil
}

type MarkdownSource struct {
	Content  io.Reader
	Metadata folio.MetaData
}

// Transform parses the source and writes its page below the output directory
func (t *Transformer) Transform(input MarkdownSource) (string, error) {
	if t.writer.Mode() == folio.ModeFragment {
		return "", fmt.Errorf("cannot use Transform() for fragment mode, use WriteToPath() instead")
	}

	doc, err := t.Parse(input)
	if err != nil {
		return "", err
	}
	return t.TransformDocument(doc)
}

// TransformDocument writes the page of an already parsed document
func (t *Transformer) TransformDocument(doc *folio.Document) (string, error) {
	if t.opts.OutDir == "" {
		return "", fmt.Errorf("output directory is required for transformation")
	}
	return t.write(doc, folio.ResolveOutputPath(t.opts.OutDir, doc))
}

// WriteToPath writes the fragment of an already parsed document to outputPath
func (t *Transformer) WriteToPath(doc *folio.Document, outputPath string) (string, error) {
	if t.writer.Mode() != folio.ModeFragment {
		return "", fmt.Errorf("WriteToPath() can only be used with fragment mode")
	}
	if outputPath == "" {
		return "", fmt.Errorf("output path is required for preview transformation")
	}
	return t.write(doc, outputPath)
}

// Parse parses a source without writing anything
func (t *Transformer) Parse(input MarkdownSource) (*folio.Document, error) {
	slog.Debug("transforming document", "path", input.Metadata.Source)
	if input.Metadata.Source == "" {
		return nil, fmt.Errorf("source metadata is required for transformation")
	}

	doc, err := t.parser.ParseMarkdownDoc(input.Content, input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}

// WriteIndex writes the listing page of one section below the output directory
func (t *Transformer) WriteIndex(kind folio.ContentKind, docs []*folio.Document) (string, error) {
	path := folio.SectionIndexPath(t.opts.OutDir, kind)
	err := t.create(path, func(out io.Writer) error {
		return t.writer.WriteIndex(out, kind, docs, t.metadata())
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (t *Transformer) write(doc *folio.Document, path string) (string, error) {
	err := t.create(path, func(out io.Writer) error {
		if err := t.writer.Write(doc, out, t.metadata()); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (t *Transformer) metadata() folio.WriterMetadata {
	meta := t.meta
	meta.Generated = time.Now().Format(time.RFC3339)
	return meta
}

// create backs up any existing page at path, then writes a fresh one
func (t *Transformer) create(path string, write func(io.Writer) error) error {
	// Only page builds are backed up, previews are disposable
	if !t.opts.NoBackup && t.writer.Mode() == folio.ModePage {
		if _, err := t.backup.CreateBackupOf(path); err != nil {
			return fmt.Errorf("backup error: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	return write(out)
}
