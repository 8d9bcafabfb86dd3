package main

import (
	"flag"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jwtly10/folio"
	"github.com/jwtly10/folio/internal/cli"
	"github.com/jwtly10/folio/internal/config"
	"github.com/jwtly10/folio/internal/content"
	"github.com/jwtly10/folio/internal/transformer"
	"github.com/jwtly10/folio/markdown"
)

func main() {
	var inFile, format, buildDir, outDir, configPath, highlight string
	var width int
	var debug, noBackup bool
	flag.StringVar(&inFile, "in", "", "Input markdown file, rendered to stdout")
	flag.StringVar(&format, "format", "html", "Output format for -in: html, text or page")
	flag.IntVar(&width, "width", 80, "Wrap width for -format text")
	flag.StringVar(&buildDir, "build", "", "Content directory to build into a site (default from config)")
	flag.StringVar(&outDir, "out", "", "Output directory for -build (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to folio.yaml")
	flag.StringVar(&highlight, "highlight", "", "Chroma style for code blocks (overrides config)")
	flag.BoolVar(&noBackup, "no-backup", false, "Do not back up pages before overwriting them")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if highlight != "" {
		cfg.HighlightStyle = highlight
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if noBackup {
		cfg.Backup = false
	}

	switch {
	case inFile != "":
		if err := render(os.Stdout, os.Stderr, inFile, format, width, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", inFile, err)
			os.Exit(1)
		}
	default:
		// without -in or -build the configured content directory is built
		if buildDir == "" {
			buildDir = cfg.ContentDir
		}
		if err := build(buildDir, cfg); err != nil {
			fmt.Printf("Error building site: %v\n", err)
			os.Exit(1)
		}
	}
}

func render(out, warn io.Writer, inFile, format string, width int, cfg *config.Config) error {
	f, err := os.Open(inFile)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	doc, err := folio.NewParser().ParseMarkdownDoc(f, folio.MetaData{
		Source: inFile,
		Kind:   content.KindOf(inFile),
	})
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	for _, p := range doc.Validate() {
		fmt.Fprintf(warn, "warning: %s: %s\n", inFile, p)
	}

	var htmlOpts []markdown.HTMLOption
	var css string
	if cfg.HighlightStyle != "" {
		css, err = markdown.HighlightCSS(cfg.HighlightStyle)
		if err != nil {
			return err
		}
		htmlOpts = append(htmlOpts, markdown.WithHighlighting(cfg.HighlightStyle))
	}

	switch format {
	case "html":
		return markdown.WriteHTML(out, doc.Render(), htmlOpts...)
	case "text":
		return markdown.WriteText(out, doc.Render(), width)
	case "page":
		meta := folio.WriterMetadata{
			Version:   folio.VERSION,
			Generated: time.Now().Format(time.RFC3339),
			SiteTitle: cfg.SiteTitle,
			BaseURL:   cfg.BaseURL,
			Author:    cfg.Author,
			CSS:       template.CSS(css),
		}
		return folio.NewWriter(folio.ModePage, htmlOpts...).Write(doc, out, meta)
	default:
		return fmt.Errorf("unknown format %q, expected html, text or page", format)
	}
}

func build(dir string, cfg *config.Config) error {
	opts := cli.ProcessorOptions{
		Transform: transformer.TransformOptions{
			WriterMode:     folio.ModePage,
			OutDir:         folio.MustAbs(cfg.OutputDir),
			NoBackup:       !cfg.Backup,
			HighlightStyle: cfg.HighlightStyle,
			SiteTitle:      cfg.SiteTitle,
			BaseURL:        cfg.BaseURL,
			Author:         cfg.Author,
		},
		Workers:  cfg.Workers,
		MaxFiles: cfg.MaxFiles,
	}
	slog.Debug("building site", "dir", dir, "opts", opts.Transform.Pretty())

	p, err := cli.NewProcessor(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := p.ProcessPath(dir)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("Wrote %s to %s\n", r.Path, r.OutPath)
	}
	fmt.Printf("Built %d pages in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}
