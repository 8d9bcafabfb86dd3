package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jwtly10/folio"
	"github.com/jwtly10/folio/internal/content"
	"github.com/jwtly10/folio/internal/transformer"
)

const (
	defaultWorkers = 4
	fileExtension  = ".md"
)

type BuildResult struct {
	Path    string
	OutPath string
}

type ProcessResult struct {
	Path    string
	OutPath string
	Error   error
}

type ProcessorOptions struct {
	Transform transformer.TransformOptions
	// Workers rendering pages concurrently, 0 means 4
	Workers int
	// MaxFiles caps a content directory, 0 uses the library default
	MaxFiles int
}

type Processor struct {
	transformer *transformer.Transformer
	opts        ProcessorOptions
}

func NewProcessor(opts ProcessorOptions) (*Processor, error) {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	t, err := transformer.NewTransformer(opts.Transform)
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}

	return &Processor{
		transformer: t,
		opts:        opts,
	}, nil
}

// ProcessPath builds a single page for a markdown file, or the whole site for
// a content directory (blog/ and projects/ plus their index pages)
func (p *Processor) ProcessPath(path string) ([]BuildResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path: %w", err)
	}

	if info.IsDir() {
		return p.processDirectory(path)
	}

	result := p.processFile(path)
	if result.Error != nil {
		return nil, result.Error
	}

	return []BuildResult{{
		Path:    result.Path,
		OutPath: result.OutPath,
	}}, nil
}

func (p *Processor) processDirectory(root string) ([]BuildResult, error) {
	startTime := time.Now()
	slog.Debug("starting site build", "path", root)

	lib, err := content.Load(root, content.LoadOptions{MaxFiles: p.opts.MaxFiles})
	if err != nil {
		return nil, err
	}

	docs := lib.All()
	if len(docs) == 0 {
		return nil, fmt.Errorf("no %s files found below %s or %s", fileExtension,
			filepath.Join(lib.Root(), content.BlogDir), filepath.Join(lib.Root(), content.ProjectsDir))
	}

	slog.Debug("found documents to build", "count", len(docs), "duration", time.Since(startTime))

	jobs := make(chan *folio.Document, len(docs))
	results := make(chan ProcessResult, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				outPath, err := p.transformer.TransformDocument(doc)
				results <- ProcessResult{Path: doc.Metadata.Source, OutPath: outPath, Error: err}
			}
		}()
	}

	for _, doc := range docs {
		jobs <- doc
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var errors []error
	var built []BuildResult

	absRoot, _ := filepath.Abs(root)
	for result := range results {
		if result.Error != nil {
			errors = append(errors, fmt.Errorf("failed to process %s: %w", result.Path, result.Error))
			slog.Debug("failed to process file", "path", result.Path, "error", result.Error)
			continue
		}
		built = append(built, p.relative(absRoot, result))
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("encountered %d errors during build. Please rerun with -debug to see trace", len(errors))
	}

	for _, section := range []struct {
		kind folio.ContentKind
		docs []*folio.Document
	}{
		{folio.KindPost, lib.Posts()},
		{folio.KindProject, lib.Projects()},
	} {
		if len(section.docs) == 0 {
			continue
		}
		outPath, err := p.transformer.WriteIndex(section.kind, section.docs)
		if err != nil {
			return nil, fmt.Errorf("failed to write %s index: %w", section.kind, err)
		}
		built = append(built, BuildResult{Path: section.kind.String() + " index", OutPath: outPath})
	}

	slog.Debug("build completed", "duration", time.Since(startTime), "pages", len(built))
	return built, nil
}

func (p *Processor) relative(absRoot string, result ProcessResult) BuildResult {
	absSource, _ := filepath.Abs(result.Path)
	relSource, err := filepath.Rel(absRoot, absSource)
	if err != nil {
		relSource = result.Path
	}

	slog.Debug("page built",
		"source", relSource,
		"output", result.OutPath,
	)

	return BuildResult{Path: relSource, OutPath: result.OutPath}
}

func (p *Processor) processFile(path string) ProcessResult {
	startTime := time.Now()
	var result ProcessResult

	absPath, err := filepath.Abs(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to resolve absolute path: %w", err)
		return result
	}

	result.Path = absPath

	slog.Debug("processing file", "path", absPath)

	if !strings.HasSuffix(absPath, fileExtension) {
		result.Error = fmt.Errorf("invalid file extension, expected %s", fileExtension)
		return result
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		result.Error = fmt.Errorf("error reading file: %w", err)
		return result
	}

	src := transformer.MarkdownSource{
		Content: bytes.NewReader(data),
		Metadata: folio.MetaData{
			Source: absPath,
			Kind:   content.KindOf(absPath),
		},
	}

	outPath, err := p.transformer.Transform(src)
	if err != nil {
		result.Error = err
		return result
	}

	result.OutPath = outPath
	slog.Debug("file processed",
		"path", absPath,
		"duration", time.Since(startTime))

	return result
}
