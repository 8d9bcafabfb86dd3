package lsp

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jwtly10/folio"
	"github.com/jwtly10/folio/internal/content"
	"github.com/jwtly10/folio/internal/transformer"
	"github.com/sourcegraph/go-lsp"
)

const previewExt = ".preview.html"

type DocumentServiceOptions struct {
	PreviewTransformerOpts transformer.TransformOptions

	// Root directory for shadow files
	ShadowRoot string
}

var DefaultDocumentServiceOptions = DocumentServiceOptions{
	ShadowRoot: filepath.Join(os.TempDir(), "folio-preview"),
	PreviewTransformerOpts: transformer.TransformOptions{
		WriterMode: folio.ModeFragment,
		NoBackup:   true,
	},
}

func (o DocumentServiceOptions) Validate() error {
	if o.ShadowRoot == "" {
		return fmt.Errorf("shadow root directory is required")
	}
	if o.PreviewTransformerOpts.WriterMode != folio.ModeFragment {
		return fmt.Errorf("previews must use fragment mode, got %s", o.PreviewTransformerOpts.WriterMode)
	}

	return nil
}

// Preview is the rendered state of one open document
type Preview struct {
	// Shadow file URI, empty when the document could not be rendered
	URI         string
	HTML        string
	Diagnostics []lsp.Diagnostic
}

// DocumentService renders previews of open documents and tracks where they live
type DocumentService struct {
	mu sync.Mutex
	// Maps shadow URIs to original URIs. Shadow files mirror the source tree
	//
	// shadow_file = file:///tmp/folio-preview/home/me/site/blog/hello.preview.html
	// original    = file:///home/me/site/blog/hello.md
	shadowMap map[string]string
	// The root directory for shadow files eg /tmp/folio-preview
	shadowRoot string

	transformer *transformer.Transformer
}

func NewDocumentService(opts DocumentServiceOptions) (*DocumentService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document service options: %w", err)
	}

	t, err := transformer.NewTransformer(opts.PreviewTransformerOpts)
	if err != nil {
		return nil, fmt.Errorf("invalid document service options: %w", err)
	}

	d := &DocumentService{
		shadowMap:   make(map[string]string),
		shadowRoot:  opts.ShadowRoot,
		transformer: t,
	}

	// Cleanup shadow files on GC finalization
	runtime.SetFinalizer(d, func(d *DocumentService) {
		if err := d.CleanupShadowFiles(); err != nil {
			slog.Error("failed to cleanup shadow files", "error", err)
		}
	})

	return d, nil
}

// Preview renders text as the document at documentURI. Front matter that
// cannot be decoded is not an error: it is reported as a diagnostic and
// the returned preview has no URI.
func (s *DocumentService) Preview(text string, documentURI lsp.DocumentURI) (*Preview, error) {
	fsPath, err := s.URIToPath(documentURI)
	if err != nil {
		return nil, fmt.Errorf("invalid document URI: %w", err)
	}

	doc, err := s.transformer.Parse(transformer.MarkdownSource{
		Content: strings.NewReader(text),
		Metadata: folio.MetaData{
			Source: fsPath,
			Kind:   content.KindOf(fsPath),
		},
	})
	if err != nil {
		var fmErr *folio.FrontMatterError
		if errors.As(err, &fmErr) {
			slog.Debug("document has invalid front matter", "uri", documentURI, "line", fmErr.Line)
			return &Preview{Diagnostics: []lsp.Diagnostic{FrontMatterDiagnostic(fmErr, text)}}, nil
		}
		return nil, err
	}

	shadowPath, err := s.transformer.WriteToPath(doc, s.shadowPath(fsPath))
	if err != nil {
		return nil, fmt.Errorf("transform error: %w", err)
	}

	html, err := os.ReadFile(shadowPath)
	if err != nil {
		return nil, err
	}

	shadowURI := s.PathToURI(shadowPath)
	s.mu.Lock()
	s.shadowMap[shadowURI] = string(documentURI)
	s.mu.Unlock()

	slog.Debug("rendered preview",
		"original", documentURI,
		"shadow", shadowURI,
		"bytes", len(html),
	)

	return &Preview{
		URI:         shadowURI,
		HTML:        string(html),
		Diagnostics: Diagnostics(doc, text),
	}, nil
}

// shadowPath mirrors the source path below the shadow root
func (s *DocumentService) shadowPath(fsPath string) string {
	base := strings.TrimSuffix(filepath.Base(fsPath), filepath.Ext(fsPath))
	return filepath.Join(s.shadowRoot, filepath.Dir(fsPath), base+previewExt)
}

// Close forgets an original document and removes its shadow file
func (s *DocumentService) Close(documentURI lsp.DocumentURI) {
	shadowURI, ok := s.ShadowURI(string(documentURI))
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.shadowMap, shadowURI)
	s.mu.Unlock()

	path, err := s.URIToPath(lsp.DocumentURI(shadowURI))
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove shadow file", "path", path, "error", err)
	}
}

// ShadowRoot returns the root directory for shadow files
func (s *DocumentService) ShadowRoot() string {
	return s.shadowRoot
}

// OriginalURI returns the original document URI for a shadow file
func (s *DocumentService) OriginalURI(shadowURI string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uri, exists := s.shadowMap[shadowURI]
	return uri, exists
}

// ShadowURI returns the shadow URI for an original document URI
func (s *DocumentService) ShadowURI(originalURI string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for shadow, original := range s.shadowMap {
		if original == originalURI {
			return shadow, true
		}
	}
	return "", false
}

// URIToPath converts an LSP URI to a filesystem path
func (s *DocumentService) URIToPath(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		return "", fmt.Errorf("uri %q has no path", uri)
	}
	return u.Path, nil
}

// PathToURI converts a filesystem path to an LSP URI
func (s *DocumentService) PathToURI(path string) string {
	return "file://" + path
}

// CleanupShadowFiles removes all shadow files
func (s *DocumentService) CleanupShadowFiles() error {
	if s.shadowRoot != DefaultDocumentServiceOptions.ShadowRoot {
		slog.Info("skipping shadow file cleanup due to user specified", "path", s.shadowRoot)
		return nil
	}

	return filepath.WalkDir(s.shadowRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("error accessing path", "path", path, "error", err)
			return nil
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), previewExt) {
			if err := os.Remove(path); err != nil {
				slog.Warn("failed to remove shadow file", "path", path, "error", err)
			} else {
				slog.Debug("removed shadow file", "path", path)
			}
		}
		return nil
	})
}
