package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	iLsp "github.com/jwtly10/folio/internal/lsp"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// MethodPreview returns the rendered fragment of an open document
const MethodPreview = "folio/preview"

type Server struct {
	// tracks canceled request IDs
	cancelMap sync.Map

	// tracking for method request counts
	trackRequestCount sync.Map

	// latest full text of every open document
	mu        sync.Mutex
	documents map[lsp.DocumentURI]string

	// abstraction for preview operations
	docService *iLsp.DocumentService

	exit func(code int)
}

type Options struct {
	// Root directory for preview files, empty uses the default
	ShadowRoot string
	// Chroma style for code blocks in previews
	HighlightStyle string
}

var DefaultServerOptions = Options{
	ShadowRoot: iLsp.DefaultDocumentServiceOptions.ShadowRoot,
}

func (o Options) Validate() error {
	if o.ShadowRoot != "" {
		info, err := os.Stat(o.ShadowRoot)
		if err != nil {
			return fmt.Errorf("invalid shadow root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("shadow root %s is not a directory", o.ShadowRoot)
		}
	}
	return nil
}

// OverrideDocOpts applies the user set options on top of docOpts
func (o Options) OverrideDocOpts(docOpts *iLsp.DocumentServiceOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.ShadowRoot != "" {
		docOpts.ShadowRoot = o.ShadowRoot
	}
	if o.HighlightStyle != "" {
		docOpts.PreviewTransformerOpts.HighlightStyle = o.HighlightStyle
	}
	return nil
}

func NewServer(options Options) (*Server, error) {
	docOpts := iLsp.DefaultDocumentServiceOptions
	if err := options.OverrideDocOpts(&docOpts); err != nil {
		return nil, err
	}

	dService, err := iLsp.NewDocumentService(docOpts)
	if err != nil {
		return nil, err
	}

	return &Server{
		docService: dService,
		documents:  make(map[lsp.DocumentURI]string),
		exit:       os.Exit,
	}, nil
}

// Serve handles requests arriving on stream until the client disconnects
func (s *Server) Serve(ctx context.Context, stream io.ReadWriteCloser) *jsonrpc2.Conn {
	return jsonrpc2.NewConn(
		ctx,
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.Handle),
	)
}

// PreviewParams are the params of a folio/preview request
type PreviewParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
}

// PreviewResult is the response to a folio/preview request
type PreviewResult struct {
	URI  string `json:"uri"`
	HTML string `json:"html"`
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	slog.Debug("received request", "method", req.Method, "id", req.ID)
	reqCount, _ := s.trackRequestCount.LoadOrStore(req.Method, 0)
	if count, ok := reqCount.(int); ok {
		s.trackRequestCount.Store(req.Method, count+1)
	}

	if _, ok := s.cancelMap.Load(req.ID.String()); ok {
		slog.Debug("request was canceled", "id", req.ID)
		s.cancelMap.Delete(req.ID.String())
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		slog.Info("initializing lsp server")

		var initParams lsp.InitializeParams
		if err := decode(req, &initParams); err != nil {
			return nil, err
		}

		fullSync := lsp.TDSKFull
		return lsp.InitializeResult{
			Capabilities: lsp.ServerCapabilities{
				TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{Kind: &fullSync},
			},
		}, nil

	case "initialized":
		slog.Info("server initialized")
		return nil, nil

	case "shutdown":
		slog.Info("shutting down")

		if err := s.docService.CleanupShadowFiles(); err != nil {
			slog.Error("failed to remove shadow workspace", "error", err)
		}

		s.printDebugStats()

		return nil, nil

	case "exit":
		slog.Info("exiting")

		s.exit(0)
		return nil, nil

	// Biz logic
	case "textDocument/didOpen":
		// Rendered on open, so diagnostics are shown initially
		var params lsp.DidOpenTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}

		s.setText(params.TextDocument.URI, params.TextDocument.Text)
		_, err := s.publish(ctx, conn, params.TextDocument.URI, params.TextDocument.Text)
		return nil, err

	case "textDocument/didChange":
		var params lsp.DidChangeTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}

		// Full sync, so the last change holds the whole document
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		text := params.ContentChanges[len(params.ContentChanges)-1].Text

		s.setText(params.TextDocument.URI, text)
		_, err := s.publish(ctx, conn, params.TextDocument.URI, text)
		return nil, err

	case "textDocument/didSave":
		var params lsp.DidSaveTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}

		text, ok := s.text(params.TextDocument.URI)
		if !ok {
			return nil, fmt.Errorf("document %s is not open", params.TextDocument.URI)
		}
		_, err := s.publish(ctx, conn, params.TextDocument.URI, text)
		return nil, err

	case "textDocument/didClose":
		var params lsp.DidCloseTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}

		s.mu.Lock()
		delete(s.documents, params.TextDocument.URI)
		s.mu.Unlock()
		s.docService.Close(params.TextDocument.URI)

		return nil, conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []lsp.Diagnostic{},
		})

	case MethodPreview:
		var params PreviewParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}

		text, ok := s.text(params.TextDocument.URI)
		if !ok {
			return nil, fmt.Errorf("document %s is not open", params.TextDocument.URI)
		}

		preview, err := s.publish(ctx, conn, params.TextDocument.URI, text)
		if err != nil {
			return nil, err
		}
		if preview.URI == "" {
			return nil, fmt.Errorf("document %s cannot be rendered: %s", params.TextDocument.URI, preview.Diagnostics[0].Message)
		}

		return PreviewResult{URI: preview.URI, HTML: preview.HTML}, nil

	case "$/cancelRequest":
		var params lsp.CancelParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		slog.Debug("canceling request", "id", params.ID)
		s.cancelMap.Store(params.ID.String(), struct{}{})
		return nil, nil

	default:
		slog.Debug("unsupported method", "method", req.Method)
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

// publish re-renders a document and sends its diagnostics to the client
func (s *Server) publish(ctx context.Context, conn *jsonrpc2.Conn, uri lsp.DocumentURI, text string) (*iLsp.Preview, error) {
	preview, err := s.docService.Preview(text, uri)
	if err != nil {
		return nil, err
	}

	slog.Debug("publishing diagnostics", "uri", uri, "count", len(preview.Diagnostics))

	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: preview.Diagnostics,
	}); err != nil {
		return nil, fmt.Errorf("publishing diagnostics: %w", err)
	}
	return preview, nil
}

func (s *Server) setText(uri lsp.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = text
}

func (s *Server) text(uri lsp.DocumentURI) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.documents[uri]
	return text, ok
}

func decode(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("%s requires params", req.Method)}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

func (s *Server) printDebugStats() {
	s.trackRequestCount.Range(func(key, value interface{}) bool {
		msg := fmt.Sprintf("Method: %-30s Count: %d", key.(string), value.(int))
		slog.Debug(msg)
		return true
	})
}
