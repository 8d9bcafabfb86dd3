package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwtly10/folio/internal/lsp"
	golsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerOptions(t *testing.T) {
	// so our validation can check these paths are valid
	tempShadowRoot := filepath.Join(t.TempDir(), "test-shadow-root")
	err := os.MkdirAll(tempShadowRoot, 0755)
	require.NoError(t, err)

	tests := []struct {
		name        string
		opts        Options
		expectError bool
	}{
		{
			name: "valid options",
			opts: Options{
				ShadowRoot:     tempShadowRoot,
				HighlightStyle: "github",
			},
			expectError: false,
		},
		{
			name: "invalid shadow root",
			opts: Options{
				ShadowRoot: "/nonexistent/path",
			},
			expectError: true,
		},
		{
			name:        "empty options - should use defaults",
			opts:        Options{},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			server, err := NewServer(tt.opts)
			require.NoError(t, err)
			require.NotNil(t, server)

			// are docservice options being set properly
			if tt.opts.ShadowRoot != "" {
				assert.Equal(t, tt.opts.ShadowRoot, server.docService.ShadowRoot())
			} else {
				assert.NotEmpty(t, server.docService.ShadowRoot())
			}
		})
	}
}

func TestNewServerRejectsUnknownStyle(t *testing.T) {
	_, err := NewServer(Options{ShadowRoot: t.TempDir(), HighlightStyle: "no-such-style"})
	assert.Error(t, err)
}

func TestOptionsOverride(t *testing.T) {
	tempShadowRoot := filepath.Join(t.TempDir(), "shadow-root")
	err := os.MkdirAll(tempShadowRoot, 0755)
	require.NoError(t, err)

	opts := Options{
		ShadowRoot:     tempShadowRoot,
		HighlightStyle: "monokai",
	}

	docOpts := lsp.DefaultDocumentServiceOptions
	err = opts.OverrideDocOpts(&docOpts)
	require.NoError(t, err)

	assert.Equal(t, tempShadowRoot, docOpts.ShadowRoot)
	assert.Equal(t, "monokai", docOpts.PreviewTransformerOpts.HighlightStyle)

	// options remain dont change
	assert.Equal(t, lsp.DefaultDocumentServiceOptions.PreviewTransformerOpts.WriterMode,
		docOpts.PreviewTransformerOpts.WriterMode)
	assert.Empty(t, lsp.DefaultDocumentServiceOptions.PreviewTransformerOpts.HighlightStyle)
}

type testClient struct {
	conn        *jsonrpc2.Conn
	diagnostics chan golsp.PublishDiagnosticsParams
}

func newTestClient(t *testing.T, s *Server) *testClient {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	ctx := context.Background()
	serverConn := s.Serve(ctx, serverSide)

	c := &testClient{diagnostics: make(chan golsp.PublishDiagnosticsParams, 16)}
	c.conn = jsonrpc2.NewConn(
		ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params golsp.PublishDiagnosticsParams
				if err := json.Unmarshal(*req.Params, &params); err != nil {
					return nil, err
				}
				c.diagnostics <- params
			}
			return nil, nil
		}),
	)

	t.Cleanup(func() {
		c.conn.Close()
		serverConn.Close()
	})
	return c
}

func (c *testClient) waitDiagnostics(t *testing.T) golsp.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diagnostics:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return golsp.PublishDiagnosticsParams{}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Options{ShadowRoot: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestServerInitialize(t *testing.T) {
	c := newTestClient(t, newTestServer(t))

	var result map[string]interface{}
	err := c.conn.Call(context.Background(), "initialize", golsp.InitializeParams{RootURI: "file:///site"}, &result)
	require.NoError(t, err)

	caps, ok := result["capabilities"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(golsp.TDSKFull), caps["textDocumentSync"])
}

func TestServerPreviewLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, newTestServer(t))
	uri := golsp.DocumentURI("file:///site/blog/hello.md")

	err := c.conn.Notify(ctx, "textDocument/didOpen", golsp.DidOpenTextDocumentParams{
		TextDocument: golsp.TextDocumentItem{
			URI:        uri,
			LanguageID: "markdown",
			Version:    1,
			Text:       "---\ntitle: Hello\ndate: 2024-01-02\n---\nFirst",
		},
	})
	require.NoError(t, err)

	diags := c.waitDiagnostics(t)
	assert.Equal(t, uri, diags.URI)
	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, "description", diags.Diagnostics[0].Code)

	err = c.conn.Notify(ctx, "textDocument/didChange", golsp.DidChangeTextDocumentParams{
		TextDocument: golsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: golsp.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []golsp.TextDocumentContentChangeEvent{
			{Text: "---\ntitle: Hello\ndate: 2024-01-02\ndescription: Hi\n---\nSecond *draft*"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, c.waitDiagnostics(t).Diagnostics)

	var preview PreviewResult
	err = c.conn.Call(ctx, MethodPreview, PreviewParams{TextDocument: golsp.TextDocumentIdentifier{URI: uri}}, &preview)
	require.NoError(t, err)
	assert.Equal(t, "<p>Second <em>draft</em></p>\n", preview.HTML)
	assert.Contains(t, preview.URI, "hello.preview.html")
	c.waitDiagnostics(t)

	err = c.conn.Notify(ctx, "textDocument/didSave", golsp.DidSaveTextDocumentParams{
		TextDocument: golsp.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Empty(t, c.waitDiagnostics(t).Diagnostics)

	err = c.conn.Notify(ctx, "textDocument/didClose", golsp.DidCloseTextDocumentParams{
		TextDocument: golsp.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	closed := c.waitDiagnostics(t)
	assert.Equal(t, uri, closed.URI)
	assert.Empty(t, closed.Diagnostics)

	err = c.conn.Call(ctx, MethodPreview, PreviewParams{TextDocument: golsp.TextDocumentIdentifier{URI: uri}}, &preview)
	assert.Error(t, err, "closed documents cannot be previewed")
}

func TestServerPreviewOfBrokenFrontMatter(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, newTestServer(t))
	uri := golsp.DocumentURI("file:///site/blog/bad.md")

	err := c.conn.Notify(ctx, "textDocument/didOpen", golsp.DidOpenTextDocumentParams{
		TextDocument: golsp.TextDocumentItem{URI: uri, Text: "---\ndate: someday\n---\n"},
	})
	require.NoError(t, err)

	diags := c.waitDiagnostics(t)
	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, golsp.DiagnosticSeverity(golsp.Error), diags.Diagnostics[0].Severity)

	var preview PreviewResult
	err = c.conn.Call(ctx, MethodPreview, PreviewParams{TextDocument: golsp.TextDocumentIdentifier{URI: uri}}, &preview)
	assert.Error(t, err)
}

func TestServerUnknownMethod(t *testing.T) {
	c := newTestClient(t, newTestServer(t))

	var result interface{}
	err := c.conn.Call(context.Background(), "textDocument/hover", golsp.TextDocumentPositionParams{}, &result)
	require.Error(t, err)

	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}

func TestServerCancelRequest(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, newTestServer(t))

	err := c.conn.Notify(ctx, "$/cancelRequest", golsp.CancelParams{ID: golsp.ID{Num: 42}})
	require.NoError(t, err)

	// would fail as the document was never opened, but the request is dropped
	var result interface{}
	err = c.conn.Call(ctx, MethodPreview,
		PreviewParams{TextDocument: golsp.TextDocumentIdentifier{URI: "file:///site/blog/x.md"}},
		&result,
		jsonrpc2.PickID(jsonrpc2.ID{Num: 42}))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestServerShutdownAndExit(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	exited := make(chan int, 1)
	s.exit = func(code int) { exited <- code }
	c := newTestClient(t, s)

	require.NoError(t, c.conn.Call(ctx, "shutdown", nil, nil))
	require.NoError(t, c.conn.Notify(ctx, "exit", nil))

	select {
	case code := <-exited:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
}
