package lsp

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/jwtly10/folio"
	"github.com/sourcegraph/go-lsp"
)

const diagnosticSource = "folio"

// Diagnostics converts the front matter problems of doc into warnings
// spanning the offending source line of text
func Diagnostics(doc *folio.Document, text string) []lsp.Diagnostic {
	lines := strings.Split(text, "\n")

	diagnostics := []lsp.Diagnostic{}
	for _, p := range doc.Validate() {
		diagnostics = append(diagnostics, lsp.Diagnostic{
			Range:    lineRange(lines, p.Line),
			Severity: lsp.Warning,
			Code:     p.Key,
			Source:   diagnosticSource,
			Message:  fmt.Sprintf("%s: %s", p.Key, p.Message),
		})
	}
	return diagnostics
}

// FrontMatterDiagnostic reports a document that failed to load as an error
func FrontMatterDiagnostic(err *folio.FrontMatterError, text string) lsp.Diagnostic {
	return lsp.Diagnostic{
		Range:    lineRange(strings.Split(text, "\n"), err.Line),
		Severity: lsp.Error,
		Code:     "front-matter",
		Source:   diagnosticSource,
		Message:  err.Err.Error(),
	}
}

// lineRange covers the whole of the 1-based line, measured in UTF-16 code
// units as the protocol requires
func lineRange(lines []string, line int) lsp.Range {
	idx := line - 1
	if idx < 0 {
		idx = 0
	}

	width := 0
	if idx < len(lines) {
		width = len(utf16.Encode([]rune(strings.TrimSuffix(lines[idx], "\r"))))
	}

	return lsp.Range{
		Start: lsp.Position{Line: idx, Character: 0},
		End:   lsp.Position{Line: idx, Character: width},
	}
}
