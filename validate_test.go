package folio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanValidateDocument(t *testing.T) {
	parser := NewParser(WithClock(fixedClock))

	tests := []struct {
		name     string
		input    string
		kind     ContentKind
		expected []Problem
	}{
		{
			name:  "complete post",
			input: "---\ntitle: A\ndescription: B\ndate: 2024-01-01\n---\nbody",
		},
		{
			name:  "post without front matter",
			input: "body",
			expected: []Problem{
				{Line: 1, Key: "title", Message: `missing, defaulting to "Untitled"`},
				{Line: 1, Key: "description", Message: "missing, listings will use the excerpt"},
				{Line: 1, Key: "date", Message: "missing, the build time is used"},
			},
		},
		{
			name:  "project with unknown status and no tech",
			input: "---\ntitle: P\ndescription: D\nstatus: abandoned\n---\n",
			kind:  KindProject,
			expected: []Problem{
				{Line: 4, Key: "status", Message: `unknown status "abandoned", expected one of [completed in-progress planned]`},
				{Line: 1, Key: "tech", Message: "project lists no technologies"},
			},
		},
		{
			name:  "project with empty tech list",
			input: "---\ntitle: P\ndescription: D\ntech: []\n---\n",
			kind:  KindProject,
			expected: []Problem{
				{Line: 4, Key: "tech", Message: "project lists no technologies"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.ParseMarkdownDoc(strings.NewReader(tt.input), MetaData{Source: "doc.md", Kind: tt.kind})
			require.NoError(t, err)
			require.Equal(t, tt.expected, doc.Validate())
		})
	}
}
