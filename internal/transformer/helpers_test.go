package transformer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDir struct {
	path string
	t    *testing.T
}

func newTestDir(t *testing.T) *testDir {
	t.Helper()
	return &testDir{
		path: t.TempDir(),
		t:    t,
	}
}

func (td *testDir) createFile(rel, content string) string {
	td.t.Helper()

	path := filepath.Join(td.path, filepath.FromSlash(rel))
	require.NoError(td.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(td.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (td *testDir) read(rel string) string {
	td.t.Helper()

	b, err := os.ReadFile(filepath.Join(td.path, filepath.FromSlash(rel)))
	require.NoError(td.t, err)
	return string(b)
}

// copyInput copies testdata/<name>/input.md into the test dir under rel
func (td *testDir) copyInput(name, rel string) string {
	td.t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", name, "input.md"))
	require.NoError(td.t, err)
	return td.createFile(rel, string(content))
}
