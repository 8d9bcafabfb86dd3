package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwtly10/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func slugs(docs []*folio.Document) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.Slug)
	}
	return out
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "blog/older.md", "---\ntitle: Older\ndate: 2023-05-01\n---\nold")
	writeFile(t, root, "blog/newer.md", "---\ntitle: Newer\ndate: 2024-02-10\n---\nnew")
	writeFile(t, root, "blog/notes.txt", "not markdown")
	writeFile(t, root, "blog/drafts/wip.md", "---\ntitle: WIP\n---\n")
	writeFile(t, root, "projects/zeta.md", "---\ntitle: alpha\ntech: [Go]\n---\n")
	writeFile(t, root, "projects/beta.md", "---\ntitle: Beta\ntech: [Go]\nstatus: planned\n---\n")
	return root
}

func TestCanLoadLibrary(t *testing.T) {
	lib, err := Load(newSite(t), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"newer", "older"}, slugs(lib.Posts()))
	assert.Equal(t, []string{"zeta", "beta"}, slugs(lib.Projects()))
	assert.Equal(t, []string{"newer", "older", "zeta", "beta"}, slugs(lib.All()))

	beta, ok := lib.Project("beta")
	require.True(t, ok)
	assert.Equal(t, folio.KindProject, beta.Metadata.Kind)
	assert.Equal(t, folio.StatusPlanned, beta.FrontMatter.Status)

	zeta, ok := lib.Project("zeta")
	require.True(t, ok)
	assert.Equal(t, folio.StatusCompleted, zeta.FrontMatter.Status)

	_, ok = lib.Post("wip")
	assert.False(t, ok, "nested directories are not content")
}

func TestPostByDate(t *testing.T) {
	lib, err := Load(newSite(t), LoadOptions{})
	require.NoError(t, err)

	tests := []struct {
		name             string
		year, month, day string
		slug             string
		want             bool
	}{
		{name: "matching date", year: "2024", month: "02", day: "10", slug: "newer", want: true},
		{name: "wrong day", year: "2024", month: "02", day: "11", slug: "newer"},
		{name: "unpadded month", year: "2024", month: "2", day: "10", slug: "newer"},
		{name: "unknown slug", year: "2024", month: "02", day: "10", slug: "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := lib.PostByDate(tt.year, tt.month, tt.day, tt.slug)
			require.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), doc.Date)
			}
		})
	}
}

func TestLoadHonoursGitignore(t *testing.T) {
	root := newSite(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	writeFile(t, root, ".gitignore", "# drafts\nblog/older.md\n")

	lib, err := Load(root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"newer"}, slugs(lib.Posts()))
}

func TestLoadMissingSections(t *testing.T) {
	lib, err := Load(t.TempDir(), LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, lib.Posts())
	assert.Empty(t, lib.Projects())
}

func TestLoadFileLimit(t *testing.T) {
	_, err := Load(newSite(t), LoadOptions{MaxFiles: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max files limit reached")
}

func TestLoadReportsBrokenFrontMatter(t *testing.T) {
	root := newSite(t)
	writeFile(t, root, "blog/broken.md", "---\ndate: someday\n---\n")

	_, err := Load(root, LoadOptions{})
	require.Error(t, err)

	var fmErr *folio.FrontMatterError
	require.ErrorAs(t, err, &fmErr)
	assert.Equal(t, 2, fmErr.Line)
	assert.Contains(t, err.Error(), "broken.md")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, folio.KindProject, KindOf(filepath.Join("content", "projects", "x.md")))
	assert.Equal(t, folio.KindPost, KindOf(filepath.Join("content", "blog", "x.md")))
	assert.Equal(t, folio.KindPost, KindOf("x.md"))
}
