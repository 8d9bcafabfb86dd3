package folio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveOutputPath(t *testing.T) {
	date := time.Date(2024, 3, 7, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		outDir string
		doc    *Document
		want   string
	}{
		{
			name:   "post_nested_by_date",
			outDir: "public",
			doc:    &Document{Metadata: MetaData{Kind: KindPost}, Slug: "hello", Date: date},
			want:   "public/blog/2024/03/07/hello/index.html",
		},
		{
			name:   "project_by_slug",
			outDir: "/srv/site",
			doc:    &Document{Metadata: MetaData{Kind: KindProject}, Slug: "folio", Date: date},
			want:   "/srv/site/projects/folio/index.html",
		},
		{
			name:   "empty_out_dir",
			outDir: "",
			doc:    &Document{Metadata: MetaData{Kind: KindProject}, Slug: "x"},
			want:   "projects/x/index.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOutputPath(tt.outDir, tt.doc)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestURLPath(t *testing.T) {
	post := &Document{Metadata: MetaData{Kind: KindPost}, Slug: "hello", Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "/blog/2023/12/01/hello/", URLPath(post))

	project := &Document{Metadata: MetaData{Kind: KindProject}, Slug: "folio"}
	assert.Equal(t, "/projects/folio/", URLPath(project))
}

func TestSectionIndexPath(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("out/blog/index.html"), SectionIndexPath("out", KindPost))
	assert.Equal(t, filepath.FromSlash("out/projects/index.html"), SectionIndexPath("out", KindProject))
}

func TestDateSlugAndMatchesDate(t *testing.T) {
	doc := &Document{Date: time.Date(2024, 2, 9, 23, 59, 0, 0, time.UTC)}

	assert.Equal(t, "2024/02/09", DateSlug(doc.Date))
	assert.True(t, doc.MatchesDate("2024", "02", "09"))
	assert.False(t, doc.MatchesDate("2024", "2", "9"))
	assert.False(t, doc.MatchesDate("2024", "02", "10"))
}
