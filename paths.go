package folio

import (
	"path/filepath"
	"time"
)

const pageFile = "index.html"

// DateSlug formats t as the YYYY/MM/DD segment used in post URLs
func DateSlug(t time.Time) string {
	return t.Format("2006/01/02")
}

// URLPath is the site path a document is served from, with a trailing slash
func URLPath(doc *Document) string {
	switch doc.Metadata.Kind {
	case KindProject:
		return "/projects/" + doc.Slug + "/"
	default:
		return "/blog/" + doc.DateSlug() + "/" + doc.Slug + "/"
	}
}

// ResolveOutputPath determines where the page for doc is written below outDir
func ResolveOutputPath(outDir string, doc *Document) string {
	return filepath.Join(outDir, filepath.FromSlash(URLPath(doc)), pageFile)
}

// SectionIndexPath is the listing page of a content kind below outDir
func SectionIndexPath(outDir string, kind ContentKind) string {
	section := "blog"
	if kind == KindProject {
		section = "projects"
	}
	return filepath.Join(outDir, section, pageFile)
}

func MustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}
