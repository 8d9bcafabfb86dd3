package content

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/jwtly10/folio"
)

const (
	BlogDir      = "blog"
	ProjectsDir  = "projects"
	fileExt      = ".md"
	DefaultLimit = 1000
)

// Library holds every post and project below a content root
type Library struct {
	root     string
	posts    []*folio.Document
	projects []*folio.Document
}

type LoadOptions struct {
	// MaxFiles caps the number of markdown files read, 0 means DefaultLimit
	MaxFiles int
	// Parser defaults to folio.NewParser()
	Parser *folio.Parser
}

// KindOf infers the content kind of a file from its parent directory
func KindOf(path string) folio.ContentKind {
	if filepath.Base(filepath.Dir(path)) == ProjectsDir {
		return folio.KindProject
	}
	return folio.KindPost
}

// Load reads root/blog and root/projects. Either directory may be missing.
//
// If root holds a .git directory, its .gitignore patterns are honoured.
func Load(root string, opts LoadOptions) (*Library, error) {
	startTime := time.Now()
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultLimit
	}
	if opts.Parser == nil {
		opts.Parser = folio.NewParser()
	}

	lib := &Library{root: root}
	matcher, hasPatterns := loadIgnore(root)

	var files []string
	for _, section := range []string{BlogDir, ProjectsDir} {
		found, err := findFiles(root, section, matcher, hasPatterns, opts.MaxFiles-len(files))
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	var errs []error
	for _, path := range files {
		doc, err := parseFile(opts.Parser, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if doc.Metadata.Kind == folio.KindProject {
			lib.projects = append(lib.projects, doc)
		} else {
			lib.posts = append(lib.posts, doc)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(lib.posts, func(i, j int) bool {
		a, b := lib.posts[i], lib.posts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
	sort.SliceStable(lib.projects, func(i, j int) bool {
		a, b := strings.ToLower(lib.projects[i].FrontMatter.Title), strings.ToLower(lib.projects[j].FrontMatter.Title)
		if a != b {
			return a < b
		}
		return lib.projects[i].Slug < lib.projects[j].Slug
	})

	slog.Debug("loaded content library",
		"root", root,
		"posts", len(lib.posts),
		"projects", len(lib.projects),
		"duration", time.Since(startTime))

	return lib, nil
}

func parseFile(parser *folio.Parser, path string) (*folio.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := parser.ParseMarkdownDoc(f, folio.MetaData{Source: path, Kind: KindOf(path)})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func loadIgnore(root string) (gitignore.Matcher, bool) {
	var patterns []gitignore.Pattern

	// If .git exists, set up gitignore patterns
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		patterns = append(patterns, gitignore.ParsePattern(".git/", nil))

		if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
			for _, p := range strings.Split(string(data), "\n") {
				if p = strings.TrimSpace(p); p != "" && !strings.HasPrefix(p, "#") {
					patterns = append(patterns, gitignore.ParsePattern(p, nil))
				}
			}
		}
	}

	return gitignore.NewMatcher(patterns), len(patterns) > 0
}

// findFiles returns the markdown files below root/section, at most limit of them
func findFiles(root, section string, matcher gitignore.Matcher, hasPatterns bool, limit int) ([]string, error) {
	dir := filepath.Join(root, section)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Debug("content section missing", "dir", dir)
		return nil, nil
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if hasPatterns && matcher.Match(strings.Split(relPath, string(os.PathSeparator)), info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// only direct children of the section are content
		if info.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(path, fileExt) {
			if len(files) >= limit {
				return fmt.Errorf("max files limit reached (%d)", limit)
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	return files, nil
}

// Root is the directory the library was loaded from
func (l *Library) Root() string {
	return l.root
}

// Posts returns every post, newest first
func (l *Library) Posts() []*folio.Document {
	return l.posts
}

// Post finds a post by slug
func (l *Library) Post(slug string) (*folio.Document, bool) {
	return find(l.posts, slug)
}

// PostByDate finds a post by slug, and only if it was published on the
// given zero-padded date
func (l *Library) PostByDate(year, month, day, slug string) (*folio.Document, bool) {
	doc, ok := l.Post(slug)
	if !ok || !doc.MatchesDate(year, month, day) {
		return nil, false
	}
	return doc, true
}

// Projects returns every project sorted by title
func (l *Library) Projects() []*folio.Document {
	return l.projects
}

func (l *Library) Project(slug string) (*folio.Document, bool) {
	return find(l.projects, slug)
}

// All returns posts followed by projects
func (l *Library) All() []*folio.Document {
	all := make([]*folio.Document, 0, len(l.posts)+len(l.projects))
	all = append(all, l.posts...)
	return append(all, l.projects...)
}

func find(docs []*folio.Document, slug string) (*folio.Document, bool) {
	for _, d := range docs {
		if d.Slug == slug {
			return d, true
		}
	}
	return nil, false
}
