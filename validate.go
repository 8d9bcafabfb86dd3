package folio

import (
	"fmt"
	"slices"
)

var projectStatuses = []string{StatusCompleted, StatusInProgress, StatusPlanned}

// Problem is a non fatal issue with a document's front matter
type Problem struct {
	// 1-based source line of the offending key, or of the opening
	// delimiter when the key is missing
	Line    int
	Key     string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s: %s", p.Line, p.Key, p.Message)
}

// Validate reports front matter that is missing or likely wrong. The
// document still renders with defaults for every problem listed.
func (d *Document) Validate() []Problem {
	var problems []Problem

	missing := func(key, message string) {
		if _, ok := d.keyLines[key]; !ok {
			problems = append(problems, Problem{Line: 1, Key: key, Message: message})
		}
	}

	missing("title", fmt.Sprintf("missing, defaulting to %q", DefaultTitle))
	missing("description", "missing, listings will use the excerpt")

	switch d.Metadata.Kind {
	case KindPost:
		missing("date", "missing, the build time is used")

	case KindProject:
		if line, ok := d.keyLines["status"]; ok && !slices.Contains(projectStatuses, d.FrontMatter.Status) {
			problems = append(problems, Problem{
				Line:    line,
				Key:     "status",
				Message: fmt.Sprintf("unknown status %q, expected one of %v", d.FrontMatter.Status, projectStatuses),
			})
		}
		if len(d.FrontMatter.Tech) == 0 {
			line, ok := d.keyLines["tech"]
			if !ok {
				line = 1
			}
			problems = append(problems, Problem{Line: line, Key: "tech", Message: "project lists no technologies"})
		}
	}

	return problems
}
