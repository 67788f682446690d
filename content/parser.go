// Package content parses raw post documents into structured posts.
//
// A post document is a YAML front-matter block delimited by "---" followed
// by a markdown body. The parser is pure: no I/O, and identical input
// always yields identical output, which the caching layer relies on.
package content

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/aacecandev/blog/interfaces"
)

// dateLayouts are the accepted front-matter date formats, most common first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

type matterEnvelope struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Parse splits a raw document into front-matter metadata and a markdown
// body. It fails with an error wrapping interfaces.ErrMalformedPost when
// the front-matter block is absent, the title is missing or empty, or the
// date cannot be interpreted as a calendar date. A missing tags field
// yields an empty set; duplicate tags are collapsed.
func Parse(raw []byte, slug interfaces.Slug) (interfaces.PostDetail, error) {
	var matter matterEnvelope

	body, err := frontmatter.MustParse(bytes.NewReader(raw), &matter)
	if err != nil {
		return interfaces.PostDetail{}, fmt.Errorf("%w: %s: %v", interfaces.ErrMalformedPost, slug, err)
	}

	if matter.Title == "" {
		return interfaces.PostDetail{}, fmt.Errorf("%w: %s: missing title", interfaces.ErrMalformedPost, slug)
	}

	date, err := parseDate(matter.Date)
	if err != nil {
		return interfaces.PostDetail{}, fmt.Errorf("%w: %s: %v", interfaces.ErrMalformedPost, slug, err)
	}

	return interfaces.PostDetail{
		Meta: interfaces.PostMeta{
			Slug:        slug,
			Title:       matter.Title,
			Date:        date,
			Description: matter.Description,
			Tags:        dedupeTags(matter.Tags),
		},
		Body: string(body),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// dedupeTags collapses duplicates while keeping first-seen order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
