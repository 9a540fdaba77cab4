// Package changelog splits a markdown changelog into a preamble and version sections.
//
// The expected layout is the one produced by changesets and similar generators:
//
//	# package-name
//
//	## 1.2.3
//
//	#### 2024-01-15
//
//	### Patch Changes
//
//	- abc1234: Fixed something
//
// Every "## " heading starts a new entry. An optional "#### <date>" line right after it carries the release date.
package changelog

import (
	"regexp"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/KonishchevDmitry/changelog-rss/pkg/parse"
)

const DefaultTitle = "Changelog"

const (
	entryMarker    = "## "
	entrySeparator = "\n" + entryMarker
)

var dateLineRe = regexp.MustCompile(`^####\s+(.+)$`)

type Document struct {
	// Empty when the preamble has no title.
	Title   string
	Entries []Entry
}

type Entry struct {
	Title string
	Date  mo.Option[time.Time]
	Body  string
}

func Parse(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.HasPrefix(text, entryMarker) {
		text = "\n" + text
	}

	sections := strings.Split(text, entrySeparator)

	document := &Document{
		Title:   parseTitle(sections[0]),
		Entries: make([]Entry, 0, len(sections)-1),
	}
	for _, section := range sections[1:] {
		document.Entries = append(document.Entries, parseEntry(section))
	}

	return document
}

func (d *Document) TitleOr(fallback string) string {
	if d.Title != "" {
		return d.Title
	}
	if fallback != "" {
		return fallback
	}
	return DefaultTitle
}

func parseTitle(preamble string) string {
	for _, line := range strings.Split(preamble, "\n") {
		line = parse.TrimText(line)
		if line == "" {
			continue
		}

		if title, ok := strings.CutPrefix(line, "#"); ok && (title == "" || title[0] == ' ' || title[0] == '\t') {
			line = strings.TrimSpace(title)
		}
		return line
	}
	return ""
}

func parseEntry(section string) Entry {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	var entry Entry
	if len(lines) == 0 {
		return entry
	}

	entry.Title = parse.TrimText(strings.TrimLeft(strings.TrimSpace(lines[0]), "#"))

	bodyStart := 1
	if len(lines) > 1 {
		if match := dateLineRe.FindStringSubmatch(strings.TrimSpace(lines[1])); match != nil {
			if date, err := parse.Date(match[1]); err == nil {
				entry.Date = mo.Some(date)
				bodyStart = 2
			}
		}
	}

	entry.Body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return entry
}
