// Package markup converts the small markdown subset used in changelog entries into HTML fragments.
package markup

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type HeadingMode int

const (
	// StripH1 drops top-level headings: inside an entry body they are generator noise.
	StripH1 HeadingMode = iota
	// RenderH1 renders top-level headings as <h1>.
	RenderH1
)

func (m HeadingMode) String() string {
	switch m {
	case StripH1:
		return "strip"
	case RenderH1:
		return "render"
	default:
		return fmt.Sprintf("HeadingMode(%d)", int(m))
	}
}

func (m HeadingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *HeadingMode) UnmarshalText(text []byte) error {
	switch value := string(text); value {
	case "strip":
		*m = StripH1
	case "render":
		*m = RenderH1
	default:
		return fmt.Errorf("invalid heading mode: %q", value)
	}
	return nil
}

const updatedDependencies = "Updated dependencies"

type substitution struct {
	re          *regexp.Regexp
	replacement string
}

// The order matters: images must be converted before links, bold before italic.
var (
	commitHash = substitution{regexp.MustCompile(`(?m)\b[0-9a-f]{7}:\s`), ""}
	heading3   = substitution{regexp.MustCompile(`(?m)^### (.*)$`), "<strong>${1}: </strong>\n"}
	heading2   = substitution{regexp.MustCompile(`(?m)^## (.*)$`), "<strong>${1}: </strong>\n"}
	strippedH1 = substitution{regexp.MustCompile(`(?m)^# (.*)$`), ""}
	renderedH1 = substitution{regexp.MustCompile(`(?m)^# (.*)$`), "<h1>${1}</h1>"}
	quote      = substitution{regexp.MustCompile(`(?m)^> (.*)$`), "<blockquote>${1}</blockquote>"}
	bold       = substitution{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>${1}</strong>"}
	italic     = substitution{regexp.MustCompile(`\*(.+?)\*`), "<em>${1}</em>"}
	image      = substitution{regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`), "<img alt='${1}' src='${2}'>"}
	link       = substitution{regexp.MustCompile(`\[(.*?)\]\((.*?)\)`), "<a href='${2}'>${1}</a>"}
)

func pipeline(mode HeadingMode) []substitution {
	h1 := strippedH1
	if mode == RenderH1 {
		h1 = renderedH1
	}
	return []substitution{commitHash, heading3, heading2, h1, quote, bold, italic, image, link}
}

// Convert never fails: text that matches no pattern is passed through unchanged.
func Convert(text string, mode HeadingMode) string {
	for _, s := range pipeline(mode) {
		text = s.re.ReplaceAllString(text, s.replacement)
	}

	lines := strings.Split(text, "\n")
	formatLists(lines)
	return strings.Join(lines, "\n")
}

const (
	listStart = "<ul>"
	listEnd   = "</ul>"
)

// formatLists is line-local: it doesn't build a list tree, nesting is approximated by closing the list level+1
// times.
func formatLists(lines []string) {
	var (
		inList bool
		level  int
	)

	closeList := func(index int) {
		lines[index] += strings.Repeat(listEnd, level+1)
		inList, level = false, 0
	}

	for index, line := range lines {
		trimmed := strings.TrimSpace(line)

		item, ok := strings.CutPrefix(trimmed, "- ")
		if !ok {
			if inList {
				closeList(index - 1)
			}
			continue
		}

		switch {
		case strings.Contains(trimmed, updatedDependencies):
			if inList {
				closeList(index - 1)
			}
			lines[index] = "<strong>" + updatedDependencies + "</strong>"

		case !inList:
			inList, level = true, indentLevel(line)
			lines[index] = listStart + "<li>" + item + "</li>"

		default:
			lines[index] = "<li>" + item + "</li>"
		}
	}

	if inList {
		closeList(len(lines) - 1)
	}
}

// Two spaces per level.
func indentLevel(line string) int {
	return (len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))) / 2
}
