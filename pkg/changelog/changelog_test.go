package changelog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/mo"
	"github.com/stretchr/testify/require"
)

var changesetsChangelog = heredoc.Doc(`
	# @flatfile/plugin-autocast

	## 0.7.1

	#### 2024-01-15

	### Patch Changes

	- 1a2b3c4: Fixed casting of empty values
	  - Nested detail

	## 0.7.0

	### Minor Changes

	- Added **date** casting

	## 0.6.0
`)

func TestParse(t *testing.T) {
	t.Parallel()

	document := Parse(changesetsChangelog)
	require.Equal(t, &Document{
		Title: "@flatfile/plugin-autocast",
		Entries: []Entry{{
			Title: "0.7.1",
			Date:  mo.Some(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
			Body: heredoc.Doc(`
				### Patch Changes
				- 1a2b3c4: Fixed casting of empty values
				  - Nested detail`),
		}, {
			Title: "0.7.0",
			Body: heredoc.Doc(`
				### Minor Changes
				- Added **date** casting`),
		}, {
			Title: "0.6.0",
		}},
	}, document)
}

func TestParseEntryCountAndOrder(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 1, 2, 10} {
		var builder strings.Builder
		builder.WriteString("# Title\n")
		for index := 0; index < count; index++ {
			_, _ = fmt.Fprintf(&builder, "\n## %d.0.0\n\n- Change %d\n", index, index)
		}

		document := Parse(builder.String())
		require.Len(t, document.Entries, count)
		for index, entry := range document.Entries {
			require.Equal(t, fmt.Sprintf("%d.0.0", index), entry.Title)
			require.Equal(t, fmt.Sprintf("- Change %d", index), entry.Body)
		}
	}
}

func TestParseInvalidDate(t *testing.T) {
	t.Parallel()

	document := Parse(heredoc.Doc(`
		# Title
		## 1.0.0
		#### someday
		- Change
	`))

	require.Equal(t, []Entry{{
		Title: "1.0.0",
		Body:  "#### someday\n- Change",
	}}, document.Entries)
}

func TestParseDateOnlyOnSecondLine(t *testing.T) {
	t.Parallel()

	document := Parse(heredoc.Doc(`
		# Title
		## 1.0.0
		- Change
		#### 2024-01-15
	`))

	require.Equal(t, []Entry{{
		Title: "1.0.0",
		Body:  "- Change\n#### 2024-01-15",
	}}, document.Entries)
}

func TestParseWithoutPreamble(t *testing.T) {
	t.Parallel()

	document := Parse("## 1.0.0\n- Change\n## 0.9.0\n")
	require.Empty(t, document.Title)
	require.Equal(t, DefaultTitle, document.TitleOr(""))
	require.Equal(t, "Fallback", document.TitleOr("Fallback"))
	require.Equal(t, []Entry{
		{Title: "1.0.0", Body: "- Change"},
		{Title: "0.9.0"},
	}, document.Entries)
}

func TestParseWindowsLineEndings(t *testing.T) {
	t.Parallel()

	document := Parse("# Title\r\n\r\n## 1.0.0\r\n#### 2024-01-15\r\n- Change\r\n")
	require.Equal(t, "Title", document.Title)
	require.Equal(t, []Entry{{
		Title: "1.0.0",
		Date:  mo.Some(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		Body:  "- Change",
	}}, document.Entries)
}

func TestParseTitle(t *testing.T) {
	t.Parallel()

	for text, title := range map[string]string{
		"":                               "",
		"\n\n":                           "",
		"#":                              "",
		"#hashtag":                       "#hashtag",
		"##Not a title":                  "##Not a title",
		"# ":                             "",
		"# Changelog\nText":              "Changelog",
		"\n  #  Spaced  \n":              "Spaced",
		"Plain title\n# Other":           "Plain title",
		"# Title\n\n## 1.0.0\n":          "Title",
		"#\u00a0Non-breaking\u00a0space": "Non-breaking space",
	} {
		require.Equal(t, title, Parse(text).Title, "%q", text)
	}
}

func TestParseHeadingMarkersInTitle(t *testing.T) {
	t.Parallel()

	document := Parse("# Title\n## ## 1.0.0\n")
	require.Equal(t, []Entry{{Title: "1.0.0"}}, document.Entries)
}
