package test

import (
	"bytes"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"
)

// Feed parses the generated document with an independent RSS parser and checks the properties every generated feed
// must hold.
func Feed(t *testing.T, data []byte) *gofeed.Feed {
	t.Helper()

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, "rss", feed.FeedType)
	require.Equal(t, "2.0", feed.FeedVersion)
	require.NotEmpty(t, feed.Title)

	guids := make(map[string]struct{}, len(feed.Items))
	for _, item := range feed.Items {
		require.NotEmpty(t, item.GUID)
		require.NotContains(t, guids, item.GUID)
		guids[item.GUID] = struct{}{}
	}

	return feed
}
