package feed

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/KonishchevDmitry/changelog-rss/pkg/changelog"
	"github.com/KonishchevDmitry/changelog-rss/pkg/markup"
	"github.com/KonishchevDmitry/changelog-rss/pkg/query"
	"github.com/KonishchevDmitry/changelog-rss/pkg/rss"
)

const (
	generator        = "github.com/KonishchevDmitry/changelog-rss"
	defaultImageType = "image/jpeg"
)

// Assemble converts the changelog text into an RSS feed. Every changelog entry produces exactly one item, in document
// order.
func (p *Profile) Assemble(text string, request Request) (*rss.Feed, error) {
	document := changelog.Parse(text)
	title := document.TitleOr(p.DefaultTitle)
	feedURL := p.feedURL(request)

	feed := rss.NewFeed(title, p.ChannelLink)
	feed.SetSelfLink(feedURL)
	feed.Description = strings.ReplaceAll(p.Description, titlePlaceholder, title)
	feed.Generator = generator

	rich := p.Format == RichFormat && p.Image != nil
	if rich {
		feed.Image = &rss.Image{
			URL:   p.Image.URL,
			Title: title,
			Link:  p.Image.Link,
		}
	}

	var sourceURL *url.URL
	if p.ResolveLinks {
		var err error
		if sourceURL, err = p.SourceURL(request.Repo); err != nil {
			return nil, err
		}
	}

	guids := make(map[string]struct{}, len(document.Entries))

	for index, entry := range document.Entries {
		description := markup.Convert(entry.Body, p.Headings)
		if sourceURL != nil {
			var err error
			if description, err = query.ResolveLinks(description, sourceURL); err != nil {
				return nil, fmt.Errorf("failed to resolve links of %q entry: %w", entry.Title, err)
			}
		}

		guid := p.guid(request, index, entry.Title)
		for _, ok := guids[guid]; ok; _, ok = guids[guid] {
			guid += "_" + strconv.Itoa(index)
		}
		guids[guid] = struct{}{}

		item := &rss.Item{
			Title:       entry.Title,
			Link:        feedURL,
			GUID:        rss.MakeGUID(guid, false),
			Description: rss.Description{HTML: description},
		}
		if date, ok := entry.Date.Get(); ok {
			item.Date = rss.Date{Time: date}
		}

		if rich {
			item.Title = "Version " + entry.Title
			item.Enclosure = []*rss.Enclosure{{
				URL:  p.Image.URL,
				Type: imageType(p.Image.URL),
			}}
		}

		feed.AddItem(item)
	}

	return feed, nil
}

// feedURL returns the public URL of the feed itself.
func (p *Profile) feedURL(request Request) string {
	feedURL := strings.TrimRight(request.BaseURL.String(), "/") + p.Path
	if repo, ok := request.Repo.Get(); ok && p.Parametrized() {
		feedURL += "?repo=" + url.QueryEscape(repo)
	}
	return feedURL
}

func (p *Profile) guid(request Request, index int, title string) string {
	if repo, ok := request.Repo.Get(); ok && p.Parametrized() {
		return repo + "_" + title
	}
	return strings.TrimRight(request.BaseURL.String(), "/") + p.Path + "/" + strconv.Itoa(index)
}

func imageType(imageURL string) string {
	if parsed, err := url.Parse(imageURL); err == nil {
		if mediaType := mime.TypeByExtension(path.Ext(parsed.Path)); strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}
	return defaultImageType
}
