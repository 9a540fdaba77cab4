package feed

import (
	"context"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/changelog-rss/pkg/fetch"
	"github.com/KonishchevDmitry/changelog-rss/pkg/rss"
)

// Changelog is a feed generated from a remote changelog document.
type Changelog struct {
	profile Profile
	options []fetch.Option
}

var _ Feed = &Changelog{}

func New(profile Profile, options ...fetch.Option) *Changelog {
	return &Changelog{
		profile: profile,
		options: options,
	}
}

func (c *Changelog) Name() string {
	return c.profile.Name
}

func (c *Changelog) Path() string {
	return c.profile.Path
}

func (c *Changelog) Parametrized() bool {
	return c.profile.Parametrized()
}

func (c *Changelog) CORS() bool {
	return c.profile.CORS
}

func (c *Changelog) Get(ctx context.Context, request Request) (*rss.Feed, error) {
	sourceURL, err := c.profile.SourceURL(request.Repo)
	if err != nil {
		return nil, err
	}

	text, err := fetch.Text(ctx, sourceURL, c.options...)
	if err != nil {
		return nil, err
	}

	feed, err := c.profile.Assemble(text, request)
	if err != nil {
		return nil, err
	}

	logging.L(ctx).Debugf("%s: %d entries.", sourceURL, len(feed.Items))
	return feed, nil
}
