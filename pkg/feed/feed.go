package feed

import (
	"context"
	"net/url"

	"github.com/samber/mo"

	"github.com/KonishchevDmitry/changelog-rss/pkg/rss"
)

type Feed interface {
	Name() string
	Path() string
	// Parametrized feeds require the repo parameter.
	Parametrized() bool
	CORS() bool
	Get(ctx context.Context, request Request) (*rss.Feed, error)
}

// Request carries the request-derived values the feed links are built from.
type Request struct {
	BaseURL *url.URL
	Repo    mo.Option[string]
}
