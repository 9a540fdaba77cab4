package scraper

import (
	"fmt"

	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
)

type Registry struct {
	scrapers map[string]*Scraper
	metrics
}

func NewRegistry() *Registry {
	return &Registry{
		scrapers: make(map[string]*Scraper),
		metrics:  makeMetrics(),
	}
}

func (r *Registry) Add(feed feed.Feed) (*Scraper, error) {
	name := feed.Name()
	if _, ok := r.scrapers[name]; ok {
		return nil, fmt.Errorf("%q feed is already registered", name)
	}

	scraper := newScraper(feed, &r.metrics)
	r.scrapers[name] = scraper

	return scraper, nil
}
