package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/changelog-rss/internal/util"
	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
	"github.com/KonishchevDmitry/changelog-rss/pkg/fetch"
	"github.com/KonishchevDmitry/changelog-rss/pkg/rss"
)

const errorMessage = "Error generating RSS feed"

// Scraper generates the feed on every request: nothing is shared or cached between requests.
type Scraper struct {
	feed    feed.Feed
	metrics observers
}

func newScraper(feed feed.Feed, metrics *metrics) *Scraper {
	return &Scraper{
		feed:    feed,
		metrics: metrics.observers(feed.Name()),
	}
}

func (s *Scraper) Feed() feed.Feed {
	return s.feed
}

// Scrape never returns a partially generated feed: any failure results in a generic error response.
func (s *Scraper) Scrape(ctx context.Context, request feed.Request) Result {
	ctx = fetch.WithContext(ctx, s.metrics.fetchDuration)
	logging.L(ctx).Debugf("Generating %q feed...", s.feed.Name())

	var panicErr error
	startTime := time.Now()
	feed, err := func() (*rss.Feed, error) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				panicErr = fmt.Errorf("feed generator has panicked: %v\n%s", err, bytes.TrimRight(stack, "\n"))
			}
		}()
		return s.feed.Get(ctx, request)
	}()
	s.metrics.scrapeDuration.Observe(time.Since(startTime).Seconds())

	if panicErr != nil {
		logging.L(ctx).Errorf("Failed to generate %q feed: %s", s.feed.Name(), panicErr)
		s.metrics.feedStatus.WithLabelValues(feedStatusPanic).Inc()
		return makeErrorResult()
	} else if util.IsTemporaryError(err) {
		logging.L(ctx).Warnf("Failed to generate %q feed: %s.", s.feed.Name(), err)
		s.metrics.feedStatus.WithLabelValues(feedStatusUnavailable).Inc()
		return makeErrorResult()
	} else if err != nil {
		logging.L(ctx).Errorf("Failed to generate %q feed: %s.", s.feed.Name(), err)
		s.metrics.feedStatus.WithLabelValues(feedStatusError).Inc()
		return makeErrorResult()
	}

	data, err := rss.Generate(feed)
	if err != nil {
		logging.L(ctx).Errorf("Failed to render %q RSS feed: %s.", s.feed.Name(), err)
		s.metrics.feedStatus.WithLabelValues(feedStatusError).Inc()
		return makeErrorResult()
	}

	logging.L(ctx).Debugf("%q feed has been generated: %d items.", s.feed.Name(), len(feed.Items))
	s.metrics.feedStatus.WithLabelValues(feedStatusSuccess).Inc()
	s.metrics.feedItems.Set(float64(len(feed.Items)))
	s.metrics.feedTime.SetToCurrentTime()

	return makeResult(http.StatusOK, rss.ContentType, data)
}

type Result struct {
	HTTPStatus  int
	ContentType string
	Data        []byte
}

func makeResult(status int, contentType string, data []byte) Result {
	return Result{
		HTTPStatus:  status,
		ContentType: contentType,
		Data:        data,
	}
}

func makeErrorResult() Result {
	return makeResult(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(errorMessage))
}

func (r Result) OK() bool {
	return r.HTTPStatus == http.StatusOK
}

func (r Result) Write(ctx context.Context, writer http.ResponseWriter) {
	header := writer.Header()
	header.Set("Content-Type", r.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(r.Data)))
	writer.WriteHeader(r.HTTPStatus)

	if _, err := writer.Write(r.Data); err != nil {
		logging.L(ctx).Debugf("Failed to write the response: %s.", err)
	}
}
