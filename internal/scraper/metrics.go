package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	feedStatusSuccess     = "success"
	feedStatusUnavailable = "unavailable"
	feedStatusError       = "error"
	feedStatusPanic       = "panic"
)

type metrics struct {
	startTime prometheus.Gauge

	feedTime       *prometheus.GaugeVec
	feedItems      *prometheus.GaugeVec
	feedStatus     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	scrapeDuration *prometheus.HistogramVec
}

func makeMetrics() metrics {
	startTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "changelog_rss_start_time",
		Help: "Daemon start time",
	})
	startTime.SetToCurrentTime()

	return metrics{
		startTime: startTime,

		feedTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "changelog_rss_feed_time",
			Help: "Time of the last successfully generated feed",
		}, []string{"name"}),

		feedItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "changelog_rss_feed_items",
			Help: "Number of items in the last successfully generated feed",
		}, []string{"name"}),

		feedStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "changelog_rss_feed_status",
			Help: "Feed generation status",
		}, []string{"name", "status"}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "changelog_rss_fetch_duration",
			Help:    "Changelog fetch duration",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"name"}),

		scrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "changelog_rss_scrape_duration",
			Help:    "Feed generation duration",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"name"}),
	}
}

type observers struct {
	feedTime       prometheus.Gauge
	feedItems      prometheus.Gauge
	feedStatus     *prometheus.CounterVec
	fetchDuration  prometheus.Observer
	scrapeDuration prometheus.Observer
}

func (m *metrics) observers(name string) observers {
	return observers{
		feedTime:       m.feedTime.WithLabelValues(name),
		feedItems:      m.feedItems.WithLabelValues(name),
		feedStatus:     m.feedStatus.MustCurryWith(prometheus.Labels{"name": name}),
		fetchDuration:  m.fetchDuration.WithLabelValues(name),
		scrapeDuration: m.scrapeDuration.WithLabelValues(name),
	}
}

var _ prometheus.Collector = &metrics{}

func (m *metrics) Describe(descs chan<- *prometheus.Desc) {
	m.startTime.Describe(descs)
	m.feedTime.Describe(descs)
	m.feedItems.Describe(descs)
	m.feedStatus.Describe(descs)
	m.fetchDuration.Describe(descs)
	m.scrapeDuration.Describe(descs)
}

func (m *metrics) Collect(metrics chan<- prometheus.Metric) {
	m.startTime.Collect(metrics)
	m.feedTime.Collect(metrics)
	m.feedItems.Collect(metrics)
	m.feedStatus.Collect(metrics)
	m.fetchDuration.Collect(metrics)
	m.scrapeDuration.Collect(metrics)
}
