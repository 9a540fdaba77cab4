package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/ggicci/httpin"
	"github.com/ggicci/httpin/integration"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/mo"

	"github.com/KonishchevDmitry/changelog-rss/internal/scraper"
	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
)

func init() {
	integration.UseGorillaMux("path", mux.Vars)
}

const (
	missingRepoMessage = "Missing 'repo' parameter"
	invalidRepoMessage = "Invalid 'repo' parameter"
)

const shutdownTimeout = 10 * time.Second

var defaultBaseURL = &url.URL{Scheme: "http", Host: "localhost:3000"}

type repoParams struct {
	Repo string `in:"query=repo"`
}

type Server struct {
	router   *mux.Router
	scrapers *scraper.Registry
	baseURL  mo.Option[*url.URL]
	paths    []string
}

// New creates a server. Feed self links are built from baseURL when it's set and from the request otherwise.
func New(baseURL mo.Option[*url.URL]) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		scrapers: scraper.NewRegistry(),
		baseURL:  baseURL,
	}
	s.register("/", func(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
		http.NotFound(writer, request)
	})
	return s
}

func (s *Server) Register(generator feed.Feed) error {
	scraper, err := s.scrapers.Add(generator)
	if err != nil {
		return err
	}

	s.register(generator.Path(), func(ctx context.Context, writer http.ResponseWriter, request *http.Request) {
		feedRequest := feed.Request{BaseURL: s.getBaseURL(request)}

		if generator.Parametrized() {
			params, err := httpin.Decode[repoParams](request)
			if err != nil {
				logging.L(ctx).Warnf("Invalid feed parameters: %s.", err)
				writeError(ctx, writer, http.StatusBadRequest, invalidRepoMessage)
				return
			}

			if params.Repo == "" {
				writeError(ctx, writer, http.StatusBadRequest, missingRepoMessage)
				return
			} else if err := feed.ValidateRepo(params.Repo); err != nil {
				logging.L(ctx).Debugf("Invalid repo %q: %s.", params.Repo, err)
				writeError(ctx, writer, http.StatusBadRequest, invalidRepoMessage)
				return
			}

			feedRequest.Repo = mo.Some(params.Repo)
		}

		result := scraper.Scrape(ctx, feedRequest)
		if result.OK() && generator.CORS() {
			writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		result.Write(ctx, writer)
	})
	s.paths = append(s.paths, generator.Path())

	return nil
}

func (s *Server) Serve(ctx context.Context, feedsAddr string, metricsAddr string) error {
	var waitGroup sync.WaitGroup
	defer waitGroup.Wait()

	if err := prometheus.DefaultRegisterer.Register(s.scrapers); err != nil {
		return err
	}
	defer prometheus.DefaultRegisterer.Unregister(s.scrapers)

	//nolint:gosec
	feedsServer := http.Server{
		Addr:     feedsAddr,
		Handler:  s.router,
		ErrorLog: log.New(newHTTPLogger(logging.L(ctx)), "Feeds HTTP server: ", 0),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	defer shutdown(ctx, &feedsServer, "feeds")

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: newPrometheusLogger(logging.L(ctx)),
	}))

	//nolint:gosec
	metricsServer := http.Server{
		Addr:     metricsAddr,
		Handler:  metricsMux,
		ErrorLog: log.New(newHTTPLogger(logging.L(ctx)), "Metrics HTTP server: ", 0),
	}
	defer shutdown(ctx, &metricsServer, "metrics")

	logging.L(ctx).Infof("Listening on %s (feeds) and %s (metrics)...", feedsAddr, metricsAddr)

	feedsSocket, err := net.Listen("tcp", feedsAddr)
	if err != nil {
		return err
	}
	closeFeedsSocket := true
	defer func() {
		if closeFeedsSocket {
			if err := feedsSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	metricsSocket, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		return err
	}
	closeMetricsSocket := true
	defer func() {
		if closeMetricsSocket {
			if err := metricsSocket.Close(); err != nil {
				logging.L(ctx).Errorf("Failed to close a socket: %s.", err)
			}
		}
	}()

	serverCrashed := make(chan error, 2)

	closeFeedsSocket = false
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		if err := feedsServer.Serve(feedsSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("feeds HTTP server has crashed: %w", err)
		}
	}()

	closeMetricsSocket = false
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		if err := metricsServer.Serve(metricsSocket); !errors.Is(err, http.ErrServerClosed) {
			serverCrashed <- fmt.Errorf("metrics HTTP server has crashed: %w", err)
		}
	}()

	publicURL := s.publicURL(feedsSocket.Addr())
	for _, path := range s.paths {
		logging.L(ctx).Infof("RSS feed available at %s%s", publicURL, path)
	}

	select {
	case err := <-serverCrashed:
		return err
	case <-ctx.Done():
		logging.L(ctx).Info("Shutting down...")
		return nil
	}
}

func (s *Server) register(path string, handler func(ctx context.Context, writer http.ResponseWriter, request *http.Request)) {
	s.router.HandleFunc(path, func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		logging.L(ctx).Debugf("%s %s...", request.Method, request.RequestURI)
		handler(ctx, writer, request)
		logging.L(ctx).Debugf("%s %s finished.", request.Method, request.RequestURI)
	}).Methods(http.MethodGet, http.MethodHead)
}

// getBaseURL prefers the configured URL, then the proxy-provided scheme with the Host header.
func (s *Server) getBaseURL(request *http.Request) *url.URL {
	if baseURL, ok := s.baseURL.Get(); ok {
		return baseURL
	}

	host := request.Host
	if host == "" || strings.ContainsAny(host, "/?#@ ") {
		return defaultBaseURL
	}

	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}

	if proto := request.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto, _, _ = strings.Cut(proto, ",")
		switch proto = strings.ToLower(strings.TrimSpace(proto)); proto {
		case "http", "https":
			scheme = proto
		}
	}

	return &url.URL{Scheme: scheme, Host: host}
}

func (s *Server) publicURL(addr net.Addr) string {
	if baseURL, ok := s.baseURL.Get(); ok {
		return strings.TrimRight(baseURL.String(), "/")
	}

	port := defaultBaseURL.Port()
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		port = strconv.Itoa(tcpAddr.Port)
	}

	return "http://" + net.JoinHostPort("localhost", port)
}

func shutdown(ctx context.Context, server *http.Server, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.L(ctx).Errorf("Failed to shutdown %s HTTP server: %s.", name, err)
	}
}

func writeError(ctx context.Context, writer http.ResponseWriter, status int, message string) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(message)); err != nil {
		logging.L(ctx).Debugf("Failed to write the response: %s.", err)
	}
}
