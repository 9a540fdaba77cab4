package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MakeNowJust/heredoc"
	"github.com/samber/mo"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
	"github.com/KonishchevDmitry/changelog-rss/pkg/test"
	"github.com/KonishchevDmitry/changelog-rss/pkg/test/testutil"
	"github.com/KonishchevDmitry/changelog-rss/pkg/url"
)

var changelogText = heredoc.Doc(`
	# @flatfile/plugin-autocast

	## 0.7.1

	#### 2024-01-15

	- 1a2b3c4: Fixed casting of empty values

	## 0.7.0

	- Added **date** casting
`)

func newUpstream(t *testing.T) *httptest.Server {
	upstream := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/autocast/CHANGELOG.md", "/Flatfilers/plugins/CHANGELOG.md":
			writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = writer.Write([]byte(changelogText))
		default:
			http.NotFound(writer, request)
		}
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func newServer(t *testing.T, baseURL mo.Option[*url.URL]) *Server {
	upstream := newUpstream(t)

	server := New(baseURL)
	for _, profile := range feed.DefaultProfiles() {
		if profile.Parametrized() {
			profile.Source = upstream.URL + "/Flatfilers/{repo}/CHANGELOG.md"
		} else {
			profile.Source = upstream.URL + "/autocast/CHANGELOG.md"
		}
		require.NoError(t, server.Register(feed.New(profile)))
	}

	return server
}

func serve(t *testing.T, server *Server, target string, modify ...func(request *http.Request)) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil).WithContext(testutil.Context(t))
	for _, modify := range modify {
		modify(request)
	}

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, request)
	return recorder
}

func TestFeeds(t *testing.T) {
	t.Parallel()

	server := newServer(t, mo.None[*url.URL]())

	testCases := []struct {
		target   string
		selfLink string
		title    string
		cors     bool
	}{{
		target:   "/rss-feed",
		selfLink: "http://feeds.example.com/rss-feed",
		title:    "0.7.1",
	}, {
		target:   "/api/feed?repo=plugins",
		selfLink: "http://feeds.example.com/api/feed?repo=plugins",
		title:    "Version 0.7.1",
		cors:     true,
	}, {
		target:   "/api/rss-feed",
		selfLink: "http://feeds.example.com/api/rss-feed",
		title:    "Version 0.7.1",
	}}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.target, func(t *testing.T) {
			t.Parallel()

			response := serve(t, server, "http://feeds.example.com"+testCase.target)
			require.Equal(t, http.StatusOK, response.Code)
			require.Equal(t, "application/rss+xml", response.Header().Get("Content-Type"))
			if testCase.cors {
				require.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))
			} else {
				require.Empty(t, response.Header().Values("Access-Control-Allow-Origin"))
			}

			body := response.Body.String()
			require.Contains(t, body, `<atom:link href="`+testCase.selfLink+`" rel="self" type="application/rss+xml">`)

			parsed := test.Feed(t, response.Body.Bytes())
			require.Equal(t, "@flatfile/plugin-autocast", parsed.Title)
			require.Len(t, parsed.Items, 2)
			require.Equal(t, testCase.title, parsed.Items[0].Title)
		})
	}
}

func TestRepoParameter(t *testing.T) {
	t.Parallel()

	server := newServer(t, mo.None[*url.URL]())

	for target, message := range map[string]string{
		"/api/feed":                 "Missing 'repo' parameter",
		"/api/feed?repo=":           "Missing 'repo' parameter",
		"/api/feed?repo=..":         "Invalid 'repo' parameter",
		"/api/feed?repo=org%2Frepo": "Invalid 'repo' parameter",
	} {
		response := serve(t, server, target)
		require.Equal(t, http.StatusBadRequest, response.Code, target)
		require.Equal(t, message, response.Body.String(), target)
		require.Empty(t, response.Header().Values("Access-Control-Allow-Origin"), target)
	}
}

func TestUpstreamFailure(t *testing.T) {
	t.Parallel()

	server := newServer(t, mo.None[*url.URL]())

	response := serve(t, server, "/api/feed?repo=missing")
	require.Equal(t, http.StatusInternalServerError, response.Code)
	require.Equal(t, "Error generating RSS feed", response.Body.String())
	require.Empty(t, response.Header().Values("Access-Control-Allow-Origin"))
}

func TestUnknownRoutes(t *testing.T) {
	t.Parallel()

	server := newServer(t, mo.None[*url.URL]())

	require.Equal(t, http.StatusNotFound, serve(t, server, "/").Code)
	require.Equal(t, http.StatusNotFound, serve(t, server, "/unknown").Code)

	response := serve(t, server, "/rss-feed", func(request *http.Request) {
		request.Method = http.MethodPost
	})
	require.Equal(t, http.StatusMethodNotAllowed, response.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	server := New(mo.None[*url.URL]())
	profile := feed.DefaultProfiles()[0]
	require.NoError(t, server.Register(feed.New(profile)))
	require.ErrorContains(t, server.Register(feed.New(profile)), `"rss-feed" feed is already registered`)
}

func TestGetBaseURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		baseURL mo.Option[*url.URL]
		modify  func(request *http.Request)
		result  string
	}{{
		name:   "host",
		modify: func(request *http.Request) {},
		result: "http://feeds.example.com",
	}, {
		name: "forwarded proto",
		modify: func(request *http.Request) {
			request.Header.Set("X-Forwarded-Proto", "HTTPS, http")
		},
		result: "https://feeds.example.com",
	}, {
		name: "invalid forwarded proto",
		modify: func(request *http.Request) {
			request.Header.Set("X-Forwarded-Proto", "gopher")
		},
		result: "http://feeds.example.com",
	}, {
		name: "tls",
		modify: func(request *http.Request) {
			request.TLS = &tls.ConnectionState{}
		},
		result: "https://feeds.example.com",
	}, {
		name: "no host",
		modify: func(request *http.Request) {
			request.Host = ""
		},
		result: "http://localhost:3000",
	}, {
		name:    "override",
		baseURL: mo.Some(url.MustURL("https://rss.example.com/changelogs")),
		modify: func(request *http.Request) {
			request.Header.Set("X-Forwarded-Proto", "http")
		},
		result: "https://rss.example.com/changelogs",
	}}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := New(testCase.baseURL)
			request := httptest.NewRequest(http.MethodGet, "http://feeds.example.com/rss-feed", nil)
			testCase.modify(request)
			require.Equal(t, testCase.result, server.getBaseURL(request).String())
		})
	}
}

func TestOverriddenBaseURL(t *testing.T) {
	t.Parallel()

	server := newServer(t, mo.Some(url.MustURL("https://rss.example.com/changelogs/")))

	response := serve(t, server, "/api/feed?repo=plugins")
	require.Equal(t, http.StatusOK, response.Code)
	require.Contains(t, response.Body.String(),
		`<atom:link href="https://rss.example.com/changelogs/api/feed?repo=plugins" rel="self"`)
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	server := New(mo.None[*url.URL]())
	require.Equal(t, "http://localhost:8080", server.publicURL(&net.TCPAddr{IP: net.IPv6zero, Port: 8080}))

	server = New(mo.Some(url.MustURL("https://rss.example.com/")))
	require.Equal(t, "https://rss.example.com", server.publicURL(&net.TCPAddr{Port: 8080}))
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.Context(t))
	server := newServer(t, mo.None[*url.URL]())

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, "127.0.0.1:0", "127.0.0.1:0")
	}()

	cancel()
	require.NoError(t, <-done)
}
