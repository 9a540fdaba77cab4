package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"golang.org/x/net/html/charset"
)

const maxDocumentSize = 16 * 1024 * 1024

var textMediaTypes = []string{"text/plain", "text/markdown", "text/x-markdown"}

// Text fetches a text document and returns it decoded to UTF-8.
func Text(ctx context.Context, url *url.URL, options ...Option) (string, error) {
	return fetch(ctx, url, textMediaTypes, readText, options...)
}

func fetch[T any](
	ctx context.Context, url *url.URL, allowedMediaTypes []string, parser func(body io.Reader, contentType string) (T, error),
	opts ...Option,
) (_ T, retErr error) {
	var zero T
	defer func() {
		if retErr != nil {
			retErr = fmt.Errorf("failed to fetch %s: %w", url, retErr)
		}
	}()

	options := getOptions(opts)

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	fetchCtx, err := getContext(ctx)
	if err != nil {
		return zero, err
	}

	logging.L(ctx).Debugf("Fetching %s...", url)

	startTime := time.Now()
	response, err := httpClientFetch(ctx, options.client, url)
	fetchCtx.duration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return zero, err
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.L(ctx).Errorf("Failed to close HTTP client body: %s.", err)
		}
	}()

	if statusCode := response.StatusCode; statusCode != http.StatusOK {
		err := fmt.Errorf("the server returned an error: %s", response.Status)
		if statusCode >= 500 && statusCode < 600 {
			err = makeTemporaryError(err)
		}
		return zero, err
	}

	contentType := response.Header.Get("Content-Type")
	if err := checkContentType(contentType, allowedMediaTypes); err != nil {
		return zero, err
	}

	return parser(bodyReader{body: response.Body}, contentType)
}

func httpClientFetch(ctx context.Context, client *http.Client, url *url.URL) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Add("User-Agent", "github.com/KonishchevDmitry/changelog-rss")

	response, err := client.Do(request)
	if err != nil {
		return nil, makeTemporaryError(err)
	}

	return response, nil
}

func readText(body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxDocumentSize+1))
	if err != nil {
		return "", err
	} else if len(data) > maxDocumentSize {
		return "", fmt.Errorf("the document is too big (more than %d bytes)", maxDocumentSize)
	}

	// Without an explicit charset the sniffer looks only at the document head, so trust valid UTF-8 first.
	encoding, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode the document using %s charset: %w", name, err)
	}

	return string(decoded), nil
}

type bodyReader struct {
	body io.Reader
}

var _ io.Reader = bodyReader{}

func (r bodyReader) Read(buf []byte) (int, error) {
	n, err := r.body.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		err = makeTemporaryError(err)
	}
	return n, err
}

func checkContentType(contentType string, allowedMediaTypes []string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("got an invalid Content-Type: %w", err)
	}

	for _, allowedMediaType := range allowedMediaTypes {
		if mediaType == allowedMediaType {
			return nil
		}
	}

	return fmt.Errorf("got an invalid Content-Type (%s)", mediaType)
}
