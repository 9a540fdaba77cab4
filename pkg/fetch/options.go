package fetch

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

type Option func(o *options)

type options struct {
	timeout time.Duration
	client  *http.Client
}

func getOptions(opts []Option) options {
	options := options{
		timeout: defaultTimeout,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Timeout limits the whole request including the body reading.
func Timeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func Client(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}
