package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/mo"
	"gopkg.in/yaml.v3"

	"github.com/KonishchevDmitry/changelog-rss/pkg/feed"
)

const DefaultFetchTimeout = 30 * time.Second

type Config struct {
	// Overrides the request-derived base URL of self links.
	BaseURL      string         `yaml:"base_url"`
	FetchTimeout time.Duration  `yaml:"fetch_timeout"`
	Feeds        []feed.Profile `yaml:"feeds"`
}

func Default() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

// Load reads the YAML configuration. Environment variables in the file are expanded, missing settings get the built-in
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := parse(os.ExpandEnv(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}

	return config, nil
}

func parse(data string) (*Config, error) {
	var config Config

	decoder := yaml.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	setDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(config *Config) {
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if len(config.Feeds) == 0 {
		config.Feeds = feed.DefaultProfiles()
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.By(validateBaseURL)),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0)).Exclusive()),
		validation.Field(&c.Feeds, validation.Required, validation.By(validateFeeds)),
	)
}

// ParsedBaseURL returns the base URL override if it's configured.
func (c *Config) ParsedBaseURL() mo.Option[*url.URL] {
	if c.BaseURL == "" {
		return mo.None[*url.URL]()
	}

	baseURL, err := parseBaseURL(c.BaseURL)
	if err != nil {
		return mo.None[*url.URL]()
	}

	return mo.Some(baseURL)
}

func validateBaseURL(value any) error {
	if baseURL, _ := value.(string); baseURL != "" {
		_, err := parseBaseURL(baseURL)
		return err
	}
	return nil
}

func parseBaseURL(value string) (*url.URL, error) {
	baseURL, err := url.Parse(value)
	if err != nil || baseURL.Scheme != "http" && baseURL.Scheme != "https" || baseURL.Host == "" {
		return nil, errors.New("must be an absolute HTTP URL")
	} else if baseURL.RawQuery != "" || baseURL.Fragment != "" {
		return nil, errors.New("must not contain a query or a fragment")
	}
	return baseURL, nil
}

func validateFeeds(value any) error {
	profiles, _ := value.([]feed.Profile)

	names := make(map[string]struct{}, len(profiles))
	paths := make(map[string]struct{}, len(profiles))
	errs := validation.Errors{}

	for index := range profiles {
		profile := &profiles[index]
		key := strconv.Itoa(index)

		if err := profile.Validate(); err != nil {
			errs[key] = err
			continue
		}

		if _, ok := names[profile.Name]; ok {
			errs[key] = fmt.Errorf("duplicate feed name: %q", profile.Name)
		} else if _, ok := paths[profile.Path]; ok {
			errs[key] = fmt.Errorf("duplicate feed path: %q", profile.Path)
		}

		names[profile.Name] = struct{}{}
		paths[profile.Path] = struct{}{}
	}

	return errs.Filter()
}
