package feed

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/mo"

	"github.com/KonishchevDmitry/changelog-rss/pkg/markup"
)

const (
	repoPlaceholder  = "{repo}"
	titlePlaceholder = "{title}"
)

type Format int

const (
	// PlainFormat emits entry titles as is.
	PlainFormat Format = iota
	// RichFormat prefixes entry titles with "Version" and adds the channel image and item enclosures.
	RichFormat
)

func (f Format) String() string {
	switch f {
	case PlainFormat:
		return "plain"
	case RichFormat:
		return "rich"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	switch value := string(text); value {
	case "plain":
		*f = PlainFormat
	case "rich":
		*f = RichFormat
	default:
		return fmt.Errorf("invalid feed format: %q", value)
	}
	return nil
}

type Image struct {
	URL  string `yaml:"url"`
	Link string `yaml:"link"`
}

func (i Image) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&i.Link, validation.Required, validation.By(absoluteURL)),
	)
}

// Profile configures a single feed route: where the changelog comes from and how it's rendered.
type Profile struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Source string `yaml:"source"`

	Format       Format             `yaml:"format"`
	Headings     markup.HeadingMode `yaml:"headings"`
	CORS         bool               `yaml:"cors"`
	ResolveLinks bool               `yaml:"resolve_links"`

	ChannelLink  string `yaml:"channel_link"`
	Description  string `yaml:"description"`
	DefaultTitle string `yaml:"default_title"`
	Image        *Image `yaml:"image"`
}

var (
	nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	pathRe = regexp.MustCompile(`^(/[A-Za-z0-9._-]+)+$`)
	repoRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

func (p *Profile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Match(nameRe)),
		validation.Field(&p.Path, validation.Required, validation.Match(pathRe)),
		validation.Field(&p.Source, validation.Required, validation.By(p.validateSource)),
		validation.Field(&p.Format, validation.In(PlainFormat, RichFormat)),
		validation.Field(&p.Headings, validation.In(markup.StripH1, markup.RenderH1)),
		validation.Field(&p.ChannelLink, validation.Required, validation.By(absoluteURL)),
		validation.Field(&p.Image, validation.When(p.Format == RichFormat, validation.Required)),
	)
}

func (p *Profile) validateSource(any) error {
	if strings.Count(p.Source, repoPlaceholder) > 1 {
		return fmt.Errorf("must contain at most one %s placeholder", repoPlaceholder)
	}
	_, err := p.SourceURL(mo.Some("repo"))
	return err
}

func (p *Profile) Parametrized() bool {
	return strings.Contains(p.Source, repoPlaceholder)
}

// SourceURL returns the changelog URL, substituting the repo for parametrized profiles.
func (p *Profile) SourceURL(repo mo.Option[string]) (*url.URL, error) {
	source := p.Source

	if p.Parametrized() {
		name, ok := repo.Get()
		if !ok {
			return nil, errors.New("the repo is required")
		}
		source = strings.ReplaceAll(source, repoPlaceholder, url.PathEscape(name))
	}

	sourceURL, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	} else if sourceURL.Scheme != "http" && sourceURL.Scheme != "https" || sourceURL.Host == "" {
		return nil, fmt.Errorf("invalid source URL: %q", source)
	}

	return sourceURL, nil
}

// ValidateRepo checks a repo name to be a single safe path component.
func ValidateRepo(repo string) error {
	return validation.Validate(repo,
		validation.Required,
		validation.Match(repoRe),
		validation.NotIn(".", ".."),
	)
}

func absoluteURL(value any) error {
	link, _ := value.(string)
	if link == "" {
		return nil
	}

	parsed, err := url.Parse(link)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return errors.New("must be an absolute URL")
	}

	return nil
}
