package url

import (
	"fmt"
	"net/url"
)

type URL = url.URL

func MustURL(value string) *url.URL {
	url, err := url.Parse(value)
	if err != nil {
		panic(fmt.Sprintf("Invalid URL: %s", value))
	}
	return url
}

// Resolve resolves a possibly relative link against base. Absolute links, fragment-only links and links with an own
// scheme are returned as is with resolved = false.
func Resolve(base *url.URL, link string) (_ *url.URL, resolved bool, _ error) {
	url, err := url.Parse(link)
	if err != nil {
		return nil, false, fmt.Errorf("got an invalid link: %q", link)
	}

	if url.IsAbs() || url.Host != "" || (url.Path == "" && url.RawQuery == "") {
		return url, false, nil
	}

	return base.ResolveReference(url), true, nil
}
