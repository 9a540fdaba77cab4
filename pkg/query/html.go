package query

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KonishchevDmitry/changelog-rss/pkg/url"
)

// ResolveLinks makes relative link and image URLs of the HTML fragment absolute. The fragment is returned untouched
// when it has nothing to resolve, otherwise it's rendered back from the parsed tree.
func ResolveLinks(fragment string, baseURL *url.URL) (string, error) {
	if !strings.Contains(fragment, "<a ") && !strings.Contains(fragment, "<img ") {
		return fragment, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	body := doc.Find("body")

	var changed bool
	resolve := func(attr string) func(*goquery.Selection) error {
		return func(element *goquery.Selection) error {
			link, ok := element.Attr(attr)
			if !ok || link == "" {
				return nil
			}

			resolved, ok, err := url.Resolve(baseURL, link)
			if err != nil {
				return err
			} else if ok {
				element.SetAttr(attr, resolved.String())
				changed = true
			}

			return nil
		}
	}

	if err := ForEach(body.Find("a"), resolve("href")); err != nil {
		return "", err
	}
	if err := ForEach(body.Find("img"), resolve("src")); err != nil {
		return "", err
	}

	if !changed {
		return fragment, nil
	}
	return body.Html()
}
