package rss

import (
	"time"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

type Feed struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	SelfLink    *AtomLink `xml:"atom:link"`
	Description string    `xml:"description"`
	Image       *Image    `xml:"image"`
	Generator   string    `xml:"generator,omitempty"`
	Items       []*Item   `xml:"item"`
}

func NewFeed(title string, link string) *Feed {
	return &Feed{
		Title: title,
		Link:  link,
	}
}

func (f *Feed) SetSelfLink(href string) {
	f.SelfLink = &AtomLink{
		Href: href,
		Rel:  "self",
		Type: ContentType,
	}
}

func (f *Feed) AddItem(item *Item) {
	f.Items = append(f.Items, item)
}

type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type Image struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width,omitempty"`
	Height int    `xml:"height,omitempty"`
}

type Date struct {
	time.Time
}

type Item struct {
	Title       string       `xml:"title,omitempty"`
	Date        Date         `xml:"pubDate"`
	Enclosure   []*Enclosure `xml:"enclosure"`
	Link        string       `xml:"link,omitempty"`
	GUID        GUID         `xml:"guid"`
	Description Description  `xml:"description"`
}

// Description is always written as CDATA, so HTML fragments are embedded without escaping.
type Description struct {
	HTML string `xml:",cdata"`
}

type GUID struct {
	ID          string `xml:",chardata"`
	IsPermaLink *bool  `xml:"isPermaLink,attr,omitempty"`
}

func MakeGUID(id string, isPermaLink bool) GUID {
	guid := GUID{ID: id}
	if !isPermaLink {
		guid.IsPermaLink = &isPermaLink
	}
	return guid
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}
