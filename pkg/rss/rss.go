package rss

import (
	"bytes"
	"encoding/xml"
	"io"
)

const ContentType = "application/rss+xml"

type rssRoot struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr"`
	Channel *Feed    `xml:"channel"`
}

func Write(feed *Feed, writer io.Writer) error {
	if _, err := writer.Write([]byte(xml.Header)); err != nil {
		return err
	}

	rss := rssRoot{Version: "2.0", Atom: atomNamespace, Channel: feed}
	encoder := xml.NewEncoder(writer)
	encoder.Indent("", "    ")
	if err := encoder.Encode(&rss); err != nil {
		return err
	}

	_, err := writer.Write([]byte("\n"))
	return err
}

func Generate(feed *Feed) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Write(feed, &buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
