package rss

import (
	"encoding/xml"
)

func (g *GUID) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if g.ID == "" {
		return nil
	}

	if g.IsPermaLink != nil {
		value := "true"
		if !*g.IsPermaLink {
			value = "false"
		}

		attr := xml.Attr{
			Name:  xml.Name{Local: "isPermaLink"},
			Value: value,
		}

		start.Attr = append(start.Attr, attr)
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if err := e.EncodeToken(xml.CharData(g.ID)); err != nil {
		return err
	}

	if err := e.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return err
	}

	return nil
}

// MarshalXML writes the date in RFC 1123 form with the GMT zone name, as RSS readers expect.
func (d *Date) MarshalXML(encoder *xml.Encoder, start xml.StartElement) error {
	if d.IsZero() {
		return nil
	}

	if err := encoder.EncodeToken(start); err != nil {
		return err
	}

	if err := encoder.EncodeToken(xml.CharData(d.RFC1123())); err != nil {
		return err
	}

	if err := encoder.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return err
	}

	return nil
}

func (d *Date) RFC1123() string {
	return d.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
}
