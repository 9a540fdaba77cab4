package query

import (
	"github.com/PuerkitoBio/goquery"
)

func ForEach(selection *goquery.Selection, process func(selection *goquery.Selection) error) error {
	var err error
	selection.EachWithBreak(func(i int, selection *goquery.Selection) bool {
		err = process(selection)
		return err == nil
	})
	return err
}
