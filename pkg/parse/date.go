package parse

import (
	"fmt"
	"strings"
	"time"
)

// Only these layouts are accepted: changelog generators write ISO dates, the rest cover hand-written entries.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

func Date(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date: %q", value)
}
