package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// The site renders dates in Russian, either numeric ("26.08.2026 10:30") or with a
// genitive month name ("26 августа 2026"). Known layouts are tried after month-name
// normalization; anything else goes through dateparse as a last resort.

var ruMonths = strings.NewReplacer(
	"января", "January",
	"февраля", "February",
	"марта", "March",
	"апреля", "April",
	"мая", "May",
	"июня", "June",
	"июля", "July",
	"августа", "August",
	"сентября", "September",
	"октября", "October",
	"ноября", "November",
	"декабря", "December",
)

var dateLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"2 January 2006 15:04",
	"2 January 2006",
	"2 January 2006 г.",
}

var sourceLocation = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}()

func ParseDate(value string) (time.Time, error) {
	normalized := ruMonths.Replace(strings.ToLower(strings.TrimSpace(value)))

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, normalized, sourceLocation); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(normalized, sourceLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
	}
	return t, nil
}
