package normalize

import (
	"strings"
	"time"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
	"github.com/xuri/excelize/v2"
)

var (
	isoDateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "20060102"}

	dayFirstLayouts = []string{
		"02/01/2006", "02-01-2006", "02.01.2006", "2/1/2006", "2-1-2006", "02/01/06", "2/1/06",
	}

	monthFirstLayouts = []string{
		"01/02/2006", "01-02-2006", "01.02.2006", "1/2/2006", "1-2-2006", "01/02/06", "1/2/06",
	}

	clockLayouts = []string{"", "15:04:05", "15:04", "3:04:05 PM", "3:04 PM", "15-04-05", "150405"}
)

// TimestampParser combines date and time cells into a timestamp. It
// remembers the last layout that worked, so it is not safe for concurrent
// use; create one per table. Only layouts in the preferred day/month order
// are remembered, so one date that only parses in the other order does not
// change how later ambiguous dates are read.
type TimestampParser struct {
	layouts []string
	// fallback is the index of the first layout in the non-preferred order.
	fallback int
	last     int
}

// NewTimestampParser returns a parser. dayFirst resolves 03/04/2024 as
// 3 April 2024; otherwise as 4 March.
func NewTimestampParser(dayFirst bool) *TimestampParser {
	first, second := dayFirstLayouts, monthFirstLayouts
	if !dayFirst {
		first, second = second, first
	}
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	fallback := 0
	for g, group := range [][]string{isoDateLayouts, first, second} {
		if g == 2 {
			fallback = len(layouts)
		}
		for _, d := range group {
			for _, c := range clockLayouts {
				if c == "" {
					layouts = append(layouts, d)
				} else {
					layouts = append(layouts, d+" "+c)
				}
			}
		}
	}
	return &TimestampParser{layouts: layouts, fallback: fallback}
}

// Parse returns the timestamp for a date cell and an optional time cell, or
// nil when they cannot be parsed. Date cells holding an Excel serial day
// number are converted, and a time cell holding a day fraction is added.
func (p *TimestampParser) Parse(date, clock string) *time.Time {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return nil
	}

	// 2958466 is 10000-01-01, past the last date Excel can store.
	if serial, ok := parser.ParseNumber(date); ok && serial > 0 && serial < 2958466 && !strings.ContainsAny(date, "/-") {
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		if clock != "" {
			if frac, ok := parser.ParseNumber(clock); ok && frac >= 0 && frac < 1 {
				ts = ts.Add(time.Duration(frac * float64(24*time.Hour)).Round(time.Second))
			} else if c, ok := p.parseClock(clock); ok {
				ts = time.Date(ts.Year(), ts.Month(), ts.Day(), c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), time.UTC)
			} else {
				return nil
			}
		}
		return &ts
	}

	s := date
	if clock != "" {
		s = date + " " + clock
	}
	if ts, ok := p.parse(s); ok {
		return &ts
	}
	return nil
}

func (p *TimestampParser) parse(s string) (time.Time, bool) {
	if ts, err := time.ParseInLocation(p.layouts[p.last], s, time.UTC); err == nil {
		return ts, true
	}
	for i, layout := range p.layouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			if i < p.fallback {
				p.last = i
			}
			return ts, true
		}
	}
	return time.Time{}, false
}

func (p *TimestampParser) parseClock(s string) (time.Time, bool) {
	for _, layout := range clockLayouts[1:] {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
