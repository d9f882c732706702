// Package window implements the inclusive date-range filter applied to
// source records after a broad fetch. Comparison is on the YYYY-MM-DD prefix
// of the record's timestamp, so time-of-day never affects membership.
package window

import "time"

// dateLen is the length of the YYYY-MM-DD prefix compared.
const dateLen = len("2006-01-02")

// Window is an inclusive [Start, End] date range. Either bound may be empty,
// which leaves that side open; the zero Window contains every dated record.
type Window struct {
	Start string
	End   string
}

// ForDays returns a window covering the last n days up to today, the default
// range for a scheduled run.
func ForDays(now time.Time, n int) Window {
	end := now.Format("2006-01-02")
	start := now.AddDate(0, 0, -n).Format("2006-01-02")
	return Window{Start: start, End: end}
}

// IsZero reports whether both bounds are open.
func (w Window) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// Contains reports whether the date portion of ts falls inside the window,
// bounds included. A record with no date never matches a bounded window;
// with the zero window it always passes through.
func (w Window) Contains(ts string) bool {
	if w.IsZero() {
		return true
	}
	if ts == "" {
		return false
	}
	d := datePrefix(ts)
	if w.Start != "" && d < w.Start {
		return false
	}
	if w.End != "" && d > w.End {
		return false
	}
	return true
}

// datePrefix trims a timestamp down to its YYYY-MM-DD portion. Source
// timestamps arrive both as bare dates and as "2024-05-01 13:45:00" style
// strings; lexicographic comparison on the prefix works for both.
func datePrefix(ts string) string {
	if len(ts) > dateLen {
		return ts[:dateLen]
	}
	return ts
}
