package http

import (
	"strings"
	"time"
)

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// exportName builds a dated download file name.
func exportName(kind string, now time.Time, loc *time.Location, ext string) string {
	return "zenledger_" + kind + "_" + now.In(loc).Format("2006-01-02") + "." + ext
}
