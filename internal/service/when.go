package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
)

// Accepted layouts for ParseWhen, tried in order. Layouts without a zone
// are read in the location of now.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseWhen reads a scheduled time. A bare "15:04" means that clock time
// on the day of now.
func ParseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", errs.ErrValidation)
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if hm, err := time.Parse("15:04", s); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%w: time %q (use RFC3339, 2006-01-02T15:04 or 15:04)", errs.ErrValidation, s)
}
