package services

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Month identifies a calendar month aggregation window.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth validates a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	if !monthPattern.MatchString(s) {
		return Month{}, invalidf("month must be YYYY-MM")
	}
	year, _ := strconv.Atoi(s[:4])
	mon, _ := strconv.Atoi(s[5:])
	return Month{Year: year, Month: time.Month(mon)}, nil
}

// Start is the first day of the month, inclusive.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first day of the following month, exclusive.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// String returns the "YYYY-MM" key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compact returns "YYYYMM" as used in invoice numbers.
func (m Month) Compact() string {
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}
