package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Hours is a fixed-point quantity of work time with two fraction digits.
// It is never backed by a float.
type Hours struct {
	decimal.Decimal
}

// NewHours rounds d half away from zero to two places.
func NewHours(d decimal.Decimal) Hours {
	return Hours{d.Round(2)}
}

// HoursFromMinutes converts a minute count into hours using a single division.
func HoursFromMinutes(minutes int64) Hours {
	return Hours{decimal.NewFromInt(minutes).DivRound(decimal.NewFromInt(60), 2)}
}

// String renders exactly two fraction digits ("1.50").
func (h Hours) String() string {
	return h.StringFixed(2)
}

// MarshalJSON emits a bare JSON number with two fraction digits.
func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(h.StringFixed(2)), nil
}

// Date is a calendar day stored without a time-of-day component.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to midnight UTC of the same calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// Today returns the current calendar day.
func Today() Date {
	return NewDate(time.Now())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a YYYY-MM-DD string")
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return fmt.Errorf("date must be a YYYY-MM-DD string")
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return NewDate(d.Time).Time, nil
}

// Scan implements sql.Scanner. Drivers hand back either a time or its text form.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) < len(dateLayout) {
		return fmt.Errorf("cannot scan %q into Date", s)
	}
	parsed, err := ParseDate(s[:len(dateLayout)])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
