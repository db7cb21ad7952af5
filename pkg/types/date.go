package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format for calendar dates.
	DateLayout = "2006-01-02"
	// DisplayLayout renders dates for humans, e.g. "05 March 2024".
	DisplayLayout = "02 January 2006"
)

// Date is a calendar day without a time component. It persists as a DATE
// column and serializes to JSON as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return NewDate(time.Now().In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	return NewDate(parsed), nil
}

// ResolveDate parses raw, falling back to today when it is empty or malformed.
func ResolveDate(raw string, loc *time.Location) Date {
	if d, err := ParseDate(raw); err == nil {
		return d
	}
	return Today(loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Display renders the date the way order sheets and listings print it.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayLayout)
}

// Equal compares calendar days.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return fmt.Errorf("date must use %s: %w", DateLayout, err)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("unsupported date value %T", value)
	}
}

func (d *Date) scanString(raw string) error {
	if len(raw) >= len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType pins the column type for migrations and AutoMigrate.
func (Date) GormDataType() string {
	return "date"
}
