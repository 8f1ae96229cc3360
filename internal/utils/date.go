package utils

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// ParseDueDate converts a YYYY-MM-DD string into a date. Empty or
// malformed input means "no due date", never an error.
func ParseDueDate(s string) *datatypes.Date {
	s = strings.TrimSpace(s)

	if s == "" {
		return nil
	}

	t, err := time.Parse(dateLayout, s)

	if err != nil {
		return nil
	}

	d := datatypes.Date(t)
	return &d
}

// FormatDueDate renders a stored due date back into YYYY-MM-DD.
func FormatDueDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}

	s := time.Time(*d).Format(dateLayout)
	return &s
}
