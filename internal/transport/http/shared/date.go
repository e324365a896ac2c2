package shared

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the shapes clients send for entry and due dates.
// Timestamps stored by the services are always RFC3339; the plain
// calendar form is what the web frontend posts.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a client-supplied date. An empty value is accepted
// and returns the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", value)
}
