// Package filter turns raw gallery query parameters into validated criteria.
package filter

import (
	"html"
	"net/url"
	"strings"
	"time"
)

const (
	maxLocationLength    = 255
	maxCameraLength      = 255
	maxDescriptionLength = 1000
	maxUsernameLength    = 180

	summaryDateLayout = "2006-01-02"
)

// Query parameter names.
const (
	ParamLocation    = "location"
	ParamCamera      = "camera"
	ParamDescription = "description"
	ParamUsername    = "username"
	ParamTakenAtFrom = "taken_at_from"
	ParamTakenAtTo   = "taken_at_to"
)

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Criteria holds the normalized filters. Empty strings and nil times mean
// the filter is absent.
type Criteria struct {
	Location    string     `json:"location,omitempty"`
	Camera      string     `json:"camera,omitempty"`
	Description string     `json:"description,omitempty"`
	Username    string     `json:"username,omitempty"`
	TakenAtFrom *time.Time `json:"taken_at_from,omitempty"`
	TakenAtTo   *time.Time `json:"taken_at_to,omitempty"`
}

// Normalize builds Criteria from raw parameters. Values that are blank, too
// long or unparsable are dropped without error.
func Normalize(raw map[string]string) Criteria {
	var c Criteria

	c.Location = boundedText(raw[ParamLocation], maxLocationLength)
	c.Camera = boundedText(raw[ParamCamera], maxCameraLength)
	c.Description = boundedText(raw[ParamDescription], maxDescriptionLength)
	c.Username = boundedText(raw[ParamUsername], maxUsernameLength)

	if from, dateOnly, ok := parseDate(raw[ParamTakenAtFrom]); ok {
		if dateOnly {
			from = startOfDay(from)
		}
		c.TakenAtFrom = &from
	}
	if to, dateOnly, ok := parseDate(raw[ParamTakenAtTo]); ok {
		if dateOnly {
			to = endOfDay(to)
		}
		c.TakenAtTo = &to
	}

	return c
}

// NormalizeQuery is Normalize for URL query values; the first value of each
// key is used.
func NormalizeQuery(values url.Values) Criteria {
	raw := make(map[string]string, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}
	return Normalize(raw)
}

// HasActiveFilters reports whether at least one filter is present.
func (c Criteria) HasActiveFilters() bool {
	return c.Location != "" ||
		c.Camera != "" ||
		c.Description != "" ||
		c.Username != "" ||
		c.TakenAtFrom != nil ||
		c.TakenAtTo != nil
}

// Summary returns one display line per active filter. Text values are
// HTML-escaped.
func (c Criteria) Summary() []string {
	summary := []string{}
	if c.Location != "" {
		summary = append(summary, "Location: "+html.EscapeString(c.Location))
	}
	if c.Camera != "" {
		summary = append(summary, "Camera: "+html.EscapeString(c.Camera))
	}
	if c.Description != "" {
		summary = append(summary, "Description contains: "+html.EscapeString(c.Description))
	}
	if c.Username != "" {
		summary = append(summary, "Username: "+html.EscapeString(c.Username))
	}
	if c.TakenAtFrom != nil {
		summary = append(summary, "From: "+c.TakenAtFrom.Format(summaryDateLayout))
	}
	if c.TakenAtTo != nil {
		summary = append(summary, "To: "+c.TakenAtTo.Format(summaryDateLayout))
	}
	return summary
}

func boundedText(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > maxLen {
		return ""
	}
	return trimmed
}

// parseDate accepts a bare date or a date-time. dateOnly is true when the
// input carried no time component.
func parseDate(value string) (t time.Time, dateOnly bool, ok bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false, false
	}
	if d, err := time.Parse(summaryDateLayout, trimmed); err == nil {
		return d, true, true
	}
	for _, layout := range dateTimeLayouts {
		if dt, err := time.Parse(layout, trimmed); err == nil {
			return dt, false, true
		}
	}
	return time.Time{}, false, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
