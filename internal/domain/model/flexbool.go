package model

import (
	"strings"
)

// FlexBool decodes the source platform's loosely typed boolean fields, which
// arrive as a JSON bool on some endpoints and as the strings "true"/"false"
// on others. The relaxed parse lives here so the rest of the system only
// ever sees clean booleans.
type FlexBool bool

// UnmarshalJSON accepts true, false, "true", "false" (any case), and null.
// Anything else leaves the value false.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = FlexBool(ParseFlexBool(string(data)))
	return nil
}

// Bool returns the plain boolean value.
func (f FlexBool) Bool() bool { return bool(f) }

// ParseFlexBool applies the relaxed equality: a raw JSON token or bare string
// is true iff it reads as the literal true, with or without quotes,
// case-insensitively. Everything else, including null and empty, is false.
func ParseFlexBool(raw string) bool {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	return strings.EqualFold(s, "true")
}
