package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidColor = errors.New("invalid hex color")
	ErrInvalidRule  = errors.New("invalid theme rule")
)

// ParseRule parses a rule value. Fields are separated by spaces:
//
//	"#rrggbb"      foreground
//	"bg:#rrggbb"   background
//	"bold", "italic", "underline"
//
// "#rgb" shorthand is accepted and expanded. At least one field is required.
func ParseRule(value string) (Scope, error) {
	var scope Scope
	var fonts []string

	fields := strings.Fields(value)
	if len(fields) == 0 {
		return Scope{}, fmt.Errorf("%w: empty", ErrInvalidRule)
	}

	for _, f := range fields {
		switch {
		case f == "bold" || f == "italic" || f == "underline":
			fonts = append(fonts, f)
		case strings.HasPrefix(f, "bg:"):
			c, err := ParseColor(f[len("bg:"):])
			if err != nil {
				return Scope{}, err
			}
			scope.Background = c
		case strings.HasPrefix(f, "fg:"):
			c, err := ParseColor(f[len("fg:"):])
			if err != nil {
				return Scope{}, err
			}
			scope.Foreground = c
		case strings.HasPrefix(f, "#"):
			c, err := ParseColor(f)
			if err != nil {
				return Scope{}, err
			}
			scope.Foreground = c
		default:
			return Scope{}, fmt.Errorf("%w: unknown field %q in %q", ErrInvalidRule, f, value)
		}
	}

	scope.FontStyle = strings.Join(fonts, " ")
	return scope, nil
}

// String formats s in the syntax ParseRule accepts.
func (s Scope) String() string {
	var parts []string
	if s.Foreground.IsSet() {
		parts = append(parts, string(s.Foreground))
	}
	if s.Background.IsSet() {
		parts = append(parts, "bg:"+string(s.Background))
	}
	if s.FontStyle != "" {
		parts = append(parts, s.FontStyle)
	}
	return strings.Join(parts, " ")
}

// ParseColor validates a "#rgb" or "#rrggbb" color and returns it in
// lower-case "#rrggbb" form.
func ParseColor(s string) (Color, error) {
	if !isValidHexColor(s) {
		return "", fmt.Errorf("%w: %s", ErrInvalidColor, s)
	}
	s = strings.ToLower(s)
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return Color(s), nil
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
