// Package isodur encodes and decodes the ISO-8601 duration text format
// used by the video catalog API and the remote cache ("PT1H2M5S").
package isodur

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed reports a duration string that does not follow the
// ISO-8601 duration grammar.
var ErrMalformed = errors.New("malformed ISO-8601 duration")

// Parse converts an ISO-8601 duration into whole seconds. Week, day,
// hour, minute and second components are supported; calendar components
// (years, months) and fractional values are rejected.
func Parse(s string) (int64, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	var (
		total    int64
		digits   strings.Builder
		inTime   bool
		seen     bool
		seenTime bool
	)
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'T':
			if inTime {
				return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
			}
			inTime = true
		case c >= '0' && c <= '9':
			digits.WriteByte(c)
		default:
			if digits.Len() == 0 {
				return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
			}
			n, err := strconv.ParseInt(digits.String(), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
			}
			digits.Reset()

			var mult int64
			switch c {
			case 'W':
				mult = 7 * 86400
			case 'D':
				mult = 86400
			case 'H':
				mult = 3600
			case 'M':
				// Minutes; a month designator fails the position check below.
				mult = 60
			case 'S':
				mult = 1
			default:
				return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
			}
			if inTime != (c == 'H' || c == 'M' || c == 'S') {
				return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
			}
			total += n * mult
			seen = true
			seenTime = seenTime || inTime
		}
	}
	if digits.Len() > 0 || !seen || (inTime && !seenTime) {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return total, nil
}

// Format encodes whole seconds as an ISO-8601 duration. Zero and
// negative inputs encode as "PT0S". Format is the inverse of Parse for
// any non-negative second count.
func Format(seconds int64) string {
	if seconds <= 0 {
		return "PT0S"
	}

	var b strings.Builder
	b.WriteString("PT")
	if h := seconds / 3600; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m := seconds % 3600 / 60; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s := seconds % 60; s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
