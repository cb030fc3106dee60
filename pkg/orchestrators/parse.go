package orchestrators

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseInt reads the integer at the start of free-form text: leading
// whitespace and a sign are allowed and trailing garbage is ignored.
// Text with no leading digits, or out of int64 range, yields 0.
func ParseInt(text string) int64 {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	value, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return value
}
