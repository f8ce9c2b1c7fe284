package cart

import (
	"strconv"
	"strings"
)

// ParseQuantity reads the leading integer of a quantity field. Empty,
// non-numeric and zero input become 1; negative values pass through so the
// caller's update removes the line. Digit runs that overflow int also become
// 1 rather than keeping the large value.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return 1
	}
	return n
}
