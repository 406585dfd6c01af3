package condition

import (
	"strconv"
	"strings"
)

// compare orders two operands numerically when both parse as numbers, and
// lexicographically otherwise. Loose typing is deliberate: config values come
// from user-authored fields, so "5" equals 5.
func compare(left, right string) int {
	leftNum, leftErr := strconv.ParseFloat(strings.TrimSpace(left), 64)
	rightNum, rightErr := strconv.ParseFloat(strings.TrimSpace(right), 64)

	if leftErr == nil && rightErr == nil {
		switch {
		case leftNum < rightNum:
			return -1
		case leftNum > rightNum:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(left, right)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasPrefix(value, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToLower(value), strings.ToLower(prefix))
}

func hasSuffix(value, suffix string) bool {
	return suffix != "" && strings.HasSuffix(strings.ToLower(value), strings.ToLower(suffix))
}
