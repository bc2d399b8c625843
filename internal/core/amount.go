// Package core provides the domain model for shared utility cost allocation:
// occupants, rooms, properties, utility cost timelines and the statement
// produced by the allocation engine.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative amounts are allowed: a cost period may carry a credit.
//
// Examples:
//
//	ParseAmount("500")    -> 500, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-40.50") -> -40.5, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	body := strings.TrimPrefix(s, "-")
	body = strings.TrimPrefix(body, "+")
	dots := 0
	for _, r := range body {
		if r == '.' {
			dots++
			continue
		}
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	if dots > 1 || body == "" || body == "." {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// FormatEuros renders an amount for display, e.g. "€123,45" or "-€7,00".
func FormatEuros(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(v*100 + 0.5)
	euros := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + s
	}
	return "€" + s
}
