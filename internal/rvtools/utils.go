package rvtools

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// UnknownValue replaces blank string fields.
const UnknownValue = "Unknown"

var numberRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading numeric token of s. Thousands separators are
// ignored. Blank, non-numeric, negative or non-finite input yields 0.
func ParseNumber(s string) float64 {
	cleanS := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleanS == "" {
		return 0
	}
	match := numberRegex.FindString(cleanS)
	if match == "" {
		return 0
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
		return 0
	}
	return val
}

// ParseCount is ParseNumber truncated to an int.
func ParseCount(s string) int {
	return int(ParseNumber(s))
}

// SafeString trims s and returns UnknownValue when nothing is left.
func SafeString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownValue
	}
	return s
}

func ParseBooleanValue(s string) bool {
	if s == "" {
		return false
	}
	cleanStr := strings.ToLower(strings.TrimSpace(s))
	return cleanStr == "true" || cleanStr == "1" || cleanStr == "yes" || cleanStr == "enabled"
}

// Truncate cuts s to keep runes followed by an ellipsis when it is longer than limit runes.
func Truncate(s string, limit, keep int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:keep]) + "…"
}

func IsExcelFile(content []byte) bool {
	if len(content) < 2 {
		return false
	}

	if content[0] == 0x50 && content[1] == 0x4B {
		f, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return false
		}
		defer f.Close()
		return true
	}

	return false
}

func buildRow(headers []string, values []string) Row {
	row := make(Row, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if _, exists := row[header]; exists {
			continue
		}
		value := ""
		if i < len(values) {
			value = strings.TrimSpace(values[i])
		}
		row[header] = value
	}
	return row
}

func trimHeaders(headers []string) []string {
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return trimmed
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitSheet(rows [][]string) (header []string, data [][]string) {
	if len(rows) == 0 {
		return []string{}, [][]string{}
	}
	return rows[0], rows[1:]
}
