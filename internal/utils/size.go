package utils

import (
	"fmt"
	"strings"
)

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	units := []string{"b", "kb", "mb", "gb", "tb", "pb"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + units[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, units[unitIndex])
}

// ParseSizeLimit converts a human size such as "512kb" or "2mb" into bytes.
// A bare number is interpreted as bytes. An empty string yields zero.
func ParseSizeLimit(value string) (int64, error) {
	trimmedValue := strings.TrimSpace(strings.ToLower(value))
	if trimmedValue == "" {
		return 0, nil
	}
	multipliers := []struct {
		suffix string
		factor int64
	}{
		{"gb", 1 << 30},
		{"mb", 1 << 20},
		{"kb", 1 << 10},
		{"b", 1},
	}
	for _, multiplier := range multipliers {
		if strings.HasSuffix(trimmedValue, multiplier.suffix) {
			numberPart := strings.TrimSpace(strings.TrimSuffix(trimmedValue, multiplier.suffix))
			var parsed float64
			if _, scanError := fmt.Sscanf(numberPart, "%f", &parsed); scanError != nil {
				return 0, fmt.Errorf("invalid size value %q", value)
			}
			return int64(parsed * float64(multiplier.factor)), nil
		}
	}
	var parsed int64
	if _, scanError := fmt.Sscanf(trimmedValue, "%d", &parsed); scanError != nil {
		return 0, fmt.Errorf("invalid size value %q", value)
	}
	return parsed, nil
}
