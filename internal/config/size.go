package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatBytes renders a byte count as B, KB, MB or GB.
func FormatBytes(size int64) string {
	switch {
	case size < 0:
		return "N/A"
	case size < kib:
		return fmt.Sprintf("%d B", size)
	case size < mib:
		return fmt.Sprintf("%.1f KB", float64(size)/kib)
	case size < gib:
		return fmt.Sprintf("%.1f MB", float64(size)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(size)/gib)
	}
}

// ParseSize parses sizes such as "50k", "1.5m", "2g", "100b" or a plain byte
// count. Suffixes are case-insensitive and binary (k = 1024).
func ParseSize(s string) (int64, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := 1.0
	switch str[len(str)-1] {
	case 'k':
		mult = kib
	case 'm':
		mult = mib
	case 'g':
		mult = gib
	case 'b':
		// explicit bytes
	default:
		n, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size %q", s)
		}
		return checkSize(s, n)
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(str[:len(str)-1]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return checkSize(s, n*mult)
}

func checkSize(raw string, n float64) (int64, error) {
	switch {
	case math.IsNaN(n) || math.IsInf(n, 0):
		return 0, fmt.Errorf("invalid size %q", raw)
	case n < 0:
		return 0, fmt.Errorf("negative size %q", raw)
	case n >= math.MaxInt64:
		return 0, fmt.Errorf("size %q is too large", raw)
	}
	return int64(n), nil
}
