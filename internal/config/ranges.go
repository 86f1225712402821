package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive span of register addresses.
type Range struct {
	Lo, Hi byte
}

func (r Range) Contains(addr byte) bool {
	return addr >= r.Lo && addr <= r.Hi
}

func (r Range) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("0x%02X", r.Lo)
	}
	return fmt.Sprintf("0x%02X-0x%02X", r.Lo, r.Hi)
}

// ParseRanges parses a list like "0x10-0x19,0x73,0x74-0x75". An empty
// string yields no ranges.
func ParseRanges(s string) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isSpan := strings.Cut(part, "-")
		if !isSpan {
			hi = lo
		}
		l, err := strconv.ParseUint(strings.TrimSpace(lo), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		h, err := strconv.ParseUint(strings.TrimSpace(hi), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		if l > h {
			return nil, fmt.Errorf("range %q: start after end", part)
		}
		out = append(out, Range{Lo: byte(l), Hi: byte(h)})
	}
	return out, nil
}

// InRanges reports whether any range contains addr.
func InRanges(ranges []Range, addr byte) bool {
	for _, r := range ranges {
		if r.Contains(addr) {
			return true
		}
	}
	return false
}
