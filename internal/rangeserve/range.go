package rangeserve

import (
	"strconv"
	"strings"
)

// Range is an inclusive byte span within a file of Size bytes.
type Range struct {
	Start int64
	End   int64
	Size  int64
}

// Length is the number of bytes in the span.
func (r Range) Length() int64 { return r.End - r.Start + 1 }

// ContentRange renders the Content-Range header value.
func (r Range) ContentRange() string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) + "/" + strconv.FormatInt(r.Size, 10)
}

// ParseRange interprets a Range header against a file of size bytes. ok is
// false when the header is absent or not a single well-formed bytes range, in
// which case the caller serves the whole file.
//
// A start at or beyond the end of the file clamps to the last byte instead of
// failing; an end beyond the file clamps to the last byte.
func ParseRange(header string, size int64) (Range, bool) {
	header = strings.TrimSpace(header)
	if header == "" || size <= 0 {
		return Range{}, false
	}
	unit, spec, found := strings.Cut(header, "=")
	if !found || strings.TrimSpace(unit) != "bytes" {
		return Range{}, false
	}
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, ",") {
		return Range{}, false
	}
	startText, endText, found := strings.Cut(spec, "-")
	if !found {
		return Range{}, false
	}
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)
	last := size - 1

	if startText == "" {
		// Suffix form: the final N bytes.
		n, ok := parseOffset(endText)
		if !ok || n == 0 {
			return Range{}, false
		}
		n = min(n, size)
		return Range{Start: size - n, End: last, Size: size}, true
	}

	start, ok := parseOffset(startText)
	if !ok {
		return Range{}, false
	}
	end := last
	if endText != "" {
		if end, ok = parseOffset(endText); !ok {
			return Range{}, false
		}
		if start > end {
			return Range{}, false
		}
	}
	start = min(start, last)
	end = min(end, last)
	return Range{Start: start, End: end, Size: size}, true
}

func parseOffset(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
