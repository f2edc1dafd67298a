package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Semitones is a signed pitch shift. It decodes from a JSON integer, an
// integral float such as 2.0, a numeric string, or null (zero).
type Semitones int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Semitones) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*s = 0
			return nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("'semitones' must be an integer, got %q", text)
		}
		*s = Semitones(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("'semitones' must be an integer")
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("'semitones' must be an integer, got %v", f)
	}
	*s = Semitones(int(f))
	return nil
}
