package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON renders the date as epoch milliseconds.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("0"), nil
	}
	return strconv.AppendInt(nil, d.Millis(), 10), nil
}

// UnmarshalJSON accepts epoch milliseconds, as written by MarshalJSON, and
// tolerates a fractional value.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("date must be epoch milliseconds: %w", err)
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("date must be finite")
	}
	if ms == 0 {
		*d = Date{}
		return nil
	}
	*d = DateFromMillis(int64(ms))
	return nil
}
