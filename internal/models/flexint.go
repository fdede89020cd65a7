package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an integer code that may arrive in JSON as a number or as a
// numeric string. The empty string and null decode to 0 (unset).
type FlexInt int

// Int returns the plain int value.
func (f FlexInt) Int() int {
	return int(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}

	n, err := ParseCode(raw)
	if err != nil {
		return fmt.Errorf("invalid numeric code %s: %w", string(data), err)
	}
	*f = FlexInt(n)
	return nil
}

// ParseCode coerces a raw code value to int. Integral floats such as "10.0"
// are accepted; the empty string is 0.
func ParseCode(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	fl, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if fl != float64(int(fl)) {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return int(fl), nil
}
