// internal/entity/amount.go
package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a numeric field the API may serve either as a number or as a
// numeric string ("10.5"). Values that do not parse, and NaN or infinite
// values, decode as zero.
type Amount float64

// UnmarshalJSON never fails on malformed input; it yields zero instead.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = parseFinite(string(b))
	return nil
}

// ParseAmount parses s as a decimal number, returning zero when it cannot.
func ParseAmount(s string) Amount {
	return parseFinite(strings.TrimSpace(s))
}

func parseFinite(s string) Amount {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Amount(f)
}

// String formats the amount without trailing zeros, as it is typed in a form.
func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}
