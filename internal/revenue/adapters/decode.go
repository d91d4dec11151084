package adapters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

// Decode unmarshals a raw billing payload into a processor schema. An empty
// payload or a field of the wrong JSON type is reported as ErrNoBillingTerms;
// a payload that is not JSON is ErrMalformedBillingData.
func Decode(data []byte, dest any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return revenuedomain.ErrNoBillingTerms
	}

	err := json.Unmarshal(trimmed, dest)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, revenuedomain.ErrNoBillingTerms):
		return err
	case errors.As(err, &typeErr):
		return fmt.Errorf("%w: field %q has JSON type %s", revenuedomain.ErrNoBillingTerms, typeErr.Field, typeErr.Value)
	default:
		return fmt.Errorf("%w: %w", revenuedomain.ErrMalformedBillingData, err)
	}
}

// Number accepts a JSON number or a string holding one.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", revenuedomain.ErrNoBillingTerms, err)
		}
		raw = strings.TrimSpace(unquoted)
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: amount %q is not numeric", revenuedomain.ErrNoBillingTerms, raw)
	}
	*n = Number(parsed)
	return nil
}

// Float returns the value as *float64, or nil when n is nil.
func (n *Number) Float() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
