// Package timex holds time helpers used by configuration: a JSON-friendly
// Duration and named time units for "amount + unit" TTL settings.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is not a time package constant; TTLs for refresh tokens are usually
// expressed in days.
const Day = 24 * time.Hour

// Duration wraps time.Duration for JSON decoding. It accepts a Go duration
// string ("15m", "1h30m"), a day count with a "d" suffix ("7d") or an
// integer number of nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// ParseDuration is time.ParseDuration extended with a whole-day form "Nd".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * Day, nil
	}
	return time.ParseDuration(s)
}

// ParseUnit maps a unit name to its length. Singular, plural and short
// forms are accepted ("day", "days", "d").
func ParseUnit(name string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ms", "millis", "millisecond", "milliseconds":
		return time.Millisecond, nil
	case "s", "sec", "second", "seconds":
		return time.Second, nil
	case "m", "min", "minute", "minutes":
		return time.Minute, nil
	case "h", "hour", "hours":
		return time.Hour, nil
	case "d", "day", "days":
		return Day, nil
	default:
		return 0, fmt.Errorf("unknown time unit %q", name)
	}
}

// FromAmount returns amount units of the named unit.
func FromAmount(amount int, unit string) (time.Duration, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return 0, err
	}
	return time.Duration(amount) * u, nil
}
