package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a scheduled clock time expressed as whole minutes since
// midnight, in the range [0, 1439]. Schedules repeat daily, so there is no
// date component; arithmetic that crosses midnight wraps forward.
type TimeOfDay int

// NewTimeOfDay returns the TimeOfDay for the given hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM". A leading zero on the hour is optional and
// a trailing ":SS" seconds part is accepted and ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, rest, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse time of day %q: missing ':'", s)
	}
	mm, _, _ := strings.Cut(rest, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse time of day %q: hour out of range", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse time of day %q: minute out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String formats t as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes returns t as whole minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// MinutesUntil returns the number of minutes from t forward to u.
// When u is earlier on the clock the interval wraps past midnight, so the
// result is always in [0, 1439].
func (t TimeOfDay) MinutesUntil(u TimeOfDay) int {
	d := int(u) - int(t)
	if d < 0 {
		d += 24 * 60
	}
	return d
}

// Before reports whether t is strictly earlier on the clock than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

// MarshalJSON encodes t as the JSON string "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a JSON "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
