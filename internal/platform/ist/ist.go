// Package ist centralizes all Indian Standard Time (+05:30) day-boundary
// arithmetic. Assignment dates, report windows and the daily generator all
// derive their calendar days through this package so that UTC-stored instants
// never drift by a day against the regional calendar.
package ist

import (
	"fmt"
	"time"
)

// OffsetMinutes is the fixed IST offset from UTC. There is no per-hospital
// timezone configuration anywhere in the system.
const OffsetMinutes = 5*60 + 30

const dayMs = 24 * 60 * 60 * 1000

var offset = time.Duration(OffsetMinutes) * time.Minute

// Location is the fixed IST location used when a time.Location is needed.
var Location = time.FixedZone("IST", OffsetMinutes*60)

// DayString returns the YYYY-MM-DD calendar day of t as observed in IST.
func DayString(t time.Time) string {
	s := t.UTC().Add(offset)
	return fmt.Sprintf("%04d-%02d-%02d", s.Year(), int(s.Month()), s.Day())
}

// StartOfDay returns the UTC instant of 00:00:00.000 IST for the IST calendar
// day that contains t.
func StartOfDay(t time.Time) time.Time {
	s := t.UTC().Add(offset)
	mid := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	return mid.Add(-offset)
}

// StartOfDayYMD parses a YYYY-MM-DD string and returns the UTC instant of IST
// midnight for that calendar day. Malformed input is rejected rather than
// defaulted.
func StartOfDayYMD(ymd string) (time.Time, error) {
	y, m, d, err := parseYMD(ymd)
	if err != nil {
		return time.Time{}, err
	}
	mid := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return mid.Add(-offset), nil
}

// EndOfDayYMD returns the last representable millisecond of the IST calendar
// day, i.e. StartOfDayYMD + 86,399,999ms.
func EndOfDayYMD(ymd string) (time.Time, error) {
	start, err := StartOfDayYMD(ymd)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(dayMs-1) * time.Millisecond), nil
}

// AddDays shifts a day-instant by n whole days. The input must already be an
// IST-midnight instant; no renormalization is performed.
func AddDays(day time.Time, n int) time.Time {
	return day.Add(time.Duration(n) * 24 * time.Hour)
}

// DayOfWeekYMD returns the weekday (0=Sunday..6=Saturday) of the given IST
// calendar day, evaluated at regional noon to stay clear of any midnight
// boundary rounding.
func DayOfWeekYMD(ymd string) (int, error) {
	y, m, d, err := parseYMD(ymd)
	if err != nil {
		return 0, err
	}
	noon := time.Date(y, time.Month(m), d, 12, 0, 0, 0, Location)
	return int(noon.In(Location).Weekday()), nil
}

// NextDayYMD returns the YYYY-MM-DD string of the calendar day after ymd.
func NextDayYMD(ymd string) (string, error) {
	start, err := StartOfDayYMD(ymd)
	if err != nil {
		return "", err
	}
	return DayString(AddDays(start, 1)), nil
}

func parseYMD(ymd string) (y, m, d int, err error) {
	t, err := time.Parse("2006-01-02", ymd)
	// The round-trip comparison rejects non-canonical forms the parser
	// tolerates, such as unpadded months or reordered components.
	if err != nil || t.Format("2006-01-02") != ymd {
		return 0, 0, 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD", ymd)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}
