// Package timescale provides modified Julian date arithmetic and conversions
// between the UTC, GPS, TT and UT1 time scales.
//
// A Time does not carry its scale. By convention values are GPS time unless
// the variable name says otherwise (timeUTC, timeTT, timeUT1).
package timescale

import (
	"fmt"
	"math"
	"time"
)

// MJD of the J2000.0 epoch (2000-01-01 12:00 TT).
const MJDJ2000 = 51544.5

const secondsPerDay = 86400.0

// mjdEpoch is MJD 0 as a Go time.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Time is an instant stored as an integer MJD day plus the fraction of the day.
// The fraction is always in [0, 1).
type Time struct {
	day  int64
	frac float64
}

// Duration is the difference between two Times.
type Duration struct {
	days int64
	frac float64
}

// Seconds returns the duration in seconds.
func (d Duration) Seconds() float64 {
	return float64(d.days)*secondsPerDay + d.frac*secondsPerDay
}

// Days returns the duration in days.
func (d Duration) Days() float64 {
	return float64(d.days) + d.frac
}

func normalize(day int64, frac float64) Time {
	if frac < 0 || frac >= 1 {
		f := math.Floor(frac)
		day += int64(f)
		frac -= f
	}
	if frac >= 1 {
		day++
		frac = 0
	}
	return Time{day: day, frac: frac}
}

// FromMJD builds a Time from a (possibly fractional) MJD.
func FromMJD(mjd float64) Time {
	day := math.Floor(mjd)
	return normalize(int64(day), mjd-day)
}

// FromMJDParts builds a Time from an integer day and a day fraction.
func FromMJDParts(day int64, frac float64) Time {
	return normalize(day, frac)
}

// FromDate builds a Time from calendar fields.
func FromDate(year, month, day, hour, minute int, second float64) Time {
	d := civilToMJD(year, month, day)
	return normalize(d, (float64(hour)*3600+float64(minute)*60+second)/secondsPerDay)
}

// FromTime converts a Go time. Its UTC calendar fields are used as is,
// the scale is whatever the caller attaches to them.
func FromTime(t time.Time) Time {
	t = t.UTC()
	d := civilToMJD(t.Year(), int(t.Month()), t.Day())
	sec := float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())*1e-9
	return normalize(d, sec/secondsPerDay)
}

// civilToMJD converts a Gregorian calendar date (Fliegel & Van Flandern).
func civilToMJD(year, month, day int) int64 {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	jdn := day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	return int64(jdn) - 2400001
}

// Time converts back to a Go time with the same calendar fields.
func (t Time) Time() time.Time {
	ns := time.Duration(math.Round(t.frac * secondsPerDay * 1e9))
	return mjdEpoch.Add(time.Duration(t.day)*24*time.Hour + ns)
}

// MJD returns the modified Julian date.
func (t Time) MJD() float64 { return float64(t.day) + t.frac }

// MJDInt returns the integer part of the MJD.
func (t Time) MJDInt() int64 { return t.day }

// MJDMod returns the fraction of the day.
func (t Time) MJDMod() float64 { return t.frac }

// IsZero reports whether t is MJD 0.
func (t Time) IsZero() bool { return t.day == 0 && t.frac == 0 }

// Add returns t shifted by seconds.
func (t Time) Add(seconds float64) Time {
	return normalize(t.day, t.frac+seconds/secondsPerDay)
}

// AddDays returns t shifted by days.
func (t Time) AddDays(days float64) Time {
	whole := math.Floor(days)
	return normalize(t.day+int64(whole), t.frac+(days-whole))
}

// Sub returns t-u.
func (t Time) Sub(u Time) Duration {
	return Duration{days: t.day - u.day, frac: t.frac - u.frac}
}

// Compare returns -1, 0 or +1.
func (t Time) Compare(u Time) int {
	switch {
	case t.day < u.day:
		return -1
	case t.day > u.day:
		return 1
	case t.frac < u.frac:
		return -1
	case t.frac > u.frac:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is before u.
func (t Time) Before(u Time) bool { return t.Compare(u) < 0 }

// After reports whether t is after u.
func (t Time) After(u Time) bool { return t.Compare(u) > 0 }

// Equal reports whether t and u are the same instant.
func (t Time) Equal(u Time) bool { return t.Compare(u) == 0 }

// String formats the calendar date with millisecond resolution.
func (t Time) String() string {
	return t.Time().Format("2006-01-02 15:04:05.000")
}

// Format renders t as MJD with its calendar date, e.g. for error messages.
func (t Time) Format() string {
	return fmt.Sprintf("%s (MJD %.6f)", t.String(), t.MJD())
}

// Series returns the times start, start+step, ... not after end.
func Series(start, end Time, stepSeconds float64) ([]Time, error) {
	if stepSeconds <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g s", stepSeconds)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end, start)
	}
	n := int(math.Floor(end.Sub(start).Seconds()/stepSeconds+1e-9)) + 1
	times := make([]Time, n)
	for i := range times {
		times[i] = start.Add(float64(i) * stepSeconds)
	}
	return times, nil
}
