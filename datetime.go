package uatypes

import "time"

// DateTime is the number of 100 nanosecond intervals since
// 1601-01-01T00:00:00Z. Storing ticks rather than time.Time keeps
// encode/decode exact.
type DateTime int64

// ticksTo1970 is the number of ticks between the OPC-UA epoch and the Unix epoch.
const ticksTo1970 = 116444736000000000

// maxDateTime is 9999-12-31T23:59:59Z; later values are clamped by the JSON
// mapping.
const maxDateTime DateTime = 2650467743990000000

// DateTimeFromTime converts t, truncating to 100 ns. The zero time maps to 0.
func DateTimeFromTime(t time.Time) DateTime {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix()
	ticks := (sec+11644473600)*10000000 + int64(t.Nanosecond())/100
	if ticks < 0 {
		return 0
	}
	return DateTime(ticks)
}

// Now returns the current time as a DateTime.
func Now() DateTime { return DateTimeFromTime(time.Now()) }

// Time converts d to a UTC time.Time. 0 maps to the zero time.Time.
func (d DateTime) Time() time.Time {
	if d == 0 {
		return time.Time{}
	}
	ticks := int64(d) - ticksTo1970
	sec := ticks / 10000000
	rem := ticks % 10000000
	if rem < 0 {
		rem += 10000000
		sec--
	}
	return time.Unix(sec, rem*100).UTC()
}

// jsonLayout has exactly seven fractional digits so every tick survives a
// format/parse round trip.
const jsonLayout = "2006-01-02T15:04:05.0000000Z"

// String returns the JSON text form. Ticks outside 1601-01-01 to
// 9999-12-31 are clamped to those bounds.
func (d DateTime) String() string {
	if d <= 0 {
		return "1601-01-01T00:00:00.0000000Z"
	}
	if d > maxDateTime {
		d = maxDateTime
	}
	return d.Time().Format(jsonLayout)
}

// ParseDateTime parses an RFC 3339 timestamp.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, &Error{Code: CodeInvalidValue, Offset: -1, Message: "invalid DateTime " + s, Cause: err}
	}
	if t.Year() <= 1601 && DateTimeFromTime(t) <= 0 {
		return 0, nil
	}
	return DateTimeFromTime(t), nil
}
