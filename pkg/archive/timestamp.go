package archive

import (
	"fmt"
	"time"
)

// Timestamp is the packed 32-bit creation time stored in a library
// directory. The low 16 bits are the date (year since 1980 in bits 15-9,
// month in 8-5, day in 4-0); the high 16 bits are the time of day (hour
// in bits 15-11, minute in 10-5, second/2 in 4-0). Two-second resolution,
// no timezone.
type Timestamp uint32

// TimestampFromTime packs t. Years outside 1980-2107 are clamped to the
// representable range; odd seconds round down.
func TimestampFromTime(t time.Time) Timestamp {
	year := t.Year() - 1980
	if year < 0 {
		year = 0
	}
	if year > 127 {
		year = 127
	}

	date := uint32(year)<<9 | uint32(t.Month())<<5 | uint32(t.Day())
	clock := uint32(t.Hour())<<11 | uint32(t.Minute())<<5 | uint32(t.Second()/2)
	return Timestamp(clock<<16 | date)
}

func (ts Timestamp) Year() int   { return int(ts>>9&0x7F) + 1980 }
func (ts Timestamp) Month() int  { return int(ts >> 5 & 0xF) }
func (ts Timestamp) Day() int    { return int(ts & 0x1F) }
func (ts Timestamp) Hour() int   { return int(ts >> 27 & 0x1F) }
func (ts Timestamp) Minute() int { return int(ts >> 21 & 0x3F) }
func (ts Timestamp) Second() int { return int(ts>>16&0x1F) * 2 }

// Time converts to a time.Time in UTC. Out-of-range fields (month 0,
// day 0) normalize the way time.Date normalizes them.
func (ts Timestamp) Time() time.Time {
	return time.Date(ts.Year(), time.Month(ts.Month()), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), 0, time.UTC)
}

// String renders the listing form, day first: "15-05-96 16:09:38".
func (ts Timestamp) String() string {
	return fmt.Sprintf("%02d-%02d-%02d %02d:%02d:%02d",
		ts.Day(), ts.Month(), ts.Year()%100, ts.Hour(), ts.Minute(), ts.Second())
}
