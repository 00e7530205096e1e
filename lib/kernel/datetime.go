// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"fmt"
	"time"
)

// DateTime is the performed-at picker state: a calendar date plus an
// hour and minute, interpreted in local time. The fields are stored as
// the user entered them, so an impossible date (February 30th) stays
// visible until Resolve rejects it at save time.
type DateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func newDateTime(now time.Time) DateTime {
	local := now.Local()
	return DateTime{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
	}
}

func (picker *DateTime) setDate(year int, month time.Month, day int) {
	picker.Year = year
	picker.Month = month
	picker.Day = day
}

func (picker *DateTime) setHour(hour int) {
	picker.Hour = clamp(hour, 0, 23)
}

func (picker *DateTime) setMinute(minute int) {
	picker.Minute = clamp(minute, 0, 59)
}

// Resolve converts the picked local time to UTC. It fails when the
// calendar fields do not name a real date, since time.Date would
// silently normalize February 30th into March.
func (picker DateTime) Resolve() (time.Time, error) {
	local := time.Date(picker.Year, picker.Month, picker.Day, picker.Hour, picker.Minute, 0, 0, time.Local)
	if local.Year() != picker.Year || local.Month() != picker.Month || local.Day() != picker.Day {
		return time.Time{}, fmt.Errorf("%04d-%02d-%02d is not a valid calendar date", picker.Year, picker.Month, picker.Day)
	}
	return local.UTC(), nil
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
