// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads for testability. Production
// code injects System(); tests inject Fixed() with a deterministic
// time.
package clock

import "time"

// Clock provides the current time. Code that timestamps entries or
// resets the date picker takes a Clock instead of calling time.Now
// directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the real wall clock.
func System() Clock { return systemClock{} }

// Fixed returns a clock frozen at the given instant.
func Fixed(instant time.Time) Clock { return fixedClock{instant: instant} }

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time { return clock.instant }
