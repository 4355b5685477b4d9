// mathutil.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package vtol

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Timestamp is a monotonic microsecond clock reading, matching the
// resolution the transition timers and quadchute checks are specified in.
type Timestamp int64

// clockBase anchors Now to the process start so later readings advance on
// the monotonic clock rather than the adjustable wall clock.
var clockBase = time.Now()

// Now returns the current monotonic time as a Timestamp.
func Now() Timestamp {
	return Timestamp(clockBase.UnixMicro() + time.Since(clockBase).Microseconds())
}

// Sub returns t-u as a time.Duration.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t-u) * time.Microsecond
}

// Add returns t advanced by d.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d.Microseconds())
}

// clamp constrains v to [lo, hi].
func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp linearly interpolates between a and b as progress moves 0..1.
// progress is not itself clamped - callers that need a clamped ramp
// should clamp progress first.
func lerp[T constraints.Float](a, b, progress T) T {
	return a + (b-a)*progress
}

// invLerp returns how far v lies between a and b, as a fraction. It is
// not clamped: values are the caller's to clamp if a bounded weight is
// wanted.
func invLerp[T constraints.Float](a, b, v T) T {
	return (v - a) / (b - a)
}

// capDt clamps a tick's elapsed time to the 50ms scheduling-stall guard
// used throughout the transition ramps.
func capDt(dt time.Duration) time.Duration {
	const maxDt = 50 * time.Millisecond
	if dt > maxDt {
		return maxDt
	}
	if dt < 0 {
		return 0
	}
	return dt
}
