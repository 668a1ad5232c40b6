// Package pricing computes parking charges from elapsed time and an hourly rate.
// Everything here is pure: the same (rate, start, end) always yields the same
// charge, which is what keeps live estimates and settled prices consistent.
package pricing

import (
	"math"
	"math/bits"
	"time"
)

// ElapsedMinutes returns the number of whole minutes between start and end.
// Partial minutes are truncated, never rounded up. An end before start
// (clock skew) is clamped to zero.
func ElapsedMinutes(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Minute)
}

// Charge returns ceil(minutes * hourlyRate / 60).
// The product is taken at 128 bits so the ceiling stays exact; a charge too
// large for int64 saturates at math.MaxInt64. A negative rate or minute count
// is treated as zero.
func Charge(hourlyRate, minutes int64) int64 {
	if hourlyRate <= 0 || minutes <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(minutes), uint64(hourlyRate))
	if hi >= 60 {
		return math.MaxInt64
	}
	q, rem := bits.Div64(hi, lo, 60)
	if rem != 0 {
		q++
	}
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// ComputePrice returns the charge for parking from start to end at hourlyRate.
func ComputePrice(hourlyRate int64, start, end time.Time) int64 {
	return Charge(hourlyRate, ElapsedMinutes(start, end))
}
