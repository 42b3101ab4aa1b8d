// Package score packs a ranking metric and a recency tie-breaker into a
// single sortable integer.
//
// The combined value is what gets written into the leaderboard store. Its
// layout is fixed and shared by every writer and reader; changing any bit
// width invalidates all previously stored scores. The value never exceeds
// 53 significant bits so it survives a round trip through a float64 score
// column (sorted sets store scores as doubles).
//
// Layouts, most significant bits first:
//
//	count family: metric (30 bits) | seconds-until-period-end (23 bits)
//	rate family:  rate*100 (14 bits) | trials (16 bits) | seconds-until-period-end (23 bits)
//
// The low bits carry "seconds remaining until the period end" at the moment
// the metric was achieved. An earlier achievement leaves more seconds on the
// clock, so for a tied metric the earlier player ends up with the larger
// combined value and ranks first. The seconds value is masked to 23 bits;
// timestamps more than ~97 days apart alias, which is fine for half-month
// and event-sized windows.
package score

import (
	"fmt"
	"math"
	"time"
)

// Bit allocation for the combined value.
const (
	recencyBits = 23
	trialBits   = 16
	rateBits    = 14

	recencyMask = int64(1)<<recencyBits - 1

	// trialShift and rateShift position the rate-family fields above the
	// recency bits: 14 + 16 + 23 = 53 bits total.
	trialShift = recencyBits
	rateShift  = recencyBits + trialBits

	// MaxTrials is the largest trial count the rate layout can carry.
	MaxTrials = int64(1)<<trialBits - 1

	// rateScale converts a percentage to two-decimal fixed point.
	rateScale = 100
)

// Family selects which layout a combined value uses.
type Family int

const (
	// FamilyCount ranks by an absolute action counter (sparks, crafts).
	FamilyCount Family = iota
	// FamilyRate ranks by a percentage with a trial-count tie-break.
	FamilyRate
)

// String returns the lowercase family name.
func (f Family) String() string {
	if f == FamilyRate {
		return "rate"
	}
	return "count"
}

// EncodeCount combines an action counter with the achievement recency.
// metric occupies the top 30 bits; values beyond that range (~1.07e9)
// spill toward the float53 boundary and are the caller's problem.
func EncodeCount(metric int64, achievedAt, periodEnd time.Time) (int64, error) {
	if metric < 0 {
		return 0, fmt.Errorf("%w: negative metric %d", ErrInvalidInput, metric)
	}
	remaining, err := secondsRemaining(achievedAt, periodEnd)
	if err != nil {
		return 0, err
	}
	return metric<<recencyBits | remaining, nil
}

// DecodeCount recovers the original counter from a count-family value.
func DecodeCount(combined int64) int64 {
	return combined >> recencyBits
}

// EncodeRate combines a percentage, a trial count, and the achievement
// recency. rate is floor-truncated to two decimal places before packing.
func EncodeRate(rate float64, trials int64, achievedAt, periodEnd time.Time) (int64, error) {
	if rate < 0 {
		return 0, fmt.Errorf("%w: negative rate %v", ErrInvalidInput, rate)
	}
	if trials < 0 {
		return 0, fmt.Errorf("%w: negative trial count %d", ErrInvalidInput, trials)
	}
	if trials > MaxTrials {
		return 0, fmt.Errorf("%w: trial count %d exceeds %d", ErrCountOverflow, trials, MaxTrials)
	}
	fixed := int64(math.Floor(rate * rateScale))
	if fixed >= int64(1)<<rateBits {
		return 0, fmt.Errorf("%w: rate %v does not fit %d bits", ErrInvalidInput, rate, rateBits)
	}
	remaining, err := secondsRemaining(achievedAt, periodEnd)
	if err != nil {
		return 0, err
	}
	return fixed<<rateShift | trials<<trialShift | remaining, nil
}

// DecodeRate recovers the percentage from a rate-family value. The result
// has at most two decimal places by construction.
func DecodeRate(combined int64) float64 {
	return float64(combined>>rateShift) / rateScale
}

// DecodeRateTrials recovers the trial count from a rate-family value.
func DecodeRateTrials(combined int64) int64 {
	return combined >> trialShift & (int64(1)<<trialBits - 1)
}

// Decode extracts the human-meaningful metric for the given family.
func Decode(f Family, combined int64) float64 {
	if f == FamilyRate {
		return DecodeRate(combined)
	}
	return float64(DecodeCount(combined))
}

// Encode dispatches on family. Count-family ignores rate and trials;
// rate-family ignores metric.
func Encode(f Family, metric int64, rate float64, trials int64, achievedAt, periodEnd time.Time) (int64, error) {
	if f == FamilyRate {
		return EncodeRate(rate, trials, achievedAt, periodEnd)
	}
	return EncodeCount(metric, achievedAt, periodEnd)
}

// secondsRemaining returns periodEnd-achievedAt in whole seconds, masked to
// the recency field width. Earlier achievements leave a larger remainder.
func secondsRemaining(achievedAt, periodEnd time.Time) (int64, error) {
	secs := periodEnd.Unix() - achievedAt.Unix()
	if secs < 0 {
		return 0, fmt.Errorf("%w: achieved at %s after period end %s",
			ErrInvalidInput, achievedAt.Format(time.RFC3339), periodEnd.Format(time.RFC3339))
	}
	return secs & recencyMask, nil
}
