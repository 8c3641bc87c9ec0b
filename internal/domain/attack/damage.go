package attack

import "math"

const (
	maxStreakBreakDamage = 1000
	streakBreakPerDay    = 50
	severityStep         = 200
	maxSeverity          = 5
)

// UsageViolationDamage computes damage for exceeding the daily usage
// limit. The overage ratio multiplier is capped at 3 and consecutive
// offense days escalate by 50% each. A non-positive limit clamps the
// ratio multiplier to its cap rather than dividing by zero.
func UsageViolationDamage(overageMin, dailyLimitMin, consecutiveDays int) int {
	if overageMin <= 0 {
		return 0
	}
	ratio := 3.0
	if dailyLimitMin > 0 {
		ratio = math.Min(3, float64(overageMin)/float64(dailyLimitMin))
	}
	dmg := float64(overageMin) * ratio * (1 + 0.5*float64(consecutiveDays))
	return int(math.Floor(dmg))
}

// LieMultiplier scales truth-mismatch damage by how large the
// discrepancy is.
func LieMultiplier(deltaMin int) int {
	switch {
	case deltaMin > 60:
		return 3
	case deltaMin > 30:
		return 2
	default:
		return 1
	}
}

// TruthMismatchDamage computes damage for a reported-vs-verified usage
// discrepancy. The delta direction does not matter.
func TruthMismatchDamage(reportedMin, verifiedMin, consecutiveDays int) int {
	delta := reportedMin - verifiedMin
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 {
		return 0
	}
	dmg := float64(delta) * float64(LieMultiplier(delta)) * (1 + 0.75*float64(consecutiveDays)) * 2
	return int(math.Floor(dmg))
}

// StreakBreakDamage computes damage for losing a streak, capped at 1000.
func StreakBreakDamage(previousStreakDays int) int {
	if previousStreakDays <= 0 {
		return 0
	}
	dmg := previousStreakDays * streakBreakPerDay
	if dmg > maxStreakBreakDamage {
		dmg = maxStreakBreakDamage
	}
	return dmg
}

// SeverityTier maps applied damage to a 1-5 display tier.
func SeverityTier(damageApplied int) int {
	tier := int(math.Ceil(float64(damageApplied) / severityStep))
	if tier < 1 {
		tier = 1
	}
	if tier > maxSeverity {
		tier = maxSeverity
	}
	return tier
}
