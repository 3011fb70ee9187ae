package study

import "time"

const (
	// QuotaUnitSize is the number of answered cards that makes one set.
	QuotaUnitSize = 10

	// DefaultTargetSets is the completion target of the study plan.
	DefaultTargetSets = 40

	// PlanDays is the length of the study plan in calendar days.
	PlanDays = 30
)

// Progress is a learner's persistent study record. All counters are
// monotonically non-decreasing across a learner's history except
// CurrentStreakDays, which resets when a calendar day is skipped.
// Zero dates mean "no session recorded yet".
type Progress struct {
	CurrentStreakDays  int       `json:"current_streak_days"`
	MaxStreakDays      int       `json:"max_streak_days"`
	CompletedSets      int       `json:"completed_sets"`
	TargetSets         int       `json:"target_sets"`
	TotalSessions      int       `json:"total_sessions"`
	TotalCardsAnswered int       `json:"total_cards_answered"`
	TotalCardsCorrect  int       `json:"total_cards_correct"`
	FirstStudyDate     time.Time `json:"first_study_date"`
	LastStudyDate      time.Time `json:"last_study_date"`
}

// NewProgress returns a zero-valued record with the default target.
func NewProgress() Progress {
	return Progress{TargetSets: DefaultTargetSets}
}

// DateOnly normalizes t to midnight UTC of its calendar day. Streak
// arithmetic works on whole days only; no time-of-day component may leak
// into gap computation.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference b - a after both are
// normalized to calendar days.
func daysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// ApplySession folds a finished session into a learner's progress record
// and returns the updated copy. The input is never mutated; callers own
// persisting the returned value. A today earlier than the last recorded
// study date is rejected with ErrClockSkew and must not be persisted.
func ApplySession(p Progress, result SessionResult, today time.Time) (Progress, error) {
	next := p
	if next.TargetSets <= 0 {
		next.TargetSets = DefaultTargetSets
	}
	day := DateOnly(today)

	switch {
	case p.LastStudyDate.IsZero():
		next.CurrentStreakDays = 1
	default:
		gap := daysBetween(p.LastStudyDate, day)
		switch {
		case gap < 0:
			return p, ErrClockSkew
		case gap == 0:
			// Repeat sessions on one calendar day do not inflate the streak.
		case gap == 1:
			next.CurrentStreakDays++
		default:
			next.CurrentStreakDays = 1
		}
	}
	if next.CurrentStreakDays > next.MaxStreakDays {
		next.MaxStreakDays = next.CurrentStreakDays
	}

	// Each session's quota contribution stands alone; leftover answered
	// cards never combine across sessions.
	next.CompletedSets += result.TotalAnswered / QuotaUnitSize

	next.TotalSessions++
	next.TotalCardsAnswered += result.TotalAnswered
	next.TotalCardsCorrect += result.Correct

	if next.FirstStudyDate.IsZero() {
		next.FirstStudyDate = day
	}
	next.LastStudyDate = day

	return next, nil
}

// Accuracy returns the rolling accuracy across the learner's history,
// in [0, 1]. Zero history yields 0.
func (p Progress) Accuracy() float64 {
	if p.TotalCardsAnswered == 0 {
		return 0
	}
	return float64(p.TotalCardsCorrect) / float64(p.TotalCardsAnswered)
}

// ProgressPercentage returns quota completion as a percentage, capped at 100.
func (p Progress) ProgressPercentage() float64 {
	target := p.TargetSets
	if target <= 0 {
		target = DefaultTargetSets
	}
	pct := float64(p.CompletedSets) / float64(target) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// DaysSinceFirst returns whole days elapsed since the first recorded
// session, or 0 when none has been recorded.
func (p Progress) DaysSinceFirst(today time.Time) int {
	if p.FirstStudyDate.IsZero() {
		return 0
	}
	days := daysBetween(p.FirstStudyDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// DaysRemaining returns the days left in the study plan, never negative.
func (p Progress) DaysRemaining(today time.Time) int {
	remaining := PlanDays - p.DaysSinceFirst(today)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOnTrack reports whether completed sets keep pace with the plan:
// CompletedSets >= ceil(TargetSets * daysSinceFirst / PlanDays). Before the
// second study day there is no pace to fall behind.
func (p Progress) IsOnTrack(today time.Time) bool {
	days := p.DaysSinceFirst(today)
	if days <= 0 {
		return true
	}
	target := p.TargetSets
	if target <= 0 {
		target = DefaultTargetSets
	}
	required := (target*days + PlanDays - 1) / PlanDays
	return p.CompletedSets >= required
}
