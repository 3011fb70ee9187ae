package study

// Tier is a difficulty level selected from rolling accuracy.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
	TierExpert Tier = "expert"
)

// Valid reports whether t is a known difficulty tier.
func (t Tier) Valid() bool {
	switch t {
	case TierEasy, TierMedium, TierHard, TierExpert:
		return true
	}
	return false
}

// Recommendation is the selector's advice for the next session. It only
// recommends; callers with a fixed session size may override CardCount.
type Recommendation struct {
	Difficulty Tier `json:"difficulty"`
	CardCount  int  `json:"card_count"`
}

// Recommend maps a learner's rolling accuracy to a difficulty tier and a
// session size by cumulative volume. Deterministic and side-effect-free.
// Tier bounds are half-open with the lower bound inclusive, so accuracy
// exactly 0.70 lands on hard.
func Recommend(p Progress) Recommendation {
	accuracy := p.Accuracy()

	var tier Tier
	switch {
	case accuracy < 0.40:
		tier = TierEasy
	case accuracy < 0.70:
		tier = TierMedium
	case accuracy < 0.90:
		tier = TierHard
	default:
		tier = TierExpert
	}

	var count int
	switch {
	case p.TotalCardsAnswered < 10:
		count = 5
	case p.TotalCardsAnswered < 50:
		count = 8
	case p.TotalCardsAnswered < 100:
		count = 10
	default:
		count = 12
	}

	return Recommendation{Difficulty: tier, CardCount: count}
}
