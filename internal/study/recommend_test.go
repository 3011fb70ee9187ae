package study

import "testing"

func TestRecommendTiers(t *testing.T) {
	tests := []struct {
		name     string
		answered int
		correct  int
		want     Tier
	}{
		{"zero history", 0, 0, TierEasy},
		{"low accuracy", 100, 39, TierEasy},
		{"lower medium bound", 100, 40, TierMedium},
		{"upper medium", 100, 69, TierMedium},
		{"lower hard bound is inclusive", 100, 70, TierHard},
		{"upper hard", 100, 89, TierHard},
		{"expert bound", 100, 90, TierExpert},
		{"perfect", 100, 100, TierExpert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress()
			p.TotalCardsAnswered = tt.answered
			p.TotalCardsCorrect = tt.correct

			got := Recommend(p)
			if got.Difficulty != tt.want {
				t.Fatalf("Recommend(%d/%d).Difficulty = %s, want %s", tt.correct, tt.answered, got.Difficulty, tt.want)
			}
		})
	}
}

func TestRecommendCardCount(t *testing.T) {
	tests := []struct {
		answered int
		want     int
	}{
		{0, 5},
		{9, 5},
		{10, 8},
		{49, 8},
		{50, 10},
		{99, 10},
		{100, 12},
		{500, 12},
	}

	for _, tt := range tests {
		p := NewProgress()
		p.TotalCardsAnswered = tt.answered
		p.TotalCardsCorrect = tt.answered / 2

		if got := Recommend(p).CardCount; got != tt.want {
			t.Fatalf("Recommend(answered=%d).CardCount = %d, want %d", tt.answered, got, tt.want)
		}
	}
}

func TestRecommendDeterministic(t *testing.T) {
	p := NewProgress()
	p.TotalCardsAnswered = 73
	p.TotalCardsCorrect = 60

	first := Recommend(p)
	for i := 0; i < 5; i++ {
		if got := Recommend(p); got != first {
			t.Fatalf("Recommend not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestTierValid(t *testing.T) {
	for _, tier := range []Tier{TierEasy, TierMedium, TierHard, TierExpert} {
		if !tier.Valid() {
			t.Fatalf("%s reported invalid", tier)
		}
	}
	if Tier("impossible").Valid() {
		t.Fatal("unknown tier reported valid")
	}
}
