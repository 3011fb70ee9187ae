package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/entity"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/repository"
	internalEntity "github.com/hanningtontech/nurse-connect-app-sub002/internal/entity"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/study"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory StudyRepository. The db argument is ignored,
// matching how the real implementation falls back to its own handle.
type fakeRepo struct {
	mu        sync.Mutex
	progress  map[string]internalEntity.StudyProgress
	generated map[string]internalEntity.GeneratedFlashcard
	templates []internalEntity.FlashcardBankTemplate
	sessions  []internalEntity.StudySessionRecord

	failProgress bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		progress:  make(map[string]internalEntity.StudyProgress),
		generated: make(map[string]internalEntity.GeneratedFlashcard),
	}
}

func (f *fakeRepo) FindProgressByLearnerID(_ *gorm.DB, learnerID string) (*internalEntity.StudyProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProgress {
		return nil, repository.ErrStore
	}
	rec, ok := f.progress[learnerID]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (f *fakeRepo) UpsertProgress(_ *gorm.DB, progress *internalEntity.StudyProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProgress {
		return repository.ErrStore
	}
	f.progress[progress.LearnerID] = *progress
	return nil
}

func (f *fakeRepo) CreateSessionRecord(_ *gorm.DB, record *internalEntity.StudySessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, *record)
	return nil
}

func (f *fakeRepo) FindSessionsByLearnerID(_ *gorm.DB, learnerID string, limit int) ([]internalEntity.StudySessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []internalEntity.StudySessionRecord
	for _, rec := range f.sessions {
		if rec.LearnerID == learnerID {
			out = append(out, rec)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateGenerated(_ *gorm.DB, card *internalEntity.GeneratedFlashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated[card.CardID] = *card
	return nil
}

func (f *fakeRepo) FindGeneratedByCardID(_ *gorm.DB, cardID string) (*internalEntity.GeneratedFlashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.generated[cardID]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (f *fakeRepo) FindRandomGeneratedByDifficulty(_ *gorm.DB, difficulty string, limit int, excludeIDs []string) ([]internalEntity.GeneratedFlashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	var out []internalEntity.GeneratedFlashcard
	for _, rec := range f.generated {
		if rec.Difficulty != difficulty {
			continue
		}
		if _, skip := excluded[rec.CardID]; skip {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) IncrementUsageCount(_ *gorm.DB, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.generated[cardID]; ok {
		rec.UsageCount++
		f.generated[cardID] = rec
	}
	return nil
}

func (f *fakeRepo) FindTemplateByTemplateID(_ *gorm.DB, templateID string) (*internalEntity.FlashcardBankTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tpl := range f.templates {
		if tpl.TemplateID == templateID {
			out := tpl
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindTemplatesByDifficulty(_ *gorm.DB, difficulty string) ([]internalEntity.FlashcardBankTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []internalEntity.FlashcardBankTemplate
	for _, tpl := range f.templates {
		if tpl.Difficulty == difficulty {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountTemplatesByDifficulty(_ *gorm.DB, difficulty string) (int64, error) {
	tpls, _ := f.FindTemplatesByDifficulty(nil, difficulty)
	return int64(len(tpls)), nil
}

type stubGenerator struct {
	resp string
	err  error
}

func (s *stubGenerator) GenerateJSON(_ context.Context, _ string) (string, error) {
	return s.resp, s.err
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 15, 4, 5, 0, time.UTC) }
}

func newTestUsecase(repo *fakeRepo, gen TextGenerator, now func() time.Time) StudyUsecase {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewStudyUsecase(StudyConfig{
		LLM:        gen,
		Repository: repo,
		Log:        log,
		Now:        now,
	})
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func seedGeneratedCard(repo *fakeRepo, cardID, difficulty string) {
	options := mustJSON([]string{"Hand hygiene", "Gloves", "Masks", "Gowns"})
	repo.generated[cardID] = internalEntity.GeneratedFlashcard{
		CardID:        cardID,
		Difficulty:    difficulty,
		Question:      "Most effective measure to prevent infection spread?",
		Options:       options,
		CorrectOption: "Hand hygiene",
		Rationale:     "Hand hygiene breaks the chain of infection.",
		Source:        "generated",
	}
}

func TestGenerateCardsFromAI(t *testing.T) {
	repo := newFakeRepo()
	gen := &stubGenerator{resp: mustJSON(map[string]any{
		"cards": []map[string]any{
			{
				"question":       "Normal adult resting heart rate?",
				"options":        []string{"60-100 bpm", "40-60 bpm", "100-120 bpm", "120-140 bpm"},
				"correct_option": "60-100 bpm",
				"rationale":      "Normal adult resting rate is 60-100 bpm.",
			},
			{
				// Malformed: three options only. Must be dropped, not repaired.
				"question":       "Broken card",
				"options":        []string{"A", "B", "C"},
				"correct_option": "A",
			},
		},
	})}
	u := newTestUsecase(repo, gen, fixedClock(2024, 1, 1))

	cards, err := u.GenerateCards(context.Background(), study.TierEasy, 2, "cardio", false, true)
	if err != nil {
		t.Fatalf("GenerateCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1 (malformed card dropped)", len(cards))
	}
	if cards[0].Source != string(study.SourceGenerated) {
		t.Fatalf("Source = %s, want generated", cards[0].Source)
	}
	if cards[0].CorrectOption != "" || cards[0].Rationale != "" {
		t.Fatal("answer must be stripped when include_answer is false")
	}
}

func TestGenerateCardsFallsBackToBank(t *testing.T) {
	repo := newFakeRepo()
	repo.templates = append(repo.templates, internalEntity.FlashcardBankTemplate{
		TemplateID:    "e-fund-1",
		Difficulty:    "easy",
		Question:      "Which position eases dyspnea?",
		Options:       mustJSON([]string{"High Fowler's", "Supine", "Trendelenburg", "Prone"}),
		CorrectOption: "High Fowler's",
		Rationale:     "Upright positioning maximizes lung expansion.",
	})
	gen := &stubGenerator{err: errors.New("provider down")}
	u := newTestUsecase(repo, gen, fixedClock(2024, 1, 1))

	cards, err := u.GenerateCards(context.Background(), study.TierEasy, 1, "", true, true)
	if err != nil {
		t.Fatalf("GenerateCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].Source != string(study.SourceFallback) {
		t.Fatalf("Source = %s, want fallback", cards[0].Source)
	}
	if cards[0].CorrectOption != "High Fowler's" {
		t.Fatalf("CorrectOption = %q", cards[0].CorrectOption)
	}
}

func TestRecordSessionFreshLearner(t *testing.T) {
	repo := newFakeRepo()
	u := newTestUsecase(repo, nil, fixedClock(2024, 1, 1))

	progress, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID:     "learner-1",
		CardCount:     10,
		TotalAnswered: 10,
		Correct:       8,
	})
	if err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	if progress.CurrentStreakDays != 1 || progress.MaxStreakDays != 1 {
		t.Fatalf("streaks = (%d, %d), want (1, 1)", progress.CurrentStreakDays, progress.MaxStreakDays)
	}
	if progress.CompletedSets != 1 || progress.TotalSessions != 1 {
		t.Fatalf("sets=%d sessions=%d, want 1/1", progress.CompletedSets, progress.TotalSessions)
	}
	if progress.FirstStudyDate != "2024-01-01" || progress.LastStudyDate != "2024-01-01" {
		t.Fatalf("dates = %s / %s", progress.FirstStudyDate, progress.LastStudyDate)
	}

	stored, ok := repo.progress["learner-1"]
	if !ok {
		t.Fatal("progress row not persisted")
	}
	if stored.TotalCardsCorrect != 8 || stored.TotalCardsAnswered != 10 {
		t.Fatalf("stored = %+v", stored)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("session log entries = %d, want 1", len(repo.sessions))
	}
}

func TestRecordSessionTallyValidation(t *testing.T) {
	u := newTestUsecase(newFakeRepo(), nil, fixedClock(2024, 1, 1))

	if _, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID: "l", CardCount: 5, TotalAnswered: 6, Correct: 0,
	}); err == nil {
		t.Fatal("answered > card count must be rejected")
	}
	if _, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID: "l", CardCount: 5, TotalAnswered: 3, Correct: 4,
	}); err == nil {
		t.Fatal("correct > answered must be rejected")
	}
}

func TestRecordSessionClockSkew(t *testing.T) {
	repo := newFakeRepo()
	u := newTestUsecase(repo, nil, fixedClock(2024, 6, 20))

	if _, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID: "learner-2", CardCount: 10, TotalAnswered: 10, Correct: 9,
		RecordedAt: "2024-06-15",
	}); err != nil {
		t.Fatalf("first session: %v", err)
	}

	_, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID: "learner-2", CardCount: 10, TotalAnswered: 10, Correct: 9,
		RecordedAt: "2024-06-14",
	})
	if !errors.Is(err, study.ErrClockSkew) {
		t.Fatalf("backdated session = %v, want ErrClockSkew", err)
	}

	stored := repo.progress["learner-2"]
	if stored.TotalSessions != 1 {
		t.Fatalf("rejected update persisted: %+v", stored)
	}
}

func TestRecordSessionStreakAcrossDays(t *testing.T) {
	repo := newFakeRepo()
	u := newTestUsecase(repo, nil, fixedClock(2024, 3, 1))

	days := []string{"2024-01-01", "2024-01-02", "2024-01-10"}
	wantStreak := []int{1, 2, 1}
	for i, day := range days {
		progress, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
			LearnerID: "learner-3", CardCount: 10, TotalAnswered: 10, Correct: 10,
			RecordedAt: day,
		})
		if err != nil {
			t.Fatalf("day %s: %v", day, err)
		}
		if progress.CurrentStreakDays != wantStreak[i] {
			t.Fatalf("day %s: streak = %d, want %d", day, progress.CurrentStreakDays, wantStreak[i])
		}
	}

	final := repo.progress["learner-3"]
	if final.MaxStreakDays != 2 || final.CompletedSets != 3 {
		t.Fatalf("final = %+v", final)
	}
}

func TestGradeSession(t *testing.T) {
	repo := newFakeRepo()
	seedGeneratedCard(repo, "card-1", "medium")
	seedGeneratedCard(repo, "card-2", "medium")
	u := newTestUsecase(repo, nil, fixedClock(2024, 2, 1))

	resp, err := u.GradeSession(context.Background(), entity.GradeSessionRequest{
		LearnerID: "learner-4",
		Answers: []entity.GradeAnswerItem{
			{CardID: "card-1", OptionIndex: 0}, // correct
			{CardID: "card-1", OptionIndex: 2}, // duplicate: locked no-op
			{CardID: "card-2", OptionIndex: 1}, // wrong
		},
	})
	if err != nil {
		t.Fatalf("GradeSession: %v", err)
	}

	if resp.Result.CardCount != 2 || resp.Result.TotalAnswered != 2 || resp.Result.Correct != 1 {
		t.Fatalf("result = %+v", resp.Result)
	}
	if len(resp.Cards) != 2 {
		t.Fatalf("graded cards = %d, want 2 (duplicate collapsed)", len(resp.Cards))
	}
	if !resp.Cards[0].Correct || resp.Cards[0].ChosenOption != "Hand hygiene" {
		t.Fatalf("card-1 feedback = %+v", resp.Cards[0])
	}
	if resp.Cards[1].Correct {
		t.Fatalf("card-2 feedback = %+v", resp.Cards[1])
	}
	if resp.Cards[1].Rationale == "" {
		t.Fatal("graded card must carry the rationale")
	}
	if resp.Progress.TotalSessions != 1 || resp.Progress.TotalCardsAnswered != 2 {
		t.Fatalf("progress = %+v", resp.Progress)
	}
	if resp.Result.SessionID == "" {
		t.Fatal("session id must be assigned")
	}
}

func TestGradeSessionUnknownCard(t *testing.T) {
	u := newTestUsecase(newFakeRepo(), nil, fixedClock(2024, 2, 1))

	_, err := u.GradeSession(context.Background(), entity.GradeSessionRequest{
		LearnerID: "learner-5",
		Answers:   []entity.GradeAnswerItem{{CardID: "missing", OptionIndex: 0}},
	})
	if err == nil {
		t.Fatal("unknown card must fail grading")
	}
}

func TestGetProgressAbsentLearner(t *testing.T) {
	u := newTestUsecase(newFakeRepo(), nil, fixedClock(2024, 2, 1))

	progress, err := u.GetProgress(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress.TotalSessions != 0 || progress.TargetSets != study.DefaultTargetSets {
		t.Fatalf("absent learner progress = %+v", progress)
	}
	if progress.FirstStudyDate != "" || progress.LastStudyDate != "" {
		t.Fatal("absent learner must have no dates")
	}
	if !progress.IsOnTrack {
		t.Fatal("fresh learner must be on track")
	}
}

func TestGetRecommendation(t *testing.T) {
	repo := newFakeRepo()
	u := newTestUsecase(repo, nil, fixedClock(2024, 2, 1))

	rec, err := u.GetRecommendation(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if rec.Difficulty != string(study.TierEasy) || rec.CardCount != 5 {
		t.Fatalf("fresh learner recommendation = %+v", rec)
	}

	first := study.DateOnly(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.progress["veteran"] = internalEntity.StudyProgress{
		LearnerID:          "veteran",
		TargetSets:         study.DefaultTargetSets,
		TotalCardsAnswered: 200,
		TotalCardsCorrect:  140, // exactly 0.70
		FirstStudyDate:     &first,
		LastStudyDate:      &first,
	}
	rec, err = u.GetRecommendation(context.Background(), "veteran")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Difficulty != string(study.TierHard) || rec.CardCount != 12 {
		t.Fatalf("veteran recommendation = %+v", rec)
	}
}

func TestStoreFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.failProgress = true
	u := newTestUsecase(repo, nil, fixedClock(2024, 2, 1))

	_, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
		LearnerID: "l", CardCount: 10, TotalAnswered: 10, Correct: 5,
	})
	if !errors.Is(err, repository.ErrStore) {
		t.Fatalf("err = %v, want ErrStore", err)
	}
}

func TestConcurrentFinalizationsSerializePerLearner(t *testing.T) {
	repo := newFakeRepo()
	u := newTestUsecase(repo, nil, fixedClock(2024, 4, 1))

	const sessions = 20
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.RecordSession(context.Background(), entity.RecordSessionRequest{
				LearnerID: "shared", CardCount: 10, TotalAnswered: 10, Correct: 7,
			})
			if err != nil {
				t.Errorf("RecordSession: %v", err)
			}
		}()
	}
	wg.Wait()

	final := repo.progress["shared"]
	if final.TotalSessions != sessions {
		t.Fatalf("TotalSessions = %d, want %d (lost update)", final.TotalSessions, sessions)
	}
	if final.TotalCardsAnswered != sessions*10 || final.CompletedSets != sessions {
		t.Fatalf("final = %+v", final)
	}
	// All on one calendar day: the streak must not inflate.
	if final.CurrentStreakDays != 1 {
		t.Fatalf("CurrentStreakDays = %d, want 1", final.CurrentStreakDays)
	}
}
