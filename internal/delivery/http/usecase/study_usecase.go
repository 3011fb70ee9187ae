package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/entity"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/delivery/http/repository"
	internalEntity "github.com/hanningtontech/nurse-connect-app-sub002/internal/entity"
	"github.com/hanningtontech/nurse-connect-app-sub002/internal/study"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// TextGenerator is the content source boundary: anything that can answer a
// prompt with a JSON document.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type StudyUsecase interface {
	GenerateCards(ctx context.Context, difficulty study.Tier, count int, topic string, includeAnswer bool, useAI bool) ([]entity.FlashcardResponse, error)
	RecordSession(ctx context.Context, req entity.RecordSessionRequest) (*entity.ProgressResponse, error)
	GradeSession(ctx context.Context, req entity.GradeSessionRequest) (*entity.GradeSessionResponse, error)
	GetProgress(ctx context.Context, learnerID string) (*entity.ProgressResponse, error)
	GetRecommendation(ctx context.Context, learnerID string) (*entity.RecommendationResponse, error)
	GetSessionHistory(ctx context.Context, learnerID string, limit int) ([]entity.SessionLogItem, error)
}

type StudyConfig struct {
	DB             *gorm.DB
	LLM            TextGenerator
	PromptTemplate string
	Repository     repository.StudyRepository
	Config         *viper.Viper
	Log            *logrus.Logger

	// Now overrides the clock; nil means time.Now. Streak arithmetic
	// normalizes whatever it returns to a UTC calendar day.
	Now func() time.Time
}

type studyUsecase struct {
	cfg   StudyConfig
	rnd   *rand.Rand
	rndMu sync.Mutex

	// One mutex per learner: applySession -> persist must be a single
	// logical transaction per learner to avoid lost updates from
	// concurrent finalizations (multi-device use).
	locks sync.Map
}

func NewStudyUsecase(cfg StudyConfig) StudyUsecase {
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = defaultPromptTemplate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
	}
	return &studyUsecase{
		cfg: cfg,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (u *studyUsecase) learnerLock(learnerID string) *sync.Mutex {
	v, _ := u.locks.LoadOrStore(learnerID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ---------------------------------------------------------------------------
// Card generation

func (u *studyUsecase) GenerateCards(ctx context.Context, difficulty study.Tier, count int, topic string, includeAnswer bool, useAI bool) ([]entity.FlashcardResponse, error) {
	if difficulty == "" {
		difficulty = study.TierEasy
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}
	if count <= 0 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	disableAI := false
	if u.cfg.Config != nil {
		disableAI = u.cfg.Config.GetBool("llm.disable_generation")
	}

	var cards []study.Flashcard
	if useAI && !disableAI && u.cfg.LLM != nil {
		generated, err := u.generateFromAI(ctx, difficulty, count, topic)
		if err != nil {
			u.cfg.Log.Warnf("AI generation failed, falling back to bank: %v", err)
		} else {
			cards = generated
		}
	}

	if len(cards) < count {
		fallback, err := u.drawFallback(ctx, difficulty, count-len(cards), cards)
		if err != nil {
			if len(cards) == 0 {
				return nil, err
			}
			u.cfg.Log.Warnf("fallback draw incomplete: %v", err)
		}
		cards = append(cards, fallback...)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("no flashcards available for difficulty=%s", difficulty)
	}

	results := make([]entity.FlashcardResponse, 0, len(cards))
	for _, c := range cards {
		resp := entity.FlashcardResponse{
			ID:         c.ID,
			Question:   c.Question,
			Options:    c.Options,
			Difficulty: string(difficulty),
			Topic:      topic,
			Source:     string(c.Source),
		}
		if includeAnswer {
			resp.CorrectOption = c.CorrectOption
			resp.Rationale = c.Rationale
		}
		results = append(results, resp)
	}
	return results, nil
}

type aiCardJSON struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Rationale     string   `json:"rationale"`
}

type aiBatchJSON struct {
	Cards []aiCardJSON `json:"cards"`
}

func (u *studyUsecase) generateFromAI(ctx context.Context, difficulty study.Tier, count int, topic string) ([]study.Flashcard, error) {
	prompt := u.cfg.PromptTemplate
	prompt = strings.ReplaceAll(prompt, "{{count}}", fmt.Sprintf("%d", count))
	prompt = strings.ReplaceAll(prompt, "{{difficulty}}", string(difficulty))
	if topic == "" {
		topic = "general nursing practice"
	}
	prompt = strings.ReplaceAll(prompt, "{{topic}}", topic)

	text, err := u.cfg.LLM.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var parsed aiBatchJSON
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("AI output is not valid json: %w", err)
	}
	if len(parsed.Cards) == 0 {
		return nil, fmt.Errorf("AI returned no cards")
	}

	cards := make([]study.Flashcard, 0, count)
	for _, raw := range parsed.Cards {
		card := study.Flashcard{
			ID:            cardID(raw.Question, difficulty),
			Question:      strings.TrimSpace(raw.Question),
			Options:       raw.Options,
			CorrectOption: raw.CorrectOption,
			Rationale:     strings.TrimSpace(raw.Rationale),
			Source:        study.SourceGenerated,
		}
		// Malformed content is dropped, never repaired.
		if err := card.Validate(); err != nil {
			u.cfg.Log.Warnf("discarding malformed AI card: %v", err)
			continue
		}
		cards = append(cards, card)
		if len(cards) == count {
			break
		}
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no valid cards in AI batch")
	}

	// Cache asynchronously so grading and future fallback can reuse them.
	go func(batch []study.Flashcard, tier study.Tier, tpc string) {
		for _, c := range batch {
			if err := u.saveGenerated(c, tier, tpc); err != nil {
				u.cfg.Log.Warnf("failed to cache generated card %s: %v", c.ID, err)
			}
		}
	}(cards, difficulty, topic)

	return cards, nil
}

func (u *studyUsecase) saveGenerated(card study.Flashcard, difficulty study.Tier, topic string) error {
	existing, err := u.cfg.Repository.FindGeneratedByCardID(u.cfg.DB, card.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return u.cfg.Repository.IncrementUsageCount(u.cfg.DB, card.ID)
	}

	optionsJSON, err := json.Marshal(card.Options)
	if err != nil {
		return err
	}

	return u.cfg.Repository.CreateGenerated(u.cfg.DB, &internalEntity.GeneratedFlashcard{
		CardID:        card.ID,
		Difficulty:    string(difficulty),
		Topic:         topic,
		Question:      card.Question,
		Options:       string(optionsJSON),
		CorrectOption: card.CorrectOption,
		Rationale:     card.Rationale,
		Source:        string(card.Source),
		UsageCount:    1,
	})
}

// drawFallback serves cards without the generator: first from the cache of
// previously generated cards, then from the seeded bank.
func (u *studyUsecase) drawFallback(_ context.Context, difficulty study.Tier, count int, exclude []study.Flashcard) ([]study.Flashcard, error) {
	excludeIDs := make([]string, 0, len(exclude))
	for _, c := range exclude {
		excludeIDs = append(excludeIDs, c.ID)
	}

	var out []study.Flashcard

	cached, err := u.cfg.Repository.FindRandomGeneratedByDifficulty(u.cfg.DB, string(difficulty), count, excludeIDs)
	if err != nil {
		return nil, err
	}
	for _, rec := range cached {
		card, err := cardFromGenerated(&rec)
		if err != nil {
			u.cfg.Log.Warnf("skipping unreadable cached card %s: %v", rec.CardID, err)
			continue
		}
		card.Source = study.SourceFallback
		out = append(out, card)
		if err := u.cfg.Repository.IncrementUsageCount(u.cfg.DB, rec.CardID); err != nil {
			u.cfg.Log.Warnf("failed to bump usage for %s: %v", rec.CardID, err)
		}
	}
	if len(out) >= count {
		return out[:count], nil
	}

	templates, err := u.cfg.Repository.FindTemplatesByDifficulty(u.cfg.DB, string(difficulty))
	if err != nil {
		return out, err
	}
	u.rndMu.Lock()
	u.rnd.Shuffle(len(templates), func(i, j int) { templates[i], templates[j] = templates[j], templates[i] })
	u.rndMu.Unlock()

	seen := make(map[string]struct{}, len(out)+len(excludeIDs))
	for _, id := range excludeIDs {
		seen[id] = struct{}{}
	}
	for _, c := range out {
		seen[c.ID] = struct{}{}
	}
	for _, tpl := range templates {
		if len(out) >= count {
			break
		}
		if _, dup := seen[tpl.TemplateID]; dup {
			continue
		}
		card, err := cardFromTemplate(&tpl)
		if err != nil {
			u.cfg.Log.Warnf("skipping unreadable bank template %s: %v", tpl.TemplateID, err)
			continue
		}
		out = append(out, card)
		seen[tpl.TemplateID] = struct{}{}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no fallback cards for difficulty=%s", difficulty)
	}
	return out, nil
}

func cardFromGenerated(rec *internalEntity.GeneratedFlashcard) (study.Flashcard, error) {
	var options []string
	if err := json.Unmarshal([]byte(rec.Options), &options); err != nil {
		return study.Flashcard{}, fmt.Errorf("failed to parse options: %w", err)
	}
	card := study.Flashcard{
		ID:            rec.CardID,
		Question:      rec.Question,
		Options:       options,
		CorrectOption: rec.CorrectOption,
		Rationale:     rec.Rationale,
		Source:        study.Source(rec.Source),
	}
	if err := card.Validate(); err != nil {
		return study.Flashcard{}, err
	}
	return card, nil
}

func cardFromTemplate(tpl *internalEntity.FlashcardBankTemplate) (study.Flashcard, error) {
	var options []string
	if err := json.Unmarshal([]byte(tpl.Options), &options); err != nil {
		return study.Flashcard{}, fmt.Errorf("failed to parse options: %w", err)
	}
	card := study.Flashcard{
		ID:            tpl.TemplateID,
		Question:      tpl.Question,
		Options:       options,
		CorrectOption: tpl.CorrectOption,
		Rationale:     tpl.Rationale,
		Source:        study.SourceFallback,
	}
	if err := card.Validate(); err != nil {
		return study.Flashcard{}, err
	}
	return card, nil
}

func cardID(question string, difficulty study.Tier) string {
	sum := sha256.Sum256([]byte(question + "|" + string(difficulty)))
	return "card-" + hex.EncodeToString(sum[:8])
}

const defaultPromptTemplate = `You are generating NCLEX-style multiple-choice flashcards for nursing students.

Difficulty: {{difficulty}}
Topic: {{topic}}

Generate {{count}} flashcards. For each card:
1. Write ONE clear clinical question appropriate for the difficulty level
2. Provide EXACTLY 4 answer options, all plausible, ALL DIFFERENT
3. Exactly one option is correct
4. Write a 1-2 sentence rationale explaining why the correct option is right

Difficulty guide:
- easy: recall of fundamentals (vital sign ranges, basic procedures, terminology)
- medium: application of standard interventions and priority setting
- hard: analysis of lab values, drug interactions, complication recognition
- expert: multi-system scenarios, delegation judgment, unexpected findings

IMPORTANT: Return ONLY valid JSON, NO markdown, NO code blocks.
JSON format:
{"cards":[{"question":"...","options":["...","...","...","..."],"correct_option":"...","rationale":"..."}]}`

// ---------------------------------------------------------------------------
// Session finalization

func (u *studyUsecase) RecordSession(ctx context.Context, req entity.RecordSessionRequest) (*entity.ProgressResponse, error) {
	if req.TotalAnswered > req.CardCount {
		return nil, fmt.Errorf("total_answered %d exceeds card_count %d", req.TotalAnswered, req.CardCount)
	}
	if req.Correct > req.TotalAnswered {
		return nil, fmt.Errorf("correct %d exceeds total_answered %d", req.Correct, req.TotalAnswered)
	}

	day, err := u.resolveStudyDay(req.RecordedAt)
	if err != nil {
		return nil, err
	}

	result := study.SessionResult{
		TotalAnswered: req.TotalAnswered,
		Correct:       req.Correct,
		CardCount:     req.CardCount,
	}
	return u.finalizeSession(ctx, req.LearnerID, req.SessionID, req.Difficulty, result, day)
}

func (u *studyUsecase) GradeSession(ctx context.Context, req entity.GradeSessionRequest) (*entity.GradeSessionResponse, error) {
	day, err := u.resolveStudyDay(req.RecordedAt)
	if err != nil {
		return nil, err
	}

	// Resolve each distinct card once; answers for the same card collapse
	// onto one session index so re-submissions hit the locked no-op path.
	cards := make([]study.Flashcard, 0, len(req.Answers))
	indexByCard := make(map[string]int, len(req.Answers))
	for _, ans := range req.Answers {
		if _, ok := indexByCard[ans.CardID]; ok {
			continue
		}
		card, err := u.lookupCard(ans.CardID)
		if err != nil {
			return nil, err
		}
		indexByCard[ans.CardID] = len(cards)
		cards = append(cards, card)
	}

	sess, err := study.NewSession(cards)
	if err != nil {
		return nil, err
	}

	graded := make([]entity.GradedCard, 0, len(cards))
	for _, ans := range req.Answers {
		idx := indexByCard[ans.CardID]
		if _, err := sess.SelectOption(idx, ans.OptionIndex); err != nil {
			if errors.Is(err, study.ErrAlreadyAnswered) {
				continue
			}
			return nil, err
		}
		revealed, err := sess.Reveal(idx)
		if err != nil {
			return nil, err
		}
		graded = append(graded, entity.GradedCard{
			CardID:        ans.CardID,
			ChosenOption:  revealed.ChosenOption,
			Correct:       revealed.Correct,
			CorrectOption: revealed.CorrectOption,
			Rationale:     revealed.Rationale,
		})
	}

	result := sess.End()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	progress, err := u.finalizeSession(ctx, req.LearnerID, sessionID, req.Difficulty, result, day)
	if err != nil {
		return nil, err
	}

	return &entity.GradeSessionResponse{
		Result: entity.SessionResultResponse{
			SessionID:     sessionID,
			CardCount:     result.CardCount,
			TotalAnswered: result.TotalAnswered,
			Correct:       result.Correct,
		},
		Cards:    graded,
		Progress: progress,
	}, nil
}

func (u *studyUsecase) lookupCard(cardID string) (study.Flashcard, error) {
	rec, err := u.cfg.Repository.FindGeneratedByCardID(u.cfg.DB, cardID)
	if err != nil {
		return study.Flashcard{}, err
	}
	if rec != nil {
		return cardFromGenerated(rec)
	}

	tpl, err := u.cfg.Repository.FindTemplateByTemplateID(u.cfg.DB, cardID)
	if err != nil {
		return study.Flashcard{}, err
	}
	if tpl != nil {
		return cardFromTemplate(tpl)
	}
	return study.Flashcard{}, fmt.Errorf("card not found: %s", cardID)
}

// finalizeSession is the read-modify-write of a learner's progress. The
// per-learner lock serializes it; nothing here may be skipped or reordered
// or two devices finishing at once can lose an update.
func (u *studyUsecase) finalizeSession(_ context.Context, learnerID, sessionID, difficulty string, result study.SessionResult, day time.Time) (*entity.ProgressResponse, error) {
	mu := u.learnerLock(learnerID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := u.cfg.Repository.FindProgressByLearnerID(u.cfg.DB, learnerID)
	if err != nil {
		return nil, err
	}
	progress := progressFromRecord(rec)

	next, err := study.ApplySession(progress, result, day)
	if err != nil {
		return nil, err
	}

	updated := recordFromProgress(learnerID, rec, next)
	if err := u.cfg.Repository.UpsertProgress(u.cfg.DB, updated); err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	record := &internalEntity.StudySessionRecord{
		SessionID:     sessionID,
		LearnerID:     learnerID,
		CardCount:     result.CardCount,
		TotalAnswered: result.TotalAnswered,
		Correct:       result.Correct,
		Difficulty:    difficulty,
		RecordedFor:   study.DateOnly(day),
	}
	if err := u.cfg.Repository.CreateSessionRecord(u.cfg.DB, record); err != nil {
		// The progress row is already durable; the history entry is
		// best-effort on top of it.
		u.cfg.Log.Warnf("failed to log session %s: %v", sessionID, err)
	}

	return u.progressDTO(learnerID, next), nil
}

func (u *studyUsecase) resolveStudyDay(recordedAt string) (time.Time, error) {
	if recordedAt == "" {
		return study.DateOnly(u.cfg.Now()), nil
	}
	if t, err := time.Parse("2006-01-02", recordedAt); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid recorded_at %q: want 2006-01-02 or RFC3339", recordedAt)
	}
	return study.DateOnly(t), nil
}

// ---------------------------------------------------------------------------
// Reads

func (u *studyUsecase) GetProgress(_ context.Context, learnerID string) (*entity.ProgressResponse, error) {
	rec, err := u.cfg.Repository.FindProgressByLearnerID(u.cfg.DB, learnerID)
	if err != nil {
		return nil, err
	}
	return u.progressDTO(learnerID, progressFromRecord(rec)), nil
}

func (u *studyUsecase) GetRecommendation(_ context.Context, learnerID string) (*entity.RecommendationResponse, error) {
	rec, err := u.cfg.Repository.FindProgressByLearnerID(u.cfg.DB, learnerID)
	if err != nil {
		return nil, err
	}
	recommendation := study.Recommend(progressFromRecord(rec))
	return &entity.RecommendationResponse{
		LearnerID:  learnerID,
		Difficulty: string(recommendation.Difficulty),
		CardCount:  recommendation.CardCount,
	}, nil
}

func (u *studyUsecase) GetSessionHistory(_ context.Context, learnerID string, limit int) ([]entity.SessionLogItem, error) {
	records, err := u.cfg.Repository.FindSessionsByLearnerID(u.cfg.DB, learnerID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]entity.SessionLogItem, 0, len(records))
	for _, rec := range records {
		items = append(items, entity.SessionLogItem{
			SessionID:     rec.SessionID,
			CardCount:     rec.CardCount,
			TotalAnswered: rec.TotalAnswered,
			Correct:       rec.Correct,
			Difficulty:    rec.Difficulty,
			RecordedFor:   rec.RecordedFor.Format("2006-01-02"),
			CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// ---------------------------------------------------------------------------
// Conversions

// progressFromRecord maps a stored row to the engine's value type. A nil
// row is the spec's "absent" case: a fresh zero record.
func progressFromRecord(rec *internalEntity.StudyProgress) study.Progress {
	if rec == nil {
		return study.NewProgress()
	}
	p := study.Progress{
		CurrentStreakDays:  rec.CurrentStreakDays,
		MaxStreakDays:      rec.MaxStreakDays,
		CompletedSets:      rec.CompletedSets,
		TargetSets:         rec.TargetSets,
		TotalSessions:      rec.TotalSessions,
		TotalCardsAnswered: rec.TotalCardsAnswered,
		TotalCardsCorrect:  rec.TotalCardsCorrect,
	}
	if p.TargetSets <= 0 {
		p.TargetSets = study.DefaultTargetSets
	}
	if rec.FirstStudyDate != nil {
		p.FirstStudyDate = study.DateOnly(*rec.FirstStudyDate)
	}
	if rec.LastStudyDate != nil {
		p.LastStudyDate = study.DateOnly(*rec.LastStudyDate)
	}
	return p
}

func recordFromProgress(learnerID string, prev *internalEntity.StudyProgress, p study.Progress) *internalEntity.StudyProgress {
	rec := &internalEntity.StudyProgress{LearnerID: learnerID}
	if prev != nil {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
	}
	rec.CurrentStreakDays = p.CurrentStreakDays
	rec.MaxStreakDays = p.MaxStreakDays
	rec.CompletedSets = p.CompletedSets
	rec.TargetSets = p.TargetSets
	rec.TotalSessions = p.TotalSessions
	rec.TotalCardsAnswered = p.TotalCardsAnswered
	rec.TotalCardsCorrect = p.TotalCardsCorrect
	if !p.FirstStudyDate.IsZero() {
		first := p.FirstStudyDate
		rec.FirstStudyDate = &first
	}
	if !p.LastStudyDate.IsZero() {
		last := p.LastStudyDate
		rec.LastStudyDate = &last
	}
	return rec
}

func (u *studyUsecase) progressDTO(learnerID string, p study.Progress) *entity.ProgressResponse {
	today := study.DateOnly(u.cfg.Now())
	resp := &entity.ProgressResponse{
		LearnerID:          learnerID,
		CurrentStreakDays:  p.CurrentStreakDays,
		MaxStreakDays:      p.MaxStreakDays,
		CompletedSets:      p.CompletedSets,
		TargetSets:         p.TargetSets,
		TotalSessions:      p.TotalSessions,
		TotalCardsAnswered: p.TotalCardsAnswered,
		TotalCardsCorrect:  p.TotalCardsCorrect,
		Accuracy:           p.Accuracy(),
		ProgressPercentage: p.ProgressPercentage(),
		DaysSinceFirst:     p.DaysSinceFirst(today),
		DaysRemaining:      p.DaysRemaining(today),
		IsOnTrack:          p.IsOnTrack(today),
	}
	if !p.FirstStudyDate.IsZero() {
		resp.FirstStudyDate = p.FirstStudyDate.Format("2006-01-02")
	}
	if !p.LastStudyDate.IsZero() {
		resp.LastStudyDate = p.LastStudyDate.Format("2006-01-02")
	}
	return resp
}
