package repository

import (
	"errors"
	"fmt"

	"github.com/hanningtontech/nurse-connect-app-sub002/internal/entity"
	"gorm.io/gorm"
)

// ErrStore marks persistence failures. The caller's in-memory computation
// stays valid; only durability of the write is at risk until a retry
// succeeds. Check with errors.Is.
var ErrStore = errors.New("study store error")

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

type (
	StudyRepository interface {
		// Progress operations. FindProgressByLearnerID returns (nil, nil)
		// when no record exists; absent is a valid state, not an error.
		FindProgressByLearnerID(db *gorm.DB, learnerID string) (*entity.StudyProgress, error)
		UpsertProgress(db *gorm.DB, progress *entity.StudyProgress) error

		// Session log operations
		CreateSessionRecord(db *gorm.DB, record *entity.StudySessionRecord) error
		FindSessionsByLearnerID(db *gorm.DB, learnerID string, limit int) ([]entity.StudySessionRecord, error)

		// Generated flashcard cache operations
		CreateGenerated(db *gorm.DB, card *entity.GeneratedFlashcard) error
		FindGeneratedByCardID(db *gorm.DB, cardID string) (*entity.GeneratedFlashcard, error)
		FindRandomGeneratedByDifficulty(db *gorm.DB, difficulty string, limit int, excludeIDs []string) ([]entity.GeneratedFlashcard, error)
		IncrementUsageCount(db *gorm.DB, cardID string) error

		// Fallback bank operations
		FindTemplateByTemplateID(db *gorm.DB, templateID string) (*entity.FlashcardBankTemplate, error)
		FindTemplatesByDifficulty(db *gorm.DB, difficulty string) ([]entity.FlashcardBankTemplate, error)
		CountTemplatesByDifficulty(db *gorm.DB, difficulty string) (int64, error)
	}

	studyRepository struct {
		db *gorm.DB
	}
)

func NewStudyRepository(db *gorm.DB) StudyRepository {
	return &studyRepository{db: db}
}

// Progress operations
func (r *studyRepository) FindProgressByLearnerID(db *gorm.DB, learnerID string) (*entity.StudyProgress, error) {
	if db == nil {
		db = r.db
	}
	var progress entity.StudyProgress
	err := db.Where("learner_id = ?", learnerID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find progress", err)
	}
	return &progress, nil
}

func (r *studyRepository) UpsertProgress(db *gorm.DB, progress *entity.StudyProgress) error {
	if db == nil {
		db = r.db
	}
	err := db.Where("learner_id = ?", progress.LearnerID).Assign(progress).FirstOrCreate(progress).Error
	if err != nil {
		return storeErr("upsert progress", err)
	}
	return nil
}

// Session log operations
func (r *studyRepository) CreateSessionRecord(db *gorm.DB, record *entity.StudySessionRecord) error {
	if db == nil {
		db = r.db
	}
	if err := db.Create(record).Error; err != nil {
		return storeErr("create session record", err)
	}
	return nil
}

func (r *studyRepository) FindSessionsByLearnerID(db *gorm.DB, learnerID string, limit int) ([]entity.StudySessionRecord, error) {
	if db == nil {
		db = r.db
	}
	var records []entity.StudySessionRecord
	query := db.Where("learner_id = ?", learnerID).Order("recorded_for DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, storeErr("find session records", err)
	}
	return records, nil
}

// Generated flashcard cache operations
func (r *studyRepository) CreateGenerated(db *gorm.DB, card *entity.GeneratedFlashcard) error {
	if db == nil {
		db = r.db
	}
	if err := db.Create(card).Error; err != nil {
		return storeErr("create generated card", err)
	}
	return nil
}

func (r *studyRepository) FindGeneratedByCardID(db *gorm.DB, cardID string) (*entity.GeneratedFlashcard, error) {
	if db == nil {
		db = r.db
	}
	var card entity.GeneratedFlashcard
	err := db.Where("card_id = ?", cardID).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find generated card", err)
	}
	return &card, nil
}

func (r *studyRepository) FindRandomGeneratedByDifficulty(db *gorm.DB, difficulty string, limit int, excludeIDs []string) ([]entity.GeneratedFlashcard, error) {
	if db == nil {
		db = r.db
	}
	var cards []entity.GeneratedFlashcard
	query := db.Where("difficulty = ?", difficulty)
	if len(excludeIDs) > 0 {
		query = query.Where("card_id NOT IN ?", excludeIDs)
	}
	if err := query.Order("RANDOM()").Limit(limit).Find(&cards).Error; err != nil {
		return nil, storeErr("find random generated cards", err)
	}
	return cards, nil
}

func (r *studyRepository) IncrementUsageCount(db *gorm.DB, cardID string) error {
	if db == nil {
		db = r.db
	}
	err := db.Model(&entity.GeneratedFlashcard{}).
		Where("card_id = ?", cardID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
	if err != nil {
		return storeErr("increment usage count", err)
	}
	return nil
}

// Fallback bank operations
func (r *studyRepository) FindTemplateByTemplateID(db *gorm.DB, templateID string) (*entity.FlashcardBankTemplate, error) {
	if db == nil {
		db = r.db
	}
	var template entity.FlashcardBankTemplate
	err := db.Where("template_id = ?", templateID).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find template", err)
	}
	return &template, nil
}

func (r *studyRepository) FindTemplatesByDifficulty(db *gorm.DB, difficulty string) ([]entity.FlashcardBankTemplate, error) {
	if db == nil {
		db = r.db
	}
	var templates []entity.FlashcardBankTemplate
	if err := db.Where("difficulty = ?", difficulty).Find(&templates).Error; err != nil {
		return nil, storeErr("find templates", err)
	}
	return templates, nil
}

func (r *studyRepository) CountTemplatesByDifficulty(db *gorm.DB, difficulty string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&entity.FlashcardBankTemplate{}).Where("difficulty = ?", difficulty).Count(&count).Error
	if err != nil {
		return 0, storeErr("count templates", err)
	}
	return count, nil
}
