package entity

import (
	"time"

	"gorm.io/gorm"
)

// StudyProgress - one persistent progress row per learner
type StudyProgress struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	LearnerID          string         `gorm:"uniqueIndex;size:100;not null" json:"learner_id"`
	CurrentStreakDays  int            `gorm:"not null;default:0" json:"current_streak_days"`
	MaxStreakDays      int            `gorm:"not null;default:0" json:"max_streak_days"`
	CompletedSets      int            `gorm:"not null;default:0" json:"completed_sets"`
	TargetSets         int            `gorm:"not null;default:40" json:"target_sets"`
	TotalSessions      int            `gorm:"not null;default:0" json:"total_sessions"`
	TotalCardsAnswered int            `gorm:"not null;default:0" json:"total_cards_answered"`
	TotalCardsCorrect  int            `gorm:"not null;default:0" json:"total_cards_correct"`
	FirstStudyDate     *time.Time     `json:"first_study_date,omitempty"` // date-only, nil until first session
	LastStudyDate      *time.Time     `json:"last_study_date,omitempty"`  // date-only
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudyProgress) TableName() string {
	return "study_progress"
}

// FlashcardBankTemplate - seeded fallback content, used when generation is
// disabled or fails
type FlashcardBankTemplate struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	TemplateID    string         `gorm:"uniqueIndex;size:50;not null" json:"template_id"` // e.g. "e-cardio-1"
	Difficulty    string         `gorm:"size:20;not null;index" json:"difficulty"`        // easy, medium, hard, expert
	Topic         string         `gorm:"size:50;index" json:"topic"`                      // cardio, pharm, fundamentals...
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       string         `gorm:"type:text;not null" json:"options"` // JSON array of 4 strings
	CorrectOption string         `gorm:"size:200;not null" json:"correct_option"`
	Rationale     string         `gorm:"type:text" json:"rationale"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FlashcardBankTemplate) TableName() string {
	return "flashcard_bank_templates"
}

// GeneratedFlashcard - cache of AI-generated cards so grading and fallback
// can reuse them
type GeneratedFlashcard struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CardID        string         `gorm:"uniqueIndex;size:100;not null" json:"card_id"` // content hash
	Difficulty    string         `gorm:"size:20;not null;index" json:"difficulty"`
	Topic         string         `gorm:"size:50;index" json:"topic"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       string         `gorm:"type:text;not null" json:"options"` // JSON array of 4 strings
	CorrectOption string         `gorm:"size:200;not null" json:"correct_option"`
	Rationale     string         `gorm:"type:text" json:"rationale"`
	Source        string         `gorm:"size:20;default:generated" json:"source"` // generated, fallback
	UsageCount    int            `gorm:"default:0" json:"usage_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GeneratedFlashcard) TableName() string {
	return "generated_flashcards"
}

// StudySessionRecord - append-only log of finalized sessions per learner
type StudySessionRecord struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	SessionID     string         `gorm:"uniqueIndex;size:100;not null" json:"session_id"`
	LearnerID     string         `gorm:"size:100;not null;index" json:"learner_id"`
	CardCount     int            `gorm:"not null" json:"card_count"`
	TotalAnswered int            `gorm:"not null" json:"total_answered"`
	Correct       int            `gorm:"not null" json:"correct"`
	Difficulty    string         `gorm:"size:20" json:"difficulty"`
	RecordedFor   time.Time      `gorm:"not null;index" json:"recorded_for"` // study day, date-only
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudySessionRecord) TableName() string {
	return "study_session_records"
}
