package entity

// FlashcardResponse is one card as served to clients. CorrectOption and
// Rationale are stripped unless the caller asked for answers.
type FlashcardResponse struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option,omitempty"`
	Rationale     string   `json:"rationale,omitempty"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic,omitempty"`
	Source        string   `json:"source"`
}

// RecordSessionRequest finalizes a session the client drove locally.
// recorded_at is the learner's study day ("2006-01-02" or RFC3339);
// absent means today.
type RecordSessionRequest struct {
	LearnerID     string `json:"learner_id" validate:"required"`
	SessionID     string `json:"session_id"`
	CardCount     int    `json:"card_count" validate:"required,min=1"`
	TotalAnswered int    `json:"total_answered" validate:"min=0"`
	Correct       int    `json:"correct" validate:"min=0"`
	Difficulty    string `json:"difficulty"`
	RecordedAt    string `json:"recorded_at"`
}

// GradeAnswerItem is one locked choice in a server-graded session.
type GradeAnswerItem struct {
	CardID      string `json:"card_id" validate:"required"`
	OptionIndex int    `json:"option_index" validate:"min=0,max=3"`
}

// GradeSessionRequest asks the server to grade and finalize a session.
type GradeSessionRequest struct {
	LearnerID  string            `json:"learner_id" validate:"required"`
	SessionID  string            `json:"session_id"`
	Difficulty string            `json:"difficulty"`
	RecordedAt string            `json:"recorded_at"`
	Answers    []GradeAnswerItem `json:"answers" validate:"required,min=1,dive"`
}

// GradedCard is the post-answer view of one card.
type GradedCard struct {
	CardID        string `json:"card_id"`
	ChosenOption  string `json:"chosen_option"`
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correct_option"`
	Rationale     string `json:"rationale,omitempty"`
}

// SessionResultResponse mirrors the engine's frozen tally.
type SessionResultResponse struct {
	SessionID     string `json:"session_id"`
	CardCount     int    `json:"card_count"`
	TotalAnswered int    `json:"total_answered"`
	Correct       int    `json:"correct"`
}

// GradeSessionResponse carries per-card feedback plus the updated progress.
type GradeSessionResponse struct {
	Result   SessionResultResponse `json:"result"`
	Cards    []GradedCard          `json:"cards"`
	Progress *ProgressResponse     `json:"progress"`
}

// ProgressResponse is a learner's progress record plus its derived queries.
type ProgressResponse struct {
	LearnerID          string  `json:"learner_id"`
	CurrentStreakDays  int     `json:"current_streak_days"`
	MaxStreakDays      int     `json:"max_streak_days"`
	CompletedSets      int     `json:"completed_sets"`
	TargetSets         int     `json:"target_sets"`
	TotalSessions      int     `json:"total_sessions"`
	TotalCardsAnswered int     `json:"total_cards_answered"`
	TotalCardsCorrect  int     `json:"total_cards_correct"`
	Accuracy           float64 `json:"accuracy"`
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysSinceFirst     int     `json:"days_since_first"`
	DaysRemaining      int     `json:"days_remaining"`
	IsOnTrack          bool    `json:"is_on_track"`
	FirstStudyDate     string  `json:"first_study_date,omitempty"` // 2006-01-02
	LastStudyDate      string  `json:"last_study_date,omitempty"`  // 2006-01-02
}

// RecommendationResponse is the difficulty selector's advice.
type RecommendationResponse struct {
	LearnerID  string `json:"learner_id"`
	Difficulty string `json:"difficulty"`
	CardCount  int    `json:"card_count"`
}

// SessionLogItem is one entry of a learner's session history.
type SessionLogItem struct {
	SessionID     string `json:"session_id"`
	CardCount     int    `json:"card_count"`
	TotalAnswered int    `json:"total_answered"`
	Correct       int    `json:"correct"`
	Difficulty    string `json:"difficulty,omitempty"`
	RecordedFor   string `json:"recorded_for"` // 2006-01-02
	CreatedAt     string `json:"created_at"`
}
