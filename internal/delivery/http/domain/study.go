package domain

var (
	STUDY_CARDS_GENERATE_SUCCESS      = "Flashcards generated"
	STUDY_CARDS_GENERATE_FAILED       = "Failed to generate flashcards"
	STUDY_SESSION_RECORD_SUCCESS      = "Study session recorded"
	STUDY_SESSION_RECORD_FAILED       = "Failed to record study session"
	STUDY_SESSION_GRADE_SUCCESS       = "Study session graded"
	STUDY_SESSION_GRADE_FAILED        = "Failed to grade study session"
	STUDY_PROGRESS_GET_SUCCESS        = "Study progress retrieved"
	STUDY_PROGRESS_GET_FAILED         = "Failed to retrieve study progress"
	STUDY_RECOMMENDATION_GET_SUCCESS  = "Recommendation retrieved"
	STUDY_RECOMMENDATION_GET_FAILED   = "Failed to retrieve recommendation"
	STUDY_SESSION_HISTORY_GET_SUCCESS = "Session history retrieved"
	STUDY_SESSION_HISTORY_GET_FAILED  = "Failed to retrieve session history"
)
