package study

import "errors"

// Sentinel errors for the study engine. Check with errors.Is.
var (
	// ErrInvalidContent is returned when a flashcard violates the content
	// invariant: exactly 4 distinct options containing the correct option
	// exactly once. Malformed content is rejected, never repaired.
	ErrInvalidContent = errors.New("study: flashcard violates content invariant")

	// ErrAlreadyAnswered signals a re-submission on a card that is already
	// locked. The tally is untouched; callers may treat it as a no-op.
	ErrAlreadyAnswered = errors.New("study: card already answered")

	// ErrNotAnswered is returned by Reveal on a card that has not been
	// answered yet.
	ErrNotAnswered = errors.New("study: card not answered yet")

	// ErrInvalidOption is returned when an option index is outside [0, 4).
	ErrInvalidOption = errors.New("study: option index out of range")

	// ErrSessionEnded is returned for mutations on a frozen session.
	ErrSessionEnded = errors.New("study: session already ended")

	// ErrClockSkew is returned by ApplySession when the session date is
	// earlier than the last recorded study date. The caller must not
	// persist the update.
	ErrClockSkew = errors.New("study: session date precedes last study date")
)
