package study

import "fmt"

// CardState is the per-card answering state within a session.
type CardState int

const (
	Unanswered CardState = iota
	Locked
	Revealed
)

// SessionResult is the frozen tally of one study sitting.
type SessionResult struct {
	TotalAnswered int `json:"total_answered"`
	Correct       int `json:"correct"`
	CardCount     int `json:"card_count"`
}

// answer records one locked card. Once written it never changes.
type answer struct {
	option   int
	correct  bool
	revealed bool
}

// RevealedCard exposes the post-answer view of a card: the chosen option,
// whether it was correct, and the rationale to display.
type RevealedCard struct {
	ChosenOption  string `json:"chosen_option"`
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correct_option"`
	Rationale     string `json:"rationale"`
}

// Session drives one study sitting over an ordered list of flashcards.
// It is driven synchronously by a single caller; an answer is permanent
// once given, which keeps the final tally deterministic regardless of how
// often the learner revisits cards.
type Session struct {
	cards   []Flashcard
	cursor  int
	answers map[int]*answer
	correct int
	ended   bool
}

// NewSession validates every card and constructs a session positioned on
// the first card with nothing answered. An empty or malformed batch is
// rejected with ErrInvalidContent.
func NewSession(cards []Flashcard) (*Session, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: empty card batch", ErrInvalidContent)
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	batch := make([]Flashcard, len(cards))
	copy(batch, cards)

	return &Session{
		cards:   batch,
		answers: make(map[int]*answer, len(batch)),
	}, nil
}

// SelectOption locks the learner's choice for the card at cardIndex and
// returns whether it was correct. Re-submitting an already-answered card
// signals ErrAlreadyAnswered and never changes the tally.
func (s *Session) SelectOption(cardIndex, optionIndex int) (bool, error) {
	if s.ended {
		return false, ErrSessionEnded
	}
	if cardIndex < 0 || cardIndex >= len(s.cards) {
		return false, fmt.Errorf("%w: card index %d", ErrInvalidOption, cardIndex)
	}
	if optionIndex < 0 || optionIndex >= OptionCount {
		return false, fmt.Errorf("%w: option index %d", ErrInvalidOption, optionIndex)
	}
	if prev, ok := s.answers[cardIndex]; ok {
		return prev.correct, ErrAlreadyAnswered
	}

	card := s.cards[cardIndex]
	correct := card.Options[optionIndex] == card.CorrectOption
	s.answers[cardIndex] = &answer{option: optionIndex, correct: correct}
	if correct {
		s.correct++
	}
	return correct, nil
}

// Reveal transitions an answered card to Revealed, exposing its rationale
// and correct option. It has no effect on the tally and fails with
// ErrNotAnswered before the card is locked.
func (s *Session) Reveal(cardIndex int) (RevealedCard, error) {
	if cardIndex < 0 || cardIndex >= len(s.cards) {
		return RevealedCard{}, fmt.Errorf("%w: card index %d", ErrInvalidOption, cardIndex)
	}
	ans, ok := s.answers[cardIndex]
	if !ok {
		return RevealedCard{}, ErrNotAnswered
	}
	ans.revealed = true

	card := s.cards[cardIndex]
	return RevealedCard{
		ChosenOption:  card.Options[ans.option],
		Correct:       ans.correct,
		CorrectOption: card.CorrectOption,
		Rationale:     card.Rationale,
	}, nil
}

// Advance moves the cursor forward one card. Navigation saturates at the
// last card; moving past the edge is a no-op, not an error.
func (s *Session) Advance() {
	if s.cursor < len(s.cards)-1 {
		s.cursor++
	}
}

// Retreat moves the cursor back one card, saturating at the first.
func (s *Session) Retreat() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Cursor returns the current card index.
func (s *Session) Cursor() int { return s.cursor }

// Card returns the flashcard under the cursor.
func (s *Session) Card() Flashcard { return s.cards[s.cursor] }

// IsLastCard reports whether the cursor sits on the final card.
func (s *Session) IsLastCard() bool { return s.cursor == len(s.cards)-1 }

// State returns the answering state of the card at cardIndex.
func (s *Session) State(cardIndex int) CardState {
	ans, ok := s.answers[cardIndex]
	if !ok {
		return Unanswered
	}
	if ans.revealed {
		return Revealed
	}
	return Locked
}

// Answered reports whether the card at cardIndex has been answered.
func (s *Session) Answered(cardIndex int) bool {
	_, ok := s.answers[cardIndex]
	return ok
}

// AnsweredCount returns how many cards have been answered so far.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// CorrectCount returns how many answered cards were correct.
func (s *Session) CorrectCount() int { return s.correct }

// AllAnswered reports whether every card in the session has been answered.
func (s *Session) AllAnswered() bool { return len(s.answers) == len(s.cards) }

// Ended reports whether the session has been frozen.
func (s *Session) Ended() bool { return s.ended }

// End freezes the session and returns its tally. Ending is allowed at any
// cursor position with any number of answered cards, including zero; a
// partial sitting still produces a valid result. End is idempotent.
func (s *Session) End() SessionResult {
	s.ended = true
	return SessionResult{
		TotalAnswered: len(s.answers),
		Correct:       s.correct,
		CardCount:     len(s.cards),
	}
}
