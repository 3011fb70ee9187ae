package study

import "fmt"

// OptionCount is the fixed number of answer options on every flashcard.
const OptionCount = 4

// Source tags where a flashcard came from. Informational only; the engine
// never branches on it.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Flashcard is an immutable unit of study content: one multiple-choice
// question with exactly four distinct options.
type Flashcard struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Rationale     string   `json:"rationale"`
	Source        Source   `json:"source"`
}

// Validate checks the content invariant: Options has exactly OptionCount
// distinct entries and CorrectOption appears among them exactly once.
func (f Flashcard) Validate() error {
	if len(f.Options) != OptionCount {
		return fmt.Errorf("%w: card %q has %d options, want %d", ErrInvalidContent, f.ID, len(f.Options), OptionCount)
	}

	seen := make(map[string]struct{}, OptionCount)
	matches := 0
	for _, opt := range f.Options {
		if opt == "" {
			return fmt.Errorf("%w: card %q has an empty option", ErrInvalidContent, f.ID)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: card %q has duplicate option %q", ErrInvalidContent, f.ID, opt)
		}
		seen[opt] = struct{}{}
		if opt == f.CorrectOption {
			matches++
		}
	}

	if matches != 1 {
		return fmt.Errorf("%w: card %q correct option %q not among options", ErrInvalidContent, f.ID, f.CorrectOption)
	}
	return nil
}
