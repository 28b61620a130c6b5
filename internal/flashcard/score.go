package flashcard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidScore is returned for scores outside 1..5.
var ErrInvalidScore = errors.New("flashcard: score must be between 1 and 5")

// Score is the user's recall rating on a 1..5 scale.
type Score int

// The three values the study screen offers.
const (
	Again Score = 1
	Good  Score = 3
	Easy  Score = 5
)

// CanonicalScores lists the scores offered to the user, lowest first.
var CanonicalScores = []Score{Again, Good, Easy}

var scoreNames = map[Score]string{
	Again: "Again",
	Good:  "Good",
	Easy:  "Easy",
}

// IsValid reports whether s is within 1..5.
func (s Score) IsValid() bool {
	return s >= 1 && s <= 5
}

// Passed reports whether the score counts as a successful recall.
func (s Score) Passed() bool {
	return s >= Good
}

// Quality maps the score onto 0..1.
func (s Score) Quality() float64 {
	return float64(s-1) / 4
}

func (s Score) String() string {
	if name, ok := scoreNames[s]; ok {
		return name
	}
	if s.IsValid() {
		return strconv.Itoa(int(s))
	}
	return fmt.Sprintf("Score(%d)", int(s))
}

// ParseScore accepts a button label ("again", "hard", "good", "easy") or a
// digit between 1 and 5.
func ParseScore(v string) (Score, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "again", "hard":
		return Again, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, v)
	}
	s := Score(n)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidScore, n)
	}
	return s, nil
}
