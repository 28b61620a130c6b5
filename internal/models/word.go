package models

import "time"

// Scheduling defaults applied to cards that have never been reviewed.
const (
	DefaultEaseFactor = 2.5
	DefaultInterval   = 1
	MinEaseFactor     = 1.3
)

// ReviewState is the spaced-repetition metadata embedded in every card.
// A nil NextReview means the card has never been scheduled and is always due.
type ReviewState struct {
	EaseFactor   float64    `json:"ease_factor"`
	Interval     int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	NextReview   *time.Time `json:"next_review,omitempty"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
}

// NewReviewState returns the state of a card that has never been reviewed.
func NewReviewState() ReviewState {
	return ReviewState{
		EaseFactor: DefaultEaseFactor,
		Interval:   DefaultInterval,
	}
}

// WithDefaults fills in zero or out-of-range fields so stored rows with
// missing columns behave like fresh cards.
func (s ReviewState) WithDefaults() ReviewState {
	switch {
	case s.EaseFactor == 0:
		s.EaseFactor = DefaultEaseFactor
	case s.EaseFactor < MinEaseFactor:
		s.EaseFactor = MinEaseFactor
	}
	if s.Interval < 1 {
		s.Interval = DefaultInterval
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	return s
}

// IsDue reports whether the card is eligible for review at now.
func (s ReviewState) IsDue(now time.Time) bool {
	return s.NextReview == nil || !s.NextReview.After(now)
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Word is a term/definition pair plus its review state. Words are passed by
// value; the store owns the persisted copy.
type Word struct {
	ID           int64       `json:"id"`
	Term         string      `json:"term"`
	Definition   string      `json:"definition"`
	Example      string      `json:"example,omitempty"`
	Phonetic     string      `json:"phonetic,omitempty"`
	PartOfSpeech string      `json:"part_of_speech"`
	Level        Level       `json:"level,omitempty"`
	SourceLang   string      `json:"source_lang"`
	TargetLang   string      `json:"target_lang"`
	Category     string      `json:"category"`
	ReviewCount  int         `json:"review_count"`
	Review       ReviewState `json:"review"`
	CreatedAt    time.Time   `json:"created_at"`
}

type WordFilter struct {
	SourceLang string
	TargetLang string
	Category   string
	// DueAt restricts the result to words due at that instant.
	DueAt  *time.Time
	Limit  int
	Offset int
}

type ReviewHistory struct {
	ID           int64     `json:"id"`
	WordID       int64     `json:"word_id"`
	Score        int       `json:"score"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	NextReview   time.Time `json:"next_review"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
}
