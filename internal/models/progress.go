package models

import "time"

// DailyActivity aggregates all study sessions of one calendar day.
type DailyActivity struct {
	StudyDate      time.Time `json:"study_date"`
	StudyMinutes   int       `json:"study_minutes"`
	WordsReviewed  int       `json:"words_reviewed"`
	WordsLearned   int       `json:"words_learned"`
	CorrectReviews int       `json:"correct_reviews"`
	TotalReviews   int       `json:"total_reviews"`
}

// SessionSummary is what a finished study session contributes to the
// daily activity log.
type SessionSummary struct {
	SessionID     string        `json:"session_id"`
	Category      string        `json:"category"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       time.Time     `json:"ended_at"`
	Duration      time.Duration `json:"duration"`
	DueCount      int           `json:"due_count"`
	TotalReviewed int           `json:"total_reviewed"`
	CorrectCount  int           `json:"correct_count"`
	LearnedCount  int           `json:"learned_count"`
}

type UserProgress struct {
	TotalWordsLearned int        `json:"total_words_learned"`
	StudyStreak       int        `json:"study_streak"`
	ReviewAccuracy    float64    `json:"review_accuracy"`
	TotalStudyMinutes int        `json:"total_study_minutes"`
	LastStudyDate     *time.Time `json:"last_study_date"`
}

type StudyStats struct {
	Days               int     `json:"days"`
	TotalMinutes       int     `json:"total_minutes"`
	DailyAverage       float64 `json:"daily_average"`
	WeekOverWeekChange float64 `json:"week_over_week_change"`
}
