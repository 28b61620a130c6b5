package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/db"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.Migrate(context.Background(), sqlDB, logger.Discard())
	require.NoError(t, err, "failed to apply migrations")

	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// NewWord returns a never-reviewed English→German word in category.
func NewWord(term, category string) models.Word {
	return models.Word{
		Term:         term,
		Definition:   "definition of " + term,
		PartOfSpeech: "noun",
		Level:        models.LevelBeginner,
		SourceLang:   "en",
		TargetLang:   "de",
		Category:     category,
		Review:       models.NewReviewState(),
	}
}
