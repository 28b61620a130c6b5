package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

var wordColumns = []string{
	"id", "term", "definition", "example", "phonetic", "part_of_speech", "level",
	"source_lang", "target_lang", "category", "ease_factor", "interval_days",
	"repetitions", "review_count", "next_review", "last_reviewed", "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func scanWord(row rowScanner) (models.Word, error) {
	var (
		w                        models.Word
		level                    string
		nextReview, lastReviewed sql.NullTime
	)
	err := row.Scan(&w.ID, &w.Term, &w.Definition, &w.Example, &w.Phonetic, &w.PartOfSpeech, &level,
		&w.SourceLang, &w.TargetLang, &w.Category, &w.Review.EaseFactor, &w.Review.Interval,
		&w.Review.Repetitions, &w.ReviewCount, &nextReview, &lastReviewed, &w.CreatedAt)
	if err != nil {
		return models.Word{}, err
	}
	w.Level = models.Level(level)
	w.Review.NextReview = timePtr(nextReview)
	w.Review.LastReviewed = timePtr(lastReviewed)
	w.Review = w.Review.WithDefaults()
	return w, nil
}

func (r *wordRepository) Upsert(ctx context.Context, w models.Word) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("upserting word: term=%s, pair=%s-%s", w.Term, w.SourceLang, w.TargetLang)

	rs := w.Review.WithDefaults()
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO words (term, definition, example, phonetic, part_of_speech, level, source_lang, target_lang, category,
                   ease_factor, interval_days, repetitions, review_count, next_review, last_reviewed, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (term, source_lang, target_lang) DO UPDATE SET
    definition = excluded.definition,
    example = excluded.example,
    phonetic = excluded.phonetic,
    part_of_speech = excluded.part_of_speech,
    level = excluded.level,
    category = excluded.category
RETURNING id
`, w.Term, w.Definition, w.Example, w.Phonetic, w.PartOfSpeech, string(w.Level), w.SourceLang, w.TargetLang, w.Category,
		rs.EaseFactor, rs.Interval, rs.Repetitions, w.ReviewCount, nullableUTC(rs.NextReview), nullableUTC(rs.LastReviewed), utc(createdAt)).Scan(&id)
	if err != nil {
		log.Error("failed to upsert word: %v", err)
		return 0, err
	}
	log.Debug("word saved: id=%d", id)
	return id, nil
}

func (r *wordRepository) Get(ctx context.Context, id int64) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("getting word: id=%d", id)

	query, args, err := sqlBuilder.Select(wordColumns...).From("words").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	w, err := scanWord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word not found: id=%d", id)
		return nil, fmt.Errorf("word %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, err
	}
	return &w, nil
}

func applyWordFilter(q squirrel.SelectBuilder, f models.WordFilter) squirrel.SelectBuilder {
	if f.SourceLang != "" {
		q = q.Where(squirrel.Eq{"source_lang": f.SourceLang})
	}
	if f.TargetLang != "" {
		q = q.Where(squirrel.Eq{"target_lang": f.TargetLang})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.DueAt != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"next_review": nil},
			squirrel.LtOrEq{"next_review": utc(*f.DueAt)},
		})
	}
	return q
}

// List returns matching words in insertion order.
func (r *wordRepository) List(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing words: pair=%s-%s, category=%s, due=%t, limit=%d",
		filter.SourceLang, filter.TargetLang, filter.Category, filter.DueAt != nil, filter.Limit)

	query := applyWordFilter(sqlBuilder.Select(wordColumns...).From("words"), filter).OrderBy("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, err
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			log.Error("failed to scan word row: %v", err)
			return nil, err
		}
		words = append(words, w)
	}
	log.Debug("found %d words", len(words))
	return words, rows.Err()
}

func (r *wordRepository) Count(ctx context.Context, filter models.WordFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	stmt, args, err := applyWordFilter(sqlBuilder.Select("COUNT(*)").From("words"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count words: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *wordRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting word: id=%d", id)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_history WHERE word_id = ?`, id); err != nil {
			log.Error("failed to delete review history: %v", err)
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
		if err != nil {
			log.Error("failed to delete word: %v", err)
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("word %d: %w", id, repository.ErrNotFound)
		}
		return nil
	})
}

func (r *wordRepository) UpdateReview(ctx context.Context, w models.Word) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("updating review state: id=%d, interval=%d, ease=%.2f, reps=%d",
		w.ID, w.Review.Interval, w.Review.EaseFactor, w.Review.Repetitions)

	res, err := r.db.ExecContext(ctx, `
UPDATE words
SET ease_factor = ?, interval_days = ?, repetitions = ?, review_count = ?, next_review = ?, last_reviewed = ?
WHERE id = ?
`, w.Review.EaseFactor, w.Review.Interval, w.Review.Repetitions, w.ReviewCount,
		nullableUTC(w.Review.NextReview), nullableUTC(w.Review.LastReviewed), w.ID)
	if err != nil {
		log.Error("failed to update review state: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("word not found: id=%d", w.ID)
		return fmt.Errorf("word %d: %w", w.ID, repository.ErrNotFound)
	}
	return nil
}

// CountLearned counts words that have at least one passing review in
// their current streak.
func (r *wordRepository) CountLearned(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE repetitions > 0`).Scan(&count)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("word_repo").Error("failed to count learned words: %v", err)
	}
	return count, err
}

func (r *wordRepository) InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("inserting review history: word_id=%d, score=%d", h.WordID, h.Score)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (word_id, score, reviewed_at, next_review, ease_factor, interval_days)
VALUES (?, ?, ?, ?, ?, ?)
`, h.WordID, h.Score, utc(h.ReviewedAt), utc(h.NextReview), h.EaseFactor, h.IntervalDays)
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

// ReviewHistory returns the most recent reviews of a word, newest first.
func (r *wordRepository) ReviewHistory(ctx context.Context, wordID int64, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, word_id, score, reviewed_at, next_review, ease_factor, interval_days
FROM review_history
WHERE word_id = ?
ORDER BY reviewed_at DESC, id DESC
LIMIT ?
`, wordID, limit)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var history []models.ReviewHistory
	for rows.Next() {
		var h models.ReviewHistory
		if err := rows.Scan(&h.ID, &h.WordID, &h.Score, &h.ReviewedAt, &h.NextReview, &h.EaseFactor, &h.IntervalDays); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
