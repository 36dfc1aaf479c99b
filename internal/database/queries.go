package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries bundles the SQL operations used by the bot.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// ClaimNextUnprocessedWord pops the oldest queued word. The row is deleted
// and returned in one statement so that concurrent runs cannot claim the
// same word. Returns pgx.ErrNoRows when the queue is empty.
func (q *Queries) ClaimNextUnprocessedWord(ctx context.Context) (UnprocessedWord, error) {
	const query = `
		DELETE FROM unprocessed_words
		WHERE id = (
			SELECT id FROM unprocessed_words
			ORDER BY inserted_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, characters, pinyin, inserted_at`

	var word UnprocessedWord
	err := q.pool.QueryRow(ctx, query).Scan(
		&word.ID, &word.Characters, &word.Pinyin, &word.InsertedAt)
	if err != nil {
		return UnprocessedWord{}, err
	}
	return word, nil
}

// CountTweetsOnDate returns how many tweets were recorded for the given date.
func (q *Queries) CountTweetsOnDate(ctx context.Context, date time.Time) (int64, error) {
	const query = `SELECT count(*) FROM tweets WHERE tweet_date = $1`

	var count int64
	if err := q.pool.QueryRow(ctx, query, date).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type GetTweetsOnDateParams struct {
	Date      time.Time
	DateEntry *int32
}

// GetTweetsOnDate returns the tweets recorded on a date, optionally filtered
// on their entry number within that date.
func (q *Queries) GetTweetsOnDate(ctx context.Context, params GetTweetsOnDateParams) ([]Tweet, error) {
	const query = `
		SELECT id, tweet_id, tweet_date, date_entry, word, created_at
		FROM tweets
		WHERE tweet_date = $1 AND ($2::int IS NULL OR date_entry = $2)
		ORDER BY date_entry`

	rows, err := q.pool.Query(ctx, query, params.Date, params.DateEntry)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTweets(rows)
}

type InsertTweetParams struct {
	ID        uuid.UUID
	TweetID   string
	TweetDate time.Time
	DateEntry int32
	Word      string
}

func (q *Queries) InsertTweet(ctx context.Context, params InsertTweetParams) error {
	const query = `
		INSERT INTO tweets (id, tweet_id, tweet_date, date_entry, word)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := q.pool.Exec(ctx, query,
		params.ID, params.TweetID, params.TweetDate, params.DateEntry, params.Word)
	return err
}

// ListRecentTweets returns the most recently recorded tweets, newest first.
func (q *Queries) ListRecentTweets(ctx context.Context, limit int32) ([]Tweet, error) {
	const query = `
		SELECT id, tweet_id, tweet_date, date_entry, word, created_at
		FROM tweets
		ORDER BY tweet_date DESC, date_entry DESC
		LIMIT $1`

	rows, err := q.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTweets(rows)
}

func (q *Queries) DeleteTweet(ctx context.Context, id uuid.UUID) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	return err
}

// CopyUnprocessedWords bulk-inserts queue rows using the COPY protocol.
func (q *Queries) CopyUnprocessedWords(ctx context.Context, words []UnprocessedWord) (int64, error) {
	rows := make([][]any, len(words))
	for i, word := range words {
		rows[i] = []any{word.ID, word.Characters, word.Pinyin, word.InsertedAt}
	}

	count, err := q.pool.CopyFrom(ctx,
		pgx.Identifier{"unprocessed_words"},
		[]string{"id", "characters", "pinyin", "inserted_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy unprocessed words: %w", err)
	}
	return count, nil
}

// GetSetting returns the value of a named setting, or pgx.ErrNoRows if the
// setting has never been written.
func (q *Queries) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := q.pool.QueryRow(ctx,
		`SELECT value FROM bot_settings WHERE name = $1`, name).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (q *Queries) UpsertSetting(ctx context.Context, name, value string) error {
	const query = `
		INSERT INTO bot_settings (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`

	_, err := q.pool.Exec(ctx, query, name, value)
	return err
}

func scanTweets(rows pgx.Rows) ([]Tweet, error) {
	var tweets []Tweet
	for rows.Next() {
		var t Tweet
		if err := rows.Scan(
			&t.ID, &t.TweetID, &t.TweetDate, &t.DateEntry, &t.Word, &t.CreatedAt); err != nil {
			return nil, err
		}
		tweets = append(tweets, t)
	}
	return tweets, rows.Err()
}
