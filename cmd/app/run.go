package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ycwei/mandarin_tweet_bot/internal/database"
)

// settingEarliestTweetDate is the bot_settings key recording the date of the
// first tweet ever posted, the lower bound for random-date selection.
const settingEarliestTweetDate = "earliest_tweet_date"

// randomDateTries is how many random dates are sampled when looking for a
// random previous tweet.
const randomDateTries = 5

var (
	// ErrDailyLimitReached means the configured number of tweets has
	// already been posted today.
	ErrDailyLimitReached = errors.New("daily tweet limit reached")
	// ErrNoWordsLeft means the unprocessed word queue is empty.
	ErrNoWordsLeft = errors.New("no words left to process")
	// ErrDictionaryUnavailable wraps transport or parse failures from the
	// dictionary. Retryable: the claimed word is gone, the next run simply
	// moves on to the next one.
	ErrDictionaryUnavailable = errors.New("failed to retrieve a valid dictionary response")
	// ErrTweetFailed wraps failures to publish the composed body.
	ErrTweetFailed = errors.New("failed to post tweet")
)

// WordStore is the storage surface the bot needs. *database.Queries
// implements it.
type WordStore interface {
	ClaimNextUnprocessedWord(ctx context.Context) (database.UnprocessedWord, error)
	CountTweetsOnDate(ctx context.Context, date time.Time) (int64, error)
	GetTweetsOnDate(ctx context.Context, params database.GetTweetsOnDateParams) ([]database.Tweet, error)
	InsertTweet(ctx context.Context, params database.InsertTweetParams) error
	ListRecentTweets(ctx context.Context, limit int32) ([]database.Tweet, error)
	DeleteTweet(ctx context.Context, id uuid.UUID) error
	CopyUnprocessedWords(ctx context.Context, words []database.UnprocessedWord) (int64, error)
	GetSetting(ctx context.Context, name string) (string, error)
	UpsertSetting(ctx context.Context, name, value string) error
}

// Dictionary looks up a word's pronunciation and definitions.
type Dictionary interface {
	Lookup(ctx context.Context, simplified, pinyin string) (*DictionaryEntry, error)
}

// SocialClient is the outbound posting surface. *TwitterClient implements it.
type SocialClient interface {
	PostTweet(ctx context.Context, status string) (string, error)
	TweetExists(ctx context.Context, tweetID string) (bool, error)
	DeleteTweet(ctx context.Context, tweetID string) error
	ListRecentTweets(ctx context.Context, count int) ([]TimelineTweet, error)
}

// PostNext performs one posting run: claim a word, look it up, gather the
// previous tweets, compose, post, and record the result.
func (b *Bot) PostNext(ctx context.Context) error {
	today := todayUTC()

	count, err := b.store.CountTweetsOnDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to count today's tweets: %w", err)
	}
	if count >= int64(b.config.TweetsPerDay) {
		return fmt.Errorf("%w: %d tweets already posted today", ErrDailyLimitReached, count)
	}
	dateEntry := int32(count)

	word, err := b.store.ClaimNextUnprocessedWord(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoWordsLeft
		}
		return fmt.Errorf("failed to claim next word: %w", err)
	}

	dictEntry, err := b.dictionary.Lookup(ctx, word.Characters, word.Pinyin)
	if err != nil {
		if errors.Is(err, ErrNoDictionaryEntry) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDictionaryUnavailable, err)
	}

	previous := b.previousTweets(ctx, today, dateEntry)

	body, err := b.composer.Compose(Entry{
		Characters:  dictEntry.Simplified,
		Pinyin:      dictEntry.Pinyin,
		Definitions: dictEntry.Definitions,
	}, previous)
	if err != nil {
		return err
	}

	tweetID, err := b.twitter.PostTweet(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTweetFailed, err)
	}

	record := database.InsertTweetParams{
		ID:        uuid.New(),
		TweetID:   tweetID,
		TweetDate: today,
		DateEntry: dateEntry,
		Word:      dictEntry.Simplified,
	}
	if err := b.store.InsertTweet(ctx, record); err != nil {
		return fmt.Errorf("failed to save posted tweet %s: %w", tweetID, err)
	}

	if _, err := b.store.GetSetting(ctx, settingEarliestTweetDate); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to read earliest tweet date: %w", err)
		}
		if err := b.store.UpsertSetting(ctx, settingEarliestTweetDate, today.Format(dateFormat)); err != nil {
			return fmt.Errorf("failed to save earliest tweet date: %w", err)
		}
	}

	b.logger.Info("Posted word",
		"word", record.Word,
		"tweet_id", record.TweetID,
		"id", record.ID,
		"date_entry", record.DateEntry,
		"date", today.Format(dateFormat))
	return nil
}

// PostWithRetry runs PostNext up to MaxRetries times, retrying only the
// conditions a fresh run can recover from: a dictionary outage, a word with
// no dictionary entry (the next run claims the next word), or a failed post.
func (b *Bot) PostWithRetry(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= b.config.MaxRetries; attempt++ {
		err = b.PostNext(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		b.logger.Warn("Retrying after recoverable failure",
			"attempt", attempt,
			"max_retries", b.config.MaxRetries,
			"error", err)
	}
	return err
}

func retryable(err error) bool {
	return errors.Is(err, ErrDictionaryUnavailable) ||
		errors.Is(err, ErrNoDictionaryEntry) ||
		errors.Is(err, ErrTweetFailed)
}

// previousTweets gathers the references for the tweets posted 7 days ago,
// 30 days ago, and on a random earlier date, each at the same entry number
// within its day. A reference that is missing, malformed, or deleted on the
// platform is returned absent; none of these are fatal.
func (b *Bot) previousTweets(ctx context.Context, today time.Time, dateEntry int32) PreviousTweets {
	return PreviousTweets{
		LastWeek:  b.referenceOnDate(ctx, today.AddDate(0, 0, -7), dateEntry),
		LastMonth: b.referenceOnDate(ctx, today.AddDate(0, 0, -30), dateEntry),
		Random:    b.randomReference(ctx, today, dateEntry),
	}
}

func (b *Bot) referenceOnDate(ctx context.Context, date time.Time, dateEntry int32) TweetRef {
	tweets, err := b.store.GetTweetsOnDate(ctx, database.GetTweetsOnDateParams{
		Date:      date,
		DateEntry: &dateEntry,
	})
	if err != nil {
		b.logger.Warn("Failed to look up previous tweets",
			"date", date.Format(dateFormat),
			"error", err)
		return TweetRef{}
	}
	return b.referenceFromRows(ctx, date, tweets)
}

func (b *Bot) referenceFromRows(ctx context.Context, date time.Time, tweets []database.Tweet) TweetRef {
	if len(tweets) == 0 {
		return TweetRef{}
	}
	if len(tweets) > 1 {
		b.logger.Warn("Multiple tweets recorded for date entry",
			"date", date.Format(dateFormat),
			"count", len(tweets))
	}

	tweet := tweets[0]
	if tweet.TweetID == "" || tweet.Word == "" {
		b.logger.Warn("Skipping malformed tweet record", "id", tweet.ID)
		return TweetRef{}
	}

	exists, err := b.twitter.TweetExists(ctx, tweet.TweetID)
	if err != nil {
		b.logger.Warn("Failed to check whether tweet exists",
			"tweet_id", tweet.TweetID,
			"error", err)
		return TweetRef{}
	}
	if !exists {
		b.logger.Info("Previous tweet no longer exists", "tweet_id", tweet.TweetID)
		return TweetRef{}
	}

	return TweetRef{
		TweetID: tweet.TweetID,
		Word:    tweet.Word,
		URL:     tweetURL(b.config.TwitterUsername, tweet.TweetID),
	}
}

// randomReference samples up to randomDateTries random dates between the
// earliest recorded tweet date and today, and returns the first date's tweet
// that matches the entry number.
func (b *Bot) randomReference(ctx context.Context, today time.Time, dateEntry int32) TweetRef {
	earliest, err := b.store.GetSetting(ctx, settingEarliestTweetDate)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			b.logger.Warn("Failed to read earliest tweet date", "error", err)
		}
		return TweetRef{}
	}

	start, err := time.ParseInLocation(dateFormat, earliest, time.UTC)
	if err != nil {
		b.logger.Warn("Malformed earliest tweet date setting", "value", earliest)
		return TweetRef{}
	}
	if !today.After(start) {
		return TweetRef{}
	}

	dates, err := randomDatesInRange(start, today, randomDateTries)
	if err != nil {
		b.logger.Warn("Failed to sample random dates", "error", err)
		return TweetRef{}
	}

	for _, date := range dates {
		tweets, err := b.store.GetTweetsOnDate(ctx, database.GetTweetsOnDateParams{
			Date:      date,
			DateEntry: &dateEntry,
		})
		if err != nil {
			b.logger.Warn("Failed to look up previous tweets",
				"date", date.Format(dateFormat),
				"error", err)
			continue
		}
		if len(tweets) > 0 {
			return b.referenceFromRows(ctx, date, tweets)
		}
	}
	return TweetRef{}
}
