package main

import (
	"context"
	"fmt"
)

// pruneBatchSize is how many recent records a single prune pass inspects.
const pruneBatchSize = 200

// PruneDeletedTweets walks the most recent tweet records and deletes the
// rows whose tweet no longer exists on the platform, so that future runs do
// not link to dead posts. Returns the number of rows removed.
func (b *Bot) PruneDeletedTweets(ctx context.Context, limit int32) (int, error) {
	tweets, err := b.store.ListRecentTweets(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list recent tweets: %w", err)
	}

	pruned := 0
	for _, tweet := range tweets {
		select {
		case <-ctx.Done():
			return pruned, ctx.Err()
		default:
		}

		exists, err := b.twitter.TweetExists(ctx, tweet.TweetID)
		if err != nil {
			b.logger.Warn("Failed to check whether tweet exists",
				"tweet_id", tweet.TweetID,
				"error", err)
			continue
		}
		if exists {
			continue
		}

		if err := b.store.DeleteTweet(ctx, tweet.ID); err != nil {
			b.logger.Error("Failed to delete record for removed tweet",
				"id", tweet.ID,
				"tweet_id", tweet.TweetID,
				"error", err)
			continue
		}

		b.logger.Warn("Removed record for deleted tweet",
			"id", tweet.ID,
			"tweet_id", tweet.TweetID,
			"word", tweet.Word)
		pruned++
	}

	if pruned > 0 {
		b.logger.Info("Pruned deleted tweets", "count", pruned)
	}
	return pruned, nil
}
