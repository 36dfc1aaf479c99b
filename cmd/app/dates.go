package main

import (
	"fmt"
	"math/rand"
	"time"
)

// dateFormat is the layout tweet dates are stored and logged in.
const dateFormat = "2006-01-02"

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// randomDatesInRange returns at most k unique random dates between start
// (inclusive) and end (exclusive).
func randomDatesInRange(start, end time.Time, k int) ([]time.Time, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("end %s must be greater than start %s",
			end.Format(dateFormat), start.Format(dateFormat))
	}
	if k < 1 {
		return nil, fmt.Errorf("k %d is not positive", k)
	}

	numDays := int(end.Sub(start).Hours() / 24)
	if k > numDays {
		k = numDays
	}

	dates := make([]time.Time, 0, k)
	for _, days := range rand.Perm(numDays)[:k] {
		dates = append(dates, start.AddDate(0, 0, days))
	}
	return dates, nil
}

// tweetURL returns the public URL of the tweet with the given ID by the user
// with the given username.
func tweetURL(username, tweetID string) string {
	return fmt.Sprintf("https://twitter.com/%s/statuses/%s", username, tweetID)
}

// parsePostTime parses a daily "HH:MM" posting time.
func parsePostTime(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}

// nextRunAt returns the next occurrence of the daily posting time at or
// after now, in UTC.
func nextRunAt(now time.Time, postTime string) time.Time {
	parsed, err := parsePostTime(postTime)
	if err != nil {
		// Config validation rejects malformed values; fall back to the
		// top of the next hour.
		return now.Truncate(time.Hour).Add(time.Hour)
	}

	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
