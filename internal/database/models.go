package database

import (
	"time"

	"github.com/google/uuid"
)

// UnprocessedWord is a queued vocabulary word that has not been tweeted yet.
type UnprocessedWord struct {
	ID         uuid.UUID
	Characters string
	Pinyin     string
	InsertedAt time.Time
}

// Tweet is the record of a previously posted tweet, used for cross-linking.
type Tweet struct {
	ID        uuid.UUID
	TweetID   string
	TweetDate time.Time
	DateEntry int32
	Word      string
	CreatedAt time.Time
}
