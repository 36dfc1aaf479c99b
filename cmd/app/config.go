package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string

	TwitterConsumerKey       string
	TwitterConsumerSecret    string
	TwitterAccessToken       string
	TwitterAccessTokenSecret string
	TwitterUsername          string
	TwitterAPIBaseURL        string

	MDBGBaseURL string

	MaxTweetChars  int
	TweetURLLength int
	TweetsPerDay   int

	PostTime      string
	PruneInterval time.Duration
	MaxRetries    int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Error loading .env file", "error", err)
	}

	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	dbSSLMode := os.Getenv("DB_SSLMODE")

	if dbUser == "" || dbPassword == "" || dbHost == "" || dbPort == "" || dbName == "" || dbSSLMode == "" {
		return nil, fmt.Errorf("all database environment variables (DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME, DB_SSLMODE) are required")
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)

	consumerKey := os.Getenv("TWITTER_CONSUMER_KEY")
	consumerSecret := os.Getenv("TWITTER_CONSUMER_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessTokenSecret := os.Getenv("TWITTER_ACCESS_TOKEN_SECRET")
	username := os.Getenv("TWITTER_USERNAME")

	if consumerKey == "" || consumerSecret == "" || accessToken == "" || accessTokenSecret == "" {
		return nil, fmt.Errorf("all Twitter credential environment variables (TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET, TWITTER_ACCESS_TOKEN, TWITTER_ACCESS_TOKEN_SECRET) are required")
	}

	if username == "" {
		return nil, fmt.Errorf("TWITTER_USERNAME environment variable is required")
	}

	config := &Config{
		DatabaseURL:              dbURL,
		TwitterConsumerKey:       consumerKey,
		TwitterConsumerSecret:    consumerSecret,
		TwitterAccessToken:       accessToken,
		TwitterAccessTokenSecret: accessTokenSecret,
		TwitterUsername:          username,
		TwitterAPIBaseURL:        envOrDefault("TWITTER_API_URL", "https://api.twitter.com/1.1"),
		MDBGBaseURL:              envOrDefault("MDBG_URL", "https://www.mdbg.net/chinese/dictionary"),
		MaxTweetChars:            envIntOrDefault("TWEET_MAX_CHARS", 280),
		TweetURLLength:           envIntOrDefault("TWEET_URL_LENGTH", 23),
		TweetsPerDay:             envIntOrDefault("TWEETS_PER_DAY", 3),
		PostTime:                 envOrDefault("POST_TIME", "09:00"),
		PruneInterval:            6 * time.Hour,
		MaxRetries:               envIntOrDefault("MAX_RETRIES", 3),
	}

	if pruneIntervalEnv := os.Getenv("PRUNE_INTERVAL"); pruneIntervalEnv != "" {
		if parsed, err := time.ParseDuration(pruneIntervalEnv); err == nil && parsed > 0 {
			config.PruneInterval = parsed
		}
	}

	if _, err := parsePostTime(config.PostTime); err != nil {
		return nil, fmt.Errorf("invalid POST_TIME %q: %w", config.PostTime, err)
	}

	return config, nil
}

// ComposerConfig returns the platform accounting constants for the composer.
func (c *Config) ComposerConfig() ComposerConfig {
	return ComposerConfig{MaxChars: c.MaxTweetChars, URLLength: c.TweetURLLength}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(name string, fallback int) int {
	if value := os.Getenv(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
