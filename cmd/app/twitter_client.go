package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

// TwitterClient talks to the Twitter v1.1 REST API. All requests are signed
// with OAuth 1.0a user context credentials by the underlying transport.
type TwitterClient struct {
	baseURL    string
	username   string
	httpClient *http.Client
	logger     *slog.Logger
}

// TimelineTweet is one entry of the authenticated user's timeline.
type TimelineTweet struct {
	IDStr string `json:"id_str"`
	Text  string `json:"text"`
}

func NewTwitterClient(config *Config, logger *slog.Logger) *TwitterClient {
	oauthConfig := oauth1.NewConfig(config.TwitterConsumerKey, config.TwitterConsumerSecret)
	token := oauth1.NewToken(config.TwitterAccessToken, config.TwitterAccessTokenSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	return &TwitterClient{
		baseURL:    config.TwitterAPIBaseURL,
		username:   config.TwitterUsername,
		httpClient: httpClient,
		logger:     logger,
	}
}

// PostTweet publishes the given body and returns the new tweet's ID.
func (c *TwitterClient) PostTweet(ctx context.Context, status string) (string, error) {
	form := url.Values{"status": {status}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/statuses/update.json", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		IDStr string `json:"id_str"`
	}
	if err := c.do(req, &result); err != nil {
		return "", fmt.Errorf("failed to post tweet: %w", err)
	}
	if result.IDStr == "" {
		return "", fmt.Errorf("post response contained no tweet ID")
	}
	return result.IDStr, nil
}

// TweetExists reports whether a tweet with the given ID still exists.
func (c *TwitterClient) TweetExists(ctx context.Context, tweetID string) (bool, error) {
	query := url.Values{"id": {tweetID}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/statuses/lookup.json?"+query.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build lookup request: %w", err)
	}

	var result []struct {
		IDStr string `json:"id_str"`
	}
	if err := c.do(req, &result); err != nil {
		return false, fmt.Errorf("failed to look up tweet %s: %w", tweetID, err)
	}
	return len(result) == 1 && result[0].IDStr == tweetID, nil
}

// DeleteTweet removes a tweet posted by the authenticated user.
func (c *TwitterClient) DeleteTweet(ctx context.Context, tweetID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/statuses/destroy/"+tweetID+".json", nil)
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to delete tweet %s: %w", tweetID, err)
	}
	return nil
}

// ListRecentTweets returns the authenticated user's most recent tweets.
func (c *TwitterClient) ListRecentTweets(ctx context.Context, count int) ([]TimelineTweet, error) {
	query := url.Values{
		"screen_name": {c.username},
		"count":       {strconv.Itoa(count)},
		"trim_user":   {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/statuses/user_timeline.json?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline request: %w", err)
	}

	var tweets []TimelineTweet
	if err := c.do(req, &tweets); err != nil {
		return nil, fmt.Errorf("failed to list recent tweets: %w", err)
	}
	return tweets, nil
}

func (c *TwitterClient) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("Failed to close Twitter response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twitter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
