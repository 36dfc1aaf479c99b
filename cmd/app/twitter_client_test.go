package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTwitterClient(serverURL string) *TwitterClient {
	return NewTwitterClient(&Config{
		TwitterConsumerKey:       "consumer-key",
		TwitterConsumerSecret:    "consumer-secret",
		TwitterAccessToken:       "access-token",
		TwitterAccessTokenSecret: "access-token-secret",
		TwitterUsername:          "mandarin_bot",
		TwitterAPIBaseURL:        serverURL,
	}, discardLogger())
}

func TestPostTweet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/statuses/update.json", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "你好 (nǐhǎo): hello", r.PostForm.Get("status"))

		_, _ = w.Write([]byte(`{"id_str": "1234567890"}`))
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	tweetID, err := client.PostTweet(context.Background(), "你好 (nǐhǎo): hello")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", tweetID)
}

func TestPostTweetBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors": [{"code": 187, "message": "Status is a duplicate."}]}`))
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	_, err := client.PostTweet(context.Background(), "duplicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPostTweetMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	_, err := client.PostTweet(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tweet ID")
}

func TestTweetExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/lookup.json", r.URL.Path)
		switch r.URL.Query().Get("id") {
		case "42":
			_, _ = w.Write([]byte(`[{"id_str": "42"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	exists, err := client.TweetExists(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.TweetExists(context.Background(), "43")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteTweet(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id_str": "42"}`))
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	require.NoError(t, client.DeleteTweet(context.Background(), "42"))
	assert.Equal(t, "/statuses/destroy/42.json", gotPath)
}

func TestListRecentTweets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/user_timeline.json", r.URL.Path)
		assert.Equal(t, "mandarin_bot", r.URL.Query().Get("screen_name"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`[{"id_str": "2", "text": "second"}, {"id_str": "1", "text": "first"}]`))
	}))
	defer server.Close()

	client := testTwitterClient(server.URL)

	tweets, err := client.ListRecentTweets(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "2", tweets[0].IDStr)
	assert.Equal(t, "first", tweets[1].Text)
}
