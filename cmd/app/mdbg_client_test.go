package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordResultsHTML = `<!DOCTYPE html>
<html><body>
<table class="wordresults">
<tbody>
<tr class="row">
  <td><div class="hanzi"><span class="mpt0">你</span><span class="mpt1">好</span></div></td>
  <td><div class="pinyin"><span class="mpt0">nǐ</span><span class="mpt1">hǎo</span></div></td>
  <td><div class="defs">hello/hi/how are you?</div></td>
</tr>
<tr class="row">
  <td><div class="hanzi"><span class="mpt0">你</span><span class="mpt1">好</span><span class="mpt2">吗</span></div></td>
  <td><div class="pinyin"><span class="mpt0">nǐ</span><span class="mpt1">hǎo</span><span class="mpt2">ma</span></div></td>
  <td><div class="defs">how are you?</div></td>
</tr>
</tbody>
</table>
</body></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMDBGLookup(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("wdqb")
		assert.Equal(t, "worddict", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(wordResultsHTML))
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	entry, err := client.Lookup(context.Background(), "你好", "nǐhǎo")
	require.NoError(t, err)
	assert.Equal(t, "你好", gotQuery)
	assert.Equal(t, "你好", entry.Simplified)
	assert.Equal(t, "nǐhǎo", entry.Pinyin)
	assert.Equal(t, []string{"hello", "hi", "how are you?"}, entry.Definitions)
}

func TestMDBGLookupCorrectsPinyin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(wordResultsHTML))
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	// The word list's pinyin disagrees with the dictionary; the
	// dictionary wins.
	entry, err := client.Lookup(context.Background(), "你好", "nihao")
	require.NoError(t, err)
	assert.Equal(t, "nǐhǎo", entry.Pinyin)
}

func TestMDBGLookupMatchesExactCharactersOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(wordResultsHTML))
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	entry, err := client.Lookup(context.Background(), "你好吗", "nǐhǎoma")
	require.NoError(t, err)
	assert.Equal(t, []string{"how are you?"}, entry.Definitions)
}

func TestMDBGLookupNoEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(wordResultsHTML))
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	_, err := client.Lookup(context.Background(), "猫", "māo")
	assert.ErrorIs(t, err, ErrNoDictionaryEntry)
}

func TestMDBGLookupNoResultsTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	_, err := client.Lookup(context.Background(), "你好", "nǐhǎo")
	assert.ErrorIs(t, err, ErrNoDictionaryEntry)
}

func TestMDBGLookupBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewMDBGClient(server.URL, discardLogger())

	_, err := client.Lookup(context.Background(), "你好", "nǐhǎo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDictionaryEntry)
	assert.Contains(t, err.Error(), "503")
}
