package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ycwei/mandarin_tweet_bot/internal/database"
)

// ImportWords reads a word list file and queues its entries as unprocessed
// words. Each line has the form "word, pinyin".
func (b *Bot) ImportWords(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			b.logger.Error("Failed to close word list", "error", closeErr)
		}
	}()

	words, err := parseWordList(file, b.logger)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("no valid words found in %s", path)
	}

	count, err := b.store.CopyUnprocessedWords(ctx, words)
	if err != nil {
		return err
	}

	b.logger.Info("Imported words", "file", path, "count", count)
	return nil
}

// parseWordList reads "word, pinyin" lines, dropping malformed ones. Pinyin
// may carry neutral-tone 5 digits from the source lists; those are stripped,
// and anything still non-alphabetic afterwards is rejected. Duplicate words
// keep their first occurrence.
func parseWordList(r io.Reader, logger *slog.Logger) ([]database.UnprocessedWord, error) {
	var words []database.UnprocessedWord
	seen := make(map[string]bool)
	now := time.Now().UTC()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			logger.Warn("Skipping invalid line", "line", line)
			continue
		}

		word := strings.TrimSpace(parts[0])
		pinyin := strings.TrimSpace(parts[1])
		if word == "" || pinyin == "" {
			logger.Warn("Skipping invalid line", "line", line)
			continue
		}

		pinyin = strings.ReplaceAll(pinyin, "5", "")
		if !isAlphabetic(pinyin) {
			logger.Warn("Skipping word with non-alphabetic pinyin",
				"word", word,
				"pinyin", pinyin)
			continue
		}

		if seen[word] {
			continue
		}
		seen[word] = true

		words = append(words, database.UnprocessedWord{
			ID:         uuid.New(),
			Characters: word,
			Pinyin:     pinyin,
			InsertedAt: now,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return words, nil
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
