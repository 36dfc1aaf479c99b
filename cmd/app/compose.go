package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ErrEntryTooLong reports that the current word and pinyin alone exceed the
// tweet length limit. The entry can never be posted, so callers must not
// retry it; truncating would corrupt the post.
var ErrEntryTooLong = errors.New("entry exceeds the maximum tweet length")

// ComposerConfig holds the platform accounting constants.
type ComposerConfig struct {
	// MaxChars is the tweet body limit in the platform's own character
	// accounting.
	MaxChars int
	// URLLength is the fixed length the platform assigns to any URL,
	// regardless of its literal length.
	URLLength int
}

func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{MaxChars: 280, URLLength: 23}
}

// Entry is the word being tweeted today.
type Entry struct {
	Characters  string
	Pinyin      string
	Definitions []string
}

// TweetRef points back at a previously posted tweet. A reference missing
// either the word or the URL is treated as wholly absent.
type TweetRef struct {
	TweetID string
	Word    string
	URL     string
}

func (r TweetRef) present() bool {
	return r.Word != "" && r.URL != ""
}

// PreviousTweets carries the up-to-three historical references in their
// fixed priority order.
type PreviousTweets struct {
	LastWeek  TweetRef
	LastMonth TweetRef
	Random    TweetRef
}

type tweetBlock struct {
	text      string
	charCount int
}

// Composer assembles tweet bodies within the platform's character budget.
type Composer struct {
	cfg ComposerConfig
}

func NewComposer(cfg ComposerConfig) *Composer {
	return &Composer{cfg: cfg}
}

// accountedLength computes the platform character count of a fragment.
// Double-width runes in the word cost 2 (the word appears once literally in
// the fragment, so one extra per wide rune reaches 2), and every URL is
// charged the fixed normalized length in place of its literal length.
func (c *Composer) accountedLength(fragment, word string, urls ...string) int {
	count := uniseg.GraphemeClusterCount(fragment)
	count += doubleWidthCount(word)
	for _, url := range urls {
		count += c.cfg.URLLength - uniseg.GraphemeClusterCount(url)
	}
	return count
}

func doubleWidthCount(word string) int {
	n := 0
	for _, r := range word {
		if runewidth.RuneWidth(r) == 2 {
			n++
		}
	}
	return n
}

func (c *Composer) referenceBlock(label string, ref TweetRef) (tweetBlock, bool) {
	if !ref.present() {
		return tweetBlock{}, false
	}
	text := fmt.Sprintf("\n%s: %s (%s)", label, ref.Word, ref.URL)
	return tweetBlock{
		text:      text,
		charCount: c.accountedLength(text, ref.Word, ref.URL),
	}, true
}

// Compose builds the tweet body for the current entry plus whichever
// historical references fit the budget. Deterministic for fixed inputs.
//
// Budget rules: the current word and pinyin are mandatory (ErrEntryTooLong
// if they alone overflow), exactly one definition is added first-fit, then
// references are admitted whole in priority order, and finally any budget
// left over is spent on further definitions.
func (c *Composer) Compose(entry Entry, previous PreviousTweets) (string, error) {
	// The minimal current block. Overflowing here is the one hard failure.
	now := tweetBlock{text: fmt.Sprintf("%s (%s)", entry.Characters, entry.Pinyin)}
	now.charCount = c.accountedLength(now.text, entry.Characters)
	if now.charCount > c.cfg.MaxChars {
		return "", fmt.Errorf("%w: %q needs %d of %d characters",
			ErrEntryTooLong, now.text, now.charCount, c.cfg.MaxChars)
	}

	// Append the first definition that fits. If none fits, drop the ": "
	// delimiter and post without a definition.
	now.text += ": "
	now.charCount += 2
	chosen := -1
	for i, definition := range entry.Definitions {
		if now.charCount+uniseg.GraphemeClusterCount(definition) <= c.cfg.MaxChars {
			chosen = i
			now.text += definition
			now.charCount += uniseg.GraphemeClusterCount(definition)
			break
		}
	}
	if chosen < 0 {
		now.text = strings.TrimSuffix(now.text, ": ")
		now.charCount -= 2
	}

	// A newline separates the current entry from the references. If even
	// that does not fit, the current block is the whole tweet.
	if now.charCount+1 >= c.cfg.MaxChars {
		return strings.TrimSpace(now.text), nil
	}
	now.text += "\n"
	now.charCount++

	remaining := c.cfg.MaxChars - now.charCount

	// Admit references in priority order. A block that does not fit is
	// dropped whole and charges nothing; later blocks are still tried.
	candidates := []struct {
		label string
		ref   TweetRef
	}{
		{"Last Week", previous.LastWeek},
		{"Last Month", previous.LastMonth},
		{"Random", previous.Random},
	}
	accepted := make([]tweetBlock, len(candidates))
	included := make([]bool, len(candidates))
	for i, candidate := range candidates {
		block, ok := c.referenceBlock(candidate.label, candidate.ref)
		if !ok {
			continue
		}
		if remaining-block.charCount < 0 {
			continue
		}
		accepted[i] = block
		included[i] = true
		remaining -= block.charCount
	}

	// Admission above keeps remaining non-negative, but restore the
	// invariant anyway, dropping lowest-priority references first.
	for i := len(included) - 1; i >= 0 && remaining < 0; i-- {
		if included[i] {
			remaining += accepted[i].charCount
			included[i] = false
		}
	}

	// Spend whatever budget is left on further definitions, in their
	// original order after the chosen one. Definitions skipped earlier for
	// being too long stay skipped.
	if chosen >= 0 {
		for _, definition := range entry.Definitions[chosen+1:] {
			cost := uniseg.GraphemeClusterCount(definition) + 2
			if remaining-cost < 0 {
				continue
			}
			now.text = strings.TrimSuffix(now.text, "\n") + "; " + definition + "\n"
			now.charCount += cost
			remaining -= cost
		}
	}

	var body strings.Builder
	body.WriteString(now.text)
	for i, block := range accepted {
		if included[i] {
			body.WriteString(block.text)
		}
	}
	return strings.TrimSpace(body.String()), nil
}
