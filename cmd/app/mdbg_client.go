package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoDictionaryEntry reports that the dictionary returned results but none
// matched the requested simplified characters.
var ErrNoDictionaryEntry = errors.New("no dictionary entry found")

// DictionaryEntry is the result of a successful MDBG lookup.
type DictionaryEntry struct {
	Simplified  string
	Pinyin      string
	Definitions []string
}

// MDBGClient queries mdbg.net's Chinese-English word dictionary and scrapes
// the pinyin and definitions for a set of simplified characters.
type MDBGClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewMDBGClient(baseURL string, logger *slog.Logger) *MDBGClient {
	return &MDBGClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Lookup searches the dictionary for the given simplified characters. The
// pinyin passed in is a hint from the word list; when the dictionary
// disagrees, the dictionary's pinyin wins.
func (c *MDBGClient) Lookup(ctx context.Context, simplified, pinyin string) (*DictionaryEntry, error) {
	query := url.Values{
		"page":  {"worddict"},
		"wdrst": {"0"},
		"wdqb":  {simplified},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dictionary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("Failed to close dictionary response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary response: %w", err)
	}

	entry := c.findEntry(doc, simplified, pinyin)
	if entry == nil {
		return nil, fmt.Errorf("%w for %q", ErrNoDictionaryEntry, simplified)
	}
	return entry, nil
}

// findEntry scans the word result rows for the first whose simplified
// characters match the query exactly.
func (c *MDBGClient) findEntry(doc *goquery.Document, simplified, pinyin string) *DictionaryEntry {
	var entry *DictionaryEntry

	doc.Find("table.wordresults tbody tr.row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		rowSimplified := glyphText(row.Find("div.hanzi"))
		if rowSimplified != simplified {
			return true
		}

		rowPinyin := glyphText(row.Find("div.pinyin"))
		if rowPinyin != "" && pinyin != "" && rowPinyin != pinyin {
			c.logger.Info("Pinyin updated from dictionary",
				"word", simplified,
				"old", pinyin,
				"new", rowPinyin)
		}
		if rowPinyin == "" {
			rowPinyin = pinyin
		}

		var definitions []string
		for _, part := range strings.Split(row.Find("div.defs").Text(), "/") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				definitions = append(definitions, trimmed)
			}
		}

		entry = &DictionaryEntry{
			Simplified:  simplified,
			Pinyin:      rowPinyin,
			Definitions: definitions,
		}
		return false
	})

	return entry
}

// glyphText concatenates the per-glyph spans MDBG renders inside hanzi and
// pinyin cells.
func glyphText(cell *goquery.Selection) string {
	var builder strings.Builder
	cell.Find("span[class*='mpt']").Each(func(_ int, span *goquery.Selection) {
		builder.WriteString(strings.TrimSpace(span.Text()))
	})
	return builder.String()
}
