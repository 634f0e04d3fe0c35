package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

type SummaryEntry struct {
	Summary   *string `json:"summary"`
	SkillUrl  string  `json:"skillUrl"`
	FetchedAt string  `json:"fetchedAt"`
}

// one-paragraph skill summaries scraped from skills.sh, keyed by "source/skillId".
// only a non-empty summary counts as a hit, a cached `nil` is fetched again.
type SummaryCache struct {
	GeneratedAt *string                 `json:"generatedAt"`
	Summaries   map[string]SummaryEntry `json:"summaries"`
}

func new_summary_cache() *SummaryCache {
	return &SummaryCache{Summaries: map[string]SummaryEntry{}}
}

// reads the summary cache at `path`, an empty cache is returned if the file doesn't exist.
func load_summary_cache(path string) (*SummaryCache, error) {
	data, err := slurp(path)
	if errors.Is(err, os.ErrNotExist) {
		return new_summary_cache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	cache := new_summary_cache()
	err = json.Unmarshal(data, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary cache '%s': %w", path, err)
	}
	if cache.Summaries == nil {
		cache.Summaries = map[string]SummaryEntry{}
	}
	return cache, nil
}

// bumps `GeneratedAt` and writes the cache to `path`.
func (c *SummaryCache) save(path string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	c.GeneratedAt = &now
	return write_json(path, c)
}

// the cached summary for `skill_key`, if it is usable.
func (c *SummaryCache) cached(skill_key string) (string, bool) {
	entry, present := c.Summaries[skill_key]
	if !present || entry.Summary == nil || *entry.Summary == "" {
		return "", false
	}
	return *entry.Summary, true
}

// returns the summary found at a skill's page, or `nil`.
type summary_fetch_fn func(ctx context.Context, skill_url string) *string

// returns the cached summary for `skill_key` unless `refresh` is set or there isn't one,
// in which case the skill page is fetched and the result cached, even when it is `nil`.
func (c *SummaryCache) get_or_fetch(ctx context.Context, skill_key string, skill_url string, refresh bool, fetch summary_fetch_fn) *string {
	if !refresh {
		summary, ok := c.cached(skill_key)
		if ok {
			return &summary
		}
	}

	summary := fetch(ctx, skill_url)
	if ctx.Err() != nil {
		return nil
	}
	c.Summaries[skill_key] = SummaryEntry{
		Summary:   summary,
		SkillUrl:  skill_url,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return summary
}

// "  foo \n  bar " => "foo bar"
func collapse_whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// finds the first non-empty paragraph inside a 'prose' block of a skill page.
// returns `nil` when there is none.
func parse_summary(html string) *string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var summary *string
	doc.Find(`div[class*="prose"] p`).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := collapse_whitespace(p.Text())
		if text == "" {
			return true
		}
		text = norm.NFC.String(text)
		summary = &text
		return false
	})
	return summary
}

// fetches skill pages and extracts their summary. failures are `nil`.
func skills_sh_summary_fetcher(downloader Downloader, pacer Pacer, metrics *Metrics) summary_fetch_fn {
	return func(ctx context.Context, skill_url string) *string {
		err := pacer.Wait(ctx)
		if err != nil {
			return nil
		}

		defer pacer.Done()

		html, err := fetch_text(ctx, downloader, skill_url)
		if err != nil {
			slog.Warn("failed to fetch skill page, summary unavailable", "url", skill_url, "error", err)
			metrics.record_summary_fetch(false)
			return nil
		}

		summary := parse_summary(html)
		if summary == nil {
			slog.Debug("no summary found on skill page", "url", skill_url)
		}
		metrics.record_summary_fetch(summary != nil)
		return summary
	}
}
