package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/tidwall/gjson"
)

var GITHUB_REPO_API = "https://api.github.com/repos"

// repository star counts, persisted between runs.
// a repository present in `Repos` is never fetched again, even when its count is `nil`.
type StarCache struct {
	GeneratedAt *string           `json:"generatedAt"`
	Repos       map[string]*int64 `json:"repos"`
}

func new_star_cache() *StarCache {
	return &StarCache{Repos: map[string]*int64{}}
}

// reads the star cache at `path`, an empty cache is returned if the file doesn't exist.
func load_star_cache(path string) (*StarCache, error) {
	data, err := slurp(path)
	if errors.Is(err, os.ErrNotExist) {
		return new_star_cache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read star cache: %w", err)
	}

	cache := new_star_cache()
	err = json.Unmarshal(data, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to parse star cache '%s': %w", path, err)
	}
	if cache.Repos == nil {
		cache.Repos = map[string]*int64{}
	}
	return cache, nil
}

func (c *StarCache) save(path string) error {
	return write_json(path, c)
}

func (c *StarCache) has(repo string) bool {
	_, present := c.Repos[repo]
	return present
}

// the cached star count for `repo`, `nil` if unknown or unavailable.
func (c *StarCache) stars(repo string) *int64 {
	return c.Repos[repo]
}

// returns the star count for a repository, or `nil` when it can't be had.
type star_fetch_fn func(ctx context.Context, repo string) *int64

// returns the cached star count for `repo`, fetching and caching it on a miss.
// failures are cached as `nil`.
func (c *StarCache) get_or_fetch(ctx context.Context, repo string, fetch star_fetch_fn) *int64 {
	if c.has(repo) {
		return c.Repos[repo]
	}
	stars := fetch(ctx, repo)
	if ctx.Err() != nil {
		// interrupted, not unavailable. leave it for the next run.
		return nil
	}
	c.Repos[repo] = stars
	return stars
}

// ensures every repository in `repo_list` has an entry in the cache and bumps `GeneratedAt`.
// only an interrupted context is an error.
func (c *StarCache) fetch_repo_stars(ctx context.Context, repo_list []string, fetch star_fetch_fn, metrics *Metrics) error {
	repo_list = slices.Clone(repo_list)
	slices.Sort(repo_list)
	for _, repo := range repo_list {
		if c.has(repo) {
			metrics.starCacheHits.Inc()
			continue
		}
		c.get_or_fetch(ctx, repo, fetch)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	c.GeneratedAt = &now
	return nil
}

// fetches star counts from the GitHub repository endpoint.
func github_star_fetcher(downloader Downloader, api_url string, pacer Pacer, metrics *Metrics) star_fetch_fn {
	return func(ctx context.Context, repo string) *int64 {
		err := pacer.Wait(ctx)
		if err != nil {
			return nil
		}

		defer pacer.Done()

		url := fmt.Sprintf("%s/%s", api_url, repo)
		body, err := fetch_text(ctx, downloader, url)
		if err != nil {
			slog.Warn("failed to fetch repository, star count unavailable", "repo", repo, "error", err)
			metrics.record_star_fetch(false)
			return nil
		}

		val := gjson.Get(body, "stargazers_count")
		if !gjson.Valid(body) || val.Type != gjson.Number {
			slog.Warn("repository response has no star count", "repo", repo)
			metrics.record_star_fetch(false)
			return nil
		}

		metrics.record_star_fetch(true)
		stars := val.Int()
		slog.Debug("fetched star count", "repo", repo, "stars", stars)
		return &stars
	}
}
