package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"
)

const (
	ALL_TIME_FILENAME      = "skills-all-time.json"
	TRENDING_FILENAME      = "skills-trending.json"
	CORE_DOMAINS_FILENAME  = "skills-core-domains.json"
	MARKDOWN_FILENAME      = "skills-core-domains.md"
	STAR_CACHE_FILENAME    = "repo-stars.json"
	SUMMARY_CACHE_FILENAME = "skills-core-summaries.json"

	ALL_TIME_KEY = "allTimeSkills"
	TRENDING_KEY = "trendingSkills"
)

type State struct {
	Config     Config
	Catalogue  Catalogue
	Downloader Downloader
	Metrics    *Metrics
}

func init_state(cfg Config) (*State, error) {
	catalogue, err := load_catalogue(cfg.Catalogue)
	if err != nil {
		return nil, err
	}

	client, err := new_http_client(cfg.Timeout, cfg.HTTPCacheDir)
	if err != nil {
		return nil, err
	}

	return &State{
		Config:     cfg,
		Catalogue:  catalogue,
		Downloader: client,
		Metrics:    new_metrics(),
	}, nil
}

func (s *State) output_path(filename string) string {
	return filepath.Join(s.Config.OutputDir, filename)
}

// fetches the trending page and pulls both skill lists out of it.
// any failure here is fatal, there is nothing to enrich without them.
func fetch_rankings(ctx context.Context, state *State) ([]SkillRecord, []SkillRecord, error) {
	html, err := fetch_text(ctx, state.Downloader, TRENDING_URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch trending page: %w", err)
	}

	all_time, err := parse_skills(html, ALL_TIME_KEY)
	if err != nil {
		return nil, nil, err
	}
	trending, err := parse_skills(html, TRENDING_KEY)
	if err != nil {
		return nil, nil, err
	}

	all_time = dedupe_skills(all_time)
	trending = dedupe_skills(trending)
	state.Metrics.skillsParsed.WithLabelValues("all-time").Set(float64(len(all_time)))
	state.Metrics.skillsParsed.WithLabelValues("trending").Set(float64(len(trending)))
	return all_time, trending, nil
}

func run(ctx context.Context, state *State) error {
	cfg := state.Config

	slog.Info("fetching trending page", "url", TRENDING_URL)
	all_time, trending, err := fetch_rankings(ctx, state)
	if err != nil {
		return err
	}
	slog.Info("skills parsed", "all-time", len(all_time), "trending", len(trending))

	star_cache_path := state.output_path(STAR_CACHE_FILENAME)
	star_cache, err := load_star_cache(star_cache_path)
	if err != nil {
		return err
	}
	summary_cache_path := state.output_path(SUMMARY_CACHE_FILENAME)
	summary_cache, err := load_summary_cache(summary_cache_path)
	if err != nil {
		return err
	}

	if !cfg.SkipStars {
		repo_list := state.Catalogue.repos()
		slog.Info("fetching repository stars", "repos", len(repo_list), "cached", len(star_cache.Repos))
		fetch := github_star_fetcher(state.Downloader, GITHUB_REPO_API, new_pacer(cfg.StarSleep), state.Metrics)
		err = star_cache.fetch_repo_stars(ctx, repo_list, fetch, state.Metrics)
		if err != nil {
			return fmt.Errorf("star fetch interrupted: %w", err)
		}
		err = star_cache.save(star_cache_path)
		if err != nil {
			return err
		}
	}

	var summarise summarise_fn
	if !cfg.SkipSummaries {
		slog.Info("fetching skill summaries", "skills", state.Catalogue.num_skills(), "refresh", cfg.RefreshSummaries)
		fetch := skills_sh_summary_fetcher(state.Downloader, new_pacer(cfg.SummarySleep), state.Metrics)
		summarise = cached_summariser(summary_cache, cfg.RefreshSummaries, fetch, state.Metrics)
	}

	domain_list := build_core_domains(ctx, state.Catalogue, skill_map(all_time), skill_map(trending), star_cache, summarise)
	if ctx.Err() != nil {
		return fmt.Errorf("summary fetch interrupted: %w", ctx.Err())
	}
	state.Metrics.record_domains(domain_list)

	payload := CoreDomains{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      TRENDING_URL,
		Domains:     domain_list,
	}
	payload_json, err := to_json(payload)
	if err != nil {
		return fmt.Errorf("failed to serialise core domains: %w", err)
	}
	err = validate_json(CORE_DOMAINS_SCHEMA, payload_json)
	if err != nil {
		return fmt.Errorf("core domains failed validation: %w", err)
	}

	// ---

	raw_lists := []struct {
		filename   string
		skill_list []SkillRecord
	}{
		{ALL_TIME_FILENAME, all_time},
		{TRENDING_FILENAME, trending},
	}
	for _, raw := range raw_lists {
		ranked, err := add_urls(raw.skill_list)
		if err != nil {
			return err
		}
		err = write_json(state.output_path(raw.filename), ranked)
		if err != nil {
			return err
		}
	}
	err = write_file(state.output_path(CORE_DOMAINS_FILENAME), payload_json)
	if err != nil {
		return err
	}
	err = summary_cache.save(summary_cache_path)
	if err != nil {
		return err
	}

	if !cfg.SkipPublic {
		for _, public_dir := range cfg.PublicDirs {
			err = write_file(filepath.Join(public_dir, CORE_DOMAINS_FILENAME), payload_json)
			if err != nil {
				return err
			}
			slog.Debug("wrote public copy", "dir", public_dir)
		}
	}

	markdown := render_markdown(payload, cfg.OutputDir)
	err = write_file(state.output_path(MARKDOWN_FILENAME), []byte(markdown))
	if err != nil {
		return err
	}

	slog.Info("wrote core domains", "domains", len(domain_list), "skills", state.Catalogue.num_skills(), "output-dir", cfg.OutputDir)
	return nil
}

// --- bootstrap

var LOG_LEVEL = new(slog.LevelVar)

func init() {
	if is_testing() {
		return
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: LOG_LEVEL})))
}

func main() {
	started := time.Now()

	cfg, err := load_config(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	die(err, "failed to load configuration")

	level, _ := parse_log_level(cfg.LogLevel)
	LOG_LEVEL.Set(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	release, err := acquire_run_lock(cfg.OutputDir)
	die(err, "failed to lock output directory")
	defer release()

	state, err := init_state(cfg)
	die(err, "failed to initialise")

	err = run(ctx, state)
	die(err, "run failed")

	state.Metrics.finish(started)
	if cfg.MetricsFile != "" {
		err = state.Metrics.write(cfg.MetricsFile)
		if err != nil {
			slog.Warn("metrics not written", "error", err)
		}
	}
}
