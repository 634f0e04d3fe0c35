package main

import (
	"context"
	"slices"
)

const (
	SUMMARY_FALLBACK         = "SKILL.md summary unavailable"
	SUMMARY_SOURCE_SKILLS_SH = "skills.sh"
	SUMMARY_SOURCE_FALLBACK  = "fallback"
)

// a curated entry joined against live rankings, star counts and summaries.
type EnrichedSkill struct {
	Source           string   `json:"source"`
	SkillId          string   `json:"skillId"`
	Name             string   `json:"name"`
	InstallsAllTime  *int64   `json:"installsAllTime"`
	InstallsTrending *int64   `json:"installsTrending"`
	SkillUrl         string   `json:"skillUrl"`
	RepoUrl          string   `json:"repoUrl"`
	RepoStars        *int64   `json:"repoStars"`
	Tags             []string `json:"tags"`
	Summary          string   `json:"summary"`
	SummarySource    string   `json:"summarySource"`
}

type Domain struct {
	Id     string          `json:"id"`
	Name   string          `json:"name"`
	Focus  string          `json:"focus"`
	Skills []EnrichedSkill `json:"skills"`
}

// the enriched document written to disk and to the public data directories.
type CoreDomains struct {
	GeneratedAt string   `json:"generatedAt"`
	Source      string   `json:"source"`
	Domains     []Domain `json:"domains"`
}

// returns a summary for a skill, or `nil`.
type summarise_fn func(ctx context.Context, skill_key string, skill_url string) *string

// a `summarise_fn` that goes through the summary cache.
func cached_summariser(cache *SummaryCache, refresh bool, fetch summary_fetch_fn, metrics *Metrics) summarise_fn {
	return func(ctx context.Context, skill_key string, skill_url string) *string {
		if !refresh {
			_, hit := cache.cached(skill_key)
			if hit {
				metrics.summaryCacheHits.Inc()
			}
		}
		return cache.get_or_fetch(ctx, skill_key, skill_url, refresh, fetch)
	}
}

func installs_of(skill_idx map[SkillKey]SkillRecord, key SkillKey) *int64 {
	skill, present := skill_idx[key]
	if !present {
		return nil
	}
	installs := skill.Installs
	return &installs
}

// joins every curated entry in `catalogue` against the rankings, star counts and summaries.
// entries are never dropped, missing data is `nil` or the fallback summary.
// a `nil` `summarise` skips summaries altogether.
func build_core_domains(ctx context.Context, catalogue Catalogue, all_time_idx, trending_idx map[SkillKey]SkillRecord, star_cache *StarCache, summarise summarise_fn) []Domain {
	domain_list := []Domain{}
	for _, domain := range catalogue {
		skill_list := []EnrichedSkill{}
		for _, item := range domain.Skills {
			key := SkillKey{Source: item.Source, SkillId: item.SkillId}
			url := skill_url(key)

			var summary *string
			if summarise != nil {
				summary = summarise(ctx, key.String(), url)
			}
			summary_text := SUMMARY_FALLBACK
			summary_source := SUMMARY_SOURCE_FALLBACK
			if summary != nil && *summary != "" {
				summary_text = *summary
				summary_source = SUMMARY_SOURCE_SKILLS_SH
			}

			name := item.SkillId
			all_time, present := all_time_idx[key]
			if present && all_time.Name != "" {
				name = all_time.Name
			}

			tags := slices.Clone(item.Tags)
			if tags == nil {
				tags = []string{}
			}

			skill_list = append(skill_list, EnrichedSkill{
				Source:           item.Source,
				SkillId:          item.SkillId,
				Name:             name,
				InstallsAllTime:  installs_of(all_time_idx, key),
				InstallsTrending: installs_of(trending_idx, key),
				SkillUrl:         url,
				RepoUrl:          repo_url(item.Source),
				RepoStars:        star_cache.stars(item.Source),
				Tags:             tags,
				Summary:          summary_text,
				SummarySource:    summary_source,
			})
		}
		domain_list = append(domain_list, Domain{
			Id:     domain.Id,
			Name:   domain.Name,
			Focus:  domain.Focus,
			Skills: skill_list,
		})
	}
	return domain_list
}
