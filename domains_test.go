package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var TEST_CATALOGUE = Catalogue{
	{
		Id:    "docs-office",
		Name:  "Docs & Office",
		Focus: "Document workflows.",
		Skills: []CurationEntry{
			{Source: "anthropics/skills", SkillId: "pdf", Tags: []string{"pdf", "docs"}},
			{Source: "onmax/nuxt-skills", SkillId: "document-writer", Tags: []string{"writing"}},
		},
	},
}

func Test_build_core_domains__unknown_skill(t *testing.T) {
	catalogue := Catalogue{
		{
			Id:     "misc",
			Name:   "Misc",
			Focus:  "",
			Skills: []CurationEntry{{Source: "nobody/nothing", SkillId: "ghost", Tags: []string{"x"}}},
		},
	}
	summary_cache := new_summary_cache()
	fetch := func(ctx context.Context, skill_url string) *string {
		return nil
	}
	summarise := cached_summariser(summary_cache, false, fetch, new_metrics())

	domain_list := build_core_domains(context.Background(), catalogue, nil, nil, new_star_cache(), summarise)
	require.Len(t, domain_list, 1)
	require.Len(t, domain_list[0].Skills, 1)

	expected := EnrichedSkill{
		Source:           "nobody/nothing",
		SkillId:          "ghost",
		Name:             "ghost",
		InstallsAllTime:  nil,
		InstallsTrending: nil,
		SkillUrl:         "https://skills.sh/nobody/nothing/ghost",
		RepoUrl:          "https://github.com/nobody/nothing",
		RepoStars:        nil,
		Tags:             []string{"x"},
		Summary:          "SKILL.md summary unavailable",
		SummarySource:    "fallback",
	}
	assert.Equal(t, expected, domain_list[0].Skills[0])
}

func Test_build_core_domains(t *testing.T) {
	all_time := skill_map([]SkillRecord{
		{Source: "anthropics/skills", SkillId: "pdf", Name: "PDF", Installs: 300},
		{Source: "someone/else", SkillId: "other", Name: "other", Installs: 1},
	})
	trending := skill_map([]SkillRecord{
		{Source: "anthropics/skills", SkillId: "pdf", Name: "pdf", Installs: 42},
	})
	star_cache := new_star_cache()
	star_cache.Repos["anthropics/skills"] = ptr(int64(9000))
	star_cache.Repos["onmax/nuxt-skills"] = nil

	summary_cache := new_summary_cache()
	summary_cache.Summaries["anthropics/skills/pdf"] = SummaryEntry{Summary: ptr("Reads PDFs.")}
	calls := []string{}
	fetch := func(ctx context.Context, skill_url string) *string {
		calls = append(calls, skill_url)
		return ptr("Writes documents.")
	}
	summarise := cached_summariser(summary_cache, false, fetch, new_metrics())

	domain_list := build_core_domains(context.Background(), TEST_CATALOGUE, all_time, trending, star_cache, summarise)
	require.Len(t, domain_list, 1)
	domain := domain_list[0]
	assert.Equal(t, "docs-office", domain.Id)
	assert.Equal(t, "Docs & Office", domain.Name)
	require.Len(t, domain.Skills, 2)

	pdf := domain.Skills[0]
	assert.Equal(t, "PDF", pdf.Name)
	assert.Equal(t, ptr(int64(300)), pdf.InstallsAllTime)
	assert.Equal(t, ptr(int64(42)), pdf.InstallsTrending)
	assert.Equal(t, ptr(int64(9000)), pdf.RepoStars)
	assert.Equal(t, "Reads PDFs.", pdf.Summary)
	assert.Equal(t, "skills.sh", pdf.SummarySource)

	writer := domain.Skills[1]
	assert.Equal(t, "document-writer", writer.Name)
	assert.Nil(t, writer.InstallsAllTime)
	assert.Nil(t, writer.RepoStars)
	assert.Equal(t, "Writes documents.", writer.Summary)
	assert.Equal(t, "skills.sh", writer.SummarySource)

	// only the uncached summary was fetched
	assert.Equal(t, []string{"https://skills.sh/onmax/nuxt-skills/document-writer"}, calls)
}

func Test_build_core_domains__skip_summaries(t *testing.T) {
	summary_cache := new_summary_cache()
	summary_cache.Summaries["anthropics/skills/pdf"] = SummaryEntry{Summary: ptr("Reads PDFs.")}

	domain_list := build_core_domains(context.Background(), TEST_CATALOGUE, nil, nil, new_star_cache(), nil)
	for _, skill := range domain_list[0].Skills {
		assert.Equal(t, SUMMARY_FALLBACK, skill.Summary)
		assert.Equal(t, SUMMARY_SOURCE_FALLBACK, skill.SummarySource)
	}
}

func Test_build_core_domains__nil_tags(t *testing.T) {
	catalogue := Catalogue{{Id: "a", Name: "A", Skills: []CurationEntry{{Source: "a/a", SkillId: "x"}}}}
	domain_list := build_core_domains(context.Background(), catalogue, nil, nil, new_star_cache(), nil)
	assert.Equal(t, []string{}, domain_list[0].Skills[0].Tags)
}
