package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_load_catalogue__embedded(t *testing.T) {
	catalogue, err := load_catalogue("")
	require.Nil(t, err)
	require.Len(t, catalogue, 8)

	assert.Equal(t, "agent-workflow", catalogue[0].Id)
	assert.Equal(t, "Agent Discovery & Automation", catalogue[0].Name)
	assert.Equal(t, CurationEntry{Source: "vercel-labs/skills", SkillId: "find-skills", Tags: []string{"discover", "search", "installation"}}, catalogue[0].Skills[0])
	assert.Equal(t, "docs-office", catalogue[7].Id)
	assert.Equal(t, 51, catalogue.num_skills())
}

func Test_catalogue_repos(t *testing.T) {
	catalogue, err := load_catalogue("")
	require.Nil(t, err)

	repo_list := catalogue.repos()
	assert.True(t, slices.IsSorted(repo_list))
	assert.Equal(t, repo_list, unique(repo_list))
	assert.Contains(t, repo_list, "anthropics/skills")
	assert.Contains(t, repo_list, "onmax/nuxt-skills")
}

func Test_parse_catalogue__invalid(t *testing.T) {
	cases := map[string]string{
		"not a list":     `id: foo`,
		"empty":          `[]`,
		"no skills":      "- id: foo\n  name: Foo\n  focus: bar\n  skills: []\n",
		"bad source":     "- id: foo\n  name: Foo\n  focus: bar\n  skills:\n    - {source: nope, skillId: x, tags: [a]}\n",
		"missing id":     "- name: Foo\n  focus: bar\n  skills:\n    - {source: a/b, skillId: x, tags: [a]}\n",
		"empty skill id": "- id: foo\n  name: Foo\n  focus: bar\n  skills:\n    - {source: a/b, skillId: '', tags: [a]}\n",
		"not yaml":       "- id: [",
		"duplicate tag":  "- id: foo\n  name: Foo\n  focus: bar\n  skills:\n    - {source: a/b, skillId: x, tags: [a, b, a]}\n",
	}
	for name, given := range cases {
		_, err := parse_catalogue([]byte(given))
		assert.NotNil(t, err, name)
	}
}

func Test_load_catalogue__file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	given := "\ufeff- id: foo\n  name: Foo\n  focus: bar\n  skills:\n    - {source: a/b, skillId: x, tags: [a, b]}\n"
	require.Nil(t, os.WriteFile(path, []byte(given), 0644))

	catalogue, err := load_catalogue(path)
	require.Nil(t, err)
	expected := Catalogue{
		{Id: "foo", Name: "Foo", Focus: "bar", Skills: []CurationEntry{{Source: "a/b", SkillId: "x", Tags: []string{"a", "b"}}}},
	}
	assert.Equal(t, expected, catalogue)

	_, err = load_catalogue(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}
