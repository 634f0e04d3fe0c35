package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tidwall/sjson"
)

var BASE_URL = "https://skills.sh"
var TRENDING_URL = BASE_URL + "/trending"

// a skill as listed on skills.sh.
// identity is the pair (source, skillId), only unique after `dedupe_skills`.
type SkillRecord struct {
	Source   string `json:"source"`
	SkillId  string `json:"skillId"`
	Name     string `json:"name"`
	Installs int64  `json:"installs"`

	// the object as it appeared on the page, unknown fields included.
	Raw json.RawMessage `json:"-"`
}

type SkillKey struct {
	Source  string
	SkillId string
}

func (s SkillRecord) key() SkillKey {
	return SkillKey{Source: s.Source, SkillId: s.SkillId}
}

// "owner/repo/skill-id", how skills are keyed in the summary cache.
func (k SkillKey) String() string {
	return fmt.Sprintf("%s/%s", k.Source, k.SkillId)
}

func skill_url(k SkillKey) string {
	return fmt.Sprintf("%s/%s/%s", BASE_URL, k.Source, k.SkillId)
}

func repo_url(source string) string {
	return "https://github.com/" + source
}

// keeps the record with the highest install count for each (source, skillId),
// the first record seen wins a tie.
// results are ordered by install count, highest first.
func dedupe_skills(skill_list []SkillRecord) []SkillRecord {
	idx := map[SkillKey]SkillRecord{}
	order := []SkillKey{}
	for _, skill := range skill_list {
		key := skill.key()
		existing, present := idx[key]
		if !present {
			order = append(order, key)
		}
		if !present || skill.Installs > existing.Installs {
			idx[key] = skill
		}
	}

	results_acc := make([]SkillRecord, 0, len(order))
	for _, key := range order {
		results_acc = append(results_acc, idx[key])
	}

	slices.SortStableFunc(results_acc, func(a, b SkillRecord) int {
		return cmp.Compare(b.Installs, a.Installs)
	})
	return results_acc
}

// the skills as they appeared on the page plus `repo`, `skillUrl` and `repoUrl`.
func add_urls(skill_list []SkillRecord) ([]json.RawMessage, error) {
	results_acc := make([]json.RawMessage, 0, len(skill_list))
	for _, skill := range skill_list {
		blob := []byte(skill.Raw)
		if len(blob) == 0 {
			var err error
			blob, err = json.Marshal(skill)
			if err != nil {
				return nil, err
			}
		}

		links := []struct{ path, value string }{
			{"repo", skill.Source},
			{"skillUrl", skill_url(skill.key())},
			{"repoUrl", repo_url(skill.Source)},
		}
		for _, link := range links {
			var err error
			blob, err = sjson.SetBytes(blob, link.path, link.value)
			if err != nil {
				return nil, fmt.Errorf("failed to add '%s' to skill %s: %w", link.path, skill.key(), err)
			}
		}
		results_acc = append(results_acc, blob)
	}
	return results_acc, nil
}

func skill_map(skill_list []SkillRecord) map[SkillKey]SkillRecord {
	idx := make(map[SkillKey]SkillRecord, len(skill_list))
	for _, skill := range skill_list {
		idx[skill.key()] = skill
	}
	return idx
}
