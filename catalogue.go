package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var embedded_catalogue []byte

// a pointer into skills.sh, joined against live data by (source, skillId).
type CurationEntry struct {
	Source  string   `yaml:"source" json:"source"`
	SkillId string   `yaml:"skillId" json:"skillId"`
	Tags    []string `yaml:"tags" json:"tags"`
}

type DomainDescriptor struct {
	Id     string          `yaml:"id" json:"id"`
	Name   string          `yaml:"name" json:"name"`
	Focus  string          `yaml:"focus" json:"focus"`
	Skills []CurationEntry `yaml:"skills" json:"skills"`
}

// the hand-curated list of domains. loaded once at startup and never modified.
type Catalogue []DomainDescriptor

// parses and validates a YAML catalogue.
func parse_catalogue(data []byte) (Catalogue, error) {
	var catalogue Catalogue
	err := yaml.Unmarshal(data, &catalogue)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalogue as YAML: %w", err)
	}

	// round-trip through JSON so the validator sees plain JSON values.
	blob, err := json.Marshal(catalogue)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise catalogue: %w", err)
	}
	err = validate_json(CATALOGUE_SCHEMA, blob)
	if err != nil {
		return nil, fmt.Errorf("catalogue failed validation: %w", err)
	}

	return catalogue, nil
}

// returns the embedded catalogue, or the catalogue at `path` when given.
func load_catalogue(path string) (Catalogue, error) {
	if path == "" {
		return parse_catalogue(embedded_catalogue)
	}
	data, err := slurp(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return parse_catalogue(data)
}

// every distinct `source` repository in the catalogue, sorted.
func (c Catalogue) repos() []string {
	repo_list := []string{}
	for _, domain := range c {
		for _, entry := range domain.Skills {
			repo_list = append(repo_list, entry.Source)
		}
	}
	repo_list = unique(repo_list)
	slices.Sort(repo_list)
	return repo_list
}

func (c Catalogue) num_skills() int {
	n := 0
	for _, domain := range c {
		n += len(domain.Skills)
	}
	return n
}
