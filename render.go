package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// `thing` as indented JSON, HTML characters left alone.
func to_json(thing any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(thing)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write_json(path string, thing any) error {
	blob, err := to_json(thing)
	if err != nil {
		return fmt.Errorf("failed to serialise '%s': %w", path, err)
	}
	return write_file(path, blob)
}

func write_file(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}

// "-" for missing values.
func int_or_dash(i *int64) string {
	if i == nil {
		return "-"
	}
	return strconv.FormatInt(*i, 10)
}

// a markdown table of the skills in `domain`, one row per skill.
// pipes in cell values are escaped by the renderer.
func render_domain_table(domain Domain) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Skill", "Repo", "Installs (all-time)", "Installs (24h)", "Stars", "Tags", "Summary"})
	for _, skill := range domain.Skills {
		t.AppendRow(table.Row{
			fmt.Sprintf("[%s](%s)", skill.Name, skill.SkillUrl),
			fmt.Sprintf("[%s](%s)", skill.Source, skill.RepoUrl),
			int_or_dash(skill.InstallsAllTime),
			int_or_dash(skill.InstallsTrending),
			int_or_dash(skill.RepoStars),
			strings.Join(skill.Tags, ", "),
			skill.Summary,
		})
	}
	return t.RenderMarkdown()
}

// the path to `filename` as shown in the report, relative to the working directory.
// outputs outside of the working directory show just the file name.
func report_path(output_dir string, filename string) string {
	path := filepath.Join(output_dir, filename)
	if filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return filename
		}
		rel, err := filepath.Rel(cwd, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filename
		}
		path = rel
	}
	return filepath.ToSlash(path)
}

func render_markdown(core_domains CoreDomains, output_dir string) string {
	lines := []string{
		"# Skills.sh Core Domains (SKILL.md Summary Edition)",
		"",
		"Data source: " + core_domains.Source,
		"Generated at: " + core_domains.GeneratedAt,
		"",
		"Notes:",
		"- Stars come from the GitHub API; `null` indicates fetch failure or rate limiting.",
		fmt.Sprintf("- Summaries come from the first SKILL.md paragraph on skills.sh; failures show as %q.", SUMMARY_FALLBACK),
		"- Domains and tags are curated and will evolve with user feedback.",
		"",
		"Full datasets:",
		fmt.Sprintf("- `%s`", report_path(output_dir, ALL_TIME_FILENAME)),
		fmt.Sprintf("- `%s`", report_path(output_dir, TRENDING_FILENAME)),
		"",
	}

	for _, domain := range core_domains.Domains {
		lines = append(lines,
			"## "+domain.Name,
			"",
			domain.Focus,
			"",
			render_domain_table(domain),
			"",
		)
	}

	return strings.Join(lines, "\n")
}
