package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrMissingKey        = errors.New("missing key")
	ErrMissingArray      = errors.New("missing array")
	ErrUnterminatedArray = errors.New("unterminated array")
)

// finds `key` in `text` and returns the first bracketed array that follows it, brackets included.
// brackets are counted lexically, a '[' or ']' inside a string value will throw the count off.
func extract_array(text string, key string) (string, error) {
	start := strings.Index(text, key)
	if start == -1 {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}

	idx := strings.Index(text[start:], "[")
	if idx == -1 {
		return "", fmt.Errorf("%w for key: %s", ErrMissingArray, key)
	}
	idx += start

	depth := 0
	for i := idx; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth += 1
		case ']':
			depth -= 1
			if depth == 0 {
				return text[idx : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w for key: %s", ErrUnterminatedArray, key)
}

// the array is usually embedded in a javascript string literal, quotes and all escaped.
// returns `raw` as-is if it is already valid JSON.
func unescape_array(raw string) (string, error) {
	if gjson.Valid(raw) {
		return raw, nil
	}
	// a JSON string literal shares its escape sequences with javascript's.
	decoded := gjson.Parse(`"` + raw + `"`).String()
	if !gjson.Valid(decoded) {
		return "", errors.New("array is not valid JSON after unescaping")
	}
	return decoded, nil
}

// extracts the array named `key` from the trending page `html` as a list of skills.
func parse_skills(html string, key string) ([]SkillRecord, error) {
	raw, err := extract_array(html, key)
	if err != nil {
		return nil, err
	}

	decoded, err := unescape_array(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode '%s': %w", key, err)
	}

	skill_list := []SkillRecord{}
	for i, item := range gjson.Parse(decoded).Array() {
		source := item.Get("source")
		skill_id := item.Get("skillId")
		installs := item.Get("installs")
		if !source.Exists() || !skill_id.Exists() || !installs.Exists() {
			return nil, fmt.Errorf("'%s' item %d is missing one of 'source', 'skillId' or 'installs': %s", key, i, item.Raw)
		}
		skill_list = append(skill_list, SkillRecord{
			Source:   source.String(),
			SkillId:  skill_id.String(),
			Name:     item.Get("name").String(),
			Installs: installs.Int(),
			Raw:      json.RawMessage(item.Raw),
		})
	}
	return skill_list, nil
}
