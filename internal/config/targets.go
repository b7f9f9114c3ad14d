package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Target is one (country, language) pair the pipeline produces content for.
type Target struct {
	Country  string `yaml:"country" json:"country"`
	Language string `yaml:"language" json:"language"`
}

func (t Target) String() string {
	return t.Country + ":" + t.Language
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// ParseTargets parses a comma-separated list of country:language pairs,
// e.g. "us:en,fr:fr". Duplicates are dropped.
func ParseTargets(s string) ([]Target, error) {
	var out []Target
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		country, language, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("target %q: expected country:language", part)
		}
		out = append(out, Target{Country: country, Language: language})
	}
	return normalizeTargets(out)
}

// LoadTargetsFile reads targets from a YAML document of the form
//
//	targets:
//	  - country: us
//	    language: en
func LoadTargetsFile(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets file %s: %w", path, err)
	}
	return normalizeTargets(f.Targets)
}

func normalizeTargets(in []Target) ([]Target, error) {
	seen := make(map[Target]bool, len(in))
	out := make([]Target, 0, len(in))
	for _, t := range in {
		t.Country = strings.ToLower(strings.TrimSpace(t.Country))
		t.Language = strings.ToLower(strings.TrimSpace(t.Language))
		if len(t.Country) != 2 || len(t.Language) != 2 {
			return nil, fmt.Errorf("target %q: country and language must be two-letter codes", t.String())
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	return out, nil
}
