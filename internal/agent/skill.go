// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// TriggerMode defines how a skill is attached to a task.
type TriggerMode int

const (
	TriggerManual  TriggerMode = iota // default — user attaches the skill to a card
	TriggerAuto                       // injected into every prompt
	TriggerKeyword                    // attached when keywords match the task text
)

// Skill is a named block of reusable prompt guidance a user can attach to a
// task card to steer the model.
type Skill struct {
	Name        string
	Description string
	License     string
	Metadata    map[string]string
	Content     string // Markdown body after frontmatter
}

// skillFrontmatter is the intermediate struct for YAML parsing.
type skillFrontmatter struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	License     string            `yaml:"license"`
	Metadata    map[string]string `yaml:"metadata"`
}

// ParseSkillFile reads a SKILL.md file and returns a parsed Skill.
// The file must contain YAML frontmatter delimited by "---" lines,
// followed by the markdown body.
func ParseSkillFile(path string) (*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tderr.Wrap(err, tderr.CodeAgentSkillParseInvalid, "reading skill file", tderr.FieldPath(path))
	}

	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		return nil, tderr.New(tderr.CodeAgentSkillParseInvalid, "missing opening frontmatter delimiter", tderr.FieldPath(path))
	}

	rest := content[4:] // skip opening "---\n"
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return nil, tderr.New(tderr.CodeAgentSkillParseInvalid, "missing closing frontmatter delimiter", tderr.FieldPath(path))
	}

	frontmatterRaw := rest[:idx]
	body := rest[idx+5:] // skip "\n---\n"

	var fm skillFrontmatter
	if err := yaml.Unmarshal([]byte(frontmatterRaw), &fm); err != nil {
		return nil, tderr.Wrap(err, tderr.CodeAgentSkillParseInvalid, "parsing frontmatter", tderr.FieldPath(path))
	}
	if fm.Name == "" {
		return nil, tderr.New(tderr.CodeAgentSkillParseInvalid, "frontmatter has no name", tderr.FieldPath(path))
	}

	return &Skill{
		Name:        fm.Name,
		Description: fm.Description,
		License:     fm.License,
		Metadata:    fm.Metadata,
		Content:     body,
	}, nil
}

// LoadSkills scans dir for subdirectories containing a SKILL.md file and
// returns all parsed skills sorted by name. A missing dir is not an error;
// it yields no skills.
func LoadSkills(dir string) ([]*Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, tderr.Wrap(err, tderr.CodeAgentSkillParseInvalid, "reading skills directory", tderr.FieldPath(dir))
	}

	var skills []*Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		skillFile := filepath.Join(dir, entry.Name(), "SKILL.md")
		if _, err := os.Stat(skillFile); err != nil {
			continue // no SKILL.md in this subdirectory
		}

		skill, err := ParseSkillFile(skillFile)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

// SelectSkills returns the skills to attach to a task: every auto-trigger
// skill, every keyword skill whose keywords match the task text, and every
// skill named in requested.
func SelectSkills(all []*Skill, requested []string, taskText string) []*Skill {
	byName := make(map[string]bool, len(requested))
	for _, name := range requested {
		byName[name] = true
	}

	var out []*Skill
	for _, s := range all {
		switch {
		case byName[s.Name]:
			out = append(out, s)
		case s.TriggerMode() == TriggerAuto:
			out = append(out, s)
		case s.TriggerMode() == TriggerKeyword && s.MatchesKeyword(taskText):
			out = append(out, s)
		}
	}
	return out
}

// TriggerMode reads the "taskdeck:trigger" metadata value and returns the
// corresponding TriggerMode.
func (s *Skill) TriggerMode() TriggerMode {
	switch s.Metadata["taskdeck:trigger"] {
	case "auto":
		return TriggerAuto
	case "keyword":
		return TriggerKeyword
	default:
		return TriggerManual
	}
}

// MatchesKeyword splits the "taskdeck:keywords" metadata by spaces and
// returns true if any keyword appears as a case-insensitive substring of text.
func (s *Skill) MatchesKeyword(text string) bool {
	raw := s.Metadata["taskdeck:keywords"]
	if raw == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range strings.Fields(raw) {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}
