package tailor

import (
	"encoding/json"
	"fmt"
	"os"
)

// ContentSchema is the authoritative description of what the document's
// tables should contain after a rewrite. Sections are evaluated in slice
// order, experiences before projects.
type ContentSchema struct {
	Experiences []Section `json:"experiences"`
	Projects    []Section `json:"projects"`
	Keywords    []string  `json:"keywords,omitempty"`
}

// Section describes one experience or project entry.
type Section struct {
	Title        string        `json:"title"`
	Company      string        `json:"company,omitempty"`
	BulletPoints []BulletPoint `json:"bullet_points"`
}

// BulletPoint is one line of section content. The length bounds and keywords
// are advisory metadata for content generation; the rewriter only reads Text.
type BulletPoint struct {
	Text     string   `json:"text"`
	MinChars int      `json:"min_chars,omitempty"`
	MaxChars int      `json:"max_chars,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// LoadSchema reads and validates a content schema from a JSON file.
func LoadSchema(path string) (*ContentSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewSchemaError("", fmt.Sprintf("cannot read schema file: %v", err))
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates a content schema from JSON bytes.
func ParseSchema(data []byte) (*ContentSchema, error) {
	// The struct decode alone cannot distinguish a missing top-level key
	// from an empty list, so key presence is probed first.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, NewSchemaError("", fmt.Sprintf("invalid JSON: %v", err))
	}
	for _, key := range []string{"experiences", "projects"} {
		if _, ok := probe[key]; !ok {
			return nil, NewSchemaError(key, "missing required top-level key")
		}
	}

	var schema ContentSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, NewSchemaError("", fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// Validate checks the schema shape. It is called before any table is
// touched, so a bad schema never leaves a half-rewritten document behind.
func (s *ContentSchema) Validate() error {
	validate := func(group string, sections []Section) error {
		for i, section := range sections {
			if section.BulletPoints == nil {
				return NewSchemaError(
					fmt.Sprintf("%s[%d]", group, i),
					"section is missing bullet_points")
			}
			for j, bullet := range section.BulletPoints {
				if bullet.Text == "" {
					return NewSchemaError(
						fmt.Sprintf("%s[%d].bullet_points[%d].text", group, i, j),
						"bullet point text must be non-empty")
				}
			}
		}
		return nil
	}
	if err := validate("experiences", s.Experiences); err != nil {
		return err
	}
	return validate("projects", s.Projects)
}

// Sections returns the match candidates in evaluation order: every
// experience first, then every project.
func (s *ContentSchema) Sections() []Section {
	sections := make([]Section, 0, len(s.Experiences)+len(s.Projects))
	sections = append(sections, s.Experiences...)
	sections = append(sections, s.Projects...)
	return sections
}
