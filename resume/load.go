package resume

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

type (
	Contact struct {
		Name     string `yaml:"name"`
		Title    string `yaml:"title,omitempty"`
		Email    string `yaml:"email,omitempty"`
		Phone    string `yaml:"phone,omitempty"`
		Location string `yaml:"location,omitempty"`
		URL      string `yaml:"url,omitempty"`
	}

	Entry struct {
		Primary   string   `yaml:"position"`
		Secondary string   `yaml:"organization,omitempty"`
		Dates     string   `yaml:"dates,omitempty"`
		Role      string   `yaml:"role,omitempty"`
		Bullets   []string `yaml:"bullets,omitempty"`
	}

	Section struct {
		Title      string   `yaml:"title"`
		Paragraphs []string `yaml:"paragraphs,omitempty"`
		Entries    []Entry  `yaml:"entries,omitempty"`
	}

	Resume struct {
		ID       string    `yaml:"id,omitempty"`
		Contact  Contact   `yaml:"contact"`
		Summary  string    `yaml:"summary,omitempty"`
		Sections []Section `yaml:"sections"`
	}
)

// Line assembles the single contact line under the name.
func (c *Contact) Line() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Title, c.Location, c.Phone, c.Email, c.URL} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "  |  ")
}

// Load reads resume content from YAML source. Unknown fields are rejected so
// authoring mistakes surface instead of silently dropping content. The resume
// gets a stable document ID - when source carries none or an invalid one a
// new UUID is assigned.
func Load(r io.Reader, srcName string, log *zap.Logger) (*Resume, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var res Resume
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("unable to decode resume source (%s): %w", srcName, err)
	}

	if res.Contact.Name == "" {
		return nil, fmt.Errorf("resume source (%s) has no contact name", srcName)
	}
	for i, sec := range res.Sections {
		if sec.Title == "" {
			return nil, fmt.Errorf("resume source (%s) section %d has no title", srcName, i)
		}
	}

	if _, err := uuid.Parse(res.ID); err != nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("unable to generate resume UUID: %w", err)
		}
		if res.ID != "" {
			log.Warn("Resume has invalid ID, correcting", zap.String("old_id", res.ID), zap.Stringer("new_id", id))
		}
		res.ID = id.String()
	}
	return &res, nil
}
