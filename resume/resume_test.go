package resume

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

const sampleSource = `
contact:
  name: Jane Doe
  title: Staff Engineer
  email: jane@example.com
  location: Lisbon
summary: Fifteen years building infrastructure.
sections:
  - title: EXPERIENCE
    entries:
      - position: Staff Engineer
        organization: Acme
        dates: 2020 - 2024
        role: Led the platform team
        bullets:
          - Shipped the thing
          - Maintained the thing
      - position: Engineer
        organization: Initech
        bullets:
          - Did other things
  - title: EDUCATION
    paragraphs:
      - BSc Computer Science, 2008
`

func TestLoad(t *testing.T) {
	res, err := Load(strings.NewReader(sampleSource), "sample.yaml", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if res.Contact.Name != "Jane Doe" {
		t.Errorf("contact name = %q", res.Contact.Name)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("loaded %d sections, want 2", len(res.Sections))
	}
	if got := len(res.Sections[0].Entries); got != 2 {
		t.Errorf("first section has %d entries, want 2", got)
	}
	if _, err := uuid.Parse(res.ID); err != nil {
		t.Errorf("assigned ID %q is not a UUID", res.ID)
	}
}

func TestLoadKeepsValidID(t *testing.T) {
	src := "id: 0192aefb-1d70-7d7c-8000-0123456789ab\ncontact:\n  name: Jane Doe\n"
	res, err := Load(strings.NewReader(src), "sample.yaml", zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != "0192aefb-1d70-7d7c-8000-0123456789ab" {
		t.Errorf("valid source ID was replaced with %q", res.ID)
	}
}

func TestLoadRejectsBadSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "contact:\n  name: Jane\n  nickname: JD\n"},
		{"missing contact name", "contact:\n  email: jane@example.com\n"},
		{"untitled section", "contact:\n  name: Jane\nsections:\n  - entries: []\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tc.src), "bad.yaml", zaptest.NewLogger(t)); err == nil {
				t.Error("expected load to fail")
			}
		})
	}
}

func TestContactLine(t *testing.T) {
	c := Contact{Title: "Staff Engineer", Email: "jane@example.com", Location: "Lisbon"}
	want := "Staff Engineer  |  Lisbon  |  jane@example.com"
	if got := c.Line(); got != want {
		t.Errorf("contact line = %q, want %q", got, want)
	}

	if got := (&Contact{}).Line(); got != "" {
		t.Errorf("empty contact produced line %q", got)
	}
}

func TestElementsFlattening(t *testing.T) {
	res, err := Load(strings.NewReader(sampleSource), "sample.yaml", zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	els := res.Elements()

	wantStyles := []string{
		StyleName, StyleContact, StyleBody, // name, contact line, summary
		StyleSection,                                          // EXPERIENCE
		StyleEntry, StyleRole, StyleBullet, StyleBullet,       // first entry
		StyleEntry, StyleBullet,                               // second entry
		StyleSection, StyleBody,                               // EDUCATION
	}
	if len(els) != len(wantStyles) {
		t.Fatalf("flattened to %d elements, want %d", len(els), len(wantStyles))
	}
	for i, el := range els {
		if el.StyleName() != wantStyles[i] {
			t.Errorf("element %d style = %q, want %q", i, el.StyleName(), wantStyles[i])
		}
	}
}

func TestElementsListRefGrouping(t *testing.T) {
	res, err := Load(strings.NewReader(sampleSource), "sample.yaml", zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	refs := make(map[string][]string)
	for _, el := range res.Elements() {
		if b, ok := el.(BulletItem); ok {
			refs[b.ListRef] = append(refs[b.ListRef], b.Text)
		}
	}

	if len(refs) != 2 {
		t.Fatalf("bullets grouped into %d lists, want 2 (one per entry)", len(refs))
	}
	if got := refs["s0-e0"]; len(got) != 2 {
		t.Errorf("first entry list holds %v, want its two bullets", got)
	}
	if got := refs["s0-e1"]; len(got) != 1 {
		t.Errorf("second entry list holds %v, want its single bullet", got)
	}
}
