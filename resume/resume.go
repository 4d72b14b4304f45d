// Package resume defines the semantic content model consumed by document
// generation. The model carries structure and plain text only - prose quality
// and content tailoring are upstream concerns.
package resume

import "fmt"

// Style names every element binds to. The generator registers a style
// specification under each of these names before any content is built.
const (
	StyleName     = "Resume Name"
	StyleContact  = "Resume Contact"
	StyleSection  = "Resume Section Header"
	StyleEntry    = "Resume Entry Header"
	StyleRole     = "Resume Role"
	StyleBody     = "Resume Body"
	StyleBullet   = "Resume Bullet"
)

// Element is one node of the ordered semantic tree. Order is document reading
// order and is semantically meaningful.
type Element interface {
	// StyleName names the style specification this element binds to.
	StyleName() string

	element()
}

// SectionHeader starts a titled resume section ("EXPERIENCE", "EDUCATION").
type SectionHeader struct {
	Text string
}

// EntryHeader opens one entry inside a section: position and company plus
// right-aligned date range.
type EntryHeader struct {
	Primary   string
	Secondary string
	Dates     string
}

// RoleDescription is a short line describing the role under an entry header.
type RoleDescription struct {
	Text string
}

// BulletItem is a single bulleted accomplishment. Items sharing ListRef
// belong to one logical list and must end up referencing one numbering
// definition instance.
type BulletItem struct {
	Text    string
	ListRef string
}

// PlainParagraph is unadorned body text.
type PlainParagraph struct {
	Text string
	// Style overrides the default body style when not empty (the contact
	// block and the name line reuse this variant).
	Style string
}

func (SectionHeader) element()   {}
func (EntryHeader) element()     {}
func (RoleDescription) element() {}
func (BulletItem) element()      {}
func (PlainParagraph) element()  {}

func (SectionHeader) StyleName() string   { return StyleSection }
func (EntryHeader) StyleName() string     { return StyleEntry }
func (RoleDescription) StyleName() string { return StyleRole }
func (BulletItem) StyleName() string      { return StyleBullet }

func (p PlainParagraph) StyleName() string {
	if p.Style != "" {
		return p.Style
	}
	return StyleBody
}

// Elements flattens the resume into the ordered element sequence the content
// builder consumes. Every entry produces its own logical bullet list.
func (r *Resume) Elements() []Element {
	var out []Element

	if r.Contact.Name != "" {
		out = append(out, PlainParagraph{Text: r.Contact.Name, Style: StyleName})
	}
	if line := r.Contact.Line(); line != "" {
		out = append(out, PlainParagraph{Text: line, Style: StyleContact})
	}
	if r.Summary != "" {
		out = append(out, PlainParagraph{Text: r.Summary})
	}

	for si, sec := range r.Sections {
		out = append(out, SectionHeader{Text: sec.Title})
		for pi := range sec.Paragraphs {
			out = append(out, PlainParagraph{Text: sec.Paragraphs[pi]})
		}
		for ei, entry := range sec.Entries {
			out = append(out, EntryHeader{
				Primary:   entry.Primary,
				Secondary: entry.Secondary,
				Dates:     entry.Dates,
			})
			if entry.Role != "" {
				out = append(out, RoleDescription{Text: entry.Role})
			}
			listRef := fmt.Sprintf("s%d-e%d", si, ei)
			for _, b := range entry.Bullets {
				out = append(out, BulletItem{Text: b, ListRef: listRef})
			}
		}
	}
	return out
}
