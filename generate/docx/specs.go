package docx

import (
	"docsmith/resume"
	"docsmith/tokens"
)

// BuildSpecs derives the complete set of resume style specifications from
// tokens. This is the only place where token keys meet style facets - every
// spec is a pure function of the token set and the configured font families.
func BuildSpecs(ts *tokens.Set, bodyFont, headingFont string) ([]StyleSpec, error) {
	var specs []StyleSpec

	accent, err := ts.Color("color-accent", "1F3864")
	if err != nil {
		return nil, err
	}
	muted, err := ts.Color("color-muted", "595959")
	if err != nil {
		return nil, err
	}
	text, err := ts.Color("color-text", "000000")
	if err != nil {
		return nil, err
	}

	nameSize, err := ts.Pt("name-size-pt", 16)
	if err != nil {
		return nil, err
	}
	nameAfter, err := ts.Pt("name-spacing-after-pt", 1)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name: resume.StyleName,
		Font: FontFacet{Family: headingFont, SizePt: nameSize, Bold: true, ColorHex: accent},
		Spacing: SpacingFacet{AfterPt: nameAfter},
		Paragraph: ParagraphFacet{KeepWithNext: true},
	})

	contactSize, err := ts.Pt("contact-size-pt", 9)
	if err != nil {
		return nil, err
	}
	contactAfter, err := ts.Pt("contact-spacing-after-pt", 8)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name: resume.StyleContact,
		Font: FontFacet{Family: bodyFont, SizePt: contactSize, ColorHex: muted},
		Spacing: SpacingFacet{AfterPt: contactAfter},
	})

	sectionSize, err := ts.Pt("section-size-pt", 11)
	if err != nil {
		return nil, err
	}
	sectionBefore, err := ts.Pt("section-spacing-before-pt", 10)
	if err != nil {
		return nil, err
	}
	sectionAfter, err := ts.Pt("section-spacing-after-pt", 6)
	if err != nil {
		return nil, err
	}
	borderWidth, err := ts.Pt("section-border-width-pt", 0.75)
	if err != nil {
		return nil, err
	}
	borderPad, err := ts.Pt("section-border-padding-pt", 2)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name: resume.StyleSection,
		Font: FontFacet{Family: headingFont, SizePt: sectionSize, Bold: true, ColorHex: accent},
		Border: BorderFacet{
			Enabled:   true,
			WidthPt:   borderWidth,
			ColorHex:  accent,
			Style:     "single",
			PaddingPt: borderPad,
		},
		Spacing: SpacingFacet{BeforePt: sectionBefore, AfterPt: sectionAfter},
		Paragraph: ParagraphFacet{OutlineLevel: 1, KeepWithNext: true},
	})

	entrySize, err := ts.Pt("entry-size-pt", 10.5)
	if err != nil {
		return nil, err
	}
	entryBefore, err := ts.Pt("entry-spacing-before-pt", 6)
	if err != nil {
		return nil, err
	}
	entryAfter, err := ts.Pt("entry-spacing-after-pt", 2)
	if err != nil {
		return nil, err
	}
	entryTab, err := ts.Cm("entry-right-tab-cm", 16.5)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name: resume.StyleEntry,
		Font: FontFacet{Family: bodyFont, SizePt: entrySize, ColorHex: text},
		Spacing: SpacingFacet{BeforePt: entryBefore, AfterPt: entryAfter},
		Paragraph: ParagraphFacet{KeepWithNext: true, RightTabStopCm: entryTab},
	})

	bodySize, err := ts.Pt("body-size-pt", 10)
	if err != nil {
		return nil, err
	}
	bodyAfter, err := ts.Pt("body-spacing-after-pt", 4)
	if err != nil {
		return nil, err
	}
	lineHeight, err := ts.Pt("body-line-height-pt", 12.5)
	if err != nil {
		return nil, err
	}

	roleAfter, err := ts.Pt("role-spacing-after-pt", 2)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name: resume.StyleRole,
		Font: FontFacet{Family: bodyFont, SizePt: bodySize, Italic: true, ColorHex: muted},
		Spacing: SpacingFacet{AfterPt: roleAfter},
		Paragraph: ParagraphFacet{KeepWithNext: true},
	})

	specs = append(specs, StyleSpec{
		Name: resume.StyleBody,
		Font: FontFacet{Family: bodyFont, SizePt: bodySize, ColorHex: text},
		Spacing: SpacingFacet{AfterPt: bodyAfter, LineRule: LineRuleExact, LineHeightPt: lineHeight},
	})

	bulletAfter, err := ts.Pt("bullet-spacing-after-pt", 2)
	if err != nil {
		return nil, err
	}
	specs = append(specs, StyleSpec{
		Name:    resume.StyleBullet,
		BasedOn: resume.StyleBody,
		Font:    FontFacet{Family: bodyFont, SizePt: bodySize, ColorHex: text},
		Spacing: SpacingFacet{AfterPt: bulletAfter, LineRule: LineRuleExact, LineHeightPt: lineHeight},
		Paragraph: ParagraphFacet{KeepLinesTogether: true},
	})

	return specs, nil
}
