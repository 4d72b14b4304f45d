package docx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"docsmith/tokens"
)

// LineRule selects how line height is interpreted.
type LineRule int

const (
	LineRuleAuto LineRule = iota
	LineRuleExact
)

type (
	FontFacet struct {
		Family   string
		SizePt   float64
		Bold     bool
		Italic   bool
		ColorHex string
	}

	// BorderFacet describes the bottom rule under a paragraph. The resume
	// layout uses borders only as section separators, so one edge is enough.
	BorderFacet struct {
		Enabled   bool
		WidthPt   float64
		ColorHex  string
		Style     string
		PaddingPt float64
	}

	SpacingFacet struct {
		BeforePt     float64
		AfterPt      float64
		LineRule     LineRule
		LineHeightPt float64
	}

	ParagraphFacet struct {
		OutlineLevel      int // 0 = body text, 1..9 = outline
		KeepWithNext      bool
		KeepLinesTogether bool
		RightTabStopCm    float64
	}

	// StyleSpec is a complete named style definition. It is fully determined
	// by tokens at registration time and immutable once registered.
	StyleSpec struct {
		Name      string
		BasedOn   string
		Font      FontFacet
		Border    BorderFacet
		Spacing   SpacingFacet
		Paragraph ParagraphFacet
	}
)

// StyleConflictError reports two registrations disagreeing for one name -
// a programming error upstream of this package, never papered over.
type StyleConflictError struct {
	Name string
}

func (e *StyleConflictError) Error() string {
	return fmt.Sprintf("conflicting registration for style %q", e.Name)
}

// ErrRegistryFrozen is returned for registration attempts after the first
// paragraph has been built.
var ErrRegistryFrozen = errors.New("style registry is frozen")

// Registry is the process table of named style specifications and the single
// legal writer of style-level facets. Direct paragraph formatting for any
// facet a StyleSpec covers is disallowed by contract - direct formatting
// outranks paragraph styles in the target format and was the origin of the
// inconsistent-output defect class.
type Registry struct {
	specs  map[string]StyleSpec
	frozen bool
}

// NewRegistry creates an empty style registry scoped to one generation run.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]StyleSpec)}
}

// Register adds a style specification. Re-registering an identical spec is a
// no-op; a different spec under an existing name is a StyleConflictError.
func (r *Registry) Register(spec StyleSpec) error {
	if r.frozen {
		return fmt.Errorf("cannot register style %q: %w", spec.Name, ErrRegistryFrozen)
	}
	if spec.Name == "" {
		return errors.New("cannot register style without a name")
	}
	if old, ok := r.specs[spec.Name]; ok {
		if old != spec {
			return &StyleConflictError{Name: spec.Name}
		}
		return nil
	}
	r.specs[spec.Name] = spec
	return nil
}

// Spec returns registered specification by name.
func (r *Registry) Spec(name string) (StyleSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Freeze disallows further registrations. Called by the content builder
// before the first paragraph is assembled.
func (r *Registry) Freeze() { r.frozen = true }

// StyleID derives the w:styleId value from a style name.
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// Bind makes sure the named style exists in the document styles part with
// every facet applied. Existing definitions are replaced wholesale - partial
// application is the primary historical failure mode, so the definition is
// always emitted complete.
func (r *Registry) Bind(d *Document, name string) error {
	spec, ok := r.specs[name]
	if !ok {
		return fmt.Errorf("style %q is not registered", name)
	}
	if !d.compatApplied {
		return fmt.Errorf("style %q bound before compatibility settings were applied", name)
	}

	id := StyleID(name)
	for _, el := range d.stylesRoot.SelectElements("w:style") {
		if el.SelectAttrValue("w:styleId", "") == id {
			d.stylesRoot.RemoveChild(el)
			break
		}
	}
	d.stylesRoot.AddChild(r.styleElement(&spec, id))
	return nil
}

// Apply binds the named style to a paragraph, creating the style definition
// in the document when needed. The content-first rule is enforced here: an
// empty paragraph receiving a style assignment is a defect, the target
// format would silently discard the request.
func (r *Registry) Apply(d *Document, p *Paragraph, name string) error {
	if !p.contentBound {
		return fmt.Errorf("cannot bind style %q to paragraph %d: paragraph has no content", name, p.index)
	}
	if err := r.Bind(d, name); err != nil {
		return err
	}

	ppr := p.pPr()
	if ps := ppr.SelectElement("w:pStyle"); ps != nil {
		ppr.RemoveChild(ps)
	}
	ps := etree.NewElement("w:pStyle")
	ps.CreateAttr("w:val", StyleID(name))
	ppr.InsertChildAt(0, ps)
	return nil
}

// ApplyCompatibilitySettings writes the settings-part flags that make
// line-height and spacing interpretation consistent across renderer
// implementations. Must run once per document before any paragraph is
// styled.
func (r *Registry) ApplyCompatibilitySettings(d *Document) {
	if d.compatApplied {
		return
	}
	compat := d.settingsRoot.CreateElement("w:compat")
	compat.CreateElement("w:doNotUseHTMLParagraphAutoSpacing")
	cs := compat.CreateElement("w:compatSetting")
	cs.CreateAttr("w:name", "compatibilityMode")
	cs.CreateAttr("w:uri", "http://schemas.microsoft.com/office/word")
	cs.CreateAttr("w:val", "15")
	d.compatApplied = true
}

func (r *Registry) styleElement(spec *StyleSpec, id string) *etree.Element {
	st := etree.NewElement("w:style")
	st.CreateAttr("w:type", "paragraph")
	st.CreateAttr("w:styleId", id)

	name := st.CreateElement("w:name")
	name.CreateAttr("w:val", spec.Name)
	if spec.BasedOn != "" {
		based := st.CreateElement("w:basedOn")
		based.CreateAttr("w:val", StyleID(spec.BasedOn))
	}
	st.CreateElement("w:qFormat")

	ppr := st.CreateElement("w:pPr")
	if spec.Paragraph.KeepWithNext {
		ppr.CreateElement("w:keepNext")
	}
	if spec.Paragraph.KeepLinesTogether {
		ppr.CreateElement("w:keepLines")
	}
	if spec.Border.Enabled {
		bdr := ppr.CreateElement("w:pBdr")
		bottom := bdr.CreateElement("w:bottom")
		style := spec.Border.Style
		if style == "" {
			style = "single"
		}
		bottom.CreateAttr("w:val", style)
		bottom.CreateAttr("w:sz", itoa(tokens.PtToEighths(spec.Border.WidthPt)))
		bottom.CreateAttr("w:space", itoa(int(spec.Border.PaddingPt)))
		bottom.CreateAttr("w:color", spec.Border.ColorHex)
	}
	if spec.Paragraph.RightTabStopCm > 0 {
		tabs := ppr.CreateElement("w:tabs")
		tab := tabs.CreateElement("w:tab")
		tab.CreateAttr("w:val", "right")
		tab.CreateAttr("w:pos", itoa(tokens.CmToTwips(spec.Paragraph.RightTabStopCm)))
	}
	spacing := ppr.CreateElement("w:spacing")
	spacing.CreateAttr("w:before", itoa(tokens.PtToTwips(spec.Spacing.BeforePt)))
	spacing.CreateAttr("w:after", itoa(tokens.PtToTwips(spec.Spacing.AfterPt)))
	if spec.Spacing.LineRule == LineRuleExact {
		spacing.CreateAttr("w:line", itoa(tokens.PtToTwips(spec.Spacing.LineHeightPt)))
		spacing.CreateAttr("w:lineRule", "exact")
	}
	if spec.Paragraph.OutlineLevel > 0 {
		lvl := ppr.CreateElement("w:outlineLvl")
		lvl.CreateAttr("w:val", itoa(spec.Paragraph.OutlineLevel-1))
	}

	rpr := st.CreateElement("w:rPr")
	if spec.Font.Family != "" {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", spec.Font.Family)
		fonts.CreateAttr("w:hAnsi", spec.Font.Family)
	}
	if spec.Font.Bold {
		rpr.CreateElement("w:b")
	}
	if spec.Font.Italic {
		rpr.CreateElement("w:i")
	}
	if spec.Font.ColorHex != "" {
		color := rpr.CreateElement("w:color")
		color.CreateAttr("w:val", spec.Font.ColorHex)
	}
	if spec.Font.SizePt > 0 {
		sz := rpr.CreateElement("w:sz")
		sz.CreateAttr("w:val", itoa(tokens.PtToHalfPoints(spec.Font.SizePt)))
		szCs := rpr.CreateElement("w:szCs")
		szCs.CreateAttr("w:val", itoa(tokens.PtToHalfPoints(spec.Font.SizePt)))
	}
	return st
}

// styleSpacing reads back the spacing values persisted in the styles part
// for the given style id. Used by reconciliation to compare persisted state
// against recorded intent.
func (d *Document) styleSpacing(id string) (beforeTwips, afterTwips int, ok bool) {
	for _, el := range d.stylesRoot.SelectElements("w:style") {
		if el.SelectAttrValue("w:styleId", "") != id {
			continue
		}
		ppr := el.SelectElement("w:pPr")
		if ppr == nil {
			return 0, 0, false
		}
		sp := ppr.SelectElement("w:spacing")
		if sp == nil {
			return 0, 0, false
		}
		return atoi(sp.SelectAttrValue("w:before", "0")), atoi(sp.SelectAttrValue("w:after", "0")), true
	}
	return 0, 0, false
}
