// Package docx builds WordprocessingML documents from a semantic element
// tree and a set of style tokens. The underlying format applies styles
// through an order-sensitive object model which silently ignores requests
// made in the wrong sequence, so assembly is split into a deterministic
// build pass followed by a verify-and-repair reconciliation pass.
package docx

import (
	"strconv"

	"github.com/beevik/etree"

	"docsmith/tokens"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsCP  = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC  = "http://purl.org/dc/elements/1.1/"
	nsDCT = "http://purl.org/dc/terms/"
	nsXSI = "http://www.w3.org/2001/XMLSchema-instance"
	nsEP  = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
)

// PageSetup carries page geometry in twips. Margin values originate from
// tokens, dimensions from the configured paper size.
type PageSetup struct {
	WidthTwips        int
	HeightTwips       int
	MarginTopTwips    int
	MarginBottomTwips int
	MarginLeftTwips   int
	MarginRightTwips  int
}

// Defaults describes document-wide run defaults emitted into the styles part.
type Defaults struct {
	FontFamily string
	SizePt     float64
}

// Document is the in-memory package under construction: one part per etree
// document plus the tracked paragraph list. Not safe for concurrent use -
// the whole pipeline is single-threaded by design, paragraph order is
// semantically load-bearing.
type Document struct {
	page     PageSetup
	defaults Defaults

	doc  *etree.Document
	body *etree.Element

	styles     *etree.Document
	stylesRoot *etree.Element

	numbering     *etree.Document
	numberingRoot *etree.Element

	settings     *etree.Document
	settingsRoot *etree.Element

	compatApplied bool
	paragraphs    []*Paragraph
}

// Paragraph tracks one output paragraph through its lifecycle: created empty,
// content-bound once a run is attached, styled, optionally numbered and
// finally verified by reconciliation.
type Paragraph struct {
	index        int
	el           *etree.Element
	contentBound bool
	numAttached  bool
}

// Index returns position of the paragraph in document reading order.
func (p *Paragraph) Index() int { return p.index }

// ContentBound reports whether at least one text run has been attached.
func (p *Paragraph) ContentBound() bool { return p.contentBound }

// RunFormat holds the run-level emphasis that has no token coverage and is
// therefore the only formatting legally applied outside a style definition.
type RunFormat struct {
	Bold   bool
	Italic bool
}

// New creates an empty document with all package parts initialized.
func New(page PageSetup, defaults Defaults) *Document {
	d := &Document{page: page, defaults: defaults}

	d.doc = etree.NewDocument()
	d.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := d.doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	d.body = root.CreateElement("w:body")

	d.styles = etree.NewDocument()
	d.styles.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	d.stylesRoot = d.styles.CreateElement("w:styles")
	d.stylesRoot.CreateAttr("xmlns:w", nsW)
	d.writeDocDefaults()

	d.numbering = etree.NewDocument()
	d.numbering.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	d.numberingRoot = d.numbering.CreateElement("w:numbering")
	d.numberingRoot.CreateAttr("xmlns:w", nsW)

	d.settings = etree.NewDocument()
	d.settings.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	d.settingsRoot = d.settings.CreateElement("w:settings")
	d.settingsRoot.CreateAttr("xmlns:w", nsW)

	return d
}

func (d *Document) writeDocDefaults() {
	dd := d.stylesRoot.CreateElement("w:docDefaults")
	rpd := dd.CreateElement("w:rPrDefault")
	rpr := rpd.CreateElement("w:rPr")
	fonts := rpr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", d.defaults.FontFamily)
	fonts.CreateAttr("w:hAnsi", d.defaults.FontFamily)
	fonts.CreateAttr("w:cs", d.defaults.FontFamily)
	sz := rpr.CreateElement("w:sz")
	sz.CreateAttr("w:val", itoa(tokens.PtToHalfPoints(d.defaults.SizePt)))
	szCs := rpr.CreateElement("w:szCs")
	szCs.CreateAttr("w:val", itoa(tokens.PtToHalfPoints(d.defaults.SizePt)))
	dd.CreateElement("w:pPrDefault")
}

// AddParagraph appends a new empty paragraph to the document body.
func (d *Document) AddParagraph() *Paragraph {
	p := &Paragraph{
		index: len(d.paragraphs),
		el:    d.body.CreateElement("w:p"),
	}
	d.paragraphs = append(d.paragraphs, p)
	return p
}

// Paragraphs returns paragraphs in document reading order.
func (d *Document) Paragraphs() []*Paragraph { return d.paragraphs }

// AddRun attaches one text run to the paragraph making it content-bound.
// Empty text attaches nothing - emptiness must stay an explicit state, not a
// zero-length run.
func (p *Paragraph) AddRun(text string, f RunFormat) {
	if len(text) == 0 {
		return
	}
	r := p.el.CreateElement("w:r")
	if f.Bold || f.Italic {
		rpr := r.CreateElement("w:rPr")
		if f.Bold {
			rpr.CreateElement("w:b")
		}
		if f.Italic {
			rpr.CreateElement("w:i")
		}
	}
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	p.contentBound = true
}

// AddTabRun attaches a tab run. A tab alone does not make the paragraph
// content-bound.
func (p *Paragraph) AddTabRun() {
	r := p.el.CreateElement("w:r")
	r.CreateElement("w:tab")
}

// runCount returns number of runs currently attached to the paragraph.
func (p *Paragraph) runCount() int {
	return len(p.el.SelectElements("w:r"))
}

// pPr returns the paragraph properties element creating it when absent.
// WordprocessingML requires pPr to be the first child of w:p - inserting it
// after runs have been added is exactly the ordering trap this package
// exists to neutralize.
func (p *Paragraph) pPr() *etree.Element {
	if ppr := p.el.SelectElement("w:pPr"); ppr != nil {
		return ppr
	}
	ppr := etree.NewElement("w:pPr")
	p.el.InsertChildAt(0, ppr)
	return ppr
}

// styleID returns the bound style identifier or empty string.
func (p *Paragraph) styleID() string {
	ppr := p.el.SelectElement("w:pPr")
	if ppr == nil {
		return ""
	}
	ps := ppr.SelectElement("w:pStyle")
	if ps == nil {
		return ""
	}
	return ps.SelectAttrValue("w:val", "")
}

// numberingRef returns the attached numbering instance id and level, or
// (0, 0) when the paragraph carries no numbering reference.
func (p *Paragraph) numberingRef() (numID, level int) {
	ppr := p.el.SelectElement("w:pPr")
	if ppr == nil {
		return 0, 0
	}
	np := ppr.SelectElement("w:numPr")
	if np == nil {
		return 0, 0
	}
	if e := np.SelectElement("w:numId"); e != nil {
		numID = atoi(e.SelectAttrValue("w:val", "0"))
	}
	if e := np.SelectElement("w:ilvl"); e != nil {
		level = atoi(e.SelectAttrValue("w:val", "0"))
	}
	return numID, level
}

// finalizeBody appends section properties. Must run exactly once, after the
// last paragraph.
func (d *Document) finalizeBody() {
	if d.body.SelectElement("w:sectPr") != nil {
		return
	}
	sect := d.body.CreateElement("w:sectPr")
	pgSz := sect.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", itoa(d.page.WidthTwips))
	pgSz.CreateAttr("w:h", itoa(d.page.HeightTwips))
	pgMar := sect.CreateElement("w:pgMar")
	pgMar.CreateAttr("w:top", itoa(d.page.MarginTopTwips))
	pgMar.CreateAttr("w:bottom", itoa(d.page.MarginBottomTwips))
	pgMar.CreateAttr("w:left", itoa(d.page.MarginLeftTwips))
	pgMar.CreateAttr("w:right", itoa(d.page.MarginRightTwips))
	pgMar.CreateAttr("w:header", "720")
	pgMar.CreateAttr("w:footer", "720")
}

func itoa(v int) string { return strconv.Itoa(v) }

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
