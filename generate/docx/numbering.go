package docx

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"docsmith/tokens"
)

// LevelSpec describes one list level. Indentation values come from tokens at
// definition time so a single token change propagates to every bullet in the
// document.
type LevelSpec struct {
	IndentCm        float64
	HangingIndentCm float64
	Glyph           string
}

// NumberingDef is one live list instance: a per-list numbering id referring
// to an abstract definition that may be shared by lists with identical
// levels.
type NumberingDef struct {
	AbstractID int
	InstanceID int
	Levels     []LevelSpec
}

// NumberingReattachError reports an attempt to attach numbering to a
// paragraph that already carries a numbering reference.
type NumberingReattachError struct {
	ParagraphIndex int
}

func (e *NumberingReattachError) Error() string {
	return fmt.Sprintf("numbering already attached to paragraph %d", e.ParagraphIndex)
}

// ErrEngineFrozen is returned for list definitions requested after the
// engine is frozen for the build phase.
var ErrEngineFrozen = errors.New("numbering engine is frozen")

// Engine generates native list-numbering definitions for one document.
// Abstract definitions are deduplicated by structural equality of their
// level sets.
type Engine struct {
	doc       *Document
	abstracts []*abstractDef
	defs      []*NumberingDef
	frozen    bool
}

type abstractDef struct {
	id     int
	levels []LevelSpec
}

// NewEngine creates a numbering engine bound to the document's numbering
// part.
func NewEngine(d *Document) *Engine {
	return &Engine{doc: d}
}

// BulletLevels builds the standard single-level bullet list specification
// from tokens. Indentation is never a literal constant here.
func BulletLevels(ts *tokens.Set) ([]LevelSpec, error) {
	indent, err := ts.Cm("bullet-indent-cm", 0.63)
	if err != nil {
		return nil, err
	}
	hanging, err := ts.Cm("bullet-hanging-indent-cm", 0.33)
	if err != nil {
		return nil, err
	}
	return []LevelSpec{{
		IndentCm:        indent,
		HangingIndentCm: hanging,
		Glyph:           ts.String("bullet-glyph", "•"),
	}}, nil
}

// DefineList returns a fresh numbering instance for the given level set,
// reusing a structurally identical abstract definition when one exists.
func (e *Engine) DefineList(levels []LevelSpec) (*NumberingDef, error) {
	if e.frozen {
		return nil, ErrEngineFrozen
	}
	if len(levels) == 0 {
		return nil, errors.New("cannot define list without levels")
	}

	abs := e.findAbstract(levels)
	if abs == nil {
		abs = &abstractDef{id: len(e.abstracts), levels: append([]LevelSpec(nil), levels...)}
		e.abstracts = append(e.abstracts, abs)
		e.writeAbstract(abs)
	}

	def := &NumberingDef{
		AbstractID: abs.id,
		InstanceID: len(e.defs) + 1, // numId 0 means "no numbering"
		Levels:     abs.levels,
	}
	e.defs = append(e.defs, def)
	e.writeInstance(def)
	return def, nil
}

// Freeze disallows further list definitions. Called by the content builder
// before the first paragraph is assembled.
func (e *Engine) Freeze() { e.frozen = true }

// Attach binds a paragraph to a numbering instance at the given level.
// Callable at most once per paragraph - re-attachment is a logic error and
// is signaled, not silently overwritten.
func (e *Engine) Attach(p *Paragraph, def *NumberingDef, level int) error {
	if p.numAttached {
		return &NumberingReattachError{ParagraphIndex: p.index}
	}
	if level < 0 || level >= len(def.Levels) {
		return fmt.Errorf("level %d out of range for numbering instance %d", level, def.InstanceID)
	}
	e.writeNumPr(p, def, level)
	p.numAttached = true
	return nil
}

// reattach replaces whatever numbering reference the paragraph carries.
// Reserved for the reconciliation repair path.
func (e *Engine) reattach(p *Paragraph, def *NumberingDef, level int) {
	ppr := p.pPr()
	if np := ppr.SelectElement("w:numPr"); np != nil {
		ppr.RemoveChild(np)
	}
	p.numAttached = false
	e.writeNumPr(p, def, level)
	p.numAttached = true
}

func (e *Engine) writeNumPr(p *Paragraph, def *NumberingDef, level int) {
	ppr := p.pPr()
	np := ppr.CreateElement("w:numPr")
	ilvl := np.CreateElement("w:ilvl")
	ilvl.CreateAttr("w:val", itoa(level))
	numID := np.CreateElement("w:numId")
	numID.CreateAttr("w:val", itoa(def.InstanceID))
}

// instance returns the numbering definition with the given instance id.
func (e *Engine) instance(numID int) *NumberingDef {
	for _, def := range e.defs {
		if def.InstanceID == numID {
			return def
		}
	}
	return nil
}

func (e *Engine) findAbstract(levels []LevelSpec) *abstractDef {
	for _, abs := range e.abstracts {
		if len(abs.levels) != len(levels) {
			continue
		}
		same := true
		for i := range levels {
			if abs.levels[i] != levels[i] {
				same = false
				break
			}
		}
		if same {
			return abs
		}
	}
	return nil
}

func (e *Engine) writeAbstract(abs *abstractDef) {
	el := etree.NewElement("w:abstractNum")
	el.CreateAttr("w:abstractNumId", itoa(abs.id))
	nsid := el.CreateElement("w:nsid")
	nsid.CreateAttr("w:val", abstractNsid())
	mlt := el.CreateElement("w:multiLevelType")
	if len(abs.levels) > 1 {
		mlt.CreateAttr("w:val", "multilevel")
	} else {
		mlt.CreateAttr("w:val", "singleLevel")
	}

	for i, lvl := range abs.levels {
		le := el.CreateElement("w:lvl")
		le.CreateAttr("w:ilvl", itoa(i))
		start := le.CreateElement("w:start")
		start.CreateAttr("w:val", "1")
		numFmt := le.CreateElement("w:numFmt")
		numFmt.CreateAttr("w:val", "bullet")
		text := le.CreateElement("w:lvlText")
		text.CreateAttr("w:val", lvl.Glyph)
		jc := le.CreateElement("w:lvlJc")
		jc.CreateAttr("w:val", "left")
		ppr := le.CreateElement("w:pPr")
		ind := ppr.CreateElement("w:ind")
		ind.CreateAttr("w:left", itoa(tokens.CmToTwips(lvl.IndentCm)))
		ind.CreateAttr("w:hanging", itoa(tokens.CmToTwips(lvl.HangingIndentCm)))
	}

	// abstractNum elements must precede num elements in the numbering part
	insertAt := 0
	for i, child := range e.doc.numberingRoot.ChildElements() {
		if child.Tag == "abstractNum" {
			insertAt = i + 1
		}
	}
	e.doc.numberingRoot.InsertChildAt(insertAt, el)
}

func (e *Engine) writeInstance(def *NumberingDef) {
	el := e.doc.numberingRoot.CreateElement("w:num")
	el.CreateAttr("w:numId", itoa(def.InstanceID))
	ref := el.CreateElement("w:abstractNumId")
	ref.CreateAttr("w:val", itoa(def.AbstractID))
}

// abstractNsid generates the random 8-hex-digit list identifier the format
// expects on abstract definitions.
func abstractNsid() string {
	u := uuid.New()
	return fmt.Sprintf("%02X%02X%02X%02X", u[0], u[1], u[2], u[3])
}
