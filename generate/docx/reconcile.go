package docx

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// spacingToleranceTwips allows one unit of rounding slack when comparing
// persisted spacing against recorded intent.
const spacingToleranceTwips = 1

// Report summarizes the outcome of one reconciliation pass.
type Report struct {
	Verified    int
	Repaired    int
	Irreparable int
	// IrreparableIndexes identifies paragraphs whose persisted state could
	// not be brought in line with recorded intent.
	IrreparableIndexes []int
}

// Err folds irreparable entries into a single error for callers that treat
// an irreparable document as unacceptable to ship. Returns nil for a clean
// report.
func (r *Report) Err() error {
	var err error
	for _, idx := range r.IrreparableIndexes {
		err = multierr.Append(err, fmt.Errorf("paragraph %d does not match recorded intent", idx))
	}
	return err
}

// Reconcile runs the idempotent verify-and-repair pass over a built
// document. Every ledger entry is checked against the paragraph's persisted
// state; mismatches are repaired by re-invoking the registry bind and the
// numbering attach, then re-verified within the same pass. A paragraph that
// still disagrees after repair is reported as irreparable - that indicates a
// format incompatibility this engine does not understand and must never be
// silently accepted.
func Reconcile(d *Document, ledger *Ledger, reg *Registry, eng *Engine, log *zap.Logger) (*Report, error) {
	log = log.Named("reconcile")
	paragraphs := d.Paragraphs()
	rpt := &Report{}

	for _, entry := range ledger.Entries() {
		if entry.Index < 0 || entry.Index >= len(paragraphs) {
			return nil, fmt.Errorf("ledger entry %d has no paragraph", entry.Index)
		}
		p := paragraphs[entry.Index]

		if verify(d, entry, p) {
			entry.State = StateVerified
			rpt.Verified++
			continue
		}

		if entry.Contentless {
			// expected-empty paragraphs are never repaired - style binding
			// on an empty paragraph is the defect this engine guards against
			entry.State = StateIrreparable
			rpt.Irreparable++
			rpt.IrreparableIndexes = append(rpt.IrreparableIndexes, entry.Index)
			log.Warn("Contentless paragraph acquired unexpected state", zap.Int("paragraph", entry.Index))
			continue
		}

		log.Debug("Paragraph state diverged from intent, repairing",
			zap.Int("paragraph", entry.Index), zap.String("style", entry.StyleName))

		if err := repair(d, entry, p, reg, eng); err != nil {
			return nil, fmt.Errorf("unable to repair paragraph %d: %w", entry.Index, err)
		}

		if verify(d, entry, p) {
			entry.State = StateRepaired
			rpt.Repaired++
			continue
		}

		entry.State = StateIrreparable
		rpt.Irreparable++
		rpt.IrreparableIndexes = append(rpt.IrreparableIndexes, entry.Index)
		log.Warn("Paragraph could not be repaired",
			zap.Int("paragraph", entry.Index), zap.String("style", entry.StyleName))
	}

	log.Info("Reconciliation completed",
		zap.Int("verified", rpt.Verified), zap.Int("repaired", rpt.Repaired), zap.Int("irreparable", rpt.Irreparable))
	return rpt, nil
}

// verify compares persisted paragraph state against recorded intent.
func verify(d *Document, entry *LedgerEntry, p *Paragraph) bool {
	if entry.Contentless {
		return p.styleID() == "" && p.runCount() == 0
	}

	if p.styleID() != StyleID(entry.StyleName) {
		return false
	}

	numID, level := p.numberingRef()
	if numID != entry.NumberingID || (entry.NumberingID != 0 && level != entry.NumberLevel) {
		return false
	}

	before, after, ok := d.styleSpacing(StyleID(entry.StyleName))
	if !ok {
		return false
	}
	return diff(before, entry.BeforeTwips) <= spacingToleranceTwips &&
		diff(after, entry.AfterTwips) <= spacingToleranceTwips
}

// repair re-invokes the single legal writers for style and numbering state.
func repair(d *Document, entry *LedgerEntry, p *Paragraph, reg *Registry, eng *Engine) error {
	if err := reg.Apply(d, p, entry.StyleName); err != nil {
		return err
	}

	if entry.NumberingID == 0 {
		// stale numbering reference must go away entirely
		if np := p.pPr().SelectElement("w:numPr"); np != nil {
			p.pPr().RemoveChild(np)
			p.numAttached = false
		}
		return nil
	}

	def := eng.instance(entry.NumberingID)
	if def == nil {
		return fmt.Errorf("numbering instance %d is not defined", entry.NumberingID)
	}
	eng.reattach(p, def, entry.NumberLevel)
	return nil
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
