package docx

import (
	"fmt"

	"go.uber.org/zap"

	"docsmith/resume"
	"docsmith/tokens"
)

// EntryState tracks a ledger entry through reconciliation.
type EntryState int

const (
	StatePending EntryState = iota
	StateVerified
	StateRepaired
	StateIrreparable
)

func (s EntryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateVerified:
		return "verified"
	case StateRepaired:
		return "repaired"
	case StateIrreparable:
		return "irreparable"
	default:
		return fmt.Sprintf("EntryState(%d)", int(s))
	}
}

// LedgerEntry records the intended final state of one paragraph. The builder
// is authoritative on intent, the reconciliation pass on persisted state -
// this record is the only channel between the two.
type LedgerEntry struct {
	Index       int
	StyleName   string
	NumberingID int // 0 = no numbering reference
	NumberLevel int
	BeforeTwips int
	AfterTwips  int
	Contentless bool
	State       EntryState
}

// Ledger is the per-paragraph record of intended style and numbering state
// produced during the build and consumed by reconciliation.
type Ledger struct {
	entries []*LedgerEntry
}

// Entries returns ledger entries in paragraph order.
func (l *Ledger) Entries() []*LedgerEntry { return l.entries }

// Build assembles the document from the semantic element tree in strict
// input order. For every element: create an empty paragraph, attach all text
// runs, bind the style through the registry and, for bullets, attach
// numbering. Text must exist on a paragraph before a custom style is bound
// to it - the target format silently drops style requests on empty
// paragraphs.
func Build(elements []resume.Element, reg *Registry, eng *Engine, bulletLevels []LevelSpec, d *Document, log *zap.Logger) (*Ledger, error) {
	log = log.Named("builder")

	// Document-level compatibility flags must exist before any style binding.
	reg.ApplyCompatibilitySettings(d)

	// Numbering instances are created up front so both the registry and the
	// engine are read-only once paragraph assembly starts.
	lists := make(map[string]*NumberingDef)
	listOf := make([]string, 0, 4)
	for _, el := range elements {
		b, ok := el.(resume.BulletItem)
		if !ok {
			continue
		}
		if _, done := lists[b.ListRef]; done {
			continue
		}
		def, err := eng.DefineList(bulletLevels)
		if err != nil {
			return nil, fmt.Errorf("unable to define bullet list %q: %w", b.ListRef, err)
		}
		lists[b.ListRef] = def
		listOf = append(listOf, b.ListRef)
	}
	if len(listOf) > 0 {
		log.Debug("Bullet lists defined", zap.Int("count", len(listOf)))
	}

	reg.Freeze()
	eng.Freeze()

	ledger := &Ledger{}
	for i, el := range elements {
		p := d.AddParagraph()
		attachRuns(p, el)

		entry := &LedgerEntry{Index: p.Index(), State: StatePending}
		ledger.entries = append(ledger.entries, entry)

		if !p.ContentBound() {
			// expected-empty, checked state: reconciliation will verify the
			// paragraph stayed bare instead of skipping it silently
			entry.Contentless = true
			log.Debug("Element produced no content", zap.Int("element", i), zap.Int("paragraph", p.Index()))
			continue
		}

		name := el.StyleName()
		if err := reg.Apply(d, p, name); err != nil {
			return nil, fmt.Errorf("unable to style paragraph %d: %w", p.Index(), err)
		}
		entry.StyleName = name
		if spec, ok := reg.Spec(name); ok {
			entry.BeforeTwips = tokens.PtToTwips(spec.Spacing.BeforePt)
			entry.AfterTwips = tokens.PtToTwips(spec.Spacing.AfterPt)
		}

		if b, ok := el.(resume.BulletItem); ok {
			def := lists[b.ListRef]
			if err := eng.Attach(p, def, 0); err != nil {
				return nil, fmt.Errorf("unable to attach numbering to paragraph %d: %w", p.Index(), err)
			}
			entry.NumberingID = def.InstanceID
			entry.NumberLevel = 0
		}
	}

	d.finalizeBody()
	log.Debug("Document built", zap.Int("paragraphs", len(ledger.entries)), zap.Int("lists", len(listOf)))
	return ledger, nil
}

// attachRuns emits the run shape of one element. Run-level bold and italic
// here are the one-off emphasis the style system intentionally leaves to
// direct formatting (no token covers them).
func attachRuns(p *Paragraph, el resume.Element) {
	switch v := el.(type) {
	case resume.SectionHeader:
		p.AddRun(v.Text, RunFormat{})
	case resume.EntryHeader:
		p.AddRun(v.Primary, RunFormat{Bold: true})
		if v.Secondary != "" {
			sep := ""
			if v.Primary != "" {
				sep = ", "
			}
			p.AddRun(sep+v.Secondary, RunFormat{})
		}
		if v.Dates != "" {
			p.AddTabRun()
			p.AddRun(v.Dates, RunFormat{})
		}
	case resume.RoleDescription:
		p.AddRun(v.Text, RunFormat{})
	case resume.BulletItem:
		p.AddRun(v.Text, RunFormat{})
	case resume.PlainParagraph:
		p.AddRun(v.Text, RunFormat{})
	}
}
