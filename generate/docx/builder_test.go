package docx

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"docsmith/resume"
	"docsmith/tokens"
)

func buildFixture(t *testing.T, tok map[string]string, elements []resume.Element) (*Document, *Ledger, *Registry, *Engine) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ts := tokens.Load(tok, log)

	d := testDocument()
	reg := NewRegistry()
	specs, err := BuildSpecs(ts, "Calibri", "Calibri")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	eng := NewEngine(d)
	levels, err := BulletLevels(ts)
	if err != nil {
		t.Fatal(err)
	}

	ledger, err := Build(elements, reg, eng, levels, d, log)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return d, ledger, reg, eng
}

func TestBuildSectionWithBullets(t *testing.T) {
	tok := map[string]string{
		"section-spacing-after-pt": "6",
		"bullet-indent-cm":         "0.33",
	}
	elements := []resume.Element{
		resume.SectionHeader{Text: "EXPERIENCE"},
		resume.BulletItem{Text: "Shipped the thing", ListRef: "s0-e0"},
		resume.BulletItem{Text: "Maintained the thing", ListRef: "s0-e0"},
	}

	d, ledger, reg, eng := buildFixture(t, tok, elements)

	entries := ledger.Entries()
	if len(entries) != 3 {
		t.Fatalf("ledger holds %d entries, want 3", len(entries))
	}

	// section header spacing flows token -> spec -> ledger -> styles part
	if got, want := entries[0].AfterTwips, tokens.PtToTwips(6); got != want {
		t.Errorf("section after = %d twips, want %d", got, want)
	}
	_, after, ok := d.styleSpacing(StyleID(resume.StyleSection))
	if !ok {
		t.Fatal("section style has no persisted spacing")
	}
	if got, want := after, tokens.PtToTwips(6); diff(got, want) > spacingToleranceTwips {
		t.Errorf("persisted section after = %d twips, want %d", got, want)
	}

	// bullets sharing a list reference share one numbering instance
	if entries[1].NumberingID == 0 || entries[1].NumberingID != entries[2].NumberingID {
		t.Errorf("bullets carry instances %d and %d, want one shared non-zero instance",
			entries[1].NumberingID, entries[2].NumberingID)
	}
	def := eng.instance(entries[1].NumberingID)
	if def == nil {
		t.Fatal("bullet numbering instance not defined")
	}
	if def.Levels[0].IndentCm != 0.33 {
		t.Errorf("bullet indent = %v cm, want 0.33", def.Levels[0].IndentCm)
	}

	log := zaptest.NewLogger(t)
	rpt, err := Reconcile(d, ledger, reg, eng, log)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if rpt.Verified != 3 || rpt.Repaired != 0 || rpt.Irreparable != 0 {
		t.Errorf("report = %+v, want 3 verified, 0 repaired, 0 irreparable", rpt)
	}
	if err := rpt.Err(); err != nil {
		t.Errorf("clean report returned error: %v", err)
	}
}

func TestBuildDistinctListsDistinctInstances(t *testing.T) {
	elements := []resume.Element{
		resume.BulletItem{Text: "first list item", ListRef: "s0-e0"},
		resume.BulletItem{Text: "second list item", ListRef: "s0-e1"},
	}

	_, ledger, _, _ := buildFixture(t, nil, elements)

	entries := ledger.Entries()
	if entries[0].NumberingID == entries[1].NumberingID {
		t.Errorf("distinct list references share instance %d", entries[0].NumberingID)
	}
}

func TestBuildContentlessElement(t *testing.T) {
	elements := []resume.Element{
		resume.PlainParagraph{Text: "", Style: resume.StyleBody},
		resume.PlainParagraph{Text: "real content", Style: resume.StyleBody},
	}

	d, ledger, _, _ := buildFixture(t, nil, elements)

	entries := ledger.Entries()
	if !entries[0].Contentless {
		t.Error("empty element not recorded as contentless")
	}
	if entries[0].StyleName != "" {
		t.Errorf("contentless entry carries style %q", entries[0].StyleName)
	}
	if got := d.Paragraphs()[0].styleID(); got != "" {
		t.Errorf("contentless paragraph bound to style %q", got)
	}

	if entries[1].Contentless {
		t.Error("content-bound element recorded as contentless")
	}
	if got, want := d.Paragraphs()[1].styleID(), StyleID(resume.StyleBody); got != want {
		t.Errorf("paragraph style = %q, want %q", got, want)
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	elements := []resume.Element{
		resume.SectionHeader{Text: "EXPERIENCE"},
		resume.EntryHeader{Primary: "Acme", Secondary: "Staff Engineer", Dates: "2020 - 2024"},
		resume.RoleDescription{Text: "Led the platform team"},
		resume.BulletItem{Text: "Did things", ListRef: "s0-e0"},
	}

	d, ledger, _, _ := buildFixture(t, nil, elements)

	want := []string{resume.StyleSection, resume.StyleEntry, resume.StyleRole, resume.StyleBullet}
	for i, entry := range ledger.Entries() {
		if entry.StyleName != want[i] {
			t.Errorf("entry %d style = %q, want %q", i, entry.StyleName, want[i])
		}
		if entry.Index != i {
			t.Errorf("entry %d records paragraph %d", i, entry.Index)
		}
	}
	if len(d.Paragraphs()) != len(elements) {
		t.Errorf("document holds %d paragraphs, want %d", len(d.Paragraphs()), len(elements))
	}
}

func TestBuildEntryHeaderRuns(t *testing.T) {
	elements := []resume.Element{
		resume.EntryHeader{Primary: "Acme", Secondary: "Staff Engineer", Dates: "2020 - 2024"},
	}

	d, _, _, _ := buildFixture(t, nil, elements)

	p := d.Paragraphs()[0]
	runs := p.el.SelectElements("w:r")
	if len(runs) != 4 {
		t.Fatalf("entry header produced %d runs, want 4 (primary, secondary, tab, dates)", len(runs))
	}
	if runs[0].FindElement("w:rPr/w:b") == nil {
		t.Error("primary run is not bold")
	}
	if got := runs[1].SelectElement("w:t").Text(); got != ", Staff Engineer" {
		t.Errorf("secondary run text = %q", got)
	}
	if runs[2].SelectElement("w:tab") == nil {
		t.Error("third run is not a tab")
	}
	if got := runs[3].SelectElement("w:t").Text(); got != "2020 - 2024" {
		t.Errorf("dates run text = %q", got)
	}
}

func TestBuildFreezesRegistryAndEngine(t *testing.T) {
	_, _, reg, eng := buildFixture(t, nil, []resume.Element{
		resume.PlainParagraph{Text: "content", Style: resume.StyleBody},
	})

	if err := reg.Register(StyleSpec{Name: "Late"}); err == nil {
		t.Error("registry accepted a registration after build")
	}
	if _, err := eng.DefineList(testLevels()); err == nil {
		t.Error("engine accepted a definition after build")
	}
}
