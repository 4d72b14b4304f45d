package docx

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"docsmith/config"
	"docsmith/misc"
	"docsmith/resume"
	"docsmith/tokens"
)

// Generate runs the whole pipeline for one resume: token store, style
// registry and numbering engine population, content build, reconciliation
// and final package serialization. Configuration-level errors abort the run;
// per-paragraph reconciliation failures are returned in the report for the
// caller to judge.
func Generate(ctx context.Context, res *resume.Resume, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("Generating DOCX", zap.String("output", outputPath))

	ts := tokens.Load(cfg.Tokens, log)

	page, err := pageSetup(ts, cfg.Page.Size)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve page geometry: %w", err)
	}
	bodySize, err := ts.Pt("body-size-pt", 10)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve document defaults: %w", err)
	}

	doc := New(page, Defaults{FontFamily: cfg.Fonts.Body, SizePt: bodySize})

	reg := NewRegistry()
	specs, err := BuildSpecs(ts, cfg.Fonts.Body, cfg.Fonts.Headings)
	if err != nil {
		return nil, fmt.Errorf("unable to derive style specifications: %w", err)
	}
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return nil, fmt.Errorf("unable to register style: %w", err)
		}
	}

	eng := NewEngine(doc)
	bulletLevels, err := BulletLevels(ts)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve bullet levels: %w", err)
	}

	ledger, err := Build(res.Elements(), reg, eng, bulletLevels, doc, log)
	if err != nil {
		return nil, fmt.Errorf("unable to build document: %w", err)
	}

	rpt, err := Reconcile(doc, ledger, reg, eng, log)
	if err != nil {
		return nil, fmt.Errorf("unable to reconcile document: %w", err)
	}

	tmp, err := os.CreateTemp("", misc.GetAppName()+"-*.docx")
	if err != nil {
		return nil, fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	meta := Meta{
		Title:    res.Contact.Name + " - Resume",
		Author:   res.Contact.Name,
		ID:       res.ID,
		Creator:  misc.GetAppName() + " " + misc.GetVersion(),
		Modified: time.Now(),
	}
	if err := WritePackage(tmp, doc, meta); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("unable to write package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize output file: %w", err)
	}

	if cfg.FixZip {
		err = copyZipWithoutDataDescriptors(tmpName, outputPath)
	} else {
		err = copyFile(tmpName, outputPath)
	}
	if err != nil {
		return nil, err
	}
	return rpt, nil
}

func pageSetup(ts *tokens.Set, size config.PaperSize) (PageSetup, error) {
	w, h := size.Dimensions()
	page := PageSetup{WidthTwips: w, HeightTwips: h}

	for _, m := range []struct {
		key  string
		def  float64
		dest *int
	}{
		{"page-margin-top-cm", 1.5, &page.MarginTopTwips},
		{"page-margin-bottom-cm", 1.5, &page.MarginBottomTwips},
		{"page-margin-left-cm", 1.8, &page.MarginLeftTwips},
		{"page-margin-right-cm", 1.8, &page.MarginRightTwips},
	} {
		cm, err := ts.Cm(m.key, m.def)
		if err != nil {
			return page, err
		}
		*m.dest = tokens.CmToTwips(cm)
	}
	return page, nil
}
