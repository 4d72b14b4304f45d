package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReportFinalize(t *testing.T) {
	tmpDir := t.TempDir()

	conf := &ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	stored := filepath.Join(tmpDir, "result.docx")
	if err := os.WriteFile(stored, []byte("archive payload"), 0644); err != nil {
		t.Fatalf("failed to write stored file: %v", err)
	}

	r.Store("result.docx", stored)
	r.Store("missing.docx", filepath.Join(tmpDir, "does-not-exist"))
	r.StoreData("notes.txt", []byte("inline data"))

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("report is not a readable archive: %v", err)
	}
	defer zr.Close()

	got := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		got[f.Name] = string(data)
	}

	if _, ok := got["MANIFEST"]; !ok {
		t.Error("archive has no MANIFEST")
	}
	if got["result.docx"] != "archive payload" {
		t.Errorf("stored file content = %q", got["result.docx"])
	}
	if got["notes.txt"] != "inline data" {
		t.Errorf("stored data content = %q", got["notes.txt"])
	}
	if _, ok := got["missing.docx"]; ok {
		t.Error("absent source file must be skipped, not archived")
	}
}

func TestReportStore_OverwritePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Store with a different path for an existing name should panic")
		}
	}()

	r := &Report{entries: make(map[string]entry)}
	r.Store("result", "/tmp/one")
	r.Store("result", "/tmp/two")
}
