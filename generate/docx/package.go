package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
)

const (
	docPart       = "word/document.xml"
	stylesPart    = "word/styles.xml"
	numberingPart = "word/numbering.xml"
	settingsPart  = "word/settings.xml"
	corePart      = "docProps/core.xml"
	appPart       = "docProps/app.xml"
)

// Meta carries package metadata for the properties parts.
type Meta struct {
	Title    string
	Author   string
	ID       string
	Creator  string
	Modified time.Time
}

// WritePackage serializes the document as an OPC container: one styles part
// and one numbering part consistent with what was built, referenced from the
// single content part.
func WritePackage(w io.Writer, d *Document, meta Meta) error {
	zw := zip.NewWriter(w)

	if err := writeContentTypes(zw); err != nil {
		return fmt.Errorf("unable to write content types: %w", err)
	}
	if err := writePackageRels(zw); err != nil {
		return fmt.Errorf("unable to write package relationships: %w", err)
	}
	if err := writeDocumentRels(zw); err != nil {
		return fmt.Errorf("unable to write document relationships: %w", err)
	}
	if err := writeCoreProps(zw, meta); err != nil {
		return fmt.Errorf("unable to write core properties: %w", err)
	}
	if err := writeAppProps(zw, meta); err != nil {
		return fmt.Errorf("unable to write extended properties: %w", err)
	}
	for _, part := range []struct {
		name string
		doc  *etree.Document
	}{
		{docPart, d.doc},
		{stylesPart, d.styles},
		{numberingPart, d.numbering},
		{settingsPart, d.settings},
	} {
		if err := writeXMLToZip(zw, part.name, part.doc); err != nil {
			return fmt.Errorf("unable to write %s: %w", part.name, err)
		}
	}
	return zw.Close()
}

func writeContentTypes(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", nsCT)

	rels := types.CreateElement("Default")
	rels.CreateAttr("Extension", "rels")
	rels.CreateAttr("ContentType", "application/vnd.openxmlformats-package.relationships+xml")
	xml := types.CreateElement("Default")
	xml.CreateAttr("Extension", "xml")
	xml.CreateAttr("ContentType", "application/xml")

	for _, o := range []struct{ part, ctype string }{
		{docPart, "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{stylesPart, "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
		{numberingPart, "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"},
		{settingsPart, "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"},
		{corePart, "application/vnd.openxmlformats-package.core-properties+xml"},
		{appPart, "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
	} {
		ov := types.CreateElement("Override")
		ov.CreateAttr("PartName", "/"+o.part)
		ov.CreateAttr("ContentType", o.ctype)
	}
	return writeXMLToZip(zw, "[Content_Types].xml", doc)
}

func writePackageRels(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRel)
	for _, r := range []struct{ id, typ, target string }{
		{"rId1", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument", docPart},
		{"rId2", "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", corePart},
		{"rId3", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties", appPart},
	} {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", r.id)
		rel.CreateAttr("Type", r.typ)
		rel.CreateAttr("Target", r.target)
	}
	return writeXMLToZip(zw, "_rels/.rels", doc)
}

func writeDocumentRels(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRel)
	for _, r := range []struct{ id, typ, target string }{
		{"rId1", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles", "styles.xml"},
		{"rId2", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering", "numbering.xml"},
		{"rId3", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings", "settings.xml"},
	} {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", r.id)
		rel.CreateAttr("Type", r.typ)
		rel.CreateAttr("Target", r.target)
	}
	return writeXMLToZip(zw, "word/_rels/document.xml.rels", doc)
}

func writeCoreProps(zw *zip.Writer, meta Meta) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	cp := doc.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", nsCP)
	cp.CreateAttr("xmlns:dc", nsDC)
	cp.CreateAttr("xmlns:dcterms", nsDCT)
	cp.CreateAttr("xmlns:xsi", nsXSI)

	cp.CreateElement("dc:title").SetText(meta.Title)
	cp.CreateElement("dc:creator").SetText(meta.Author)
	cp.CreateElement("dc:identifier").SetText(meta.ID)
	cp.CreateElement("cp:lastModifiedBy").SetText(meta.Creator)

	stamp := meta.Modified.UTC().Format(time.RFC3339)
	created := cp.CreateElement("dcterms:created")
	created.CreateAttr("xsi:type", "dcterms:W3CDTF")
	created.SetText(stamp)
	modified := cp.CreateElement("dcterms:modified")
	modified.CreateAttr("xsi:type", "dcterms:W3CDTF")
	modified.SetText(stamp)

	return writeXMLToZip(zw, corePart, doc)
}

func writeAppProps(zw *zip.Writer, meta Meta) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	props := doc.CreateElement("Properties")
	props.CreateAttr("xmlns", nsEP)
	props.CreateElement("Application").SetText(meta.Creator)

	return writeXMLToZip(zw, appPart, doc)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// copyZipWithoutDataDescriptors rewrites the archive clearing the data
// descriptor flag on every entry - some strict OPC consumers reject entries
// carrying descriptors.
func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
