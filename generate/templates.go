package generate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"docsmith/config"
	"docsmith/resume"
)

// Values holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	Title      string
	Date       string
	SourceFile string
	ResumeID   string
	Sections   []string
}

func buildSections(sections []resume.Section) []string {
	result := make([]string, 0, len(sections))
	for _, s := range sections {
		result = append(result, s.Title)
	}
	return result
}

func expandTemplate(res *resume.Resume, name config.TemplateFieldName, field, srcName string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Name:       res.Contact.Name,
		Title:      res.Contact.Title,
		Date:       time.Now().Format("2006-01-02"),
		SourceFile: strings.TrimSuffix(filepath.Base(srcName), filepath.Ext(srcName)),
		ResumeID:   res.ID,
		Sections:   buildSections(res.Sections),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
