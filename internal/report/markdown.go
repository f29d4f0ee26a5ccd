package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/mandolyte/mdtopdf"
)

//go:embed templates/report.md.go.tmpl
var fallbackReportTemplate string

const reportTemplateName = "report.md.go.tmpl"

// parseTemplate prefers a template on the filesystem and falls back to the
// embedded one when it is missing or broken.
func parseTemplate(templatePath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a report template",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(reportTemplateName).
		Funcs(funcMap).
		Parse(fallbackReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// WriteMarkdown renders the report. An empty templatePath uses the embedded
// template.
func WriteMarkdown(output io.Writer, templatePath string, report Report) error {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("parseTemplate() > %w", err)
	}
	if err := tmpl.Execute(output, report); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

// Export writes <directory>/<app>-<date>.md, and the same document as PDF
// when withPDF is set. It returns the written paths.
func Export(directory, templatePath string, report Report, now time.Time, withPDF bool) ([]string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", directory, err)
	}

	var markdown bytes.Buffer
	if err := WriteMarkdown(&markdown, templatePath, report); err != nil {
		return nil, err
	}

	basePath := filepath.Join(directory, fmt.Sprintf("%s-%s", report.App, now.Format("20060102")))
	markdownPath := basePath + ".md"
	if err := os.WriteFile(markdownPath, markdown.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
	}
	paths := []string{markdownPath}
	if !withPDF {
		return paths, nil
	}

	pdfPath := basePath + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(markdown.Bytes()); err != nil {
		return paths, fmt.Errorf("renderer.Process() > %w", err)
	}
	return append(paths, pdfPath), nil
}
