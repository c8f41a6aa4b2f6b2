package resumes

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// Heading aliases recognized when splitting extracted text into sections.
// Matching is case-insensitive on the whole line.
var headingAliases = map[string]string{
	"personal info":        "Personal Info",
	"personal information": "Personal Info",
	"contact":              "Personal Info",
	"education":            "Education",
	"skills":               "Skills",
	"technical skills":     "Skills",
	"projects":             "Projects",
	"research":             "Research",
	"publications":         "Research",
	"experience":           "Experience",
	"work experience":      "Experience",
}

// ExtractSections extracts text from an uploaded résumé payload and splits it
// into titled sections. Plain text passes through; PDFs go through
// github.com/ledongthuc/pdf.
func ExtractSections(ctx context.Context, data []byte, mimeType string) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text string
	switch normalizeMimeType(mimeType) {
	case mimePDF:
		extracted, err := extractPDF(data)
		if err != nil {
			return nil, err
		}
		text = extracted
	case "text/plain":
		text = string(data)
	default:
		return nil, ErrUnsupported
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrExtractEmpty
	}
	sections := SplitSections(text)
	if len(sections) == 0 {
		return nil, ErrEmptyResume
	}
	return sections, nil
}

// SplitSections splits résumé text on recognized heading lines. Text before
// the first heading becomes a "Personal Info" section, matching the usual
// résumé layout where contact details lead the document.
func SplitSections(text string) []Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var sections []Section
	current := Section{Title: "Personal Info"}
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			current.OriginalText = content
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if title, ok := headingAliases[strings.ToLower(strings.TrimSuffix(trimmed, ":"))]; ok {
			flush()
			current = Section{Title: title}
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func normalizeMimeType(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	if normalized == "" {
		return "text/plain"
	}
	return normalized
}
