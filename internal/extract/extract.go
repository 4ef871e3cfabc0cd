// Package extract pulls plaintext out of uploaded course material so
// quizzes can be generated and graded against it.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Section is the extracted text of one file, labeled with its name.
type Section struct {
	Name string
	Text string
}

// JoinSections combines per-file sections into the single reference
// document used as grading ground truth. Each section is preceded by a
// header naming its source file; sections with no text are skipped.
func JoinSections(sections []Section) string {
	var parts []string
	for _, s := range sections {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- %s ---\n%s", s.Name, text))
	}
	return strings.Join(parts, "\n\n")
}

// FromUpload extracts plaintext from an uploaded file. Plain text and
// markdown pass through, PDFs are parsed, and anything else returns
// empty text with no error so unsupported uploads are stored but
// contribute nothing to grading.
func FromUpload(filename, mimeType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf" || mimeType == "application/pdf":
		return pdfText(data)
	case ext == ".txt" || ext == ".md" || strings.HasPrefix(mimeType, "text/"):
		return string(data), nil
	default:
		return "", nil
	}
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return string(text), nil
}
