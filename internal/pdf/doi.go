// Package pdf reads bibliographic hints from PDF files.
package pdf

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// scanPages is how many leading pages are searched. The DOI and title are
// almost always on the first page.
const scanPages = 3

// Metadata holds what could be recovered from a PDF. Either field may be
// empty.
type Metadata struct {
	DOI   string
	Title string
}

// IsZero reports whether nothing was recovered.
func (m Metadata) IsZero() bool {
	return m.DOI == "" && m.Title == ""
}

// ReadMetadata extracts a DOI and a title guess from a PDF file.
func ReadMetadata(filePath string) (Metadata, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return metadataFrom(r), nil
}

// ReadMetadataFrom extracts a DOI and a title guess from PDF bytes.
func ReadMetadataFrom(r io.ReaderAt, size int64) (Metadata, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading PDF: %w", err)
	}
	return metadataFrom(reader), nil
}

func metadataFrom(r *pdf.Reader) Metadata {
	var m Metadata
	for i, text := range pageTexts(r, scanPages) {
		if i == 0 {
			m.Title = guessTitle(text)
		}
		if m.DOI == "" {
			m.DOI = findDOI(text)
		}
	}
	return m
}

// pageTexts returns the plain text of up to maxPages leading pages. Pages
// that cannot be decoded yield "".
func pageTexts(r *pdf.Reader, maxPages int) []string {
	n := r.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// guessTitle returns the first substantial line that is not a running
// header.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	case strings.HasPrefix(lower, "doi") || strings.Contains(lower, "https://"):
		return true
	}
	return false
}
