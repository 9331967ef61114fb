package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrUnsupportedType is returned for uploads that are not text, PDF or DOCX.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrUnreadableDocument is returned for PDF and DOCX files that cannot be parsed.
	ErrUnreadableDocument = errors.New("unreadable document")
)

var extensionTypes = map[string]string{
	".txt":  MIMEText,
	".text": MIMEText,
	".md":   MIMEText,
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
}

var (
	paragraphEndRe = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTagRe       = regexp.MustCompile(`<[^>]*>`)
)

// DetectContentType resolves the media type from the declared header, the file
// extension and finally the content itself. Parameters such as charset are dropped.
func DetectContentType(declared, filename string, data []byte) string {
	if mediaType := baseMediaType(declared); mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}

	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}

	return baseMediaType(http.DetectContentType(data))
}

func baseMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return mediaType
}

// ExtractText returns the plain text of a document of the given media type.
func ExtractText(mediaType string, data []byte) (string, error) {
	switch mediaType {
	case MIMEText:
		return string(data), nil
	case MIMEPDF:
		return extractPDFText(data)
	case MIMEDOCX:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
}

// extractPDFText recovers the panics the pdf package raises on malformed objects.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: read pdf: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: read pdf: %w", ErrUnreadableDocument, err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: read pdf page %d: %w", ErrUnreadableDocument, i, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parse docx: %w", ErrUnreadableDocument, err)
	}
	defer doc.Close()

	// GetContent returns the raw document.xml markup.
	content := paragraphEndRe.ReplaceAllString(doc.Editable().GetContent(), "\n")
	content = xmlTagRe.ReplaceAllString(content, "")

	return html.UnescapeString(content), nil
}
