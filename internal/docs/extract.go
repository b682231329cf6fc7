package docs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/gen2brain/go-fitz"
)

// MimePDF is the content type of PDF documents
const MimePDF = "application/pdf"

// Supported résumé formats by extension. Only formats that extract in-process
// are listed; docconv shells out to antiword and unrtf for .doc and .rtf.
var supported = map[string]string{
	".pdf":  MimePDF,
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".txt":  "text/plain",
}

// MimeType returns the MIME type for a file name, or "" when unsupported
func MimeType(fileName string) string {
	return supported[strings.ToLower(filepath.Ext(fileName))]
}

// IsSupported reports whether text can be extracted from fileName
func IsSupported(fileName string) bool {
	return MimeType(fileName) != ""
}

// ExtractText returns the plain text of a résumé document. PDFs are read page by page
// with MuPDF; office formats go through docconv.
func ExtractText(fileName string, data []byte) (string, error) {
	mime := MimeType(fileName)
	switch mime {
	case "":
		return "", fmt.Errorf("unsupported document type %q", filepath.Ext(fileName))
	case MimePDF:
		return extractPDF(data)
	case "text/plain":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("text document is not valid UTF-8")
		}
		return normalize(string(data)), nil
	default:
		res, err := docconv.Convert(bytes.NewReader(data), mime, false)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s: %w", mime, err)
		}
		return normalize(res.Body), nil
	}
}

func extractPDF(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return normalize(sb.String()), nil
}

// normalize drops NUL bytes, which Postgres text columns reject, and collapses
// runs of whitespace so previews and prompts stay compact
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\x00", " ")), " ")
}

// Preview returns at most n runes of text
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
