// Package ingestion turns raw uploads into text documents and rejects input
// the analysis pipeline cannot read.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMalformedInput marks content that is not a readable text document
var ErrMalformedInput = errors.New("malformed input")

const (
	// MaxDocumentBytes bounds the size of a single document
	MaxDocumentBytes = 4 << 20
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

// SupportedExtensions lists the file types LoadDocument accepts
var SupportedExtensions = []string{".txt", ".text", ".md"}

var binaryMagic = []struct {
	prefix string
	kind   string
}{
	{"%PDF-", "PDF"},
	{"PK\x03\x04", "ZIP/DOCX"},
	{"\xD0\xCF\x11\xE0", "DOC"},
	{"{\\rtf", "RTF"},
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	_, binary := binaryKind(content)
	return binary
}

func binaryKind(content string) (string, bool) {
	if len(content) == 0 {
		return "", false
	}

	for _, m := range binaryMagic {
		if strings.HasPrefix(content, m.prefix) {
			return m.kind, true
		}
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	if float64(nonPrintable)/float64(sampleSize) > BinaryThreshold {
		return "non-printable", true
	}
	return "", false
}

// Sanitize replaces invalid UTF-8 with U+FFFD, normalizes to NFC and
// converts line endings to \n
func Sanitize(content string) string {
	content = strings.ToValidUTF8(content, "�")
	content = norm.NFC.String(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// CleanText validates and sanitizes a document received as text
func CleanText(content string) (string, error) {
	if kind, binary := binaryKind(content); binary {
		return "", fmt.Errorf("%w: %s content is not plain text", ErrMalformedInput, kind)
	}
	return Sanitize(content), nil
}

// ReadDocument reads at most limit bytes of text from r.
// A non-positive limit selects MaxDocumentBytes.
func ReadDocument(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		limit = MaxDocumentBytes
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if n > limit {
		return "", fmt.Errorf("%w: document exceeds %d bytes", ErrMalformedInput, limit)
	}

	return CleanText(buf.String())
}

// LoadDocument reads a plain text document from disk
func LoadDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return "", fmt.Errorf("%w: unsupported file type %q (convert to %s first)",
			ErrMalformedInput, ext, strings.Join(SupportedExtensions, ", "))
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	text, err := ReadDocument(file, MaxDocumentBytes)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return text, nil
}

func supported(ext string) bool {
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
