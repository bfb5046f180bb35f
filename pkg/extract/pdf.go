package extract

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quillflow/quill/pkg/domain"
)

// DetectContentType resolves the effective content type of an upload,
// preferring the declared header over byte sniffing.
func DetectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

// PDFPageCount validates that data is a readable PDF and returns its page count.
// A PDF that pdfcpu cannot open fails with domain.ErrExtractionFailed.
func PDFPageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable pdf: %v", domain.ErrExtractionFailed, err)
	}
	return count, nil
}
