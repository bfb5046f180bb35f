// Package extract turns uploaded document bytes into analyzable text.
// Plain text and markdown are handled natively; binary formats (PDF/DOCX/OCR)
// remain external collaborators registered against their content types.
package extract

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/quillflow/quill/pkg/domain"
)

// Func adapts a plain function to an extractor.
type Func func(data []byte) (string, error)

// Registry dispatches extraction by content type.
// It implements ports.TextExtractor.
type Registry struct {
	byType map[string]Func
}

// NewRegistry creates a registry with the native text and markdown extractors.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Func)}
	r.Register("text/plain", plainText)
	r.Register("text/markdown", plainText)
	return r
}

// Register binds an extractor to a content type (parameters stripped).
func (r *Registry) Register(contentType string, fn Func) {
	r.byType[normalize(contentType)] = fn
}

// Extract returns the text for the given bytes, or domain.ErrUnsupportedType
// when no extractor handles the content type.
func (r *Registry) Extract(data []byte, contentType string) (string, error) {
	fn, ok := r.byType[normalize(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, contentType)
	}
	return fn(data)
}

// Supported reports whether a content type has a registered extractor.
func (r *Registry) Supported(contentType string) bool {
	_, ok := r.byType[normalize(contentType)]
	return ok
}

func normalize(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8", domain.ErrExtractionFailed)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: document is empty", domain.ErrExtractionFailed)
	}
	return text, nil
}
