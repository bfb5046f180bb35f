package ports

// TextExtractor turns uploaded document bytes into analyzable text.
// Implementations are pure and stateless.
// Returns domain.ErrUnsupportedType when no extractor handles the content type,
// and domain.ErrExtractionFailed when readable text cannot be obtained.
type TextExtractor interface {
	Extract(data []byte, contentType string) (string, error)
}
