package analysis

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/quillflow/quill/pkg/domain"
)

// Fingerprint derives the deterministic cache key for one sub-analysis.
// It covers the sub-analysis kind, the document content, and every parameter
// that influences the result. Parameters are normalized first, so logically
// identical requests hash identically regardless of list ordering.
func Fingerprint(kind string, document string, params domain.AnalysisParams) string {
	p := params.Normalized()

	h := sha256.New()
	writeField(h, []byte(kind))
	writeField(h, []byte(document))
	writeList(h, p.Clauses)
	writeField(h, []byte(p.RiskAppetite))
	writeField(h, []byte(p.CounterpartyType))
	writeList(h, p.Regulations)
	writeList(h, p.PlaybookRules)
	writeField(h, []byte(p.PolicyText))

	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes each value so adjacent fields cannot collide
// (e.g. "ab"+"c" vs "a"+"bc").
func writeField(h interface{ Write(p []byte) (int, error) }, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}

func writeList(h interface{ Write(p []byte) (int, error) }, items []string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(items)))
	h.Write(n[:])
	for _, item := range items {
		writeField(h, []byte(item))
	}
}
