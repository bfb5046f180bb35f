package middleware

import (
	"context"
	"regexp"

	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks text matching the patterns
// (emails, account numbers) in the persisted document body and in analysis
// citations. The in-memory session used by the engine is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sess *domain.Session) error {
	cloned := sess.Clone()

	cloned.DocumentText = m.mask(cloned.DocumentText)
	if ra := cloned.RiskAssessment; ra != nil && ra.ClauseScan != nil {
		for i := range ra.ClauseScan.Findings {
			ra.ClauseScan.Findings[i].Justification = m.mask(ra.ClauseScan.Findings[i].Justification)
			ra.ClauseScan.Findings[i].CitedText = m.mask(ra.ClauseScan.Findings[i].CitedText)
		}
	}

	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, "***")
	}
	return text
}
