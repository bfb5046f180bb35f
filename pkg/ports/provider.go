package ports

import "context"

// Prompt is one analysis request sent to the model provider.
type Prompt struct {
	System string
	User   string
}

// AnalysisProvider generates a raw model response for a prompt.
// Implementations return domain.ErrProviderUnavailable for transport failures;
// response-shape validation is the caller's responsibility.
type AnalysisProvider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
