// Package analysis fans a document out into independent sub-analyses
// (clause-risk scan, executive summary, key-term extraction), guards each with
// the result cache, and aggregates the outputs tolerant of partial failure.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/quillflow/quill/internal/logging"
	"github.com/quillflow/quill/pkg/cache"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

// Pipeline runs the analysis sub-tasks concurrently against one document.
type Pipeline struct {
	provider ports.AnalysisProvider
	cache    *cache.ResultCache[string]
	logger   *slog.Logger

	// timeout bounds each individual provider call; 0 disables the bound.
	timeout time.Duration

	// retryUnavailable is the bounded number of extra attempts made when the
	// provider is unreachable. The policy is explicit: no other error retries.
	retryUnavailable int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger configures a logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithUnavailableRetry allows up to n extra attempts on ErrProviderUnavailable.
func WithUnavailableRetry(n int) Option {
	return func(p *Pipeline) {
		p.retryUnavailable = n
	}
}

// NewPipeline creates a Pipeline. The cache is required: every sub-analysis is
// wrapped in it so byte-identical requests collapse into one provider call.
func NewPipeline(provider ports.AnalysisProvider, results *cache.ResultCache[string], opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		cache:    results,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the clause scan, summary, and key-term extraction concurrently
// and aggregates them. A failed sub-analysis degrades to an explicit failure
// marker; only a document with no readable text is fatal.
func (p *Pipeline) Analyze(ctx context.Context, document string, params domain.AnalysisParams) (*domain.RiskAssessment, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("%w: document has no readable text", domain.ErrExtractionFailed)
	}
	params = params.Normalized()

	var (
		wg sync.WaitGroup

		scanRaw, summaryRaw, termsRaw string
		scanErr, summaryErr, termsErr error
	)

	run := func(kind string, prompt ports.Prompt, validate func(string) error, raw *string, errOut *error) {
		defer wg.Done()
		key := Fingerprint(kind, document, params)
		v, err := p.cache.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
			resp, err := p.generate(ctx, prompt)
			if err != nil {
				return "", err
			}
			if err := validate(resp); err != nil {
				return "", err
			}
			return resp, nil
		})
		if err != nil {
			p.logger.Warn("sub-analysis degraded", "kind", kind, "err", err)
			*errOut = err
			return
		}
		*raw = v
	}

	wg.Add(3)
	go run(kindClauseScan, scanPrompt(document, params), func(resp string) error {
		scan, err := Parse[domain.ClauseScan](resp)
		if err != nil {
			return err
		}
		return validateScan(&scan)
	}, &scanRaw, &scanErr)

	go run(kindSummary, summaryPrompt(document, params), func(resp string) error {
		if strings.TrimSpace(resp) == "" {
			return fmt.Errorf("%w: empty summary", domain.ErrMalformedResponse)
		}
		return nil
	}, &summaryRaw, &summaryErr)

	go run(kindKeyTerms, keyTermsPrompt(document, params), func(resp string) error {
		parsed, err := Parse[keyTermsResponse](resp)
		if err != nil {
			return err
		}
		if parsed.KeyTerms == nil {
			return fmt.Errorf("%w: missing key_terms field", domain.ErrMalformedResponse)
		}
		return nil
	}, &termsRaw, &termsErr)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		// The caller's deadline elapsed: fail the stage rather than report a
		// degraded aggregate, so the session stays at its pre-stage checkpoint.
		return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}

	return p.aggregate(params, scanRaw, scanErr, summaryRaw, summaryErr, termsRaw, termsErr), nil
}

type keyTermsResponse struct {
	KeyTerms []domain.KeyTerm `json:"key_terms"`
}

func (p *Pipeline) aggregate(params domain.AnalysisParams, scanRaw string, scanErr error, summary string, summaryErr error, termsRaw string, termsErr error) *domain.RiskAssessment {
	agg := &domain.RiskAssessment{Risk: domain.RiskHigh}

	if scanErr != nil {
		agg.ClauseScanError = subFailure(scanErr)
	} else {
		scan, _ := Parse[domain.ClauseScan](scanRaw)
		fillMissingClauses(&scan, params.Clauses)
		agg.ClauseScan = &scan
		agg.Risk = scan.OverallRisk
	}

	if summaryErr != nil {
		agg.SummaryError = subFailure(summaryErr)
	} else {
		agg.Summary = strings.TrimSpace(summary)
	}

	if termsErr != nil {
		agg.KeyTermsError = subFailure(termsErr)
	} else {
		parsed, _ := Parse[keyTermsResponse](termsRaw)
		agg.KeyTerms = parsed.KeyTerms
	}

	return agg
}

// fillMissingClauses appends an explicit fallback finding for every requested
// clause the model response did not address.
func fillMissingClauses(scan *domain.ClauseScan, requested []string) {
	seen := make(map[string]bool, len(scan.Findings))
	for _, f := range scan.Findings {
		seen[strings.ToLower(f.Clause)] = true
	}
	for _, clause := range requested {
		if seen[strings.ToLower(clause)] {
			continue
		}
		scan.Findings = append(scan.Findings, domain.ClauseFinding{
			Clause:        clause,
			Present:       false,
			Risk:          domain.RiskMedium,
			Confidence:    0,
			Justification: "clause not addressed in the model response",
		})
	}
}

// generate performs one provider call with the per-call timeout and the
// bounded unavailable-retry policy applied.
func (p *Pipeline) generate(ctx context.Context, prompt ports.Prompt) (string, error) {
	attempts := 1 + p.retryUnavailable
	var lastErr error
	for i := 0; i < attempts; i++ {
		callCtx := ctx
		cancel := func() {}
		if p.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		resp, err := p.provider.Generate(callCtx, prompt)
		cancel()
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		lastErr = err
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			break
		}
	}
	return "", lastErr
}

func subFailure(err error) *domain.SubFailure {
	kind := "provider_error"
	switch {
	case errors.Is(err, domain.ErrMalformedResponse):
		kind = "malformed_response"
	case errors.Is(err, domain.ErrProviderUnavailable):
		kind = "provider_unavailable"
	case errors.Is(err, domain.ErrTimeout):
		kind = "timeout"
	}
	return &domain.SubFailure{Kind: kind, Detail: err.Error()}
}
