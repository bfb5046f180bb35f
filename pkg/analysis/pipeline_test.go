package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill/pkg/cache"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

const validScanJSON = `{"findings":[{"clause":"Confidentiality","present":true,"risk":"low","confidence":0.9}],"overall_risk":"low"}`
const validTermsJSON = `{"key_terms":[{"name":"Term","value":"24 months","kind":"obligation"}]}`

// scriptedProvider routes each prompt kind to a canned response or error.
type scriptedProvider struct {
	calls    atomic.Int32
	scan     func() (string, error)
	summary  func() (string, error)
	keyTerms func() (string, error)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt ports.Prompt) (string, error) {
	p.calls.Add(1)
	switch prompt.System {
	case scanSystemPrompt:
		return p.scan()
	case summarySystemPrompt:
		return p.summary()
	case keyTermsSystemPrompt:
		return p.keyTerms()
	}
	return "", fmt.Errorf("unexpected prompt")
}

func ok(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func newTestPipeline(p ports.AnalysisProvider, opts ...Option) *Pipeline {
	return NewPipeline(p, cache.New[string](64, time.Minute), opts...)
}

func TestAnalyzeFullSuccess(t *testing.T) {
	provider := &scriptedProvider{
		scan:     ok(validScanJSON),
		summary:  ok("A short executive summary."),
		keyTerms: ok(validTermsJSON),
	}
	pipe := newTestPipeline(provider)

	agg, err := pipe.Analyze(context.Background(), "contract body", domain.AnalysisParams{Clauses: []string{"Confidentiality"}})
	require.NoError(t, err)

	require.NotNil(t, agg.ClauseScan)
	assert.Equal(t, domain.RiskLow, agg.Risk)
	assert.Equal(t, "A short executive summary.", agg.Summary)
	require.Len(t, agg.KeyTerms, 1)
	assert.Nil(t, agg.ClauseScanError)
	assert.Nil(t, agg.SummaryError)
	assert.Nil(t, agg.KeyTermsError)
}

func TestAnalyzePartialFailure(t *testing.T) {
	provider := &scriptedProvider{
		scan:     ok(validScanJSON),
		summary:  fail(domain.ErrProviderUnavailable),
		keyTerms: ok("this is not json"),
	}
	pipe := newTestPipeline(provider)

	agg, err := pipe.Analyze(context.Background(), "contract body", domain.AnalysisParams{Clauses: []string{"Confidentiality"}})
	require.NoError(t, err, "sibling failures never abort the scan")

	require.NotNil(t, agg.ClauseScan)
	require.NotNil(t, agg.SummaryError)
	assert.Equal(t, "provider_unavailable", agg.SummaryError.Kind)
	require.NotNil(t, agg.KeyTermsError)
	assert.Equal(t, "malformed_response", agg.KeyTermsError.Kind)
}

func TestAnalyzeScanFailureDegradesRiskHigh(t *testing.T) {
	provider := &scriptedProvider{
		scan:     fail(domain.ErrProviderUnavailable),
		summary:  ok("summary"),
		keyTerms: ok(validTermsJSON),
	}
	pipe := newTestPipeline(provider)

	agg, err := pipe.Analyze(context.Background(), "contract body", domain.AnalysisParams{})
	require.NoError(t, err)
	assert.Nil(t, agg.ClauseScan)
	require.NotNil(t, agg.ClauseScanError)
	assert.Equal(t, domain.RiskHigh, agg.Risk, "missing scan defaults to high risk")
}

func TestAnalyzeEmptyDocumentFatal(t *testing.T) {
	pipe := newTestPipeline(&scriptedProvider{})

	_, err := pipe.Analyze(context.Background(), "   \n\t ", domain.AnalysisParams{})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestAnalyzeFillsMissingClauses(t *testing.T) {
	provider := &scriptedProvider{
		scan:     ok(validScanJSON), // only addresses Confidentiality
		summary:  ok("summary"),
		keyTerms: ok(validTermsJSON),
	}
	pipe := newTestPipeline(provider)

	agg, err := pipe.Analyze(context.Background(), "contract body", domain.AnalysisParams{
		Clauses: []string{"Confidentiality", "Force Majeure"},
	})
	require.NoError(t, err)
	require.NotNil(t, agg.ClauseScan)
	require.Len(t, agg.ClauseScan.Findings, 2)

	var fallback *domain.ClauseFinding
	for i := range agg.ClauseScan.Findings {
		if agg.ClauseScan.Findings[i].Clause == "Force Majeure" {
			fallback = &agg.ClauseScan.Findings[i]
		}
	}
	require.NotNil(t, fallback)
	assert.False(t, fallback.Present)
	assert.Equal(t, domain.RiskMedium, fallback.Risk)
}

func TestAnalyzeUnavailableRetry(t *testing.T) {
	var scanAttempts atomic.Int32
	provider := &scriptedProvider{
		scan: func() (string, error) {
			if scanAttempts.Add(1) == 1 {
				return "", domain.ErrProviderUnavailable
			}
			return validScanJSON, nil
		},
		summary:  ok("summary"),
		keyTerms: ok(validTermsJSON),
	}
	pipe := newTestPipeline(provider, WithUnavailableRetry(1))

	agg, err := pipe.Analyze(context.Background(), "contract body", domain.AnalysisParams{Clauses: []string{"Confidentiality"}})
	require.NoError(t, err)
	assert.Nil(t, agg.ClauseScanError)
	assert.Equal(t, int32(2), scanAttempts.Load())
}

func TestAnalyzeConcurrentRequestsDeduplicate(t *testing.T) {
	block := make(chan struct{})
	var scanCalls atomic.Int32
	provider := &scriptedProvider{
		scan: func() (string, error) {
			scanCalls.Add(1)
			<-block
			return validScanJSON, nil
		},
		summary:  ok("summary"),
		keyTerms: ok(validTermsJSON),
	}

	// Two pipelines sharing one cache, as two requests would in the server.
	shared := cache.New[string](64, time.Minute)
	pipe := NewPipeline(provider, shared)

	params := domain.AnalysisParams{Clauses: []string{"Confidentiality"}}

	var wg sync.WaitGroup
	aggs := make([]*domain.RiskAssessment, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			aggs[i], errs[i] = pipe.Analyze(context.Background(), "identical document", params)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), scanCalls.Load(), "byte-identical requests share one provider call")
	assert.Equal(t, aggs[0].ClauseScan, aggs[1].ClauseScan)
}
