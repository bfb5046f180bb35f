package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/quillflow/quill/pkg/domain"
)

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse attempts to unmarshal a model response as JSON into T.
// If direct parsing fails, it extracts JSON from a markdown code fence and
// retries. Anything else is domain.ErrMalformedResponse, never a default value.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	matches := jsonBlockRegex.FindStringSubmatch(content)
	if len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: not valid JSON", domain.ErrMalformedResponse)
}

// validateScan checks the shape of a parsed clause scan response.
func validateScan(scan *domain.ClauseScan) error {
	if len(scan.Findings) == 0 {
		return fmt.Errorf("%w: clause scan has no findings", domain.ErrMalformedResponse)
	}
	if err := validateRisk(scan.OverallRisk); err != nil {
		return err
	}
	for _, f := range scan.Findings {
		if f.Clause == "" {
			return fmt.Errorf("%w: finding missing clause name", domain.ErrMalformedResponse)
		}
		if err := validateRisk(f.Risk); err != nil {
			return err
		}
	}
	return nil
}

func validateRisk(r domain.RiskLevel) error {
	switch r {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
		return nil
	default:
		return fmt.Errorf("%w: unknown risk level %q", domain.ErrMalformedResponse, r)
	}
}
