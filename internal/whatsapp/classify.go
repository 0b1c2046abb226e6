package whatsapp

import (
	"errors"
	"strings"

	"github.com/romeolab/agenda-notify/internal/domain"
)

// classificationRule maps an error text fragment to a failure reason.
// Rules are checked in order, first match wins.
type classificationRule struct {
	fragment string
	reason   domain.FailureReason
}

var classificationRules = []classificationRule{
	{fragment: "phone", reason: domain.ReasonInvalidPhone},
	{fragment: "template", reason: domain.ReasonTemplateRejected},
	{fragment: "policy", reason: domain.ReasonPolicyViolation},
}

// Classify turns a send error into a stable failure reason. Transport
// failures are network errors; API rejections are matched against the
// ordered rule table on the platform's error text.
func Classify(err error) domain.FailureReason {
	if err == nil {
		return domain.ReasonProviderError
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return domain.ReasonNetworkError
	}

	message := strings.ToLower(apiErr.Message)
	for _, rule := range classificationRules {
		if strings.Contains(message, rule.fragment) {
			return rule.reason
		}
	}

	return domain.ReasonProviderError
}
