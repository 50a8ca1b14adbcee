package advisory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsight/advisor-service/internal/models"
)

// FallbackAdvisor is selected at startup when no API key is
// configured. It produces generic guidance from the snapshot alone so
// the rest of the service keeps working.
type FallbackAdvisor struct{}

// NewFallbackAdvisor returns a new fallback advisor
func NewFallbackAdvisor() *FallbackAdvisor {
	return &FallbackAdvisor{}
}

// Ask returns templated guidance derived from the score snapshot.
func (f *FallbackAdvisor) Ask(_ context.Context, question string, s *models.ContextSnapshot) (string, error) {
	if s == nil {
		return "Personalized advice is unavailable right now. Submit your financial profile to get started.", nil
	}
	answer := fmt.Sprintf(
		"Based on your profile (risk score %.2f, investment readiness %.2f):\n", s.RiskScore, s.Readiness)
	switch {
	case s.RiskScore >= 0.7:
		answer += "Your financial risk is high. Prioritize reducing debt and building an emergency fund before anything else.\n"
	case s.RiskScore >= 0.3:
		answer += "Your financial risk is moderate. Keep expenses in check and grow your savings buffer.\n"
	default:
		answer += "Your finances look healthy. Consider putting surplus income to work in diversified investments.\n"
	}
	if gap, err := decimal.NewFromString(s.InsuranceGap); err == nil && gap.IsPositive() {
		answer += fmt.Sprintf("Your insurance coverage falls %s short of the recommended level.\n", s.InsuranceGap)
	}
	answer += fmt.Sprintf("\n(The AI assistant is not configured, so this is general guidance for: %q)", question)
	return answer, nil
}

// Tips returns canned tips.
func (f *FallbackAdvisor) Tips(_ context.Context, _ *models.ContextSnapshot) ([]string, error) {
	return []string{
		"Build an emergency fund covering 6 months of expenses",
		"Track your monthly expenses and set category budgets",
		"Pay down high-interest debt before investing",
		"Review your insurance coverage once a year",
		"Automate a fixed monthly transfer to savings",
	}, nil
}
