// Package advisory bridges user questions to a language-model API,
// packaging the current scores and profile summary as context.
package advisory

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight/advisor-service/internal/models"
)

// Advisor answers financial questions against a context snapshot.
// Implementations must honor ctx cancellation and return an
// errs.UpstreamError on timeout, quota or malformed responses.
type Advisor interface {
	Ask(ctx context.Context, question string, snapshot *models.ContextSnapshot) (string, error)
	Tips(ctx context.Context, snapshot *models.ContextSnapshot) ([]string, error)
}

const systemGuidance = `You are an expert financial advisor AI with deep understanding of personal finance.
Analyze questions carefully and provide personalized, actionable advice based on the user's financial situation.

Guidelines:
- Always use the user's actual financial data when available
- Provide specific numbers and calculations when possible
- Break down complex advice into simple steps
- Be encouraging but realistic about financial goals
- If asked about saving for specific goals, calculate monthly amounts needed`

// buildPrompt assembles the full prompt: guidance, profile context and
// the user's question.
func buildPrompt(question string, s *models.ContextSnapshot) string {
	var b strings.Builder
	b.WriteString(systemGuidance)
	if s != nil {
		fmt.Fprintf(&b, "\n\nUser's Financial Profile:\n")
		fmt.Fprintf(&b, "- Monthly Net Income: %s\n", s.NetIncome)
		fmt.Fprintf(&b, "- Monthly Expenses: %s\n", s.TotalExpenses)
		fmt.Fprintf(&b, "- Current Savings: %s\n", s.Savings)
		fmt.Fprintf(&b, "- Current Investments: %s\n", s.Investments)
		fmt.Fprintf(&b, "- Outstanding Debt: %s\n", s.TotalDebt)
		fmt.Fprintf(&b, "- Age: %d, Dependents: %d\n", s.Age, s.Dependents)
		fmt.Fprintf(&b, "- Risk Score: %.2f (0 low, 1 high)\n", s.RiskScore)
		fmt.Fprintf(&b, "- Investment Readiness: %.2f (0 low, 1 high)\n", s.Readiness)
		fmt.Fprintf(&b, "- Insurance Coverage Gap: %s\n", s.InsuranceGap)
		if s.KeyRate > 0 {
			fmt.Fprintf(&b, "- Current Central Bank Key Rate: %.2f%%\n", s.KeyRate)
		}
	}
	if hint := topicHint(question); hint != "" {
		b.WriteString("\n")
		b.WriteString(hint)
	}
	fmt.Fprintf(&b, "\n\nUser Question: %s", question)
	return b.String()
}

// topicHint steers the model for common question categories.
func topicHint(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "vacation", "trip", "travel"):
		return "This appears to be about vacation planning. Suggest monthly savings."
	case containsAny(q, "emergency", "fund"):
		return "This is about emergency funds. Recommend 6-12 months of expenses."
	case containsAny(q, "house", "property", "mortgage"):
		return "This is about home purchase. Suggest down payment and loan eligibility."
	case containsAny(q, "retirement", "pension"):
		return "This is about retirement planning. Include inflation estimates."
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
