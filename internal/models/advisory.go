package models

import "time"

// ContextSnapshot is the condensed financial context attached to an
// advisory exchange at the moment the question was asked.
type ContextSnapshot struct {
	NetIncome     string  `json:"net_income"`
	TotalExpenses string  `json:"total_expenses"`
	Savings       string  `json:"savings"`
	Investments   string  `json:"investments"`
	TotalDebt     string  `json:"total_debt"`
	Age           int     `json:"age"`
	Dependents    int     `json:"dependents"`
	RiskScore     float64 `json:"risk_score"`
	Readiness     float64 `json:"investment_readiness"`
	InsuranceGap  string  `json:"insurance_gap"`
	KeyRate       float64 `json:"key_rate,omitempty"`
}

// AdvisoryExchange is one question/answer pair in a user's advisory
// history. The history is append-only.
type AdvisoryExchange struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Question  string          `json:"question"`
	Context   ContextSnapshot `json:"context"`
	Answer    string          `json:"answer"`
	CreatedAt time.Time       `json:"created_at"`
}
