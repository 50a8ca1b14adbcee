package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt represents a single outstanding debt within a financial profile
type Debt struct {
	Amount         decimal.Decimal `json:"amount"`
	Rate           float64         `json:"rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// FinancialProfile holds the raw financial data submitted by a user.
// All currency fields are monthly amounts unless noted otherwise.
type FinancialProfile struct {
	UserID            int64           `json:"user_id"`
	GrossIncome       decimal.Decimal `json:"gross_income"`
	NetIncome         decimal.Decimal `json:"net_income"`
	FixedExpenses     decimal.Decimal `json:"fixed_expenses"`
	VariableExpenses  decimal.Decimal `json:"variable_expenses"`
	Savings           decimal.Decimal `json:"savings"`
	Investments       decimal.Decimal `json:"investments"`
	Assets            decimal.Decimal `json:"assets"`
	Debts             []Debt          `json:"debts"`
	InsuranceCoverage decimal.Decimal `json:"insurance_coverage"`
	Age               int             `json:"age"`
	Dependents        int             `json:"dependents"`
	HouseholdSize     int             `json:"household_size"`
	OwnsHome          bool            `json:"owns_home"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TotalDebt sums the outstanding amounts across all debts.
func (p *FinancialProfile) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Debts {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalExpenses sums fixed and variable monthly expenses.
func (p *FinancialProfile) TotalExpenses() decimal.Decimal {
	return p.FixedExpenses.Add(p.VariableExpenses)
}
