package models

import "github.com/shopspring/decimal"

// DerivedFeatures holds the ratios computed from a FinancialProfile.
// They are recomputed on every scoring pass and never persisted.
type DerivedFeatures struct {
	// CoverageTarget is the recommended insurance coverage in currency
	// terms; it anchors the insurance gap computation.
	CoverageTarget decimal.Decimal `json:"coverage_target"`

	SavingsRate          float64 `json:"savings_rate"`
	DebtToIncome         float64 `json:"debt_to_income"`
	CoverageRatio        float64 `json:"coverage_ratio"`
	ExpenseRatio         float64 `json:"expense_ratio"`
	EmergencyFundMonths  float64 `json:"emergency_fund_months"`
	InvestmentAllocation float64 `json:"investment_allocation"`
	DependentsFactor     float64 `json:"dependents_factor"`
}

// Vector returns the features in the fixed order used by model artifacts.
func (f *DerivedFeatures) Vector() []float64 {
	return []float64{
		f.SavingsRate,
		f.DebtToIncome,
		f.CoverageRatio,
		f.ExpenseRatio,
		f.EmergencyFundMonths,
		f.InvestmentAllocation,
	}
}

// FeatureCount is the length of the vector fed to model artifacts.
const FeatureCount = 6
