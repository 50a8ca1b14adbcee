// Package features derives scoring ratios from a raw financial profile.
package features

import (
	"github.com/shopspring/decimal"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

const (
	maxAge        = 120
	minAge        = 18
	maxDependents = 20
)

// Validate checks a profile before feature derivation. It returns a
// ValidationError listing every offending field, so the client can fix
// them all in one pass.
func Validate(p *models.FinancialProfile) error {
	var bad []string

	if !p.NetIncome.IsPositive() {
		bad = append(bad, "net_income")
	}
	if p.GrossIncome.IsNegative() {
		bad = append(bad, "gross_income")
	}
	if p.FixedExpenses.IsNegative() {
		bad = append(bad, "fixed_expenses")
	}
	if p.VariableExpenses.IsNegative() {
		bad = append(bad, "variable_expenses")
	}
	if p.Savings.IsNegative() {
		bad = append(bad, "savings")
	}
	if p.Investments.IsNegative() {
		bad = append(bad, "investments")
	}
	if p.Assets.IsNegative() {
		bad = append(bad, "assets")
	}
	if p.InsuranceCoverage.IsNegative() {
		bad = append(bad, "insurance_coverage")
	}
	for _, d := range p.Debts {
		if d.Amount.IsNegative() || d.Rate < 0 || d.MonthlyPayment.IsNegative() {
			bad = append(bad, "debts")
			break
		}
	}
	if p.Age < minAge || p.Age > maxAge {
		bad = append(bad, "age")
	}
	if p.Dependents < 0 || p.Dependents > maxDependents {
		bad = append(bad, "dependents")
	}

	if len(bad) > 0 {
		return errs.NewValidationError(bad...)
	}
	return nil
}

// Build validates the profile and computes its derived features. Pure
// function of the input: same profile, same features.
func Build(p *models.FinancialProfile) (*models.DerivedFeatures, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	income := p.NetIncome.InexactFloat64()
	expenses := p.TotalExpenses().InexactFloat64()
	savings := p.Savings.InexactFloat64()
	assets := p.Assets.InexactFloat64()

	f := &models.DerivedFeatures{
		SavingsRate:      savings / income,
		DebtToIncome:     p.TotalDebt().InexactFloat64() / income,
		ExpenseRatio:     expenses / income,
		DependentsFactor: 1 + 0.5*float64(p.Dependents),
	}

	// Coverage target is annual income scaled by household burden.
	f.CoverageTarget = p.NetIncome.Mul(decimal.NewFromInt(12)).
		Mul(decimal.NewFromFloat(f.DependentsFactor))
	f.CoverageRatio = p.InsuranceCoverage.InexactFloat64() / f.CoverageTarget.InexactFloat64()

	if expenses > 0 {
		f.EmergencyFundMonths = savings / expenses
	}
	if assets > 0 {
		f.InvestmentAllocation = p.Investments.InexactFloat64() / assets
	}

	return f, nil
}
