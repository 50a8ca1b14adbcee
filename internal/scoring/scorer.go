// Package scoring turns derived features into risk, investment
// readiness and insurance gap indicators.
package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

// Weighting of the rule-based risk and readiness scores. Debt and
// expense pressure push risk up, buffers pull it down.
const (
	riskDebtWeight     = 0.40
	riskExpenseWeight  = 0.35
	riskSavingsWeight  = 0.15
	riskCoverageWeight = 0.10

	readySurplusWeight    = 0.30
	readyEmergencyWeight  = 0.25
	readyDebtWeight       = 0.25
	readyAllocationWeight = 0.20

	// Months of expenses considered a full emergency buffer.
	fullBufferMonths = 6.0
	// Debt at this multiple of monthly income counts as full stress.
	fullDebtStressRatio = 6.0
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Score computes a ScoreResult from derived features. When a model
// artifact is supplied its fitted weights replace the rule-based risk
// formula. Pure function: no state is read or written.
func Score(f *models.DerivedFeatures, art *models.ModelArtifact) (*models.ScoreResult, error) {
	if f == nil {
		return nil, &errs.ScoringError{Reason: "derived features are required"}
	}
	vec := f.Vector()
	if !finite(vec...) {
		return nil, &errs.ScoringError{Reason: "non-finite feature value"}
	}

	debtStress := clamp01(f.DebtToIncome / fullDebtStressRatio)
	expenseStress := clamp01(f.ExpenseRatio)
	savingsBuffer := clamp01(f.EmergencyFundMonths / fullBufferMonths)
	coverageBuffer := clamp01(f.CoverageRatio)

	result := &models.ScoreResult{}

	if art != nil {
		if len(art.Weights) != models.FeatureCount {
			return nil, &errs.ScoringError{Reason: "model artifact feature count mismatch"}
		}
		pred := art.Bias
		for i, w := range art.Weights {
			pred += w * vec[i]
		}
		if !finite(pred) {
			return nil, &errs.ScoringError{Reason: "model produced non-finite risk"}
		}
		result.RiskScore = clamp01(pred)
		result.ModelVersion = art.Version
	} else {
		result.RiskScore = clamp01(
			riskDebtWeight*debtStress +
				riskExpenseWeight*expenseStress +
				riskSavingsWeight*(1-savingsBuffer) +
				riskCoverageWeight*(1-coverageBuffer))
	}

	surplus := clamp01(1 - f.ExpenseRatio)
	result.InvestmentReadiness = clamp01(
		readySurplusWeight*surplus +
			readyEmergencyWeight*savingsBuffer +
			readyDebtWeight*(1-debtStress) +
			readyAllocationWeight*clamp01(f.InvestmentAllocation))

	gap := f.CoverageTarget.Mul(decimal.NewFromFloat(1 - coverageBuffer))
	if gap.IsNegative() {
		gap = decimal.Zero
	}
	result.InsuranceGap = gap.Round(2)
	result.HealthStatus = healthStatus(result.RiskScore)

	return result, nil
}

// healthStatus maps a risk score to a coarse label.
func healthStatus(risk float64) string {
	switch {
	case risk < 0.3:
		return "Good"
	case risk < 0.7:
		return "Moderate"
	default:
		return "High Risk"
	}
}

// Projections estimates savings growth and investment returns at the
// given horizons, mirroring the dashboard outlook. Deterministic in the
// profile and scores.
func Projections(p *models.FinancialProfile, sr *models.ScoreResult) []models.Projection {
	horizons := []struct {
		years        int
		savingsMult  float64
		contribShare float64
		returnRate   float64
	}{
		{1, 1.10, 0.20, 0.12},
		{3, 1.35, 0.20, 0.40},
		{10, 2.50, 0.25, 1.80},
	}

	out := make([]models.Projection, 0, len(horizons))
	for _, h := range horizons {
		contrib := p.NetIncome.
			Mul(decimal.NewFromFloat(h.contribShare)).
			Mul(decimal.NewFromInt(int64(h.years * 12)))
		growth := p.Savings.Mul(decimal.NewFromFloat(h.savingsMult)).Add(contrib)
		returns := p.Investments.Mul(decimal.NewFromFloat(h.returnRate))
		out = append(out, models.Projection{
			Years:             h.years,
			SavingsGrowth:     growth.Round(2),
			InvestmentReturns: returns.Round(2),
			HealthStatus:      healthStatus(sr.RiskScore),
		})
	}
	return out
}
