package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreResult represents the indicators derived from a financial profile.
// RiskScore and InvestmentReadiness are always within [0,1].
type ScoreResult struct {
	RiskScore           float64         `json:"risk_score"`
	InvestmentReadiness float64         `json:"investment_readiness"`
	InsuranceGap        decimal.Decimal `json:"insurance_gap"`
	HealthStatus        string          `json:"health_status"`
	ModelVersion        int             `json:"model_version"`
}

// ModelArtifact holds fitted linear model parameters. Artifacts are
// versioned append-only: a retrain produces a new version and never
// mutates one already served.
type ModelArtifact struct {
	Version     int       `json:"version"`
	Weights     []float64 `json:"weights"`
	Bias        float64   `json:"bias"`
	SampleCount int       `json:"sample_count"`
	TrainedAt   time.Time `json:"trained_at"`
}

// Projection represents a savings and investment outlook for one horizon.
type Projection struct {
	Years             int             `json:"years"`
	SavingsGrowth     decimal.Decimal `json:"savings_growth"`
	InvestmentReturns decimal.Decimal `json:"investment_returns"`
	HealthStatus      string          `json:"health_status"`
}
