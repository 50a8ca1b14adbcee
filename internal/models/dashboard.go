package models

// Dashboard aggregates everything the dashboard view renders: the
// stored profile, its derived features, current scores and the
// long-horizon outlook.
type Dashboard struct {
	Profile     *FinancialProfile `json:"profile"`
	Features    *DerivedFeatures  `json:"features"`
	Scores      *ScoreResult      `json:"scores"`
	Projections []Projection      `json:"projections"`
}
