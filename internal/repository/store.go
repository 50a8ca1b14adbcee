// Package repository provides persistence for users, financial
// profiles, advisory history and model artifacts. Two implementations
// exist: Postgres for deployments and an in-memory store used in tests
// and when no database is configured.
package repository

import "github.com/finsight/advisor-service/internal/models"

// Store abstracts the document store. Implementations must serialize
// writes to the same record and return errs.ErrNotFound for missing
// records.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)

	GetProfile(userID int64) (*models.FinancialProfile, error)
	PutProfile(p *models.FinancialProfile) error

	AppendExchange(e *models.AdvisoryExchange) error
	ListExchanges(userID int64, limit int) ([]models.AdvisoryExchange, error)

	// SaveModelArtifact assigns the next version to the artifact and
	// persists it. Existing versions are never overwritten.
	SaveModelArtifact(a *models.ModelArtifact) error
	LatestModelArtifact() (*models.ModelArtifact, error)
}
