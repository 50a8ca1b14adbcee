package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO advisor.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM advisor.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM advisor.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetProfile retrieves the financial profile for a user
func (r *Repository) GetProfile(userID int64) (*models.FinancialProfile, error) {
	p := &models.FinancialProfile{}
	var debtsJSON []byte
	query := `
		SELECT user_id, gross_income, net_income, fixed_expenses, variable_expenses,
		       savings, investments, assets, debts, insurance_coverage,
		       age, dependents, household_size, owns_home, created_at, updated_at
		FROM advisor.profiles
		WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&p.UserID, &p.GrossIncome, &p.NetIncome, &p.FixedExpenses, &p.VariableExpenses,
		&p.Savings, &p.Investments, &p.Assets, &debtsJSON, &p.InsuranceCoverage,
		&p.Age, &p.Dependents, &p.HouseholdSize, &p.OwnsHome, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if err := json.Unmarshal(debtsJSON, &p.Debts); err != nil {
		return nil, fmt.Errorf("failed to decode debts: %w", err)
	}
	return p, nil
}

// PutProfile inserts or replaces the financial profile for a user
func (r *Repository) PutProfile(p *models.FinancialProfile) error {
	debtsJSON, err := json.Marshal(p.Debts)
	if err != nil {
		return fmt.Errorf("failed to encode debts: %w", err)
	}
	query := `
		INSERT INTO advisor.profiles (
			user_id, gross_income, net_income, fixed_expenses, variable_expenses,
			savings, investments, assets, debts, insurance_coverage,
			age, dependents, household_size, owns_home, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			gross_income = EXCLUDED.gross_income,
			net_income = EXCLUDED.net_income,
			fixed_expenses = EXCLUDED.fixed_expenses,
			variable_expenses = EXCLUDED.variable_expenses,
			savings = EXCLUDED.savings,
			investments = EXCLUDED.investments,
			assets = EXCLUDED.assets,
			debts = EXCLUDED.debts,
			insurance_coverage = EXCLUDED.insurance_coverage,
			age = EXCLUDED.age,
			dependents = EXCLUDED.dependents,
			household_size = EXCLUDED.household_size,
			owns_home = EXCLUDED.owns_home,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`
	err = r.db.QueryRow(query,
		p.UserID, p.GrossIncome, p.NetIncome, p.FixedExpenses, p.VariableExpenses,
		p.Savings, p.Investments, p.Assets, debtsJSON, p.InsuranceCoverage,
		p.Age, p.Dependents, p.HouseholdSize, p.OwnsHome).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put profile: %w", err)
	}
	return nil
}

// AppendExchange appends an advisory exchange to the user's history
func (r *Repository) AppendExchange(e *models.AdvisoryExchange) error {
	ctxJSON, err := json.Marshal(e.Context)
	if err != nil {
		return fmt.Errorf("failed to encode context snapshot: %w", err)
	}
	query := `
		INSERT INTO advisor.exchanges (id, user_id, question, context, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(query, e.ID, e.UserID, e.Question, ctxJSON, e.Answer, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to append exchange: %w", err)
	}
	return nil
}

// ListExchanges returns the most recent advisory exchanges for a user
func (r *Repository) ListExchanges(userID int64, limit int) ([]models.AdvisoryExchange, error) {
	query := `
		SELECT id, user_id, question, context, answer, created_at
		FROM advisor.exchanges
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.AdvisoryExchange
	for rows.Next() {
		var e models.AdvisoryExchange
		var ctxJSON []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Question, &ctxJSON, &e.Answer, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if err := json.Unmarshal(ctxJSON, &e.Context); err != nil {
			return nil, fmt.Errorf("failed to decode context snapshot: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}
	return exchanges, nil
}

// SaveModelArtifact persists a new artifact with the next version.
// Versions are append-only: existing rows are never updated.
func (r *Repository) SaveModelArtifact(a *models.ModelArtifact) error {
	weightsJSON, err := json.Marshal(a.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	query := `
		INSERT INTO advisor.model_artifacts (version, weights, bias, sample_count, trained_at)
		SELECT COALESCE(MAX(version), 0) + 1, $1, $2, $3, $4
		FROM advisor.model_artifacts
		RETURNING version`
	err = r.db.QueryRow(query, weightsJSON, a.Bias, a.SampleCount, a.TrainedAt).Scan(&a.Version)
	if err != nil {
		return fmt.Errorf("failed to save model artifact: %w", err)
	}
	return nil
}

// LatestModelArtifact returns the most recently trained artifact
func (r *Repository) LatestModelArtifact() (*models.ModelArtifact, error) {
	a := &models.ModelArtifact{}
	var weightsJSON []byte
	query := `
		SELECT version, weights, bias, sample_count, trained_at
		FROM advisor.model_artifacts
		ORDER BY version DESC
		LIMIT 1`
	err := r.db.QueryRow(query).Scan(&a.Version, &weightsJSON, &a.Bias, &a.SampleCount, &a.TrainedAt)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model artifact: %w", err)
	}
	if err := json.Unmarshal(weightsJSON, &a.Weights); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	return a, nil
}
