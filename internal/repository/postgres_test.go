package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_CreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO advisor\.users`).
		WithArgs("alex", "alex@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	user := &models.User{Username: "alex", Email: "alex@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindUserByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, username, email`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}))

	_, err := repo.FindUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	debts, err := json.Marshal([]models.Debt{{Amount: decimal.NewFromInt(10000), Rate: 0.12}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT user_id, gross_income`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "gross_income", "net_income", "fixed_expenses", "variable_expenses",
			"savings", "investments", "assets", "debts", "insurance_coverage",
			"age", "dependents", "household_size", "owns_home", "created_at", "updated_at",
		}).AddRow(
			int64(1), "6000", "5000", "2000", "1000",
			"500", "1500", "30000", debts, "50000",
			30, 1, 2, true, now, now,
		))

	p, err := repo.GetProfile(1)
	require.NoError(t, err)
	assert.True(t, p.NetIncome.Equal(decimal.NewFromInt(5000)))
	assert.True(t, p.TotalDebt().Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 30, p.Age)
	assert.True(t, p.OwnsHome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetProfile_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT user_id, gross_income`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := repo.GetProfile(9)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PutProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	p := testProfile(1)

	mock.ExpectQuery(`INSERT INTO advisor\.profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.PutProfile(p))
	assert.Equal(t, now, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AppendExchange(t *testing.T) {
	repo, mock := newMockRepo(t)
	e := &models.AdvisoryExchange{
		ID:       "5ad4aa51-2b0e-4e37-b2ad-6743f8c55e7a",
		UserID:   1,
		Question: "How much should I save?",
		Answer:   "Aim for 20% of income.",
		Context:  models.ContextSnapshot{RiskScore: 0.4},
	}

	mock.ExpectExec(`INSERT INTO advisor\.exchanges`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AppendExchange(e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveModelArtifact_AssignsNextVersion(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := &models.ModelArtifact{
		Weights:     []float64{1, 2, 3, 4, 5, 6},
		Bias:        0.1,
		SampleCount: 100,
		TrainedAt:   time.Now(),
	}

	mock.ExpectQuery(`INSERT INTO advisor\.model_artifacts`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))

	require.NoError(t, repo.SaveModelArtifact(a))
	assert.Equal(t, 3, a.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LatestModelArtifact(t *testing.T) {
	repo, mock := newMockRepo(t)
	weights, err := json.Marshal([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT version, weights, bias`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "weights", "bias", "sample_count", "trained_at"}).
			AddRow(2, weights, 0.05, 50, time.Now()))

	a, err := repo.LatestModelArtifact()
	require.NoError(t, err)
	assert.Equal(t, 2, a.Version)
	assert.InDelta(t, 0.2, a.Weights[1], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
