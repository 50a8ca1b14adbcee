package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

func testProfile(userID int64) *models.FinancialProfile {
	return &models.FinancialProfile{
		UserID:            userID,
		GrossIncome:       decimal.NewFromInt(6000),
		NetIncome:         decimal.NewFromInt(5000),
		FixedExpenses:     decimal.NewFromInt(2000),
		VariableExpenses:  decimal.NewFromInt(1000),
		Savings:           decimal.NewFromInt(500),
		Investments:       decimal.NewFromInt(1500),
		Assets:            decimal.NewFromInt(30000),
		Debts:             []models.Debt{{Amount: decimal.NewFromInt(10000), Rate: 0.12}},
		InsuranceCoverage: decimal.NewFromInt(50000),
		Age:               30,
		Dependents:        1,
		HouseholdSize:     2,
		OwnsHome:          true,
	}
}

func TestMemoryStore_ProfileRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	p := testProfile(1)

	require.NoError(t, store.PutProfile(p))

	got, err := store.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)
	assert.True(t, p.NetIncome.Equal(got.NetIncome))
	assert.True(t, p.InsuranceCoverage.Equal(got.InsuranceCoverage))
	assert.Equal(t, p.Age, got.Age)
	assert.Equal(t, p.OwnsHome, got.OwnsHome)
	require.Len(t, got.Debts, 1)
	assert.True(t, p.Debts[0].Amount.Equal(got.Debts[0].Amount))
}

func TestMemoryStore_GetProfileNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetProfile(42)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryStore_PutProfileKeepsCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	p := testProfile(1)
	require.NoError(t, store.PutProfile(p))
	created := p.CreatedAt

	updated := testProfile(1)
	updated.Savings = decimal.NewFromInt(900)
	require.NoError(t, store.PutProfile(updated))

	got, err := store.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.Savings.Equal(decimal.NewFromInt(900)))
}

func TestMemoryStore_Users(t *testing.T) {
	store := NewMemoryStore()
	user := &models.User{Username: "alex", Email: "alex@example.com", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(user))
	assert.Equal(t, int64(1), user.ID)

	dup := &models.User{Username: "other", Email: "ALEX@example.com", PasswordHash: "hash"}
	assert.Error(t, store.CreateUser(dup))

	byEmail, err := store.FindUserByEmail("alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.FindUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alex", byID.Username)

	_, err = store.FindUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryStore_ExchangesAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		e := &models.AdvisoryExchange{
			ID:        uuid.NewString(),
			UserID:    1,
			Question:  "q",
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.AppendExchange(e))
	}

	history, err := store.ListExchanges(1, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].CreatedAt.After(history[1].CreatedAt),
		"most recent exchange first")

	all, err := store.ListExchanges(1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_ModelArtifactVersions(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.LatestModelArtifact()
	assert.ErrorIs(t, err, errs.ErrNotFound)

	first := &models.ModelArtifact{Weights: []float64{1, 2, 3, 4, 5, 6}, Bias: 0.1, TrainedAt: time.Now()}
	require.NoError(t, store.SaveModelArtifact(first))
	assert.Equal(t, 1, first.Version)

	second := &models.ModelArtifact{Weights: []float64{6, 5, 4, 3, 2, 1}, Bias: 0.2, TrainedAt: time.Now()}
	require.NoError(t, store.SaveModelArtifact(second))
	assert.Equal(t, 2, second.Version)

	latest, err := store.LatestModelArtifact()
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, 0.2, latest.Bias)

	// Mutating the returned artifact must not affect the stored one.
	latest.Weights[0] = 99
	again, err := store.LatestModelArtifact()
	require.NoError(t, err)
	assert.Equal(t, 6.0, again.Weights[0])
}
