package service

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/advisor-service/internal/config"
	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/middleware"
	"github.com/finsight/advisor-service/internal/models"
	"github.com/finsight/advisor-service/internal/repository"
	"github.com/finsight/advisor-service/internal/scoring"
)

// stubAdvisor records calls and can be forced to fail.
type stubAdvisor struct {
	answer string
	err    error
	calls  int
}

func (s *stubAdvisor) Ask(_ context.Context, _ string, _ *models.ContextSnapshot) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubAdvisor) Tips(_ context.Context, _ *models.ContextSnapshot) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"tip one", "tip two"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		RiskAlertThreshold: 0.7,
		AdvisoryTimeout:    0,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(advisor *stubAdvisor) (*Service, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := NewService(store, testLogger(), testConfig(), advisor, nil, nil)
	return svc, store
}

func authCtx(userID string) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

func submittableProfile() *models.FinancialProfile {
	return &models.FinancialProfile{
		GrossIncome:       decimal.NewFromInt(6000),
		NetIncome:         decimal.NewFromInt(5000),
		FixedExpenses:     decimal.NewFromInt(2000),
		VariableExpenses:  decimal.NewFromInt(1000),
		Savings:           decimal.NewFromInt(500),
		Investments:       decimal.NewFromInt(1000),
		Assets:            decimal.NewFromInt(20000),
		InsuranceCoverage: decimal.NewFromInt(0),
		Age:               30,
		Dependents:        1,
		HouseholdSize:     2,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})

	user, err := svc.Register("alex", "alex@example.com", "password123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err := svc.Login("alex@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login("alex@example.com", "wrong")
	assert.Error(t, err)
}

func TestSubmitProfile_PersistsAndScores(t *testing.T) {
	svc, store := newTestService(&stubAdvisor{})

	result, err := svc.SubmitProfile(authCtx("1"), submittableProfile())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
	assert.GreaterOrEqual(t, result.InvestmentReadiness, 0.0)
	assert.LessOrEqual(t, result.InvestmentReadiness, 1.0)

	stored, err := store.GetProfile(1)
	require.NoError(t, err)
	assert.True(t, stored.NetIncome.Equal(decimal.NewFromInt(5000)))
}

func TestSubmitProfile_InvalidNotPersisted(t *testing.T) {
	svc, store := newTestService(&stubAdvisor{})

	p := submittableProfile()
	p.NetIncome = decimal.Zero

	result, err := svc.SubmitProfile(authCtx("1"), p)
	assert.Nil(t, result)
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "net_income")

	_, err = store.GetProfile(1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubmitProfile_NoAuth(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})
	_, err := svc.SubmitProfile(context.Background(), submittableProfile())
	assert.Error(t, err)
}

func TestAsk_AppendsExchange(t *testing.T) {
	advisor := &stubAdvisor{answer: "Save 20% of your income each month."}
	svc, _ := newTestService(advisor)

	_, err := svc.SubmitProfile(authCtx("1"), submittableProfile())
	require.NoError(t, err)

	exchange, err := svc.Ask(authCtx("1"), "How much should I save?")
	require.NoError(t, err)
	assert.Equal(t, advisor.answer, exchange.Answer)
	assert.NotEmpty(t, exchange.ID)
	assert.Equal(t, "5000.00", exchange.Context.NetIncome)
	assert.Equal(t, 1, advisor.calls)

	history, err := svc.History(authCtx("1"), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, exchange.ID, history[0].ID)
}

func TestAsk_UpstreamFailureLeavesProfileIntact(t *testing.T) {
	advisor := &stubAdvisor{err: &errs.UpstreamError{Service: "gemini", Err: context.DeadlineExceeded}}
	svc, store := newTestService(advisor)

	_, err := svc.SubmitProfile(authCtx("1"), submittableProfile())
	require.NoError(t, err)

	_, err = svc.Ask(authCtx("1"), "Can I afford a vacation?")
	var uErr *errs.UpstreamError
	require.ErrorAs(t, err, &uErr)

	// The profile saved before the advisory phase is untouched and no
	// exchange was recorded.
	stored, err := store.GetProfile(1)
	require.NoError(t, err)
	assert.True(t, stored.NetIncome.Equal(decimal.NewFromInt(5000)))

	history, err := svc.History(authCtx("1"), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAsk_RequiresQuestionAndProfile(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{answer: "x"})

	_, err := svc.Ask(authCtx("1"), "")
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Ask(authCtx("1"), "What now?")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})
	_, err := svc.SubmitProfile(authCtx("1"), submittableProfile())
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(authCtx("1"))
	require.NoError(t, err)
	assert.NotNil(t, dashboard.Profile)
	assert.NotNil(t, dashboard.Features)
	assert.NotNil(t, dashboard.Scores)
	assert.Len(t, dashboard.Projections, 3)
}

func TestTrainModel_VersionsAppendOnly(t *testing.T) {
	svc, store := newTestService(&stubAdvisor{})

	samples := []scoring.Sample{
		{Features: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, Outcome: 0.4},
		{Features: []float64{0.2, 0.1, 0.4, 0.3, 0.6, 0.5}, Outcome: 0.3},
	}

	first, err := svc.TrainModel(samples)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := svc.TrainModel(samples)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	latest, err := store.LatestModelArtifact()
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestTrainModel_BadBatch(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})
	_, err := svc.TrainModel(nil)
	var tErr *errs.TrainingError
	require.ErrorAs(t, err, &tErr)
}

func TestScoringUsesLatestArtifact(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})

	_, err := svc.SubmitProfile(authCtx("1"), submittableProfile())
	require.NoError(t, err)

	// Before training, the rule-based path reports model version 0.
	dashboard, err := svc.Dashboard(authCtx("1"))
	require.NoError(t, err)
	assert.Equal(t, 0, dashboard.Scores.ModelVersion)

	samples := []scoring.Sample{
		{Features: []float64{0.1, 0, 0, 0.6, 0.2, 0}, Outcome: 0.5},
		{Features: []float64{0.3, 1, 0, 0.4, 1.0, 0.2}, Outcome: 0.6},
	}
	_, err = svc.TrainModel(samples)
	require.NoError(t, err)

	dashboard, err = svc.Dashboard(authCtx("1"))
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.Scores.ModelVersion)
}

func TestTrainFromFile_NotConfigured(t *testing.T) {
	svc, _ := newTestService(&stubAdvisor{})
	_, err := svc.TrainFromFile()
	var tErr *errs.TrainingError
	require.ErrorAs(t, err, &tErr)
}
