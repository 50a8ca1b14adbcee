package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/finsight/advisor-service/internal/advisory"
	"github.com/finsight/advisor-service/internal/config"
	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/features"
	"github.com/finsight/advisor-service/internal/integrations/rates"
	"github.com/finsight/advisor-service/internal/middleware"
	"github.com/finsight/advisor-service/internal/models"
	"github.com/finsight/advisor-service/internal/repository"
	"github.com/finsight/advisor-service/internal/scoring"
	"github.com/finsight/advisor-service/internal/utils/email"
)

// Service handles business logic
type Service struct {
	repo    repository.Store
	log     *logrus.Logger
	config  *config.Config
	advisor advisory.Advisor
	rates   *rates.Client
	mailer  *email.Sender
}

// NewService initializes a new service. rates and mailer may be nil
// when the corresponding integration is not configured.
func NewService(repo repository.Store, log *logrus.Logger, cfg *config.Config, advisor advisory.Advisor, ratesClient *rates.Client, mailer *email.Sender) *Service {
	return &Service{
		repo:    repo,
		log:     log,
		config:  cfg,
		advisor: advisor,
		rates:   ratesClient,
		mailer:  mailer,
	}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// userIDFromContext resolves the authenticated user id injected by the
// auth middleware.
func (s *Service) userIDFromContext(ctx context.Context) (int64, error) {
	idStr, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}

// SubmitProfile validates and persists the user's financial profile,
// then scores it. A scoring failure is returned to the caller but the
// validated profile stays saved; invalid input is never persisted.
func (s *Service) SubmitProfile(ctx context.Context, p *models.FinancialProfile) (*models.ScoreResult, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p.UserID = userID

	f, err := features.Build(p)
	if err != nil {
		return nil, err
	}

	if err := s.repo.PutProfile(p); err != nil {
		return nil, err
	}
	s.log.Infof("Profile saved for user %d", userID)

	result, err := s.score(f)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil && result.RiskScore >= s.config.RiskAlertThreshold {
		s.sendRiskAlert(userID, result)
	}

	return result, nil
}

// GetProfile returns the stored financial profile for the caller
func (s *Service) GetProfile(ctx context.Context) (*models.FinancialProfile, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetProfile(userID)
}

// Dashboard recomputes features and scores from the stored profile and
// adds the long-horizon outlook.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	f, err := features.Build(p)
	if err != nil {
		return nil, err
	}
	result, err := s.score(f)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Profile:     p,
		Features:    f,
		Scores:      result,
		Projections: scoring.Projections(p, result),
	}, nil
}

// Ask answers a financial question with the advisor, using the current
// scores as context, and appends the exchange to the user's history.
// Advisory failures never touch persisted profile data.
func (s *Service) Ask(ctx context.Context, question string) (*models.AdvisoryExchange, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if question == "" {
		return nil, errs.NewValidationError("question")
	}

	p, err := s.repo.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	f, err := features.Build(p)
	if err != nil {
		return nil, err
	}
	result, err := s.score(f)
	if err != nil {
		return nil, err
	}

	snapshot := s.snapshot(p, result)
	answer, err := s.advisor.Ask(ctx, question, snapshot)
	if err != nil {
		return nil, err
	}

	exchange := &models.AdvisoryExchange{
		ID:        uuid.NewString(),
		UserID:    userID,
		Question:  question,
		Context:   *snapshot,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendExchange(exchange); err != nil {
		// The answer still goes back to the user.
		s.log.Errorf("Failed to append exchange for user %d: %v", userID, err)
	}

	s.log.Infof("Advisory exchange completed for user %d", userID)
	return exchange, nil
}

// History returns the caller's advisory history, most recent first
func (s *Service) History(ctx context.Context, limit int) ([]models.AdvisoryExchange, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListExchanges(userID, limit)
}

// Tips returns personalized tips for the caller
func (s *Service) Tips(ctx context.Context) ([]string, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	f, err := features.Build(p)
	if err != nil {
		return nil, err
	}
	result, err := s.score(f)
	if err != nil {
		return nil, err
	}
	return s.advisor.Tips(ctx, s.snapshot(p, result))
}

// TrainModel fits a new model artifact from the batch and persists it
// as the next version.
func (s *Service) TrainModel(samples []scoring.Sample) (*models.ModelArtifact, error) {
	artifact, err := scoring.Train(samples)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveModelArtifact(artifact); err != nil {
		return nil, err
	}
	s.log.Infof("Model artifact v%d trained on %d samples", artifact.Version, artifact.SampleCount)
	return artifact, nil
}

// TrainFromFile loads the configured training dataset and retrains.
// Used by the nightly cron job and the parameterless train endpoint.
func (s *Service) TrainFromFile() (*models.ModelArtifact, error) {
	if s.config.TrainingDataPath == "" {
		return nil, &errs.TrainingError{Reason: "no training data path configured"}
	}
	samples, err := scoring.LoadSamplesCSV(s.config.TrainingDataPath)
	if err != nil {
		return nil, err
	}
	return s.TrainModel(samples)
}

// LatestArtifact returns the currently served model artifact
func (s *Service) LatestArtifact() (*models.ModelArtifact, error) {
	return s.repo.LatestModelArtifact()
}

// score runs the scoring component against the latest model artifact,
// falling back to the rule-based formulas when none is trained yet.
func (s *Service) score(f *models.DerivedFeatures) (*models.ScoreResult, error) {
	artifact, err := s.repo.LatestModelArtifact()
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warnf("Failed to load model artifact, using rule-based scoring: %v", err)
	}
	return scoring.Score(f, artifact)
}

func (s *Service) snapshot(p *models.FinancialProfile, r *models.ScoreResult) *models.ContextSnapshot {
	snap := &models.ContextSnapshot{
		NetIncome:     p.NetIncome.StringFixed(2),
		TotalExpenses: p.TotalExpenses().StringFixed(2),
		Savings:       p.Savings.StringFixed(2),
		Investments:   p.Investments.StringFixed(2),
		TotalDebt:     p.TotalDebt().StringFixed(2),
		Age:           p.Age,
		Dependents:    p.Dependents,
		RiskScore:     r.RiskScore,
		Readiness:     r.InvestmentReadiness,
		InsuranceGap:  r.InsuranceGap.StringFixed(2),
	}
	if s.rates != nil {
		snap.KeyRate = s.rates.CachedRate()
	}
	return snap
}

func (s *Service) sendRiskAlert(userID int64, result *models.ScoreResult) {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		s.log.Errorf("Failed to load user %d for risk alert: %v", userID, err)
		return
	}
	if err := s.mailer.SendRiskAlert(user.Email, user.Username, result); err != nil {
		s.log.Errorf("Failed to send risk alert to user %d: %v", userID, err)
	}
}
