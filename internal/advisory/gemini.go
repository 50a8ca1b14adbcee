package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
)

// GeminiAdvisor answers questions via the Gemini API.
type GeminiAdvisor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retries uint64
	log     *logrus.Logger
}

// NewGeminiAdvisor initializes the Gemini client. The timeout bounds
// every generate call; at most `retries` additional attempts are made
// with exponential backoff.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string, timeout time.Duration, log *logrus.Logger) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &GeminiAdvisor{
		client:  client,
		model:   model,
		timeout: timeout,
		retries: 2,
		log:     log,
	}, nil
}

// Ask sends the question plus context snapshot to the model and
// returns its free-text answer.
func (g *GeminiAdvisor) Ask(ctx context.Context, question string, snapshot *models.ContextSnapshot) (string, error) {
	prompt := buildPrompt(question, snapshot)
	return g.generate(ctx, prompt)
}

// Tips asks the model for five short personalized tips.
func (g *GeminiAdvisor) Tips(ctx context.Context, snapshot *models.ContextSnapshot) ([]string, error) {
	prompt := buildPrompt(
		"Generate 5 specific, actionable financial tips for this user. "+
			"Each tip should be practical and easy to understand. "+
			"Return the tips as a simple list, one per line, without numbering.",
		snapshot)
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line != "" {
			tips = append(tips, line)
		}
	}
	if len(tips) > 5 {
		tips = tips[:5]
	}
	return tips, nil
}

func (g *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	var answer string

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.client.Models.GenerateContent(callCtx, g.model, genai.Text(prompt), nil)
		if err != nil {
			return err
		}
		text := resp.Text()
		if text == "" {
			return fmt.Errorf("empty response from model")
		}
		answer = text
		return nil
	}

	strategy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.retries)
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		g.log.Errorf("Gemini request failed: %v", err)
		return "", &errs.UpstreamError{Service: "gemini", Err: err}
	}
	return answer, nil
}
