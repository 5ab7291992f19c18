package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// ErrNoAPIKey is returned when extraction is attempted without GEMINI_API_KEY
var ErrNoAPIKey = errors.New("GEMINI_API_KEY is not configured")

// generator is the slice of the genai SDK the extractor uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini extracts the structured envelope with a Gemini model
// ⭐ SSOT: LLM 호출은 여기서만
type Gemini struct {
	models   generator
	model    string
	timeout  time.Duration
	maxChars int
	limiter  *rate.Limiter
	logger   *logger.Logger
}

// NewGemini creates the extractor. httpClient carries retries and timeouts (pkg/httputil).
func NewGemini(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client, log *logger.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGemini(client.Models, cfg, log), nil
}

func newGemini(models generator, cfg config.GeminiConfig, log *logger.Logger) *Gemini {
	return &Gemini{
		models:   models,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxInputChars,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		logger:   log.WithComponent("extraction"),
	}
}

// ExtractStructured asks the model for the envelope. Transport and API failures are
// returned; a reply that cannot be parsed degrades to an empty envelope.
func (g *Gemini) ExtractStructured(ctx context.Context, text string) (*contracts.Envelope, error) {
	log := g.logger.WithContext(ctx)

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("extraction rate limit wait failed: %w", err)
	}

	prompt, err := buildPrompt(truncate(text, g.maxChars))
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemPrompt}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	reply := result.Text()
	env, err := ParseEnvelope(reply)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"model":       g.model,
			"reply_bytes": len(reply),
		}).Warn("Unparseable extraction reply, using empty envelope")
		return contracts.EmptyEnvelope(), nil
	}

	log.WithFields(map[string]interface{}{
		"model":      g.model,
		"input_len":  utf8.RuneCountInString(text),
		"financials": len(env.Extracted.Financials),
		"duration":   time.Since(start),
	}).Info("Structured extraction completed")

	return env, nil
}

func buildPrompt(text string) (string, error) {
	schema, err := json.Marshal(Schema())
	if err != nil {
		return "", fmt.Errorf("failed to marshal extraction schema: %w", err)
	}
	return fmt.Sprintf("Schema:\n%s\n\nText:\n%s", schema, text), nil
}

// truncate keeps the first max characters (runes); max <= 0 disables truncation
func truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}

// Disabled is the extractor used when no API key is configured
type Disabled struct{}

// ExtractStructured always fails with ErrNoAPIKey
func (Disabled) ExtractStructured(ctx context.Context, text string) (*contracts.Envelope, error) {
	return nil, ErrNoAPIKey
}
