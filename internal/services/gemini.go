package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrNoAPIKey signals that the generative-language collaborator is not
// configured. Callers treat it as a disabled feature, never a failure
// of the analytics core.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// GeminiClient talks to the Generative Language API. External-call
// hygiene follows the usual pattern: bounded timeout, rate limiting,
// circuit breaker, response caching.
type GeminiClient struct {
	httpClient     *http.Client
	cache          *CacheService
	circuitBreaker *CircuitBreakerService
	rateLimiter    *rate.Limiter
	logger         *logrus.Logger
	apiKey         string
	model          string
	baseURL        string
}

// geminiRequest is the generateContent payload.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the subset of the generateContent response we use.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a Gemini client. An empty API key produces a
// client whose calls return ErrNoAPIKey.
func NewGeminiClient(apiKey, model string, timeout time.Duration, cache *CacheService, cb *CircuitBreakerService, logger *logrus.Logger) *GeminiClient {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{
		httpClient:     &http.Client{Timeout: timeout},
		cache:          cache,
		circuitBreaker: cb,
		rateLimiter:    rate.NewLimiter(rate.Every(4*time.Second), 1), // 15 requests per minute on the free tier
		logger:         logger,
		apiKey:         apiKey,
		model:          model,
		baseURL:        "https://generativelanguage.googleapis.com/v1beta",
	}
}

// Enabled reports whether the collaborator is configured at all.
func (g *GeminiClient) Enabled() bool {
	return g.apiKey != ""
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's text. Identical prompts within the cache TTL are served
// from Redis without touching the API.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !g.Enabled() {
		return "", ErrNoAPIKey
	}

	cacheKey := g.cache.BuildKey("gemini", g.model, promptDigest(prompt))
	var cached string
	if err := g.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else if err != redis.Nil {
		g.logger.WithError(err).Debug("Gemini cache lookup failed, calling API")
	}

	if err := g.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for gemini rate limit: %w", err)
	}

	result, err := g.circuitBreaker.Execute(BreakerGemini, func() (interface{}, error) {
		return g.call(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	text := result.(string)

	if err := g.cache.Set(ctx, cacheKey, text, AIResponseTTL); err != nil {
		g.logger.WithError(err).Debug("Failed to cache Gemini response")
	}
	return text, nil
}

func (g *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading gemini response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	g.logger.WithFields(logrus.Fields{
		"model":   g.model,
		"elapsed": time.Since(started).String(),
	}).Debug("Gemini call complete")
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func promptDigest(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}
