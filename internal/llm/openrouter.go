package llm

import (
	"errors"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible API. Model ids
// are passed through untouched ("anthropic/claude-3-5-haiku").
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	var hc *http.Client
	if cfg.Referer != "" || cfg.Title != "" {
		hc = &http.Client{Transport: &attribution{
			next:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		}}
	}

	inner := newOpenAIProviderRaw(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: baseURL}, hc)
	inner.model = cfg.Model
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attribution adds OpenRouter's optional app headers.
type attribution struct {
	next    http.RoundTripper
	referer string
	title   string
}

func (a *attribution) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if a.referer != "" {
		req.Header.Set("HTTP-Referer", a.referer)
	}
	if a.title != "" {
		req.Header.Set("X-Title", a.title)
	}
	return a.next.RoundTrip(req)
}
