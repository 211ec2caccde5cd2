package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/learnhub/internal/logger"
)

// UsageRecord is one model call as seen by the logging decorator.
type UsageRecord struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// UsageRecorder persists usage records. The store package implements it.
type UsageRecorder interface {
	AppendLLMRequest(ctx context.Context, rec UsageRecord) error
}

// LoggingProvider is a decorator that records every model call.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder UsageRecorder
	log      *logger.Logger
}

// WithLogging wraps a Provider with usage logging. recorder may be nil.
func WithLogging(p Provider, providerName string, recorder UsageRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	rec := UsageRecord{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			rec.Model = resp.Model
		}
		rec.ResponseBody = resp.Content
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
		l.log.Warn("model call failed", "request_id", RequestIDFrom(ctx), "provider", l.provider, "model", rec.Model, "purpose", purpose, "latency_ms", rec.LatencyMs, "error", err)
	} else {
		l.log.Debug("model call", "request_id", RequestIDFrom(ctx), "provider", l.provider, "model", rec.Model, "purpose", purpose,
			"latency_ms", rec.LatencyMs, "input_tokens", rec.InputTokens, "output_tokens", rec.OutputTokens)
	}

	// A failed write never fails the request.
	if l.recorder != nil {
		if logErr := l.recorder.AppendLLMRequest(ctx, rec); logErr != nil {
			l.log.Warn("record model usage", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request. Image
// payloads are replaced by a marker.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		if m.Image != "" {
			mediaType, _, _ := splitDataURL(m.Image)
			fmt.Fprintf(&b, "\n<image %s>", mediaType)
		}
		b.WriteString("\n\n")
	}

	return b.String()
}
