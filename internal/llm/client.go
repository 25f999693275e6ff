package llm

import (
	"context"
	"time"

	"github.com/agenthands/fuxi/internal/logging"
)

// LLMClient is the only capability the pipeline needs from a model: a single
// prompt in, raw text out. Callers parse JSON out of the response themselves.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const defaultMaxTokens = 2048

type loggedClient struct {
	next     LLMClient
	provider string
}

// WithLogging wraps c so every call is logged with its latency.
func WithLogging(c LLMClient, provider string) LLMClient {
	if c == nil {
		return nil
	}
	return &loggedClient{next: c, provider: provider}
}

func (l *loggedClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	ev := logging.FromContext(ctx).Debug()
	if err != nil {
		ev = logging.FromContext(ctx).Warn().Err(err)
	}
	ev.Str("provider", l.provider).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(out)).
		Dur("latency", time.Since(start)).
		Msg("LLM call")
	return out, err
}
