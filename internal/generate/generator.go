package generate

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"worker/internal/domain/genjson"
	"worker/internal/infra"
	"worker/internal/providers/llm"
)

const (
	readingSystemPrompt = "Você é Milla, uma mentora espiritual. Responda APENAS em JSON válido."

	readingTemperature  = 0.7
	forecastTemperature = 0.8
	forecastMaxTokens   = 2500

	// readingAttempts bounds the local generate-parse-validate cycle for
	// readings. Forecast generation never retries locally; the job-level
	// retry policy covers it.
	readingAttempts = 2
)

// Completer is the LLM call surface the generator depends on.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Generator fills prompt templates and turns model output into validated
// content records.
type Generator struct {
	llm    Completer
	logger infra.Logger
}

// NewGenerator wires a generator over an LLM completer.
func NewGenerator(completer Completer, logger *infra.Logger) *Generator {
	l := infra.Logger(zerolog.New(io.Discard))
	if logger != nil {
		l = *logger
	}
	return &Generator{llm: completer, logger: l}
}

// Reading generates one reading section, retrying the full
// generate-parse-validate cycle up to two times before surfacing the last
// error.
func (g *Generator) Reading(ctx context.Context, template string, vars map[string]string) (*genjson.ReadingContent, error) {
	prompt := FillTemplate(template, vars)

	var lastErr error
	for attempt := 1; attempt <= readingAttempts; attempt++ {
		raw, err := g.llm.Complete(ctx, llm.CompletionRequest{
			System:      readingSystemPrompt,
			User:        prompt,
			Temperature: readingTemperature,
		})
		if err != nil {
			// Provider failures surface immediately; local retries only
			// cover malformed or invalid output.
			return nil, err
		}
		content, err := genjson.DecodeReading([]byte(raw))
		if err != nil {
			lastErr = err
			g.logger.Warn().Err(err).Int("attempt", attempt).Msg("generate: invalid reading output")
			continue
		}
		g.logger.Info().Str("arcano", content.Arcano).Int("attempt", attempt).Msg("generate: reading ok")
		return content, nil
	}
	return nil, fmt.Errorf("generate: no valid reading after %d attempts: %w", readingAttempts, lastErr)
}

// Forecast generates one forecast in a single attempt.
func (g *Generator) Forecast(ctx context.Context, template string, vars map[string]string) (*genjson.ForecastContent, error) {
	prompt := FillTemplate(template, vars)

	raw, err := g.llm.Complete(ctx, llm.CompletionRequest{
		User:        prompt,
		Temperature: forecastTemperature,
		MaxTokens:   forecastMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	content, err := genjson.DecodeForecast([]byte(raw))
	if err != nil {
		return nil, err
	}
	g.logger.Info().Str("titulo_preview", preview(content.Titulo, 30)).Msg("generate: forecast ok")
	return content, nil
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
