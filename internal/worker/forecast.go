package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"worker/internal/domain"
	"worker/internal/domain/genjson"
	"worker/internal/numerology"
	"worker/internal/providers/tts"
)

const (
	// forecastTTL is how long weekly and monthly forecasts remain before the
	// expiration sweep removes them. Yearly forecasts never expire.
	forecastTTL = 90 * 24 * time.Hour

	audioKeyPrefix = "forecasts-audio"

	templateDateLayout = "02/01/2006"
	payloadDateLayout  = "2006-01-02"
)

// processForecast runs the forecast orchestration pipeline for one job:
// profile, prompt, calculation base, content, optional audio, persistence.
// Only the audio step is absorbed on failure; everything else propagates to
// the shared retry policy.
func (e *Engine) processForecast(ctx context.Context, job *domain.Job) error {
	start := e.now()

	var payload domain.ForecastJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return domain.Ef(domain.KindValidation, "decode forecast payload: %v", err)
	}
	section, ok := domain.ForecastSections[payload.ForecastType]
	if !ok {
		return domain.Ef(domain.KindValidation, "unknown forecast type %q", payload.ForecastType)
	}
	periodStart, err := time.Parse(payloadDateLayout, payload.PeriodStart)
	if err != nil {
		return domain.Ef(domain.KindValidation, "invalid period_start: %v", err)
	}
	periodEnd, err := time.Parse(payloadDateLayout, payload.PeriodEnd)
	if err != nil {
		return domain.Ef(domain.KindValidation, "invalid period_end: %v", err)
	}

	profile, err := e.loadProfile(ctx, job.UserID)
	if err != nil {
		return err
	}
	prompt, err := e.loadActivePrompt(ctx, section)
	if err != nil {
		return err
	}

	base := calculationBase(profile.Birthdate, payload.ForecastType, periodStart)

	content, err := e.generator.Forecast(ctx, prompt.Template, forecastVars(profile.FullName, base, periodStart, periodEnd))
	if err != nil {
		return err
	}

	forecastID := e.newForecastID()
	audioURL, audioDuration := e.synthesizeForecastAudio(ctx, job.UserID, forecastID, content.Conteudo)

	var expiresAt *time.Time
	if payload.ForecastType != domain.ForecastYearly {
		t := e.now().Add(forecastTTL)
		expiresAt = &t
	}

	if err := e.forecasts.Upsert(ctx, &domain.Forecast{
		ID:                   forecastID,
		UserID:               job.UserID,
		Type:                 payload.ForecastType,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		Title:                content.Titulo,
		Content:              content.Conteudo,
		Summary:              content.Resumo,
		AudioURL:             audioURL,
		AudioDurationSeconds: audioDuration,
		PromptVersion:        prompt.Version,
		ModelUsed:            e.model,
		CalculationBase:      genjson.MustMarshal(base),
		ExpiresAt:            expiresAt,
	}); err != nil {
		return err
	}
	e.logger.Info().
		Str("user_id", maskID(job.UserID)).
		Str("forecast_type", string(payload.ForecastType)).
		Str("period_start", payload.PeriodStart).
		Bool("has_audio", audioURL != "").
		Msg("engine: forecast upserted")

	return e.completeJob(ctx, job, genjson.MustMarshal(forecastResult{
		Success:    true,
		DurationMS: e.now().Sub(start).Milliseconds(),
		HasAudio:   audioURL != "",
	}))
}

// synthesizeForecastAudio is the pipeline's sole soft-failure step: any
// synthesis or upload error is logged and absorbed, leaving the forecast
// text-only. A forecast never retries for audio alone.
func (e *Engine) synthesizeForecastAudio(ctx context.Context, userID, forecastID, text string) (string, int) {
	if e.synthesizer == nil || !e.synthesizer.Configured() {
		e.logger.Debug().Msg("engine: tts not configured, skipping audio")
		return "", 0
	}

	audio, err := e.synthesizer.Synthesize(ctx, text)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", maskID(userID)).Msg("engine: audio synthesis failed, continuing without audio")
		return "", 0
	}

	key := fmt.Sprintf("%s/%s/%s.mp3", audioKeyPrefix, userID, forecastID)
	savedKey, err := e.store.Write(ctx, key, audio)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", maskID(userID)).Msg("engine: audio upload failed, continuing without audio")
		return "", 0
	}
	e.logger.Info().
		Str("user_id", maskID(userID)).
		Int("size_bytes", len(audio)).
		Msg("engine: audio uploaded")
	return e.store.PublicURL(savedKey), tts.EstimateDuration(text)
}

// calculationBase freezes the numerology inputs for a forecast. Exactly one
// type-specific field group is populated.
func calculationBase(birthdate time.Time, ft domain.ForecastType, periodStart time.Time) domain.ForecastCalculationBase {
	year := periodStart.Year()
	personalYear := numerology.PersonalYear(birthdate, year)

	switch ft {
	case domain.ForecastWeekly:
		week := numerology.WeekNumber(birthdate, periodStart)
		return domain.ForecastCalculationBase{
			PersonalYear: personalYear,
			WeekNumber:   &week,
		}
	case domain.ForecastMonthly:
		cycle := numerology.MonthlyCycle(birthdate, int(periodStart.Month()), year)
		return domain.ForecastCalculationBase{
			PersonalYear: personalYear,
			MonthlyCycle: &cycle,
			MonthName:    domain.MonthNames[int(periodStart.Month())],
			Year:         &year,
		}
	default:
		return domain.ForecastCalculationBase{
			PersonalYear: personalYear,
			RulingArcano: numerology.RulingArcano(personalYear),
			Year:         &year,
		}
	}
}

// forecastVars builds the template substitution set from the calculation
// base. Absent variant fields substitute as empty strings.
func forecastVars(name string, base domain.ForecastCalculationBase, periodStart, periodEnd time.Time) map[string]string {
	vars := map[string]string{
		"nome":           name,
		"period_start":   periodStart.Format(templateDateLayout),
		"period_end":     periodEnd.Format(templateDateLayout),
		"ano_pessoal":    strconv.Itoa(base.PersonalYear),
		"numero_semana":  "",
		"ciclo_mensal":   "",
		"mes_nome":       base.MonthName,
		"ano":            strconv.Itoa(periodStart.Year()),
		"arcano_regente": base.RulingArcano,
	}
	if base.WeekNumber != nil {
		vars["numero_semana"] = strconv.Itoa(*base.WeekNumber)
	}
	if base.MonthlyCycle != nil {
		vars["ciclo_mensal"] = strconv.Itoa(*base.MonthlyCycle)
	}
	return vars
}
