package domain

import (
	"encoding/json"
	"time"
)

// ForecastType enumerates the periodic forecast cadences.
type ForecastType string

const (
	ForecastWeekly  ForecastType = "weekly"
	ForecastMonthly ForecastType = "monthly"
	ForecastYearly  ForecastType = "yearly"
)

// ForecastSections maps a forecast type to the prompt section holding its
// active template.
var ForecastSections = map[ForecastType]Section{
	ForecastWeekly:  SectionForecastWeekly,
	ForecastMonthly: SectionForecastMonthly,
	ForecastYearly:  SectionForecastYearly,
}

// MonthNames holds the Portuguese month names substituted into monthly
// forecast templates.
var MonthNames = map[int]string{
	1: "Janeiro", 2: "Fevereiro", 3: "Março", 4: "Abril",
	5: "Maio", 6: "Junho", 7: "Julho", 8: "Agosto",
	9: "Setembro", 10: "Outubro", 11: "Novembro", 12: "Dezembro",
}

// ForecastCalculationBase freezes the numerology inputs used for a forecast
// at generation time. PersonalYear is always set; exactly one of the
// type-specific field groups is populated, matching the forecast type.
type ForecastCalculationBase struct {
	PersonalYear int    `json:"ano_pessoal"`
	WeekNumber   *int   `json:"numero_semana,omitempty"`
	MonthlyCycle *int   `json:"ciclo_mensal,omitempty"`
	MonthName    string `json:"mes_nome,omitempty"`
	RulingArcano string `json:"arcano_regente,omitempty"`
	Year         *int   `json:"ano,omitempty"`
}

// Forecast is a periodic generated content record keyed by
// (user_id, type, period_start). Weekly and monthly forecasts expire 90 days
// after generation; yearly forecasts never expire.
type Forecast struct {
	ID                   string
	UserID               string
	Type                 ForecastType
	PeriodStart          time.Time
	PeriodEnd            time.Time
	Title                string
	Content              string
	Summary              string
	AudioURL             string
	AudioDurationSeconds int
	PromptVersion        string
	ModelUsed            string
	CalculationBase      json.RawMessage
	ExpiresAt            *time.Time
	CreatedAt            time.Time
}

// ExpiredForecast is the projection returned by the expiration sweep.
type ExpiredForecast struct {
	ID       string
	AudioURL string
}
