package genjson

import (
	"encoding/json"

	"worker/internal/domain"
)

// ForecastContent is the validated model output for a periodic forecast.
type ForecastContent struct {
	Titulo   string `json:"titulo"`
	Resumo   string `json:"resumo"`
	Conteudo string `json:"conteudo"`
}

// DecodeForecast parses and validates raw model output for a forecast.
func DecodeForecast(raw []byte) (*ForecastContent, error) {
	var content ForecastContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, domain.E(domain.KindParse, err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// Validate enforces the forecast schema and the forbidden-term filter on the
// body text.
func (f ForecastContent) Validate() error {
	if err := checkRequired("titulo", f.Titulo); err != nil {
		return err
	}
	if err := checkLength("titulo", f.Titulo, 1, 80); err != nil {
		return err
	}
	if err := checkRequired("resumo", f.Resumo); err != nil {
		return err
	}
	if err := checkLength("resumo", f.Resumo, 1, 200); err != nil {
		return err
	}
	if err := checkLength("conteudo", f.Conteudo, 200, 10000); err != nil {
		return err
	}
	return checkForbiddenTerms("conteudo", f.Conteudo)
}
