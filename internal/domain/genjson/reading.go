package genjson

import (
	"encoding/json"

	"worker/internal/domain"
)

// ReadingContent is the validated model output for a single reading section.
type ReadingContent struct {
	Arcano        string `json:"arcano"`
	Titulo        string `json:"titulo"`
	Interpretacao string `json:"interpretacao"`
	Sombra        string `json:"sombra"`
	Conselho      string `json:"conselho"`
}

type readingWire struct {
	ReadingContent
	// Carta is a known model alias for arcano; normalized when arcano is
	// absent.
	Carta string `json:"carta"`
}

// DecodeReading parses and validates raw model output. A malformed JSON body
// yields a ParseError; schema and policy violations yield ValidationError and
// ContentPolicyError respectively.
func DecodeReading(raw []byte) (*ReadingContent, error) {
	var wire readingWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.E(domain.KindParse, err)
	}
	content := wire.ReadingContent
	if content.Arcano == "" && wire.Carta != "" {
		content.Arcano = wire.Carta
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

// Validate enforces the reading schema: required fields, length bounds and
// the forbidden-term filter on prose fields.
func (r ReadingContent) Validate() error {
	if err := checkRequired("arcano", r.Arcano); err != nil {
		return err
	}
	if err := checkLength("arcano", r.Arcano, 1, 50); err != nil {
		return err
	}
	if err := checkRequired("titulo", r.Titulo); err != nil {
		return err
	}
	if err := checkLength("titulo", r.Titulo, 1, 100); err != nil {
		return err
	}
	if err := checkLength("interpretacao", r.Interpretacao, 200, 2000); err != nil {
		return err
	}
	if err := checkLength("sombra", r.Sombra, 50, 600); err != nil {
		return err
	}
	if err := checkLength("conselho", r.Conselho, 50, 600); err != nil {
		return err
	}
	for _, field := range []struct{ name, value string }{
		{"interpretacao", r.Interpretacao},
		{"sombra", r.Sombra},
		{"conselho", r.Conselho},
	} {
		if err := checkForbiddenTerms(field.name, field.value); err != nil {
			return err
		}
	}
	return nil
}
