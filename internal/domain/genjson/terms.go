package genjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"worker/internal/domain"
)

// forbiddenTerms lists deterministic-certainty phrases the generated prose
// must never contain. Matching is case-insensitive anywhere in the field.
var forbiddenTerms = []string{
	"você vai",
	"vai acontecer",
	"certamente",
	"com certeza",
	"sempre",
	"nunca",
	"definitivamente",
	"garanto",
	"sem dúvida",
}

func checkForbiddenTerms(field, value string) error {
	lower := strings.ToLower(value)
	for _, term := range forbiddenTerms {
		if strings.Contains(lower, term) {
			return domain.Ef(domain.KindContentPolicy, "%s contains deterministic language %q", field, term)
		}
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := len([]rune(value))
	if n < min {
		return domain.Ef(domain.KindValidation, "%s too short: %d chars, minimum %d", field, n, min)
	}
	if max > 0 && n > max {
		return domain.Ef(domain.KindValidation, "%s too long: %d chars, maximum %d", field, n, max)
	}
	return nil
}

func checkRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Ef(domain.KindValidation, "%s is required", field)
	}
	return nil
}

// MustMarshal is a panic-on-error marshal for payloads built from validated
// internal state.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
