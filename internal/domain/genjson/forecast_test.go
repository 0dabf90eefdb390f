package genjson

import (
	"encoding/json"
	"strings"
	"testing"

	"worker/internal/domain"
)

func validForecast() ForecastContent {
	return ForecastContent{
		Titulo:   "Semana de renovação",
		Resumo:   "Um período de ajustes e novas direções.",
		Conteudo: strings.Repeat("Esta semana convida a revisar prioridades com calma e clareza. ", 5),
	}
}

func TestDecodeForecastValid(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(validForecast())
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	content, err := DecodeForecast(raw)
	if err != nil {
		t.Fatalf("DecodeForecast returned error: %v", err)
	}
	if content.Titulo != "Semana de renovação" {
		t.Fatalf("titulo = %q", content.Titulo)
	}
}

func TestDecodeForecastMalformedJSONIsParseError(t *testing.T) {
	t.Parallel()
	_, err := DecodeForecast([]byte("not json"))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if kind := domain.KindOf(err); kind != domain.KindParse {
		t.Fatalf("kind = %q, want %q", kind, domain.KindParse)
	}
}

func TestForecastValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*ForecastContent)
		kind   domain.ErrorKind
	}{
		{name: "missing_titulo", mutate: func(f *ForecastContent) { f.Titulo = " " }, kind: domain.KindValidation},
		{name: "titulo_too_long", mutate: func(f *ForecastContent) { f.Titulo = strings.Repeat("a", 81) }, kind: domain.KindValidation},
		{name: "resumo_too_long", mutate: func(f *ForecastContent) { f.Resumo = strings.Repeat("a", 201) }, kind: domain.KindValidation},
		{name: "conteudo_too_short", mutate: func(f *ForecastContent) { f.Conteudo = "muito curto" }, kind: domain.KindValidation},
		{
			name:   "deterministic_language",
			mutate: func(f *ForecastContent) { f.Conteudo += " Você vai receber uma proposta." },
			kind:   domain.KindContentPolicy,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fixture := validForecast()
			tc.mutate(&fixture)
			err := fixture.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := domain.KindOf(err); kind != tc.kind {
				t.Fatalf("kind = %q, want %q", kind, tc.kind)
			}
		})
	}
}
