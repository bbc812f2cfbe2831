package achievements

import (
	"errors"
	"testing"

	"habitxp/models"
)

func TestParseRequirement(t *testing.T) {
	cases := []struct {
		text string
		want Requirement
	}{
		{"Concluir 10 desafios total", TotalCompletions(10)},
		{"Complete 1 desafios total!", TotalCompletions(1)},
		{"Completar 7 dias seguidos", ConsecutiveDays(7)},
		{"Acumular 500 XP", XPThreshold(500)},
		{"Concluir 5 desafios tipo LEITURA", CompletionsOfType(5, "LEITURA")},
		{"Concluir 3 desafios tipo ATIVIDADE  FISICA", CompletionsOfType(3, "ATIVIDADE FISICA")},
		{"Concluir 0 desafios total", TotalCompletions(0)},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseRequirement(tc.text)
			if err != nil {
				t.Fatalf("ParseRequirement: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseRequirementRejects(t *testing.T) {
	for _, text := range []string{
		"",
		"Seja incrível",
		"Concluir desafios total",
		"Acumular muito XP",
		"Concluir 4 desafios tipo",
		"Ganhar 100 XP",
	} {
		if _, err := ParseRequirement(text); !errors.Is(err, ErrUnknownRequirement) {
			t.Fatalf("%q: expected ErrUnknownRequirement, got %v", text, err)
		}
	}
}

func TestBuildCatalogKeepsOrderAndSplitsInvalid(t *testing.T) {
	rows := []models.Achievement{
		{ID: 1, Name: "a", Requirement: "Concluir 1 desafios total"},
		{ID: 2, Name: "b", Requirement: "texto livre"},
		{ID: 3, Name: "c", Requirement: "Acumular 10 XP"},
	}
	defs, invalid := BuildCatalog(rows)
	if len(defs) != 2 || defs[0].ID != 1 || defs[1].ID != 3 {
		t.Fatalf("unexpected definitions: %+v", defs)
	}
	if len(invalid) != 1 || invalid[0].ID != 2 {
		t.Fatalf("unexpected invalid entries: %+v", invalid)
	}
}
