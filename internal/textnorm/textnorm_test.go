package textnorm

import "testing"

func TestFold(t *testing.T) {
	cases := map[string]string{
		"  Parque  La CAROLINA ": "parque la carolina",
		"Ubicación":              "ubicacion",
		"SÃO Paulo":              "sao paulo",
		"":                       "",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("Hotel / Resort / 5* o 4*", "  hotel / resort / 5* O 4*") {
		t.Fatal("expected case-insensitive match")
	}
	if EqualFold("Hotel", "Hotel / Resort / 5* o 4*") {
		t.Fatal("prefix must not match")
	}
}

func TestIsGenericPlace(t *testing.T) {
	generic := []string{
		"parque", "Iglesia", "la iglesia", "downtown", "the park", "Centro Histórico", "playa.",
		"", "la", "el", "barrio", "zona", "calle", "ciudad", "barrios", "zona norte",
		"centro de la ciudad", "city center", "old town", "casco colonial",
	}
	for _, p := range generic {
		if !IsGenericPlace(p) {
			t.Errorf("%q should be generic", p)
		}
	}
	specific := []string{"Parque La Carolina", "Quito", "Iglesia de San Francisco", "Central Park", "Montañita", "Barrio La Floresta", "Tena"}
	for _, p := range specific {
		if IsGenericPlace(p) {
			t.Errorf("%q should not be generic", p)
		}
	}
}

func TestContainsPhrase(t *testing.T) {
	cases := []struct {
		text, phrase string
		want         bool
	}{
		{"Parque La Carolina", "parque la carolina", true},
		{"Cerca del Parque La Carolina, Quito", "La Carolina", true},
		{"Calle Atenas 12", "Tena", false},
		{"Tena, Napo", "tena", true},
		{"Cuenca", "", false},
		{"Barrio La Floresta", "Floresta La", false},
	}
	for _, c := range cases {
		if got := ContainsPhrase(c.text, c.phrase); got != c.want {
			t.Errorf("ContainsPhrase(%q, %q) = %v, want %v", c.text, c.phrase, got, c.want)
		}
	}
}
