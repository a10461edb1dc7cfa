package validation

import "testing"

func TestValidators(t *testing.T) {
	v := Violations{}

	Required("titre", "  ", v)
	if v["titre"] != "required" {
		t.Errorf("blank titre: got %q", v["titre"])
	}

	neg := int64(-5)
	PositiveCents("montant", &neg, v)
	if v["montant"] != "must_be_positive" {
		t.Errorf("negative montant: got %q", v["montant"])
	}

	OneOf("role", "superuser", []string{"ecole", "intervenant"}, v)
	if v["role"] != "invalid_value" {
		t.Errorf("bad role: got %q", v["role"])
	}

	MaxLen("nom", "abcdef", 3, v)
	if v["nom"] != "too_long" {
		t.Errorf("long nom: got %q", v["nom"])
	}
}

func TestValidatorsPass(t *testing.T) {
	v := Violations{}

	Required("titre", "Cours", v)
	pos := int64(100)
	PositiveCents("montant", &pos, v)
	PositiveCents("absent", nil, v) // nil means "not provided", never a violation
	OneOf("role", "ecole", []string{"ecole", "intervenant"}, v)
	MaxLen("nom", "abc", 3, v)

	if !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}
