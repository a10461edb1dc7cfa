package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to CollaborationStatus }{
		{CollaborationBrouillon, CollaborationEnCours},
		{CollaborationBrouillon, CollaborationAnnulee},
		{CollaborationEnCours, CollaborationTerminee},
		{CollaborationEnCours, CollaborationAnnulee},
	}
	for _, c := range allowed {
		if !CanTransition(c.from, c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	forbidden := []struct{ from, to CollaborationStatus }{
		{CollaborationBrouillon, CollaborationTerminee},
		{CollaborationEnCours, CollaborationBrouillon},
		{CollaborationTerminee, CollaborationEnCours},
		{CollaborationAnnulee, CollaborationEnCours},
		{CollaborationTerminee, CollaborationTerminee},
	}
	for _, c := range forbidden {
		if CanTransition(c.from, c.to) {
			t.Errorf("%s -> %s should be forbidden", c.from, c.to)
		}
	}
}

func TestFormatFactureNumero(t *testing.T) {
	cases := []struct {
		year int
		seq  int64
		want string
	}{
		{2026, 1, "FAC-2026-0001"},
		{2026, 42, "FAC-2026-0042"},
		{2027, 9999, "FAC-2027-9999"},
		{2027, 10000, "FAC-2027-10000"}, // width grows past four digits
	}
	for _, c := range cases {
		if got := FormatFactureNumero(c.year, c.seq); got != c.want {
			t.Errorf("FormatFactureNumero(%d, %d) = %q, want %q", c.year, c.seq, got, c.want)
		}
	}
}
