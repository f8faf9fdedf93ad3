package phases

import (
	"testing"

	"github.com/pollafutbolera/polla-engine/models"
)

func TestForKindUnknown(t *testing.T) {
	if _, err := ForKind(models.TournamentKind("swiss")); err == nil {
		t.Fatal("expected an error for an unknown tournament kind")
	}
}

func TestFirstPhasePerKind(t *testing.T) {
	groups, err := ForKind(models.KindGroups)
	if err != nil {
		t.Fatal(err)
	}
	if got := groups.First(); got != models.PhaseGroup {
		t.Errorf("groups first phase = %s, want %s", got, models.PhaseGroup)
	}

	playoff, err := ForKind(models.KindPlayoff)
	if err != nil {
		t.Fatal(err)
	}
	if got := playoff.First(); got != models.PhasePlayoffLeg1 {
		t.Errorf("playoff first phase = %s, want %s", got, models.PhasePlayoffLeg1)
	}
}

func TestContains(t *testing.T) {
	groups, _ := ForKind(models.KindGroups)
	if !groups.Contains(models.PhaseQuarter) {
		t.Error("groups sequence should contain QUARTER")
	}
	// Playoff legs are variant-only stages for a groups tournament.
	if groups.Contains(models.PhasePlayoffLeg1) {
		t.Error("groups sequence should not contain PLAYOFF_LEG_1")
	}

	playoff, _ := ForKind(models.KindPlayoff)
	if playoff.Contains(models.PhaseGroup) {
		t.Error("playoff sequence should not contain GROUP")
	}
	if !playoff.Contains(models.PhasePlayoffLeg2) {
		t.Error("playoff sequence should contain PLAYOFF_LEG_2")
	}
}

func TestSemiUnlocksThirdPlaceAndFinalTogether(t *testing.T) {
	for _, kind := range []models.TournamentKind{models.KindGroups, models.KindPlayoff} {
		graph, err := ForKind(kind)
		if err != nil {
			t.Fatal(err)
		}
		next := graph.Successors(models.PhaseSemi)
		if len(next) != 2 {
			t.Fatalf("kind %s: SEMI successors = %v, want two phases", kind, next)
		}
		if next[0] != models.PhaseThirdPlace || next[1] != models.PhaseFinal {
			t.Errorf("kind %s: SEMI successors = %v, want [THIRD_PLACE FINAL]", kind, next)
		}
	}
}

func TestTerminalPhasesHaveNoSuccessors(t *testing.T) {
	groups, _ := ForKind(models.KindGroups)
	if got := groups.Successors(models.PhaseFinal); got != nil {
		t.Errorf("FINAL successors = %v, want nil", got)
	}
	if got := groups.Successors(models.PhaseThirdPlace); got != nil {
		t.Errorf("THIRD_PLACE successors = %v, want nil", got)
	}
}

func TestSequenceReturnsACopy(t *testing.T) {
	groups, _ := ForKind(models.KindGroups)
	seq := groups.Sequence()
	seq[0] = models.PhaseFinal
	if groups.First() != models.PhaseGroup {
		t.Error("mutating the returned sequence must not change the graph")
	}
}
