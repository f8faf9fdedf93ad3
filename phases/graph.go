// Package phases defines the phase-ordering graph per tournament kind.
// The phase gate walks this graph instead of branching on tournament
// identifiers, so adding a bracket shape means adding a graph here.
package phases

import (
	"fmt"

	"github.com/pollafutbolera/polla-engine/models"
)

// Graph is the canonical phase sequence for one tournament kind.
// Successors lists the phase(s) unlocked when a phase completes; a phase
// absent from the sequence is an optional variant stage for this kind.
type Graph struct {
	kind       models.TournamentKind
	sequence   []models.Phase
	successors map[models.Phase][]models.Phase
}

var groupsGraph = &Graph{
	kind: models.KindGroups,
	sequence: []models.Phase{
		models.PhaseGroup,
		models.PhaseRound32,
		models.PhaseRound16,
		models.PhaseQuarter,
		models.PhaseSemi,
		models.PhaseThirdPlace,
		models.PhaseFinal,
	},
	successors: map[models.Phase][]models.Phase{
		models.PhaseGroup:   {models.PhaseRound32},
		models.PhaseRound32: {models.PhaseRound16},
		models.PhaseRound16: {models.PhaseQuarter},
		models.PhaseQuarter: {models.PhaseSemi},
		// Third-place playoff and final open together once the semis end.
		models.PhaseSemi: {models.PhaseThirdPlace, models.PhaseFinal},
	},
}

var playoffGraph = &Graph{
	kind: models.KindPlayoff,
	sequence: []models.Phase{
		models.PhasePlayoffLeg1,
		models.PhasePlayoffLeg2,
		models.PhaseRound16,
		models.PhaseQuarter,
		models.PhaseSemi,
		models.PhaseThirdPlace,
		models.PhaseFinal,
	},
	successors: map[models.Phase][]models.Phase{
		models.PhasePlayoffLeg1: {models.PhasePlayoffLeg2},
		models.PhasePlayoffLeg2: {models.PhaseRound16},
		models.PhaseRound16:     {models.PhaseQuarter},
		models.PhaseQuarter:     {models.PhaseSemi},
		models.PhaseSemi:        {models.PhaseThirdPlace, models.PhaseFinal},
	},
}

// ForKind returns the graph for a tournament kind.
func ForKind(kind models.TournamentKind) (*Graph, error) {
	switch kind {
	case models.KindGroups:
		return groupsGraph, nil
	case models.KindPlayoff:
		return playoffGraph, nil
	default:
		return nil, fmt.Errorf("unknown tournament kind %q", kind)
	}
}

// First returns the entry phase of the graph. It is unlocked by
// definition: there is no earlier phase to wait on.
func (g *Graph) First() models.Phase {
	return g.sequence[0]
}

// Contains reports whether the phase belongs to this kind's canonical
// sequence. Phases outside the sequence are variant-only stages and the
// gate treats a missing status row for them as fail-open.
func (g *Graph) Contains(phase models.Phase) bool {
	for _, p := range g.sequence {
		if p == phase {
			return true
		}
	}
	return false
}

// Successors returns the phase(s) unlocked when the given phase
// completes. Terminal phases return nil.
func (g *Graph) Successors(phase models.Phase) []models.Phase {
	return g.successors[phase]
}

// Sequence returns the canonical phase order, earliest first.
func (g *Graph) Sequence() []models.Phase {
	out := make([]models.Phase, len(g.sequence))
	copy(out, g.sequence)
	return out
}
