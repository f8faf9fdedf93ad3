package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pollafutbolera/polla-engine/models"
)

type resultFixture struct {
	svc         ResultService
	matchRepo   *fakeMatchRepo
	predRepo    *fakePredictionRepo
	bracketRepo *fakeBracketRepo
	phaseRepo   *fakePhaseStatusRepo
	broadcaster *recordingBroadcaster
}

// newResultFixture wires the real scoring and phase services over fakes so
// ApplyResult exercises the whole downstream pipeline.
func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()
	f := &resultFixture{
		matchRepo:   newFakeMatchRepo(),
		predRepo:    newFakePredictionRepo(),
		bracketRepo: newFakeBracketRepo(),
		phaseRepo:   newFakePhaseStatusRepo(),
		broadcaster: &recordingBroadcaster{},
	}
	txRunner := newFakeTxRunner()
	tournamentRepo := newFakeTournamentRepo(&models.Tournament{ID: 1, Kind: models.KindGroups, IsActive: true})
	scoring := NewScoringService(
		DefaultScoringConfig(), txRunner, f.matchRepo, f.predRepo, f.bracketRepo,
		newFakeBonusRepo(), newFakeUserRepo(), f.broadcaster, discardLogger(),
	)
	phase := NewPhaseService(txRunner, tournamentRepo, f.matchRepo, f.phaseRepo, f.broadcaster, discardLogger())
	f.svc = NewResultService(f.matchRepo, scoring, phase, f.broadcaster, discardLogger())
	return f
}

func TestApplyResultGradesAndAdvances(t *testing.T) {
	f := newResultFixture(t)
	// A lone quarter-final still awaiting its result.
	match := finishedMatch(1, 1, models.PhaseQuarter)
	match.Status = models.MatchStatusLive
	match.HomeScore, match.AwayScore = nil, nil
	f.matchRepo.matches[1] = match

	p := &models.Prediction{UserID: 7, MatchID: 1, TournamentID: 1, LeagueScope: models.GlobalScope, HomeScore: 2, AwayScore: 0}
	if err := f.predRepo.Insert(context.Background(), nil, p); err != nil {
		t.Fatal(err)
	}

	err := f.svc.ApplyResult(context.Background(), ResultUpdate{
		MatchID:   1,
		Status:    models.MatchStatusFinished,
		HomeScore: intPtr(2),
		AwayScore: intPtr(0),
	})
	if err != nil {
		t.Fatal(err)
	}

	graded, err := f.predRepo.GetForUpdate(context.Background(), nil, 7, 1, models.GlobalScope)
	if err != nil {
		t.Fatal(err)
	}
	if graded.Points == nil || *graded.Points != 6 {
		t.Errorf("points = %v, want exact-score 6 for a quarter-final", graded.Points)
	}

	// The phase had one match; finishing it completes the phase and opens
	// the semis.
	status := f.phaseRepo.get(1, models.PhaseSemi)
	if status == nil || !status.IsUnlocked {
		t.Error("SEMI should be unlocked after the last quarter-final")
	}

	if got := f.broadcaster.eventsOfType(EventMatchFinished); len(got) != 1 {
		t.Errorf("match finished broadcasts = %d, want 1", len(got))
	}
}

func TestApplyResultIdempotentOnRedelivery(t *testing.T) {
	f := newResultFixture(t)
	match := finishedMatch(1, 1, models.PhaseQuarter)
	match.Status = models.MatchStatusLive
	match.HomeScore, match.AwayScore = nil, nil
	f.matchRepo.matches[1] = match
	bracket := &models.Bracket{UserID: 7, TournamentID: 1, LeagueScope: models.GlobalScope, Picks: map[int]int{1: 101}}
	f.bracketRepo.Upsert(context.Background(), nil, bracket)

	update := ResultUpdate{MatchID: 1, Status: models.MatchStatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(0)}
	if err := f.svc.ApplyResult(context.Background(), update); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ApplyResult(context.Background(), update); err != nil {
		t.Fatal(err)
	}

	if bracket.Points != 6 {
		t.Errorf("bracket points = %d after redelivery, want 6", bracket.Points)
	}
}

func TestApplyResultNonFinishedStopsEarly(t *testing.T) {
	f := newResultFixture(t)
	match := finishedMatch(1, 1, models.PhaseGroup)
	match.Status = models.MatchStatusScheduled
	match.HomeScore, match.AwayScore = nil, nil
	f.matchRepo.matches[1] = match

	err := f.svc.ApplyResult(context.Background(), ResultUpdate{MatchID: 1, Status: models.MatchStatusLive})
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := f.matchRepo.GetByID(context.Background(), nil, 1)
	if stored.Status != models.MatchStatusLive {
		t.Errorf("status = %s, want LIVE", stored.Status)
	}
	if got := f.broadcaster.eventsOfType(EventMatchFinished); len(got) != 0 {
		t.Errorf("broadcasts = %d for a non-final update, want 0", len(got))
	}
}

func TestApplyResultValidation(t *testing.T) {
	f := newResultFixture(t)
	f.matchRepo.matches[1] = finishedMatch(1, 1, models.PhaseGroup)

	if err := f.svc.ApplyResult(context.Background(), ResultUpdate{MatchID: 1, Status: "HALFTIME"}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("unknown status err = %v, want ErrValidationFailed", err)
	}
	if err := f.svc.ApplyResult(context.Background(), ResultUpdate{MatchID: 1, Status: models.MatchStatusFinished, HomeScore: intPtr(1)}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("missing score err = %v, want ErrValidationFailed", err)
	}
	if err := f.svc.ApplyResult(context.Background(), ResultUpdate{MatchID: 99, Status: models.MatchStatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(0)}); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("unknown match err = %v, want ErrMatchNotFound", err)
	}
}

func TestApplyResultGroupMatchAnnouncesStandings(t *testing.T) {
	f := newResultFixture(t)
	match := finishedMatch(1, 1, models.PhaseGroup)
	match.Status = models.MatchStatusLive
	match.HomeScore, match.AwayScore = nil, nil
	match.GroupLabel = strPtr("A")
	f.matchRepo.matches[1] = match

	err := f.svc.ApplyResult(context.Background(), ResultUpdate{
		MatchID: 1, Status: models.MatchStatusFinished, HomeScore: intPtr(0), AwayScore: intPtr(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.broadcaster.eventsOfType(EventStandingsUpdated); len(got) != 1 {
		t.Errorf("standings broadcasts = %d, want 1 for a group result", len(got))
	}
}
