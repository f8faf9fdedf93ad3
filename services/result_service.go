package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// ResultUpdate is the shape the external results sync delivers, over AMQP
// or the admin endpoint.
type ResultUpdate struct {
	MatchID   int                `json:"match_id"`
	Status    models.MatchStatus `json:"status"`
	HomeScore *int               `json:"home_score,omitempty"`
	AwayScore *int               `json:"away_score,omitempty"`
}

// ResultService applies externally supplied status/score updates and
// drives the downstream reactions: grading, phase advancement, live
// notifications. ApplyResult is idempotent, so redelivered messages are
// harmless.
type ResultService interface {
	ApplyResult(ctx context.Context, update ResultUpdate) error
}

type resultService struct {
	matchRepo      repositories.MatchRepository
	scoringService ScoringService
	phaseService   PhaseService
	broadcaster    EventBroadcaster
	logger         *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	scoringService ScoringService,
	phaseService PhaseService,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo:      matchRepo,
		scoringService: scoringService,
		phaseService:   phaseService,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

func validStatus(s models.MatchStatus) bool {
	switch s {
	case models.MatchStatusScheduled, models.MatchStatusPending, models.MatchStatusLive, models.MatchStatusFinished:
		return true
	}
	return false
}

func (s *resultService) ApplyResult(ctx context.Context, update ResultUpdate) error {
	if !validStatus(update.Status) {
		return fmt.Errorf("%w: unknown match status %q", ErrValidationFailed, update.Status)
	}
	if update.Status == models.MatchStatusFinished && (update.HomeScore == nil || update.AwayScore == nil) {
		return fmt.Errorf("%w: a finished match needs both scores", ErrValidationFailed)
	}

	match, err := s.matchRepo.GetByID(ctx, nil, update.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", update.MatchID, err)
	}

	if err := s.matchRepo.UpdateResult(ctx, nil, update.MatchID, update.Status, update.HomeScore, update.AwayScore); err != nil {
		return fmt.Errorf("failed to store result for match %d: %w", update.MatchID, err)
	}

	if update.Status != models.MatchStatusFinished {
		return nil
	}

	if err := s.scoringService.ScoreMatch(ctx, update.MatchID); err != nil {
		return fmt.Errorf("failed to score match %d: %w", update.MatchID, err)
	}
	recompute, err := s.phaseService.RecomputePhaseCompletion(ctx, match.TournamentID, match.Phase)
	if err != nil {
		return fmt.Errorf("failed to recompute phase completion: %w", err)
	}

	s.logger.Info("match result applied",
		slog.Int("match_id", update.MatchID),
		slog.Int("tournament_id", match.TournamentID),
		slog.String("phase", string(match.Phase)),
		slog.Bool("phase_completed", recompute.AllCompleted),
	)

	s.broadcaster.BroadcastToTournament(match.TournamentID, EventMatchFinished, map[string]interface{}{
		"match_id":   update.MatchID,
		"home_score": update.HomeScore,
		"away_score": update.AwayScore,
	})
	if match.Phase == models.PhaseGroup && match.GroupLabel != nil {
		s.broadcaster.BroadcastToTournament(match.TournamentID, EventStandingsUpdated, map[string]interface{}{
			"group": *match.GroupLabel,
		})
	}
	return nil
}
