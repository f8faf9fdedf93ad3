package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/phases"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// PhaseRecomputeResult reports what a completion pass changed.
type PhaseRecomputeResult struct {
	AllCompleted   bool           `json:"all_completed"`
	UnlockedPhases []models.Phase `json:"unlocked_phases"`
}

// PhaseService is the gate deciding whether a tournament phase is open for
// prediction-taking, and the machinery that advances the bracket as
// results land.
type PhaseService interface {
	IsPhaseUnlocked(ctx context.Context, tournamentID int, phase models.Phase) (bool, error)
	RecomputePhaseCompletion(ctx context.Context, tournamentID int, phase models.Phase) (*PhaseRecomputeResult, error)
	SetManualLock(ctx context.Context, tournamentID int, phase models.Phase, locked bool) error
	// SweepActiveTournaments re-runs the completion pass over every phase
	// of every active tournament. Safe to run on a timer: recomputation is
	// idempotent.
	SweepActiveTournaments(ctx context.Context) error
}

type phaseService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	phaseRepo      repositories.PhaseStatusRepository
	broadcaster    EventBroadcaster
	logger         *slog.Logger
}

func NewPhaseService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	phaseRepo repositories.PhaseStatusRepository,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) PhaseService {
	return &phaseService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		phaseRepo:      phaseRepo,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

func (s *phaseService) graphFor(ctx context.Context, tournamentID int) (*phases.Graph, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return phases.ForKind(tournament.Kind)
}

func (s *phaseService) IsPhaseUnlocked(ctx context.Context, tournamentID int, phase models.Phase) (bool, error) {
	graph, err := s.graphFor(ctx, tournamentID)
	if err != nil {
		return false, err
	}

	status, err := s.phaseRepo.GetByTournamentAndPhase(ctx, nil, tournamentID, phase)
	switch {
	case err == nil:
		// Manual override wins unconditionally, completion state included.
		if status.IsManuallyLocked {
			return false, nil
		}
		if phase == graph.First() {
			return true, nil
		}
		return status.IsUnlocked, nil

	case errors.Is(err, repositories.ErrPhaseStatusNotFound):
		if phase == graph.First() {
			// The entry phase has no predecessor to wait on.
			return true, nil
		}
		// No row yet. Canonical phases fail closed so a future stage never
		// leaks early; variant-only stages (e.g. playoff legs on a groups
		// tournament) fail open so unseeded content does not vanish.
		return !graph.Contains(phase), nil

	default:
		return false, fmt.Errorf("failed to load phase status (%d, %s): %w", tournamentID, phase, err)
	}
}

func (s *phaseService) RecomputePhaseCompletion(ctx context.Context, tournamentID int, phase models.Phase) (*PhaseRecomputeResult, error) {
	graph, err := s.graphFor(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	result := &PhaseRecomputeResult{UnlockedPhases: []models.Phase{}}
	err = s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		matches, err := s.matchRepo.ListByPhase(ctx, exec, tournamentID, phase)
		if err != nil {
			return fmt.Errorf("failed to list matches for (%d, %s): %w", tournamentID, phase, err)
		}

		allCompleted := len(matches) > 0
		for _, m := range matches {
			if m.Status != models.MatchStatusFinished {
				allCompleted = false
				break
			}
		}

		status, err := s.phaseRepo.GetOrCreate(ctx, exec, tournamentID, phase)
		if err != nil {
			return fmt.Errorf("failed to provision phase status (%d, %s): %w", tournamentID, phase, err)
		}

		if status.AllMatchesCompleted && !allCompleted {
			// A result reopened a phase already marked complete. Keep the
			// stored state: the manual lock is the operator's recovery
			// lever, not an automatic rollback here.
			s.logger.Warn("phase completion inconsistency detected",
				slog.Int("tournament_id", tournamentID),
				slog.String("phase", string(phase)),
			)
			result.AllCompleted = true
			return nil
		}

		if allCompleted != status.AllMatchesCompleted {
			if err := s.phaseRepo.SetCompletion(ctx, exec, status.ID, allCompleted); err != nil {
				return fmt.Errorf("failed to mark phase completion: %w", err)
			}
		}
		result.AllCompleted = allCompleted

		if !allCompleted || status.IsManuallyLocked {
			return nil
		}

		for _, next := range graph.Successors(phase) {
			nextStatus, err := s.phaseRepo.GetOrCreate(ctx, exec, tournamentID, next)
			if err != nil {
				return fmt.Errorf("failed to provision next phase status (%d, %s): %w", tournamentID, next, err)
			}
			if nextStatus.IsUnlocked {
				continue // already open, keep the pass idempotent
			}
			if err := s.phaseRepo.Unlock(ctx, exec, nextStatus.ID, time.Now()); err != nil {
				return fmt.Errorf("failed to unlock phase (%d, %s): %w", tournamentID, next, err)
			}
			result.UnlockedPhases = append(result.UnlockedPhases, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, unlocked := range result.UnlockedPhases {
		s.broadcaster.BroadcastToTournament(tournamentID, EventPhaseUnlocked, map[string]interface{}{
			"phase": unlocked,
		})
	}
	return result, nil
}

func (s *phaseService) SetManualLock(ctx context.Context, tournamentID int, phase models.Phase, locked bool) error {
	if _, err := s.graphFor(ctx, tournamentID); err != nil {
		return err
	}
	return s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		status, err := s.phaseRepo.GetOrCreate(ctx, exec, tournamentID, phase)
		if err != nil {
			return fmt.Errorf("failed to provision phase status (%d, %s): %w", tournamentID, phase, err)
		}
		if status.IsManuallyLocked == locked {
			return nil
		}
		return s.phaseRepo.SetManualLock(ctx, exec, status.ID, locked)
	})
}

func (s *phaseService) SweepActiveTournaments(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.ListActive(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}
	for _, t := range tournaments {
		graph, err := phases.ForKind(t.Kind)
		if err != nil {
			s.logger.Error("skipping tournament with unknown kind",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		for _, phase := range graph.Sequence() {
			if _, err := s.RecomputePhaseCompletion(ctx, t.ID, phase); err != nil {
				s.logger.Error("phase sweep failed",
					slog.Int("tournament_id", t.ID),
					slog.String("phase", string(phase)),
					slog.Any("error", err))
			}
		}
	}
	return nil
}
