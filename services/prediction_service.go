package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// PredictionInput is one score guess for one match.
type PredictionInput struct {
	MatchID   int  `json:"match_id"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`
	IsJoker   bool `json:"is_joker"`
}

// BatchItemResult reports the outcome of one entry of a bulk upsert.
// Entries are independent: a time-locked match does not abort its
// siblings.
type BatchItemResult struct {
	MatchID    int                `json:"match_id"`
	Prediction *models.Prediction `json:"prediction,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// PredictionService is the only writer of prediction rows. Every write
// runs inside a transaction holding an advisory lock on the
// (user, match, scope) tuple, so concurrent submits serialize and at most
// one row ever exists per tuple; the loser of a race applies its change on
// top of the winner's committed state.
type PredictionService interface {
	UpsertPrediction(ctx context.Context, userID int, leagueID *int, input PredictionInput) (*models.Prediction, error)
	UpsertPredictionBatch(ctx context.Context, userID int, leagueID *int, inputs []PredictionInput) ([]BatchItemResult, error)
	DeletePrediction(ctx context.Context, userID int, leagueID *int, matchID int) error
	ListUserPredictions(ctx context.Context, userID, tournamentID int, leagueID *int) ([]*models.Prediction, error)
}

type predictionService struct {
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	leagueRepo     repositories.LeagueRepository
	phaseService   PhaseService
	now            func() time.Time
}

func NewPredictionService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	leagueRepo repositories.LeagueRepository,
	phaseService PhaseService,
) PredictionService {
	return &predictionService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		leagueRepo:     leagueRepo,
		phaseService:   phaseService,
		now:            time.Now,
	}
}

func predictionLockKey(userID, matchID, scope int) string {
	return fmt.Sprintf("prediction:%d:%d:%d", userID, matchID, scope)
}

func (s *predictionService) loadMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

// checkWritable enforces the deadline (zero grace) and the lock flags.
func (s *predictionService) checkWritable(match *models.Match) error {
	if match.IsManuallyLock {
		return ErrPredictionLocked
	}
	if !s.now().Before(match.KickoffAt) {
		return ErrPredictionLocked
	}
	return nil
}

func (s *predictionService) resolveScope(ctx context.Context, userID int, leagueID *int, tournamentID int) (int, error) {
	if leagueID == nil {
		return models.GlobalScope, nil
	}
	league, err := s.leagueRepo.GetByID(ctx, nil, *leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return 0, ErrLeagueNotFound
		}
		return 0, fmt.Errorf("failed to load league %d: %w", *leagueID, err)
	}
	if league.TournamentID != tournamentID {
		return 0, fmt.Errorf("%w: league %d belongs to another tournament", ErrValidationFailed, *leagueID)
	}
	member, err := s.leagueRepo.IsMember(ctx, nil, *leagueID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to check league membership: %w", err)
	}
	if !member {
		return 0, ErrNotLeagueMember
	}
	return *leagueID, nil
}

func (s *predictionService) UpsertPrediction(ctx context.Context, userID int, leagueID *int, input PredictionInput) (*models.Prediction, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, ErrScoresRequired
	}

	match, err := s.loadMatch(ctx, nil, input.MatchID)
	if err != nil {
		return nil, err
	}
	// Advisory check at the boundary; repeated inside the transaction
	// because the gap between here and commit is exactly the race the
	// coordinator exists to close.
	if err := s.checkWritable(match); err != nil {
		return nil, err
	}

	unlocked, err := s.phaseService.IsPhaseUnlocked(ctx, match.TournamentID, match.Phase)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, ErrPhaseLocked
	}

	scope, err := s.resolveScope(ctx, userID, leagueID, match.TournamentID)
	if err != nil {
		return nil, err
	}

	var stored *models.Prediction
	err = s.txRunner.WithinLockedTx(ctx, predictionLockKey(userID, input.MatchID, scope), func(exec repositories.SQLExecutor) error {
		// Authoritative deadline check, now that concurrent writers for
		// this tuple are serialized behind us.
		current, err := s.loadMatch(ctx, exec, input.MatchID)
		if err != nil {
			return err
		}
		if err := s.checkWritable(current); err != nil {
			return err
		}

		existing, err := s.predictionRepo.GetForUpdate(ctx, exec, userID, input.MatchID, scope)
		switch {
		case err == nil:
			existing.HomeScore = input.HomeScore
			existing.AwayScore = input.AwayScore
			existing.IsJoker = input.IsJoker
			if err := s.predictionRepo.Update(ctx, exec, existing); err != nil {
				return fmt.Errorf("failed to update prediction %d: %w", existing.ID, err)
			}
			stored = existing
			return nil

		case errors.Is(err, repositories.ErrPredictionNotFound):
			p := &models.Prediction{
				UserID:       userID,
				MatchID:      input.MatchID,
				TournamentID: current.TournamentID,
				LeagueScope:  scope,
				HomeScore:    input.HomeScore,
				AwayScore:    input.AwayScore,
				IsJoker:      input.IsJoker,
			}
			if err := s.predictionRepo.Insert(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to insert prediction: %w", err)
			}
			stored = p
			return nil

		default:
			return fmt.Errorf("failed to read prediction for update: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *predictionService) UpsertPredictionBatch(ctx context.Context, userID int, leagueID *int, inputs []PredictionInput) ([]BatchItemResult, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrValidationFailed)
	}

	// Deterministic lock order across the whole batch: any two writers
	// touching overlapping matches acquire locks in the same sequence, so
	// they cannot deadlock each other.
	sorted := make([]PredictionInput, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MatchID < sorted[j].MatchID })

	results := make([]BatchItemResult, 0, len(sorted))
	for _, input := range sorted {
		item := BatchItemResult{MatchID: input.MatchID}
		p, err := s.UpsertPrediction(ctx, userID, leagueID, input)
		if err != nil {
			// Per-item failure policy: record and keep going.
			item.Error = err.Error()
		} else {
			item.Prediction = p
		}
		results = append(results, item)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}

func (s *predictionService) DeletePrediction(ctx context.Context, userID int, leagueID *int, matchID int) error {
	match, err := s.loadMatch(ctx, nil, matchID)
	if err != nil {
		return err
	}
	if err := s.checkWritable(match); err != nil {
		return err
	}
	scope, err := s.resolveScope(ctx, userID, leagueID, match.TournamentID)
	if err != nil {
		return err
	}

	return s.txRunner.WithinLockedTx(ctx, predictionLockKey(userID, matchID, scope), func(exec repositories.SQLExecutor) error {
		current, err := s.loadMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if err := s.checkWritable(current); err != nil {
			return err
		}
		if err := s.predictionRepo.Delete(ctx, exec, userID, matchID, scope); err != nil {
			if errors.Is(err, repositories.ErrPredictionNotFound) {
				return ErrPredictionNotFound
			}
			return fmt.Errorf("failed to delete prediction: %w", err)
		}
		return nil
	})
}

func (s *predictionService) ListUserPredictions(ctx context.Context, userID, tournamentID int, leagueID *int) ([]*models.Prediction, error) {
	scope := models.GlobalScope
	if leagueID != nil {
		scope = *leagueID
	}
	predictions, err := s.predictionRepo.ListByUser(ctx, nil, userID, tournamentID, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return predictions, nil
}
