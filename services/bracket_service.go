package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// BracketService stores a user's advancing-team picks. Points on the
// bracket are owned by the scoring engine; this service only manages the
// picks themselves.
type BracketService interface {
	GetBracket(ctx context.Context, userID, tournamentID int, leagueID *int) (*models.Bracket, error)
	// SavePicks merges the given picks into the user's bracket. A pick for
	// a match whose kickoff has passed is rejected, as is a pick naming a
	// team not playing in that match (when the slots are resolved).
	SavePicks(ctx context.Context, userID, tournamentID int, leagueID *int, picks map[int]int) (*models.Bracket, error)
}

type bracketService struct {
	txRunner    repositories.TxRunner
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	now         func() time.Time
}

func NewBracketService(txRunner repositories.TxRunner, bracketRepo repositories.BracketRepository, matchRepo repositories.MatchRepository) BracketService {
	return &bracketService{
		txRunner:    txRunner,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		now:         time.Now,
	}
}

func (s *bracketService) GetBracket(ctx context.Context, userID, tournamentID int, leagueID *int) (*models.Bracket, error) {
	scope := models.GlobalScope
	if leagueID != nil {
		scope = *leagueID
	}
	bracket, err := s.bracketRepo.GetByOwner(ctx, nil, userID, tournamentID, scope)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket: %w", err)
	}
	return bracket, nil
}

func (s *bracketService) SavePicks(ctx context.Context, userID, tournamentID int, leagueID *int, picks map[int]int) (*models.Bracket, error) {
	if len(picks) == 0 {
		return nil, fmt.Errorf("%w: no picks given", ErrValidationFailed)
	}
	scope := models.GlobalScope
	if leagueID != nil {
		scope = *leagueID
	}

	for matchID, teamID := range picks {
		match, err := s.matchRepo.GetByID(ctx, nil, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
		}
		if match.TournamentID != tournamentID || !match.IsKnockout() {
			return nil, fmt.Errorf("%w: match %d is not a knockout match of this tournament", ErrValidationFailed, matchID)
		}
		if !s.now().Before(match.KickoffAt) {
			return nil, ErrBracketPhaseStarted
		}
		// Placeholder slots (nil team ids) accept any pick until resolved.
		if match.HomeTeamID != nil && match.AwayTeamID != nil &&
			teamID != *match.HomeTeamID && teamID != *match.AwayTeamID {
			return nil, fmt.Errorf("%w: team %d does not play match %d", ErrValidationFailed, teamID, matchID)
		}
	}

	var stored *models.Bracket
	err := s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		existing, err := s.bracketRepo.GetByOwner(ctx, exec, userID, tournamentID, scope)
		merged := make(map[int]int)
		existingID := 0
		switch {
		case err == nil:
			existingID = existing.ID
			for k, v := range existing.Picks {
				merged[k] = v
			}
		case errors.Is(err, repositories.ErrBracketNotFound):
			// first save
		default:
			return fmt.Errorf("failed to load bracket: %w", err)
		}
		for k, v := range picks {
			merged[k] = v
		}

		bracket := &models.Bracket{
			ID:           existingID,
			UserID:       userID,
			TournamentID: tournamentID,
			LeagueScope:  scope,
			Picks:        merged,
		}
		if err := s.bracketRepo.Upsert(ctx, exec, bracket); err != nil {
			return fmt.Errorf("failed to save bracket picks: %w", err)
		}
		stored = bracket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
