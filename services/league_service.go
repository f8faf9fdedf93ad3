package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// LeagueService manages private pools. A league gives the league_scope
// column meaning: members keep per-league prediction copies and the
// leaderboard can be filtered to the league.
type LeagueService interface {
	CreateLeague(ctx context.Context, ownerID, tournamentID int, name string) (*models.League, error)
	JoinByInviteCode(ctx context.Context, userID int, code string) (*models.League, error)
	ListMembers(ctx context.Context, leagueID int) ([]*models.User, error)
}

type leagueService struct {
	txRunner       repositories.TxRunner
	leagueRepo     repositories.LeagueRepository
	tournamentRepo repositories.TournamentRepository
}

func NewLeagueService(txRunner repositories.TxRunner, leagueRepo repositories.LeagueRepository, tournamentRepo repositories.TournamentRepository) LeagueService {
	return &leagueService{txRunner: txRunner, leagueRepo: leagueRepo, tournamentRepo: tournamentRepo}
}

func (s *leagueService) CreateLeague(ctx context.Context, ownerID, tournamentID int, name string) (*models.League, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: league name is required", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	league := &models.League{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(name),
		OwnerID:      ownerID,
		InviteCode:   uuid.NewString(),
	}
	err := s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.leagueRepo.Create(ctx, exec, league); err != nil {
			return fmt.Errorf("failed to create league: %w", err)
		}
		return s.leagueRepo.AddMember(ctx, exec, league.ID, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return league, nil
}

func (s *leagueService) JoinByInviteCode(ctx context.Context, userID int, code string) (*models.League, error) {
	league, err := s.leagueRepo.GetByInviteCode(ctx, nil, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if err := s.leagueRepo.AddMember(ctx, nil, league.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to join league %d: %w", league.ID, err)
	}
	return league, nil
}

func (s *leagueService) ListMembers(ctx context.Context, leagueID int) ([]*models.User, error) {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}
	members, err := s.leagueRepo.ListMembers(ctx, nil, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league members: %w", err)
	}
	return members, nil
}
