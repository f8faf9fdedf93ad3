package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// ScoringConfig holds the point tables. Bases escalate with phase
// importance; a correct outcome without the exact score earns the base
// divided by OutcomeDivisor (integer division).
type ScoringConfig struct {
	BaseByPhase    map[models.Phase]int
	OutcomeDivisor int
}

// DefaultScoringConfig mirrors the bracket tiers for match-score
// predictions and halves the base for an outcome-only hit.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseByPhase: map[models.Phase]int{
			models.PhaseGroup:       2,
			models.PhasePlayoffLeg1: 2,
			models.PhasePlayoffLeg2: 2,
			models.PhaseRound32:     2,
			models.PhaseRound16:     3,
			models.PhaseQuarter:     6,
			models.PhaseSemi:        10,
			models.PhaseThirdPlace:  15,
			models.PhaseFinal:       20,
		},
		OutcomeDivisor: 2,
	}
}

// Base returns the full point value of an exact-score hit for the phase.
func (c ScoringConfig) Base(phase models.Phase) int {
	return c.BaseByPhase[phase]
}

// UserTotals is the per-user breakdown behind a leaderboard cell.
type UserTotals struct {
	RegularPoints int `json:"regular_points"`
	JokerPoints   int `json:"joker_points"`
	BracketPoints int `json:"bracket_points"`
	BonusPoints   int `json:"bonus_points"`
	Total         int `json:"total"`
}

type LeaderboardEntry struct {
	UserID   int    `json:"user_id"`
	Nickname string `json:"nickname"`
	UserTotals
	Rank int `json:"rank"`
}

// ScoringService grades predictions and bracket picks once results land
// and aggregates user totals.
type ScoringService interface {
	// ScoreMatch grades every ungraded prediction for a finished match and
	// credits bracket picks that named the winner. Idempotent: graded
	// predictions and awarded brackets are skipped on retry.
	ScoreMatch(ctx context.Context, matchID int) error
	// ResetAndReplayBrackets is the corrective recalculation: it zeroes
	// every bracket counter of the tournament and replays all finished
	// knockout matches.
	ResetAndReplayBrackets(ctx context.Context, tournamentID int) error
	GetUserTotals(ctx context.Context, userID, tournamentID int, leagueID *int) (*UserTotals, error)
	Leaderboard(ctx context.Context, tournamentID int, leagueID *int) ([]LeaderboardEntry, error)
}

type scoringService struct {
	cfg            ScoringConfig
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	bracketRepo    repositories.BracketRepository
	bonusRepo      repositories.BonusRepository
	userRepo       repositories.UserRepository
	broadcaster    EventBroadcaster
	logger         *slog.Logger
}

func NewScoringService(
	cfg ScoringConfig,
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	bracketRepo repositories.BracketRepository,
	bonusRepo repositories.BonusRepository,
	userRepo repositories.UserRepository,
	broadcaster EventBroadcaster,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		cfg:            cfg,
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		bracketRepo:    bracketRepo,
		bonusRepo:      bonusRepo,
		userRepo:       userRepo,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// gradePrediction scores one guess against the final result: exact score
// earns the phase base, the right outcome alone earns base/divisor, a
// wrong outcome earns nothing.
func (s *scoringService) gradePrediction(match *models.Match, p *models.Prediction) int {
	base := s.cfg.Base(match.Phase)
	if p.HomeScore == *match.HomeScore && p.AwayScore == *match.AwayScore {
		return base
	}
	if sign(p.HomeScore-p.AwayScore) == sign(*match.HomeScore-*match.AwayScore) {
		return base / s.cfg.OutcomeDivisor
	}
	return 0
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func (s *scoringService) ScoreMatch(ctx context.Context, matchID int) error {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.Status != models.MatchStatusFinished || match.HomeScore == nil || match.AwayScore == nil {
		return fmt.Errorf("%w: match %d has no final result", ErrValidationFailed, matchID)
	}

	return s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		predictions, err := s.predictionRepo.ListUngradedByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("failed to list ungraded predictions for match %d: %w", matchID, err)
		}
		for _, p := range predictions {
			points := s.gradePrediction(match, p)
			if err := s.predictionRepo.SetPoints(ctx, exec, p.ID, points); err != nil {
				return fmt.Errorf("failed to grade prediction %d: %w", p.ID, err)
			}
		}

		if !match.IsKnockout() {
			return nil
		}
		winner := match.WinnerTeamID()
		if winner == nil {
			// Knockout draw after regular time: the pick ledger only pays
			// on a decided winner, so nothing to credit.
			return nil
		}
		return s.creditBrackets(ctx, exec, match, *winner)
	})
}

func (s *scoringService) creditBrackets(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerTeamID int) error {
	brackets, err := s.bracketRepo.ListByTournament(ctx, exec, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to list brackets for tournament %d: %w", match.TournamentID, err)
	}
	tier := s.cfg.Base(match.Phase)
	for _, b := range brackets {
		pick, ok := b.Picks[match.ID]
		if !ok || pick != winnerTeamID {
			continue
		}
		if _, err := s.bracketRepo.AwardForMatch(ctx, exec, b.ID, match.ID, tier); err != nil {
			return fmt.Errorf("failed to award bracket %d for match %d: %w", b.ID, match.ID, err)
		}
	}
	return nil
}

func (s *scoringService) ResetAndReplayBrackets(ctx context.Context, tournamentID int) error {
	err := s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.bracketRepo.ResetPointsByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to reset bracket points for tournament %d: %w", tournamentID, err)
		}
		matches, err := s.matchRepo.ListFinishedKnockout(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list finished knockout matches: %w", err)
		}
		for _, match := range matches {
			winner := match.WinnerTeamID()
			if winner == nil {
				continue
			}
			if err := s.creditBrackets(ctx, exec, match, *winner); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("bracket points replayed", slog.Int("tournament_id", tournamentID))
	s.broadcaster.BroadcastToTournament(tournamentID, EventBracketRecomputed, nil)
	return nil
}

func leagueScope(leagueID *int) int {
	if leagueID == nil {
		return models.GlobalScope
	}
	return *leagueID
}

func (s *scoringService) GetUserTotals(ctx context.Context, userID, tournamentID int, leagueID *int) (*UserTotals, error) {
	scope := leagueScope(leagueID)
	totals := &UserTotals{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		regular, joker, err := s.predictionRepo.SumPointsByUser(gCtx, nil, userID, tournamentID, scope)
		if err != nil {
			return fmt.Errorf("failed to sum prediction points: %w", err)
		}
		totals.RegularPoints, totals.JokerPoints = regular, joker
		return nil
	})
	g.Go(func() error {
		points, err := s.bracketRepo.SumPointsByUser(gCtx, nil, userID, tournamentID, scope)
		if err != nil {
			return fmt.Errorf("failed to sum bracket points: %w", err)
		}
		totals.BracketPoints = points
		return nil
	})
	g.Go(func() error {
		points, err := s.bonusRepo.SumPointsByUser(gCtx, nil, userID, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to sum bonus points: %w", err)
		}
		totals.BonusPoints = points
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals.Total = totals.RegularPoints + totals.JokerPoints + totals.BracketPoints + totals.BonusPoints
	return totals, nil
}

func (s *scoringService) Leaderboard(ctx context.Context, tournamentID int, leagueID *int) ([]LeaderboardEntry, error) {
	scope := leagueScope(leagueID)

	var (
		predTotals    []repositories.PredictionTotals
		bracketTotals map[int]int
		bonusTotals   map[int]int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		predTotals, err = s.predictionRepo.TotalsByTournament(gCtx, nil, tournamentID, scope)
		return err
	})
	g.Go(func() (err error) {
		bracketTotals, err = s.bracketRepo.TotalsByTournament(gCtx, nil, tournamentID, scope)
		return err
	})
	g.Go(func() (err error) {
		bonusTotals, err = s.bonusRepo.TotalsByTournament(gCtx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble leaderboard for tournament %d: %w", tournamentID, err)
	}

	entries := make([]LeaderboardEntry, 0, len(predTotals))
	seen := make(map[int]bool, len(predTotals))
	for _, pt := range predTotals {
		entry := LeaderboardEntry{UserID: pt.UserID, Nickname: pt.Nickname}
		entry.RegularPoints = pt.RegularPoints
		entry.JokerPoints = pt.JokerPoints
		entry.BracketPoints = bracketTotals[pt.UserID]
		entry.BonusPoints = bonusTotals[pt.UserID]
		entry.Total = entry.RegularPoints + entry.JokerPoints + entry.BracketPoints + entry.BonusPoints
		entries = append(entries, entry)
		seen[pt.UserID] = true
	}

	// Users with only bracket or bonus points still belong on the board.
	for userID, points := range bracketTotals {
		if !seen[userID] {
			seen[userID] = true
			entries = append(entries, LeaderboardEntry{
				UserID:     userID,
				UserTotals: UserTotals{BracketPoints: points, BonusPoints: bonusTotals[userID], Total: points + bonusTotals[userID]},
			})
		}
	}
	for userID, points := range bonusTotals {
		if !seen[userID] {
			seen[userID] = true
			entries = append(entries, LeaderboardEntry{
				UserID:     userID,
				UserTotals: UserTotals{BonusPoints: points, Total: points},
			})
		}
	}
	for i := range entries {
		if entries[i].Nickname != "" {
			continue
		}
		if user, err := s.userRepo.GetByID(ctx, nil, entries[i].UserID); err == nil {
			entries[i].Nickname = user.Nickname
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
