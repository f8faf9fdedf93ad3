package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pollafutbolera/polla-engine/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

type BracketRepository interface {
	GetByOwner(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (*models.Bracket, error)
	Upsert(ctx context.Context, exec SQLExecutor, b *models.Bracket) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Bracket, error)
	// AwardForMatch adds delta to the bracket's counter at most once per
	// (bracket, match): the bracket_awards ledger makes result-sync
	// retries safe. Returns false when the match was already awarded.
	AwardForMatch(ctx context.Context, exec SQLExecutor, bracketID, matchID, delta int) (bool, error)
	// ResetPointsByTournament zeroes counters and clears the award ledger
	// ahead of an administrative replay.
	ResetPointsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (int, error)
	// TotalsByTournament returns bracket points per user for leaderboards,
	// skipping demo accounts.
	TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID, leagueScope int) (map[int]int, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Picks live in a jsonb column keyed by match id.
func scanBracket(rowScanner interface{ Scan(...interface{}) error }) (*models.Bracket, error) {
	var b models.Bracket
	var picksRaw []byte
	err := rowScanner.Scan(&b.ID, &b.UserID, &b.TournamentID, &b.LeagueScope, &picksRaw, &b.Points, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	b.Picks = make(map[int]int)
	if len(picksRaw) > 0 {
		if err := json.Unmarshal(picksRaw, &b.Picks); err != nil {
			return nil, fmt.Errorf("failed to decode bracket picks for bracket %d: %w", b.ID, err)
		}
	}
	return &b, nil
}

const bracketColumns = `id, user_id, tournament_id, league_scope, picks, points, updated_at`

func (r *postgresBracketRepository) GetByOwner(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (*models.Bracket, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		`SELECT `+bracketColumns+` FROM brackets WHERE user_id = $1 AND tournament_id = $2 AND league_scope = $3`,
		userID, tournamentID, leagueScope)
	return scanBracket(row)
}

func (r *postgresBracketRepository) Upsert(ctx context.Context, exec SQLExecutor, b *models.Bracket) error {
	executor := r.getExecutor(exec)
	picksRaw, err := json.Marshal(b.Picks)
	if err != nil {
		return fmt.Errorf("failed to encode bracket picks: %w", err)
	}
	query := `
		INSERT INTO brackets (user_id, tournament_id, league_scope, picks)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, tournament_id, league_scope) DO UPDATE
			SET picks = EXCLUDED.picks, updated_at = NOW()
		RETURNING id, points, updated_at`
	return executor.QueryRowContext(ctx, query, b.UserID, b.TournamentID, b.LeagueScope, picksRaw).
		Scan(&b.ID, &b.Points, &b.UpdatedAt)
}

func (r *postgresBracketRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Bracket, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT `+bracketColumns+` FROM brackets WHERE tournament_id = $1 ORDER BY id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		b, errScan := scanBracket(rows)
		if errScan != nil {
			return nil, errScan
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

func (r *postgresBracketRepository) AwardForMatch(ctx context.Context, exec SQLExecutor, bracketID, matchID, delta int) (bool, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`INSERT INTO bracket_awards (bracket_id, match_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		bracketID, matchID)
	if err != nil {
		return false, err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		return false, nil
	}
	res, err := executor.ExecContext(ctx,
		`UPDATE brackets SET points = points + $1, updated_at = NOW() WHERE id = $2`, delta, bracketID)
	if err != nil {
		return false, err
	}
	return true, checkAffectedRows(res, ErrBracketNotFound)
}

func (r *postgresBracketRepository) ResetPointsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM bracket_awards
		 WHERE bracket_id IN (SELECT id FROM brackets WHERE tournament_id = $1)`, tournamentID)
	if err != nil {
		return err
	}
	_, err = executor.ExecContext(ctx,
		`UPDATE brackets SET points = 0, updated_at = NOW() WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresBracketRepository) SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (int, error) {
	executor := r.getExecutor(exec)
	var points int
	err := executor.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM brackets WHERE user_id = $1 AND tournament_id = $2 AND league_scope = $3`,
		userID, tournamentID, leagueScope).Scan(&points)
	return points, err
}

func (r *postgresBracketRepository) TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID, leagueScope int) (map[int]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT b.user_id, COALESCE(SUM(b.points), 0)
		 FROM brackets b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.tournament_id = $1 AND b.league_scope = $2 AND u.is_demo = FALSE
		 GROUP BY b.user_id`,
		tournamentID, leagueScope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]int)
	for rows.Next() {
		var userID, points int
		if err := rows.Scan(&userID, &points); err != nil {
			return nil, err
		}
		totals[userID] = points
	}
	return totals, rows.Err()
}
