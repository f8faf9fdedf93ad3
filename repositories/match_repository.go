package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pollafutbolera/polla-engine/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) ([]*models.Match, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]*models.Match, error)
	ListFinishedKnockout(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, homeScore, awayScore *int) error
	ResolveTeams(ctx context.Context, exec SQLExecutor, id int, homeTeamID, awayTeamID *int) error
	SetManualLock(ctx context.Context, exec SQLExecutor, id int, locked bool) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, phase, group_label, home_team_id, away_team_id,
	home_placeholder, away_placeholder, kickoff_at, status, home_score, away_score,
	is_manually_locked`

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Phase, &m.GroupLabel, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomePlaceholder, &m.AwayPlaceholder, &m.KickoffAt, &m.Status, &m.HomeScore, &m.AwayScore,
		&m.IsManuallyLock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, phase, group_label, home_team_id, away_team_id,
			 home_placeholder, away_placeholder, kickoff_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	return executor.QueryRowContext(ctx, query,
		match.TournamentID, match.Phase, match.GroupLabel, match.HomeTeamID, match.AwayTeamID,
		match.HomePlaceholder, match.AwayPlaceholder, match.KickoffAt, match.Status,
	).Scan(&match.ID)
}

func (r *postgresMatchRepository) listMatches(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND phase = $2 ORDER BY kickoff_at, id`
	return r.listMatches(ctx, r.getExecutor(exec), query, tournamentID, phase)
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND group_label = $2 ORDER BY kickoff_at, id`
	return r.listMatches(ctx, r.getExecutor(exec), query, tournamentID, groupLabel)
}

func (r *postgresMatchRepository) ListFinishedKnockout(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1 AND phase <> $2 AND status = $3
		ORDER BY kickoff_at, id`
	return r.listMatches(ctx, r.getExecutor(exec), query, tournamentID, models.PhaseGroup, models.MatchStatusFinished)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, homeScore, awayScore *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET status = $1, home_score = $2, away_score = $3 WHERE id = $4`,
		status, homeScore, awayScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ResolveTeams(ctx context.Context, exec SQLExecutor, id int, homeTeamID, awayTeamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET home_team_id = COALESCE($1, home_team_id), away_team_id = COALESCE($2, away_team_id) WHERE id = $3`,
		homeTeamID, awayTeamID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetManualLock(ctx context.Context, exec SQLExecutor, id int, locked bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET is_manually_locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
