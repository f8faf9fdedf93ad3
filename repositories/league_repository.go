package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pollafutbolera/polla-engine/models"
)

var ErrLeagueNotFound = errors.New("league not found")

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	GetByInviteCode(ctx context.Context, exec SQLExecutor, code string) (*models.League, error)
	AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	IsMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) (bool, error)
	ListMembers(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.User, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const leagueColumns = `id, tournament_id, name, owner_id, invite_code, created_at`

func scanLeague(rowScanner interface{ Scan(...interface{}) error }) (*models.League, error) {
	var l models.League
	err := rowScanner.Scan(&l.ID, &l.TournamentID, &l.Name, &l.OwnerID, &l.InviteCode, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO leagues (tournament_id, name, owner_id, invite_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query,
		league.TournamentID, league.Name, league.OwnerID, league.InviteCode,
	).Scan(&league.ID, &league.CreatedAt)
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = $1`, id)
	return scanLeague(row)
}

func (r *postgresLeagueRepository) GetByInviteCode(ctx context.Context, exec SQLExecutor, code string) (*models.League, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE invite_code = $1`, code)
	return scanLeague(row)
}

func (r *postgresLeagueRepository) AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`INSERT INTO league_members (league_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		leagueID, userID)
	return err
}

func (r *postgresLeagueRepository) IsMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) (bool, error) {
	executor := r.getExecutor(exec)
	var exists bool
	err := executor.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`,
		leagueID, userID).Scan(&exists)
	return exists, err
}

func (r *postgresLeagueRepository) ListMembers(ctx context.Context, exec SQLExecutor, leagueID int) ([]*models.User, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT u.id, u.email, u.nickname, u.password_hash, u.role, u.is_demo, u.created_at
		 FROM users u
		 JOIN league_members lm ON lm.user_id = u.id
		 WHERE lm.league_id = $1
		 ORDER BY lm.joined_at`,
		leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
