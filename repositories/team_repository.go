package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/pollafutbolera/polla-engine/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Team, error)
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	UpdateFlagKey(ctx context.Context, exec SQLExecutor, id int, flagKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := rowScanner.Scan(&t.ID, &t.Name, &t.Code, &t.FlagKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `SELECT id, name, code, flag_key FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Team, error) {
	executor := r.getExecutor(exec)
	teams := make(map[int]*models.Team, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}
	rows, err := executor.QueryContext(ctx,
		`SELECT id, name, code, flag_key FROM teams WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t, errScan := scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams[t.ID] = t
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	return executor.QueryRowContext(ctx,
		`INSERT INTO teams (name, code) VALUES ($1, $2) RETURNING id`,
		team.Name, team.Code).Scan(&team.ID)
}

func (r *postgresTeamRepository) UpdateFlagKey(ctx context.Context, exec SQLExecutor, id int, flagKey *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE teams SET flag_key = $1 WHERE id = $2`, flagKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
