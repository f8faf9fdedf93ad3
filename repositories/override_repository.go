package repositories

import (
	"context"
	"database/sql"

	"github.com/pollafutbolera/polla-engine/models"
)

type StandingsOverrideRepository interface {
	ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]*models.GroupStandingsOverride, error)
	// ReplaceForGroup swaps the group's override set atomically; run it
	// inside a transaction.
	ReplaceForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string, overrides []*models.GroupStandingsOverride) error
	DeleteForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) error
}

type postgresStandingsOverrideRepository struct {
	db *sql.DB
}

func NewPostgresStandingsOverrideRepository(db *sql.DB) StandingsOverrideRepository {
	return &postgresStandingsOverrideRepository{db: db}
}

func (r *postgresStandingsOverrideRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingsOverrideRepository) ListByGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) ([]*models.GroupStandingsOverride, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, tournament_id, group_label, team_id, position
		 FROM group_standings_overrides
		 WHERE tournament_id = $1 AND group_label = $2
		 ORDER BY position`,
		tournamentID, groupLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]*models.GroupStandingsOverride, 0)
	for rows.Next() {
		var o models.GroupStandingsOverride
		if err := rows.Scan(&o.ID, &o.TournamentID, &o.GroupLabel, &o.TeamID, &o.Position); err != nil {
			return nil, err
		}
		overrides = append(overrides, &o)
	}
	return overrides, rows.Err()
}

func (r *postgresStandingsOverrideRepository) ReplaceForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string, overrides []*models.GroupStandingsOverride) error {
	executor := r.getExecutor(exec)
	if err := r.DeleteForGroup(ctx, executor, tournamentID, groupLabel); err != nil {
		return err
	}
	for _, o := range overrides {
		err := executor.QueryRowContext(ctx,
			`INSERT INTO group_standings_overrides (tournament_id, group_label, team_id, position)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			tournamentID, groupLabel, o.TeamID, o.Position).Scan(&o.ID)
		if err != nil {
			return err
		}
		o.TournamentID = tournamentID
		o.GroupLabel = groupLabel
	}
	return nil
}

func (r *postgresStandingsOverrideRepository) DeleteForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, groupLabel string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM group_standings_overrides WHERE tournament_id = $1 AND group_label = $2`,
		tournamentID, groupLabel)
	return err
}
