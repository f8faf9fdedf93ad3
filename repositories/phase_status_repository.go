package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
)

var ErrPhaseStatusNotFound = errors.New("phase status not found")

type PhaseStatusRepository interface {
	GetByTournamentAndPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error)
	// GetOrCreate provisions the row lazily; the unique index on
	// (tournament_id, phase) keeps concurrent provisioning to one row.
	GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error)
	SetCompletion(ctx context.Context, exec SQLExecutor, id int, allCompleted bool) error
	Unlock(ctx context.Context, exec SQLExecutor, id int, at time.Time) error
	SetManualLock(ctx context.Context, exec SQLExecutor, id int, locked bool) error
}

type postgresPhaseStatusRepository struct {
	db *sql.DB
}

func NewPostgresPhaseStatusRepository(db *sql.DB) PhaseStatusRepository {
	return &postgresPhaseStatusRepository{db: db}
}

func (r *postgresPhaseStatusRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const phaseStatusColumns = `id, tournament_id, phase, is_unlocked, all_matches_completed, unlocked_at, is_manually_locked, updated_at`

func scanPhaseStatus(rowScanner interface{ Scan(...interface{}) error }) (*models.PhaseStatus, error) {
	var ps models.PhaseStatus
	err := rowScanner.Scan(
		&ps.ID, &ps.TournamentID, &ps.Phase, &ps.IsUnlocked, &ps.AllMatchesCompleted,
		&ps.UnlockedAt, &ps.IsManuallyLocked, &ps.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseStatusNotFound
		}
		return nil, err
	}
	return &ps, nil
}

func (r *postgresPhaseStatusRepository) GetByTournamentAndPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		`SELECT `+phaseStatusColumns+` FROM phase_statuses WHERE tournament_id = $1 AND phase = $2`,
		tournamentID, phase)
	return scanPhaseStatus(row)
}

func (r *postgresPhaseStatusRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO phase_statuses (tournament_id, phase)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, phase) DO UPDATE SET tournament_id = EXCLUDED.tournament_id
		RETURNING ` + phaseStatusColumns
	row := executor.QueryRowContext(ctx, query, tournamentID, phase)
	return scanPhaseStatus(row)
}

func (r *postgresPhaseStatusRepository) SetCompletion(ctx context.Context, exec SQLExecutor, id int, allCompleted bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE phase_statuses SET all_matches_completed = $1, updated_at = NOW() WHERE id = $2`,
		allCompleted, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseStatusNotFound)
}

func (r *postgresPhaseStatusRepository) Unlock(ctx context.Context, exec SQLExecutor, id int, at time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE phase_statuses SET is_unlocked = TRUE, unlocked_at = $1, updated_at = NOW() WHERE id = $2`,
		at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseStatusNotFound)
}

func (r *postgresPhaseStatusRepository) SetManualLock(ctx context.Context, exec SQLExecutor, id int, locked bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE phase_statuses SET is_manually_locked = $1, updated_at = NOW() WHERE id = $2`,
		locked, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPhaseStatusNotFound)
}
