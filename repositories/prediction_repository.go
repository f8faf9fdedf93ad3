package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pollafutbolera/polla-engine/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

// PredictionTotals is the per-user outcome of the joker ledger split,
// aggregated over graded predictions.
type PredictionTotals struct {
	UserID        int
	Nickname      string
	RegularPoints int
	JokerPoints   int
}

type PredictionRepository interface {
	// GetForUpdate reads the row under FOR UPDATE; call it inside the
	// advisory-locked transaction owned by the write coordinator.
	GetForUpdate(ctx context.Context, exec SQLExecutor, userID, matchID, leagueScope int) (*models.Prediction, error)
	Insert(ctx context.Context, exec SQLExecutor, p *models.Prediction) error
	Update(ctx context.Context, exec SQLExecutor, p *models.Prediction) error
	Delete(ctx context.Context, exec SQLExecutor, userID, matchID, leagueScope int) error
	ListByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) ([]*models.Prediction, error)
	ListUngradedByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Prediction, error)
	SetPoints(ctx context.Context, exec SQLExecutor, id, points int) error
	// SumPointsByUser splits graded points into the regular and joker
	// ledgers. A joker prediction worth n contributes n/2 to joker and
	// n-n/2 to regular, so the flag never changes the sum.
	SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (regular, joker int, err error)
	// TotalsByTournament aggregates the ledgers per user for leaderboards,
	// skipping demo accounts.
	TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID, leagueScope int) ([]PredictionTotals, error)
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const predictionColumns = `id, user_id, match_id, tournament_id, league_scope, home_score, away_score, is_joker, points, created_at, updated_at`

func scanPrediction(rowScanner interface{ Scan(...interface{}) error }) (*models.Prediction, error) {
	var p models.Prediction
	err := rowScanner.Scan(
		&p.ID, &p.UserID, &p.MatchID, &p.TournamentID, &p.LeagueScope,
		&p.HomeScore, &p.AwayScore, &p.IsJoker, &p.Points, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPredictionRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, userID, matchID, leagueScope int) (*models.Prediction, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE user_id = $1 AND match_id = $2 AND league_scope = $3
		 FOR UPDATE`,
		userID, matchID, leagueScope)
	return scanPrediction(row)
}

func (r *postgresPredictionRepository) Insert(ctx context.Context, exec SQLExecutor, p *models.Prediction) error {
	executor := r.getExecutor(exec)
	// The unique index on (user_id, match_id, league_scope) is the last
	// line of defense; the coordinator's advisory lock makes the conflict
	// branch unreachable in practice.
	query := `
		INSERT INTO predictions (user_id, match_id, tournament_id, league_scope, home_score, away_score, is_joker)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, match_id, league_scope) DO UPDATE
			SET home_score = EXCLUDED.home_score,
			    away_score = EXCLUDED.away_score,
			    is_joker   = EXCLUDED.is_joker,
			    updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return executor.QueryRowContext(ctx, query,
		p.UserID, p.MatchID, p.TournamentID, p.LeagueScope, p.HomeScore, p.AwayScore, p.IsJoker,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresPredictionRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Prediction) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE predictions SET home_score = $1, away_score = $2, is_joker = $3, updated_at = NOW() WHERE id = $4`,
		p.HomeScore, p.AwayScore, p.IsJoker, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) Delete(ctx context.Context, exec SQLExecutor, userID, matchID, leagueScope int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`DELETE FROM predictions WHERE user_id = $1 AND match_id = $2 AND league_scope = $3`,
		userID, matchID, leagueScope)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) listPredictions(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Prediction, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, errScan := scanPrediction(rows)
		if errScan != nil {
			return nil, errScan
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions
		WHERE user_id = $1 AND tournament_id = $2 AND league_scope = $3
		ORDER BY match_id`
	return r.listPredictions(ctx, r.getExecutor(exec), query, userID, tournamentID, leagueScope)
}

func (r *postgresPredictionRepository) ListUngradedByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE match_id = $1 AND points IS NULL ORDER BY id`
	return r.listPredictions(ctx, r.getExecutor(exec), query, matchID)
}

func (r *postgresPredictionRepository) SetPoints(ctx context.Context, exec SQLExecutor, id, points int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE predictions SET points = $1, updated_at = NOW() WHERE id = $2`, points, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID, leagueScope int) (int, int, error) {
	executor := r.getExecutor(exec)
	// The CASE arithmetic is the SQL form of Prediction.PointsSplit; the
	// two must stay in step.
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN is_joker THEN points - points / 2 ELSE points END), 0),
			COALESCE(SUM(CASE WHEN is_joker THEN points / 2 ELSE 0 END), 0)
		FROM predictions
		WHERE user_id = $1 AND tournament_id = $2 AND league_scope = $3 AND points IS NOT NULL`
	var regular, joker int
	err := executor.QueryRowContext(ctx, query, userID, tournamentID, leagueScope).Scan(&regular, &joker)
	return regular, joker, err
}

func (r *postgresPredictionRepository) TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID, leagueScope int) ([]PredictionTotals, error) {
	executor := r.getExecutor(exec)
	// Same CASE arithmetic as SumPointsByUser (Prediction.PointsSplit in
	// SQL form), with demo accounts filtered out of the board.
	query := `
		SELECT p.user_id, u.nickname,
			COALESCE(SUM(CASE WHEN p.is_joker THEN p.points - p.points / 2 ELSE p.points END), 0),
			COALESCE(SUM(CASE WHEN p.is_joker THEN p.points / 2 ELSE 0 END), 0)
		FROM predictions p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1 AND p.league_scope = $2 AND p.points IS NOT NULL
		  AND u.is_demo = FALSE
		GROUP BY p.user_id, u.nickname`
	rows, err := executor.QueryContext(ctx, query, tournamentID, leagueScope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]PredictionTotals, 0)
	for rows.Next() {
		var t PredictionTotals
		if err := rows.Scan(&t.UserID, &t.Nickname, &t.RegularPoints, &t.JokerPoints); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
