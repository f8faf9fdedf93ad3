package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
)

var (
	ErrBonusQuestionNotFound = errors.New("bonus question not found")
	ErrBonusAnswerNotFound   = errors.New("bonus answer not found")
)

type BonusRepository interface {
	GetQuestion(ctx context.Context, exec SQLExecutor, id int) (*models.BonusQuestion, error)
	ListQuestionsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BonusQuestion, error)
	CreateQuestion(ctx context.Context, exec SQLExecutor, q *models.BonusQuestion) error
	ResolveQuestion(ctx context.Context, exec SQLExecutor, id int, correctAnswer string, at time.Time) error
	UpsertAnswer(ctx context.Context, exec SQLExecutor, a *models.BonusAnswer) error
	// GradeAnswers sets points_earned once per answer: already graded rows
	// are left untouched so a resolve retry is idempotent.
	GradeAnswers(ctx context.Context, exec SQLExecutor, questionID int, correctAnswer string, points int) (int64, error)
	SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID int) (int, error)
	// TotalsByTournament returns graded bonus points per user, skipping
	// demo accounts.
	TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error)
}

type postgresBonusRepository struct {
	db *sql.DB
}

func NewPostgresBonusRepository(db *sql.DB) BonusRepository {
	return &postgresBonusRepository{db: db}
}

func (r *postgresBonusRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const bonusQuestionColumns = `id, tournament_id, question, points, locks_at, correct_answer, resolved_at`

func scanBonusQuestion(rowScanner interface{ Scan(...interface{}) error }) (*models.BonusQuestion, error) {
	var q models.BonusQuestion
	err := rowScanner.Scan(&q.ID, &q.TournamentID, &q.Question, &q.Points, &q.LocksAt, &q.CorrectAnswer, &q.ResolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBonusQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *postgresBonusRepository) GetQuestion(ctx context.Context, exec SQLExecutor, id int) (*models.BonusQuestion, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, `SELECT `+bonusQuestionColumns+` FROM bonus_questions WHERE id = $1`, id)
	return scanBonusQuestion(row)
}

func (r *postgresBonusRepository) ListQuestionsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.BonusQuestion, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT `+bonusQuestionColumns+` FROM bonus_questions WHERE tournament_id = $1 ORDER BY locks_at, id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*models.BonusQuestion, 0)
	for rows.Next() {
		q, errScan := scanBonusQuestion(rows)
		if errScan != nil {
			return nil, errScan
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *postgresBonusRepository) CreateQuestion(ctx context.Context, exec SQLExecutor, q *models.BonusQuestion) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bonus_questions (tournament_id, question, points, locks_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return executor.QueryRowContext(ctx, query, q.TournamentID, q.Question, q.Points, q.LocksAt).Scan(&q.ID)
}

func (r *postgresBonusRepository) ResolveQuestion(ctx context.Context, exec SQLExecutor, id int, correctAnswer string, at time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE bonus_questions SET correct_answer = $1, resolved_at = $2 WHERE id = $3 AND resolved_at IS NULL`,
		correctAnswer, at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBonusQuestionNotFound)
}

func (r *postgresBonusRepository) UpsertAnswer(ctx context.Context, exec SQLExecutor, a *models.BonusAnswer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bonus_answers (question_id, user_id, answer)
		VALUES ($1, $2, $3)
		ON CONFLICT (question_id, user_id) DO UPDATE SET answer = EXCLUDED.answer
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query, a.QuestionID, a.UserID, a.Answer).Scan(&a.ID, &a.CreatedAt)
}

func (r *postgresBonusRepository) GradeAnswers(ctx context.Context, exec SQLExecutor, questionID int, correctAnswer string, points int) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE bonus_answers
		 SET points_earned = CASE WHEN LOWER(TRIM(answer)) = LOWER(TRIM($1)) THEN $2 ELSE 0 END
		 WHERE question_id = $3 AND points_earned IS NULL`,
		correctAnswer, points, questionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresBonusRepository) SumPointsByUser(ctx context.Context, exec SQLExecutor, userID, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var points int
	err := executor.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(a.points_earned), 0)
		 FROM bonus_answers a
		 JOIN bonus_questions q ON q.id = a.question_id
		 WHERE a.user_id = $1 AND q.tournament_id = $2 AND a.points_earned IS NOT NULL`,
		userID, tournamentID).Scan(&points)
	return points, err
}

func (r *postgresBonusRepository) TotalsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT a.user_id, COALESCE(SUM(a.points_earned), 0)
		 FROM bonus_answers a
		 JOIN bonus_questions q ON q.id = a.question_id
		 JOIN users u ON u.id = a.user_id
		 WHERE q.tournament_id = $1 AND a.points_earned IS NOT NULL AND u.is_demo = FALSE
		 GROUP BY a.user_id`,
		tournamentID)
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
