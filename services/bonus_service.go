package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// BonusService manages tournament side bets. Grading happens exactly once
// per answer: resolving an already-resolved question fails, and the grade
// update skips rows that already carry points.
type BonusService interface {
	ListQuestions(ctx context.Context, tournamentID int) ([]*models.BonusQuestion, error)
	CreateQuestion(ctx context.Context, q *models.BonusQuestion) (*models.BonusQuestion, error)
	SubmitAnswer(ctx context.Context, userID, questionID int, answer string) (*models.BonusAnswer, error)
	ResolveQuestion(ctx context.Context, questionID int, correctAnswer string) error
}

type bonusService struct {
	txRunner  repositories.TxRunner
	bonusRepo repositories.BonusRepository
	now       func() time.Time
}

func NewBonusService(txRunner repositories.TxRunner, bonusRepo repositories.BonusRepository) BonusService {
	return &bonusService{txRunner: txRunner, bonusRepo: bonusRepo, now: time.Now}
}

func (s *bonusService) ListQuestions(ctx context.Context, tournamentID int) ([]*models.BonusQuestion, error) {
	questions, err := s.bonusRepo.ListQuestionsByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonus questions: %w", err)
	}
	return questions, nil
}

func (s *bonusService) CreateQuestion(ctx context.Context, q *models.BonusQuestion) (*models.BonusQuestion, error) {
	if strings.TrimSpace(q.Question) == "" || q.Points <= 0 {
		return nil, fmt.Errorf("%w: question text and positive points are required", ErrValidationFailed)
	}
	if err := s.bonusRepo.CreateQuestion(ctx, nil, q); err != nil {
		return nil, fmt.Errorf("failed to create bonus question: %w", err)
	}
	return q, nil
}

func (s *bonusService) getQuestion(ctx context.Context, questionID int) (*models.BonusQuestion, error) {
	q, err := s.bonusRepo.GetQuestion(ctx, nil, questionID)
	if err != nil {
		if errors.Is(err, repositories.ErrBonusQuestionNotFound) {
			return nil, ErrBonusQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load bonus question %d: %w", questionID, err)
	}
	return q, nil
}

func (s *bonusService) SubmitAnswer(ctx context.Context, userID, questionID int, answer string) (*models.BonusAnswer, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", ErrValidationFailed)
	}
	q, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.ResolvedAt != nil || !s.now().Before(q.LocksAt) {
		return nil, ErrBonusQuestionLocked
	}

	a := &models.BonusAnswer{QuestionID: questionID, UserID: userID, Answer: answer}
	if err := s.bonusRepo.UpsertAnswer(ctx, nil, a); err != nil {
		return nil, fmt.Errorf("failed to store bonus answer: %w", err)
	}
	return a, nil
}

func (s *bonusService) ResolveQuestion(ctx context.Context, questionID int, correctAnswer string) error {
	if strings.TrimSpace(correctAnswer) == "" {
		return fmt.Errorf("%w: correct answer must not be empty", ErrValidationFailed)
	}
	q, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if q.ResolvedAt != nil {
		return ErrBonusAlreadyResolved
	}

	return s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.bonusRepo.ResolveQuestion(ctx, exec, questionID, correctAnswer, s.now()); err != nil {
			if errors.Is(err, repositories.ErrBonusQuestionNotFound) {
				// Lost the race with another resolver.
				return ErrBonusAlreadyResolved
			}
			return fmt.Errorf("failed to resolve bonus question %d: %w", questionID, err)
		}
		if _, err := s.bonusRepo.GradeAnswers(ctx, exec, questionID, correctAnswer, q.Points); err != nil {
			return fmt.Errorf("failed to grade answers for question %d: %w", questionID, err)
		}
		return nil
	})
}
