package models

import "time"

// BonusQuestion is a free-form side bet scoped to a tournament
// ("who wins the golden boot?"). Answers lock at LocksAt; grading happens
// once, when the question is resolved with its correct answer.
type BonusQuestion struct {
	ID            int        `json:"id" db:"id"`
	TournamentID  int        `json:"tournament_id" db:"tournament_id"`
	Question      string     `json:"question" db:"question"`
	Points        int        `json:"points" db:"points"`
	LocksAt       time.Time  `json:"locks_at" db:"locks_at"`
	CorrectAnswer *string    `json:"correct_answer,omitempty" db:"correct_answer"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

type BonusAnswer struct {
	ID           int       `json:"id" db:"id"`
	QuestionID   int       `json:"question_id" db:"question_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Answer       string    `json:"answer" db:"answer"`
	PointsEarned *int      `json:"points_earned,omitempty" db:"points_earned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
