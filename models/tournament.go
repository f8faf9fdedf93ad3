package models

import "time"

// TournamentKind selects the phase graph a tournament progresses through.
type TournamentKind string

const (
	// KindGroups is the classic World Cup shape: group stage, then knockout rounds.
	KindGroups TournamentKind = "groups"
	// KindPlayoff starts with a two-legged playoff round before the knockout bracket.
	KindPlayoff TournamentKind = "playoff"
)

type Tournament struct {
	ID        int            `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Kind      TournamentKind `json:"kind" db:"kind"`
	IsActive  bool           `json:"is_active" db:"is_active"`
	StartDate time.Time      `json:"start_date" db:"start_date"`
	EndDate   time.Time      `json:"end_date" db:"end_date"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
