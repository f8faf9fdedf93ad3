package models

import "time"

// PhaseStatus is the unlock record for one (tournament, phase) pair.
// Exactly one row exists per pair; rows are provisioned lazily the first
// time the phase gate needs to persist state for the pair.
type PhaseStatus struct {
	ID                  int        `json:"id" db:"id"`
	TournamentID        int        `json:"tournament_id" db:"tournament_id"`
	Phase               Phase      `json:"phase" db:"phase"`
	IsUnlocked          bool       `json:"is_unlocked" db:"is_unlocked"`
	AllMatchesCompleted bool       `json:"all_matches_completed" db:"all_matches_completed"`
	UnlockedAt          *time.Time `json:"unlocked_at,omitempty" db:"unlocked_at"`
	IsManuallyLocked    bool       `json:"is_manually_locked" db:"is_manually_locked"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}
