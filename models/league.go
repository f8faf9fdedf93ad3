package models

import "time"

// League is a private pool inside a tournament. Members keep per-league
// copies of their predictions (league_scope = league id) so a league can
// run its own leaderboard.
type League struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	OwnerID      int       `json:"owner_id" db:"owner_id"`
	InviteCode   string    `json:"invite_code" db:"invite_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type LeagueMember struct {
	LeagueID int       `json:"league_id" db:"league_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
