package models

import "time"

// Bracket holds a user's advancing-team picks for the knockout stage.
// One bracket per (user, tournament, league scope). Picks maps match id to
// the team the user expects to win that slot. Points is an additive
// accumulator: each finished match whose winner equals the pick adds the
// phase tier value. It is only ever recomputed from scratch by the
// administrative reset-and-replay operation.
type Bracket struct {
	ID           int         `json:"id" db:"id"`
	UserID       int         `json:"user_id" db:"user_id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	LeagueScope  int         `json:"league_scope" db:"league_scope"`
	Picks        map[int]int `json:"picks" db:"-"`
	Points       int         `json:"points" db:"points"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
