package models

import "time"

// GlobalScope is the league_scope value for a prediction made in the
// global pool rather than inside a league.
const GlobalScope = 0

// Prediction is a user's score guess for one match. Unique per
// (user, match, league scope). Points stays nil until the match finishes
// and the scoring engine grades the guess.
type Prediction struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	MatchID      int       `json:"match_id" db:"match_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	LeagueScope  int       `json:"league_scope" db:"league_scope"`
	HomeScore    int       `json:"home_score" db:"home_score"`
	AwayScore    int       `json:"away_score" db:"away_score"`
	IsJoker      bool      `json:"is_joker" db:"is_joker"`
	Points       *int      `json:"points,omitempty" db:"points"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PointsSplit divides a graded prediction's points between the regular and
// joker ledgers. A joker pick contributes half to each bucket (the odd
// point, if any, lands in regular); everything else goes to regular. The
// sum always equals the prediction's points, so the flag never changes a
// user's total.
func (p *Prediction) PointsSplit() (regular, joker int) {
	if p.Points == nil {
		return 0, 0
	}
	if !p.IsJoker {
		return *p.Points, 0
	}
	joker = *p.Points / 2
	return *p.Points - joker, joker
}
