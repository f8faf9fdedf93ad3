package models

// GroupStanding is one row of a computed group table. Position is 1-based
// in presentation order. Overridden marks rows whose order came from an
// operator override rather than the computed statistics.
type GroupStanding struct {
	TeamID         int   `json:"team_id"`
	Team           *Team `json:"team,omitempty"`
	Played         int   `json:"played"`
	Wins           int   `json:"wins"`
	Draws          int   `json:"draws"`
	Losses         int   `json:"losses"`
	GoalsFor       int   `json:"goals_for"`
	GoalsAgainst   int   `json:"goals_against"`
	GoalDifference int   `json:"goal_difference"`
	Points         int   `json:"points"`
	Position       int   `json:"position"`
	Overridden     bool  `json:"overridden"`
}

// GroupStandingsOverride pins one team of a group to an explicit position.
// When any override rows exist for a group they replace the computed order
// for the whole group.
type GroupStandingsOverride struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	GroupLabel   string `json:"group_label" db:"group_label"`
	TeamID       int    `json:"team_id" db:"team_id"`
	Position     int    `json:"position" db:"position"`
}
