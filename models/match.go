package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
)

// Phase names a stage of a tournament. The set of phases a tournament
// actually uses depends on its kind (see the phases package).
type Phase string

const (
	PhaseGroup       Phase = "GROUP"
	PhasePlayoffLeg1 Phase = "PLAYOFF_LEG_1"
	PhasePlayoffLeg2 Phase = "PLAYOFF_LEG_2"
	PhaseRound32     Phase = "ROUND_32"
	PhaseRound16     Phase = "ROUND_16"
	PhaseQuarter     Phase = "QUARTER"
	PhaseSemi        Phase = "SEMI"
	PhaseThirdPlace  Phase = "THIRD_PLACE"
	PhaseFinal       Phase = "FINAL"
)

// Match is a fixture within a tournament. Team slots stay nil while the
// pairing is still a placeholder ("Winner QF1"); scores stay nil until the
// result sync marks the match FINISHED.
type Match struct {
	ID              int         `json:"id" db:"id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	Phase           Phase       `json:"phase" db:"phase"`
	GroupLabel      *string     `json:"group_label,omitempty" db:"group_label"`
	HomeTeamID      *int        `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID      *int        `json:"away_team_id,omitempty" db:"away_team_id"`
	HomePlaceholder *string     `json:"home_placeholder,omitempty" db:"home_placeholder"`
	AwayPlaceholder *string     `json:"away_placeholder,omitempty" db:"away_placeholder"`
	KickoffAt       time.Time   `json:"kickoff_at" db:"kickoff_at"`
	Status          MatchStatus `json:"status" db:"status"`
	HomeScore       *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore       *int        `json:"away_score,omitempty" db:"away_score"`
	IsManuallyLock  bool        `json:"is_manually_locked" db:"is_manually_locked"`

	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

// WinnerTeamID returns the winning team, or nil for a draw or an
// unfinished match.
func (m *Match) WinnerTeamID() *int {
	if m.Status != MatchStatusFinished || m.HomeScore == nil || m.AwayScore == nil {
		return nil
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return m.HomeTeamID
	case *m.AwayScore > *m.HomeScore:
		return m.AwayTeamID
	default:
		return nil
	}
}

// IsKnockout reports whether the match belongs to an elimination phase.
func (m *Match) IsKnockout() bool {
	return m.Phase != PhaseGroup
}
