package services

// Event types pushed to tournament rooms over the live hub.
const (
	EventPhaseUnlocked     = "PHASE_UNLOCKED"
	EventMatchFinished     = "MATCH_FINISHED"
	EventStandingsUpdated  = "STANDINGS_UPDATED"
	EventBracketRecomputed = "BRACKET_RECOMPUTED"
)

// EventBroadcaster decouples services from the websocket hub.
type EventBroadcaster interface {
	BroadcastToTournament(tournamentID int, eventType string, payload interface{})
}

// NopBroadcaster is used where no hub is wired (tests, one-off tools).
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToTournament(int, string, interface{}) {}
