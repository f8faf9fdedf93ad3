package services

import "errors"

// Errors shared across services and mapped to HTTP in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrScoresRequired       = errors.New("home and away scores are required and must not be negative")
	ErrOverrideNotPermuted  = errors.New("override positions must be a permutation of 1..N over the group's teams")
	ErrGroupUnknown         = errors.New("group has no finished or scheduled matches")
	ErrNotLeagueMember      = errors.New("user is not a member of this league")
	ErrBracketPhaseStarted  = errors.New("bracket picks for a started phase can no longer change")
	ErrBonusQuestionLocked  = errors.New("bonus question no longer accepts answers")
	ErrBonusAlreadyResolved = errors.New("bonus question is already resolved")

	// Time locks
	ErrPredictionLocked = errors.New("match has kicked off, predictions are locked")
	ErrPhaseLocked      = errors.New("phase is not open for predictions")

	// Entity-specific not-found (more context than ErrNotFound)
	ErrUserNotFound          = errors.New("user not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrLeagueNotFound        = errors.New("league not found")
	ErrPredictionNotFound    = errors.New("prediction not found")
	ErrBracketNotFound       = errors.New("bracket not found")
	ErrBonusQuestionNotFound = errors.New("bonus question not found")

	// Conflicts
	ErrUserEmailConflict = errors.New("email address is already in use")
)
