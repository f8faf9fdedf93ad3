package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// OverrideEntry is one operator-supplied (team, position) pair.
type OverrideEntry struct {
	TeamID   int `json:"team_id"`
	Position int `json:"position"`
}

// StandingsService derives group tables from finished matches and manages
// the manual tie-break override.
type StandingsService interface {
	// ComputeStandings returns the group table ordered by points, then
	// goal difference, then goals scored (all descending). When override
	// rows exist for the group, their positions dictate the order and the
	// computed statistics are carried along for reference only.
	ComputeStandings(ctx context.Context, tournamentID int, groupLabel string) ([]models.GroupStanding, error)
	// ApplyStandingsOverride validates the entries as a permutation of
	// 1..N over exactly the group's teams and replaces the stored override
	// atomically.
	ApplyStandingsOverride(ctx context.Context, tournamentID int, groupLabel string, entries []OverrideEntry) error
	ClearStandingsOverride(ctx context.Context, tournamentID int, groupLabel string) error
}

type standingsService struct {
	txRunner     repositories.TxRunner
	matchRepo    repositories.MatchRepository
	overrideRepo repositories.StandingsOverrideRepository
	teamRepo     repositories.TeamRepository
	broadcaster  EventBroadcaster
}

func NewStandingsService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	overrideRepo repositories.StandingsOverrideRepository,
	teamRepo repositories.TeamRepository,
	broadcaster EventBroadcaster,
) StandingsService {
	return &standingsService{
		txRunner:     txRunner,
		matchRepo:    matchRepo,
		overrideRepo: overrideRepo,
		teamRepo:     teamRepo,
		broadcaster:  broadcaster,
	}
}

// accumulate folds finished group matches into per-team statistics.
// Teams appear as soon as they are assigned to a group match, so a table
// exists before any result does.
func accumulate(matches []*models.Match) map[int]*models.GroupStanding {
	table := make(map[int]*models.GroupStanding)
	rowFor := func(teamID int) *models.GroupStanding {
		if row, ok := table[teamID]; ok {
			return row
		}
		row := &models.GroupStanding{TeamID: teamID}
		table[teamID] = row
		return row
	}

	for _, m := range matches {
		if m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue // placeholder slots not resolved yet
		}
		home := rowFor(*m.HomeTeamID)
		away := rowFor(*m.AwayTeamID)
		if m.Status != models.MatchStatusFinished || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}

		home.Played++
		away.Played++
		home.GoalsFor += *m.HomeScore
		home.GoalsAgainst += *m.AwayScore
		away.GoalsFor += *m.AwayScore
		away.GoalsAgainst += *m.HomeScore

		switch {
		case *m.HomeScore > *m.AwayScore:
			home.Wins++
			home.Points += 3
			away.Losses++
		case *m.AwayScore > *m.HomeScore:
			away.Wins++
			away.Points += 3
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points++
			away.Points++
		}
	}

	for _, row := range table {
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
	}
	return table
}

func (s *standingsService) ComputeStandings(ctx context.Context, tournamentID int, groupLabel string) ([]models.GroupStanding, error) {
	matches, err := s.matchRepo.ListByGroup(ctx, nil, tournamentID, groupLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for group %s: %w", groupLabel, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: tournament %d group %s", ErrGroupUnknown, tournamentID, groupLabel)
	}

	table := accumulate(matches)
	standings := make([]models.GroupStanding, 0, len(table))
	for _, row := range table {
		standings = append(standings, *row)
	}

	overrides, err := s.overrideRepo.ListByGroup(ctx, nil, tournamentID, groupLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings overrides: %w", err)
	}

	if len(overrides) > 0 {
		// Operator positions replace the computed order outright; the
		// stats stay attached for audit.
		positionByTeam := make(map[int]int, len(overrides))
		for _, o := range overrides {
			positionByTeam[o.TeamID] = o.Position
		}
		var placed, unplaced []models.GroupStanding
		for _, row := range standings {
			if _, ok := positionByTeam[row.TeamID]; ok {
				placed = append(placed, row)
			} else {
				unplaced = append(unplaced, row)
			}
		}
		sort.SliceStable(placed, func(i, j int) bool {
			return positionByTeam[placed[i].TeamID] < positionByTeam[placed[j].TeamID]
		})
		for i := range placed {
			placed[i].Position = positionByTeam[placed[i].TeamID]
			placed[i].Overridden = true
		}
		// Teams resolved into the group after the override was stored have
		// no operator position; they trail the overridden block in computed
		// order rather than silently sorting first.
		sortByComputedOrder(unplaced)
		for i := range unplaced {
			unplaced[i].Position = len(placed) + i + 1
		}
		standings = append(placed, unplaced...)
	} else {
		sortByComputedOrder(standings)
		for i := range standings {
			standings[i].Position = i + 1
		}
	}

	if err := s.attachTeams(ctx, standings); err != nil {
		return nil, err
	}
	return standings, nil
}

func sortByComputedOrder(standings []models.GroupStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID // stable fallback
	})
}

func (s *standingsService) attachTeams(ctx context.Context, standings []models.GroupStanding) error {
	ids := make([]int, 0, len(standings))
	for _, row := range standings {
		ids = append(ids, row.TeamID)
	}
	teams, err := s.teamRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to load teams for standings: %w", err)
	}
	for i := range standings {
		standings[i].Team = teams[standings[i].TeamID]
	}
	return nil
}

func (s *standingsService) ApplyStandingsOverride(ctx context.Context, tournamentID int, groupLabel string, entries []OverrideEntry) error {
	matches, err := s.matchRepo.ListByGroup(ctx, nil, tournamentID, groupLabel)
	if err != nil {
		return fmt.Errorf("failed to list matches for group %s: %w", groupLabel, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: tournament %d group %s", ErrGroupUnknown, tournamentID, groupLabel)
	}

	groupTeams := make(map[int]bool)
	for _, m := range matches {
		if m.HomeTeamID != nil {
			groupTeams[*m.HomeTeamID] = true
		}
		if m.AwayTeamID != nil {
			groupTeams[*m.AwayTeamID] = true
		}
	}

	if len(entries) != len(groupTeams) {
		return fmt.Errorf("%w: got %d entries for %d teams", ErrOverrideNotPermuted, len(entries), len(groupTeams))
	}
	seenTeam := make(map[int]bool, len(entries))
	seenPosition := make(map[int]bool, len(entries))
	for _, e := range entries {
		if !groupTeams[e.TeamID] {
			return fmt.Errorf("%w: team %d is not in group %s", ErrOverrideNotPermuted, e.TeamID, groupLabel)
		}
		if seenTeam[e.TeamID] {
			return fmt.Errorf("%w: team %d listed twice", ErrOverrideNotPermuted, e.TeamID)
		}
		if e.Position < 1 || e.Position > len(entries) || seenPosition[e.Position] {
			return fmt.Errorf("%w: position %d is out of range or duplicated", ErrOverrideNotPermuted, e.Position)
		}
		seenTeam[e.TeamID] = true
		seenPosition[e.Position] = true
	}

	overrides := make([]*models.GroupStandingsOverride, 0, len(entries))
	for _, e := range entries {
		overrides = append(overrides, &models.GroupStandingsOverride{
			TournamentID: tournamentID,
			GroupLabel:   groupLabel,
			TeamID:       e.TeamID,
			Position:     e.Position,
		})
	}

	err = s.txRunner.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.overrideRepo.ReplaceForGroup(ctx, exec, tournamentID, groupLabel, overrides)
	})
	if err != nil {
		return fmt.Errorf("failed to store standings override: %w", err)
	}

	s.broadcaster.BroadcastToTournament(tournamentID, EventStandingsUpdated, map[string]interface{}{
		"group": groupLabel,
	})
	return nil
}

func (s *standingsService) ClearStandingsOverride(ctx context.Context, tournamentID int, groupLabel string) error {
	if err := s.overrideRepo.DeleteForGroup(ctx, nil, tournamentID, groupLabel); err != nil {
		return fmt.Errorf("failed to clear standings override: %w", err)
	}
	s.broadcaster.BroadcastToTournament(tournamentID, EventStandingsUpdated, map[string]interface{}{
		"group": groupLabel,
	})
	return nil
}
