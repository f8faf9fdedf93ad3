package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
)

func groupMatch(id int, group string, home, away int, homeScore, awayScore *int) *models.Match {
	status := models.MatchStatusScheduled
	if homeScore != nil {
		status = models.MatchStatusFinished
	}
	return &models.Match{
		ID:           id,
		TournamentID: 1,
		Phase:        models.PhaseGroup,
		GroupLabel:   strPtr(group),
		HomeTeamID:   intPtr(home),
		AwayTeamID:   intPtr(away),
		HomeScore:    homeScore,
		AwayScore:    awayScore,
		Status:       status,
		KickoffAt:    time.Now().Add(-time.Hour),
	}
}

type standingsFixture struct {
	svc          StandingsService
	matchRepo    *fakeMatchRepo
	overrideRepo *fakeOverrideRepo
	broadcaster  *recordingBroadcaster
}

// seedGroupA builds a four-team group where B tops the table on results:
// B beats A and C, A beats C, D draws everyone it plays.
func newStandingsFixture(t *testing.T) *standingsFixture {
	t.Helper()
	matchRepo := newFakeMatchRepo(
		groupMatch(1, "A", 10, 20, intPtr(0), intPtr(2)), // B beats A
		groupMatch(2, "A", 20, 30, intPtr(3), intPtr(0)), // B beats C
		groupMatch(3, "A", 10, 30, intPtr(2), intPtr(1)), // A beats C
		groupMatch(4, "A", 30, 40, intPtr(1), intPtr(1)), // C draws D
		groupMatch(5, "A", 10, 40, nil, nil),             // not played yet
	)
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 10, Name: "Alpha", Code: "ALP"},
		&models.Team{ID: 20, Name: "Bravo", Code: "BRA"},
		&models.Team{ID: 30, Name: "Charlie", Code: "CHA"},
		&models.Team{ID: 40, Name: "Delta", Code: "DEL"},
	)
	f := &standingsFixture{
		matchRepo:    matchRepo,
		overrideRepo: newFakeOverrideRepo(),
		broadcaster:  &recordingBroadcaster{},
	}
	f.svc = NewStandingsService(newFakeTxRunner(), matchRepo, f.overrideRepo, teamRepo, f.broadcaster)
	return f
}

func teamOrder(standings []models.GroupStanding) []int {
	out := make([]int, len(standings))
	for i, row := range standings {
		out[i] = row.TeamID
	}
	return out
}

func TestComputeStandingsOrdersByPointsThenGoals(t *testing.T) {
	f := newStandingsFixture(t)

	standings, err := f.svc.ComputeStandings(context.Background(), 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	// B: 6pts. A: 3pts. C: 1pt (GD -4). D: 1pt (GD 0). D edges C on GD.
	want := []int{20, 10, 40, 30}
	got := teamOrder(standings)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if standings[0].Points != 6 || standings[0].Position != 1 {
		t.Errorf("leader row = %+v, want 6 points at position 1", standings[0])
	}
	if standings[0].Team == nil || standings[0].Team.Name != "Bravo" {
		t.Error("team entity should be attached to each row")
	}
	for _, row := range standings {
		if row.Overridden {
			t.Errorf("row %d marked overridden without an override", row.TeamID)
		}
	}
}

func TestComputeStandingsIncludesTeamsWithoutResults(t *testing.T) {
	f := newStandingsFixture(t)

	standings, err := f.svc.ComputeStandings(context.Background(), 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(standings) != 4 {
		t.Fatalf("rows = %d, want all four teams present", len(standings))
	}
}

func TestComputeStandingsUnknownGroup(t *testing.T) {
	f := newStandingsFixture(t)

	_, err := f.svc.ComputeStandings(context.Background(), 1, "Z")
	if !errors.Is(err, ErrGroupUnknown) {
		t.Fatalf("err = %v, want ErrGroupUnknown", err)
	}
}

func TestOverrideDictatesOrder(t *testing.T) {
	f := newStandingsFixture(t)
	err := f.svc.ApplyStandingsOverride(context.Background(), 1, "A", []OverrideEntry{
		{TeamID: 10, Position: 1},
		{TeamID: 20, Position: 2},
		{TeamID: 30, Position: 3},
		{TeamID: 40, Position: 4},
	})
	if err != nil {
		t.Fatal(err)
	}

	standings, err := f.svc.ComputeStandings(context.Background(), 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{10, 20, 30, 40}
	got := teamOrder(standings)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want the override order %v", got, want)
		}
	}
	// Computed statistics survive for audit even though the order changed.
	if standings[1].Points != 6 {
		t.Errorf("Bravo's computed points = %d, want 6 under override", standings[1].Points)
	}
	for _, row := range standings {
		if !row.Overridden {
			t.Errorf("row %d should carry the override marker", row.TeamID)
		}
	}
	if got := f.broadcaster.eventsOfType(EventStandingsUpdated); len(got) != 1 {
		t.Errorf("standings broadcasts = %d, want 1", len(got))
	}
}

func TestOverrideAppendsLateResolvedTeams(t *testing.T) {
	f := newStandingsFixture(t)
	err := f.svc.ApplyStandingsOverride(context.Background(), 1, "A", []OverrideEntry{
		{TeamID: 10, Position: 1},
		{TeamID: 20, Position: 2},
		{TeamID: 30, Position: 3},
		{TeamID: 40, Position: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	// A fifth team lands in the group after the override was stored. It
	// wins its match, but it must not jump ahead of the operator's order.
	f.matchRepo.matches[6] = groupMatch(6, "A", 50, 20, intPtr(2), intPtr(0))

	standings, err := f.svc.ComputeStandings(context.Background(), 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{10, 20, 30, 40, 50}
	got := teamOrder(standings)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want the override order with 50 appended: %v", got, want)
		}
	}
	last := standings[len(standings)-1]
	if last.Position != 5 {
		t.Errorf("appended team position = %d, want 5", last.Position)
	}
	if last.Overridden {
		t.Error("appended team must not carry the override marker")
	}
}

func TestOverrideValidation(t *testing.T) {
	f := newStandingsFixture(t)

	cases := []struct {
		name    string
		entries []OverrideEntry
	}{
		{"too few entries", []OverrideEntry{{TeamID: 10, Position: 1}}},
		{"foreign team", []OverrideEntry{
			{TeamID: 99, Position: 1}, {TeamID: 20, Position: 2},
			{TeamID: 30, Position: 3}, {TeamID: 40, Position: 4},
		}},
		{"duplicate team", []OverrideEntry{
			{TeamID: 10, Position: 1}, {TeamID: 10, Position: 2},
			{TeamID: 30, Position: 3}, {TeamID: 40, Position: 4},
		}},
		{"duplicate position", []OverrideEntry{
			{TeamID: 10, Position: 1}, {TeamID: 20, Position: 1},
			{TeamID: 30, Position: 3}, {TeamID: 40, Position: 4},
		}},
		{"position out of range", []OverrideEntry{
			{TeamID: 10, Position: 0}, {TeamID: 20, Position: 2},
			{TeamID: 30, Position: 3}, {TeamID: 40, Position: 4},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.ApplyStandingsOverride(context.Background(), 1, "A", tc.entries)
			if !errors.Is(err, ErrOverrideNotPermuted) {
				t.Fatalf("err = %v, want ErrOverrideNotPermuted", err)
			}
		})
	}
}

func TestClearOverrideRestoresComputedOrder(t *testing.T) {
	f := newStandingsFixture(t)
	err := f.svc.ApplyStandingsOverride(context.Background(), 1, "A", []OverrideEntry{
		{TeamID: 10, Position: 1},
		{TeamID: 20, Position: 2},
		{TeamID: 30, Position: 3},
		{TeamID: 40, Position: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ClearStandingsOverride(context.Background(), 1, "A"); err != nil {
		t.Fatal(err)
	}

	standings, err := f.svc.ComputeStandings(context.Background(), 1, "A")
	if err != nil {
		t.Fatal(err)
	}
	if standings[0].TeamID != 20 {
		t.Errorf("leader after clearing = %d, want the computed leader 20", standings[0].TeamID)
	}
	for _, row := range standings {
		if row.Overridden {
			t.Errorf("row %d still marked overridden after clear", row.TeamID)
		}
	}
}
