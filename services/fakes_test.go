package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
)

// fakeTxRunner emulates the advisory-lock runner with in-process mutexes:
// callers contending on the same key serialize, everything else proceeds.
type fakeTxRunner struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{locks: make(map[string]*sync.Mutex)}
}

func (r *fakeTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

func (r *fakeTxRunner) WithinLockedTx(ctx context.Context, key string, fn func(exec repositories.SQLExecutor) error) error {
	r.mu.Lock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(nil)
}

type recordedEvent struct {
	TournamentID int
	Type         string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToTournament(tournamentID int, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{TournamentID: tournamentID, Type: eventType})
}

func (b *recordingBroadcaster) eventsOfType(eventType string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) ListActive(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	r.tournaments[t.ID] = t
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match.ID = len(r.matches) + 1
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) ListByPhase(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, phase models.Phase) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Phase == phase {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.GroupLabel != nil && *m.GroupLabel == groupLabel {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListFinishedKnockout(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.IsKnockout() && m.Status == models.MatchStatusFinished {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus, homeScore, awayScore *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	return nil
}

func (r *fakeMatchRepo) ResolveTeams(ctx context.Context, exec repositories.SQLExecutor, id int, homeTeamID, awayTeamID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeTeamID = homeTeamID
	m.AwayTeamID = awayTeamID
	return nil
}

func (r *fakeMatchRepo) SetManualLock(ctx context.Context, exec repositories.SQLExecutor, id int, locked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.IsManuallyLock = locked
	return nil
}

type fakePhaseStatusRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*models.PhaseStatus
	byID   map[int]*models.PhaseStatus
}

func newFakePhaseStatusRepo() *fakePhaseStatusRepo {
	return &fakePhaseStatusRepo{
		nextID: 1,
		rows:   make(map[string]*models.PhaseStatus),
		byID:   make(map[int]*models.PhaseStatus),
	}
}

func phaseKey(tournamentID int, phase models.Phase) string {
	return fmt.Sprintf("%d/%s", tournamentID, phase)
}

func (r *fakePhaseStatusRepo) GetByTournamentAndPhase(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[phaseKey(tournamentID, phase)]
	if !ok {
		return nil, repositories.ErrPhaseStatusNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakePhaseStatusRepo) GetOrCreate(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, phase models.Phase) (*models.PhaseStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := phaseKey(tournamentID, phase)
	if row, ok := r.rows[key]; ok {
		copied := *row
		return &copied, nil
	}
	row := &models.PhaseStatus{
		ID:           r.nextID,
		TournamentID: tournamentID,
		Phase:        phase,
		UpdatedAt:    time.Now(),
	}
	r.nextID++
	r.rows[key] = row
	r.byID[row.ID] = row
	copied := *row
	return &copied, nil
}

func (r *fakePhaseStatusRepo) SetCompletion(ctx context.Context, exec repositories.SQLExecutor, id int, allCompleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return repositories.ErrPhaseStatusNotFound
	}
	row.AllMatchesCompleted = allCompleted
	return nil
}

func (r *fakePhaseStatusRepo) Unlock(ctx context.Context, exec repositories.SQLExecutor, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return repositories.ErrPhaseStatusNotFound
	}
	row.IsUnlocked = true
	row.UnlockedAt = &at
	return nil
}

func (r *fakePhaseStatusRepo) SetManualLock(ctx context.Context, exec repositories.SQLExecutor, id int, locked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return repositories.ErrPhaseStatusNotFound
	}
	row.IsManuallyLocked = locked
	return nil
}

// seed installs a row directly, bypassing GetOrCreate.
func (r *fakePhaseStatusRepo) seed(row *models.PhaseStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == 0 {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[phaseKey(row.TournamentID, row.Phase)] = row
	r.byID[row.ID] = row
}

func (r *fakePhaseStatusRepo) get(tournamentID int, phase models.Phase) *models.PhaseStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[phaseKey(tournamentID, phase)]
}

type fakePredictionRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*models.Prediction
	// users backs the demo-account filter of TotalsByTournament, like the
	// join in the real query. Nil means no demo accounts exist.
	users *fakeUserRepo
}

func newFakePredictionRepo() *fakePredictionRepo {
	return &fakePredictionRepo{nextID: 1, rows: make(map[string]*models.Prediction)}
}

func predictionKey(userID, matchID, scope int) string {
	return fmt.Sprintf("%d/%d/%d", userID, matchID, scope)
}

func (r *fakePredictionRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, userID, matchID, leagueScope int) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[predictionKey(userID, matchID, leagueScope)]
	if !ok {
		return nil, repositories.ErrPredictionNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePredictionRepo) Insert(ctx context.Context, exec repositories.SQLExecutor, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := predictionKey(p.UserID, p.MatchID, p.LeagueScope)
	if _, ok := r.rows[key]; ok {
		return fmt.Errorf("duplicate prediction for %s", key)
	}
	p.ID = r.nextID
	r.nextID++
	copied := *p
	r.rows[key] = &copied
	return nil
}

func (r *fakePredictionRepo) Update(ctx context.Context, exec repositories.SQLExecutor, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := predictionKey(p.UserID, p.MatchID, p.LeagueScope)
	if _, ok := r.rows[key]; !ok {
		return repositories.ErrPredictionNotFound
	}
	copied := *p
	r.rows[key] = &copied
	return nil
}

func (r *fakePredictionRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, userID, matchID, leagueScope int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := predictionKey(userID, matchID, leagueScope)
	if _, ok := r.rows[key]; !ok {
		return repositories.ErrPredictionNotFound
	}
	delete(r.rows, key)
	return nil
}

func (r *fakePredictionRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userID, tournamentID, leagueScope int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for _, p := range r.rows {
		if p.UserID == userID && p.TournamentID == tournamentID && p.LeagueScope == leagueScope {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) ListUngradedByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for _, p := range r.rows {
		if p.MatchID == matchID && p.Points == nil {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) SetPoints(ctx context.Context, exec repositories.SQLExecutor, id, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ID == id {
			value := points
			p.Points = &value
			return nil
		}
	}
	return repositories.ErrPredictionNotFound
}

func (r *fakePredictionRepo) SumPointsByUser(ctx context.Context, exec repositories.SQLExecutor, userID, tournamentID, leagueScope int) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var regular, joker int
	for _, p := range r.rows {
		if p.UserID != userID || p.TournamentID != tournamentID || p.LeagueScope != leagueScope {
			continue
		}
		reg, jok := p.PointsSplit()
		regular += reg
		joker += jok
	}
	return regular, joker, nil
}

func (r *fakePredictionRepo) TotalsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID, leagueScope int) ([]repositories.PredictionTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser := make(map[int]*repositories.PredictionTotals)
	for _, p := range r.rows {
		if p.TournamentID != tournamentID || p.LeagueScope != leagueScope || p.Points == nil {
			continue
		}
		if r.users.isDemo(p.UserID) {
			continue
		}
		totals, ok := byUser[p.UserID]
		if !ok {
			totals = &repositories.PredictionTotals{UserID: p.UserID}
			byUser[p.UserID] = totals
		}
		reg, jok := p.PointsSplit()
		totals.RegularPoints += reg
		totals.JokerPoints += jok
	}
	out := make([]repositories.PredictionTotals, 0, len(byUser))
	for _, totals := range byUser {
		out = append(out, *totals)
	}
	return out, nil
}

// count returns how many rows exist for the tuple; the coordinator
// invariant says it can never exceed one.
func (r *fakePredictionRepo) count(userID, matchID, scope int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[predictionKey(userID, matchID, scope)]; ok {
		return 1
	}
	return 0
}

type fakeLeagueRepo struct {
	leagues map[int]*models.League
	members map[int]map[int]bool
}

func newFakeLeagueRepo(leagues ...*models.League) *fakeLeagueRepo {
	r := &fakeLeagueRepo{
		leagues: make(map[int]*models.League),
		members: make(map[int]map[int]bool),
	}
	for _, l := range leagues {
		r.leagues[l.ID] = l
		r.members[l.ID] = make(map[int]bool)
	}
	return r
}

func (r *fakeLeagueRepo) Create(ctx context.Context, exec repositories.SQLExecutor, league *models.League) error {
	league.ID = len(r.leagues) + 1
	r.leagues[league.ID] = league
	r.members[league.ID] = make(map[int]bool)
	return nil
}

func (r *fakeLeagueRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.League, error) {
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return l, nil
}

func (r *fakeLeagueRepo) GetByInviteCode(ctx context.Context, exec repositories.SQLExecutor, code string) (*models.League, error) {
	for _, l := range r.leagues {
		if l.InviteCode == code {
			return l, nil
		}
	}
	return nil, repositories.ErrLeagueNotFound
}

func (r *fakeLeagueRepo) AddMember(ctx context.Context, exec repositories.SQLExecutor, leagueID, userID int) error {
	r.members[leagueID][userID] = true
	return nil
}

func (r *fakeLeagueRepo) IsMember(ctx context.Context, exec repositories.SQLExecutor, leagueID, userID int) (bool, error) {
	return r.members[leagueID][userID], nil
}

func (r *fakeLeagueRepo) ListMembers(ctx context.Context, exec repositories.SQLExecutor, leagueID int) ([]*models.User, error) {
	return nil, nil
}

type fakeBracketRepo struct {
	mu       sync.Mutex
	nextID   int
	brackets map[int]*models.Bracket
	awards   map[string]bool
	users    *fakeUserRepo
}

func newFakeBracketRepo(brackets ...*models.Bracket) *fakeBracketRepo {
	r := &fakeBracketRepo{nextID: 1, brackets: make(map[int]*models.Bracket), awards: make(map[string]bool)}
	for _, b := range brackets {
		if b.ID == 0 {
			b.ID = r.nextID
		}
		if b.ID >= r.nextID {
			r.nextID = b.ID + 1
		}
		r.brackets[b.ID] = b
	}
	return r
}

func (r *fakeBracketRepo) GetByOwner(ctx context.Context, exec repositories.SQLExecutor, userID, tournamentID, leagueScope int) (*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brackets {
		if b.UserID == userID && b.TournamentID == tournamentID && b.LeagueScope == leagueScope {
			return b, nil
		}
	}
	return nil, repositories.ErrBracketNotFound
}

func (r *fakeBracketRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, b *models.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Conflict on the owner tuple only replaces picks; points survive.
	for _, existing := range r.brackets {
		if existing.UserID == b.UserID && existing.TournamentID == b.TournamentID && existing.LeagueScope == b.LeagueScope {
			existing.Picks = b.Picks
			b.ID = existing.ID
			b.Points = existing.Points
			return nil
		}
	}
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	}
	r.brackets[b.ID] = b
	return nil
}

func (r *fakeBracketRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Bracket
	for _, b := range r.brackets {
		if b.TournamentID == tournamentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBracketRepo) AwardForMatch(ctx context.Context, exec repositories.SQLExecutor, bracketID, matchID, delta int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d/%d", bracketID, matchID)
	if r.awards[key] {
		return false, nil
	}
	b, ok := r.brackets[bracketID]
	if !ok {
		return false, repositories.ErrBracketNotFound
	}
	b.Points += delta
	r.awards[key] = true
	return true, nil
}

func (r *fakeBracketRepo) ResetPointsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brackets {
		if b.TournamentID == tournamentID {
			b.Points = 0
			for matchID := range b.Picks {
				delete(r.awards, fmt.Sprintf("%d/%d", b.ID, matchID))
			}
		}
	}
	return nil
}

func (r *fakeBracketRepo) SumPointsByUser(ctx context.Context, exec repositories.SQLExecutor, userID, tournamentID, leagueScope int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.brackets {
		if b.UserID == userID && b.TournamentID == tournamentID && b.LeagueScope == leagueScope {
			total += b.Points
		}
	}
	return total, nil
}

func (r *fakeBracketRepo) TotalsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID, leagueScope int) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]int)
	for _, b := range r.brackets {
		if b.TournamentID == tournamentID && b.LeagueScope == leagueScope && b.Points > 0 && !r.users.isDemo(b.UserID) {
			out[b.UserID] += b.Points
		}
	}
	return out, nil
}

type fakeBonusRepo struct {
	questions map[int]*models.BonusQuestion
	answers   map[string]*models.BonusAnswer
	// pointsByUser feeds the aggregation methods directly.
	pointsByUser map[int]int
	users        *fakeUserRepo
}

func newFakeBonusRepo() *fakeBonusRepo {
	return &fakeBonusRepo{
		questions:    make(map[int]*models.BonusQuestion),
		answers:      make(map[string]*models.BonusAnswer),
		pointsByUser: make(map[int]int),
	}
}

func (r *fakeBonusRepo) GetQuestion(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BonusQuestion, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, repositories.ErrBonusQuestionNotFound
	}
	return q, nil
}

func (r *fakeBonusRepo) ListQuestionsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.BonusQuestion, error) {
	var out []*models.BonusQuestion
	for _, q := range r.questions {
		if q.TournamentID == tournamentID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) CreateQuestion(ctx context.Context, exec repositories.SQLExecutor, q *models.BonusQuestion) error {
	q.ID = len(r.questions) + 1
	r.questions[q.ID] = q
	return nil
}

func (r *fakeBonusRepo) ResolveQuestion(ctx context.Context, exec repositories.SQLExecutor, id int, correctAnswer string, at time.Time) error {
	q, ok := r.questions[id]
	if !ok {
		return repositories.ErrBonusQuestionNotFound
	}
	q.CorrectAnswer = &correctAnswer
	q.ResolvedAt = &at
	return nil
}

func (r *fakeBonusRepo) UpsertAnswer(ctx context.Context, exec repositories.SQLExecutor, a *models.BonusAnswer) error {
	r.answers[fmt.Sprintf("%d/%d", a.QuestionID, a.UserID)] = a
	return nil
}

func (r *fakeBonusRepo) GradeAnswers(ctx context.Context, exec repositories.SQLExecutor, questionID int, correctAnswer string, points int) (int64, error) {
	var graded int64
	for _, a := range r.answers {
		if a.QuestionID != questionID || a.PointsEarned != nil {
			continue
		}
		earned := 0
		if a.Answer == correctAnswer {
			earned = points
		}
		a.PointsEarned = &earned
		graded++
	}
	return graded, nil
}

func (r *fakeBonusRepo) SumPointsByUser(ctx context.Context, exec repositories.SQLExecutor, userID, tournamentID int) (int, error) {
	return r.pointsByUser[userID], nil
}

func (r *fakeBonusRepo) TotalsByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int]int, error) {
	out := make(map[int]int, len(r.pointsByUser))
	for userID, points := range r.pointsByUser {
		if r.users.isDemo(userID) {
			continue
		}
		out[userID] = points
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	user.ID = len(r.users) + 1
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, exec repositories.SQLExecutor, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) isDemo(id int) bool {
	if r == nil {
		return false
	}
	u, ok := r.users[id]
	return ok && u.IsDemo
}

type fakeOverrideRepo struct {
	rows map[string][]*models.GroupStandingsOverride
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{rows: make(map[string][]*models.GroupStandingsOverride)}
}

func overrideKey(tournamentID int, groupLabel string) string {
	return fmt.Sprintf("%d/%s", tournamentID, groupLabel)
}

func (r *fakeOverrideRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string) ([]*models.GroupStandingsOverride, error) {
	return r.rows[overrideKey(tournamentID, groupLabel)], nil
}

func (r *fakeOverrideRepo) ReplaceForGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string, overrides []*models.GroupStandingsOverride) error {
	r.rows[overrideKey(tournamentID, groupLabel)] = overrides
	return nil
}

func (r *fakeOverrideRepo) DeleteForGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string) error {
	delete(r.rows, overrideKey(tournamentID, groupLabel))
	return nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return t, nil
}

func (r *fakeTeamRepo) ListByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]*models.Team, error) {
	out := make(map[int]*models.Team)
	for _, id := range ids {
		if t, ok := r.teams[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = len(r.teams) + 1
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) UpdateFlagKey(ctx context.Context, exec repositories.SQLExecutor, id int, flagKey *string) error {
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.FlagKey = flagKey
	return nil
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
