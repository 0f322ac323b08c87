package services

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/leveling"
	"github.com/studycards/backend/internal/mastery"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTransactor runs fn directly. err is returned instead of running fn.
type fakeTransactor struct {
	calls int
	err   error
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// mockAccountRepository is an in-memory implementation of AccountRepository
type mockAccountRepository struct {
	accounts       map[int]*models.Account
	createErr      error
	getErr         error
	lockErr        error
	updateErr      error
	lockCalls      int
	streakUpdates  int
	counterUpdates int
}

func newMockAccountRepository(accounts ...models.Account) *mockAccountRepository {
	m := &mockAccountRepository{accounts: make(map[int]*models.Account)}
	for _, a := range accounts {
		account := a
		m.accounts[a.UserID] = &account
	}
	return m
}

func (m *mockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.accounts[account.UserID]; ok {
		return fmt.Errorf("account %d: %w", account.UserID, apperrors.ErrAlreadyExists)
	}
	stored := *account
	m.accounts[account.UserID] = &stored
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, userID int) (*models.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.get(userID)
}

func (m *mockAccountRepository) GetByIDForUpdate(ctx context.Context, userID int) (*models.Account, error) {
	m.lockCalls++
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	return m.get(userID)
}

func (m *mockAccountRepository) get(userID int) (*models.Account, error) {
	account, ok := m.accounts[userID]
	if !ok {
		return nil, apperrors.NotFound("account")
	}
	copied := *account
	return &copied, nil
}

func (m *mockAccountRepository) UpdateStreak(ctx context.Context, userID int, streak, longestStreak int, lastActiveDate calendar.Date) error {
	m.streakUpdates++
	if m.updateErr != nil {
		return m.updateErr
	}
	account := m.accounts[userID]
	account.Streak = streak
	account.LongestStreak = longestStreak
	account.LastActiveDate = &lastActiveDate
	return nil
}

func (m *mockAccountRepository) UpdateCounters(ctx context.Context, account *models.Account) error {
	m.counterUpdates++
	if m.updateErr != nil {
		return m.updateErr
	}
	stored := *account
	m.accounts[account.UserID] = &stored
	return nil
}

// mockStudySessionRepository is an in-memory implementation of StudySessionRepository
type mockStudySessionRepository struct {
	sessions      map[int64]*models.StudySession
	nextID        int64
	activity      *models.DayActivity
	completed     map[int]*models.DayActivity
	activeUsers   []int
	createErr     error
	lockErr       error
	completeErr   error
	reassignErr   error
	activityErr   error
	completedErr  error
	listUsersErr  error
	activityCalls int
	completeCalls int
}

func newMockStudySessionRepository(sessions ...models.StudySession) *mockStudySessionRepository {
	m := &mockStudySessionRepository{
		sessions:  make(map[int64]*models.StudySession),
		completed: make(map[int]*models.DayActivity),
	}
	for _, s := range sessions {
		session := s
		m.sessions[s.ID] = &session
		if s.ID > m.nextID {
			m.nextID = s.ID
		}
	}
	return m
}

func (m *mockStudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	session.ID = m.nextID
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *mockStudySessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.StudySession, error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session")
	}
	copied := *session
	return &copied, nil
}

func (m *mockStudySessionRepository) Complete(ctx context.Context, session *models.StudySession) (bool, error) {
	m.completeCalls++
	if m.completeErr != nil {
		return false, m.completeErr
	}
	stored := m.sessions[session.ID]
	if stored.Status != models.SessionStatusInProgress {
		return false, nil
	}
	*stored = *session
	return true, nil
}

func (m *mockStudySessionRepository) Abandon(ctx context.Context, id int64, durationSeconds int, at time.Time) (bool, error) {
	stored := m.sessions[id]
	if stored.Status != models.SessionStatusInProgress {
		return false, nil
	}
	stored.Status = models.SessionStatusAbandoned
	stored.DurationSeconds = durationSeconds
	stored.CompletedAt = &at
	return true, nil
}

func (m *mockStudySessionRepository) ReassignGuestSessions(ctx context.Context, tokenHash string, userID int, migrationID string) (int, error) {
	if m.reassignErr != nil {
		return 0, m.reassignErr
	}
	count := 0
	for _, s := range m.sessions {
		if s.GuestTokenHash == nil || *s.GuestTokenHash != tokenHash || s.UserID != nil || !s.IsGuest {
			continue
		}
		if s.Status == models.SessionStatusAbandoned {
			continue
		}
		owner := userID
		id := migrationID
		s.UserID = &owner
		s.IsGuest = false
		s.MigrationID = &id
		count++
	}
	return count, nil
}

func (m *mockStudySessionRepository) ListByMigrationID(ctx context.Context, migrationID string) ([]models.StudySession, error) {
	var result []models.StudySession
	for _, s := range m.sessions {
		if s.MigrationID != nil && *s.MigrationID == migrationID {
			result = append(result, *s)
		}
	}
	slices.SortFunc(result, func(a, b models.StudySession) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return result, nil
}

func (m *mockStudySessionRepository) SumActivityBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error) {
	m.activityCalls++
	if m.activityErr != nil {
		return nil, m.activityErr
	}
	if m.activity == nil {
		return &models.DayActivity{}, nil
	}
	return m.activity, nil
}

func (m *mockStudySessionRepository) SumCompletedBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error) {
	if m.completedErr != nil {
		return nil, m.completedErr
	}
	if activity, ok := m.completed[userID]; ok {
		return activity, nil
	}
	return &models.DayActivity{}, nil
}

func (m *mockStudySessionRepository) ListUsersWithCompletedBetween(ctx context.Context, start, end time.Time) ([]int, error) {
	if m.listUsersErr != nil {
		return nil, m.listUsersErr
	}
	return m.activeUsers, nil
}

type dailyKey struct {
	userID int
	date   calendar.Date
}

// mockDailyProgressRepository is an in-memory implementation of DailyProgressRepository
type mockDailyProgressRepository struct {
	rows     map[dailyKey]*models.DailyProgress
	addErr   error
	raiseErr map[int]error
	listErr  error
	added    []models.DailyProgress
}

func newMockDailyProgressRepository(rows ...models.DailyProgress) *mockDailyProgressRepository {
	m := &mockDailyProgressRepository{
		rows:     make(map[dailyKey]*models.DailyProgress),
		raiseErr: make(map[int]error),
	}
	for _, r := range rows {
		row := r
		m.rows[dailyKey{r.UserID, r.Date}] = &row
	}
	return m
}

func (m *mockDailyProgressRepository) row(userID int, date calendar.Date) *models.DailyProgress {
	return m.rows[dailyKey{userID, date}]
}

func (m *mockDailyProgressRepository) AddDelta(ctx context.Context, delta *models.DailyProgress) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, *delta)
	key := dailyKey{delta.UserID, delta.Date}
	row, ok := m.rows[key]
	if !ok {
		row = &models.DailyProgress{UserID: delta.UserID, Date: delta.Date}
		m.rows[key] = row
	}
	row.CardsStudied += delta.CardsStudied
	row.CardsLearned += delta.CardsLearned
	row.TimeSpentMinutes += delta.TimeSpentMinutes
	row.XPEarned += delta.XPEarned
	return nil
}

func (m *mockDailyProgressRepository) RaiseTo(ctx context.Context, floor *models.DailyProgress) (bool, error) {
	if err := m.raiseErr[floor.UserID]; err != nil {
		return false, err
	}
	key := dailyKey{floor.UserID, floor.Date}
	row, ok := m.rows[key]
	if !ok {
		copied := *floor
		m.rows[key] = &copied
		return true, nil
	}
	before := *row
	row.CardsStudied = max(row.CardsStudied, floor.CardsStudied)
	row.TimeSpentMinutes = max(row.TimeSpentMinutes, floor.TimeSpentMinutes)
	row.XPEarned = max(row.XPEarned, floor.XPEarned)
	return before != *row, nil
}

func (m *mockDailyProgressRepository) ListRange(ctx context.Context, userID int, from, to calendar.Date) ([]models.DailyProgress, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []models.DailyProgress
	for key, row := range m.rows {
		if key.userID == userID && !key.date.Before(from) && !to.Before(key.date) {
			result = append(result, *row)
		}
	}
	slices.SortFunc(result, func(a, b models.DailyProgress) int {
		return a.Date.DaysSince(b.Date)
	})
	return result, nil
}

type cardKey struct {
	userID int
	cardID int
}

// mockCardProgressRepository is an in-memory implementation of CardProgressRepository
type mockCardProgressRepository struct {
	rows      map[cardKey]models.CardProgress
	lockErr   error
	updateErr error
	lockedIDs [][]int
}

func newMockCardProgressRepository(rows ...models.CardProgress) *mockCardProgressRepository {
	m := &mockCardProgressRepository{rows: make(map[cardKey]models.CardProgress)}
	for _, r := range rows {
		m.rows[cardKey{r.UserID, r.CardID}] = r
	}
	return m
}

func (m *mockCardProgressRepository) LockForUser(ctx context.Context, userID int, cardIDs []int) ([]models.CardProgress, error) {
	m.lockedIDs = append(m.lockedIDs, slices.Clone(cardIDs))
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	result := make([]models.CardProgress, 0, len(cardIDs))
	for _, id := range cardIDs {
		key := cardKey{userID, id}
		row, ok := m.rows[key]
		if !ok {
			row = models.CardProgress{UserID: userID, CardID: id, Status: models.CardStatusNew}
			m.rows[key] = row
		}
		result = append(result, row)
	}
	return result, nil
}

func (m *mockCardProgressRepository) UpdateBatch(ctx context.Context, progress []models.CardProgress) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, p := range progress {
		m.rows[cardKey{p.UserID, p.CardID}] = p
	}
	return nil
}

// testRules returns the default rules: base 100 XP, 10 XP per correct answer, 20 XP bonus,
// mastery at net 2 / 5, UTC dates.
func testRules(t *testing.T) Rules {
	t.Helper()
	curve, err := leveling.NewCurve(100)
	require.NoError(t, err)
	policy, err := mastery.NewThresholdPolicy(2, 5)
	require.NoError(t, err)
	return Rules{
		Curve:              curve,
		Policy:             policy,
		XPPerCorrectAnswer: 10,
		CompletionBonusXP:  20,
		Location:           time.UTC,
	}
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func datePtr(d calendar.Date) *calendar.Date {
	return &d
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
