//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
	"gym-membership/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	CreateFunc                 func(ctx context.Context, tx repository.Tx, u *model.UserProfile, passwordHash string) error
	FindByIDFunc               func(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error)
	FindCredentialsByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error)
	UpdateProfileFunc          func(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error
	ListFunc                   func(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.UserProfile, passwordHash string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, u, passwordHash)
	}
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserProfile, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) FindCredentialsByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Credentials, error) {
	if m.FindCredentialsByEmailFunc != nil {
		return m.FindCredentialsByEmailFunc(ctx, tx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, upd model.ProfileUpdate) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, tx, id, upd)
	}
	return nil
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx) ([]*model.UserProfile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx)
	}
	return nil, nil
}

// ---- Mock RoleRepository ----

type MockRoleRepo struct {
	IsAdminFunc func(ctx context.Context, tx repository.Tx, userID string) (bool, error)
	Calls       int
}

var _ repository.RoleRepository = (*MockRoleRepo)(nil)

func (m *MockRoleRepo) IsAdmin(ctx context.Context, tx repository.Tx, userID string) (bool, error) {
	m.Calls++
	if m.IsAdminFunc != nil {
		return m.IsAdminFunc(ctx, tx, userID)
	}
	return false, nil
}

func (m *MockRoleRepo) GrantAdmin(ctx context.Context, tx repository.Tx, userID string) error {
	return nil
}

func (m *MockRoleRepo) RevokeAdmin(ctx context.Context, tx repository.Tx, userID string) error {
	return nil
}

// ---- In-memory SubscriptionRepository ----

// MockSubscriptionRepo keeps both copies in maps. The *Err fields force failures.
type MockSubscriptionRepo struct {
	mu    sync.Mutex
	Users map[string]*model.Subscription
	Flat  map[string]*model.FlatSubscription

	SaveUserErr error
	SaveFlatErr error
	ListFlatErr error
	ActivateErr error
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{
		Users: map[string]*model.Subscription{},
		Flat:  map[string]*model.FlatSubscription{},
	}
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (m *MockSubscriptionRepo) SaveUserCopy(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveUserErr != nil {
		return m.SaveUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.Users[s.ID] = &c
	return nil
}

func (m *MockSubscriptionRepo) SaveFlatCopy(ctx context.Context, tx repository.Tx, f *model.FlatSubscription) error {
	if m.SaveFlatErr != nil {
		return m.SaveFlatErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *f
	m.Flat[f.ID] = &c
	return nil
}

func (m *MockSubscriptionRepo) FindFlatForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.FlatSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Flat[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *f
	return &c, nil
}

func (m *MockSubscriptionRepo) FindUserCopy(ctx context.Context, tx repository.Tx, userID, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Users[id]
	if !ok || s.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.Users {
		if s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) ListFlat(ctx context.Context, tx repository.Tx) ([]*model.FlatSubscription, error) {
	if m.ListFlatErr != nil {
		return nil, m.ListFlatErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.FlatSubscription, 0, len(m.Flat))
	for _, f := range m.Flat {
		c := *f
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockSubscriptionRepo) Activate(ctx context.Context, tx repository.Tx, s *model.Subscription) (*model.Subscription, error) {
	if m.ActivateErr != nil {
		return nil, m.ActivateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	approved := time.Now()
	out := *s
	out.ApprovedDate = &approved
	u := out
	m.Users[s.ID] = &u
	f := m.Flat[s.ID]
	f.Subscription = out
	return &out, nil
}

func (m *MockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[s.ID].Status = s.Status
	m.Flat[s.ID].Status = s.Status
	return nil
}

// seed stores both copies directly.
func (m *MockSubscriptionRepo) seed(s *model.Subscription, name, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *s
	m.Users[s.ID] = &u
	m.Flat[s.ID] = &model.FlatSubscription{Subscription: *s, UserName: name, UserEmail: email}
}

// ---- In-memory AttendanceRepository ----

type MockAttendanceRepo struct {
	mu   sync.Mutex
	Days map[string]map[string]*model.AttendanceRecord // userID -> dayKey -> record

	CountErrFor map[string]error
}

func NewMockAttendanceRepo() *MockAttendanceRepo {
	return &MockAttendanceRepo{
		Days:        map[string]map[string]*model.AttendanceRecord{},
		CountErrFor: map[string]error{},
	}
}

var _ repository.AttendanceRepository = (*MockAttendanceRepo)(nil)

func (m *MockAttendanceRepo) Mark(ctx context.Context, tx repository.Tx, r *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Days[r.UserID] == nil {
		m.Days[r.UserID] = map[string]*model.AttendanceRecord{}
	}
	if _, ok := m.Days[r.UserID][r.ID]; !ok {
		m.Days[r.UserID][r.ID] = r
	}
	return nil
}

func (m *MockAttendanceRepo) Unmark(ctx context.Context, tx repository.Tx, userID, dayKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Days[userID][dayKey]; !ok {
		return false, nil
	}
	delete(m.Days[userID], dayKey)
	return true, nil
}

func (m *MockAttendanceRepo) ListBetween(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) ([]*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AttendanceRecord
	for _, r := range m.Days[userID] {
		if !r.Date.Before(from) && r.Date.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockAttendanceRepo) CountBetween(ctx context.Context, tx repository.Tx, userID string, from, to time.Time) (int, error) {
	if err := m.CountErrFor[userID]; err != nil {
		return 0, err
	}
	list, _ := m.ListBetween(ctx, tx, userID, from, to)
	return len(list), nil
}

// ---- In-memory SessionRepository ----

type MockSessionRepo struct {
	mu       sync.Mutex
	Sessions map[string]*model.Session
}

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{Sessions: map[string]*model.Session{}}
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func (m *MockSessionRepo) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[s.ID] = s
	return nil
}

func (m *MockSessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *MockSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, id)
	return nil
}

// ---- Mock RateLimiter ----

type MockRateLimiter struct {
	mu     sync.Mutex
	Limit  int // 0 means unlimited
	Counts map[string]int
	Err    error
}

func NewMockRateLimiter(limit int) *MockRateLimiter {
	return &MockRateLimiter{Limit: limit, Counts: map[string]int{}}
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts[key]++
	max := limit
	if m.Limit > 0 {
		max = m.Limit
	}
	return m.Counts[key] <= max, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

var _ repository.Locker = (*MockLocker)(nil)

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrBusy
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

func (l *MockLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// =============================
// Adapters
// =============================

// ---- Mock AIServiceAdapter ----

type MockAI struct {
	mu       sync.Mutex
	Requests []adapter.StructuredRequest

	GenerateJSONFunc func(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error)
	CountTokensFunc  func(ctx context.Context, model string, messages []adapter.Message) (int, error)
	Counted          [][]adapter.Message
}

var _ adapter.AIServiceAdapter = (*MockAI)(nil)

func (m *MockAI) ListModels(ctx context.Context) ([]string, error) { return []string{"mock"}, nil }

func (m *MockAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (m *MockAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	m.mu.Lock()
	m.Counted = append(m.Counted, messages)
	m.mu.Unlock()
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, model, messages)
	}
	return len(messages), nil
}

func (m *MockAI) GenerateJSON(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, req)
	}
	return "", adapter.Usage{}, errors.New("no response configured")
}

func (m *MockAI) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// ---- Mock TokenIssuer ----

// MockTokens issues "tok-<sessionID>".
type MockTokens struct{}

var _ adapter.TokenIssuer = MockTokens{}

func (MockTokens) Issue(s *model.Session) (string, error) { return "tok-" + s.ID, nil }

func (MockTokens) Parse(token string) (string, error) {
	if len(token) <= 4 || token[:4] != "tok-" {
		return "", domain.ErrAuth
	}
	return token[4:], nil
}

// ---- Mock PasswordHasher ----

// MockHasher stores "hashed:<password>".
type MockHasher struct{}

func (MockHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (MockHasher) Verify(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrAuth
	}
	return nil
}

// ---- Mock report writer ----

type MockReport struct {
	Rows []model.AttendanceSummary
}

func (m *MockReport) ContentType() string { return "text/plain" }
func (m *MockReport) FileName(month model.Month) string { return "report.txt" }

func (m *MockReport) WriteAttendance(w io.Writer, month model.Month, rows []model.AttendanceSummary) error {
	m.Rows = rows
	_, err := io.WriteString(w, month.String())
	return err
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func profile(id, first, last, email string) *model.UserProfile {
	return &model.UserProfile{ID: id, FirstName: first, LastName: last, Email: email}
}
