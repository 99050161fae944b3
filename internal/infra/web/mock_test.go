//go:build !integration

package web_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/infra/i18n"
	"gym-membership/internal/infra/report"
	"gym-membership/internal/infra/web"
	"gym-membership/internal/usecase"
)

// --- Mock use cases ---

type fakeAccounts struct {
	mu       sync.Mutex
	sessions map[string]*model.Session // token -> session
	signOuts []string

	SignUpFunc func(ctx context.Context, in model.SignUpInput) (*model.UserProfile, error)
	SignInFunc func(ctx context.Context, email, password string) (*model.Session, string, error)
	UpdateFunc func(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error)
}

var _ usecase.AccountUseCase = (*fakeAccounts)(nil)

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{sessions: map[string]*model.Session{}}
}

// login registers a live session and returns its token.
func (f *fakeAccounts) login(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := "token-" + userID
	f.sessions[tok] = &model.Session{ID: "sess-" + userID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	return tok
}

func (f *fakeAccounts) SignUp(ctx context.Context, in model.SignUpInput) (*model.UserProfile, error) {
	if f.SignUpFunc != nil {
		return f.SignUpFunc(ctx, in)
	}
	return model.NewUserProfile(in, time.Now())
}

func (f *fakeAccounts) SignIn(ctx context.Context, email, password string) (*model.Session, string, error) {
	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, email, password)
	}
	return nil, "", domain.ErrAuth
}

func (f *fakeAccounts) SignOut(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, sessionID)
	for tok, s := range f.sessions {
		if s.ID == sessionID {
			delete(f.sessions, tok)
		}
	}
	return nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrAuth
	}
	return s, nil
}

func (f *fakeAccounts) Session(ctx context.Context, token string) (*model.SessionView, error) {
	s, err := f.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &model.SessionView{ID: s.UserID, DisplayName: "Ada Lovelace", Email: "ada@example.com"}, nil
}

func (f *fakeAccounts) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	return &model.UserProfile{ID: userID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error) {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, userID, upd)
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	return &model.UserProfile{ID: userID, FirstName: upd.FirstName, LastName: upd.LastName, FitnessGoals: upd.FitnessGoals}, nil
}

type fakeMemberships struct {
	Tier        model.Tier
	ApproveFunc func(ctx context.Context, subID, userID, planID string) (*model.Subscription, error)
	RequestFunc func(ctx context.Context, userID, planID string) (*model.Subscription, error)
	CancelFunc  func(ctx context.Context, subID, userID string) error
	ReceiptFunc func(ctx context.Context, userID, subID string) (*model.Receipt, error)
	Cancelled   []string
}

var _ usecase.MembershipUseCase = (*fakeMemberships)(nil)

func (f *fakeMemberships) Plans() []model.MembershipPlan { return model.Catalog() }

func (f *fakeMemberships) RequestSubscription(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	if f.RequestFunc != nil {
		return f.RequestFunc(ctx, userID, planID)
	}
	return model.NewPendingSubscription(userID, planID, time.Now())
}

func (f *fakeMemberships) ApproveSubscription(ctx context.Context, subID, userID, planID string) (*model.Subscription, error) {
	if f.ApproveFunc != nil {
		return f.ApproveFunc(ctx, subID, userID, planID)
	}
	return &model.Subscription{ID: subID, UserID: userID, MembershipPlanID: planID, Status: model.SubscriptionStatusActive}, nil
}

func (f *fakeMemberships) CancelSubscription(ctx context.Context, subID, userID string) error {
	if f.CancelFunc != nil {
		return f.CancelFunc(ctx, subID, userID)
	}
	f.Cancelled = append(f.Cancelled, subID)
	return nil
}

func (f *fakeMemberships) ListForAdmin(ctx context.Context, now time.Time) ([]*model.FlatSubscription, error) {
	return nil, nil
}

func (f *fakeMemberships) ListForUser(ctx context.Context, userID string, now time.Time) ([]*model.Subscription, error) {
	return nil, nil
}

func (f *fakeMemberships) Receipt(ctx context.Context, userID, subID string) (*model.Receipt, error) {
	if f.ReceiptFunc != nil {
		return f.ReceiptFunc(ctx, userID, subID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberships) HighestActiveTier(ctx context.Context, userID string, now time.Time) (model.Tier, error) {
	if f.Tier == "" {
		return model.TierBasic, nil
	}
	return f.Tier, nil
}

func (f *fakeMemberships) CountByStatus(ctx context.Context, now time.Time) (map[model.SubscriptionStatus]int, error) {
	return map[model.SubscriptionStatus]int{}, nil
}

type fakeAttendance struct {
	Marked []time.Time
	Rows   []model.AttendanceSummary
	Err    error
}

var _ usecase.AttendanceUseCase = (*fakeAttendance)(nil)

func (f *fakeAttendance) Location() *time.Location { return time.UTC }

func (f *fakeAttendance) Mark(ctx context.Context, userID string, day time.Time) (*model.AttendanceRecord, error) {
	f.Marked = append(f.Marked, day)
	return model.NewAttendanceRecord(userID, day, time.UTC)
}

func (f *fakeAttendance) Unmark(ctx context.Context, userID string, day time.Time) (bool, error) {
	return true, nil
}

func (f *fakeAttendance) ListMonth(ctx context.Context, userID string, month model.Month) ([]*model.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendance) MonthlySummary(ctx context.Context, month model.Month) ([]model.AttendanceSummary, error) {
	return f.Rows, f.Err
}

func (f *fakeAttendance) ExportMonthlySummary(ctx context.Context, month model.Month, w io.Writer) error {
	if f.Err != nil {
		return f.Err
	}
	return report.NewAttendanceXLSX().WriteAttendance(w, month, f.Rows)
}

type fakeWorkouts struct {
	Got          model.WorkoutPlanRequest
	GenerateFunc func(ctx context.Context, userID string, req model.WorkoutPlanRequest) (*model.WorkoutPlan, error)
}

func (f *fakeWorkouts) Generate(ctx context.Context, userID string, req model.WorkoutPlanRequest) (*model.WorkoutPlan, error) {
	f.Got = req
	if f.GenerateFunc != nil {
		return f.GenerateFunc(ctx, userID, req)
	}
	return &model.WorkoutPlan{Title: "Plan", WeeklySchedule: []model.WorkoutDay{{Day: "Mon", Focus: "All", Exercises: []model.Exercise{{Name: "Squat", Sets: "3", Reps: "10", Rest: "60s"}}}}}, nil
}

type fakeGate struct {
	admins map[string]bool
	down   bool
	calls  int
}

func (g *fakeGate) Check(ctx context.Context, userID string) usecase.Decision {
	g.calls++
	switch {
	case userID == "":
		return usecase.DecisionUnauthenticated
	case g.down:
		return usecase.DecisionUnavailable
	case g.admins[userID]:
		return usecase.DecisionAuthorized
	default:
		return usecase.DecisionUnauthorized
	}
}

// --- harness ---

type harness struct {
	accounts    *fakeAccounts
	memberships *fakeMemberships
	attendance  *fakeAttendance
	workouts    *fakeWorkouts
	gate        *fakeGate
	auth        *web.AuthManager
	handler     http.Handler
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newHarness(t *testing.T) *harness {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	h := &harness{
		accounts:    newFakeAccounts(),
		memberships: &fakeMemberships{},
		attendance:  &fakeAttendance{},
		workouts:    &fakeWorkouts{},
		gate:        &fakeGate{admins: map[string]bool{}},
		auth:        web.NewAuthManager(testSecret, "gym_session", false, ""),
	}
	logger := zerolog.Nop()
	srv := web.NewServer(h.accounts, h.memberships, h.attendance, h.workouts, h.gate,
		report.NewAttendanceXLSX(), h.auth, tr, web.Options{}, &logger)
	h.handler = srv.Routes()
	return h
}

func (h *harness) do(method, path, token string, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func serve(h *harness, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}
