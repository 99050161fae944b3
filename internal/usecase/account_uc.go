package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/adapter"
	"gym-membership/internal/domain/ports/repository"
	"gym-membership/internal/infra/logging"
	"gym-membership/internal/infra/metrics"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase covers sign-up, sign-in and the member's own profile.
type AccountUseCase interface {
	SignUp(ctx context.Context, in model.SignUpInput) (*model.UserProfile, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, string, error)
	SignOut(ctx context.Context, sessionID string) error
	// Authenticate resolves a bearer token to its live session.
	Authenticate(ctx context.Context, token string) (*model.Session, error)
	Session(ctx context.Context, token string) (*model.SessionView, error)
	Profile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error)
}

// PasswordHasher hashes and checks passwords. Verify returns domain.ErrAuth on mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

type AccountOptions struct {
	SessionTTL  time.Duration
	LoginLimit  int
	LoginWindow time.Duration
	Dev         bool
}

type accountUC struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	limiter  repository.RateLimiter
	hasher   PasswordHasher
	tokens   adapter.TokenIssuer
	opts     AccountOptions
	log      *zerolog.Logger
}

func NewAccountUseCase(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	limiter repository.RateLimiter,
	hasher PasswordHasher,
	tokens adapter.TokenIssuer,
	opts AccountOptions,
	logger *zerolog.Logger,
) *accountUC {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.LoginLimit <= 0 {
		opts.LoginLimit = 10
	}
	if opts.LoginWindow <= 0 {
		opts.LoginWindow = 15 * time.Minute
	}
	return &accountUC{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		hasher:   hasher,
		tokens:   tokens,
		opts:     opts,
		log:      logger,
	}
}

func loginKey(email string) string { return fmt.Sprintf("rate_limit:login:%s", email) }

func (u *accountUC) SignUp(ctx context.Context, in model.SignUpInput) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "AccountUC.SignUp")()

	profile, err := model.NewUserProfile(in, time.Now())
	if err != nil {
		return nil, err
	}
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	if err := u.users.Create(ctx, repository.NoTX, profile, hash); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			u.log.Error().Err(err).Str("email", logging.Redact(profile.Email, u.opts.Dev)).Msg("create user failed")
		}
		return nil, err
	}
	u.log.Info().Str("user_id", profile.ID).Msg("member signed up")
	return profile, nil
}

// SignIn checks credentials and opens a session. Attempts are rate limited per
// email, successful or not.
func (u *accountUC) SignIn(ctx context.Context, email, password string) (*model.Session, string, error) {
	defer logging.TraceDuration(u.log, "AccountUC.SignIn")()

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domain.ErrAuth
	}

	ok, err := u.limiter.Allow(ctx, loginKey(email), u.opts.LoginLimit, u.opts.LoginWindow)
	if err != nil {
		return nil, "", err
	}
	metrics.IncRateLimit("login", ok)
	if !ok {
		return nil, "", domain.ErrRateLimited
	}

	creds, err := u.users.FindCredentialsByEmail(ctx, repository.NoTX, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrAuth
	}
	if err != nil {
		return nil, "", err
	}
	if err := u.hasher.Verify(creds.PasswordHash, password); err != nil {
		return nil, "", domain.ErrAuth
	}

	now := time.Now()
	sess := &model.Session{
		ID:        ulid.Make().String(),
		UserID:    creds.UserID,
		Email:     creds.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.SessionTTL),
	}
	token, err := u.tokens.Issue(sess)
	if err != nil {
		return nil, "", err
	}
	if err := u.sessions.Create(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

func (u *accountUC) SignOut(ctx context.Context, sessionID string) error {
	defer logging.TraceDuration(u.log, "AccountUC.SignOut")()
	if sessionID == "" {
		return nil
	}
	return u.sessions.Delete(ctx, sessionID)
}

func (u *accountUC) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, domain.ErrAuth
	}
	id, err := u.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrAuth
	}
	sess, err := u.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAuth
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrAuth
	}
	return sess, nil
}

func (u *accountUC) Session(ctx context.Context, token string) (*model.SessionView, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Session")()

	sess, err := u.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	p, err := u.users.FindByID(ctx, repository.NoTX, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &model.SessionView{
		ID:          p.ID,
		DisplayName: p.DisplayName(),
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}, nil
}

func (u *accountUC) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Profile")()
	return u.users.FindByID(ctx, repository.NoTX, userID)
}

// UpdateProfile edits names and goals; the email is never touched.
func (u *accountUC) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error) {
	defer logging.TraceDuration(u.log, "AccountUC.UpdateProfile")()

	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if err := u.users.UpdateProfile(ctx, repository.NoTX, userID, upd); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, repository.NoTX, userID)
}
