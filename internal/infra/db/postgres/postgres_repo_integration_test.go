//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"gym-membership/internal/domain"
	"gym-membership/internal/domain/model"
	"gym-membership/internal/domain/ports/repository"
)

func seedUser(t *testing.T, repo *userRepo, name, email string) *model.UserProfile {
	t.Helper()
	u, err := model.NewUserProfile(model.SignUpInput{FullName: name, Email: email, Password: "secret1"}, time.Now())
	if err != nil {
		t.Fatalf("build profile: %v", err)
	}
	if err := repo.Create(context.Background(), nil, u, "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewUserRepo(testPool)

	t.Run("should create, find and update a profile", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, repo, "Ada Lovelace", "ada@example.com")

		got, err := repo.FindByID(ctx, nil, u.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.FirstName != "Ada" || got.LastName != "Lovelace" {
			t.Errorf("unexpected profile %+v", got)
		}

		if err := repo.UpdateProfile(ctx, nil, u.ID, model.ProfileUpdate{FirstName: "Augusta", LastName: "King", FitnessGoals: "run 5k"}); err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		got, _ = repo.FindByID(ctx, nil, u.ID)
		if got.FitnessGoals != "run 5k" || got.Email != "ada@example.com" {
			t.Errorf("update not applied or email changed: %+v", got)
		}
	})

	t.Run("should reject a duplicate email", func(t *testing.T) {
		cleanup(t)
		seedUser(t, repo, "Ada Lovelace", "ada@example.com")
		dup, _ := model.NewUserProfile(model.SignUpInput{FullName: "Other", Email: "ADA@example.com", Password: "secret1"}, time.Now())
		err := repo.Create(ctx, nil, dup, "hash")
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("should return credentials by normalized email", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, repo, "Ada Lovelace", "ada@example.com")
		c, err := repo.FindCredentialsByEmail(ctx, nil, " Ada@Example.com ")
		if err != nil {
			t.Fatalf("FindCredentialsByEmail failed: %v", err)
		}
		if c.UserID != u.ID || c.PasswordHash != "hash" {
			t.Errorf("unexpected credentials %+v", c)
		}
	})
}

func TestRoleRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	users := NewUserRepo(testPool)
	roles := NewRoleRepo(testPool)

	cleanup(t)
	u := seedUser(t, users, "Ada Lovelace", "ada@example.com")

	ok, err := roles.IsAdmin(ctx, nil, u.ID)
	if err != nil || ok {
		t.Fatalf("expected non-admin, got %v %v", ok, err)
	}
	if err := roles.GrantAdmin(ctx, nil, u.ID); err != nil {
		t.Fatalf("GrantAdmin failed: %v", err)
	}
	if err := roles.GrantAdmin(ctx, nil, u.ID); err != nil {
		t.Fatalf("GrantAdmin must be idempotent: %v", err)
	}
	if ok, _ := roles.IsAdmin(ctx, nil, u.ID); !ok {
		t.Fatal("expected admin after grant")
	}
	if err := roles.RevokeAdmin(ctx, nil, u.ID); err != nil {
		t.Fatalf("RevokeAdmin failed: %v", err)
	}
	if ok, _ := roles.IsAdmin(ctx, nil, u.ID); ok {
		t.Fatal("expected non-admin after revoke")
	}
}

func TestSubscriptionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	users := NewUserRepo(testPool)
	repo := NewSubscriptionRepo(testPool)
	tm := NewTxManager(testPool)

	request := func(t *testing.T, u *model.UserProfile, plan string) *model.Subscription {
		t.Helper()
		s, err := model.NewPendingSubscription(u.ID, plan, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.SaveUserCopy(ctx, nil, s); err != nil {
			t.Fatalf("SaveUserCopy failed: %v", err)
		}
		if err := repo.SaveFlatCopy(ctx, nil, &model.FlatSubscription{Subscription: *s, UserName: u.DisplayName(), UserEmail: u.Email}); err != nil {
			t.Fatalf("SaveFlatCopy failed: %v", err)
		}
		return s
	}

	t.Run("should activate both copies with a database timestamp", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, users, "Ada Lovelace", "ada@example.com")
		s := request(t, u, "premium")

		var activated *model.Subscription
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			flat, err := repo.FindFlatForUpdate(ctx, tx, s.ID)
			if err != nil {
				return err
			}
			if err := flat.Activate(time.Now(), 6); err != nil {
				return err
			}
			activated, err = repo.Activate(ctx, tx, &flat.Subscription)
			return err
		})
		if err != nil {
			t.Fatalf("activation failed: %v", err)
		}
		if activated.ApprovedDate == nil {
			t.Fatal("expected approved date from the database")
		}

		userCopy, err := repo.FindUserCopy(ctx, nil, u.ID, s.ID)
		if err != nil {
			t.Fatalf("FindUserCopy failed: %v", err)
		}
		flats, _ := repo.ListFlat(ctx, nil)
		if len(flats) != 1 {
			t.Fatalf("expected one flat row, got %d", len(flats))
		}
		if userCopy.Status != model.SubscriptionStatusActive || flats[0].Status != model.SubscriptionStatusActive {
			t.Errorf("both copies must be active: user=%s flat=%s", userCopy.Status, flats[0].Status)
		}
		if !userCopy.ApprovedDate.Equal(*flats[0].ApprovedDate) {
			t.Error("both copies must carry the same approved date")
		}
		if flats[0].UserEmail != "ada@example.com" {
			t.Errorf("flat copy lost denormalized fields: %+v", flats[0])
		}
	})

	t.Run("should roll back both copies when the transaction fails", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, users, "Ada Lovelace", "ada@example.com")
		s := request(t, u, "basic")
		boom := errors.New("boom")

		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			flat, err := repo.FindFlatForUpdate(ctx, tx, s.ID)
			if err != nil {
				return err
			}
			_ = flat.Activate(time.Now(), 1)
			if _, err := repo.Activate(ctx, tx, &flat.Subscription); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		userCopy, _ := repo.FindUserCopy(ctx, nil, u.ID, s.ID)
		flats, _ := repo.ListFlat(ctx, nil)
		if userCopy.Status != model.SubscriptionStatusPending || flats[0].Status != model.SubscriptionStatusPending {
			t.Error("expected both copies to remain pending after rollback")
		}
	})

	t.Run("should serialize concurrent approvals on the row lock", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, users, "Ada Lovelace", "ada@example.com")
		s := request(t, u, "vip")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
					flat, err := repo.FindFlatForUpdate(ctx, tx, s.ID)
					if err != nil {
						return err
					}
					if err := flat.Activate(time.Now(), 12); err != nil {
						return err
					}
					_, err = repo.Activate(ctx, tx, &flat.Subscription)
					return err
				})
			}(i)
		}
		wg.Wait()

		rejected := 0
		for _, err := range errs {
			if errors.Is(err, domain.ErrInvalidTransition) {
				rejected++
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if rejected != 1 {
			t.Fatalf("expected exactly one rejected approval, got %d", rejected)
		}
	})

	t.Run("should report a malformed id as not found", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, users, "Ada Lovelace", "ada@example.com")

		if _, err := repo.FindUserCopy(ctx, nil, u.ID, "abc"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindUserCopy: expected ErrNotFound, got %v", err)
		}
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			_, err := repo.FindFlatForUpdate(ctx, tx, "abc")
			return err
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindFlatForUpdate: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should require a transaction for row locks", func(t *testing.T) {
		_, err := repo.FindFlatForUpdate(ctx, nil, "00000000-0000-0000-0000-000000000000")
		if !errors.Is(err, domain.ErrInvalidExecContext) {
			t.Fatalf("expected ErrInvalidExecContext, got %v", err)
		}
	})
}

func TestAttendanceRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	users := NewUserRepo(testPool)
	repo := NewAttendanceRepo(testPool)

	cleanup(t)
	u := seedUser(t, users, "Ada Lovelace", "ada@example.com")
	when := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	rec, _ := model.NewAttendanceRecord(u.ID, when, time.UTC)

	for i := 0; i < 2; i++ {
		if err := repo.Mark(ctx, nil, rec); err != nil {
			t.Fatalf("Mark failed: %v", err)
		}
	}
	m := model.MonthOf(when, time.UTC)
	n, err := repo.CountBetween(ctx, nil, u.ID, m.Start, m.End())
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one record, got %d (%v)", n, err)
	}

	removed, err := repo.Unmark(ctx, nil, u.ID, rec.ID)
	if err != nil || !removed {
		t.Fatalf("expected record to be removed, got %v %v", removed, err)
	}
	list, _ := repo.ListBetween(ctx, nil, u.ID, m.Start, m.End())
	if len(list) != 0 {
		t.Fatalf("expected no records after unmark, got %d", len(list))
	}
}
