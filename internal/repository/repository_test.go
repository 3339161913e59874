package repository

import (
	"context"
	"testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return repo
}

func TestGetUserUnknown(t *testing.T) {
	repo := newTestRepo(t)

	user, err := repo.GetUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for unknown user, got %+v", user)
	}
}

func TestCreateUserIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, 1, "ali", "Ali"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repo.CreateUser(ctx, 1, "ali_new", "Alisher"); err != nil {
		t.Fatalf("re-create user: %v", err)
	}

	user, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user == nil {
		t.Fatal("user not found")
	}
	if user.FirstName != "Ali" {
		t.Errorf("first contact data overwritten: first name = %q", user.FirstName)
	}
	if user.State != "NEW" {
		t.Errorf("new user state = %q, want NEW", user.State)
	}
	if user.Language != "uz_latin" {
		t.Errorf("default language = %q, want uz_latin", user.Language)
	}
}

func TestUserUpdates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, 1, "ali", "Ali"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repo.UpdateUserLanguage(ctx, 1, "ru"); err != nil {
		t.Fatalf("update language: %v", err)
	}
	if err := repo.UpdateUserDailyPlan(ctx, 1, 5000); err != nil {
		t.Fatalf("update daily plan: %v", err)
	}
	if err := repo.UpdateUserDisplayName(ctx, 1, "Abdulloh", true); err != nil {
		t.Fatalf("update display name: %v", err)
	}
	if err := repo.UpdateUserState(ctx, 1, "IN_MARATHON"); err != nil {
		t.Fatalf("update state: %v", err)
	}

	user, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Language != "ru" || user.DailyPlan != 5000 || user.DisplayName != "Abdulloh" ||
		!user.IsAnonymous || user.State != "IN_MARATHON" {
		t.Errorf("unexpected user after updates: %+v", user)
	}
}

func TestAllUsersAndCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := repo.CreateUser(ctx, i, "", "User"); err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
	}

	users, err := repo.AllUsers(ctx)
	if err != nil {
		t.Fatalf("all users: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("len(AllUsers) = %d, want 3", len(users))
	}

	n, err := repo.TotalUsersCount(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 3 {
		t.Errorf("TotalUsersCount = %d, want 3", n)
	}
}
