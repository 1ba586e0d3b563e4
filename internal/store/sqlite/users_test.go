package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := makeTestUser(t, s, "cook@example.com")

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "cook@example.com" {
		t.Errorf("Email: got %q", got.Email)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash: got %q", got.PasswordHash)
	}
	if !got.LastLoginAt.IsZero() {
		t.Errorf("LastLoginAt: expected zero, got %v", got.LastLoginAt)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "Cook@Example.com")

	got, err := s.GetUserByEmail(context.Background(), "cook@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID: got %q, want %q", got.ID, u.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	makeTestUser(t, s, "dup@example.com")

	u := &domain.User{Email: "DUP@example.com", PasswordHash: "x"}
	u.ID = id.MustGenerate(id.User)
	u.InitTimestamps()

	err := s.CreateUser(context.Background(), u)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "cook@example.com")

	u.LastLoginAt = time.Now()
	u.Touch()
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.LastLoginAt.Unix() != u.LastLoginAt.Unix() {
		t.Errorf("LastLoginAt: got %v, want %v", got.LastLoginAt, u.LastLoginAt)
	}

	missing := &domain.User{Email: "x@example.com"}
	missing.ID = "user-missing"
	if err := s.UpdateUser(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "cook@example.com")

	p, err := s.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	p.FullName = "Julia Child"
	p.Username = "julia"
	p.Bio = "Bon appétit"
	p.UpdatedAt = time.Now()
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := s.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.FullName != "Julia Child" || got.Username != "julia" || got.Bio != "Bon appétit" {
		t.Errorf("profile not saved: %+v", got)
	}

	names, err := s.GetDisplayNames(ctx, []string{u.ID})
	if err != nil {
		t.Fatalf("GetDisplayNames: %v", err)
	}
	if names[u.ID] != "Julia Child" {
		t.Errorf("display name: got %q", names[u.ID])
	}
}

func TestSaveProfile_UsernameTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := makeTestUser(t, s, "a@example.com")
	b := makeTestUser(t, s, "b@example.com")

	pa, _ := s.GetProfile(ctx, a.ID)
	pa.Username = "chef"
	if err := s.SaveProfile(ctx, pa); err != nil {
		t.Fatalf("SaveProfile a: %v", err)
	}

	pb, _ := s.GetProfile(ctx, b.ID)
	pb.Username = "CHEF"
	err := s.SaveProfile(ctx, pb)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetDisplayNames_FallsBackToEmail(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "home.cook@example.com")

	names, err := s.GetDisplayNames(context.Background(), []string{u.ID, "user-missing"})
	if err != nil {
		t.Fatalf("GetDisplayNames: %v", err)
	}
	if names[u.ID] != "home.cook" {
		t.Errorf("got %q, want %q", names[u.ID], "home.cook")
	}
	if _, ok := names["user-missing"]; ok {
		t.Errorf("missing user should be omitted")
	}
}

func TestGetProfilesByIDs(t *testing.T) {
	s := newTestStore(t)
	a := makeTestUser(t, s, "a@example.com")
	b := makeTestUser(t, s, "b@example.com")

	got, err := s.GetProfilesByIDs(context.Background(), []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("GetProfilesByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}

	empty, err := s.GetProfilesByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty map, got %v, %v", empty, err)
	}
}
