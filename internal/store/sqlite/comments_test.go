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

func makeTestComment(t *testing.T, s *Store, recipeID, userID, content string) *domain.Comment {
	t.Helper()
	now := time.Now()
	c := &domain.Comment{
		ID:        id.MustGenerate(id.Comment),
		RecipeID:  recipeID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	return c
}

func TestCreateAndListComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := makeTestUser(t, s, "author@example.com")
	fan := makeTestUser(t, s, "fan@example.com")

	p, _ := s.GetProfile(ctx, fan.ID)
	p.FullName = "Big Fan"
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	r := makeTestRecipe(t, s, author.ID, "Stew", true)
	first := makeTestComment(t, s, r.ID, fan.ID, "Looks great")
	second := makeTestComment(t, s, r.ID, author.ID, "Thanks!")

	comments, err := s.ListComments(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != first.ID || comments[1].ID != second.ID {
		t.Errorf("expected oldest first")
	}
	if comments[0].AuthorName != "Big Fan" {
		t.Errorf("AuthorName: got %q", comments[0].AuthorName)
	}
	if comments[1].AuthorName != "author" {
		t.Errorf("AuthorName fallback: got %q", comments[1].AuthorName)
	}
}

func TestUpdateAndDeleteComment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "cook@example.com")
	r := makeTestRecipe(t, s, u.ID, "Stew", true)
	c := makeTestComment(t, s, r.ID, u.ID, "first draft")

	c.Content = "edited"
	c.UpdatedAt = time.Now().Add(time.Minute)
	if err := s.UpdateComment(ctx, c); err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	got, err := s.GetComment(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetComment: %v", err)
	}
	if got.Content != "edited" || !got.IsEdited() {
		t.Errorf("unexpected comment: %+v", got)
	}

	if err := s.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if err := s.DeleteComment(ctx, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestCreateComment_MissingRecipe(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "cook@example.com")

	c := &domain.Comment{
		ID:        id.MustGenerate(id.Comment),
		RecipeID:  "recipe-missing",
		UserID:    u.ID,
		Content:   "hello",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.CreateComment(context.Background(), c); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
