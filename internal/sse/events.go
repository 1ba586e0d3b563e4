// Package sse implements Server-Sent Events for live recipe updates.
// Recipe pages subscribe with ?recipe_id=... and receive like count changes
// and new comments for that recipe only.
package sse

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventLikesChanged is sent after a like toggle with the fresh count.
	EventLikesChanged EventType = "recipe.likes_changed"
	// EventRecipePublished is sent when a draft becomes visible to everyone.
	EventRecipePublished EventType = "recipe.published"
	// EventRecipeDeleted is sent when an author deletes a recipe.
	EventRecipeDeleted EventType = "recipe.deleted"
	// EventCommentAdded is sent when someone comments on a recipe.
	EventCommentAdded EventType = "recipe.comment_added"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
	// EventConnected is the first event written on every stream.
	EventConnected EventType = "connected"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Routing only, never sent. Empty goes to every client.
	RecipeID string `json:"-"`
}

func newEvent(t EventType, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// LikesChangedEventData is the data payload for like count events.
type LikesChangedEventData struct {
	RecipeID  string `json:"recipe_id"`
	LikeCount int    `json:"like_count"`
	ActorID   string `json:"actor_id"`
	Liked     bool   `json:"liked"`
}

// RecipePublishedEventData is the data payload for publish events.
type RecipePublishedEventData struct {
	Recipe domain.RecipeSummary `json:"recipe"`
}

// RecipeDeletedEventData is the data payload for delete events.
type RecipeDeletedEventData struct {
	RecipeID  string    `json:"recipe_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// CommentAddedEventData is the data payload for new comments.
type CommentAddedEventData struct {
	Comment *domain.Comment `json:"comment"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// ConnectedEventData tells the client its connection ID and subscription.
type ConnectedEventData struct {
	ClientID string `json:"client_id"`
	RecipeID string `json:"recipe_id,omitempty"`
}

// NewLikesChangedEvent creates a recipe.likes_changed event routed to watchers of recipeID.
func NewLikesChangedEvent(recipeID string, count int, actorID string, liked bool) Event {
	e := newEvent(EventLikesChanged, LikesChangedEventData{
		RecipeID:  recipeID,
		LikeCount: count,
		ActorID:   actorID,
		Liked:     liked,
	})
	e.RecipeID = recipeID
	return e
}

// NewRecipePublishedEvent creates a recipe.published event for all clients.
func NewRecipePublishedEvent(recipe domain.RecipeSummary) Event {
	return newEvent(EventRecipePublished, RecipePublishedEventData{Recipe: recipe})
}

// NewRecipeDeletedEvent creates a recipe.deleted event routed to watchers of recipeID.
func NewRecipeDeletedEvent(recipeID string) Event {
	e := newEvent(EventRecipeDeleted, RecipeDeletedEventData{RecipeID: recipeID, DeletedAt: time.Now()})
	e.RecipeID = recipeID
	return e
}

// NewCommentAddedEvent creates a recipe.comment_added event routed to watchers of the recipe.
func NewCommentAddedEvent(comment *domain.Comment) Event {
	e := newEvent(EventCommentAdded, CommentAddedEventData{Comment: comment})
	e.RecipeID = comment.RecipeID
	return e
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}
