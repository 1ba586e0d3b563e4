// Package filter narrows a recipe list by text, difficulty, total time and
// publication state.
//
// Compute is a pure function over a snapshot. Engine wraps one snapshot with
// mutable filter controls and recomputes on every change.
package filter

import "github.com/simmerapp/simmer-server/internal/domain"

// Compute returns the recipes passing every active predicate, in input order.
// The publish predicate applies only when publishFilterEnabled is set.
// The input slice is never modified; the result is always a new slice.
func Compute(recipes []domain.RecipeSummary, state State, publishFilterEnabled bool) []domain.RecipeSummary {
	state.mustValidate()

	preds := []Predicate{
		TextPredicate(state.Query),
		DifficultyPredicate(state.Difficulty),
		TimePredicate(state.MaxTotalTime),
	}
	if publishFilterEnabled {
		preds = append(preds, PublishedPredicate(state.PublishStatus))
	}
	match := And(preds...)

	out := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Observer receives the filtered list after each recomputation.
type Observer func(filtered []domain.RecipeSummary)

// Engine holds a fixed snapshot plus filter state.
// It is not safe for concurrent use; create one per request.
type Engine struct {
	recipes        []domain.RecipeSummary
	publishEnabled bool
	state          State
	results        []domain.RecipeSummary
	observer       Observer
}

// NewEngine creates an engine over recipes with every filter disabled.
// The observer, if non-nil, is called once immediately with the unfiltered list.
func NewEngine(recipes []domain.RecipeSummary, publishFilterEnabled bool, observer Observer) *Engine {
	snapshot := make([]domain.RecipeSummary, len(recipes))
	copy(snapshot, recipes)

	e := &Engine{
		recipes:        snapshot,
		publishEnabled: publishFilterEnabled,
		state:          DefaultState(),
		observer:       observer,
	}
	e.recompute()
	return e
}

// SetQuery updates the text query.
func (e *Engine) SetQuery(q string) {
	e.state.Query = q
	e.recompute()
}

// SetDifficulty updates the difficulty level. Panics on an unknown level.
func (e *Engine) SetDifficulty(l Level) {
	e.state.Difficulty = l
	e.recompute()
}

// SetMaxTotalTime updates the time bucket. Panics on an unknown bucket.
func (e *Engine) SetMaxTotalTime(m MaxTime) {
	e.state.MaxTotalTime = m
	e.recompute()
}

// SetPublishStatus updates the publish status. Panics on an unknown status.
func (e *Engine) SetPublishStatus(s PublishStatus) {
	e.state.PublishStatus = s
	e.recompute()
}

// Apply replaces the whole state at once and recomputes a single time.
func (e *Engine) Apply(s State) {
	e.state = s
	e.recompute()
}

// Reset clears every filter.
func (e *Engine) Reset() {
	e.state = DefaultState()
	e.recompute()
}

// State returns the current filter state.
func (e *Engine) State() State {
	return e.state
}

// PublishFilterEnabled reports whether the publish control is in effect.
func (e *Engine) PublishFilterEnabled() bool {
	return e.publishEnabled
}

// Results returns the most recently computed list.
func (e *Engine) Results() []domain.RecipeSummary {
	return e.results
}

// Counts returns how many recipes are shown and how many are in the snapshot.
func (e *Engine) Counts() (shown, total int) {
	return len(e.results), len(e.recipes)
}

func (e *Engine) recompute() {
	e.results = Compute(e.recipes, e.state, e.publishEnabled)
	if e.observer != nil {
		e.observer(e.results)
	}
}
