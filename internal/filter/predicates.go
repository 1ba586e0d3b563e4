package filter

import (
	"fmt"
	"strings"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// Predicate decides whether a recipe stays in the filtered list.
type Predicate func(domain.RecipeSummary) bool

// TextPredicate matches the query against title and description, ignoring case.
// A query that is blank after trimming matches everything.
func TextPredicate(query string) Predicate {
	if strings.TrimSpace(query) == "" {
		return matchAll
	}
	q := strings.ToLower(query)
	return func(r domain.RecipeSummary) bool {
		if strings.Contains(strings.ToLower(r.Title), q) {
			return true
		}
		return r.Description != "" && strings.Contains(strings.ToLower(r.Description), q)
	}
}

// DifficultyPredicate keeps recipes whose difficulty equals level.
// Recipes without a difficulty only pass LevelAll.
func DifficultyPredicate(level Level) Predicate {
	if !level.Valid() {
		panic(fmt.Sprintf("filter: invalid difficulty %q", level))
	}
	if level == LevelAll {
		return matchAll
	}
	return func(r domain.RecipeSummary) bool {
		return r.Difficulty == domain.Difficulty(level)
	}
}

// TimePredicate keeps recipes with 0 < total time <= limit.
// Recipes with no recorded time never pass a bounded bucket.
func TimePredicate(limit MaxTime) Predicate {
	if !limit.Valid() {
		panic(fmt.Sprintf("filter: invalid max total time %d", limit))
	}
	if limit == TimeAny {
		return matchAll
	}
	return func(r domain.RecipeSummary) bool {
		total := r.TotalTime()
		return total > 0 && total <= int(limit)
	}
}

// PublishedPredicate keeps published or draft recipes.
func PublishedPredicate(status PublishStatus) Predicate {
	if !status.Valid() {
		panic(fmt.Sprintf("filter: invalid publish status %q", status))
	}
	if status == StatusAll {
		return matchAll
	}
	want := status == StatusPublished
	return func(r domain.RecipeSummary) bool {
		return r.IsPublished == want
	}
}

// And combines predicates; the result holds when all of them do.
func And(preds ...Predicate) Predicate {
	return func(r domain.RecipeSummary) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func matchAll(domain.RecipeSummary) bool { return true }
