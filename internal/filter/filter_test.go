package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
)

func recipe(id, title string, opts ...func(*domain.RecipeSummary)) domain.RecipeSummary {
	r := domain.RecipeSummary{ID: id, Title: title, IsPublished: true, CreatedAt: time.Now()}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func withDesc(d string) func(*domain.RecipeSummary) {
	return func(r *domain.RecipeSummary) { r.Description = d }
}

func withTimes(prep, cook int) func(*domain.RecipeSummary) {
	return func(r *domain.RecipeSummary) {
		r.PrepTimeMinutes = domain.IntPtr(prep)
		r.CookTimeMinutes = domain.IntPtr(cook)
	}
}

func withDifficulty(d domain.Difficulty) func(*domain.RecipeSummary) {
	return func(r *domain.RecipeSummary) { r.Difficulty = d }
}

func draft(r *domain.RecipeSummary) { r.IsPublished = false }

func sampleRecipes() []domain.RecipeSummary {
	return []domain.RecipeSummary{
		recipe("r1", "One-Pot Creamy Tuscan Pasta", withTimes(10, 20), withDifficulty(domain.DifficultyEasy)),
		recipe("r2", "Garlic Bread", withDesc("Tuscan-style, crisp and buttery"), withTimes(5, 10), withDifficulty(domain.DifficultyEasy)),
		recipe("r3", "Beef Wellington", withTimes(60, 90), withDifficulty(domain.DifficultyHard)),
		recipe("r4", "Overnight Oats", withDifficulty(domain.DifficultyEasy), draft),
		recipe("r5", "Risotto", withTimes(10, 35), withDifficulty(domain.DifficultyMedium), draft),
		recipe("r6", "Mystery Dish"),
	}
}

func ids(rs []domain.RecipeSummary) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func isSubsequence(sub, full []string) bool {
	i := 0
	for _, id := range full {
		if i < len(sub) && sub[i] == id {
			i++
		}
	}
	return i == len(sub)
}

func allStates() []State {
	var states []State
	for _, q := range []string{"", "tuscan", "  ", "oats", "zzz"} {
		for _, l := range Levels {
			for _, m := range MaxTimes {
				for _, s := range Statuses {
					states = append(states, State{Query: q, Difficulty: l, MaxTotalTime: m, PublishStatus: s})
				}
			}
		}
	}
	return states
}

func TestCompute_IsOrderPreservingSubsequence(t *testing.T) {
	rs := sampleRecipes()
	for _, st := range allStates() {
		for _, publish := range []bool{false, true} {
			got := Compute(rs, st, publish)
			assert.True(t, isSubsequence(ids(got), ids(rs)), "state %+v", st)
		}
	}
}

func TestCompute_IdentityWhenUnfiltered(t *testing.T) {
	rs := sampleRecipes()
	assert.Equal(t, rs, Compute(rs, DefaultState(), true))
	assert.Equal(t, rs, Compute(rs, DefaultState(), false))
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	rs := sampleRecipes()
	before := ids(rs)

	got := Compute(rs, State{Query: "tuscan", Difficulty: LevelAll, MaxTotalTime: TimeAny, PublishStatus: StatusAll}, false)
	require.NotEmpty(t, got)
	got[0].Title = "changed"

	assert.Equal(t, before, ids(rs))
	assert.Equal(t, "One-Pot Creamy Tuscan Pasta", rs[0].Title)
}

func TestCompute_Composition(t *testing.T) {
	rs := sampleRecipes()
	easy := State{Difficulty: Level(domain.DifficultyEasy), MaxTotalTime: TimeAny, PublishStatus: StatusAll}
	quick := State{Difficulty: LevelAll, MaxTotalTime: Time30, PublishStatus: StatusAll}
	both := State{Difficulty: Level(domain.DifficultyEasy), MaxTotalTime: Time30, PublishStatus: StatusAll}

	stepwise := Compute(Compute(rs, easy, false), quick, false)
	combined := Compute(rs, both, false)

	assert.Equal(t, ids(combined), ids(stepwise))
	assert.Equal(t, []string{"r1", "r2"}, ids(combined))
}

func TestTimePredicate_Boundary(t *testing.T) {
	exact := recipe("a", "Exact", withTimes(10, 5))
	none := recipe("b", "No times")
	over := recipe("c", "Over", withTimes(10, 6))
	prepOnly := domain.RecipeSummary{ID: "d", Title: "Prep", PrepTimeMinutes: domain.IntPtr(12)}

	p := TimePredicate(Time15)
	assert.True(t, p(exact), "total 15 passes bucket 15")
	assert.False(t, p(none), "total 0 is excluded")
	assert.False(t, p(over))
	assert.True(t, p(prepOnly), "absent cook time counts as zero")
	assert.True(t, TimePredicate(TimeAny)(none))
}

func TestTextPredicate(t *testing.T) {
	rs := sampleRecipes()

	got := Compute(rs, State{Query: "tuscan", Difficulty: LevelAll, PublishStatus: StatusAll}, false)
	assert.Equal(t, []string{"r1", "r2"}, ids(got), "matches title and description")

	got = Compute(rs, State{Query: "TUSCAN", Difficulty: LevelAll, PublishStatus: StatusAll}, false)
	assert.Equal(t, []string{"r1", "r2"}, ids(got))

	assert.True(t, TextPredicate("   ")(rs[5]))
	assert.False(t, TextPredicate("pasta")(rs[5]))
}

func TestDifficultyPredicate(t *testing.T) {
	rs := sampleRecipes()

	got := Compute(rs, State{Difficulty: Level(domain.DifficultyHard), PublishStatus: StatusAll}, false)
	assert.Equal(t, []string{"r3"}, ids(got))

	assert.False(t, DifficultyPredicate(Level(domain.DifficultyEasy))(rs[5]), "missing difficulty only passes All")
}

func TestPublishedPredicate_OnlyWhenEnabled(t *testing.T) {
	rs := sampleRecipes()
	drafts := State{Difficulty: LevelAll, PublishStatus: StatusDraft}

	assert.Equal(t, []string{"r4", "r5"}, ids(Compute(rs, drafts, true)))
	assert.Len(t, Compute(rs, drafts, false), len(rs), "ignored when disabled")

	published := State{Difficulty: LevelAll, PublishStatus: StatusPublished}
	assert.Equal(t, []string{"r1", "r2", "r3", "r6"}, ids(Compute(rs, published, true)))
}

func TestCompute_PanicsOnUnknownEnum(t *testing.T) {
	rs := sampleRecipes()
	assert.Panics(t, func() {
		Compute(rs, State{Difficulty: "Extreme", PublishStatus: StatusAll}, false)
	})
	assert.Panics(t, func() {
		Compute(rs, State{Difficulty: LevelAll, MaxTotalTime: 45, PublishStatus: StatusAll}, false)
	})
	assert.Panics(t, func() {
		Compute(rs, State{Difficulty: LevelAll, PublishStatus: "Archived"}, true)
	})
}

func TestEngine(t *testing.T) {
	rs := sampleRecipes()
	var notifications [][]string

	e := NewEngine(rs, true, func(filtered []domain.RecipeSummary) {
		notifications = append(notifications, ids(filtered))
	})
	require.Len(t, notifications, 1)
	shown, total := e.Counts()
	assert.Equal(t, 6, shown)
	assert.Equal(t, 6, total)

	e.SetDifficulty(Level(domain.DifficultyEasy))
	assert.Equal(t, []string{"r1", "r2", "r4"}, ids(e.Results()))

	e.SetPublishStatus(StatusDraft)
	assert.Equal(t, []string{"r4"}, ids(e.Results()))

	e.SetQuery("pasta")
	assert.Empty(t, e.Results())
	shown, total = e.Counts()
	assert.Equal(t, 0, shown)
	assert.Equal(t, 6, total)

	e.Reset()
	assert.Equal(t, ids(rs), ids(e.Results()))
	assert.Equal(t, DefaultState(), e.State())
	assert.Len(t, notifications, 5, "one notification per change")
	assert.Equal(t, ids(rs), notifications[len(notifications)-1])
}

func TestEngine_SnapshotIsFixed(t *testing.T) {
	rs := sampleRecipes()
	e := NewEngine(rs, false, nil)

	rs[0].Title = "Changed"
	e.SetQuery("tuscan")
	assert.Equal(t, []string{"r1", "r2"}, ids(e.Results()))
}

func TestEngine_SetterPanicsOnUnknownBucket(t *testing.T) {
	e := NewEngine(sampleRecipes(), false, nil)
	assert.Panics(t, func() { e.SetMaxTotalTime(45) })
}

func TestParseState(t *testing.T) {
	st, err := ParseState("pasta", "medium", "30", "draft")
	require.NoError(t, err)
	assert.Equal(t, State{Query: "pasta", Difficulty: Level(domain.DifficultyMedium), MaxTotalTime: Time30, PublishStatus: StatusDraft}, st)

	st, err = ParseState("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), st)
	assert.True(t, st.IsDefault())

	st, err = ParseState("", "All", "any", "all")
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), st)

	_, err = ParseState("", "extreme", "45", "archived")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "difficulty")
	assert.Contains(t, details, "max_time")
	assert.Contains(t, details, "status")
}
