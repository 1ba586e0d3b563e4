package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
)

// Level is a difficulty filter: LevelAll or one of the domain difficulties.
type Level string

// LevelAll disables difficulty filtering.
const LevelAll Level = "All"

// Levels lists every accepted level in display order.
var Levels = []Level{LevelAll, Level(domain.DifficultyEasy), Level(domain.DifficultyMedium), Level(domain.DifficultyHard)}

// Valid reports whether l is LevelAll or a known difficulty.
func (l Level) Valid() bool {
	return l == LevelAll || domain.Difficulty(l).Valid()
}

// MaxTime is a total-time bucket in minutes. TimeAny disables time filtering.
type MaxTime int

// Time buckets.
const (
	TimeAny MaxTime = 0
	Time15  MaxTime = 15
	Time30  MaxTime = 30
	Time60  MaxTime = 60
	Time120 MaxTime = 120
)

// MaxTimes lists every accepted bucket in display order.
var MaxTimes = []MaxTime{TimeAny, Time15, Time30, Time60, Time120}

// Valid reports whether m is one of the buckets.
func (m MaxTime) Valid() bool {
	switch m {
	case TimeAny, Time15, Time30, Time60, Time120:
		return true
	default:
		return false
	}
}

// String renders the bucket the way forms submit it.
func (m MaxTime) String() string {
	if m == TimeAny {
		return "any"
	}
	return strconv.Itoa(int(m))
}

// PublishStatus filters by publication state when publish filtering is enabled.
type PublishStatus string

// Publish statuses.
const (
	StatusAll       PublishStatus = "All"
	StatusPublished PublishStatus = "Published"
	StatusDraft     PublishStatus = "Draft"
)

// Statuses lists every accepted status in display order.
var Statuses = []PublishStatus{StatusAll, StatusPublished, StatusDraft}

// Valid reports whether s is a known status.
func (s PublishStatus) Valid() bool {
	switch s {
	case StatusAll, StatusPublished, StatusDraft:
		return true
	default:
		return false
	}
}

// State is the full set of filter controls.
type State struct {
	Query         string
	Difficulty    Level
	MaxTotalTime  MaxTime
	PublishStatus PublishStatus
}

// DefaultState returns the state with every filter disabled.
func DefaultState() State {
	return State{
		Difficulty:    LevelAll,
		MaxTotalTime:  TimeAny,
		PublishStatus: StatusAll,
	}
}

// IsDefault reports whether no filter is active.
func (s State) IsDefault() bool {
	return strings.TrimSpace(s.Query) == "" &&
		s.Difficulty == LevelAll &&
		s.MaxTotalTime == TimeAny &&
		s.PublishStatus == StatusAll
}

func (s State) mustValidate() {
	if !s.Difficulty.Valid() {
		panic(fmt.Sprintf("filter: invalid difficulty %q", s.Difficulty))
	}
	if !s.MaxTotalTime.Valid() {
		panic(fmt.Sprintf("filter: invalid max total time %d", s.MaxTotalTime))
	}
	if !s.PublishStatus.Valid() {
		panic(fmt.Sprintf("filter: invalid publish status %q", s.PublishStatus))
	}
}

// ParseState builds a State from raw request values. Empty values select the
// default for that control. Anything else unknown is a validation error.
func ParseState(query, difficulty, maxTime, status string) (State, error) {
	state := DefaultState()
	state.Query = query
	details := map[string]string{}

	if d := strings.TrimSpace(difficulty); d != "" && !strings.EqualFold(d, string(LevelAll)) {
		level, err := domain.ParseDifficulty(d)
		if err != nil {
			details["difficulty"] = "must be one of all, easy, medium, hard"
		} else {
			state.Difficulty = Level(level)
		}
	}

	if m := strings.TrimSpace(maxTime); m != "" && !strings.EqualFold(m, "any") && !strings.EqualFold(m, "all") {
		n, err := strconv.Atoi(m)
		if err != nil || n == 0 || !MaxTime(n).Valid() {
			details["max_time"] = "must be one of any, 15, 30, 60, 120"
		} else {
			state.MaxTotalTime = MaxTime(n)
		}
	}

	if st := strings.TrimSpace(status); st != "" {
		matched := false
		for _, candidate := range Statuses {
			if strings.EqualFold(st, string(candidate)) {
				state.PublishStatus = candidate
				matched = true
				break
			}
		}
		if !matched {
			details["status"] = "must be one of all, published, draft"
		}
	}

	if len(details) > 0 {
		return DefaultState(), domainerrors.ValidationWithDetails("invalid filter", details)
	}
	return state, nil
}
