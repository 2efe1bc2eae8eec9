package treedi

import (
	"fmt"

	"github.com/a-peyrard/treedi/set"
)

const DefaultMaxDepth = 512

type (
	// Tracker follows one resolution call. The stack holds the frames currently under construction,
	// the trail holds every nested resolution, injection phases included.
	Tracker struct {
		visited  set.Set[fmt.Stringer]
		stack    []fmt.Stringer
		trail    []fmt.Stringer
		maxDepth int
	}
)

func NewTracker(maxDepth int) *Tracker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Tracker{
		visited:  set.New[fmt.Stringer](),
		stack:    make([]fmt.Stringer, 0, 8),
		trail:    make([]fmt.Stringer, 0, 8),
		maxDepth: maxDepth,
	}
}

// Push marks the frame as under construction, failing if it already is.
func (tracker *Tracker) Push(f fmt.Stringer) error {
	if !tracker.visited.Add(f) {
		cycle := []fmt.Stringer{f}
		for i := len(tracker.stack) - 1; i >= 0; i-- {
			cycle = append(cycle, tracker.stack[i])
			if tracker.stack[i] == f {
				break
			}
		}
		return &CircularDependencyError{Path: reversed(cycle)}
	}
	tracker.stack = append(tracker.stack, f)

	return nil
}

func (tracker *Tracker) Pop() fmt.Stringer {
	if len(tracker.stack) == 0 {
		panic("tracker: pop from empty stack")
	}
	f := tracker.stack[len(tracker.stack)-1]
	tracker.stack = tracker.stack[:len(tracker.stack)-1]
	tracker.visited.Remove(f)

	return f
}

// Enter records a nested resolution, failing once the nesting goes beyond the max depth.
// Only injection cycles can get that deep, constructor cycles are caught by Push.
func (tracker *Tracker) Enter(f fmt.Stringer) error {
	if len(tracker.trail) >= tracker.maxDepth {
		cycle := []fmt.Stringer{f}
		for i := len(tracker.trail) - 1; i >= 0; i-- {
			cycle = append(cycle, tracker.trail[i])
			if tracker.trail[i] == f {
				break
			}
		}
		return &CircularDependencyError{Path: reversed(cycle)}
	}
	tracker.trail = append(tracker.trail, f)
	return nil
}

func (tracker *Tracker) Leave() {
	if len(tracker.trail) == 0 {
		panic("tracker: leave without enter")
	}
	tracker.trail = tracker.trail[:len(tracker.trail)-1]
}

func (tracker *Tracker) Depth() int {
	return len(tracker.trail)
}

func reversed(frames []fmt.Stringer) []string {
	path := make([]string, len(frames))
	for i, f := range frames {
		path[len(frames)-1-i] = f.String()
	}
	return path
}
