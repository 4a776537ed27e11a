package planner

import (
	"errors"
	"fmt"

	"commuter.routing.org/internal/graph"
)

var (
	// ErrGraphNotReady is returned while no graph has been built. It is retryable.
	ErrGraphNotReady = graph.ErrGraphNotReady

	ErrInvalidLocation = errors.New("invalid location")
	ErrNoTerminal      = errors.New("no terminals found")
	ErrExcessiveWalk   = errors.New("walking distance exceeds limit")
)

// WalkDistanceError reports a free-form trip end that is too far from its nearest stop.
// It matches ErrExcessiveWalk.
type WalkDistanceError struct {
	End        string
	Stop       graph.Stop
	DistanceKm float64
	LimitKm    float64
}

func (e *WalkDistanceError) Error() string {
	return fmt.Sprintf("%s is %.2f km from the nearest stop %q, over the %.2f km walking limit",
		e.End, e.DistanceKm, e.Stop.Name, e.LimitKm)
}

func (e *WalkDistanceError) Is(target error) bool {
	return target == ErrExcessiveWalk
}
