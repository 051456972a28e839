package input

import (
	"context"
	"fmt"
	"sync"
)

// Action is one call recorded by Recorder.
type Action struct {
	Kind   string // move, click or scroll
	X, Y   int
	Amount int
}

func (a Action) String() string {
	switch a.Kind {
	case "move":
		return fmt.Sprintf("move(%d,%d)", a.X, a.Y)
	case "scroll":
		return fmt.Sprintf("scroll(%d)", a.Amount)
	default:
		return a.Kind
	}
}

// Recorder is a Driver that remembers actions instead of performing them.
type Recorder struct {
	Width, Height int
	// Err, when set, is returned by every action.
	Err error

	mu      sync.Mutex
	actions []Action
}

// NewRecorder returns a recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) ScreenSize(context.Context) (int, int, error) {
	return r.Width, r.Height, nil
}

func (r *Recorder) MoveTo(_ context.Context, x, y int) error {
	return r.record(Action{Kind: "move", X: x, Y: y})
}

func (r *Recorder) Click(context.Context) error {
	return r.record(Action{Kind: "click"})
}

func (r *Recorder) Scroll(_ context.Context, amount int) error {
	return r.record(Action{Kind: "scroll", Amount: amount})
}

func (r *Recorder) record(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.actions = append(r.actions, a)
	return nil
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Count returns how many actions of kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
