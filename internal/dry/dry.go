package dry

import (
	"sync"

	"inkpad/pkg/ink"
)

// DefaultDelay is the number of frames a dried batch stays buffered after it
// was first drawn from the model.
const DefaultDelay = 2

// LivePresenter owns the live ink layer and is told when a dried batch can be
// dropped from it.
type LivePresenter interface {
	EndDry()
}

// Synchronizer hands finished strokes from the live layer to the model and
// keeps them buffered until the model has drawn them for a few frames.
type Synchronizer struct {
	mu        sync.Mutex
	presenter LivePresenter
	delay     int
	pending   []*ink.Stroke
	armed     bool
	remaining int
}

func New(presenter LivePresenter, delay int) *Synchronizer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Synchronizer{presenter: presenter, delay: delay}
}

// BeginDry clones strokes into the pending buffer and returns the clones for
// the caller to commit. A batch arriving while a countdown runs restarts it.
func (s *Synchronizer) BeginDry(strokes []*ink.Stroke) []*ink.Stroke {
	out := make([]*ink.Stroke, 0, len(strokes))
	for _, st := range strokes {
		if st != nil {
			out = append(out, st.Clone())
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, out...)
	if s.armed {
		s.remaining = s.delay
	}
	return out
}

// Rendered arms the countdown after the model has drawn a pending batch.
// Calls while the countdown runs are ignored.
func (s *Synchronizer) Rendered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed || len(s.pending) == 0 {
		return
	}
	s.armed = true
	s.remaining = s.delay
}

// Tick advances the countdown by one frame and reports whether the pending
// batch was released on this frame.
func (s *Synchronizer) Tick() bool {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	n := len(s.pending)
	s.pending = nil
	s.armed = false
	s.mu.Unlock()

	ink.Logger().Debug("dry: released batch", "strokes", n)
	if s.presenter != nil {
		s.presenter.EndDry()
	}
	return true
}

func (s *Synchronizer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Armed reports whether a countdown is running.
func (s *Synchronizer) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}
