package dry

import (
	"testing"

	"inkpad/pkg/ink"
)

type countingPresenter struct{ ended int }

func (p *countingPresenter) EndDry() { p.ended++ }

func dot(t *testing.T, x, y float64) *ink.Stroke {
	t.Helper()
	s, err := ink.NewStroke([]ink.InkPoint{{Point: ink.Pt(x, y)}}, ink.DefaultDrawingAttributes())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBeginDryClones(t *testing.T) {
	s := New(nil, 2)
	src := dot(t, 1, 1)
	out := s.BeginDry([]*ink.Stroke{src, nil})
	if len(out) != 1 || out[0] == src || out[0].ID() == src.ID() {
		t.Fatalf("expected one independent clone, got %v", out)
	}
	if s.Pending() != 1 {
		t.Fatalf("pending = %d", s.Pending())
	}
}

func TestCountdownReleasesAfterDelay(t *testing.T) {
	p := &countingPresenter{}
	s := New(p, 2)
	if s.Tick() {
		t.Fatalf("tick without a pending batch must not release")
	}
	s.BeginDry([]*ink.Stroke{dot(t, 0, 0)})
	if s.Tick() {
		t.Fatalf("tick before the first render must not release")
	}
	s.Rendered()
	if s.Tick() {
		t.Fatalf("released one frame early")
	}
	s.Rendered()
	if !s.Tick() {
		t.Fatalf("expected release on the second frame")
	}
	if p.ended != 1 || s.Pending() != 0 || s.Armed() {
		t.Fatalf("ended=%d pending=%d armed=%v", p.ended, s.Pending(), s.Armed())
	}
}

func TestNewBatchRestartsCountdown(t *testing.T) {
	p := &countingPresenter{}
	s := New(p, 3)
	s.BeginDry([]*ink.Stroke{dot(t, 0, 0)})
	s.Rendered()
	s.Tick()
	s.Tick()
	s.BeginDry([]*ink.Stroke{dot(t, 5, 5)})
	for i := 0; i < 2; i++ {
		if s.Tick() {
			t.Fatalf("restarted countdown released early at tick %d", i)
		}
	}
	if !s.Tick() {
		t.Fatalf("expected release after the restarted countdown")
	}
	if p.ended != 1 || s.Pending() != 0 {
		t.Fatalf("ended=%d pending=%d", p.ended, s.Pending())
	}
}

func TestDefaultDelay(t *testing.T) {
	s := New(nil, 0)
	s.BeginDry([]*ink.Stroke{dot(t, 0, 0)})
	s.Rendered()
	for i := 1; i < DefaultDelay; i++ {
		if s.Tick() {
			t.Fatalf("released at tick %d", i)
		}
	}
	if !s.Tick() {
		t.Fatalf("expected release at tick %d", DefaultDelay)
	}
}
