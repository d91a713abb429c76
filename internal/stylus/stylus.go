package stylus

import (
	"sync"

	"inkpad/internal/platform"
	"inkpad/pkg/ink"
)

const UnknownID = -1

// WirelessID is the HID usage carrying the transducer serial of a pen.
var WirelessID = platform.Usage{Page: 0x0D, ID: 0x5B}

// IDOf returns the stable stylus id reported by r, or UnknownID when the
// device does not report one or the lookup fails.
func IDOf(r platform.UsageReader) (id int) {
	if r == nil {
		return UnknownID
	}
	defer func() {
		if p := recover(); p != nil {
			ink.Logger().Warn("stylus: usage lookup failed", "panic", p)
			id = UnknownID
		}
	}()
	if !r.HasUsage(WirelessID) {
		return UnknownID
	}
	return int(r.UsageValue(WirelessID))
}

// Registry remembers the drawing attributes each stylus last picked.
type Registry struct {
	mu    sync.RWMutex
	attrs map[int]*ink.DrawingAttributes
}

func NewRegistry() *Registry {
	return &Registry{attrs: make(map[int]*ink.DrawingAttributes)}
}

// Touch registers id without attributes so a later Remember can fill them in.
func (r *Registry) Touch(id int) {
	if id == UnknownID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attrs[id]; !ok {
		r.attrs[id] = nil
	}
}

func (r *Registry) Remember(id int, attrs ink.DrawingAttributes) {
	if id == UnknownID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[id] = &attrs
}

// Lookup returns the attributes stored for id. A registered id without
// attributes yet reports false.
func (r *Registry) Lookup(id int) (ink.DrawingAttributes, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.attrs[id]
	if a == nil {
		return ink.DrawingAttributes{}, false
	}
	return *a, true
}

func (r *Registry) Known(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.attrs[id]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attrs)
}
