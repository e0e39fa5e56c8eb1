package blockfall

import (
	"strings"
	"time"
)

type Key uint8

const (
	KeyLeft Key = 1 << iota
	KeyRight
	KeyRotate
	KeyDrop
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyRotate:
		return "rotate"
	case KeyDrop:
		return "drop"
	}
	return "unknown"
}

// KeySet is a bit set of keys.
type KeySet uint8

func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s |= KeySet(k)
	}
	return s
}

func (s KeySet) Has(k Key) bool {
	return s&KeySet(k) != 0
}

func (s KeySet) With(k Key) KeySet {
	return s | KeySet(k)
}

func (s KeySet) Without(k Key) KeySet {
	return s &^ KeySet(k)
}

// List returns the keys in s in declaration order.
func (s KeySet) List() []Key {
	var keys []Key
	for _, k := range []Key{KeyLeft, KeyRight, KeyRotate, KeyDrop} {
		if s.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s KeySet) String() string {
	var names []string
	for _, k := range s.List() {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Input is the key state for one tick. Pressed and Released are edge
// triggered and only set on the tick the transition happened; Held is the
// level state. A key pressed this tick is normally also held.
type Input struct {
	Pressed  KeySet
	Released KeySet
	Held     KeySet
}

// DefaultHoldWindow is how long a key reported through Hold stays held after
// its last event. Terminals report key repeats but never key releases.
const DefaultHoldWindow = 150 * time.Millisecond

// InputTracker turns a stream of key down/up events into per tick Input.
type InputTracker struct {
	pressed, released, held KeySet
	lastSeen                map[Key]time.Time
}

// Hold records a key event from a source without release events. It reports
// whether the key was not held before. The key stays held until ReleaseStale
// sees no event for it within the window, or until KeyUp.
func (t *InputTracker) Hold(k Key, now time.Time) bool {
	fresh := !t.held.Has(k)
	t.KeyDown(k)
	if t.lastSeen == nil {
		t.lastSeen = make(map[Key]time.Time)
	}
	t.lastSeen[k] = now
	return fresh
}

// ReleaseStale releases every key recorded by Hold whose last event is older
// than window and returns the released keys.
func (t *InputTracker) ReleaseStale(now time.Time, window time.Duration) KeySet {
	var stale KeySet
	for k, seen := range t.lastSeen {
		if now.Sub(seen) > window {
			stale = stale.With(k)
		}
	}
	for _, k := range stale.List() {
		t.KeyUp(k)
	}
	return stale
}

func (t *InputTracker) KeyDown(k Key) {
	if !t.held.Has(k) {
		t.pressed = t.pressed.With(k)
	}
	t.held = t.held.With(k)
}

func (t *InputTracker) KeyUp(k Key) {
	delete(t.lastSeen, k)
	if t.held.Has(k) {
		t.released = t.released.With(k)
	}
	t.held = t.held.Without(k)
}

// Frame returns the input accumulated since the previous call and clears the
// edge triggered sets. A key that went down and up between two frames is
// reported as pressed, held and released.
func (t *InputTracker) Frame() Input {
	in := Input{
		Pressed:  t.pressed,
		Released: t.released,
		Held:     t.held | (t.pressed & t.released),
	}
	t.pressed, t.released = 0, 0
	return in
}
