package state

import "sync"

// Store holds the merged player state shared between host writers and the render loop.
// Writers block on the lock; the render loop only ever tries it.
type Store struct {
	mu    sync.Mutex
	state PlayerState
}

func NewStore() *Store {
	return &Store{}
}

// Merge folds in into the stored state, see PlayerState.Merge.
func (s *Store) Merge(in PlayerState) {
	s.mu.Lock()
	s.state = s.state.Merge(in)
	s.mu.Unlock()
}

// SetPaused touches only playback.paused.
func (s *Store) SetPaused(paused bool) {
	s.Merge(PlayerState{Playback: Some(Playback{Paused: Some(paused)})})
}

// TogglePaused flips playback.paused under one lock, so concurrent toggles
// and set_paused calls are never lost. It returns the new value.
func (s *Store) TogglePaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	paused := !s.state.IsPaused()
	s.state = s.state.Merge(PlayerState{Playback: Some(Playback{Paused: Some(paused)})})
	return paused
}

// UpdateMouse replaces uniforms.mouse with the result of f applied to the stored value.
// The read and the write happen under one lock so concurrent drags cannot interleave.
func (s *Store) UpdateMouse(f func(prev Option[Mouse]) Mouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _ := s.state.Uniforms.Get()
	u.Mouse = Some(f(u.Mouse))
	s.state.Uniforms = Some(u)
}

// TrySnapshot returns a copy of the stored state without blocking.
// ok is false when a writer holds the store; the caller should reuse its previous snapshot.
func (s *Store) TrySnapshot() (snap PlayerState, ok bool) {
	if !s.mu.TryLock() {
		return PlayerState{}, false
	}
	snap = s.state
	s.mu.Unlock()
	return snap, true
}

// Snapshot returns a copy of the stored state, waiting for writers.
func (s *Store) Snapshot() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
