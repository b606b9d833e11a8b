package loopback

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "molard/internal/errors"
)

// Slot is a single-use rendezvous. The first Complete wins; later calls
// observe an empty slot and report false.
type Slot struct {
	mu     sync.Mutex
	sender chan<- string // nil once taken
	recv   <-chan string
}

// NewSlot returns an open slot.
func NewSlot() *Slot {
	ch := make(chan string, 1)
	return &Slot{sender: ch, recv: ch}
}

// Complete delivers v if the slot is still open. It never blocks.
func (s *Slot) Complete(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sender == nil {
		return false
	}
	s.sender <- v
	s.sender = nil
	return true
}

// Wait returns the channel the completed value arrives on.
func (s *Slot) Wait() <-chan string {
	return s.recv
}

// PendingAuth is one in-flight sign-in.
type PendingAuth struct {
	ID        string
	CreatedAt time.Time
	slot      *Slot
}

// NewPendingAuth creates a pending sign-in with a fresh slot.
func NewPendingAuth() *PendingAuth {
	return &PendingAuth{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		slot:      NewSlot(),
	}
}

// Complete hands fragment to the waiting caller. False means it was already delivered.
func (p *PendingAuth) Complete(fragment string) bool {
	return p.slot.Complete(fragment)
}

// Deliver is Complete reporting a repeated delivery as an already-completed error.
func (p *PendingAuth) Deliver(fragment string) error {
	if !p.Complete(fragment) {
		return apperrors.AlreadyCompleted(p.ID)
	}
	return nil
}

// Wait returns the channel the fragment arrives on.
func (p *PendingAuth) Wait() <-chan string {
	return p.slot.Wait()
}
