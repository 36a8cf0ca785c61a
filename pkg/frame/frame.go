// Package frame provides the cooperative per-frame callback queue that
// drives layout batches, camera animations and surface bootstrap. A host
// calls Tick once per display frame (a bubbletea tick message, or a loop in
// the headless renderer); callbacks always run on the ticking goroutine.
package frame

import (
	"sync"
	"time"
)

// ID identifies a requested frame callback. The zero ID is never issued.
type ID uint64

// Callback runs on the next frame with the frame timestamp.
type Callback func(now time.Time)

type request struct {
	id ID
	cb Callback
}

// Loop queues callbacks for the next frame.
type Loop struct {
	mu      sync.Mutex
	next    ID
	pending []request
	// inFlight holds the ids of the batch being run by Tick so a callback
	// can cancel a later one of the same frame.
	inFlight map[ID]struct{}
	frames   uint64
	last     time.Time
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Request schedules cb for the next Tick. It is safe to call from inside a
// callback; the new request runs on the following frame.
func (l *Loop) Request(cb Callback) ID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.pending = append(l.pending, request{id: l.next, cb: cb})
	return l.next
}

// Cancel drops a pending request. Unknown or already-run ids are ignored.
func (l *Loop) Cancel(id ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, id)
	for i, r := range l.pending {
		if r.id == id {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return
		}
	}
}

// Pending reports how many callbacks wait for the next frame.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Tick runs every callback requested before this call, in request order,
// and returns how many ran. A callback cancelled by an earlier callback of
// the same frame does not run.
func (l *Loop) Tick(now time.Time) int {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.frames++
	l.last = now
	l.inFlight = make(map[ID]struct{}, len(batch))
	for _, r := range batch {
		l.inFlight[r.id] = struct{}{}
	}
	l.mu.Unlock()

	ran := 0
	for _, r := range batch {
		l.mu.Lock()
		_, live := l.inFlight[r.id]
		delete(l.inFlight, r.id)
		l.mu.Unlock()
		if !live {
			continue
		}
		r.cb(now)
		ran++
	}

	l.mu.Lock()
	l.inFlight = nil
	l.mu.Unlock()
	return ran
}

// Frames is the number of ticks so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// LastTick is the timestamp of the latest Tick.
func (l *Loop) LastTick() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
