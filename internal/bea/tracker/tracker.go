// Package tracker implements the sliding-window call/error/size budget
// the downloader consults before issuing each request, per spec.md §4.7.
package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal or transitional state of a tracked Event.
type Status int

const (
	Pending Status = iota
	Success
	Error
	Pass
	Abort
)

// Event is one tracked request, identified by a UUID so the Tracker can
// apply status updates that arrive out of issuance order.
type Event struct {
	ID     string
	Status Status
	Length int64
	Mode   string
	At     time.Time
}

// sizeEvent is a windowed byte-size sample, independent of any Event's
// lifecycle — it exists purely to feed SizeAvailable's sliding sum.
type sizeEvent struct {
	bytes int64
	at    time.Time
}

// Tracker bounds calls, errors, and bytes over a trailing 60-second
// window. All three buffers evict lazily — on access, not on a timer —
// so an idle Tracker never spends background CPU.
type Tracker struct {
	mu sync.Mutex

	callCap  int
	errorCap int
	sizeCap  int64
	horizon  time.Duration

	calls  map[string]*Event // in-window, not yet resolved
	cache  map[string]*Event // evicted from calls but still status-mutable
	errors []Event
	sizes  []sizeEvent

	now func() time.Time
}

// New builds a Tracker with the given caps. horizon is normally 60
// seconds; it is a parameter so tests can shrink it.
func New(callCap, errorCap int, sizeCap int64, horizon time.Duration) *Tracker {
	return &Tracker{
		callCap:  callCap,
		errorCap: errorCap,
		sizeCap:  sizeCap,
		horizon:  horizon,
		calls:    make(map[string]*Event),
		cache:    make(map[string]*Event),
		now:      time.Now,
	}
}

// Commit mints an Event in Pending state and admits it into the calls
// buffer under lock.
func (t *Tracker) Commit(mode string) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := Event{ID: uuid.NewString(), Status: Pending, Mode: mode, At: t.now()}
	t.calls[e.ID] = &e

	return e
}

// CommitSize records a size hint against the 60-second byte budget.
func (t *Tracker) CommitSize(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked()
	t.sizes = append(t.sizes, sizeEvent{bytes: bytes, at: t.now()})
}

// CheckSlack evicts expired entries, then returns the minimum of
// (ERROR_CAP - pending_count, ERROR_CAP - error_count, CALL_CAP -
// call_count). Zero or negative means the caller must Wait before
// issuing the next request.
func (t *Tracker) CheckSlack() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked()

	pending := 0

	for _, e := range t.calls {
		if e.Status == Pending {
			pending++
		}
	}

	callCount := len(t.calls)
	errorCount := len(t.errors)

	slack := t.errorCap - pending
	if v := t.errorCap - errorCount; v < slack {
		slack = v
	}

	if v := t.callCap - callCount; v < slack {
		slack = v
	}

	return slack
}

// SizeAvailable returns SIZE_CAP minus the sum of sizes in the current
// window, saturating at zero.
func (t *Tracker) SizeAvailable() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictLocked()

	var used int64
	for _, s := range t.sizes {
		used += s.bytes
	}

	avail := t.sizeCap - used
	if avail < 0 {
		avail = 0
	}

	return avail
}

// Wait sleeps until either 5 seconds elapse or the oldest windowed entry
// would expire, whichever is sooner.
func (t *Tracker) Wait() {
	delay := t.untilOldestExpires()
	if delay > 5*time.Second {
		delay = 5 * time.Second
	}

	if delay > 0 {
		time.Sleep(delay)
	}
}

func (t *Tracker) untilOldestExpires() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldest := t.now()
	found := false

	consider := func(at time.Time) {
		if !found || at.Before(oldest) {
			oldest = at
			found = true
		}
	}

	for _, e := range t.calls {
		consider(e.At)
	}

	for _, e := range t.errors {
		consider(e.At)
	}

	for _, s := range t.sizes {
		consider(s.at)
	}

	if !found {
		return 5 * time.Second
	}

	remaining := t.horizon - t.now().Sub(oldest)
	if remaining < 0 {
		remaining = 0
	}

	return remaining
}

// UpdateStatus locates an Event by id in calls or cache, mutates its
// status and length, and on Error additionally appends a copy to the
// errors buffer. Updates whose id matches no tracked event are silently
// discarded (spec.md §5: "the Tracker discards updates whose id does not
// match any tracked event").
func (t *Tracker) UpdateStatus(id string, status Status, length int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.calls[id]
	if !ok {
		e, ok = t.cache[id]
	}

	if !ok {
		return
	}

	e.Status = status
	e.Length = length

	if status == Error {
		t.errors = append(t.errors, *e)
	}
}

// evictLocked moves calls older than horizon into cache (remaining
// status-mutable there) and drops errors/sizes entirely once expired.
// Callers must hold mu.
func (t *Tracker) evictLocked() {
	cutoff := t.now().Add(-t.horizon)

	for id, e := range t.calls {
		if e.At.Before(cutoff) {
			t.cache[id] = e
			delete(t.calls, id)
		}
	}

	liveErrors := t.errors[:0]

	for _, e := range t.errors {
		if !e.At.Before(cutoff) {
			liveErrors = append(liveErrors, e)
		}
	}

	t.errors = liveErrors

	liveSizes := t.sizes[:0]

	for _, s := range t.sizes {
		if !s.at.Before(cutoff) {
			liveSizes = append(liveSizes, s)
		}
	}

	t.sizes = liveSizes
}
