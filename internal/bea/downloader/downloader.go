// Package downloader drives a Queue of Requests through a rate-limited,
// concurrent download loop, per spec.md §4.8. A single producer (the
// driver) and single consumer (the listener) are coordinated through a
// bounded channel, matching the single-producer/single-consumer model
// spec.md §5 requires.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"github.com/correlator-io/beaharvest/internal/bea/envelope"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
	"github.com/correlator-io/beaharvest/internal/bea/history"
	"github.com/correlator-io/beaharvest/internal/bea/request"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
)

// outcome is what a spawned per-request task sends to the listener.
type outcome struct {
	id     string
	status tracker.Status
	length int64
	req    *request.Request
	path   string
	abort  error
}

// Downloader owns the Tracker, the History log it appends to, and the
// HTTP client used to issue requests.
type Downloader struct {
	Client    *request.Client
	Tracker   *tracker.Tracker
	DataDir   string
	Log       *slog.Logger
	Overwrite bool
}

// abortError is panicked by the listener on RequestsExceeded and
// recovered at Run's top level, converting the original's intentional
// abort-via-panic into a returned error (spec.md §4.8, §5: "A
// RequestsExceeded response propagates as Abort and panics the
// listener").
type abortError struct{ err error }

func (a abortError) Error() string { return a.err.Error() }

// Run drains q in issuance order against a bounded channel sized per
// spec.md §4.8 (≈29 for download, ≈100 for load). Per-request work is
// spawned as an independent goroutine; the listener goroutine drains the
// channel and applies Tracker updates. A single request's failure is
// captured as an Error outcome and never aborts the run; only
// RequestsExceeded does.
func (d *Downloader) Run(ctx context.Context, reqs []*request.Request, chanCap int) error {
	ch := make(chan outcome, chanCap)

	var wg sync.WaitGroup

	var driverErr error

	listenerDone := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if ab, ok := r.(abortError); ok {
					listenerDone <- ab.err
					return
				}

				panic(r)
			}
		}()

		d.listen(ch, listenerDone)
	}()

	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)

	for _, req := range reqs {
		path, perr := req.Destination(d.DataDir, true)
		if perr != nil {
			driverErr = multierror.Append(driverErr, perr)
			continue
		}

		if !d.Overwrite {
			if _, statErr := os.Stat(path); statErr == nil {
				continue
			}
		}

		sizeHint := req.SizeHint()

		for {
			slack := d.Tracker.CheckSlack()
			avail := d.Tracker.SizeAvailable()

			const hundredMB = 100 * 1000 * 1000
			if slack <= 0 || (sizeHint > 0 && avail <= sizeHint && sizeHint < hundredMB) {
				_ = limiter.Wait(ctx) // paces the cleanup/retry cadence only; budget math lives in Tracker.
				d.Tracker.Wait()

				continue
			}

			break
		}

		ev := d.Tracker.Commit("download")
		if sizeHint > 0 {
			d.Tracker.CommitSize(sizeHint)
		}

		wg.Add(1)

		go func(ev tracker.Event, req *request.Request, path string) {
			defer wg.Done()
			d.fetch(ctx, ev, req, path, ch)
		}(ev, req, path)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	if lerr := <-listenerDone; lerr != nil {
		return lerr
	}

	return driverErr
}

// fetch issues one HTTP call and reports its outcome to the listener. The
// byte budget is metered from the request's size hint at commit time
// (spec.md §4.8 step 5), not from this actual response size — matching
// the original source, which never re-meters after the fact.
func (d *Downloader) fetch(ctx context.Context, ev tracker.Event, req *request.Request, path string, ch chan<- outcome) {
	body, _, err := d.Client.Get(ctx, req)
	if err != nil {
		ch <- outcome{id: ev.ID, status: tracker.Error, req: req, path: path}
		return
	}

	result, err := envelope.Decode(body, req.Method(), req.Dataset())
	if err != nil {
		ch <- outcome{id: ev.ID, status: tracker.Error, req: req, path: path}
		return
	}

	switch v := result.(type) {
	case envelope.RequestsExceeded:
		ch <- outcome{id: ev.ID, status: tracker.Abort, req: req, path: path,
			abort: errs.New(errs.ServerRequestsExceeded, v.Error())}
	case envelope.APIError:
		ch <- outcome{id: ev.ID, status: tracker.Error, req: req, path: path}
	case envelope.MneError:
		ch <- outcome{id: ev.ID, status: tracker.Error, req: req, path: path}
	default:
		if werr := writeJSON(path, body); werr != nil {
			ch <- outcome{id: ev.ID, status: tracker.Error, req: req, path: path}
			return
		}

		ch <- outcome{id: ev.ID, status: tracker.Success, length: int64(len(body)), req: req, path: path}
	}
}

// listen drains ch, updating the Tracker on every Success/Error and
// appending the terminal History record. On Abort (only emitted for
// RequestsExceeded) it panics — the goroutine wrapping this call
// recovers the panic and forwards the error on done, turning the
// original's abort-via-panic into an ordinary returned error at the
// Run boundary (spec.md §4.8, §5).
func (d *Downloader) listen(ch <-chan outcome, done chan<- error) {
	for o := range ch {
		switch o.status {
		case tracker.Success, tracker.Error:
			d.Tracker.UpdateStatus(o.id, o.status, o.length)

			rec := history.Record{
				ID: o.id, Mode: history.Download, Path: o.path,
				Status: o.status, Length: o.length, Time: time.Now(),
			}

			if err := history.Append(d.DataDir, o.req.Dataset(), history.Download, rec); err != nil {
				d.Log.Error("writing history record", "error", err)
			}
		case tracker.Abort:
			panic(abortError{err: o.abort})
		default:
			// Pending and Pass are purely informational.
		}
	}

	done <- nil
}

// writeJSON persists an already-decoded response body verbatim — Decode
// has already confirmed it parses as JSON, so this is a plain write.
func writeJSON(path string, body []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IO, fmt.Sprintf("creating %s", path), err)
	}

	defer f.Close()

	if _, err := f.Write(body); err != nil {
		return errs.Wrap(errs.IO, "writing response body", err)
	}

	return nil
}
