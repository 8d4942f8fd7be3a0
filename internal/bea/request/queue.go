package request

import "github.com/correlator-io/beaharvest/internal/bea/history"

// Queue is an ordered list of Requests awaiting download, filterable
// in place against a History per spec.md §4.9. dataDir must be the same
// directory the crawl's History was built against, since filtering
// compares destination(false) paths.
type Queue struct {
	Requests []*Request
	dataDir  string
}

// NewQueue wraps reqs as a Queue rooted at dataDir.
func NewQueue(dataDir string, reqs []*Request) *Queue {
	return &Queue{Requests: reqs, dataDir: dataDir}
}

// Exclude retains Requests whose destination path is absent from h —
// i.e. drops everything the history already records, regardless of
// outcome.
func (q *Queue) Exclude(h *history.History) error {
	return q.retain(func(r *Request) (bool, error) {
		path, err := r.Destination(q.dataDir, false)
		if err != nil {
			return false, err
		}

		return !h.ContainsKey(path), nil
	})
}

// ApplySizeHints sets each Request's size hint from h's last-recorded
// payload length for that Request's destination, mirroring the original
// source's `Queue::with_events` (spec.md §1, §4.8 step 3-4: metering
// downloads by known payload size). Requests with no matching history
// record are left with an unknown (zero) size hint.
func (q *Queue) ApplySizeHints(h *history.History) error {
	for i, r := range q.Requests {
		path, err := r.Destination(q.dataDir, false)
		if err != nil {
			return err
		}

		if length, ok := h.Length(path); ok {
			q.Requests[i] = r.WithSizeHint(length)
		}
	}

	return nil
}

// Successes retains Requests recorded as successful. Under strict,
// Requests absent from h are dropped; otherwise they are kept.
func (q *Queue) Successes(h *history.History, strict bool) error {
	return q.retain(func(r *Request) (bool, error) {
		path, err := r.Destination(q.dataDir, false)
		if err != nil {
			return false, err
		}

		success := h.IsSuccess(path)
		if success == nil {
			return !strict, nil
		}

		return *success, nil
	})
}

// Errors retains Requests recorded as errored. Under strict, Requests
// absent from h are dropped; otherwise they are kept.
func (q *Queue) Errors(h *history.History, strict bool) error {
	return q.retain(func(r *Request) (bool, error) {
		path, err := r.Destination(q.dataDir, false)
		if err != nil {
			return false, err
		}

		isErr := h.IsError(path)
		if isErr == nil {
			return !strict, nil
		}

		return *isErr, nil
	})
}

func (q *Queue) retain(keep func(*Request) (bool, error)) error {
	out := q.Requests[:0]

	for _, r := range q.Requests {
		ok, err := keep(r)
		if err != nil {
			return err
		}

		if ok {
			out = append(out, r)
		}
	}

	q.Requests = out

	return nil
}
