// Package history implements the append-only per-(dataset, mode) event
// log described in spec.md §4.9 and §6, and the Queue-filter predicates
// that consult it.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
)

// Mode distinguishes a download-log from a load-log, per
// history/download_{Dataset}.log vs history/load_{Dataset}.log.
type Mode string

const (
	Download Mode = "download"
	LoadMode Mode = "load"
)

// Record is one logged outcome, keyed by destination path once read back.
type Record struct {
	ID     string
	Mode   Mode
	Path   string
	Status tracker.Status
	Length int64
	Time   time.Time
}

// line serializes a Record as key:value pairs separated by tabs, one
// record per line. path is quoted since it may itself contain spaces.
func (r Record) line() string {
	return fmt.Sprintf("id:%s\tlength:%d\tmode:%s\tpath:%q\tstatus:%s\ttime:%s",
		r.ID, r.Length, r.Mode, r.Path, statusName(r.Status), r.Time.Format(time.RFC3339))
}

func statusName(s tracker.Status) string {
	switch s {
	case tracker.Success:
		return "Success"
	case tracker.Error:
		return "Error"
	case tracker.Pass:
		return "Pass"
	case tracker.Abort:
		return "Abort"
	default:
		return "Pending"
	}
}

func parseStatus(s string) tracker.Status {
	switch s {
	case "Success":
		return tracker.Success
	case "Error":
		return tracker.Error
	case "Pass":
		return tracker.Pass
	case "Abort":
		return tracker.Abort
	default:
		return tracker.Pending
	}
}

// History is the full, aggregated view of one (dataset, mode) log: the
// last-recorded outcome per destination path.
type History struct {
	path   string
	byPath map[string]Record
}

// Path returns the log file's location for a (dataset, mode) pair.
func Path(dataDir string, dataset catalog.Dataset, mode Mode) string {
	return filepath.Join(dataDir, "history", fmt.Sprintf("%s_%s.log", mode, dataset))
}

// Load reads and aggregates a (dataset, mode) log. A missing file is not
// an error — it simply yields an empty History, since the first crawl
// for a dataset has no prior run to resume from.
func Load(dataDir string, dataset catalog.Dataset, mode Mode) (*History, error) {
	path := Path(dataDir, dataset, mode)

	h := &History{path: path, byPath: make(map[string]Record)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}

		return nil, errs.Wrap(errs.IO, "opening history log "+path, err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)
	// History lines grow with every quoted path; the default 64KiB
	// scanner buffer is comfortably large for any realistic path, but a
	// generous cap avoids ErrTooLong on pathological inputs.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		rec, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}

		h.byPath[rec.Path] = rec
	}

	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.IO, "reading history log "+path, err)
	}

	return h, nil
}

// parseLine reconstructs a Record from one key:value line. The id field
// is present for append-time identification but is not needed once
// aggregated by path, so every field after it is read positionally by
// key rather than by a fixed column order.
func parseLine(line string) (Record, bool) {
	fields := map[string]string{}

	for _, part := range strings.Split(line, "\t") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}

		fields[kv[0]] = kv[1]
	}

	path, ok := fields["path"]
	if !ok {
		return Record{}, false
	}

	unquoted, err := strconv.Unquote(path)
	if err != nil {
		unquoted = path
	}

	length, _ := strconv.ParseInt(fields["length"], 10, 64)
	ts, _ := time.Parse(time.RFC3339, fields["time"])

	return Record{
		ID:     fields["id"],
		Mode:   Mode(fields["mode"]),
		Path:   unquoted,
		Status: parseStatus(fields["status"]),
		Length: length,
		Time:   ts,
	}, true
}

// Append writes one Record as a new line, opening the log file in
// append mode and creating its parent directory as needed.
func Append(dataDir string, dataset catalog.Dataset, mode Mode, rec Record) error {
	path := Path(dataDir, dataset, mode)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.IO, "creating history directory", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.IO, "opening history log for append", err)
	}

	defer f.Close()

	if _, err := fmt.Fprintln(f, rec.line()); err != nil {
		return errs.Wrap(errs.IO, "writing history record", err)
	}

	return nil
}

// ContainsKey reports whether path has any recorded outcome.
func (h *History) ContainsKey(path string) bool {
	_, ok := h.byPath[path]
	return ok
}

// IsSuccess reports the last-recorded outcome for path: nil means no
// record, *true means success, *false means recorded-but-failed.
func (h *History) IsSuccess(path string) *bool {
	rec, ok := h.byPath[path]
	if !ok {
		return nil
	}

	success := rec.Status == tracker.Success

	return &success
}

// Length returns the payload length History last recorded for path, and
// whether any record exists at all — the basis for a Request's size hint
// (spec.md §1: "using the persisted outcome log of prior crawls ... to
// meter downloads by known payload size").
func (h *History) Length(path string) (int64, bool) {
	rec, ok := h.byPath[path]
	if !ok {
		return 0, false
	}

	return rec.Length, true
}

// IsError is IsSuccess's complement for the Error status specifically.
func (h *History) IsError(path string) *bool {
	rec, ok := h.byPath[path]
	if !ok {
		return nil
	}

	isErr := rec.Status == tracker.Error

	return &isErr
}

// Iter yields every (path, record) pair in the aggregated history. Order
// is unspecified — aggregation is by map, not by append order.
func (h *History) Iter(yield func(path string, rec Record) bool) {
	for path, rec := range h.byPath {
		if !yield(path, rec) {
			return
		}
	}
}
