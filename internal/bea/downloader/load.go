package downloader

import (
	"os"
	"sync"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/envelope"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
	"github.com/correlator-io/beaharvest/internal/bea/request"
)

// LoadParallel is the embarrassingly-parallel synchronous loader variant
// spec.md §5 calls out separately from the Tracker-gated downloader: one
// goroutine per cached file, no shared state beyond a mutex-guarded
// accumulator, no rate limiting since no network call is involved
// (grounded on the original's rayon `load_par`, `queue.rs`).
func LoadParallel(reqs []*request.Request, dataDir string) ([]envelope.Data, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		out     []envelope.Data
		loadErr error
	)

	for _, req := range reqs {
		wg.Add(1)

		go func(req *request.Request) {
			defer wg.Done()

			data, err := loadOne(req, dataDir)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if loadErr == nil {
					loadErr = err
				}

				return
			}

			out = append(out, data)
		}(req)
	}

	wg.Wait()

	if loadErr != nil {
		return nil, loadErr
	}

	return out, nil
}

func loadOne(req *request.Request, dataDir string) (envelope.Data, error) {
	path, err := req.Destination(dataDir, false)
	if err != nil {
		return envelope.Data{}, err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return envelope.Data{}, errs.Wrap(errs.IO, "opening "+path, err)
	}

	result, err := envelope.Decode(body, catalog.GetData, req.Dataset())
	if err != nil {
		return envelope.Data{}, err
	}

	data, ok := result.(envelope.Data)
	if !ok {
		return envelope.Data{}, errs.New(errs.VariantMissing, "cached file did not decode as Data: "+path)
	}

	return data, nil
}
