// Package refdata keeps read-only reference collections fresh by
// wholesale replacement. There is no per-record reconciliation: the
// server's list is the truth, swapped in atomically.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/alexjbarnes/fitsync/internal/store"
)

// staleAfter is how long a successful fetch satisfies the staleness
// gate. Reference data changes rarely; one fetch a day is plenty.
const staleAfter = 24 * time.Hour

// countriesKind keys the refresh cursor in the store's app bucket.
const countriesKind = "countries"

// RefdataAPI is the remote surface the refresher needs. *api.Client
// satisfies it.
type RefdataAPI interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
}

// Refresher replaces the country reference collection when it goes
// stale. Re-invoking while a fetch is in flight cancels the older fetch
// and discards its result, so only the newest invocation can apply.
type Refresher struct {
	store  *store.Store
	api    RefdataAPI
	logger *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc

	// now is swapped out by tests.
	now func() time.Time
}

// NewRefresher creates a refresher over the given store and API client.
func NewRefresher(st *store.Store, client RefdataAPI, logger *slog.Logger) *Refresher {
	return &Refresher{
		store:  st,
		api:    client,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh fetches and replaces the country collection unless the local
// copy is still fresh. Safe to call from any goroutine; a newer call
// supersedes an older in-flight one.
func (r *Refresher) Refresh(ctx context.Context) error {
	fresh, err := r.isFresh()
	if err != nil {
		return err
	}

	if fresh {
		r.logger.Debug("reference data still fresh, skipping refresh")
		return nil
	}

	ctx, gen := r.begin(ctx)

	countries, err := r.api.ListCountries(ctx)
	if err != nil {
		// A cancelled fetch means a newer refresh superseded this one;
		// that is not a failure worth surfacing.
		if ctx.Err() != nil && !r.isCurrent(gen) {
			r.logger.Debug("refresh superseded", slog.Uint64("generation", gen))
			return nil
		}

		return fmt.Errorf("fetching countries: %w", err)
	}

	return r.apply(gen, countries)
}

// isFresh reports whether the last successful fetch is recent enough.
// An empty collection is always stale, whatever the cursor says.
func (r *Refresher) isFresh() (bool, error) {
	last, err := r.store.LastRefdataFetch(countriesKind)
	if err != nil {
		return false, fmt.Errorf("reading refresh cursor: %w", err)
	}

	count, err := r.store.CountryCount()
	if err != nil {
		return false, fmt.Errorf("counting countries: %w", err)
	}

	if last.IsZero() || count == 0 {
		return false, nil
	}

	return r.now().Sub(last) < staleAfter, nil
}

// begin claims a new generation and cancels any older in-flight fetch.
func (r *Refresher) begin(ctx context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	r.generation++

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	return ctx, r.generation
}

func (r *Refresher) isCurrent(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return gen == r.generation
}

// apply swaps in the fetched collection, but only if no newer refresh
// claimed the generation while this one was fetching.
func (r *Refresher) apply(gen uint64, countries []models.Country) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		r.logger.Debug("discarding superseded refresh result", slog.Uint64("generation", gen))
		return nil
	}

	if err := r.store.ReplaceCountries(countries); err != nil {
		return fmt.Errorf("replacing countries: %w", err)
	}

	if err := r.store.SetLastRefdataFetch(countriesKind, r.now()); err != nil {
		return fmt.Errorf("updating refresh cursor: %w", err)
	}

	r.logger.Info("reference data refreshed", slog.Int("countries", len(countries)))

	return nil
}
