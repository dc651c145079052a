package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abgdnv/shopmate/internal/cart"
	"github.com/abgdnv/shopmate/internal/catalog"
	"github.com/abgdnv/shopmate/internal/metrics"
	ctxlog "github.com/abgdnv/shopmate/pkg/logger"
)

const (
	headingForCart   = "You might also like"
	headingEmptyCart = "Top Picks for You"
)

// Recommender is the part of Engine the feed depends on.
type Recommender interface {
	Recommend(ctx context.Context, lines []cart.Line, products []catalog.Product) Result
}

// CartReader gives the feed a consistent view of the cart.
type CartReader interface {
	Snapshot() cart.Snapshot
}

// Entry is one completed refresh of the feed.
type Entry struct {
	Result
	// Categories are the distinct cart categories the result was based on.
	Categories  []string  `json:"categories"`
	CartVersion uint64    `json:"cart_version"`
	Generation  uint64    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Heading is the section title shown above the recommendations.
func (e Entry) Heading() string {
	if len(e.Categories) > 0 {
		return headingForCart
	}
	return headingEmptyCart
}

// Feed keeps the most recent recommendations for the cart. Every refresh takes a generation
// token together with its cart snapshot once the catalog is loaded; a finished refresh is applied
// only if no newer one has been issued since. A refresh whose catalog load fails takes no token.
type Feed struct {
	recommender Recommender
	source      catalog.Source
	cart        CartReader
	metrics     *metrics.Metrics
	logger      *slog.Logger

	issueMu    sync.Mutex
	generation atomic.Uint64
	mu         sync.RWMutex
	latest     *Entry
	wg         sync.WaitGroup
}

// NewFeed creates an empty feed.
func NewFeed(recommender Recommender, source catalog.Source, cart CartReader, m *metrics.Metrics, logger *slog.Logger) *Feed {
	return &Feed{
		recommender: recommender,
		source:      source,
		cart:        cart,
		metrics:     m,
		logger:      logger.With("component", "recommend_feed"),
	}
}

// Refresh computes recommendations for the current cart and catalog. The returned entry is the
// caller's own result even when a newer refresh has superseded it in the feed.
func (f *Feed) Refresh(ctx context.Context) (Entry, error) {
	products, err := f.source.FindAll(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load catalog for recommendations: %w", err)
	}

	generation, snap := f.issue()
	ctx = ctxlog.AppendCtx(ctx, slog.Uint64("generation", generation), slog.Uint64("cart_version", snap.Version))

	entry := Entry{
		Result:      f.recommender.Recommend(ctx, snap.Lines, products),
		Categories:  cart.Categories(snap.Lines),
		CartVersion: snap.Version,
		Generation:  generation,
		UpdatedAt:   time.Now().UTC(),
	}
	if !f.apply(entry) {
		f.metrics.IncStale()
		f.logger.DebugContext(ctx, "discarding stale recommendations")
	}
	return entry, nil
}

// RefreshAsync starts a refresh in the background. Errors are logged.
func (f *Feed) RefreshAsync(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if _, err := f.Refresh(ctx); err != nil {
			f.logger.WarnContext(ctx, "background recommendation refresh failed", "error", err)
		}
	}()
}

// Latest returns the most recently applied entry.
func (f *Feed) Latest() (Entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latest == nil {
		return Entry{}, false
	}
	return *f.latest, true
}

// Wait blocks until background refreshes have finished.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// issue hands out the next generation token with the cart state it belongs to, so a newer token
// never carries an older snapshot.
func (f *Feed) issue() (uint64, cart.Snapshot) {
	f.issueMu.Lock()
	defer f.issueMu.Unlock()
	return f.generation.Add(1), f.cart.Snapshot()
}

func (f *Feed) apply(entry Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.Generation != f.generation.Load() {
		return false
	}
	f.latest = &entry
	return true
}
