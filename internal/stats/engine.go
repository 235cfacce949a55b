package stats

import (
	"context"
	"strconv"
	"time"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
	"github.com/angelmondragon/wishlist-backend/pkg/redis"
	"github.com/shopspring/decimal"
)

const defaultTopLimit = 10

var hundred = decimal.NewFromInt(100)

// Store is the read side of the wishlist store used for aggregation.
type Store interface {
	CountItems(ctx context.Context, shop string, since time.Time) (int64, error)
	CountAddedToCart(ctx context.Context, shop string, since time.Time) (int64, error)
	TopProducts(ctx context.Context, shop string, since time.Time, limit int) ([]wishlist.ProductCount, error)
}

// EngineParams groups dependencies for the stats engine. Cache, Metrics and
// Logger are optional.
type EngineParams struct {
	Store    Store
	Cache    redis.JSONCache
	CacheTTL time.Duration
	TopLimit int
	Clock    repo.Clock
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// Engine computes time-windowed wishlist aggregates.
type Engine struct {
	store    Store
	cache    redis.JSONCache
	cacheTTL time.Duration
	topLimit int
	clock    repo.Clock
	metrics  *metrics.Metrics
	logg     *logger.Logger
}

// NewEngine validates params and applies defaults.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stats store is required")
	}
	topLimit := params.TopLimit
	if topLimit <= 0 {
		topLimit = defaultTopLimit
	}
	clock := params.Clock
	if clock == nil {
		clock = repo.UTCNow
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{
		store:    params.Store,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		topLimit: topLimit,
		clock:    clock,
		metrics:  params.Metrics,
		logg:     logg,
	}, nil
}

// Compute returns the stats for shop over the last periodDays days, or over
// all time when periodDays is AllTime. It never fails: any error is logged
// and replaced by Empty().
func (e *Engine) Compute(ctx context.Context, shop string, periodDays int) Stats {
	start := e.clock()
	key := e.cacheKey(shop, periodDays)

	if cached, ok := e.readCache(ctx, key); ok {
		return cached
	}

	result, err := e.compute(ctx, shop, e.since(periodDays))
	if err != nil {
		e.metrics.ObserveStats(metrics.OutcomeDegraded, e.clock().Sub(start))
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"shop_domain": shop,
			"period_days": periodDays,
		})
		e.logg.Error(logCtx, "stats.compute_failed", err)
		return Empty()
	}

	e.metrics.ObserveStats(metrics.OutcomeSuccess, e.clock().Sub(start))
	e.writeCache(ctx, key, result)
	return result
}

func (e *Engine) compute(ctx context.Context, shop string, since time.Time) (Stats, error) {
	total, err := e.store.CountItems(ctx, shop, since)
	if err != nil {
		return Stats{}, err
	}
	if total == 0 {
		return Empty(), nil
	}

	rows, err := e.store.TopProducts(ctx, shop, since, e.topLimit)
	if err != nil {
		return Stats{}, err
	}
	added, err := e.store.CountAddedToCart(ctx, shop, since)
	if err != nil {
		return Stats{}, err
	}

	top := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		product := TopProduct{
			ID:         row.ProductID,
			Title:      row.Title,
			Count:      row.Count,
			Percentage: percentOf(row.Count, total),
		}
		if row.Image != nil {
			product.Image = *row.Image
		}
		top = append(top, product)
	}

	return Stats{
		TotalItems:    total,
		TopProducts:   top,
		AddToCartRate: percentOf(added, total),
	}, nil
}

// since returns the lower bound of the window; zero means unbounded.
func (e *Engine) since(periodDays int) time.Time {
	if periodDays <= AllTime {
		return time.Time{}
	}
	return e.clock().UTC().AddDate(0, 0, -periodDays)
}

func (e *Engine) cacheKey(shop string, periodDays int) string {
	if e.cache == nil {
		return ""
	}
	return e.cache.CacheKey("stats", shop, strconv.Itoa(periodDays))
}

func (e *Engine) readCache(ctx context.Context, key string) (Stats, bool) {
	if e.cache == nil || e.cacheTTL <= 0 {
		return Stats{}, false
	}
	var cached Stats
	hit, err := e.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		e.logg.Warn(cacheLogContext(ctx, e.logg, key, err), "stats.cache_read_failed")
		return Stats{}, false
	}
	e.metrics.IncStatsCache(hit)
	if !hit {
		return Stats{}, false
	}
	if cached.TopProducts == nil {
		cached.TopProducts = []TopProduct{}
	}
	return cached, true
}

func (e *Engine) writeCache(ctx context.Context, key string, value Stats) {
	if e.cache == nil || e.cacheTTL <= 0 {
		return
	}
	if err := e.cache.SetJSON(ctx, key, value, e.cacheTTL); err != nil {
		e.logg.Warn(cacheLogContext(ctx, e.logg, key, err), "stats.cache_write_failed")
	}
}

func cacheLogContext(ctx context.Context, logg *logger.Logger, key string, err error) context.Context {
	return logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
}

// percentOf renders part/total*100 with two decimals.
func percentOf(part, total int64) string {
	if total == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(total)).
		StringFixed(2)
}
