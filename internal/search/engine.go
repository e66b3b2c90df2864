// Package search coordinates a single availability query under a
// deadline: geo lookup, inventory join, matching, ranking, radius
// expansion and partial-result assembly.
package search

import (
	"context"
	"fmt"
	"time"

	"medicine-locator/config"
	"medicine-locator/internal/catalog"
	"medicine-locator/internal/geo"
	"medicine-locator/internal/matcher"
	"medicine-locator/internal/models"
	"medicine-locator/internal/ranking"
	"medicine-locator/internal/util"

	"go.uber.org/zap"
)

// InventorySource supplies a per-medicine snapshot of stock records.
// An error means the inventory collaborator is unavailable; the query
// then proceeds without stock data and flags the response as degraded.
type InventorySource interface {
	SnapshotMedicine(ctx context.Context, medicineID string) (map[string]models.InventoryEntry, error)
}

// ResultCache caches ranked responses. Implementations are best-effort;
// a nil cache disables caching.
type ResultCache interface {
	Get(ctx context.Context, medicineID string, lat, lon, radiusMeters float64) (*models.SearchResponse, bool)
	Set(ctx context.Context, medicineID string, lat, lon, radiusMeters float64, resp *models.SearchResponse)
}

// SearchRequest carries one availability query.
type SearchRequest struct {
	MedicineID          string
	Lat                 float64
	Lon                 float64
	InitialRadiusMeters float64 // 0 falls back to the configured default
	DeadlineMillis      int64   // 0 falls back to the configured default
}

// Engine is the query orchestrator.
type Engine struct {
	geoIndex  *geo.Index
	inventory InventorySource
	catalog   *catalog.Catalog
	matcher   *matcher.Matcher
	cache     ResultCache
	cfg       config.SearchConfig
	logger    *zap.Logger
}

// NewEngine creates a search engine. cache may be nil.
func NewEngine(cfg config.SearchConfig, geoIndex *geo.Index, inv InventorySource, cat *catalog.Catalog, cache ResultCache) *Engine {
	return &Engine{
		geoIndex:  geoIndex,
		inventory: inv,
		catalog:   cat,
		matcher:   matcher.New(cfg.StaleAfter),
		cache:     cache,
		cfg:       cfg,
		logger:    util.GetLogger(),
	}
}

type invSnapshot struct {
	entries map[string]models.InventoryEntry
	err     error
}

// Search runs one availability query. It always returns a structured
// response unless the medicine identifier is invalid: a deadline produces
// timedOut=true with the best partial ranking, an unreachable inventory
// produces degraded=true, and an empty region produces an empty result
// with the radius actually searched.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*models.SearchResponse, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Search")
	defer span.End()

	util.SearchesTotal.Inc()
	start := time.Now()
	defer func() {
		util.SearchLatency.Observe(time.Since(start).Seconds())
	}()

	medicineID, err := e.catalog.Resolve(req.MedicineID)
	if err != nil {
		util.SearchesFailedTotal.WithLabelValues("invalid_medicine").Inc()
		return nil, fmt.Errorf("resolve medicine %q: %w", req.MedicineID, err)
	}

	deadline := e.cfg.DefaultDeadline
	if req.DeadlineMillis > 0 {
		deadline = time.Duration(req.DeadlineMillis) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	initialRadius := req.InitialRadiusMeters
	if initialRadius <= 0 {
		initialRadius = e.cfg.InitialRadiusMeters
	}
	if initialRadius > e.cfg.MaxRadiusMeters {
		initialRadius = e.cfg.MaxRadiusMeters
	}
	radius := initialRadius

	if e.cache != nil {
		if resp, ok := e.cache.Get(ctx, medicineID, req.Lat, req.Lon, initialRadius); ok {
			util.SearchCacheHitsTotal.Inc()
			return resp, nil
		}
		util.SearchCacheMissesTotal.Inc()
	}

	q := newQuery(e.logger, medicineID)

	// Both reads happen against a single logical snapshot taken at query
	// start; radius expansion re-joins frozen data instead of re-reading
	// live state. The inventory snapshot runs concurrently with the first
	// geo resolution.
	geoSnap := e.geoIndex.Snapshot()
	invCh := make(chan invSnapshot, 1)
	go func() {
		entries, err := e.inventory.SnapshotMedicine(ctx, medicineID)
		invCh <- invSnapshot{entries: entries, err: err}
	}()

	now := time.Now()
	q.transition(models.QueryStateGeoResolved)

	var entries map[string]models.InventoryEntry
	degraded := false
	select {
	case <-ctx.Done():
		// Inventory never resolved: report the deadline with whatever was
		// computed so far, which is an empty ranking.
		q.transition(models.QueryStateTimedOut)
		return e.finish(q, &models.SearchResponse{
			Results:          []models.MatchResult{},
			SearchRadiusUsed: radius,
			TimedOut:         true,
		}), nil
	case snap := <-invCh:
		if snap.err != nil {
			e.logger.Warn("Inventory snapshot unavailable, serving degraded results",
				zap.String("medicine_id", medicineID),
				zap.Error(snap.err))
			util.SearchesDegradedTotal.Inc()
			entries = map[string]models.InventoryEntry{}
			degraded = true
		} else {
			entries = snap.entries
		}
	}
	q.transition(models.QueryStateInventoryResolved)

	results := []models.MatchResult{}
	radiusUsed := radius
	timedOut := false

	for {
		candidates := geoSnap.Candidates(req.Lat, req.Lon, radius)
		matched := e.matcher.Match(candidates, entries, now)
		q.transition(models.QueryStateMatched)

		results = ranking.Rank(matched)
		radiusUsed = radius
		q.transition(models.QueryStateRanked)

		if len(results) >= e.cfg.MinResults || radius >= e.cfg.MaxRadiusMeters {
			break
		}
		if ctx.Err() != nil {
			timedOut = true
			break
		}

		radius = radius * e.cfg.RadiusExpansionFactor
		if radius > e.cfg.MaxRadiusMeters {
			radius = e.cfg.MaxRadiusMeters
		}
		util.SearchRadiusExpansionsTotal.Inc()
	}

	resp := &models.SearchResponse{
		Results:          results,
		SearchRadiusUsed: radiusUsed,
		TimedOut:         timedOut,
		Degraded:         degraded,
	}

	if timedOut {
		q.transition(models.QueryStateTimedOut)
	} else {
		q.transition(models.QueryStateDone)
		if e.cache != nil && !degraded {
			e.cache.Set(ctx, medicineID, req.Lat, req.Lon, initialRadius, resp)
		}
	}

	return e.finish(q, resp), nil
}

func (e *Engine) finish(q *query, resp *models.SearchResponse) *models.SearchResponse {
	if resp.TimedOut {
		util.SearchesTimedOutTotal.Inc()
	}
	util.SearchResultCount.Observe(float64(len(resp.Results)))

	e.logger.Info("Search completed",
		zap.String("medicine_id", q.medicineID),
		zap.String("state", q.state),
		zap.Int("results", len(resp.Results)),
		zap.Float64("radius_used_m", resp.SearchRadiusUsed),
		zap.Bool("timed_out", resp.TimedOut),
		zap.Bool("degraded", resp.Degraded))
	return resp
}
